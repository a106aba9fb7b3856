package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/latticeflow/internal/grid"
	"github.com/san-kum/latticeflow/internal/lbm"
	"github.com/san-kum/latticeflow/internal/sim"
	"github.com/san-kum/latticeflow/internal/storage"
)

type recordingObserver struct {
	reports []sim.Report
	hook    func(s *lbm.Solver, r sim.Report)
}

func (o *recordingObserver) OnOutput(_ context.Context, s *lbm.Solver, r sim.Report) error {
	o.reports = append(o.reports, r)
	if o.hook != nil {
		o.hook(s, r)
	}
	return nil
}

type countingCheckpointer struct {
	steps   []int
	history []int
}

func (c *countingCheckpointer) Checkpoint(_ *lbm.Solver, st lbm.State) error {
	c.steps = append(c.steps, st.Timestep)
	return nil
}

func (c *countingCheckpointer) History(_ *lbm.Solver, st lbm.State) error {
	c.history = append(c.history, st.Timestep)
	return nil
}

type outputCounter struct{ n int }

func (m *outputCounter) Name() string                        { return "outputs" }
func (m *outputCounter) Observe(_ *lbm.Solver, _ sim.Report) { m.n++ }
func (m *outputCounter) Value() float64                      { return float64(m.n) }
func (m *outputCounter) Reset()                              { m.n = 0 }

func newSolver(nx, ny, workers int) *lbm.Solver {
	topo, err := grid.NewTopology(nx, ny)
	Expect(err).NotTo(HaveOccurred())
	cfg := lbm.DefaultConfig()
	cfg.GravX = 1e-5
	cfg.Workers = workers
	s, err := lbm.New(topo, cfg)
	Expect(err).NotTo(HaveOccurred())
	return s
}

func stepsOf(reports []sim.Report) []int {
	out := make([]int, len(reports))
	for i, r := range reports {
		out[i] = r.Step
	}
	return out
}

var _ = Describe("Simulator", func() {
	var (
		solver *lbm.Solver
		cfg    sim.Config
	)

	BeforeEach(func() {
		solver = newSolver(8, 6, 2)
		cfg = sim.Config{Steps: 20, OutInterval: 5, DiagnosisRate: 2, SaveRate: 2}
	})

	It("runs until the configured number of steps", func() {
		res, err := sim.New(solver, nil).Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StepsTaken).To(Equal(20))
		Expect(res.FinalStep).To(Equal(20))
		Expect(res.Halted).To(BeFalse())
		Expect(solver.Timestep()).To(Equal(20))
	})

	It("reports output on the first step of every interval", func() {
		obs := &recordingObserver{}
		runner := sim.New(solver, nil)
		runner.AddObserver(obs)
		metric := &outputCounter{}
		runner.AddMetric(metric)

		res, err := runner.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(stepsOf(obs.reports)).To(Equal([]int{1, 6, 11, 16}))
		Expect(res.Metrics).To(HaveKeyWithValue("outputs", 4.0))
	})

	It("computes the residual every diagnosis interval only", func() {
		obs := &recordingObserver{}
		runner := sim.New(solver, nil)
		runner.AddObserver(obs)

		_, err := runner.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(obs.reports).To(HaveLen(4))
		Expect(math.IsNaN(obs.reports[0].Residual)).To(BeFalse())
		Expect(math.IsNaN(obs.reports[1].Residual)).To(BeTrue())
		Expect(math.IsNaN(obs.reports[2].Residual)).To(BeFalse())
		Expect(math.IsNaN(obs.reports[3].Residual)).To(BeTrue())
	})

	It("checkpoints before the step on every save interval", func() {
		cp := &countingCheckpointer{}
		runner := sim.New(solver, nil)
		runner.SetCheckpointer(cp)

		cfg.KeepHistory = true
		_, err := runner.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(cp.steps).To(Equal([]int{0, 10}))
		Expect(cp.history).To(Equal([]int{0, 10}))
	})

	It("keeps numbered copies on their own interval", func() {
		cp := &countingCheckpointer{}
		runner := sim.New(solver, nil)
		runner.SetCheckpointer(cp)

		cfg.KeepHistory = true
		cfg.SaveRate = 1
		cfg.HistoryRate = 3
		_, err := runner.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(cp.steps).To(Equal([]int{0, 5, 10, 15}))
		Expect(cp.history).To(Equal([]int{0, 15}))
	})

	It("writes numbered copies off the save interval", func() {
		cp := &countingCheckpointer{}
		runner := sim.New(solver, nil)
		runner.SetCheckpointer(cp)

		cfg.KeepHistory = true
		cfg.SaveRate = 4
		cfg.HistoryRate = 1
		_, err := runner.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(cp.steps).To(Equal([]int{0}))
		Expect(cp.history).To(Equal([]int{0, 5, 10, 15}))
	})

	It("skips numbered copies unless asked to keep them", func() {
		cp := &countingCheckpointer{}
		runner := sim.New(solver, nil)
		runner.SetCheckpointer(cp)

		_, err := runner.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(cp.steps).To(HaveLen(2))
		Expect(cp.history).To(BeEmpty())
	})

	It("halts when the density norm jumps", func() {
		obs := &recordingObserver{hook: func(s *lbm.Solver, r sim.Report) {
			if r.Step != 3 {
				return
			}
			f := s.Fields()
			for k := range f.Cur {
				f.Cur[k] *= 2
			}
			s.Refresh()
		}}
		runner := sim.New(solver, nil)
		runner.AddObserver(obs)

		cfg.OutInterval = 1
		res, err := runner.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Halted).To(BeTrue())
		Expect(res.FinalStep).To(Equal(4))
		Expect(res.Last.Halt).To(BeTrue())

		var stepErr *lbm.StepError
		Expect(errors.As(res.HaltErr, &stepErr)).To(BeTrue())
		Expect(stepErr.Step).To(Equal(4))
		Expect(errors.Is(res.HaltErr, lbm.ErrUnstable)).To(BeTrue())
	})

	It("stops when the context is canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res, err := sim.New(solver, nil).Run(ctx, cfg)
		Expect(err).To(MatchError(context.Canceled))
		Expect(res.Canceled).To(BeTrue())
		Expect(res.StepsTaken).To(BeZero())
	})

	It("continues a loaded state exactly", func() {
		reference := newSolver(8, 6, 2)
		_, err := sim.New(reference, nil).Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())

		half := cfg
		half.Steps = 10
		_, err = sim.New(solver, nil).Run(context.Background(), half)
		Expect(err).NotTo(HaveOccurred())

		resumed := newSolver(8, 6, 2)
		Expect(resumed.LoadState(solver.Snapshot())).To(Succeed())
		res, err := sim.New(resumed, nil).Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StartStep).To(Equal(10))
		Expect(res.StepsTaken).To(Equal(10))
		Expect(resumed.Fields().Cur).To(Equal(reference.Fields().Cur))
	})

	DescribeTable("rejects invalid intervals",
		func(c sim.Config) {
			_, err := sim.New(solver, nil).Run(context.Background(), c)
			Expect(err).To(MatchError(sim.ErrInvalidInterval))
		},
		Entry("negative steps", sim.Config{Steps: -1, OutInterval: 1, DiagnosisRate: 1, SaveRate: 1}),
		Entry("zero out interval", sim.Config{Steps: 1, OutInterval: 0, DiagnosisRate: 1, SaveRate: 1}),
		Entry("zero diagnosis rate", sim.Config{Steps: 1, OutInterval: 1, DiagnosisRate: 0, SaveRate: 1}),
		Entry("zero save rate", sim.Config{Steps: 1, OutInterval: 1, DiagnosisRate: 1, SaveRate: 0}),
		Entry("negative history rate", sim.Config{Steps: 1, OutInterval: 1, DiagnosisRate: 1, SaveRate: 1, HistoryRate: -1}),
	)

	Describe("RunWithCallback", func() {
		It("stops when the callback declines", func() {
			calls := 0
			err := sim.New(solver, nil).RunWithCallback(context.Background(), 0, func(lbm.StepResult, lbm.Diagnosis) bool {
				calls++
				return calls < 7
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal(7))
			Expect(solver.Timestep()).To(Equal(7))
		})

		It("honors the step limit", func() {
			err := sim.New(solver, nil).RunWithCallback(context.Background(), 3, func(lbm.StepResult, lbm.Diagnosis) bool {
				return true
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(solver.Timestep()).To(Equal(3))
		})
	})
})

var _ = Describe("Recorder", func() {
	It("writes frames, diagnostics and checkpoints into the run", func() {
		st := storage.New(GinkgoT().TempDir())
		run, err := st.Create("rec", false)
		Expect(err).NotTo(HaveOccurred())

		rec, err := sim.NewRecorder(run, nil)
		Expect(err).NotTo(HaveOccurred())

		solver := newSolver(6, 4, 1)
		runner := sim.New(solver, nil)
		runner.AddObserver(rec)
		runner.SetCheckpointer(rec)

		_, err = runner.Run(context.Background(), sim.Config{Steps: 10, OutInterval: 5, DiagnosisRate: 1, SaveRate: 1, KeepHistory: true})
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.Frames).To(Equal(2))

		frames, err := run.Frames()
		Expect(err).NotTo(HaveOccurred())
		Expect(frames).To(Equal([]int{1, 6}))

		samples, err := rec.Samples(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(samples).To(HaveLen(2))
		Expect(samples[0].Mass).To(BeNumerically("~", 24, 1e-9))
		Expect(rec.Close()).To(Succeed())

		state, err := run.LoadCheckpoint("", 6, 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(state.Timestep).To(Equal(5))
	})
})
