// Package experiment wires a run configuration into a solver, a run
// directory and the time-stepping driver.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/san-kum/latticeflow/internal/config"
	"github.com/san-kum/latticeflow/internal/grid"
	"github.com/san-kum/latticeflow/internal/initstate"
	"github.com/san-kum/latticeflow/internal/lbm"
	"github.com/san-kum/latticeflow/internal/logging"
	"github.com/san-kum/latticeflow/internal/sim"
	"github.com/san-kum/latticeflow/internal/storage"
	"github.com/san-kum/latticeflow/internal/topology"
	"go.uber.org/zap"
)

type Options struct {
	// Overwrite allows reusing a run directory that already has a log.
	Overwrite bool
	// Verbose enables debug entries in run.log.
	Verbose bool
	// Metrics names registry metrics to attach; nil selects the defaults.
	Metrics []string
}

type Experiment struct {
	cfg  *config.Config
	opts Options
	log  *zap.Logger

	run       *storage.Run
	solver    *lbm.Solver
	simulator *sim.Simulator
	recorder  *sim.Recorder
	resumed   bool
	closeLog  func()
}

func New(cfg *config.Config, log *zap.Logger, opts Options) *Experiment {
	if log == nil {
		log = zap.NewNop()
	}
	return &Experiment{cfg: cfg, opts: opts, log: log}
}

// BuildTopology loads the configured topology file or generates the grid.
func BuildTopology(cfg *config.Config) (*grid.Topology, error) {
	if cfg.TopoFile != "" {
		return topology.Load(cfg.TopoFile)
	}
	t := cfg.Topology
	return topology.Generate(t.Kind, t.NX, t.NY, t.Radius)
}

// Setup prepares the run directory under st and the solver. A resumed run
// reads the checkpoint and keeps a backup of it; when nothing was saved it
// starts from the configured initial state instead.
func (e *Experiment) Setup(st *storage.Store) error {
	cfg := e.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := st.Init(); err != nil {
		return err
	}

	var err error
	if cfg.Resume {
		e.run, err = st.Open(cfg.OutputDir)
	} else {
		e.run, err = st.Create(cfg.OutputDir, e.opts.Overwrite)
	}
	if err != nil {
		return err
	}

	log, closeLog, err := logging.WithFile(e.log, e.run.LogPath(), e.opts.Verbose)
	if err != nil {
		return err
	}
	e.log, e.closeLog = log.With(zap.String("run", e.run.Meta.Name)), closeLog

	topo, err := e.topology()
	if err != nil {
		return err
	}
	if rep := topology.Analyze(topo); !rep.Connected() {
		e.log.Warn("fluid region is not connected",
			zap.Int("components", len(rep.Components)),
			zap.Float64("porosity", rep.Porosity()))
	}

	sc, err := cfg.Solver(e.log)
	if err != nil {
		return err
	}
	e.solver, err = lbm.New(topo, sc)
	if err != nil {
		return err
	}

	if cfg.Resume {
		if err := e.resume(topo); err != nil {
			return err
		}
	}
	if !e.resumed {
		if err := e.initialize(); err != nil {
			return err
		}
	}

	if err := topology.Save(e.run.TopoPath(), topo); err != nil {
		return err
	}
	if err := e.run.SaveParams(cfg); err != nil {
		return err
	}

	meta := &e.run.Meta
	meta.NX, meta.NY = topo.NX, topo.NY
	meta.Tau = cfg.Tau
	meta.Potential = sc.Potential.String()
	meta.Forcing = sc.Forcing.String()
	meta.Seed = cfg.Noise.Seed
	meta.StartStep = e.solver.Timestep()
	meta.FinalStep = e.solver.Timestep()
	meta.OutInterval = cfg.OutInterval
	meta.Resumed = e.resumed
	meta.Timestamp = time.Now()
	if err := e.run.SaveMetadata(); err != nil {
		return err
	}

	e.recorder, err = sim.NewRecorder(e.run, e.log)
	if err != nil {
		return err
	}
	e.simulator = sim.New(e.solver, e.log)
	e.simulator.AddObserver(e.recorder)
	e.simulator.SetCheckpointer(e.recorder)

	metrics, err := NewRegistry().Metrics(cfg, e.opts.Metrics)
	if err != nil {
		return err
	}
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

// topology prefers the grid stored with a resumed run.
func (e *Experiment) topology() (*grid.Topology, error) {
	if e.cfg.Resume && e.cfg.TopoFile == "" {
		if _, err := os.Stat(e.run.TopoPath()); err == nil {
			return topology.Load(e.run.TopoPath())
		}
	}
	return BuildTopology(e.cfg)
}

func (e *Experiment) resume(topo *grid.Topology) error {
	state, err := e.run.LoadCheckpoint(e.cfg.StateFile, topo.NX, topo.NY)
	if errors.Is(err, storage.ErrNoCheckpoint) {
		e.log.Warn("no checkpoint to resume from, starting fresh", zap.Error(err))
		return nil
	}
	if err != nil {
		return err
	}
	if err := e.solver.LoadState(state); err != nil {
		return err
	}
	path, err := e.run.Backup(topo.NX, topo.NY, state)
	if err != nil {
		return err
	}
	e.resumed = true
	e.log.Info("resumed from checkpoint",
		zap.Int("step", state.Timestep),
		zap.String("backup", path))
	return nil
}

func (e *Experiment) initialize() error {
	return Initialize(e.cfg, e.solver, e.log)
}

// Initialize applies the custom initial state of cfg, then the density
// noise, and refreshes the solver's macroscopic fields.
func Initialize(cfg *config.Config, s *lbm.Solver, log *zap.Logger) error {
	gen, err := initstate.FromConfig(cfg.Initial, cfg.RhoInit)
	if err != nil {
		return err
	}
	f := s.Fields()
	if gen != nil {
		if err := gen.Apply(f); err != nil {
			return err
		}
		log.Info("initial state applied", zap.String("kind", gen.Name()))
	}
	noise := initstate.Noise{DeltaRho: cfg.Noise.DeltaRho, Seed: cfg.Noise.Seed}
	if noise.Enabled() {
		if err := noise.Apply(f); err != nil {
			return err
		}
		log.Info("density noise applied",
			zap.Float64("delta_rho", noise.DeltaRho),
			zap.Int64("seed", noise.Seed))
	}
	s.Refresh()
	return nil
}

// NewSolver builds an initialized solver for cfg without a run directory.
func NewSolver(cfg *config.Config, log *zap.Logger) (*lbm.Solver, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	topo, err := BuildTopology(cfg)
	if err != nil {
		return nil, err
	}
	sc, err := cfg.Solver(log)
	if err != nil {
		return nil, err
	}
	s, err := lbm.New(topo, sc)
	if err != nil {
		return nil, err
	}
	if err := Initialize(cfg, s, log); err != nil {
		return nil, err
	}
	return s, nil
}

// Run drives the solver to the configured step count and records the
// outcome in the run metadata. A final checkpoint is written unless the run
// halted.
func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	start := time.Now()
	result, runErr := e.simulator.Run(ctx, sim.Config{
		Steps:         e.cfg.Steps,
		OutInterval:   e.cfg.OutInterval,
		DiagnosisRate: e.cfg.DiagnosisRate,
		SaveRate:      e.cfg.SaveRate,
		HistoryRate:   e.cfg.HistoryRate,
		KeepHistory:   e.cfg.KeepHistory,
	})
	if result == nil {
		return nil, runErr
	}

	if !result.Halted && result.StepsTaken > 0 {
		f := e.solver.Fields()
		if err := e.run.SaveCheckpoint(f.NX, f.NY, e.solver.Snapshot()); err != nil {
			return result, err
		}
	}

	meta := &e.run.Meta
	meta.FinalStep = result.FinalStep
	meta.Halted = result.Halted
	meta.Elapsed = time.Since(start).Seconds()
	meta.Metrics = make(map[string]float64, len(result.Metrics))
	for name, v := range result.Metrics {
		// JSON has no NaN
		if v == v {
			meta.Metrics[name] = v
		}
	}
	if err := e.run.SaveMetadata(); err != nil {
		return result, err
	}
	e.log.Info("run time", zap.Float64("seconds", meta.Elapsed))
	return result, runErr
}

func (e *Experiment) Close() error {
	var err error
	if e.recorder != nil {
		err = e.recorder.Close()
		e.recorder = nil
	}
	if e.closeLog != nil {
		e.closeLog()
		e.closeLog = nil
	}
	return err
}

func (e *Experiment) Solver() *lbm.Solver { return e.solver }

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator { return e.simulator }

func (e *Experiment) RunDir() *storage.Run { return e.run }

// Resumed reports whether Setup loaded a checkpoint.
func (e *Experiment) Resumed() bool { return e.resumed }

// Logger returns the run logger, which also writes to run.log.
func (e *Experiment) Logger() *zap.Logger { return e.log }
