package metrics

import (
	"math"

	"github.com/san-kum/latticeflow/internal/lbm"
	"github.com/san-kum/latticeflow/internal/sim"
)

// Stability is the fraction of output steps whose relative density norm
// change stayed within the threshold. NaN changes count as violations.
type Stability struct {
	name      string
	threshold float64

	samples    int
	violations int
	first      int
	worst      float64
}

func NewStability(threshold float64) *Stability {
	s := &Stability{name: "stability", threshold: threshold}
	s.Reset()
	return s
}

func (s *Stability) Name() string { return s.name }

func (s *Stability) Observe(_ *lbm.Solver, r sim.Report) {
	s.samples++
	d := r.Diagnosis.DeltaNorm
	if d <= s.threshold {
		s.worst = math.Max(s.worst, d)
		return
	}
	s.violations++
	if s.first < 0 {
		s.first = r.Step
	}
	if d != d {
		s.worst = math.Inf(1)
	} else {
		s.worst = math.Max(s.worst, d)
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1
	}
	return 1 - float64(s.violations)/float64(s.samples)
}

// FirstViolation is the output step of the first violation, or -1.
func (s *Stability) FirstViolation() int { return s.first }

// Worst is the largest change seen; +Inf after a NaN.
func (s *Stability) Worst() float64 { return s.worst }

func (s *Stability) Reset() {
	s.samples, s.violations = 0, 0
	s.first, s.worst = -1, 0
}
