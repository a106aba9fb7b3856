package sim

import (
	"context"
	"time"

	"github.com/san-kum/latticeflow/internal/lbm"
)

// Config holds the driver intervals. DiagnosisRate, SaveRate and HistoryRate
// count output intervals, not steps. A zero HistoryRate follows SaveRate.
type Config struct {
	Steps         int
	OutInterval   int
	DiagnosisRate int
	SaveRate      int
	HistoryRate   int
	KeepHistory   bool
}

func (c Config) diagnosisEvery() int { return c.DiagnosisRate * c.OutInterval }
func (c Config) saveEvery() int      { return c.SaveRate * c.OutInterval }

func (c Config) historyEvery() int {
	if c.HistoryRate == 0 {
		return c.saveEvery()
	}
	return c.HistoryRate * c.OutInterval
}

// Report describes an output step. Residual is NaN unless the residual check
// ran on the same step.
type Report struct {
	Step      int
	Diagnosis lbm.Diagnosis
	Residual  float64
	Mass      float64
	Volume    float64
}

// Observer is called on every output step.
type Observer interface {
	OnOutput(ctx context.Context, s *lbm.Solver, r Report) error
}

// Checkpointer persists solver states. History is only called when the run
// keeps numbered copies.
type Checkpointer interface {
	Checkpoint(s *lbm.Solver, st lbm.State) error
	History(s *lbm.Solver, st lbm.State) error
}

type Metric interface {
	Name() string
	Observe(s *lbm.Solver, r Report)
	Value() float64
	Reset()
}

type Result struct {
	StartStep  int
	FinalStep  int
	StepsTaken int
	Halted     bool
	HaltErr    error
	Canceled   bool
	Reports    int
	Last       lbm.Diagnosis
	Residual   float64
	Elapsed    time.Duration
	Metrics    map[string]float64
}
