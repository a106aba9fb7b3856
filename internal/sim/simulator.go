package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/latticeflow/internal/lbm"
	"go.uber.org/zap"
)

type Simulator struct {
	solver       *lbm.Solver
	log          *zap.Logger
	metrics      []Metric
	observers    []Observer
	checkpointer Checkpointer
}

func New(solver *lbm.Solver, log *zap.Logger) *Simulator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Simulator{
		solver:    solver,
		log:       log,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)             { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)         { s.observers = append(s.observers, o) }
func (s *Simulator) SetCheckpointer(c Checkpointer) { s.checkpointer = c }
func (s *Simulator) Solver() *lbm.Solver            { return s.solver }

// Run advances the solver until it reaches cfg.Steps completed timesteps, the
// stability check halts it, or ctx is done. A halt is not an error: it is
// reported through Result.Halted and Result.HaltErr.
//
// Counting the step about to run from 1, a checkpoint is written before every
// step n with (n-1) divisible by the save interval, a numbered copy likewise
// for the history interval when KeepHistory is set, and output, residual and
// observers fire after the step on the same schedule for their intervals.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	result := &Result{
		StartStep: s.solver.Timestep(),
		Residual:  math.NaN(),
		Metrics:   make(map[string]float64),
	}
	start := time.Now()

	for s.solver.Timestep() < cfg.Steps {
		if err := ctx.Err(); err != nil {
			result.Canceled = true
			break
		}
		n := s.solver.Timestep()

		if s.checkpointer != nil {
			save := n%cfg.saveEvery() == 0
			keep := cfg.KeepHistory && n%cfg.historyEvery() == 0
			if save || keep {
				st := s.solver.Snapshot()
				if save {
					if err := s.checkpointer.Checkpoint(s.solver, st); err != nil {
						return result, fmt.Errorf("checkpoint at step %d: %w", n, err)
					}
				}
				if keep {
					if err := s.checkpointer.History(s.solver, st); err != nil {
						return result, fmt.Errorf("history at step %d: %w", n, err)
					}
				}
			}
		}

		step := s.solver.Step()
		result.StepsTaken++
		result.Reports += len(step.Reports)

		d := s.solver.Diagnose()
		result.Last = d
		if d.Halt {
			result.Halted = true
			result.HaltErr = &lbm.StepError{
				Step:    step.Timestep,
				Wrapped: fmt.Errorf("%w: density norm changed by %g", lbm.ErrUnstable, d.DeltaNorm),
			}
			s.log.Error("simulation halted", zap.Error(result.HaltErr))
			break
		}

		report := Report{
			Step:      step.Timestep,
			Diagnosis: d,
			Residual:  math.NaN(),
			Mass:      step.Mass,
			Volume:    step.Volume,
		}
		if n%cfg.diagnosisEvery() == 0 {
			report.Residual = s.solver.ChapmanEnskogLite()
			result.Residual = report.Residual
		}

		if n%cfg.OutInterval == 0 {
			s.log.Info("output",
				zap.Int("step", step.Timestep),
				zap.Float64("norm", d.Norm),
				zap.Float64("delta", d.DeltaNorm),
				zap.Float64("mass", step.Mass))
			for _, m := range s.metrics {
				m.Observe(s.solver, report)
			}
			for _, obs := range s.observers {
				if err := obs.OnOutput(ctx, s.solver, report); err != nil {
					return result, fmt.Errorf("output at step %d: %w", step.Timestep, err)
				}
			}
		}
	}

	result.FinalStep = s.solver.Timestep()
	result.Elapsed = time.Since(start)
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.log.Info("run finished",
		zap.Int("steps", result.StepsTaken),
		zap.Int("final_step", result.FinalStep),
		zap.Bool("halted", result.Halted),
		zap.Duration("elapsed", result.Elapsed))

	if result.Canceled {
		return result, ctx.Err()
	}
	return result, nil
}

var ErrInvalidInterval = errors.New("sim: invalid interval")

func (s *Simulator) validateConfig(cfg Config) error {
	if s.solver == nil {
		return fmt.Errorf("%w: nil solver", lbm.ErrInvalidConfig)
	}
	if cfg.Steps < 0 {
		return fmt.Errorf("%w: steps must be non-negative, got %d", ErrInvalidInterval, cfg.Steps)
	}
	if cfg.OutInterval <= 0 {
		return fmt.Errorf("%w: out interval must be positive, got %d", ErrInvalidInterval, cfg.OutInterval)
	}
	if cfg.DiagnosisRate <= 0 {
		return fmt.Errorf("%w: diagnosis rate must be positive, got %d", ErrInvalidInterval, cfg.DiagnosisRate)
	}
	if cfg.SaveRate <= 0 {
		return fmt.Errorf("%w: save rate must be positive, got %d", ErrInvalidInterval, cfg.SaveRate)
	}
	if cfg.HistoryRate < 0 {
		return fmt.Errorf("%w: history rate must be non-negative, got %d", ErrInvalidInterval, cfg.HistoryRate)
	}
	return nil
}

// RunWithCallback steps the solver until fn returns false, the solver halts
// or ctx is done. It skips output and checkpoints and is used by the live
// view.
func (s *Simulator) RunWithCallback(ctx context.Context, maxSteps int, fn func(lbm.StepResult, lbm.Diagnosis) bool) error {
	for maxSteps <= 0 || s.solver.Timestep() < maxSteps {
		if err := ctx.Err(); err != nil {
			return err
		}
		step := s.solver.Step()
		d := s.solver.Diagnose()
		if !fn(step, d) {
			return nil
		}
		if d.Halt {
			return &lbm.StepError{Step: step.Timestep, Wrapped: lbm.ErrUnstable}
		}
	}
	return nil
}
