package sim

import (
	"context"

	"github.com/san-kum/latticeflow/internal/lbm"
	"github.com/san-kum/latticeflow/internal/storage"
	"go.uber.org/zap"
)

// Recorder writes field frames, diagnostics rows and checkpoints into a run
// directory.
type Recorder struct {
	run     *storage.Run
	history *storage.History
	log     *zap.Logger

	Frames int
}

// NewRecorder opens the diagnostics history of run. Close releases it.
func NewRecorder(run *storage.Run, log *zap.Logger) (*Recorder, error) {
	h, err := storage.OpenHistory(run.HistoryPath())
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{run: run, history: h, log: log}, nil
}

func (r *Recorder) OnOutput(ctx context.Context, s *lbm.Solver, rep Report) error {
	f := s.Fields()
	path, err := r.run.SaveFields(rep.Step, f, s.Config().Multiphase())
	if err != nil {
		return err
	}
	r.Frames++
	r.log.Debug("frame written", zap.String("path", path))

	return r.history.Record(ctx, storage.Sample{
		Step:     rep.Step,
		Norm:     rep.Diagnosis.Norm,
		Delta:    rep.Diagnosis.DeltaNorm,
		Residual: rep.Residual,
		Mass:     rep.Mass,
		Volume:   rep.Volume,
	})
}

func (r *Recorder) Checkpoint(s *lbm.Solver, st lbm.State) error {
	f := s.Fields()
	return r.run.SaveCheckpoint(f.NX, f.NY, st)
}

func (r *Recorder) History(s *lbm.Solver, st lbm.State) error {
	f := s.Fields()
	path, err := r.run.SaveHistory(f.NX, f.NY, st)
	if err == nil {
		r.log.Debug("state copy written", zap.String("path", path))
	}
	return err
}

func (r *Recorder) Close() error { return r.history.Close() }
