package sim

import (
	"context"

	"github.com/san-kum/latticeflow/internal/storage"
)

func (r *Recorder) Samples(ctx context.Context) ([]storage.Sample, error) {
	return r.history.Samples(ctx)
}
