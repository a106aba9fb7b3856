package storage

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"os"
)

type ExportData struct {
	Run        RunMetadata `json:"run"`
	Steps      []int       `json:"steps"`
	Norm       []float64   `json:"norm"`
	Delta      []float64   `json:"delta"`
	Residual   []*float64  `json:"residual"`
	Mass       []float64   `json:"mass"`
	Volume     []float64   `json:"volume"`
	Frames     []int       `json:"frames"`
	Checkpoint string      `json:"checkpoint,omitempty"`
}

// Export collects a run's metadata and diagnostics history into one record.
func (s *Store) Export(ctx context.Context, name string) (*ExportData, error) {
	run, err := s.Run(name)
	if err != nil {
		return nil, err
	}
	data := &ExportData{Run: run.Meta}

	h, err := OpenHistory(run.HistoryPath())
	if err != nil {
		return nil, err
	}
	defer h.Close()
	samples, err := h.Samples(ctx)
	if err != nil {
		return nil, err
	}
	for _, sm := range samples {
		data.Steps = append(data.Steps, sm.Step)
		data.Norm = append(data.Norm, finite(sm.Norm))
		data.Delta = append(data.Delta, finite(sm.Delta))
		data.Mass = append(data.Mass, sm.Mass)
		data.Volume = append(data.Volume, sm.Volume)
		if math.IsNaN(sm.Residual) {
			data.Residual = append(data.Residual, nil)
		} else {
			r := sm.Residual
			data.Residual = append(data.Residual, &r)
		}
	}

	if data.Frames, err = run.Frames(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(run.CheckpointPath()); err == nil {
		data.Checkpoint = run.CheckpointPath()
	}
	return data, nil
}

// WriteJSON encodes the export with indentation.
func (d *ExportData) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// finite maps values JSON cannot carry to zero.
func finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}
