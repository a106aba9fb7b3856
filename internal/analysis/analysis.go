package analysis

import (
	"math"

	"github.com/san-kum/latticeflow/internal/storage"
	"gonum.org/v1/gonum/stat"
)

// Convergence returns the first step from which every relative norm change
// is at most tol. NaN deltas never count as converged.
func Convergence(samples []storage.Sample, tol float64) (step int, ok bool) {
	idx := len(samples)
	for i := len(samples) - 1; i >= 0; i-- {
		if !(math.Abs(samples[i].Delta) <= tol) {
			break
		}
		idx = i
	}
	if idx == len(samples) {
		return 0, false
	}
	return samples[idx].Step, true
}

type Report struct {
	Samples     int
	FirstStep   int
	LastStep    int
	Converged   bool
	ConvergedAt int
	FinalDelta  float64

	// MassDrift is (last-first)/first of the total mass.
	MassDrift  float64
	MassStdDev float64

	// Spectrum of the density norm; nil when the history is too short.
	Spectrum *Spectrum
	Period   float64
}

// Analyze summarizes a diagnostics history. Samples must be sorted by step.
func Analyze(samples []storage.Sample, tol float64) Report {
	r := Report{Samples: len(samples)}
	if len(samples) == 0 {
		return r
	}
	first, last := samples[0], samples[len(samples)-1]
	r.FirstStep, r.LastStep = first.Step, last.Step
	r.FinalDelta = last.Delta
	r.ConvergedAt, r.Converged = Convergence(samples, tol)

	mass := make([]float64, len(samples))
	norm := make([]float64, 0, len(samples))
	for i, s := range samples {
		mass[i] = s.Mass
		if !math.IsNaN(s.Norm) && !math.IsInf(s.Norm, 0) {
			norm = append(norm, s.Norm)
		}
	}
	if first.Mass != 0 {
		r.MassDrift = (last.Mass - first.Mass) / first.Mass
	}
	r.MassStdDev = stat.StdDev(mass, nil)

	spacing := 1
	if len(samples) > 1 {
		spacing = samples[1].Step - samples[0].Step
	}
	if sp, err := PowerSpectrum(norm, spacing); err == nil {
		r.Spectrum = sp
		_, r.Period = sp.Dominant()
	}
	return r
}
