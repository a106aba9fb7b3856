package analysis

import (
	"errors"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

var ErrShortSeries = errors.New("analysis: series too short")

// Spectrum is the one-sided amplitude spectrum of a mean-removed series.
// Freq is in cycles per timestep.
type Spectrum struct {
	Freq  []float64
	Power []float64
}

// PowerSpectrum transforms data sampled every spacing timesteps. The zero
// frequency is dropped.
func PowerSpectrum(data []float64, spacing int) (*Spectrum, error) {
	n := len(data)
	if n < 4 {
		return nil, ErrShortSeries
	}
	if spacing < 1 {
		spacing = 1
	}
	mean := stat.Mean(data, nil)
	centered := make([]float64, n)
	for i, v := range data {
		centered[i] = v - mean
	}

	coeff := fft.FFTReal(centered)
	half := n / 2

	sp := &Spectrum{
		Freq:  make([]float64, half),
		Power: make([]float64, half),
	}
	for i := 1; i <= half; i++ {
		sp.Freq[i-1] = float64(i) / float64(n*spacing)
		sp.Power[i-1] = cmplx.Abs(coeff[i])
	}
	return sp, nil
}

// Dominant returns the strongest frequency and its period in timesteps.
// Both are zero for a flat series.
func (s *Spectrum) Dominant() (freq, period float64) {
	best := 0.
	for i, p := range s.Power {
		if p > best {
			best = p
			freq = s.Freq[i]
		}
	}
	if freq > 0 {
		period = 1 / freq
	}
	return freq, period
}
