package analysis

import (
	"math"
	"testing"

	"github.com/san-kum/latticeflow/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPowerSpectrumFindsPeriod(t *testing.T) {
	const n, period = 64, 8
	data := make([]float64, n)
	for i := range data {
		data[i] = 3 + math.Sin(2*math.Pi*float64(i)/period)
	}
	sp, err := PowerSpectrum(data, 10)
	require.NoError(t, err)
	assert.Len(t, sp.Freq, n/2)

	freq, p := sp.Dominant()
	assert.InDelta(t, 1./(period*10), freq, 1e-12)
	assert.InDelta(t, period*10, p, 1e-9)
}

func TestPowerSpectrumShort(t *testing.T) {
	_, err := PowerSpectrum([]float64{1, 2}, 1)
	assert.ErrorIs(t, err, ErrShortSeries)
}

func TestFlatSpectrumHasNoPeriod(t *testing.T) {
	sp, err := PowerSpectrum([]float64{2, 2, 2, 2, 2, 2}, 1)
	require.NoError(t, err)
	freq, p := sp.Dominant()
	assert.Zero(t, freq)
	assert.Zero(t, p)
}

func samples(deltas ...float64) []storage.Sample {
	out := make([]storage.Sample, len(deltas))
	for i, d := range deltas {
		out[i] = storage.Sample{Step: 1 + 10*i, Norm: 1, Delta: d, Mass: 100}
	}
	return out
}

func TestConvergence(t *testing.T) {
	step, ok := Convergence(samples(1e-2, 1e-7, 1e-3, 1e-8, 1e-9), 1e-6)
	assert.True(t, ok)
	assert.Equal(t, 31, step)

	_, ok = Convergence(samples(1e-8, 1e-2), 1e-6)
	assert.False(t, ok)

	_, ok = Convergence(samples(1e-8, math.NaN()), 1e-6)
	assert.False(t, ok)

	_, ok = Convergence(nil, 1e-6)
	assert.False(t, ok)
}

func TestAnalyze(t *testing.T) {
	s := samples(1e-2, 1e-3, 1e-8, 1e-8, 1e-8)
	s[len(s)-1].Mass = 101

	r := Analyze(s, 1e-6)
	assert.Equal(t, 5, r.Samples)
	assert.Equal(t, 1, r.FirstStep)
	assert.Equal(t, 41, r.LastStep)
	assert.True(t, r.Converged)
	assert.Equal(t, 21, r.ConvergedAt)
	assert.InDelta(t, 0.01, r.MassDrift, 1e-12)
	assert.Greater(t, r.MassStdDev, 0.)
	require.NotNil(t, r.Spectrum)
	assert.Zero(t, r.Period, "constant norm")

	empty := Analyze(nil, 1e-6)
	assert.Zero(t, empty.Samples)
	assert.Nil(t, empty.Spectrum)
}
