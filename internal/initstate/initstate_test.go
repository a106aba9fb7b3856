package initstate

import (
	"testing"

	"github.com/san-kum/latticeflow/internal/config"
	"github.com/san-kum/latticeflow/internal/grid"
	"github.com/san-kum/latticeflow/internal/lattice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields(t *testing.T, nx, ny int, solid ...[2]int) *grid.Fields {
	t.Helper()
	topo, err := grid.NewTopology(nx, ny)
	require.NoError(t, err)
	for _, s := range solid {
		topo.Set(s[0], s[1], 1)
	}
	f, err := grid.NewFields(topo)
	require.NoError(t, err)
	for k := 0; k < f.Len(); k++ {
		if f.IsFluid(k) {
			setRest(f, k, 1)
		}
	}
	return f
}

func density(f *grid.Fields, i, j int) float64 {
	rho, _, _ := lattice.Moments(f.Dist(f.Index(i, j)))
	return rho
}

func TestSplit(t *testing.T) {
	f := fields(t, 6, 4, [2]int{5, 3})
	require.NoError(t, Split{Rho: 2, Background: 0.5, X: 3, Y: 2}.Apply(f))

	assert.InDelta(t, 2, density(f, 3, 2), 1e-15)
	assert.InDelta(t, 2, density(f, 4, 3), 1e-15)
	assert.InDelta(t, 0.5, density(f, 2, 3), 1e-15)
	assert.InDelta(t, 0.5, density(f, 4, 1), 1e-15)
	assert.Zero(t, density(f, 5, 3), "solid node untouched")
}

func TestSplit_OutOfRange(t *testing.T) {
	f := fields(t, 4, 4)
	assert.ErrorIs(t, Split{Rho: 1, X: 0, Y: 1}.Apply(f), ErrOutOfRange)
	assert.ErrorIs(t, Split{Rho: 1, X: 1, Y: 5}.Apply(f), ErrOutOfRange)
}

func TestGradients(t *testing.T) {
	f := fields(t, 5, 3)
	require.NoError(t, GradientX{Left: 1, Right: 2}.Apply(f))
	for i := 0; i < 5; i++ {
		assert.InDelta(t, 1+0.25*float64(i), density(f, i, 1), 1e-15)
	}

	require.NoError(t, GradientY{Bottom: 0.4, Top: 0.2}.Apply(f))
	assert.InDelta(t, 0.4, density(f, 2, 0), 1e-15)
	assert.InDelta(t, 0.3, density(f, 2, 1), 1e-15)
	assert.InDelta(t, 0.2, density(f, 2, 2), 1e-15)
}

func TestDroplet(t *testing.T) {
	f := fields(t, 11, 11)
	require.NoError(t, Droplet{Inside: 2, Outside: 0.1, XC: 6, YC: 6, Radius: 3}.Apply(f))

	assert.InDelta(t, 2, density(f, 5, 5), 1e-15)
	assert.InDelta(t, 2, density(f, 8, 5), 1e-15, "on the radius")
	assert.InDelta(t, 0.1, density(f, 9, 5), 1e-15)
	assert.InDelta(t, 0.1, density(f, 0, 0), 1e-15)

	assert.ErrorIs(t, Droplet{XC: 12, YC: 1}.Apply(f), ErrOutOfRange)
}

func TestNoise(t *testing.T) {
	total := func(f *grid.Fields) float64 {
		m := 0.
		for k := 0; k < f.Len(); k++ {
			if f.IsFluid(k) {
				r, _, _ := lattice.Moments(f.Dist(k))
				m += r
			}
		}
		return m
	}

	f := fields(t, 10, 8, [2]int{0, 0}, [2]int{1, 0})
	m0 := total(f)
	require.NoError(t, Noise{DeltaRho: 0.1, Seed: 42}.Apply(f))
	assert.InDelta(t, m0, total(f), 1e-12)
	assert.NotEqual(t, 1.0, density(f, 3, 3))

	g := fields(t, 10, 8, [2]int{0, 0}, [2]int{1, 0})
	require.NoError(t, Noise{DeltaRho: 0.1, Seed: 42}.Apply(g))
	assert.Equal(t, f.Cur, g.Cur, "same seed, same field")
}

func TestNoise_Disabled(t *testing.T) {
	for _, n := range []Noise{{DeltaRho: -1, Seed: 3}, {DeltaRho: 0.2, Seed: 0}} {
		f := fields(t, 4, 4)
		before := append([]float64(nil), f.Cur...)
		require.NoError(t, n.Apply(f))
		assert.Equal(t, before, f.Cur)
		assert.False(t, n.Enabled())
	}
}

func TestFromConfig(t *testing.T) {
	tests := []struct {
		cfg  config.InitialConfig
		want string
	}{
		{config.InitialConfig{Kind: "split", RhoSplit: 2, XSplit: 1, YSplit: 1}, config.InitialSplit},
		{config.InitialConfig{Kind: "RHO_GRAD_X"}, config.InitialGradientX},
		{config.InitialConfig{Kind: "rho_grad_y"}, config.InitialGradientY},
		{config.InitialConfig{Kind: "droplet"}, config.InitialDroplet},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			g, err := FromConfig(tt.cfg, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.Name())
		})
	}

	g, err := FromConfig(config.InitialConfig{Kind: "none"}, 1)
	require.NoError(t, err)
	assert.Nil(t, g)

	_, err = FromConfig(config.InitialConfig{Kind: "vortex"}, 1)
	assert.ErrorIs(t, err, ErrUnknownKind)
}
