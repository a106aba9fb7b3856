package grid

import (
	"testing"

	"github.com/san-kum/latticeflow/internal/lattice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTopology_Invalid(t *testing.T) {
	_, err := NewTopology(0, 4)
	assert.ErrorIs(t, err, ErrEmptyGrid)

	topo := &Topology{NX: 3, NY: 3, Tags: make([]int, 8)}
	assert.ErrorIs(t, topo.Validate(), ErrTopologySize)
}

func TestNeighborTableWraps(t *testing.T) {
	topo, err := NewTopology(4, 3)
	require.NoError(t, err)
	f, err := NewFields(topo)
	require.NoError(t, err)

	tests := []struct {
		name   string
		i, j   int
		q      int
		ni, nj int
	}{
		{"rest", 1, 1, lattice.Rest, 1, 1},
		{"east interior", 1, 1, lattice.East, 2, 1},
		{"east wraps", 3, 1, lattice.East, 0, 1},
		{"west wraps", 0, 2, lattice.West, 3, 2},
		{"north wraps", 2, 2, lattice.North, 2, 0},
		{"south wraps", 2, 0, lattice.South, 2, 2},
		{"south-west corner", 0, 0, lattice.SouthWest, 3, 2},
		{"north-east corner", 3, 2, lattice.NorthEast, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.NeighborOf(f.Index(tt.i, tt.j), tt.q)
			i, j := f.Coord(got)
			assert.Equal(t, tt.ni, i)
			assert.Equal(t, tt.nj, j)
		})
	}
}

func TestFieldsCopiesTopology(t *testing.T) {
	topo, err := NewTopology(3, 3)
	require.NoError(t, err)
	topo.Set(1, 1, 1)

	f, err := NewFields(topo)
	require.NoError(t, err)
	topo.Set(1, 1, 0)

	assert.False(t, f.IsFluid(f.Index(1, 1)))
	assert.Equal(t, 8, f.Topology().FluidCount())
	assert.Len(t, f.Dist(4), lattice.Q)
	assert.Equal(t, lattice.Q, cap(f.PostDist(4)))
}
