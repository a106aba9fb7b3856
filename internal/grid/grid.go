// Package grid owns the per-node arrays of a two-dimensional lattice: node
// classification, macroscopic caches, the two distribution buffers and the
// precomputed periodic neighbor table. It has no behavior beyond allocation
// and indexing.
package grid

import (
	"errors"
	"fmt"

	"github.com/san-kum/latticeflow/internal/lattice"
)

var (
	ErrEmptyGrid    = errors.New("grid: dimensions must be positive")
	ErrTopologySize = errors.New("grid: topology size does not match dimensions")
	ErrOutOfBounds  = errors.New("grid: coordinate out of bounds")
)

// Fluid is the topology tag of a fluid node. Any other value is solid.
const Fluid = 0

// Topology is a row-major node classification, index j*NX+i.
type Topology struct {
	NX, NY int
	Tags   []int
}

// NewTopology returns an all-fluid topology.
func NewTopology(nx, ny int) (*Topology, error) {
	if nx <= 0 || ny <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyGrid, nx, ny)
	}
	return &Topology{NX: nx, NY: ny, Tags: make([]int, nx*ny)}, nil
}

func (t *Topology) Index(i, j int) int { return j*t.NX + i }

func (t *Topology) InBounds(i, j int) bool {
	return i >= 0 && i < t.NX && j >= 0 && j < t.NY
}

func (t *Topology) At(i, j int) int { return t.Tags[t.Index(i, j)] }

func (t *Topology) Set(i, j, tag int) { t.Tags[t.Index(i, j)] = tag }

func (t *Topology) IsFluid(i, j int) bool { return t.Tags[t.Index(i, j)] == Fluid }

// FluidCount returns the number of fluid nodes.
func (t *Topology) FluidCount() int {
	n := 0
	for _, v := range t.Tags {
		if v == Fluid {
			n++
		}
	}
	return n
}

// Clone returns an independent copy.
func (t *Topology) Clone() *Topology {
	c := &Topology{NX: t.NX, NY: t.NY, Tags: make([]int, len(t.Tags))}
	copy(c.Tags, t.Tags)
	return c
}

// Validate checks the tag slice against the dimensions.
func (t *Topology) Validate() error {
	if t.NX <= 0 || t.NY <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrEmptyGrid, t.NX, t.NY)
	}
	if len(t.Tags) != t.NX*t.NY {
		return fmt.Errorf("%w: %d tags for %dx%d", ErrTopologySize, len(t.Tags), t.NX, t.NY)
	}
	return nil
}

// Fields is the solver's field store. Distribution buffers hold nine values
// per node at offset k*lattice.Q.
type Fields struct {
	NX, NY int
	Topo   []int

	Rho, Ux, Uy, U2, Press, Psi []float64

	// Cur is the post-streaming buffer, Post the post-collision buffer.
	Cur, Post []float64

	// Neighbor holds the periodic destination of direction q from node k at
	// k*lattice.Q+q.
	Neighbor []int32
}

// NewFields allocates all arrays for the topology and builds the neighbor
// table. The topology tags are copied.
func NewFields(topo *Topology) (*Fields, error) {
	if err := topo.Validate(); err != nil {
		return nil, err
	}
	n := topo.NX * topo.NY
	f := &Fields{
		NX:       topo.NX,
		NY:       topo.NY,
		Topo:     make([]int, n),
		Rho:      make([]float64, n),
		Ux:       make([]float64, n),
		Uy:       make([]float64, n),
		U2:       make([]float64, n),
		Press:    make([]float64, n),
		Psi:      make([]float64, n),
		Cur:      make([]float64, n*lattice.Q),
		Post:     make([]float64, n*lattice.Q),
		Neighbor: make([]int32, n*lattice.Q),
	}
	copy(f.Topo, topo.Tags)
	f.buildNeighbors()
	return f, nil
}

func (f *Fields) buildNeighbors() {
	for j := 0; j < f.NY; j++ {
		for i := 0; i < f.NX; i++ {
			k := f.Index(i, j)
			for q := 0; q < lattice.Q; q++ {
				ni := wrap(i+lattice.Ex[q], f.NX)
				nj := wrap(j+lattice.Ey[q], f.NY)
				f.Neighbor[k*lattice.Q+q] = int32(f.Index(ni, nj))
			}
		}
	}
}

func wrap(v, n int) int {
	if v < 0 {
		return v + n
	}
	if v >= n {
		return v - n
	}
	return v
}

func (f *Fields) Len() int { return f.NX * f.NY }

func (f *Fields) Index(i, j int) int { return j*f.NX + i }

// Coord is the inverse of Index.
func (f *Fields) Coord(k int) (i, j int) { return k % f.NX, k / f.NX }

func (f *Fields) IsFluid(k int) bool { return f.Topo[k] == Fluid }

// Dist returns the nine current populations of node k as a sub-slice.
func (f *Fields) Dist(k int) []float64 {
	return f.Cur[k*lattice.Q : (k+1)*lattice.Q : (k+1)*lattice.Q]
}

// PostDist returns the nine post-collision populations of node k.
func (f *Fields) PostDist(k int) []float64 {
	return f.Post[k*lattice.Q : (k+1)*lattice.Q : (k+1)*lattice.Q]
}

// NeighborOf returns the periodic neighbor of node k in direction q.
func (f *Fields) NeighborOf(k, q int) int {
	return int(f.Neighbor[k*lattice.Q+q])
}

// Topology rebuilds a Topology view of the stored tags.
func (f *Fields) Topology() *Topology {
	t := &Topology{NX: f.NX, NY: f.NY, Tags: make([]int, len(f.Topo))}
	copy(t.Tags, f.Topo)
	return t
}
