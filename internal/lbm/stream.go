package lbm

import (
	"github.com/san-kum/latticeflow/internal/grid"
	"github.com/san-kum/latticeflow/internal/lattice"
)

// stream moves Post into Cur along the neighbor table and returns the fluid
// volume. Populations heading into a solid node are reflected back into the
// opposite direction of their source node.
func (s *Solver) stream() float64 {
	return s.pool.Sum(s.f.NY, s.streamRows)
}

func (s *Solver) streamRows(j0, j1 int) float64 {
	f := s.f
	vol := 0.
	for k := j0 * f.NX; k < j1*f.NX; k++ {
		if f.Topo[k] != grid.Fluid {
			continue
		}
		vol++
		post := f.PostDist(k)
		nbr := f.Neighbor[k*lattice.Q : (k+1)*lattice.Q]
		for q := 0; q < lattice.Q; q++ {
			d := int(nbr[q])
			if f.Topo[d] == grid.Fluid {
				f.Cur[d*lattice.Q+q] = post[q]
			} else {
				f.Cur[k*lattice.Q+lattice.Opposite[q]] = post[q]
			}
		}
	}
	return vol
}
