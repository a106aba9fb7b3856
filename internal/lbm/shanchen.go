package lbm

import (
	"github.com/san-kum/latticeflow/internal/grid"
	"github.com/san-kum/latticeflow/internal/lattice"
)

// potentialRows fills Rho and Psi for every node of rows [j0, j1). It must
// complete for the whole grid before any force is evaluated.
func (s *Solver) potentialRows(j0, j1 int) {
	f := s.f
	for j := j0; j < j1; j++ {
		for i := 0; i < f.NX; i++ {
			k := j*f.NX + i
			if f.Topo[k] != grid.Fluid {
				f.Rho[k] = s.cfg.RhoSolid
				f.Psi[k] = lattice.SolidPotential
				continue
			}
			rho, _, _ := lattice.Moments(f.Dist(k))
			f.Rho[k] = rho
			f.Psi[k] = s.psi(rho)
		}
	}
}

// shanChenForce returns the pseudo-potential force per unit mass acting on
// fluid node (i, j). Columns beyond an enabled density boundary clamp to the
// boundary column instead of wrapping.
func (s *Solver) shanChenForce(i, j int) (fx, fy float64) {
	f := s.f
	nx, ny := f.NX, f.NY
	gff, gfs := s.cfg.GFluid, s.cfg.GSolid

	var sx, sy float64
	for q := 1; q < lattice.Q; q++ {
		ni := i + lattice.Ex[q]
		switch {
		case ni < 0:
			if s.cfg.Boundaries.Inlet {
				ni = 0
			} else {
				ni = nx - 1
			}
		case ni >= nx:
			if s.cfg.Boundaries.Outlet {
				ni = nx - 1
			} else {
				ni = 0
			}
		}
		nj := j + lattice.Ey[q]
		if nj < 0 {
			nj += ny
		} else if nj >= ny {
			nj -= ny
		}

		nk := nj*nx + ni
		G := gff
		if f.Topo[nk] != grid.Fluid {
			G = gfs
		}
		w := G * lattice.Weights[q] * f.Psi[nk]
		sx += w * lattice.EXf[q]
		sy += w * lattice.EYf[q]
	}

	k := j*nx + i
	rho := f.Rho[k]
	if rho == 0 {
		return 0, 0
	}
	return -f.Psi[k] * sx / rho, -f.Psi[k] * sy / rho
}
