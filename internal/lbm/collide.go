package lbm

import (
	"github.com/san-kum/latticeflow/internal/grid"
	"github.com/san-kum/latticeflow/internal/lattice"
)

// relaxTarget fills g with the populations a node relaxes towards. (vx, vy)
// is the raw momentum velocity, (ux, uy) the half-force corrected one and
// (fx, fy) the total force per unit mass.
type relaxTarget func(g *[lattice.Q]float64, rho, vx, vy, ux, uy, fx, fy float64)

func newRelaxTarget(forcing Forcing, tau float64) relaxTarget {
	if forcing == ForcingShifted {
		return func(g *[lattice.Q]float64, rho, vx, vy, _, _, fx, fy float64) {
			lattice.EquilibriumAll(g, rho, vx+tau*fx, vy+tau*fy)
		}
	}
	c := 3. * (tau - 0.5)
	return func(g *[lattice.Q]float64, rho, _, _, ux, uy, fx, fy float64) {
		lattice.EquilibriumAll(g, rho, ux, uy)
		for q := 0; q < lattice.Q; q++ {
			g[q] *= 1. + c*((lattice.EXf[q]-ux)*fx+(lattice.EYf[q]-uy)*fy)
		}
	}
}

// collide runs the configured collision over all rows and returns the total
// fluid mass.
func (s *Solver) collide() float64 {
	ny := s.f.NY
	if !s.cfg.Multiphase() {
		return s.pool.Sum(ny, s.collideRows)
	}
	s.pool.For(ny, s.potentialRows)
	return s.pool.Sum(ny, s.collideShanChenRows)
}

func (s *Solver) collideRows(j0, j1 int) float64 {
	f := s.f
	omega := s.params.Omega
	gx, gy := s.cfg.GravX, s.cfg.GravY

	var g [lattice.Q]float64
	mass := 0.
	for j := j0; j < j1; j++ {
		for i := 0; i < f.NX; i++ {
			k := j*f.NX + i
			if f.Topo[k] != grid.Fluid {
				continue
			}
			n := f.Dist(k)
			rho, jx, jy := lattice.Moments(n)
			vx, vy := jx/rho, jy/rho
			ux, uy := vx+0.5*gx, vy+0.5*gy

			f.Rho[k] = rho
			f.Ux[k], f.Uy[k] = ux, uy
			f.U2[k] = ux*ux + uy*uy
			f.Press[k] = rho / 3.
			mass += rho

			s.relax(&g, rho, vx, vy, ux, uy, gx, gy)
			post := f.PostDist(k)
			for q := range post {
				post[q] = n[q] - omega*(n[q]-g[q])
			}
		}
	}
	return mass
}

func (s *Solver) collideShanChenRows(j0, j1 int) float64 {
	f := s.f
	omega := s.params.Omega
	gff := s.cfg.GFluid

	var g [lattice.Q]float64
	mass := 0.
	for j := j0; j < j1; j++ {
		for i := 0; i < f.NX; i++ {
			k := j*f.NX + i
			if f.Topo[k] != grid.Fluid {
				continue
			}
			sx, sy := s.shanChenForce(i, j)
			fx, fy := s.cfg.GravX+sx, s.cfg.GravY+sy

			n := f.Dist(k)
			_, jx, jy := lattice.Moments(n)
			rho := f.Rho[k]
			vx, vy := jx/rho, jy/rho
			ux, uy := vx+0.5*fx, vy+0.5*fy

			f.Ux[k], f.Uy[k] = ux, uy
			f.U2[k] = ux*ux + uy*uy
			psi := f.Psi[k]
			f.Press[k] = rho/3. + gff*psi*psi/6.
			mass += rho

			s.relax(&g, rho, vx, vy, ux, uy, fx, fy)
			post := f.PostDist(k)
			for q := range post {
				post[q] = n[q] - omega*(n[q]-g[q])
			}
		}
	}
	return mass
}
