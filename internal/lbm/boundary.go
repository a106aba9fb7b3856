package lbm

import (
	"github.com/san-kum/latticeflow/internal/grid"
	"github.com/san-kum/latticeflow/internal/lattice"
	"go.uber.org/zap"
)

// enforceBoundaries rewrites the unknown populations of the boundary nodes in
// Cur. It runs single-threaded before collision, in the order inlet, outlet,
// lower wall, upper wall.
func (s *Solver) enforceBoundaries() []BoundaryReport {
	b := s.cfg.Boundaries
	var reports []BoundaryReport
	if b.Inlet {
		if r, ok := s.fixInlet(); !ok {
			reports = append(reports, r)
		}
	}
	if b.Outlet {
		if r, ok := s.fixOutlet(); !ok {
			reports = append(reports, r)
		}
	}
	if b.Lower {
		s.fixNoSlipLower()
	}
	if b.Upper {
		s.fixNoSlipUpper()
	}
	for _, r := range reports {
		s.log.Warn("inconsistent topology at density boundary",
			zap.Int("step", s.timestep),
			zap.String("edge", string(r.Edge)),
			zap.Ints("lower", r.Lower[:]),
			zap.Ints("upper", r.Upper[:]),
		)
	}
	return reports
}

// wallColumns is the column range covered by the no-slip walls. Columns owned
// by an enabled density boundary are excluded. Solid nodes on the wall rows
// are left alone.
func (s *Solver) wallColumns() (from, to int) {
	from, to = 0, s.f.NX
	if s.cfg.Boundaries.Inlet {
		from = 1
	}
	if s.cfg.Boundaries.Outlet {
		to--
	}
	return from, to
}

func (s *Solver) fixNoSlipLower() {
	f := s.f
	from, to := s.wallColumns()
	for i := from; i < to; i++ {
		k := f.Index(i, 0)
		if !f.IsFluid(k) {
			continue
		}
		n := f.Dist(k)
		dx := 0.5 * (n[lattice.East] - n[lattice.West])
		n[lattice.North] = n[lattice.South]
		n[lattice.NorthEast] = n[lattice.SouthWest] - dx
		n[lattice.NorthWest] = n[lattice.SouthEast] + dx
		f.Rho[k], _, _ = lattice.Moments(n)
	}
}

func (s *Solver) fixNoSlipUpper() {
	f := s.f
	from, to := s.wallColumns()
	for i := from; i < to; i++ {
		k := f.Index(i, f.NY-1)
		if !f.IsFluid(k) {
			continue
		}
		n := f.Dist(k)
		dx := 0.5 * (n[lattice.East] - n[lattice.West])
		n[lattice.South] = n[lattice.North]
		n[lattice.SouthWest] = n[lattice.NorthEast] + dx
		n[lattice.SouthEast] = n[lattice.NorthWest] - dx
		f.Rho[k], _, _ = lattice.Moments(n)
	}
}

// cornerRows scans column i for fluid nodes touching a solid node from above
// (lower corner, smallest row) or from below (upper corner, largest row).
// lo is NY and hi is -1 when none exists.
func (s *Solver) cornerRows(i int) (lo, hi int) {
	f := s.f
	lo, hi = f.NY, -1
	for j := 0; j < f.NY; j++ {
		if f.Topo[f.Index(i, j)] == grid.Fluid {
			continue
		}
		if j < f.NY-1 && f.Topo[f.Index(i, j+1)] == grid.Fluid {
			lo = min(lo, j+1)
		}
		if j > 0 && f.Topo[f.Index(i, j-1)] == grid.Fluid {
			hi = max(hi, j-1)
		}
	}
	return lo, hi
}

// fixInlet imposes RhoInlet on column 0. ok is false when the corner pair was
// missing and the corner correction skipped.
func (s *Solver) fixInlet() (BoundaryReport, bool) {
	f := s.f
	rhoIn := s.cfg.RhoInlet
	const a = 0

	for j := 0; j < f.NY; j++ {
		k := f.Index(a, j)
		if f.Topo[k] != grid.Fluid {
			continue
		}
		n := f.Dist(k)
		s1 := n[lattice.Rest] + n[lattice.North] + n[lattice.South]
		s2 := n[lattice.West] + n[lattice.NorthWest] + n[lattice.SouthWest]
		dn := 0.5 * (n[lattice.North] - n[lattice.South])
		u := 1. - (s1+2.*s2)/rhoIn
		r6 := rhoIn * u / 6.
		f.Ux[k] = u
		n[lattice.East] = n[lattice.West] + 4.*r6
		n[lattice.NorthEast] = n[lattice.SouthWest] - dn + r6
		n[lattice.SouthEast] = n[lattice.NorthWest] + dn + r6
	}

	lo, hi := s.cornerRows(a)
	if lo >= f.NY || hi < 0 {
		return BoundaryReport{Edge: EdgeInlet, Lower: [2]int{a, lo}, Upper: [2]int{a, hi}}, false
	}

	n := f.Dist(f.Index(a, lo))
	e := 0.5 * (rhoIn - n[lattice.Rest] - 2.*(n[lattice.West]+n[lattice.South]+n[lattice.SouthWest]))
	n[lattice.East] = n[lattice.West]
	n[lattice.North] = n[lattice.South]
	n[lattice.NorthEast] = n[lattice.SouthWest]
	n[lattice.NorthWest] = e
	n[lattice.SouthEast] = e

	n = f.Dist(f.Index(a, hi))
	e = 0.5 * (rhoIn - n[lattice.Rest] - 2.*(n[lattice.North]+n[lattice.West]+n[lattice.NorthWest]))
	n[lattice.East] = n[lattice.West]
	n[lattice.South] = n[lattice.North]
	n[lattice.SouthEast] = n[lattice.NorthWest]
	n[lattice.NorthEast] = e
	n[lattice.SouthWest] = e
	return BoundaryReport{}, true
}

// fixOutlet imposes RhoOutlet on column NX-1.
func (s *Solver) fixOutlet() (BoundaryReport, bool) {
	f := s.f
	rhoOut := s.cfg.RhoOutlet
	b := f.NX - 1

	for j := 0; j < f.NY; j++ {
		k := f.Index(b, j)
		if f.Topo[k] != grid.Fluid {
			continue
		}
		n := f.Dist(k)
		s1 := n[lattice.Rest] + n[lattice.North] + n[lattice.South]
		s2 := n[lattice.East] + n[lattice.NorthEast] + n[lattice.SouthEast]
		dn := 0.5 * (n[lattice.North] - n[lattice.South])
		u := (s1+2.*s2)/rhoOut - 1.
		r6 := rhoOut * u / 6.
		f.Ux[k] = u
		n[lattice.West] = n[lattice.East] - 4.*r6
		n[lattice.NorthWest] = n[lattice.SouthEast] - dn - r6
		n[lattice.SouthWest] = n[lattice.NorthEast] + dn - r6
	}

	lo, hi := s.cornerRows(b)
	if lo >= f.NY || hi < 0 {
		return BoundaryReport{Edge: EdgeOutlet, Lower: [2]int{b, lo}, Upper: [2]int{b, hi}}, false
	}

	n := f.Dist(f.Index(b, lo))
	e := 0.5 * (rhoOut - n[lattice.Rest] - 2.*(n[lattice.East]+n[lattice.South]+n[lattice.SouthEast]))
	n[lattice.North] = n[lattice.South]
	n[lattice.West] = n[lattice.East]
	n[lattice.NorthWest] = n[lattice.SouthEast]
	n[lattice.NorthEast] = e
	n[lattice.SouthWest] = e

	n = f.Dist(f.Index(b, hi))
	e = 0.5 * (rhoOut - n[lattice.Rest] - 2.*(n[lattice.East]+n[lattice.North]+n[lattice.NorthEast]))
	n[lattice.West] = n[lattice.East]
	n[lattice.South] = n[lattice.North]
	n[lattice.SouthWest] = n[lattice.NorthEast]
	n[lattice.NorthWest] = e
	n[lattice.SouthEast] = e
	return BoundaryReport{}, true
}
