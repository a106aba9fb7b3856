package lbm

import (
	"math"

	"github.com/san-kum/latticeflow/internal/grid"
	"github.com/san-kum/latticeflow/internal/lattice"
	"go.uber.org/zap"
)

// Diagnosis is the outcome of one stability check.
type Diagnosis struct {
	Norm      float64
	DeltaNorm float64
	Warn      bool
	Halt      bool
}

// Diagnose compares the current mass-density norm with the one stored by the
// previous call. The first call after New or LoadState only records the
// baseline. A non-finite norm halts on any later call.
func (s *Solver) Diagnose() Diagnosis {
	norm := 0.
	if s.volume > 0 {
		norm = s.mass / s.volume
	}
	if !s.diagReady {
		s.prevNorm = norm
		s.diagReady = true
		return Diagnosis{Norm: norm}
	}

	d := Diagnosis{Norm: norm, DeltaNorm: math.Abs(norm - s.prevNorm)}
	s.prevNorm = norm

	if math.IsNaN(d.DeltaNorm) || math.IsInf(d.DeltaNorm, 0) {
		d.Warn, d.Halt = true, true
	} else {
		d.Warn = d.DeltaNorm > s.cfg.WarnThreshold
		d.Halt = d.DeltaNorm > s.cfg.HaltThreshold
	}

	switch {
	case d.Halt:
		s.log.Warn("density norm diverged, halting",
			zap.Int("step", s.timestep),
			zap.Float64("norm", d.Norm),
			zap.Float64("delta", d.DeltaNorm))
	case d.Warn:
		s.log.Warn("density norm unstable",
			zap.Int("step", s.timestep),
			zap.Float64("norm", d.Norm),
			zap.Float64("delta", d.DeltaNorm))
	}
	return d
}

// Residual holds the Chapman-Enskog reconstruction errors.
type Residual struct {
	Rho, Ux, Uy float64
}

// Max returns the largest component.
func (r Residual) Max() float64 { return max(r.Rho, r.Ux, r.Uy) }

// ChapmanEnskog rebuilds density and velocity from the equilibrium of the
// cached fields at every fluid node and returns the root-sum-square of the
// differences divided by the fluid volume.
func (s *Solver) ChapmanEnskog() Residual {
	f := s.f
	var g [lattice.Q]float64
	var er, ex, ey float64
	vol := 0.
	for k := 0; k < f.Len(); k++ {
		if f.Topo[k] != grid.Fluid {
			continue
		}
		vol++
		rho, ux, uy := f.Rho[k], f.Ux[k], f.Uy[k]
		lattice.EquilibriumAll(&g, rho, ux, uy)
		r, jx, jy := lattice.Moments(g[:])
		er += (r - rho) * (r - rho)
		if r != 0 {
			dx, dy := jx/r-ux, jy/r-uy
			ex += dx * dx
			ey += dy * dy
		}
	}
	if vol == 0 {
		return Residual{}
	}
	res := Residual{
		Rho: math.Sqrt(er) / vol,
		Ux:  math.Sqrt(ex) / vol,
		Uy:  math.Sqrt(ey) / vol,
	}
	if res.Max() > DefaultResidualWarn {
		s.log.Warn("chapman-enskog residual high",
			zap.Int("step", s.timestep),
			zap.Float64("rho", res.Rho),
			zap.Float64("ux", res.Ux),
			zap.Float64("uy", res.Uy))
	}
	return res
}

// ChapmanEnskogLite is the density-only residual. It runs on the worker pool.
func (s *Solver) ChapmanEnskogLite() float64 {
	f := s.f
	sq := s.pool.Sum(f.NY, func(j0, j1 int) float64 {
		var g [lattice.Q]float64
		acc := 0.
		for k := j0 * f.NX; k < j1*f.NX; k++ {
			if f.Topo[k] != grid.Fluid {
				continue
			}
			rho := f.Rho[k]
			lattice.EquilibriumAll(&g, rho, f.Ux[k], f.Uy[k])
			r := 0.
			for _, v := range g {
				r += v
			}
			acc += (r - rho) * (r - rho)
		}
		return acc
	})
	if s.volume == 0 {
		return 0
	}
	res := math.Sqrt(sq) / s.volume
	if res > DefaultResidualWarn {
		s.log.Warn("chapman-enskog density residual high",
			zap.Int("step", s.timestep), zap.Float64("rho", res))
	}
	return res
}
