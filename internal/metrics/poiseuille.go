package metrics

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/latticeflow/internal/grid"
	"github.com/san-kum/latticeflow/internal/lbm"
	"github.com/san-kum/latticeflow/internal/sim"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var ErrProfile = errors.New("metrics: profile cannot be fitted")

// Analytic returns the Poiseuille profile between walls at lo and hi driven
// by the pressure gradient grad (dp/dx) in a fluid of density rho and
// kinematic viscosity visc.
func Analytic(y []float64, lo, hi, grad, rho, visc float64) []float64 {
	u := make([]float64, len(y))
	c := -grad / (2 * rho * visc)
	for n, yy := range y {
		if yy <= lo || yy >= hi {
			continue
		}
		u[n] = c * (yy - lo) * (hi - yy)
	}
	return u
}

// PeakSpeed is the analytic centerline speed of the same profile.
func PeakSpeed(lo, hi, grad, rho, visc float64) float64 {
	h := (hi - lo) / 2
	return -grad / (2 * rho * visc) * h * h
}

// Fit is a least-squares parabola u = A + B*y + C*y^2.
type Fit struct {
	A, B, C float64
	R2      float64
}

// Center is the y position of the extremum.
func (f Fit) Center() float64 { return -f.B / (2 * f.C) }

// Peak is the fitted value at Center.
func (f Fit) Peak() float64 { return f.A - f.B*f.B/(4*f.C) }

func (f Fit) Eval(y float64) float64 { return f.A + f.B*y + f.C*y*y }

// FitParabola fits u(y) with at least three points.
func FitParabola(y, u []float64) (Fit, error) {
	if len(y) != len(u) {
		return Fit{}, fmt.Errorf("%w: %d positions for %d values", ErrProfile, len(y), len(u))
	}
	if len(y) < 3 {
		return Fit{}, fmt.Errorf("%w: %d points", ErrProfile, len(y))
	}

	a := mat.NewDense(len(y), 3, nil)
	for n, yy := range y {
		a.Set(n, 0, 1)
		a.Set(n, 1, yy)
		a.Set(n, 2, yy*yy)
	}
	var coef mat.VecDense
	if err := coef.SolveVec(a, mat.NewVecDense(len(u), append([]float64(nil), u...))); err != nil {
		return Fit{}, fmt.Errorf("%w: %v", ErrProfile, err)
	}

	fit := Fit{A: coef.AtVec(0), B: coef.AtVec(1), C: coef.AtVec(2)}
	if math.Abs(fit.C) < 1e-12*(1+floats.Norm(u, math.Inf(1))) {
		return Fit{}, fmt.Errorf("%w: flat profile", ErrProfile)
	}
	est := make([]float64, len(y))
	for n, yy := range y {
		est[n] = fit.Eval(yy)
	}
	fit.R2 = stat.RSquaredFrom(est, u, nil)
	return fit, nil
}

// ColumnProfile returns the y positions and ux values of the fluid nodes in
// column i.
func ColumnProfile(f *grid.Fields, i int) (y, ux []float64) {
	for j := 0; j < f.NY; j++ {
		k := f.Index(i, j)
		if !f.IsFluid(k) {
			continue
		}
		y = append(y, float64(j))
		ux = append(ux, f.Ux[k])
	}
	return y, ux
}

// Walls locates the no-slip planes around the fluid of column i. Solid rows
// put the wall half a cell outside the last fluid node, a no-slip boundary
// row puts it on the node itself.
func Walls(f *grid.Fields, i int, b lbm.Boundaries) (lo, hi float64, err error) {
	first, last := -1, -1
	for j := 0; j < f.NY; j++ {
		if f.IsFluid(f.Index(i, j)) {
			if first < 0 {
				first = j
			}
			last = j
		}
	}
	if first < 0 {
		return 0, 0, fmt.Errorf("%w: column %d has no fluid", ErrProfile, i)
	}
	lo, hi = float64(first)-0.5, float64(last)+0.5
	if first == 0 && b.Lower {
		lo = 0
	}
	if last == f.NY-1 && b.Upper {
		hi = float64(last)
	}
	return lo, hi, nil
}

// Poiseuille fits the mid-channel ux profile on every output step and reports
// the relative error of the fitted peak against the analytic peak for the
// imposed inlet and outlet densities.
type Poiseuille struct {
	name    string
	column  int
	last    Fit
	err     float64
	samples int
}

// NewPoiseuille observes column i; a negative i selects the middle column.
func NewPoiseuille(i int) *Poiseuille {
	return &Poiseuille{name: "poiseuille_error", column: i, err: math.NaN()}
}

func (p *Poiseuille) Name() string { return p.name }

func (p *Poiseuille) Observe(s *lbm.Solver, _ sim.Report) {
	f := s.Fields()
	i := p.column
	if i < 0 || i >= f.NX {
		i = f.NX / 2
	}
	y, ux := ColumnProfile(f, i)
	fit, err := FitParabola(y, ux)
	if err != nil {
		return
	}
	p.last = fit
	p.samples++

	cfg, params := s.Config(), s.Params()
	lo, hi, err := Walls(f, i, cfg.Boundaries)
	if err != nil {
		return
	}
	want := PeakSpeed(lo, hi, params.PressGrad, cfg.RhoInit, params.Viscosity)
	if want == 0 || floats.HasNaN(ux) {
		p.err = math.NaN()
		return
	}
	p.err = math.Abs(fit.Peak()-want) / math.Abs(want)
}

// Value is NaN until a profile with a driving pressure gradient was fitted.
func (p *Poiseuille) Value() float64 { return p.err }

// Last returns the most recent fit.
func (p *Poiseuille) Last() Fit { return p.last }

func (p *Poiseuille) Reset() {
	p.last = Fit{}
	p.err = math.NaN()
	p.samples = 0
}
