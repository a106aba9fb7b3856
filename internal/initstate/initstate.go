// Package initstate writes custom initial distributions into a field store.
// Every generator sets fluid nodes to the rest equilibrium f_q = rho*w_q of
// its density profile and leaves solid nodes untouched. Coordinates given to
// generators are 1-based, like the field output.
package initstate

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/san-kum/latticeflow/internal/config"
	"github.com/san-kum/latticeflow/internal/grid"
	"github.com/san-kum/latticeflow/internal/lattice"
)

var (
	ErrUnknownKind = errors.New("initstate: unknown initial state")
	ErrOutOfRange  = errors.New("initstate: coordinate out of range")
)

// Generator fills the distributions of a freshly initialized field store.
type Generator interface {
	Name() string
	Apply(f *grid.Fields) error
}

func setRest(f *grid.Fields, k int, rho float64) {
	n := f.Dist(k)
	for q := range n {
		n[q] = rho * lattice.Weights[q]
	}
}

func checkCoord(v, n int, axis string) (int, error) {
	if v < 1 || v > n {
		return 0, fmt.Errorf("%w: %s=%d not in [1,%d]", ErrOutOfRange, axis, v, n)
	}
	return v - 1, nil
}

// Split sets Rho on nodes strictly above and to the right of (X, Y) and
// Background elsewhere.
type Split struct {
	Rho        float64
	Background float64
	X, Y       int
}

func (Split) Name() string { return config.InitialSplit }

func (s Split) Apply(f *grid.Fields) error {
	is, err := checkCoord(s.X, f.NX, "x")
	if err != nil {
		return err
	}
	js, err := checkCoord(s.Y, f.NY, "y")
	if err != nil {
		return err
	}
	for k := 0; k < f.Len(); k++ {
		if !f.IsFluid(k) {
			continue
		}
		i, j := f.Coord(k)
		if i > is && j > js {
			setRest(f, k, s.Rho)
		} else {
			setRest(f, k, s.Background)
		}
	}
	return nil
}

// GradientX is a linear density ramp from Left at i=0 to Right at i=NX-1.
type GradientX struct {
	Left, Right float64
}

func (GradientX) Name() string { return config.InitialGradientX }

func (g GradientX) Apply(f *grid.Fields) error {
	step := 0.
	if f.NX > 1 {
		step = (g.Right - g.Left) / float64(f.NX-1)
	}
	for k := 0; k < f.Len(); k++ {
		if f.IsFluid(k) {
			i, _ := f.Coord(k)
			setRest(f, k, g.Left+float64(i)*step)
		}
	}
	return nil
}

// GradientY is a linear density ramp from Bottom at j=0 to Top at j=NY-1.
type GradientY struct {
	Bottom, Top float64
}

func (GradientY) Name() string { return config.InitialGradientY }

func (g GradientY) Apply(f *grid.Fields) error {
	step := 0.
	if f.NY > 1 {
		step = (g.Top - g.Bottom) / float64(f.NY-1)
	}
	for k := 0; k < f.Len(); k++ {
		if f.IsFluid(k) {
			_, j := f.Coord(k)
			setRest(f, k, g.Bottom+float64(j)*step)
		}
	}
	return nil
}

// Droplet is a disc of density Inside centred on (XC, YC).
type Droplet struct {
	Inside, Outside float64
	XC, YC          int
	Radius          float64
}

func (Droplet) Name() string { return config.InitialDroplet }

func (d Droplet) Apply(f *grid.Fields) error {
	ic, err := checkCoord(d.XC, f.NX, "xc")
	if err != nil {
		return err
	}
	jc, err := checkCoord(d.YC, f.NY, "yc")
	if err != nil {
		return err
	}
	for k := 0; k < f.Len(); k++ {
		if !f.IsFluid(k) {
			continue
		}
		i, j := f.Coord(k)
		if math.Hypot(float64(i-ic), float64(j-jc)) <= d.Radius {
			setRest(f, k, d.Inside)
		} else {
			setRest(f, k, d.Outside)
		}
	}
	return nil
}

// Noise perturbs every fluid density by a uniform value in
// [-DeltaRho/2, DeltaRho/2) and rescales so total mass is unchanged. It is a
// no-op when DeltaRho is negative or Seed is zero.
type Noise struct {
	DeltaRho float64
	Seed     int64
}

func (Noise) Name() string { return "noise" }

// Enabled reports whether Apply changes anything.
func (n Noise) Enabled() bool { return n.DeltaRho >= 0 && n.Seed != 0 }

func (n Noise) Apply(f *grid.Fields) error {
	if !n.Enabled() {
		return nil
	}
	rng := rand.New(rand.NewSource(n.Seed))
	rho := make([]float64, f.Len())
	var original, perturbed float64
	for k := range rho {
		if !f.IsFluid(k) {
			continue
		}
		r, _, _ := lattice.Moments(f.Dist(k))
		original += r
		r += (rng.Float64() - 0.5) * n.DeltaRho
		rho[k] = r
		perturbed += r
	}
	if perturbed == 0 {
		return fmt.Errorf("initstate: noise cancelled the total mass")
	}
	scale := original / perturbed
	for k, r := range rho {
		if f.IsFluid(k) {
			setRest(f, k, scale*r)
		}
	}
	return nil
}

// FromConfig builds the generator for a run's initial-state section. It
// returns nil for "none". background is used by split outside the region.
func FromConfig(c config.InitialConfig, background float64) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(c.Kind)) {
	case "", config.InitialNone:
		return nil, nil
	case config.InitialSplit:
		return Split{Rho: c.RhoSplit, Background: background, X: c.XSplit, Y: c.YSplit}, nil
	case config.InitialGradientX:
		return GradientX{Left: c.From, Right: c.To}, nil
	case config.InitialGradientY:
		return GradientY{Bottom: c.From, Top: c.To}, nil
	case config.InitialDroplet:
		return Droplet{Inside: c.RhoInside, Outside: c.RhoOutside, XC: c.XC, YC: c.YC, Radius: c.Radius}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, c.Kind)
}
