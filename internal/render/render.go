// Package render draws solver fields as heat map images with gonum/plot.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	"github.com/san-kum/latticeflow/internal/grid"
	"github.com/san-kum/latticeflow/internal/storage"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var ErrUnknownField = errors.New("render: unknown field")

// Names lists the fields that can be drawn.
var Names = []string{"rho", "ux", "uy", "speed", "press", "psi"}

// Field is one scalar per node, row-major. Solid nodes hold NaN.
type Field struct {
	Name   string
	NX, NY int
	Values []float64
}

type columns struct {
	topo                        []int
	rho, ux, uy, u2, press, psi []float64
}

func (c columns) pick(name string, n int) ([]float64, error) {
	var src []float64
	speed := false
	switch strings.ToLower(name) {
	case "rho", "density":
		src = c.rho
	case "ux":
		src = c.ux
	case "uy":
		src = c.uy
	case "speed", "u":
		src, speed = c.u2, true
	case "press", "pressure":
		src = c.press
	case "psi":
		src = c.psi
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if len(src) != n {
		return nil, fmt.Errorf("%w: %q is not available", ErrUnknownField, name)
	}

	out := make([]float64, n)
	for k, v := range src {
		switch {
		case c.topo[k] != grid.Fluid:
			out[k] = math.NaN()
		case speed:
			out[k] = math.Sqrt(v)
		default:
			out[k] = v
		}
	}
	return out, nil
}

// FromFields copies a field out of a live solver store.
func FromFields(f *grid.Fields, name string) (*Field, error) {
	c := columns{f.Topo, f.Rho, f.Ux, f.Uy, f.U2, f.Press, f.Psi}
	vals, err := c.pick(name, f.Len())
	if err != nil {
		return nil, err
	}
	return &Field{Name: name, NX: f.NX, NY: f.NY, Values: vals}, nil
}

// FromFrame copies a field out of a stored output frame.
func FromFrame(fr *storage.Frame, name string) (*Field, error) {
	c := columns{fr.Topo, fr.Rho, fr.Ux, fr.Uy, fr.U2, fr.Press, fr.Psi}
	vals, err := c.pick(name, fr.NX*fr.NY)
	if err != nil {
		return nil, err
	}
	return &Field{Name: name, NX: fr.NX, NY: fr.NY, Values: vals}, nil
}

// Range returns the extrema of the finite values. An empty or constant field
// gets a unit-width range.
func (f *Field) Range() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range f.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo > hi {
		return 0, 1
	}
	if lo == hi {
		return lo - 0.5, hi + 0.5
	}
	return lo, hi
}

// Signed reports whether the field has both signs, which selects a diverging
// palette.
func (f *Field) Signed() bool {
	lo, hi := f.Range()
	return lo < 0 && hi > 0
}

func (f *Field) Dims() (c, r int)   { return f.NX, f.NY }
func (f *Field) Z(c, r int) float64 { return f.Values[r*f.NX+c] }
func (f *Field) X(c int) float64    { return float64(c) }
func (f *Field) Y(r int) float64    { return float64(r) }

type Options struct {
	Title  string
	Width  vg.Length
	Height vg.Length
	Colors int
}

func (o Options) withDefaults(f *Field) Options {
	if o.Colors <= 1 {
		o.Colors = 255
	}
	if o.Width <= 0 {
		o.Width = 6 * vg.Inch
	}
	if o.Height <= 0 {
		o.Height = o.Width * vg.Length(f.NY) / vg.Length(f.NX)
		if o.Height < 2*vg.Inch {
			o.Height = 2 * vg.Inch
		}
	}
	return o
}

func colorMap(f *Field) palette.ColorMap {
	lo, hi := f.Range()
	var cm palette.ColorMap
	if f.Signed() {
		cm = moreland.SmoothBlueRed()
		m := math.Max(-lo, hi)
		lo, hi = -m, m
	} else {
		cm = moreland.Kindlmann()
	}
	cm.SetMax(hi)
	cm.SetMin(lo)
	return cm
}

// Plot builds a heat map of the field. Solid nodes are drawn black.
func Plot(f *Field, opts Options) (*plot.Plot, error) {
	if f.NX <= 0 || f.NY <= 0 || len(f.Values) != f.NX*f.NY {
		return nil, fmt.Errorf("render: %dx%d field with %d values", f.NX, f.NY, len(f.Values))
	}
	opts = opts.withDefaults(f)

	cm := colorMap(f)
	h := plotter.NewHeatMap(f, cm.Palette(opts.Colors))
	h.Min, h.Max = cm.Min(), cm.Max()
	h.NaN = color.Black

	p := plot.New()
	p.Title.Text = opts.Title
	if p.Title.Text == "" {
		p.Title.Text = f.Name
	}
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(h)
	return p, nil
}

// WritePNG encodes the heat map as a PNG image.
func WritePNG(w io.Writer, f *Field, opts Options) error {
	p, err := Plot(f, opts)
	if err != nil {
		return err
	}
	opts = opts.withDefaults(f)
	wt, err := p.WriterTo(opts.Width, opts.Height, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// Save writes the heat map to path; the extension picks the format.
func Save(path string, f *Field, opts Options) error {
	p, err := Plot(f, opts)
	if err != nil {
		return err
	}
	opts = opts.withDefaults(f)
	return p.Save(opts.Width, opts.Height, path)
}
