package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/latticeflow/internal/render"
)

// HeatMap shades a field into cols x rows terminal cells. Each cell is an
// upper half block, so it carries two rows of samples. The top line is the
// highest y.
func HeatMap(f *render.Field, cols, rows int, th Theme) string {
	if cols <= 0 || rows <= 0 || f.NX == 0 || f.NY == 0 {
		return ""
	}
	cols = min(cols, f.NX)
	rows = min(rows, (f.NY+1)/2)
	lo, hi := f.Range()
	scale := 1 / (hi - lo)

	sample := func(c, r int) float64 {
		i := c * f.NX / cols
		j := f.NY - 1 - r*f.NY/(2*rows)
		if j < 0 {
			return 0
		}
		return (f.Values[j*f.NX+i] - lo) * scale
	}

	var b strings.Builder
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			top := th.RampColor(sample(col, 2*row))
			bottom := th.RampColor(sample(col, 2*row+1))
			b.WriteString(lipgloss.NewStyle().Foreground(top).Background(bottom).Render("▀"))
		}
		if row < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// PhaseMap draws the nodes whose value exceeds threshold as Braille dots, with
// solid nodes drawn too. The canvas covers cols x rows characters.
func PhaseMap(f *render.Field, cols, rows int, threshold float64) *Canvas {
	c := NewCanvas(cols, rows)
	w, h := cols*2, rows*4
	for y := 0; y < h; y++ {
		j := f.NY - 1 - y*f.NY/h
		for x := 0; x < w; x++ {
			i := x * f.NX / w
			v := f.Values[j*f.NX+i]
			if v != v || v > threshold {
				c.Set(x, y)
			}
		}
	}
	c.DrawLine(0, 0, w-1, 0)
	c.DrawLine(0, h-1, w-1, h-1)
	return c
}
