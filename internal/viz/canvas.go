package viz

import "strings"

const brailleBlank = 0x2800

// brailleBit maps a sub-pixel inside a character cell to its dot bit.
// A cell is two dots wide and four tall:
//
//	1 4
//	2 5
//	3 6
//	7 8
var brailleBit = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of Braille cells addressed in sub-pixels, two per cell
// horizontally and four vertically. y grows downwards.
type Canvas struct {
	Cols, Rows int
	cells      []rune
}

func NewCanvas(cols, rows int) *Canvas {
	c := &Canvas{Cols: cols, Rows: rows, cells: make([]rune, cols*rows)}
	for k := range c.cells {
		c.cells[k] = brailleBlank
	}
	return c
}

// Size is the canvas extent in sub-pixels.
func (c *Canvas) Size() (w, h int) { return 2 * c.Cols, 4 * c.Rows }

func (c *Canvas) cell(x, y int) (int, rune, bool) {
	w, h := c.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return 0, 0, false
	}
	return (y/4)*c.Cols + x/2, brailleBit[y%4][x%2], true
}

// Set turns on the dot at (x, y). Points outside the canvas are ignored.
func (c *Canvas) Set(x, y int) {
	if k, bit, ok := c.cell(x, y); ok {
		c.cells[k] |= bit
	}
}

func (c *Canvas) IsSet(x, y int) bool {
	k, bit, ok := c.cell(x, y)
	return ok && c.cells[k]&bit != 0
}

// Cell returns the character at column col of row row.
func (c *Canvas) Cell(col, row int) rune { return c.cells[row*c.Cols+col] }

// DrawLine sets the dots of a Bresenham line between two sub-pixels.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), -absInt(y1-y0)
	sx, sy := 1, 1
	if x1 < x0 {
		sx = -1
	}
	if y1 < y0 {
		sy = -1
	}
	e := dx + dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	b.Grow(len(c.cells)*3 + c.Rows)
	for r := 0; r < c.Rows; r++ {
		for _, ch := range c.cells[r*c.Cols : (r+1)*c.Cols] {
			b.WriteRune(ch)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
