package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/latticeflow/internal/grid"
)

var fieldColumns = []string{
	"i (x grid)",
	"j (y grid)",
	"topology",
	"rho",
	"ux",
	"uy",
	"u^2",
	"press",
	"psi",
}

// WriteFields writes one output frame as a whitespace separated table, one
// block of rows per x column with a blank line between blocks. Indices are
// 1-based. The psi column is only written for multiphase runs.
func WriteFields(w io.Writer, f *grid.Fields, multiphase bool) error {
	ncol := len(fieldColumns)
	if !multiphase {
		ncol--
	}
	bw := bufio.NewWriter(w)
	for c := 0; c < ncol; c++ {
		fmt.Fprintf(bw, "# %d: %s\n", c+1, fieldColumns[c])
	}
	for i := 0; i < f.NX; i++ {
		for j := 0; j < f.NY; j++ {
			k := f.Index(i, j)
			fmt.Fprintf(bw, "% 4d  % 4d  %2d  % e  % e  % e  % e  % e",
				i+1, j+1, f.Topo[k], f.Rho[k], f.Ux[k], f.Uy[k], f.U2[k], f.Press[k])
			if multiphase {
				fmt.Fprintf(bw, "  % e", f.Psi[k])
			}
			bw.WriteByte('\n')
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// FramePath is the field output file of a timestep.
func (r *Run) FramePath(step int) string {
	return filepath.Join(r.DataDir(), fmt.Sprintf("lb_%06d.dat", step))
}

func (r *Run) SaveFields(step int, f *grid.Fields, multiphase bool) (string, error) {
	path := r.FramePath(step)
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := WriteFields(out, f, multiphase); err != nil {
		out.Close()
		return "", err
	}
	return path, out.Close()
}

// Frame is a field table read back from disk, stored row-major like
// grid.Fields.
type Frame struct {
	NX, NY int
	Topo   []int
	Rho    []float64
	Ux     []float64
	Uy     []float64
	U2     []float64
	Press  []float64
	Psi    []float64
}

func (fr *Frame) Index(i, j int) int { return j*fr.NX + i }

// Field returns the named column: rho, ux, uy, u2, press or psi.
func (fr *Frame) Field(name string) ([]float64, error) {
	switch strings.ToLower(name) {
	case "rho", "density":
		return fr.Rho, nil
	case "ux":
		return fr.Ux, nil
	case "uy":
		return fr.Uy, nil
	case "u2", "speed2":
		return fr.U2, nil
	case "press", "pressure":
		return fr.Press, nil
	case "psi":
		if fr.Psi == nil {
			return nil, fmt.Errorf("%w: frame has no psi column", ErrCheckpointFormat)
		}
		return fr.Psi, nil
	}
	return nil, fmt.Errorf("unknown field %q", name)
}

type frameRow struct {
	i, j, topo int
	vals       []float64
}

// ReadFrame parses a table written by WriteFields. Grid size is taken from
// the largest indices present.
func ReadFrame(r io.Reader) (*Frame, error) {
	var rows []frameRow
	nx, ny, ncol := 0, 0, -1

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		parts := strings.Fields(text)
		if len(parts) < 8 {
			return nil, fmt.Errorf("%w: line %d has %d columns", ErrCheckpointFormat, line, len(parts))
		}
		if ncol < 0 {
			ncol = len(parts)
		} else if len(parts) != ncol {
			return nil, fmt.Errorf("%w: line %d has %d columns, want %d",
				ErrCheckpointFormat, line, len(parts), ncol)
		}

		var row frameRow
		var err error
		if row.i, err = strconv.Atoi(parts[0]); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrCheckpointFormat, line, err)
		}
		if row.j, err = strconv.Atoi(parts[1]); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrCheckpointFormat, line, err)
		}
		if row.topo, err = strconv.Atoi(parts[2]); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrCheckpointFormat, line, err)
		}
		if row.i < 1 || row.j < 1 {
			return nil, fmt.Errorf("%w: line %d: indices start at 1", ErrCheckpointFormat, line)
		}
		row.vals = make([]float64, len(parts)-3)
		for c, p := range parts[3:] {
			if row.vals[c], err = strconv.ParseFloat(p, 64); err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrCheckpointFormat, line, err)
			}
		}
		nx = max(nx, row.i)
		ny = max(ny, row.j)
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty frame", ErrCheckpointFormat)
	}
	if len(rows) != nx*ny {
		return nil, fmt.Errorf("%w: %d rows for a %dx%d grid", ErrCheckpointFormat, len(rows), nx, ny)
	}

	n := nx * ny
	fr := &Frame{
		NX: nx, NY: ny,
		Topo:  make([]int, n),
		Rho:   make([]float64, n),
		Ux:    make([]float64, n),
		Uy:    make([]float64, n),
		U2:    make([]float64, n),
		Press: make([]float64, n),
	}
	if ncol > 8 {
		fr.Psi = make([]float64, n)
	}
	for _, row := range rows {
		k := fr.Index(row.i-1, row.j-1)
		fr.Topo[k] = row.topo
		fr.Rho[k] = row.vals[0]
		fr.Ux[k] = row.vals[1]
		fr.Uy[k] = row.vals[2]
		fr.U2[k] = row.vals[3]
		fr.Press[k] = row.vals[4]
		if fr.Psi != nil {
			fr.Psi[k] = row.vals[5]
		}
	}
	return fr, nil
}

func LoadFrame(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	fr, err := ReadFrame(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fr, nil
}

// Frames lists the timesteps with a field file, in ascending order.
func (r *Run) Frames() ([]int, error) {
	matches, err := filepath.Glob(filepath.Join(r.DataDir(), "lb_*.dat"))
	if err != nil {
		return nil, err
	}
	steps := make([]int, 0, len(matches))
	for _, m := range matches {
		base := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), "lb_"), ".dat")
		step, err := strconv.Atoi(base)
		if err != nil {
			continue
		}
		steps = append(steps, step)
	}
	sort.Ints(steps)
	return steps, nil
}
