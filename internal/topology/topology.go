// Package topology reads, writes and generates node classification grids.
//
// # File format
//
// The first two whitespace-separated integers are nx and ny. They are
// followed by nx*ny single-digit tags, listed row by row from the top row
// (j = ny-1) down to j = 0, each row left to right. Whitespace between tags
// is ignored; 0 is fluid and any other digit is solid.
package topology

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/san-kum/latticeflow/internal/grid"
)

var ErrFormat = errors.New("topology: malformed file")

// Read parses a topology from r.
func Read(r io.Reader) (*grid.Topology, error) {
	br := bufio.NewReader(r)

	nx, err := readInt(br)
	if err != nil {
		return nil, fmt.Errorf("%w: nx: %v", ErrFormat, err)
	}
	ny, err := readInt(br)
	if err != nil {
		return nil, fmt.Errorf("%w: ny: %v", ErrFormat, err)
	}
	topo, err := grid.NewTopology(nx, ny)
	if err != nil {
		return nil, err
	}

	for j := ny - 1; j >= 0; j-- {
		for i := 0; i < nx; i++ {
			c, err := nextNonSpace(br)
			if err != nil {
				return nil, fmt.Errorf("%w: node (%d,%d): %v", ErrFormat, i, j, err)
			}
			if c < '0' || c > '9' {
				return nil, fmt.Errorf("%w: node (%d,%d): unexpected %q", ErrFormat, i, j, c)
			}
			topo.Set(i, j, int(c-'0'))
		}
	}
	return topo, nil
}

func nextNonSpace(br *bufio.Reader) (rune, error) {
	for {
		c, _, err := br.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}
		if !unicode.IsSpace(c) {
			return c, nil
		}
	}
}

func readInt(br *bufio.Reader) (int, error) {
	c, err := nextNonSpace(br)
	if err != nil {
		return 0, err
	}
	var sb strings.Builder
	for {
		sb.WriteRune(c)
		c, _, err = br.ReadRune()
		if err != nil || unicode.IsSpace(c) {
			break
		}
	}
	return strconv.Atoi(sb.String())
}

// Load reads a topology file.
func Load(path string) (*grid.Topology, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	topo, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return topo, nil
}

// Write encodes topo in the file format. Tags above 9 are written as 1.
func Write(w io.Writer, topo *grid.Topology) error {
	if err := topo.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n%d\n", topo.NX, topo.NY)
	row := make([]byte, topo.NX+1)
	row[topo.NX] = '\n'
	for j := topo.NY - 1; j >= 0; j-- {
		for i := 0; i < topo.NX; i++ {
			tag := topo.At(i, j)
			if tag < 0 || tag > 9 {
				tag = 1
			}
			row[i] = byte('0' + tag)
		}
		if _, err := bw.Write(row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Save writes topo to path.
func Save(path string, topo *grid.Topology) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, topo); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
