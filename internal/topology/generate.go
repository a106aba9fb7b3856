package topology

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/latticeflow/internal/grid"
)

// Solid is the tag written by the generators.
const Solid = 1

// Periodic returns an all-fluid grid.
func Periodic(nx, ny int) (*grid.Topology, error) {
	return grid.NewTopology(nx, ny)
}

// Channel returns a grid with solid rows at j=0 and j=ny-1.
func Channel(nx, ny int) (*grid.Topology, error) {
	topo, err := grid.NewTopology(nx, ny)
	if err != nil {
		return nil, err
	}
	for i := 0; i < nx; i++ {
		topo.Set(i, 0, Solid)
		topo.Set(i, ny-1, Solid)
	}
	return topo, nil
}

// Cylinder returns a channel with a disc obstacle of the given radius
// centred at one quarter of the length and mid-height.
func Cylinder(nx, ny int, radius float64) (*grid.Topology, error) {
	topo, err := Channel(nx, ny)
	if err != nil {
		return nil, err
	}
	if radius <= 0 || 2*radius >= float64(ny-2) {
		return nil, fmt.Errorf("topology: cylinder radius %g does not fit a channel of height %d", radius, ny)
	}
	cx, cy := float64(nx)/4, float64(ny-1)/2
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			if math.Hypot(float64(i)-cx, float64(j)-cy) <= radius {
				topo.Set(i, j, Solid)
			}
		}
	}
	return topo, nil
}

// Box returns a grid enclosed by solid nodes on all four sides.
func Box(nx, ny int) (*grid.Topology, error) {
	topo, err := Channel(nx, ny)
	if err != nil {
		return nil, err
	}
	for j := 0; j < ny; j++ {
		topo.Set(0, j, Solid)
		topo.Set(nx-1, j, Solid)
	}
	return topo, nil
}

// Kinds lists the names accepted by Generate.
func Kinds() []string {
	return []string{"box", "channel", "cylinder", "periodic"}
}

// Generate builds a named topology.
func Generate(kind string, nx, ny int, radius float64) (*grid.Topology, error) {
	switch strings.ToLower(kind) {
	case "", "periodic":
		return Periodic(nx, ny)
	case "channel":
		return Channel(nx, ny)
	case "cylinder":
		return Cylinder(nx, ny, radius)
	case "box":
		return Box(nx, ny)
	}
	return nil, fmt.Errorf("topology: unknown kind %q (want one of %s)", kind, strings.Join(Kinds(), ", "))
}

// Report summarizes a topology.
type Report struct {
	NX, NY     int
	Fluid      int
	Solid      int
	Components []int // fluid component sizes, largest first
}

// Porosity is the fluid fraction.
func (r Report) Porosity() float64 {
	return float64(r.Fluid) / float64(r.NX*r.NY)
}

// Connected reports whether all fluid nodes form one component.
func (r Report) Connected() bool { return len(r.Components) <= 1 }

// Analyze counts nodes and labels fluid components. Connectivity uses the
// nine lattice directions with periodic wraparound, matching streaming.
func Analyze(topo *grid.Topology) Report {
	nx, ny := topo.NX, topo.NY
	r := Report{NX: nx, NY: ny}
	seen := make([]bool, len(topo.Tags))
	stack := make([]int, 0, 64)

	for start, tag := range topo.Tags {
		if tag != grid.Fluid {
			r.Solid++
			continue
		}
		r.Fluid++
		if seen[start] {
			continue
		}
		size := 0
		seen[start] = true
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			k := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			size++
			i, j := k%nx, k/nx
			for dj := -1; dj <= 1; dj++ {
				for di := -1; di <= 1; di++ {
					ni, nj := (i+di+nx)%nx, (j+dj+ny)%ny
					nk := nj*nx + ni
					if !seen[nk] && topo.Tags[nk] == grid.Fluid {
						seen[nk] = true
						stack = append(stack, nk)
					}
				}
			}
		}
		r.Components = append(r.Components, size)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(r.Components)))
	return r
}
