package metrics

import (
	"math"

	"github.com/san-kum/latticeflow/internal/lbm"
	"github.com/san-kum/latticeflow/internal/sim"
)

// MaxSpeed is the largest fluid speed seen on any output step. Lattice
// speeds near the sound speed 1/sqrt(3) mean the run is out of the low Mach
// regime.
type MaxSpeed struct {
	name string
	max  float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{name: "max_speed"}
}

func (m *MaxSpeed) Name() string {
	return m.name
}

func (m *MaxSpeed) Observe(s *lbm.Solver, _ sim.Report) {
	f := s.Fields()
	for k := 0; k < f.Len(); k++ {
		if f.IsFluid(k) && f.U2[k] > m.max*m.max {
			m.max = math.Sqrt(f.U2[k])
		}
	}
}

func (m *MaxSpeed) Value() float64 {
	return m.max
}

func (m *MaxSpeed) Reset() {
	m.max = 0
}
