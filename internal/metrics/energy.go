package metrics

import (
	"math"

	"github.com/san-kum/latticeflow/internal/grid"
	"github.com/san-kum/latticeflow/internal/lbm"
	"github.com/san-kum/latticeflow/internal/sim"
)

// KineticEnergy averages the total kinetic energy 0.5*rho*u^2 of the fluid
// over the observed output steps.
type KineticEnergy struct {
	name    string
	samples int
	total   float64
	last    float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(s *lbm.Solver, _ sim.Report) {
	e.last = FieldEnergy(s.Fields())
	e.total += e.last
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

// Last returns the energy of the most recent observation.
func (e *KineticEnergy) Last() float64 { return e.last }

func (e *KineticEnergy) Reset() {
	e.total = 0
	e.last = 0
	e.samples = 0
}

// FieldEnergy sums 0.5*rho*u^2 over fluid nodes.
func FieldEnergy(f *grid.Fields) float64 {
	sum := 0.
	for k := 0; k < f.Len(); k++ {
		if f.IsFluid(k) {
			sum += 0.5 * f.Rho[k] * f.U2[k]
		}
	}
	return sum
}

// MassDrift tracks the largest relative change of total mass from the first
// observation.
type MassDrift struct {
	name        string
	initialMass float64
	maxDrift    float64
	samples     int
}

func NewMassDrift() *MassDrift {
	return &MassDrift{name: "mass_drift"}
}

func (m *MassDrift) Name() string { return m.name }

func (m *MassDrift) Observe(_ *lbm.Solver, r sim.Report) {
	if m.samples == 0 {
		m.initialMass = r.Mass
	}
	m.samples++

	if m.initialMass != 0 {
		drift := math.Abs(r.Mass-m.initialMass) / math.Abs(m.initialMass)
		m.maxDrift = math.Max(m.maxDrift, drift)
	}
}

func (m *MassDrift) Value() float64 {
	return m.maxDrift
}

func (m *MassDrift) Reset() {
	m.initialMass = 0
	m.maxDrift = 0
	m.samples = 0
}
