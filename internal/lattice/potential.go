package lattice

import (
	"fmt"
	"math"
	"strings"
)

// Epsilon is the smallest reference density treated as non-zero.
const Epsilon = 10e-10

// SolidPotential is the pseudo-potential reported by every solid node.
const SolidPotential = 1.0

// Potential selects the Shan-Chen pseudo-potential form.
type Potential int

const (
	// PotentialNone disables multiphase interactions.
	PotentialNone Potential = iota
	// PotentialExponential is psi = rho0 * (1 - exp(-rho/rho0)).
	PotentialExponential
	// PotentialInverse is psi = rho0 * exp(-rho0/rho).
	PotentialInverse
)

func (p Potential) String() string {
	switch p {
	case PotentialExponential:
		return "exponential"
	case PotentialInverse:
		return "inverse"
	default:
		return "none"
	}
}

// ParsePotential accepts the names produced by String.
func ParsePotential(s string) (Potential, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "off", "0":
		return PotentialNone, nil
	case "exponential", "exp", "a", "1":
		return PotentialExponential, nil
	case "inverse", "inv", "b", "2":
		return PotentialInverse, nil
	}
	return PotentialNone, fmt.Errorf("lattice: unknown potential %q", s)
}

// Func returns the closed-form psi(rho) for the given reference density.
func (p Potential) Func(rho0 float64) func(rho float64) float64 {
	switch p {
	case PotentialExponential:
		if rho0 <= Epsilon {
			return func(float64) float64 { return 0 }
		}
		return func(rho float64) float64 { return rho0 * (1. - math.Exp(-rho/rho0)) }
	case PotentialInverse:
		return func(rho float64) float64 {
			if rho <= 0 {
				return 0
			}
			return rho0 * math.Exp(-rho0/rho)
		}
	default:
		return func(float64) float64 { return 0 }
	}
}

// Psi evaluates the potential once. Prefer Func in loops.
func (p Potential) Psi(rho, rho0 float64) float64 {
	return p.Func(rho0)(rho)
}
