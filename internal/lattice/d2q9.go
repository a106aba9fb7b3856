package lattice

// Q is the number of discrete velocities.
const Q = 9

// Direction indices.
const (
	Rest = iota
	East
	North
	West
	South
	NorthEast
	NorthWest
	SouthWest
	SouthEast
)

var (
	Ex = [Q]int{0, 1, 0, -1, 0, 1, -1, -1, 1}
	Ey = [Q]int{0, 0, 1, 0, -1, 1, 1, -1, -1}

	// Opposite maps a direction to its bounce-back partner.
	Opposite = [Q]int{0, 3, 4, 1, 2, 7, 8, 5, 6}

	Weights = [Q]float64{
		4. / 9.,
		1. / 9., 1. / 9., 1. / 9., 1. / 9.,
		1. / 36., 1. / 36., 1. / 36., 1. / 36.,
	}
)

// Ex and Ey as floats, to keep int conversions out of the hot loops.
var (
	EXf = [Q]float64{0, 1, 0, -1, 0, 1, -1, -1, 1}
	EYf = [Q]float64{0, 0, 1, 0, -1, 1, 1, -1, -1}
)

// Equilibrium returns the equilibrium population of direction q for density
// rho and velocity (ux, uy).
func Equilibrium(rho, ux, uy float64, q int) float64 {
	eu := EXf[q]*ux + EYf[q]*uy
	uu := ux*ux + uy*uy
	return rho * Weights[q] * (1. - 1.5*uu + 3.*eu + 4.5*eu*eu)
}

// EquilibriumAll fills dst with the nine equilibrium populations.
func EquilibriumAll(dst *[Q]float64, rho, ux, uy float64) {
	uu := 1. - 1.5*(ux*ux+uy*uy)
	for q := 0; q < Q; q++ {
		eu := EXf[q]*ux + EYf[q]*uy
		dst[q] = rho * Weights[q] * (uu + 3.*eu + 4.5*eu*eu)
	}
}

// Moments returns the density and raw momentum of a nine-value population.
func Moments(f []float64) (rho, jx, jy float64) {
	for q := 0; q < Q; q++ {
		rho += f[q]
		jx += f[q] * EXf[q]
		jy += f[q] * EYf[q]
	}
	return rho, jx, jy
}
