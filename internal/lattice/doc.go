// Package lattice holds the D2Q9 stencil shared read-only by every solver
// component.
//
//   - [Ex], [Ey]: the nine discrete velocities
//   - [Opposite]: bounce-back pairing
//   - [Weights]: equilibrium weights
//   - [Equilibrium]: second-order Maxwell-Boltzmann equilibrium
//   - [Potential]: Shan-Chen pseudo-potential forms
//
// Direction ordering is {O, E, N, W, S, NE, NW, SW, SE}:
//
//	6 2 5
//	3 0 1
//	7 4 8
package lattice
