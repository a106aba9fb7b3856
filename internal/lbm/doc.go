// Package lbm implements the per-timestep update engine of a two-dimensional
// D2Q9 lattice Boltzmann solver.
//
// A [Solver] owns the field store and runs, in fixed order:
//
//   - boundary enforcement (Zou-He inlet/outlet density, no-slip walls)
//   - collision (BGK, single-phase or Shan-Chen multiphase)
//   - streaming with full bounce-back at solid nodes
//
// followed by [Solver.Diagnose], which tracks the mass-density norm and
// reports when the run must halt.
//
// # Example
//
//	s, err := lbm.New(topo, lbm.DefaultConfig())
//	for n := 0; n < steps; n++ {
//	    s.Step()
//	    if s.Diagnose().Halt {
//	        break
//	    }
//	}
//
// # Thread Safety
//
// Collision and streaming are data-parallel over grid rows with a barrier
// between them. A Solver itself must not be shared between goroutines.
package lbm
