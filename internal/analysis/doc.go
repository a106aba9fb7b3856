// Package analysis inspects the diagnostics history of a run.
//
//   - [Convergence]: first output step after which the density norm stays
//     within a relative tolerance
//   - [PowerSpectrum]: spectrum of a regularly sampled series
//   - [Analyze]: both of the above plus mass drift statistics
//
// # Steady State
//
// A run is considered converged once every later relative norm change is
// at most tol:
//
//	rep := analysis.Analyze(samples, 1e-6)
//	if rep.Converged {
//	    fmt.Println("steady from step", rep.ConvergedAt)
//	}
package analysis
