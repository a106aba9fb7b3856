package lbm

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates a parameter outside its valid range.
	ErrInvalidConfig = errors.New("lbm: invalid configuration")

	// ErrConfigConflict indicates mutually exclusive modes requested together.
	ErrConfigConflict = errors.New("lbm: conflicting run modes")

	// ErrNoState indicates LoadState was called without distributions.
	ErrNoState = errors.New("lbm: no state provided")

	// ErrStateSize indicates a state that does not fit the grid.
	ErrStateSize = errors.New("lbm: state does not match grid")

	// ErrStateTimestep indicates a state with a negative timestep.
	ErrStateTimestep = errors.New("lbm: invalid state timestep")

	// ErrInconsistentTopology indicates a density boundary column without a
	// fluid/solid corner pair.
	ErrInconsistentTopology = errors.New("lbm: inconsistent topology at density boundary")

	// ErrUnstable indicates the mass-density norm diverged past the halt threshold.
	ErrUnstable = errors.New("lbm: simulation unstable (density norm diverged)")
)

// Edge names a density boundary column.
type Edge string

const (
	EdgeInlet  Edge = "inlet"
	EdgeOutlet Edge = "outlet"
)

// BoundaryReport describes a density boundary whose corner correction was
// skipped. Lower and Upper hold the (i, j) corner candidates found, with -1
// or NY where none exists.
type BoundaryReport struct {
	Edge  Edge
	Lower [2]int
	Upper [2]int
}

func (r BoundaryReport) Error() string {
	return fmt.Sprintf("%s: %s edge: lower=(%d,%d) upper=(%d,%d)",
		ErrInconsistentTopology, r.Edge, r.Lower[0], r.Lower[1], r.Upper[0], r.Upper[1])
}

func (r BoundaryReport) Unwrap() error { return ErrInconsistentTopology }

// StepError wraps an error with the timestep it occurred at.
type StepError struct {
	Step    int
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
