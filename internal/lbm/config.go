package lbm

import (
	"fmt"
	"strings"

	"github.com/san-kum/latticeflow/internal/lattice"
	"go.uber.org/zap"
)

const (
	DefaultTau           = 1.0
	DefaultRhoInit       = 1.0
	DefaultWarnThreshold = 0.10
	DefaultHaltThreshold = 0.50
	DefaultResidualWarn  = 0.05
	DefaultReynoldsLen   = 22.0
)

// Forcing selects how body forces enter the relaxation.
type Forcing int

const (
	// ForcingRaw multiplies the equilibrium by a first-order force correction.
	ForcingRaw Forcing = iota
	// ForcingShifted evaluates the equilibrium at the velocity shifted by tau*F.
	ForcingShifted
)

func (f Forcing) String() string {
	if f == ForcingShifted {
		return "shifted"
	}
	return "raw"
}

// ParseForcing accepts "raw"/"1" and "shifted"/"2".
func ParseForcing(s string) (Forcing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "raw", "1":
		return ForcingRaw, nil
	case "shifted", "shifted-velocity", "shiftedvelocity", "2":
		return ForcingShifted, nil
	}
	return ForcingRaw, fmt.Errorf("%w: unknown forcing %q", ErrInvalidConfig, s)
}

// Boundaries enables each boundary condition independently.
type Boundaries struct {
	Inlet  bool
	Outlet bool
	Lower  bool
	Upper  bool
}

// Config is the configuration bundle consumed by New. Everything in it is
// fixed for the lifetime of a Solver.
type Config struct {
	Tau     float64
	RhoInit float64

	RhoInlet  float64
	RhoOutlet float64
	RhoSolid  float64

	GravX, GravY float64

	Potential lattice.Potential
	Rho0      float64
	GFluid    float64 // cohesion
	GSolid    float64 // adhesion

	Forcing    Forcing
	Boundaries Boundaries

	// Workers is the size of the data-parallel pool; <1 means NumCPU.
	Workers int

	WarnThreshold float64
	HaltThreshold float64

	ReynoldsLength float64

	Logger *zap.Logger
}

// DefaultConfig returns a periodic single-phase configuration.
func DefaultConfig() Config {
	return Config{
		Tau:            DefaultTau,
		RhoInit:        DefaultRhoInit,
		Forcing:        ForcingRaw,
		WarnThreshold:  DefaultWarnThreshold,
		HaltThreshold:  DefaultHaltThreshold,
		ReynoldsLength: DefaultReynoldsLen,
	}
}

// Multiphase reports whether the Shan-Chen collision is active.
func (c Config) Multiphase() bool { return c.Potential != lattice.PotentialNone }

// Validate checks parameter ranges and mode combinations for an nx by ny grid.
func (c Config) Validate(nx, ny int) error {
	if c.Tau <= 0.5 {
		return fmt.Errorf("%w: tau must be > 0.5, got %g", ErrInvalidConfig, c.Tau)
	}
	if c.RhoInit < 0 {
		return fmt.Errorf("%w: negative initial density %g", ErrInvalidConfig, c.RhoInit)
	}
	if c.Forcing != ForcingRaw && c.Forcing != ForcingShifted {
		return fmt.Errorf("%w: forcing style %d", ErrInvalidConfig, int(c.Forcing))
	}
	switch c.Potential {
	case lattice.PotentialNone, lattice.PotentialExponential:
	case lattice.PotentialInverse:
		if c.Rho0 <= 0 {
			return fmt.Errorf("%w: inverse potential needs rho0 > 0, got %g", ErrInvalidConfig, c.Rho0)
		}
	default:
		return fmt.Errorf("%w: potential %d", ErrInvalidConfig, int(c.Potential))
	}
	if c.Boundaries.Inlet && c.RhoInlet <= 0 {
		return fmt.Errorf("%w: inlet density must be positive, got %g", ErrInvalidConfig, c.RhoInlet)
	}
	if c.Boundaries.Outlet && c.RhoOutlet <= 0 {
		return fmt.Errorf("%w: outlet density must be positive, got %g", ErrInvalidConfig, c.RhoOutlet)
	}
	if (c.Boundaries.Inlet || c.Boundaries.Outlet) && nx < 3 {
		return fmt.Errorf("%w: density boundaries need nx >= 3, got %d", ErrConfigConflict, nx)
	}
	if c.Boundaries.Lower && c.Boundaries.Upper && ny < 3 {
		return fmt.Errorf("%w: two no-slip walls need ny >= 3, got %d", ErrConfigConflict, ny)
	}
	if c.HaltThreshold > 0 && c.WarnThreshold > c.HaltThreshold {
		return fmt.Errorf("%w: warn threshold %g above halt threshold %g",
			ErrInvalidConfig, c.WarnThreshold, c.HaltThreshold)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.WarnThreshold <= 0 {
		c.WarnThreshold = DefaultWarnThreshold
	}
	if c.HaltThreshold <= 0 {
		c.HaltThreshold = DefaultHaltThreshold
	}
	if c.ReynoldsLength <= 0 {
		c.ReynoldsLength = DefaultReynoldsLen
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}
