package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/latticeflow/internal/lattice"
	"github.com/san-kum/latticeflow/internal/lbm"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSteps         = 1000
	DefaultOutInterval   = 100
	DefaultDiagnosisRate = 10
	DefaultSaveRate      = 10
	DefaultTau           = 1.0
	DefaultRhoInit       = 1.0
	DefaultOutputDir     = "run"
)

// Initial-state kinds.
const (
	InitialNone      = "none"
	InitialSplit     = "split"
	InitialGradientX = "rho_grad_x"
	InitialGradientY = "rho_grad_y"
	InitialDroplet   = "droplet"
)

type Config struct {
	OutputDir string         `yaml:"output_dir"`
	TopoFile  string         `yaml:"topo_file,omitempty"`
	Topology  TopologyConfig `yaml:"topology"`

	Steps         int  `yaml:"steps"`
	OutInterval   int  `yaml:"out_interval"`
	DiagnosisRate int  `yaml:"diagnosis_rate"`
	SaveRate      int  `yaml:"save_rate"`
	HistoryRate   int  `yaml:"history_rate,omitempty"`
	KeepHistory   bool `yaml:"keep_history"`
	Workers       int  `yaml:"workers"`

	Tau     float64 `yaml:"tau"`
	RhoInit float64 `yaml:"rho_init"`
	Forcing string  `yaml:"forcing"`

	Noise      NoiseConfig      `yaml:"noise"`
	Gravity    GravityConfig    `yaml:"gravity"`
	Boundary   BoundaryConfig   `yaml:"boundary"`
	Multiphase MultiphaseConfig `yaml:"multiphase"`
	Initial    InitialConfig    `yaml:"initial"`

	Resume    bool   `yaml:"resume"`
	StateFile string `yaml:"state_file,omitempty"`
}

// TopologyConfig describes a generated grid, used when TopoFile is empty.
type TopologyConfig struct {
	Kind   string  `yaml:"kind"`
	NX     int     `yaml:"nx"`
	NY     int     `yaml:"ny"`
	Radius float64 `yaml:"radius,omitempty"`
}

type NoiseConfig struct {
	DeltaRho float64 `yaml:"delta_rho"`
	Seed     int64   `yaml:"seed"`
}

type GravityConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type BoundaryConfig struct {
	Inlet     bool    `yaml:"inlet"`
	Outlet    bool    `yaml:"outlet"`
	Lower     bool    `yaml:"lower"`
	Upper     bool    `yaml:"upper"`
	RhoInlet  float64 `yaml:"rho_inlet"`
	RhoOutlet float64 `yaml:"rho_outlet"`
}

type MultiphaseConfig struct {
	Potential string  `yaml:"potential"`
	Rho0      float64 `yaml:"rho0"`
	GFluid    float64 `yaml:"g_ff"`
	GSolid    float64 `yaml:"g_fs"`
	RhoSolid  float64 `yaml:"rho_solid"`
}

// InitialConfig selects a custom initial state. Coordinates are 1-based.
type InitialConfig struct {
	Kind string `yaml:"kind"`

	// split
	RhoSplit float64 `yaml:"rho_split,omitempty"`
	XSplit   int     `yaml:"x_split,omitempty"`
	YSplit   int     `yaml:"y_split,omitempty"`

	// rho_grad_x uses From=left, To=right; rho_grad_y From=bottom, To=top.
	From float64 `yaml:"from,omitempty"`
	To   float64 `yaml:"to,omitempty"`

	// droplet
	RhoInside  float64 `yaml:"rho_inside,omitempty"`
	RhoOutside float64 `yaml:"rho_outside,omitempty"`
	XC         int     `yaml:"xc,omitempty"`
	YC         int     `yaml:"yc,omitempty"`
	Radius     float64 `yaml:"radius,omitempty"`
}

// Custom reports whether a non-trivial initial state is requested.
func (c InitialConfig) Custom() bool {
	k := strings.ToLower(strings.TrimSpace(c.Kind))
	return k != "" && k != InitialNone
}

func DefaultConfig() *Config {
	return &Config{
		OutputDir:     DefaultOutputDir,
		Topology:      TopologyConfig{Kind: "periodic", NX: 64, NY: 32},
		Steps:         DefaultSteps,
		OutInterval:   DefaultOutInterval,
		DiagnosisRate: DefaultDiagnosisRate,
		SaveRate:      DefaultSaveRate,
		Tau:           DefaultTau,
		RhoInit:       DefaultRhoInit,
		Forcing:       lbm.ForcingRaw.String(),
		Noise:         NoiseConfig{DeltaRho: -1},
		Multiphase:    MultiphaseConfig{Potential: lattice.PotentialNone.String()},
		Initial:       InitialConfig{Kind: InitialNone},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the run-level settings. Solver parameters are checked
// again by lbm.New once the grid size is known.
func (c *Config) Validate() error {
	if c.Resume && c.Initial.Custom() {
		return fmt.Errorf("%w: resume with custom initial state %q",
			lbm.ErrConfigConflict, c.Initial.Kind)
	}
	if c.TopoFile == "" && (c.Topology.NX <= 0 || c.Topology.NY <= 0) {
		return fmt.Errorf("%w: no topology file and no grid size", lbm.ErrInvalidConfig)
	}
	if c.Steps < 0 {
		return fmt.Errorf("%w: negative steps %d", lbm.ErrInvalidConfig, c.Steps)
	}
	if c.OutInterval <= 0 {
		return fmt.Errorf("%w: out_interval must be positive, got %d", lbm.ErrInvalidConfig, c.OutInterval)
	}
	if c.DiagnosisRate <= 0 || c.SaveRate <= 0 {
		return fmt.Errorf("%w: diagnosis_rate and save_rate must be positive", lbm.ErrInvalidConfig)
	}
	if c.HistoryRate < 0 {
		return fmt.Errorf("%w: negative history_rate %d", lbm.ErrInvalidConfig, c.HistoryRate)
	}
	if c.Tau <= 0.5 {
		return fmt.Errorf("%w: tau must be > 0.5, got %g", lbm.ErrInvalidConfig, c.Tau)
	}
	if _, err := lbm.ParseForcing(c.Forcing); err != nil {
		return err
	}
	if _, err := lattice.ParsePotential(c.Multiphase.Potential); err != nil {
		return fmt.Errorf("%w: %v", lbm.ErrInvalidConfig, err)
	}
	switch strings.ToLower(strings.TrimSpace(c.Initial.Kind)) {
	case "", InitialNone, InitialSplit, InitialGradientX, InitialGradientY, InitialDroplet:
	default:
		return fmt.Errorf("%w: unknown initial state %q", lbm.ErrInvalidConfig, c.Initial.Kind)
	}
	return nil
}

// Solver translates the run configuration into the solver bundle.
func (c *Config) Solver(log *zap.Logger) (lbm.Config, error) {
	forcing, err := lbm.ParseForcing(c.Forcing)
	if err != nil {
		return lbm.Config{}, err
	}
	pot, err := lattice.ParsePotential(c.Multiphase.Potential)
	if err != nil {
		return lbm.Config{}, fmt.Errorf("%w: %v", lbm.ErrInvalidConfig, err)
	}
	sc := lbm.DefaultConfig()
	sc.Tau = c.Tau
	sc.RhoInit = c.RhoInit
	sc.RhoInlet = c.Boundary.RhoInlet
	sc.RhoOutlet = c.Boundary.RhoOutlet
	sc.RhoSolid = c.Multiphase.RhoSolid
	sc.GravX, sc.GravY = c.Gravity.X, c.Gravity.Y
	sc.Potential = pot
	sc.Rho0 = c.Multiphase.Rho0
	sc.GFluid = c.Multiphase.GFluid
	sc.GSolid = c.Multiphase.GSolid
	sc.Forcing = forcing
	sc.Boundaries = lbm.Boundaries{
		Inlet:  c.Boundary.Inlet,
		Outlet: c.Boundary.Outlet,
		Lower:  c.Boundary.Lower,
		Upper:  c.Boundary.Upper,
	}
	sc.Workers = c.Workers
	sc.Logger = log
	return sc, nil
}
