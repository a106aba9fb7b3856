package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/san-kum/latticeflow/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// runFlags are the solver settings shared by run, watch and info. Values
// only override the loaded configuration when set on the command line.
type runFlags struct {
	configFile string
	preset     string

	name        string
	topoFile    string
	topoKind    string
	nx, ny      int
	radius      float64
	steps       int
	out         int
	diagRate    int
	saveRate    int
	historyRate int
	keepHistory bool
	workers     int

	tau     float64
	rho     float64
	forcing string
	gx, gy  float64

	noise float64
	seed  int64

	inlet, outlet bool
	lower, upper  bool
	rhoIn, rhoOut float64

	potential string
	rho0      float64
	gff, gfs  float64
	rhoSolid  float64

	initial string
}

func (f *runFlags) register(fs *pflag.FlagSet) {
	d := config.DefaultConfig()
	fs.StringVarP(&f.configFile, "config", "c", "", "run configuration (.yaml, or legacy .ini parameter file)")
	fs.StringVar(&f.preset, "preset", "", "start from a named preset")

	fs.StringVarP(&f.name, "name", "o", d.OutputDir, "run directory name")
	fs.StringVar(&f.topoFile, "topo", "", "topology file")
	fs.StringVar(&f.topoKind, "topo-kind", d.Topology.Kind, "generated topology: periodic, channel, cylinder or box")
	fs.IntVar(&f.nx, "nx", d.Topology.NX, "grid width")
	fs.IntVar(&f.ny, "ny", d.Topology.NY, "grid height")
	fs.Float64Var(&f.radius, "radius", 0, "obstacle radius (cylinder)")
	fs.IntVarP(&f.steps, "steps", "n", d.Steps, "final timestep")
	fs.IntVar(&f.out, "out", d.OutInterval, "output interval")
	fs.IntVar(&f.diagRate, "diag-rate", d.DiagnosisRate, "residual check every diag-rate outputs")
	fs.IntVar(&f.saveRate, "save-rate", d.SaveRate, "checkpoint every save-rate outputs")
	fs.IntVar(&f.historyRate, "history-rate", 0, "numbered copy every history-rate outputs (0 follows save-rate)")
	fs.BoolVar(&f.keepHistory, "keep-history", false, "keep numbered state copies")
	fs.IntVarP(&f.workers, "workers", "j", 0, "worker goroutines (0 uses all CPUs)")

	fs.Float64Var(&f.tau, "tau", d.Tau, "relaxation time")
	fs.Float64Var(&f.rho, "rho", d.RhoInit, "initial density")
	fs.StringVar(&f.forcing, "forcing", d.Forcing, "forcing scheme: raw or shifted")
	fs.Float64Var(&f.gx, "gx", 0, "body force along x")
	fs.Float64Var(&f.gy, "gy", 0, "body force along y")

	fs.Float64Var(&f.noise, "noise", d.Noise.DeltaRho, "density noise amplitude (negative disables)")
	fs.Int64Var(&f.seed, "seed", 0, "noise seed (0 disables)")

	fs.BoolVar(&f.inlet, "inlet", false, "density boundary at x=0")
	fs.BoolVar(&f.outlet, "outlet", false, "density boundary at x=nx-1")
	fs.BoolVar(&f.lower, "lower", false, "density boundary at y=0")
	fs.BoolVar(&f.upper, "upper", false, "density boundary at y=ny-1")
	fs.Float64Var(&f.rhoIn, "rho-in", 0, "inlet density")
	fs.Float64Var(&f.rhoOut, "rho-out", 0, "outlet density")

	fs.StringVar(&f.potential, "potential", d.Multiphase.Potential, "Shan-Chen potential: none, exponential or inverse")
	fs.Float64Var(&f.rho0, "rho0", 0, "potential reference density")
	fs.Float64Var(&f.gff, "g-ff", 0, "fluid-fluid coupling")
	fs.Float64Var(&f.gfs, "g-fs", 0, "fluid-solid coupling")
	fs.Float64Var(&f.rhoSolid, "rho-solid", 0, "virtual density of solid nodes")

	fs.StringVar(&f.initial, "initial", "", "initial state kind (none, split, rho_grad_x, rho_grad_y, droplet)")
}

// load builds the configuration from the defaults, a preset or a config file
// (the file wins over the preset), then applies the changed flags.
func (f *runFlags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if f.preset != "" {
		p, ok := config.FindPreset(f.preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset: %s (available: %s)", f.preset, strings.Join(allPresets(), ", "))
		}
		cfg = p
	}
	if f.configFile != "" {
		var err error
		if strings.EqualFold(filepath.Ext(f.configFile), ".ini") {
			cfg, err = config.LoadINI(f.configFile)
		} else {
			cfg, err = config.Load(f.configFile)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	fl := cmd.Flags()
	if fl.Changed("name") {
		cfg.OutputDir = f.name
	}
	if fl.Changed("topo") {
		cfg.TopoFile = f.topoFile
	}
	if fl.Changed("topo-kind") {
		cfg.Topology.Kind = f.topoKind
	}
	if fl.Changed("nx") {
		cfg.Topology.NX = f.nx
	}
	if fl.Changed("ny") {
		cfg.Topology.NY = f.ny
	}
	if fl.Changed("radius") {
		cfg.Topology.Radius = f.radius
	}
	if fl.Changed("steps") {
		cfg.Steps = f.steps
	}
	if fl.Changed("out") {
		cfg.OutInterval = f.out
	}
	if fl.Changed("diag-rate") {
		cfg.DiagnosisRate = f.diagRate
	}
	if fl.Changed("save-rate") {
		cfg.SaveRate = f.saveRate
	}
	if fl.Changed("history-rate") {
		cfg.HistoryRate = f.historyRate
	}
	if fl.Changed("keep-history") {
		cfg.KeepHistory = f.keepHistory
	}
	if fl.Changed("workers") {
		cfg.Workers = f.workers
	}
	if fl.Changed("tau") {
		cfg.Tau = f.tau
	}
	if fl.Changed("rho") {
		cfg.RhoInit = f.rho
	}
	if fl.Changed("forcing") {
		cfg.Forcing = f.forcing
	}
	if fl.Changed("gx") {
		cfg.Gravity.X = f.gx
	}
	if fl.Changed("gy") {
		cfg.Gravity.Y = f.gy
	}
	if fl.Changed("noise") {
		cfg.Noise.DeltaRho = f.noise
	}
	if fl.Changed("seed") {
		cfg.Noise.Seed = f.seed
	}
	if fl.Changed("inlet") {
		cfg.Boundary.Inlet = f.inlet
	}
	if fl.Changed("outlet") {
		cfg.Boundary.Outlet = f.outlet
	}
	if fl.Changed("lower") {
		cfg.Boundary.Lower = f.lower
	}
	if fl.Changed("upper") {
		cfg.Boundary.Upper = f.upper
	}
	if fl.Changed("rho-in") {
		cfg.Boundary.RhoInlet = f.rhoIn
	}
	if fl.Changed("rho-out") {
		cfg.Boundary.RhoOutlet = f.rhoOut
	}
	if fl.Changed("potential") {
		cfg.Multiphase.Potential = f.potential
	}
	if fl.Changed("rho0") {
		cfg.Multiphase.Rho0 = f.rho0
	}
	if fl.Changed("g-ff") {
		cfg.Multiphase.GFluid = f.gff
	}
	if fl.Changed("g-fs") {
		cfg.Multiphase.GSolid = f.gfs
	}
	if fl.Changed("rho-solid") {
		cfg.Multiphase.RhoSolid = f.rhoSolid
	}
	if fl.Changed("initial") {
		cfg.Initial.Kind = f.initial
	}
	return cfg, nil
}

func allPresets() []string {
	var names []string
	for _, g := range config.ListGroups() {
		names = append(names, config.ListPresets(g)...)
	}
	return names
}
