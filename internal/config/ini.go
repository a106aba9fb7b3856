package config

import (
	"fmt"

	"gopkg.in/gcfg.v1"
)

// ExampleINI documents the legacy parameter-file format read by LoadINI.
const ExampleINI = `[Run]

#######################
# Required Parameters #
#######################

# Run directory, created under the storage root.
OutputDir = channel
# Topology file: nx, ny, then ny rows of digits from the top row down.
# Leave empty to generate one from the [Topology] section.
TopoFile = topo/channel.txt
# Number of timesteps and output interval.
Steps = 20000
OutInterval = 500

#######################
# Optional Parameters #
#######################

# Residual, checkpoint and history intervals, in units of OutInterval.
# A zero HistoryRate follows SaveRate.
# DiagnosisRate = 10
# SaveRate = 10
# HistoryRate = 0
# KeepHistory = false
# Workers = 0
# Resume = false
# StateFile = path/to/lb.state

[Topology]

# Kind is periodic, channel, cylinder or box.
# Kind = channel
# NX = 200
# NY = 50
# Radius = 8

[Fluid]

Tau = 1.0
RhoInit = 1.0
# Forcing = raw
# DeltaRho = -1
# Seed = 0
# GravX = 0
# GravY = 0

[Boundary]

# Inlet = true
# Outlet = true
# Lower = false
# Upper = false
# RhoInlet = 1.01
# RhoOutlet = 0.99

[ShanChen]

# Potential = none
# Rho0 = 1.0
# GFluid = -5.0
# GSolid = 0.0

[Initial]

# Kind = none
# RhoSplit, XSplit, YSplit for split; From, To for rho_grad_x and rho_grad_y;
# RhoInside, RhoOutside, XC, YC, Radius for droplet.`

type iniFile struct {
	Run struct {
		OutputDir     string
		TopoFile      string
		Steps         int
		OutInterval   int
		DiagnosisRate int
		SaveRate      int
		HistoryRate   int
		KeepHistory   bool
		Workers       int
		Resume        bool
		StateFile     string
	}
	Topology struct {
		Kind   string
		NX     int
		NY     int
		Radius float64
	}
	Fluid struct {
		Tau      float64
		RhoInit  float64
		Forcing  string
		DeltaRho float64
		Seed     int64
		GravX    float64
		GravY    float64
	}
	Boundary struct {
		Inlet     bool
		Outlet    bool
		Lower     bool
		Upper     bool
		RhoInlet  float64
		RhoOutlet float64
	}
	ShanChen struct {
		Potential string
		Rho0      float64
		GFluid    float64
		GSolid    float64
		RhoSolid  float64
	}
	Initial struct {
		Kind       string
		RhoSplit   float64
		XSplit     int
		YSplit     int
		From       float64
		To         float64
		RhoInside  float64
		RhoOutside float64
		XC         int
		YC         int
		Radius     float64
	}
}

func (f *iniFile) fill(c *Config) {
	f.Run.OutputDir = c.OutputDir
	f.Run.TopoFile = c.TopoFile
	f.Run.Steps = c.Steps
	f.Run.OutInterval = c.OutInterval
	f.Run.DiagnosisRate = c.DiagnosisRate
	f.Run.SaveRate = c.SaveRate
	f.Run.HistoryRate = c.HistoryRate
	f.Run.KeepHistory = c.KeepHistory
	f.Run.Workers = c.Workers
	f.Run.Resume = c.Resume
	f.Run.StateFile = c.StateFile

	f.Topology.Kind = c.Topology.Kind
	f.Topology.NX = c.Topology.NX
	f.Topology.NY = c.Topology.NY
	f.Topology.Radius = c.Topology.Radius

	f.Fluid.Tau = c.Tau
	f.Fluid.RhoInit = c.RhoInit
	f.Fluid.Forcing = c.Forcing
	f.Fluid.DeltaRho = c.Noise.DeltaRho
	f.Fluid.Seed = c.Noise.Seed
	f.Fluid.GravX = c.Gravity.X
	f.Fluid.GravY = c.Gravity.Y

	f.Boundary.Inlet = c.Boundary.Inlet
	f.Boundary.Outlet = c.Boundary.Outlet
	f.Boundary.Lower = c.Boundary.Lower
	f.Boundary.Upper = c.Boundary.Upper
	f.Boundary.RhoInlet = c.Boundary.RhoInlet
	f.Boundary.RhoOutlet = c.Boundary.RhoOutlet

	f.ShanChen.Potential = c.Multiphase.Potential
	f.ShanChen.Rho0 = c.Multiphase.Rho0
	f.ShanChen.GFluid = c.Multiphase.GFluid
	f.ShanChen.GSolid = c.Multiphase.GSolid
	f.ShanChen.RhoSolid = c.Multiphase.RhoSolid

	f.Initial.Kind = c.Initial.Kind
	f.Initial.RhoSplit = c.Initial.RhoSplit
	f.Initial.XSplit = c.Initial.XSplit
	f.Initial.YSplit = c.Initial.YSplit
	f.Initial.From = c.Initial.From
	f.Initial.To = c.Initial.To
	f.Initial.RhoInside = c.Initial.RhoInside
	f.Initial.RhoOutside = c.Initial.RhoOutside
	f.Initial.XC = c.Initial.XC
	f.Initial.YC = c.Initial.YC
	f.Initial.Radius = c.Initial.Radius
}

func (f *iniFile) config() *Config {
	c := &Config{
		OutputDir:     f.Run.OutputDir,
		TopoFile:      f.Run.TopoFile,
		Steps:         f.Run.Steps,
		OutInterval:   f.Run.OutInterval,
		DiagnosisRate: f.Run.DiagnosisRate,
		SaveRate:      f.Run.SaveRate,
		HistoryRate:   f.Run.HistoryRate,
		KeepHistory:   f.Run.KeepHistory,
		Workers:       f.Run.Workers,
		Resume:        f.Run.Resume,
		StateFile:     f.Run.StateFile,
		Tau:           f.Fluid.Tau,
		RhoInit:       f.Fluid.RhoInit,
		Forcing:       f.Fluid.Forcing,
		Noise:         NoiseConfig{DeltaRho: f.Fluid.DeltaRho, Seed: f.Fluid.Seed},
		Gravity:       GravityConfig{X: f.Fluid.GravX, Y: f.Fluid.GravY},
	}
	c.Topology = TopologyConfig{
		Kind:   f.Topology.Kind,
		NX:     f.Topology.NX,
		NY:     f.Topology.NY,
		Radius: f.Topology.Radius,
	}
	c.Boundary = BoundaryConfig{
		Inlet:     f.Boundary.Inlet,
		Outlet:    f.Boundary.Outlet,
		Lower:     f.Boundary.Lower,
		Upper:     f.Boundary.Upper,
		RhoInlet:  f.Boundary.RhoInlet,
		RhoOutlet: f.Boundary.RhoOutlet,
	}
	c.Multiphase = MultiphaseConfig{
		Potential: f.ShanChen.Potential,
		Rho0:      f.ShanChen.Rho0,
		GFluid:    f.ShanChen.GFluid,
		GSolid:    f.ShanChen.GSolid,
		RhoSolid:  f.ShanChen.RhoSolid,
	}
	c.Initial = InitialConfig{
		Kind:       f.Initial.Kind,
		RhoSplit:   f.Initial.RhoSplit,
		XSplit:     f.Initial.XSplit,
		YSplit:     f.Initial.YSplit,
		From:       f.Initial.From,
		To:         f.Initial.To,
		RhoInside:  f.Initial.RhoInside,
		RhoOutside: f.Initial.RhoOutside,
		XC:         f.Initial.XC,
		YC:         f.Initial.YC,
		Radius:     f.Initial.Radius,
	}
	return c
}

// LoadINI reads a gcfg parameter file over the defaults.
func LoadINI(path string) (*Config, error) {
	f := &iniFile{}
	f.fill(DefaultConfig())
	if err := gcfg.ReadFileInto(f, path); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return f.config(), nil
}

// ParseINI is LoadINI for an in-memory file.
func ParseINI(text string) (*Config, error) {
	f := &iniFile{}
	f.fill(DefaultConfig())
	if err := gcfg.ReadStringInto(f, text); err != nil {
		return nil, fmt.Errorf("config: parse ini: %w", err)
	}
	return f.config(), nil
}
