package config

import "sort"

func preset(fn func(c *Config)) *Config {
	c := DefaultConfig()
	fn(c)
	return c
}

// Presets groups ready-made runs by flow regime.
var Presets = map[string]map[string]*Config{
	"single": {
		"poiseuille": preset(func(c *Config) {
			c.OutputDir = "poiseuille"
			c.Topology = TopologyConfig{Kind: "channel", NX: 120, NY: 34}
			c.Steps, c.OutInterval = 20000, 500
			c.Boundary = BoundaryConfig{Inlet: true, Outlet: true, RhoInlet: 1.01, RhoOutlet: 0.99}
		}),
		"cylinder": preset(func(c *Config) {
			c.OutputDir = "cylinder"
			c.Topology = TopologyConfig{Kind: "cylinder", NX: 300, NY: 80, Radius: 11}
			c.Steps, c.OutInterval = 40000, 1000
			c.Tau = 0.6
			c.Boundary = BoundaryConfig{Inlet: true, Outlet: true, RhoInlet: 1.02, RhoOutlet: 0.98}
		}),
		"gravity": preset(func(c *Config) {
			c.OutputDir = "gravity"
			c.Topology = TopologyConfig{Kind: "channel", NX: 64, NY: 34}
			c.Steps, c.OutInterval = 10000, 500
			c.Gravity = GravityConfig{X: 1e-6}
		}),
		"gradient": preset(func(c *Config) {
			c.OutputDir = "gradient"
			c.Topology = TopologyConfig{Kind: "box", NX: 80, NY: 40}
			c.Steps, c.OutInterval = 5000, 100
			c.Initial = InitialConfig{Kind: InitialGradientX, From: 1.05, To: 0.95}
		}),
	},
	"multiphase": {
		"droplet": preset(func(c *Config) {
			c.OutputDir = "droplet"
			c.Topology = TopologyConfig{Kind: "periodic", NX: 100, NY: 100}
			c.Steps, c.OutInterval = 10000, 250
			c.Multiphase = MultiphaseConfig{Potential: "exponential", Rho0: 1, GFluid: -5.5}
			c.Initial = InitialConfig{Kind: InitialDroplet, RhoInside: 2.0, RhoOutside: 0.15, XC: 50, YC: 50, Radius: 15}
		}),
		"split": preset(func(c *Config) {
			c.OutputDir = "split"
			c.Topology = TopologyConfig{Kind: "box", NX: 80, NY: 80}
			c.Steps, c.OutInterval = 10000, 250
			c.Multiphase = MultiphaseConfig{Potential: "exponential", Rho0: 1, GFluid: -5.0, GSolid: -1.0}
			c.Initial = InitialConfig{Kind: InitialSplit, RhoSplit: 2.0, XSplit: 40, YSplit: 1}
			c.RhoInit = 0.2
		}),
		"spinodal": preset(func(c *Config) {
			c.OutputDir = "spinodal"
			c.Topology = TopologyConfig{Kind: "periodic", NX: 128, NY: 128}
			c.Steps, c.OutInterval = 20000, 500
			c.Multiphase = MultiphaseConfig{Potential: "exponential", Rho0: 1, GFluid: -5.0}
			c.Noise = NoiseConfig{DeltaRho: 0.05, Seed: 7}
			c.RhoInit = 0.7
		}),
		"cavity": preset(func(c *Config) {
			c.OutputDir = "cavity"
			c.Topology = TopologyConfig{Kind: "box", NX: 60, NY: 60}
			c.Steps, c.OutInterval = 20000, 500
			c.Gravity = GravityConfig{Y: -1e-5}
			c.Multiphase = MultiphaseConfig{Potential: "inverse", Rho0: 1, GFluid: -10, GSolid: -2}
			c.Initial = InitialConfig{Kind: InitialDroplet, RhoInside: 2.4, RhoOutside: 0.1, XC: 30, YC: 20, Radius: 10}
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(group, name string) *Config {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	cfg, ok := groupPresets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

// ListPresets returns the sorted preset names of a group.
func ListPresets(group string) []string {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(groupPresets))
	for name := range groupPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListGroups returns the sorted preset groups.
func ListGroups() []string {
	groups := make([]string, 0, len(Presets))
	for g := range Presets {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}

// FindPreset looks a preset up by name across all groups.
func FindPreset(name string) (*Config, bool) {
	for _, g := range ListGroups() {
		if cfg := GetPreset(g, name); cfg != nil {
			return cfg, true
		}
	}
	return nil, false
}
