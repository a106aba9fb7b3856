package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/latticeflow/internal/config"
	"github.com/san-kum/latticeflow/internal/lattice"
	"github.com/san-kum/latticeflow/internal/lbm"
	"github.com/san-kum/latticeflow/internal/metrics"
	"github.com/san-kum/latticeflow/internal/sim"
)

type Registry struct {
	metrics map[string]func(*config.Config) sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]func(*config.Config) sim.Metric),
	}

	r.metrics["stability"] = func(*config.Config) sim.Metric { return metrics.NewStability(lbm.DefaultWarnThreshold) }
	r.metrics["mass_drift"] = func(*config.Config) sim.Metric { return metrics.NewMassDrift() }
	r.metrics["max_speed"] = func(*config.Config) sim.Metric { return metrics.NewMaxSpeed() }
	r.metrics["kinetic_energy"] = func(*config.Config) sim.Metric { return metrics.NewKineticEnergy() }
	r.metrics["poiseuille"] = func(*config.Config) sim.Metric { return metrics.NewPoiseuille(-1) }

	return r
}

func (r *Registry) GetMetric(name string, cfg *config.Config) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s (available: %v)", name, r.ListMetrics())
	}
	return fn(cfg), nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics picks the metrics that make sense for cfg. The Poiseuille
// fit is only attached to single-phase runs driven by density boundaries.
func (r *Registry) DefaultMetrics(cfg *config.Config) []string {
	names := []string{"stability", "mass_drift", "max_speed", "kinetic_energy"}
	b := cfg.Boundary
	pot, err := lattice.ParsePotential(cfg.Multiphase.Potential)
	single := err == nil && pot == lattice.PotentialNone
	if single && b.Inlet && b.Outlet {
		names = append(names, "poiseuille")
	}
	return names
}

// Metrics builds the named metrics, or the defaults when names is nil.
func (r *Registry) Metrics(cfg *config.Config, names []string) ([]sim.Metric, error) {
	if names == nil {
		names = r.DefaultMetrics(cfg)
	}
	out := make([]sim.Metric, 0, len(names))
	for _, name := range names {
		m, err := r.GetMetric(name, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
