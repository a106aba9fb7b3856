// Package optim sweeps run parameters over a grid and scores each point
// with a registry metric.
package optim

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/latticeflow/internal/config"
	"github.com/san-kum/latticeflow/internal/experiment"
	"github.com/san-kum/latticeflow/internal/sim"
	"golang.org/x/sync/errgroup"
	"go.uber.org/zap"
)

type Param struct {
	Name   string
	Values []float64
}

// Point is one evaluated grid point. Err is set when the run failed or
// halted; such points never win.
type Point struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type Evaluator func(ctx context.Context, params map[string]float64) (float64, error)

type GridSearch struct {
	params  []Param
	workers int
}

// NewGridSearch evaluates up to workers points at once; workers < 1 runs
// them one at a time.
func NewGridSearch(params []Param, workers int) *GridSearch {
	return &GridSearch{params: params, workers: max(workers, 1)}
}

// Points lists the cartesian product of the parameter values, the last
// parameter varying fastest.
func (g *GridSearch) Points() []map[string]float64 {
	var out []map[string]float64
	g.searchRecursive(0, make(map[string]float64), &out)
	return out
}

func (g *GridSearch) searchRecursive(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.params) {
		*out = append(*out, current)
		return
	}
	p := g.params[depth]
	for _, val := range p.Values {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[p.Name] = val
		g.searchRecursive(depth+1, newParams, out)
	}
}

// Search evaluates every point and returns the one with the smallest
// finite value, together with all points in grid order.
func (g *GridSearch) Search(ctx context.Context, eval Evaluator) (Point, []Point, error) {
	points := g.Points()
	results := make([]Point, len(points))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, params := range points {
		i, params := i, params
		eg.Go(func() error {
			v, err := eval(ctx, params)
			results[i] = Point{Params: params, Value: v, Err: err}
			return ctx.Err()
		})
	}
	if err := eg.Wait(); err != nil {
		return Point{}, results, err
	}

	best := Point{Value: math.Inf(1)}
	for _, p := range results {
		if p.Err == nil && !math.IsNaN(p.Value) && p.Value < best.Value {
			best = p
		}
	}
	if best.Params == nil {
		return best, results, fmt.Errorf("optim: no grid point produced a value")
	}
	return best, results, nil
}

// Names lists the parameters SetParam accepts.
func Names() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var setters = map[string]func(c *config.Config, v float64){
	"tau":       func(c *config.Config, v float64) { c.Tau = v },
	"rho_init":  func(c *config.Config, v float64) { c.RhoInit = v },
	"gx":        func(c *config.Config, v float64) { c.Gravity.X = v },
	"gy":        func(c *config.Config, v float64) { c.Gravity.Y = v },
	"rho_in":    func(c *config.Config, v float64) { c.Boundary.RhoInlet = v },
	"rho_out":   func(c *config.Config, v float64) { c.Boundary.RhoOutlet = v },
	"rho0":      func(c *config.Config, v float64) { c.Multiphase.Rho0 = v },
	"g_ff":      func(c *config.Config, v float64) { c.Multiphase.GFluid = v },
	"g_fs":      func(c *config.Config, v float64) { c.Multiphase.GSolid = v },
	"rho_solid": func(c *config.Config, v float64) { c.Multiphase.RhoSolid = v },
}

// SetParam assigns a named scalar of cfg.
func SetParam(cfg *config.Config, name string, v float64) error {
	set, ok := setters[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("optim: unknown parameter %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	set(cfg, v)
	return nil
}

// MetricEvaluator runs base with the point's parameters applied, without a
// run directory, and reports the final value of the named registry metric.
func MetricEvaluator(base *config.Config, metric string, log *zap.Logger) Evaluator {
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		cfg := *base
		cfg.Resume = false
		for name, v := range params {
			if err := SetParam(&cfg, name, v); err != nil {
				return math.NaN(), err
			}
		}
		m, err := experiment.NewRegistry().GetMetric(metric, &cfg)
		if err != nil {
			return math.NaN(), err
		}
		s, err := experiment.NewSolver(&cfg, nil)
		if err != nil {
			return math.NaN(), err
		}
		simulator := sim.New(s, log)
		simulator.AddMetric(m)
		res, err := simulator.Run(ctx, sim.Config{
			Steps:         cfg.Steps,
			OutInterval:   cfg.OutInterval,
			DiagnosisRate: cfg.DiagnosisRate,
			SaveRate:      cfg.SaveRate,
		})
		if err != nil {
			return math.NaN(), err
		}
		if res.Halted {
			return math.NaN(), res.HaltErr
		}
		return m.Value(), nil
	}
}
