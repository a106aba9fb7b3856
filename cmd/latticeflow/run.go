package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/latticeflow/internal/experiment"
	"github.com/san-kum/latticeflow/internal/sim"
	"github.com/san-kum/latticeflow/internal/storage"
	"github.com/san-kum/latticeflow/internal/viz"
	"github.com/spf13/cobra"
)

type runOptions struct {
	runFlags
	force     bool
	metrics   []string
	stateFile string
}

func newRunCmd() *cobra.Command {
	o := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation into a run directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, false)
		},
	}
	o.register(cmd.Flags())
	cmd.Flags().BoolVarP(&o.force, "force", "f", false, "reuse a run directory that already holds a run")
	cmd.Flags().StringSliceVar(&o.metrics, "metrics", nil, "metrics to track (default depends on the run)")
	return cmd
}

func newResumeCmd() *cobra.Command {
	o := &runOptions{}
	var state string
	cmd := &cobra.Command{
		Use:   "resume [run]",
		Short: "continue a run from its checkpoint",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := cmd.Flags().Set("name", args[0]); err != nil {
					return err
				}
			}
			o.stateFile = state
			return o.run(cmd, true)
		},
	}
	o.register(cmd.Flags())
	cmd.Flags().StringVar(&state, "state", "", "checkpoint file to load instead of the run's own")
	cmd.Flags().StringSliceVar(&o.metrics, "metrics", nil, "metrics to track (default depends on the run)")
	return cmd
}

func (o *runOptions) run(cmd *cobra.Command, resume bool) error {
	cfg, err := o.load(cmd)
	if err != nil {
		return err
	}
	if resume {
		cfg.Resume = true
		if o.stateFile != "" {
			cfg.StateFile = o.stateFile
		}
	}

	st := storage.New(dataDir)
	exp := experiment.New(cfg, logger, experiment.Options{
		Overwrite: o.force,
		Verbose:   verbose,
		Metrics:   o.metrics,
	})
	defer exp.Close()
	if err := exp.Setup(st); err != nil {
		return err
	}

	log := exp.Logger()
	p := exp.Solver().Params()
	log.Sugar().Infof("running %s to step %d (viscosity %.4g, u_poise %.4g)",
		cfg.OutputDir, cfg.Steps, p.Viscosity, p.UPoise)

	result, err := exp.Run(cmd.Context())
	if result != nil {
		fmt.Println(summary(exp.RunDir(), result, exp.Solver().Mass()))
	}
	if errors.Is(err, context.Canceled) {
		log.Warn("interrupted, checkpoint written")
		return nil
	}
	if err != nil {
		return err
	}
	if result.Halted {
		return result.HaltErr
	}
	return nil
}

func summary(run *storage.Run, res *sim.Result, mass float64) string {
	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			viz.MetricLabel.Width(18).Render(label),
			viz.MetricValue.Render(value))
	}

	status := viz.StatusRunning.Render("completed")
	if res.Halted {
		status = lipgloss.NewStyle().Bold(true).Foreground(viz.CurrentTheme.Error).Render("halted")
	} else if res.Canceled {
		status = viz.StatusPaused.Render("interrupted")
	}

	lines := []string{
		viz.GradientTitle.Render(run.Meta.Name) + "  " + status,
		"",
		row("run id", run.Meta.ID),
		row("steps", fmt.Sprintf("%d → %d", res.StartStep, res.FinalStep)),
		row("wall time", res.Elapsed.Round(time.Millisecond).String()),
		row("mass", fmt.Sprintf("%.6f", mass)),
		row("norm", fmt.Sprintf("%.6e", res.Last.Norm)),
		row("delta", fmt.Sprintf("%.3e", res.Last.DeltaNorm)),
	}
	if !math.IsNaN(res.Residual) {
		lines = append(lines, row("residual", fmt.Sprintf("%.3e", res.Residual)))
	}

	names := make([]string, 0, len(res.Metrics))
	for name := range res.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) > 0 {
		lines = append(lines, "", viz.Subtle.Render("metrics"))
	}
	for _, name := range names {
		lines = append(lines, row("  "+name, fmt.Sprintf("%.6g", res.Metrics[name])))
	}
	lines = append(lines, "", viz.Subtle.Render(run.Dir))
	return viz.GlassPanel.Render(strings.Join(lines, "\n"))
}
