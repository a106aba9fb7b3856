package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/san-kum/latticeflow/internal/config"
	"github.com/san-kum/latticeflow/internal/experiment"
	"github.com/san-kum/latticeflow/internal/render"
	"github.com/san-kum/latticeflow/internal/topology"
	"github.com/san-kum/latticeflow/internal/viz"
	"github.com/spf13/cobra"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [group]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groups := config.ListGroups()
			if len(args) == 1 {
				groups = args
			}
			for _, g := range groups {
				presets := config.ListPresets(g)
				if len(presets) == 0 {
					fmt.Printf("no presets for group: %s\n", g)
					continue
				}
				fmt.Printf("%s:\n", g)
				for _, p := range presets {
					cfg := config.GetPreset(g, p)
					fmt.Printf("  %-12s %s %dx%d, %d steps\n", p, cfg.Topology.Kind, cfg.Topology.NX, cfg.Topology.NY, cfg.Steps)
				}
			}
			return nil
		},
	}
}

func newExampleINICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example-ini",
		Short: "print a documented legacy parameter file",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Print(config.ExampleINI)
		},
	}
}

func newTopoCmd() *cobra.Command {
	topoCmd := &cobra.Command{
		Use:   "topo",
		Short: "generate and inspect topology files",
	}

	var nx, ny int
	var radius float64
	var out string
	generateCmd := &cobra.Command{
		Use:   "generate [kind]",
		Short: "write a generated topology file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topo, err := topology.Generate(args[0], nx, ny, radius)
			if err != nil {
				return err
			}
			if out == "" {
				return topology.Write(os.Stdout, topo)
			}
			if err := topology.Save(out, topo); err != nil {
				return err
			}
			printTopoReport(out, topology.Analyze(topo))
			return nil
		},
	}
	generateCmd.Flags().IntVar(&nx, "nx", 64, "grid width")
	generateCmd.Flags().IntVar(&ny, "ny", 32, "grid height")
	generateCmd.Flags().Float64Var(&radius, "radius", 0, "obstacle radius (cylinder)")
	generateCmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")

	infoCmd := &cobra.Command{
		Use:   "info [file]",
		Short: "report porosity and connectivity of a topology file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topo, err := topology.Load(args[0])
			if err != nil {
				return err
			}
			printTopoReport(args[0], topology.Analyze(topo))
			return nil
		},
	}

	topoCmd.AddCommand(generateCmd, infoCmd)
	return topoCmd
}

func printTopoReport(name string, r topology.Report) {
	fmt.Printf("%s: %dx%d\n", name, r.NX, r.NY)
	fmt.Printf("  fluid: %d, solid: %d, porosity: %.3f\n", r.Fluid, r.Solid, r.Porosity())
	if r.Connected() {
		fmt.Println("  fluid region connected")
		return
	}
	fmt.Printf("  %d fluid components, sizes %v\n", len(r.Components), r.Components)
}

func newInfoCmd() *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "info",
		Short: "print the derived parameters of a configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			s, err := experiment.NewSolver(cfg, nil)
			if err != nil {
				return err
			}
			p := s.Params()
			sc := s.Config()

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "grid\t%dx%d\n", s.Fields().NX, s.Fields().NY)
			fmt.Fprintf(w, "workers\t%d\n", s.Workers())
			fmt.Fprintf(w, "tau\t%g\n", sc.Tau)
			fmt.Fprintf(w, "omega\t%g\n", p.Omega)
			fmt.Fprintf(w, "viscosity\t%g\n", p.Viscosity)
			fmt.Fprintf(w, "sound speed\t%g\n", p.SoundSpeed)
			fmt.Fprintf(w, "forcing\t%s\n", sc.Forcing)
			fmt.Fprintf(w, "potential\t%s\n", sc.Potential)
			if sc.Multiphase() {
				fmt.Fprintf(w, "kappa\t%g\n", p.Kappa)
			}
			if b := sc.Boundaries; b.Inlet || b.Outlet {
				fmt.Fprintf(w, "pressure in/out\t%g / %g\n", p.PressInlet, p.PressOutlet)
				fmt.Fprintf(w, "pressure gradient\t%g\n", p.PressGrad)
				fmt.Fprintf(w, "u_poise\t%g\n", p.UPoise)
				fmt.Fprintf(w, "reynolds\t%g\n", p.Reynolds)
			}
			fmt.Fprintf(w, "mass\t%g\n", s.Mass())
			fmt.Fprintf(w, "fluid volume\t%g\n", s.Volume())
			return w.Flush()
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newWatchCmd() *cobra.Command {
	f := &runFlags{}
	var (
		field    string
		perTick  int
		fps      int
		snapshot string
		theme    string
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "run a simulation live in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			if cfg.Resume {
				return fmt.Errorf("watch does not resume runs; use resume")
			}
			if theme != "" {
				viz.SetTheme(theme)
			}
			s, err := experiment.NewSolver(cfg, nil)
			if err != nil {
				return err
			}
			final, err := viz.Run(s, viz.Options{
				Title:        cfg.OutputDir,
				MaxSteps:     cfg.Steps,
				StepsPerTick: perTick,
				Field:        field,
				SnapshotDir:  snapshot,
				FPS:          fps,
			})
			if err != nil {
				return err
			}
			if err := final.Halted(); err != nil {
				return err
			}
			fmt.Printf("stopped at step %d\n", s.Timestep())
			return nil
		},
	}
	f.register(cmd.Flags())
	cmd.Flags().StringVar(&field, "field", "speed", "initial field: "+fmt.Sprint(render.Names))
	cmd.Flags().IntVar(&perTick, "per-tick", 10, "solver steps per frame")
	cmd.Flags().IntVar(&fps, "fps", 20, "frame rate")
	cmd.Flags().StringVar(&snapshot, "snapshots", ".", "directory for PNG snapshots")
	cmd.Flags().StringVar(&theme, "theme", "", "color theme: "+fmt.Sprint(viz.ThemeNames()))
	return cmd
}
