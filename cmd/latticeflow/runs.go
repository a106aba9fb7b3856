package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/latticeflow/internal/analysis"
	"github.com/san-kum/latticeflow/internal/render"
	"github.com/san-kum/latticeflow/internal/storage"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTIME\tGRID\tTAU\tPOTENTIAL\tSTEPS\tSTATUS")

	for _, run := range runs {
		status := "ok"
		if run.Halted {
			status = "halted"
		} else if run.Resumed {
			status = "resumed"
		}
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%.3f\t%s\t%d-%d\t%s\n",
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.NX, run.NY,
			run.Tau,
			run.Potential,
			run.StartStep, run.FinalStep,
			status,
		)
	}

	return w.Flush()
}

func newPlotCmd() *cobra.Command {
	var width, height int
	cmd := &cobra.Command{
		Use:   "plot [run]",
		Short: "plot the diagnostics history of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			run, err := st.Run(args[0])
			if err != nil {
				return err
			}
			h, err := storage.OpenHistory(run.HistoryPath())
			if err != nil {
				return err
			}
			defer h.Close()

			samples, err := h.Samples(cmd.Context())
			if err != nil {
				return err
			}
			if len(samples) == 0 {
				return fmt.Errorf("no data to plot")
			}

			fmt.Printf("run: %s (%s)\n", run.Meta.Name, run.Meta.ID)
			fmt.Printf("samples: %d, steps %d-%d\n\n", len(samples), samples[0].Step, samples[len(samples)-1].Step)

			series := []struct {
				caption string
				value   func(storage.Sample) float64
			}{
				{"density norm", func(s storage.Sample) float64 { return s.Norm }},
				{"relative norm change", func(s storage.Sample) float64 { return s.Delta }},
				{"mass", func(s storage.Sample) float64 { return s.Mass }},
				{"residual", func(s storage.Sample) float64 { return s.Residual }},
			}
			for _, sr := range series {
				data := make([]float64, 0, len(samples))
				for _, s := range samples {
					if v := sr.value(s); !math.IsNaN(v) && !math.IsInf(v, 0) {
						data = append(data, v)
					}
				}
				if len(data) == 0 {
					continue
				}
				graph := asciigraph.Plot(data,
					asciigraph.Height(height),
					asciigraph.Width(width),
					asciigraph.Caption(sr.caption),
				)
				fmt.Println(graph)
				fmt.Println()
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 80, "plot width")
	cmd.Flags().IntVar(&height, "height", 10, "plot height")
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var tol float64
	cmd := &cobra.Command{
		Use:   "analyze [run]",
		Short: "convergence and spectrum of the diagnostics history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			run, err := st.Run(args[0])
			if err != nil {
				return err
			}
			h, err := storage.OpenHistory(run.HistoryPath())
			if err != nil {
				return err
			}
			defer h.Close()
			samples, err := h.Samples(cmd.Context())
			if err != nil {
				return err
			}
			if len(samples) == 0 {
				return fmt.Errorf("no data")
			}

			rep := analysis.Analyze(samples, tol)
			fmt.Printf("history analysis: %s\n", run.Meta.Name)
			fmt.Printf("samples: %d, steps %d-%d\n\n", rep.Samples, rep.FirstStep, rep.LastStep)

			if rep.Spectrum != nil {
				ps := rep.Spectrum.Power
				if len(ps) > 80 {
					ps = ps[:80]
				}
				graph := asciigraph.Plot(ps,
					asciigraph.Height(12),
					asciigraph.Width(80),
					asciigraph.Caption("norm power spectrum"),
				)
				fmt.Println(graph)
				fmt.Println()
			}

			if rep.Converged {
				fmt.Printf("steady state from step %d (|delta| <= %g)\n", rep.ConvergedAt, tol)
			} else {
				fmt.Printf("not converged, last delta %.3e\n", rep.FinalDelta)
			}
			if rep.Period > 0 {
				fmt.Printf("dominant norm period: %.1f steps\n", rep.Period)
			}
			fmt.Printf("mass drift: %.3e (stddev %.3e)\n", rep.MassDrift, rep.MassStdDev)
			return nil
		},
	}
	cmd.Flags().Float64Var(&tol, "tol", 1e-6, "relative norm change counted as steady")
	return cmd
}

func newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export [run]",
		Short: "export run metadata and diagnostics as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			data, err := st.Export(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if out == "" {
				return data.WriteJSON(os.Stdout)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := data.WriteJSON(f); err != nil {
				return err
			}
			fmt.Printf("exported to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newRenderCmd() *cobra.Command {
	var (
		step  int
		field string
		out   string
		all   bool
	)
	cmd := &cobra.Command{
		Use:   "render [run]",
		Short: "render field frames of a run to PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			run, err := st.Run(args[0])
			if err != nil {
				return err
			}
			frames, err := run.Frames()
			if err != nil {
				return err
			}
			if len(frames) == 0 {
				return fmt.Errorf("run %s has no field output", args[0])
			}

			var steps []int
			switch {
			case all:
				steps = frames
			case cmd.Flags().Changed("step"):
				steps = []int{step}
			default:
				steps = frames[len(frames)-1:]
			}

			for _, n := range steps {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				path := out
				if path == "" || len(steps) > 1 {
					path = filepath.Join(run.DataDir(), fmt.Sprintf("lb_%06d_%s.png", n, field))
				}
				if err := renderFrame(run, n, field, path); err != nil {
					return err
				}
				fmt.Println(path)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&step, "step", 0, "frame step (default the last one)")
	cmd.Flags().StringVar(&field, "field", "rho", "field: "+strings.Join(render.Names, ", "))
	cmd.Flags().StringVarP(&out, "output", "o", "", "output PNG (single frame only)")
	cmd.Flags().BoolVar(&all, "all", false, "render every frame")
	return cmd
}

func renderFrame(run *storage.Run, step int, field, path string) error {
	fr, err := storage.LoadFrame(run.FramePath(step))
	if err != nil {
		return err
	}
	f, err := render.FromFrame(fr, field)
	if err != nil {
		return err
	}
	title := fmt.Sprintf("%s: %s, step %d", run.Meta.Name, field, step)
	return render.Save(path, f, render.Options{Title: title})
}
