package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/latticeflow/internal/optim"
	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	f := &runFlags{}
	var (
		params   []string
		metric   string
		parallel int
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search over run parameters scored by a metric",
		Example: "  latticeflow sweep --preset poiseuille --param tau=0.6,0.8,1.0 " +
			"--param rho_in=1.01,1.02 --metric poiseuille",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			grid, err := parseParams(params)
			if err != nil {
				return err
			}

			g := optim.NewGridSearch(grid, parallel)
			fmt.Printf("sweeping %d points, metric %s\n\n", len(g.Points()), metric)
			best, all, err := g.Search(cmd.Context(), optim.MetricEvaluator(cfg, metric, nil))

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			names := make([]string, len(grid))
			for i, p := range grid {
				names[i] = strings.ToUpper(p.Name)
			}
			fmt.Fprintln(w, strings.Join(names, "\t")+"\t"+strings.ToUpper(metric))
			for _, p := range all {
				row := make([]string, len(grid))
				for i, gp := range grid {
					row[i] = strconv.FormatFloat(p.Params[gp.Name], 'g', -1, 64)
				}
				value := fmt.Sprintf("%.6g", p.Value)
				if p.Err != nil {
					value = "error: " + p.Err.Error()
				}
				fmt.Fprintln(w, strings.Join(row, "\t")+"\t"+value)
			}
			if ferr := w.Flush(); ferr != nil {
				return ferr
			}
			if err != nil {
				return err
			}
			fmt.Printf("\nbest: %s = %.6g\n", formatParams(best.Params), best.Value)
			return nil
		},
	}
	f.register(cmd.Flags())
	cmd.Flags().StringArrayVar(&params, "param", nil, "name=v1,v2,... (names: "+strings.Join(optim.Names(), ", ")+")")
	cmd.Flags().StringVar(&metric, "metric", "poiseuille", "registry metric to minimize")
	cmd.Flags().IntVar(&parallel, "parallel", 1, "points evaluated at once")
	_ = cmd.MarkFlagRequired("param")
	return cmd
}

func parseParams(args []string) ([]optim.Param, error) {
	out := make([]optim.Param, 0, len(args))
	for _, arg := range args {
		name, list, ok := strings.Cut(arg, "=")
		if !ok || name == "" || list == "" {
			return nil, fmt.Errorf("invalid --param %q, want name=v1,v2", arg)
		}
		p := optim.Param{Name: strings.TrimSpace(name)}
		for _, s := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid --param %q: %w", arg, err)
			}
			p.Values = append(p.Values, v)
		}
		out = append(out, p)
	}
	return out, nil
}

func formatParams(params map[string]float64) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, params[k])
	}
	return strings.Join(parts, " ")
}
