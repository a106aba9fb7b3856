package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/san-kum/latticeflow/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dataDir string
	verbose bool
	jsonLog bool

	logger *zap.Logger
)

// main registers the commands and executes the root command under a context
// that is cancelled on SIGINT or SIGTERM. It exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:          "latticeflow",
		Short:        "2D lattice Boltzmann flow solver",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = logging.New(logging.Options{Verbose: verbose, JSON: jsonLog})
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".latticeflow", "data directory holding the run directories")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json", false, "log as JSON")

	rootCmd.AddCommand(
		newRunCmd(),
		newResumeCmd(),
		newWatchCmd(),
		newSweepCmd(),
		newListCmd(),
		newPlotCmd(),
		newAnalyzeCmd(),
		newExportCmd(),
		newRenderCmd(),
		newPresetsCmd(),
		newTopoCmd(),
		newInfoCmd(),
		newExampleINICmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
