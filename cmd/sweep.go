package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/defense-sim/defense-sim/sweep"
)

var (
	gridPath      string  // Path to the sweep spec YAML
	sweepOutDir   string  // Directory for result tables
	overrideSeeds int     // Seeds per configuration (0 = use spec)
	overrideDur   float64 // Trial duration in simulated seconds (0 = use spec)
	overrideWork  int     // Worker pool size (0 = use spec)
)

// sweepCmd enumerates the configuration grid and runs all trials.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the defense parameter sweep",
	Long: "Load a grid spec, enumerate the Cartesian product of parameter values " +
		"crossed with seeds, run one trial per (configuration, seed) pair, and " +
		"write the per-trial record table.",
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := sweep.LoadSweepSpec(gridPath)
		if err != nil {
			logrus.Fatalf("Failed to load sweep spec: %v", err)
		}
		if overrideSeeds > 0 {
			spec.Seeds = overrideSeeds
		}
		if overrideDur > 0 {
			spec.Duration = overrideDur
		}
		if overrideWork > 0 {
			spec.Workers = overrideWork
		}

		engine, err := sweep.NewEngine(spec)
		if err != nil {
			logrus.Fatalf("Invalid sweep configuration: %v", err)
		}

		if err := os.MkdirAll(sweepOutDir, 0750); err != nil {
			logrus.Fatalf("Failed to create output directory: %v", err)
		}

		// A cancelled sweep still writes the trials that completed;
		// they remain valid for partial aggregation.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		trials, runErr := engine.Run(ctx)
		if len(trials) == 0 {
			logrus.Fatalf("Sweep produced no trials: %v", runErr)
		}

		trialsPath := filepath.Join(sweepOutDir, "trials.csv")
		if err := sweep.WriteTrialsFile(trialsPath, engine.RunID(), trials); err != nil {
			logrus.Fatalf("Failed to write trial table: %v", err)
		}
		logrus.Infof("Trial table written to %s (%d rows)", trialsPath, len(trials))

		if runErr != nil {
			logrus.Warnf("Sweep was interrupted: %v", runErr)
		}
	},
}

func init() {
	sweepCmd.Flags().StringVar(&gridPath, "grid", "", "Path to sweep spec YAML")
	sweepCmd.Flags().StringVar(&sweepOutDir, "out", "results", "Output directory for result tables")
	sweepCmd.Flags().IntVar(&overrideSeeds, "seeds", 0, "Override seeds per configuration")
	sweepCmd.Flags().Float64Var(&overrideDur, "duration", 0, "Override trial duration (simulated seconds)")
	sweepCmd.Flags().IntVar(&overrideWork, "workers", 0, "Override worker pool size")
	_ = sweepCmd.MarkFlagRequired("grid")

	rootCmd.AddCommand(sweepCmd)
}
