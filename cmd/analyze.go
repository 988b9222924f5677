package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/defense-sim/defense-sim/sweep"
)

var (
	trialsPath    string // Path to the per-trial record table
	analyzeOutDir string // Directory for summary and frontier tables
)

// analyzeCmd aggregates a trial table and extracts the Pareto frontier.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Aggregate trial results and extract the Pareto frontier",
	Long: "Group trials by configuration family, compute per-family mean and " +
		"standard deviation of the security and usability metrics, and extract " +
		"the Pareto-optimal frontier ordered by usability.",
	Run: func(cmd *cobra.Command, args []string) {
		trials, err := sweep.ReadTrialsFile(trialsPath)
		if err != nil {
			logrus.Fatalf("Failed to read trial table: %v", err)
		}

		summary, warnings := sweep.Aggregate(trials)
		for _, w := range warnings {
			logrus.Warn(w)
		}
		if len(summary) == 0 {
			logrus.Fatalf("No family produced a successful trial; nothing to analyze")
		}

		frontier := sweep.Frontier(summary)

		if err := os.MkdirAll(analyzeOutDir, 0750); err != nil {
			logrus.Fatalf("Failed to create output directory: %v", err)
		}
		summaryPath := filepath.Join(analyzeOutDir, "summary.csv")
		if err := sweep.WriteSummaryFile(summaryPath, summary); err != nil {
			logrus.Fatalf("Failed to write summary table: %v", err)
		}
		frontierPath := filepath.Join(analyzeOutDir, "frontier.csv")
		if err := sweep.WriteFrontierFile(frontierPath, frontier); err != nil {
			logrus.Fatalf("Failed to write frontier table: %v", err)
		}

		logrus.Infof("Summary written to %s (%d families)", summaryPath, len(summary))
		logrus.Infof("Frontier written to %s (%d points)", frontierPath, len(frontier))

		for _, p := range frontier {
			fmt.Printf("%-60s security %.3f +/- %.3f  usability %.3f +/- %.3f  (n=%d)\n",
				p.Family, p.SecurityMean, p.SecurityStd, p.UsabilityMean, p.UsabilityStd, p.Count)
		}
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&trialsPath, "trials", "", "Path to trials.csv produced by the sweep command")
	analyzeCmd.Flags().StringVar(&analyzeOutDir, "out", "results", "Output directory for summary and frontier tables")
	_ = analyzeCmd.MarkFlagRequired("trials")

	rootCmd.AddCommand(analyzeCmd)
}
