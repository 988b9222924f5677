package sweep

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/defense-sim/defense-sim/sim"
)

// Flat-table column layouts. These are the boundary artifacts consumed by
// external reporting and plotting collaborators.
var (
	trialColumns = []string{
		"sweep_id", "defense", "params", "seed", "duration", "attacker_model",
		"security", "usability", "time_to_compromise", "throughput",
		"status", "failure_reason",
	}
	summaryColumns = []string{
		"defense", "params", "attacker_model", "n_trials",
		"security_mean", "security_std", "usability_mean", "usability_std",
	}
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteTrials writes the per-trial record table as CSV.
func WriteTrials(w io.Writer, sweepID string, trials []sim.TrialResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(trialColumns); err != nil {
		return fmt.Errorf("write trial header: %w", err)
	}
	for _, t := range trials {
		row := []string{
			sweepID,
			t.Defense,
			sim.EncodeParams(t.Params),
			strconv.FormatInt(t.Seed, 10),
			formatFloat(t.Duration),
			t.AttackerModel,
			formatFloat(t.Security),
			formatFloat(t.Usability),
			formatFloat(t.TimeToCompromise),
			formatFloat(t.Throughput),
			string(t.Status),
			t.FailureReason,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write trial row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTrialsFile writes the trial table to path.
func WriteTrialsFile(path, sweepID string, trials []sim.TrialResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return WriteTrials(f, sweepID, trials)
}

// ReadTrials parses a trial table written by WriteTrials, preserving row
// order. The sweep_id column is metadata and is not retained on the
// records.
func ReadTrials(r io.Reader) ([]sim.TrialResult, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read trial table: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("trial table is empty")
	}
	if len(rows[0]) != len(trialColumns) {
		return nil, fmt.Errorf("trial table has %d columns, want %d", len(rows[0]), len(trialColumns))
	}

	trials := make([]sim.TrialResult, 0, len(rows)-1)
	for i, row := range rows[1:] {
		params, err := sim.DecodeParams(row[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		seed, err := strconv.ParseInt(row[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: seed: %w", i+2, err)
		}
		floats := make([]float64, 5)
		for j, col := range []int{4, 6, 7, 8, 9} {
			v, err := strconv.ParseFloat(row[col], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: column %s: %w", i+2, trialColumns[col], err)
			}
			floats[j] = v
		}
		trials = append(trials, sim.TrialResult{
			Family:           sim.FamilyKey(row[1], params),
			Defense:          row[1],
			Params:           params,
			Seed:             seed,
			Duration:         floats[0],
			AttackerModel:    row[5],
			Security:         floats[1],
			Usability:        floats[2],
			TimeToCompromise: floats[3],
			Throughput:       floats[4],
			Status:           sim.TrialStatus(row[10]),
			FailureReason:    row[11],
		})
	}
	return trials, nil
}

// ReadTrialsFile reads a trial table from path.
func ReadTrialsFile(path string) ([]sim.TrialResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return ReadTrials(f)
}

func writeSummaryRows(w io.Writer, rows []AggregatedResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryColumns); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}
	for _, a := range rows {
		row := []string{
			a.Defense,
			sim.EncodeParams(a.Params),
			a.AttackerModel,
			strconv.Itoa(a.Count),
			formatFloat(a.SecurityMean),
			formatFloat(a.SecurityStd),
			formatFloat(a.UsabilityMean),
			formatFloat(a.UsabilityStd),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummary writes the per-family summary table as CSV.
func WriteSummary(w io.Writer, summary []AggregatedResult) error {
	return writeSummaryRows(w, summary)
}

// WriteSummaryFile writes the summary table to path.
func WriteSummaryFile(path string, summary []AggregatedResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return WriteSummary(f, summary)
}

// WriteFrontier writes the frontier table, a subset of the summary table
// ordered by ascending usability.
func WriteFrontier(w io.Writer, frontier []FrontierPoint) error {
	rows := make([]AggregatedResult, len(frontier))
	for i, p := range frontier {
		rows[i] = p.AggregatedResult
	}
	return writeSummaryRows(w, rows)
}

// WriteFrontierFile writes the frontier table to path.
func WriteFrontierFile(path string, frontier []FrontierPoint) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return WriteFrontier(f, frontier)
}
