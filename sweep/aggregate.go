package sweep

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/defense-sim/defense-sim/sim"
)

// AggregatedResult is the per-family summary of all successful trials
// sharing a defense and parameter point. Count is always >= 1: families
// with no successful trials are omitted, never zero-filled.
type AggregatedResult struct {
	Family        string
	Defense       string
	Params        map[string]float64
	AttackerModel string
	Count         int

	SecurityMean  float64
	SecurityStd   float64
	UsabilityMean float64
	UsabilityStd  float64
}

// Aggregate partitions trials by family, drops failed trials, and
// computes mean and sample standard deviation (n-1) of both metrics.
// Single-trial families report a standard deviation of exactly 0.
//
// Family order follows first appearance in the trial sequence. Families
// whose trials all failed are excluded from the table and returned as
// warnings; losing a whole configuration silently would be a correctness
// hazard, so each omission is also logged.
func Aggregate(trials []sim.TrialResult) ([]AggregatedResult, []string) {
	type group struct {
		first     sim.TrialResult
		security  []float64
		usability []float64
		totalSeen int
	}

	var order []string
	groups := make(map[string]*group)

	for _, t := range trials {
		g, ok := groups[t.Family]
		if !ok {
			g = &group{first: t}
			groups[t.Family] = g
			order = append(order, t.Family)
		}
		g.totalSeen++
		if t.Status != sim.TrialSuccess {
			continue
		}
		g.security = append(g.security, t.Security)
		g.usability = append(g.usability, t.Usability)
	}

	var (
		results  []AggregatedResult
		warnings []string
	)
	for _, family := range order {
		g := groups[family]
		if len(g.security) == 0 {
			w := fmt.Sprintf("family %s: all %d trials failed, excluded from aggregation", family, g.totalSeen)
			logrus.Warn(w)
			warnings = append(warnings, w)
			continue
		}
		results = append(results, AggregatedResult{
			Family:        family,
			Defense:       g.first.Defense,
			Params:        g.first.Params,
			AttackerModel: g.first.AttackerModel,
			Count:         len(g.security),
			SecurityMean:  stat.Mean(g.security, nil),
			SecurityStd:   sampleStd(g.security),
			UsabilityMean: stat.Mean(g.usability, nil),
			UsabilityStd:  sampleStd(g.usability),
		})
	}
	return results, warnings
}

// sampleStd is the n-1 standard deviation, defined as exactly 0 for a
// single observation so downstream consumers never see NaN.
func sampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}
