package sweep

import "sort"

// FrontierPoint is an AggregatedResult on the Pareto-optimal set: no
// other family is at least as secure and at least as usable with one
// strict improvement.
type FrontierPoint struct {
	AggregatedResult
}

// dominates reports whether a is at least as good as b on both metrics
// and strictly better on at least one.
func dominates(a, b AggregatedResult) bool {
	if a.SecurityMean < b.SecurityMean || a.UsabilityMean < b.UsabilityMean {
		return false
	}
	return a.SecurityMean > b.SecurityMean || a.UsabilityMean > b.UsabilityMean
}

// Frontier extracts the non-dominated subset of the summary table,
// sorted by ascending usability mean. Since no member may dominate
// another, security mean strictly decreases along that order except at
// exact ties. Families with identical metric pairs are mutually
// non-dominating and all retained.
//
// Empty and single-row inputs return the trivial frontier without error.
// The O(n²) pairwise check is deliberate: sweep sizes are bounded by the
// declared grid and stay small.
func Frontier(summary []AggregatedResult) []FrontierPoint {
	var frontier []FrontierPoint
	for i, candidate := range summary {
		dominated := false
		for j, other := range summary {
			if i == j {
				continue
			}
			if dominates(other, candidate) {
				dominated = true
				break
			}
		}
		if !dominated {
			frontier = append(frontier, FrontierPoint{candidate})
		}
	}

	sort.SliceStable(frontier, func(i, j int) bool {
		a, b := frontier[i], frontier[j]
		if a.UsabilityMean != b.UsabilityMean {
			return a.UsabilityMean < b.UsabilityMean
		}
		if a.SecurityMean != b.SecurityMean {
			return a.SecurityMean < b.SecurityMean
		}
		return a.Family < b.Family
	})
	return frontier
}
