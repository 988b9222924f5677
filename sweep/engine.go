package sweep

import (
	"context"
	"runtime"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/defense-sim/defense-sim/sim"
)

// Engine executes a validated sweep spec. Trials are independent pure
// functions of their configs, so the engine fans them out over a bounded
// worker pool; results land in a pre-allocated indexed slice, keeping
// output order independent of completion order.
type Engine struct {
	spec    *SweepSpec
	workers int
	runID   string
}

// NewEngine validates the spec and builds an engine. Validation failures
// are ConfigurationErrors and abort the sweep before any trial runs.
func NewEngine(spec *SweepSpec) (*Engine, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	workers := spec.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	return &Engine{
		spec:    spec,
		workers: workers,
		runID:   uuid.NewString(),
	}, nil
}

// RunID identifies this sweep execution in persisted tables.
func (e *Engine) RunID() string {
	return e.runID
}

// Run executes every enumerated trial and returns the complete ordered
// TrialResult sequence, successes and failures alike. An individual trial
// failure never halts the sweep; it is recorded as a failed result.
//
// On context cancellation the error is returned together with the results
// of every trial that completed, which remain valid for partial
// aggregation. Trials that never started are absent from the slice.
func (e *Engine) Run(ctx context.Context) ([]sim.TrialResult, error) {
	configs := e.spec.Enumerate()
	results := make([]sim.TrialResult, len(configs))

	logrus.Infof("sweep %s: %d trials (%d families x %d seeds), %d workers",
		e.runID, len(configs), len(configs)/e.spec.Seeds, e.spec.Seeds, e.workers)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, cfg := range configs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			results[i] = sim.RunTrial(cfg)
			logrus.Debugf("trial %d/%d done: %s seed=%d status=%s",
				i+1, len(configs), results[i].Family, cfg.Seed, results[i].Status)
			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		completed := results[:0:0]
		for _, r := range results {
			if r.Status != "" {
				completed = append(completed, r)
			}
		}
		logrus.Warnf("sweep %s aborted: %v (%d/%d trials completed)",
			e.runID, err, len(completed), len(configs))
		return completed, err
	}

	failed := 0
	for _, r := range results {
		if r.Status == sim.TrialFailed {
			failed++
		}
	}
	if failed > 0 {
		logrus.Warnf("sweep %s: %d of %d trials failed", e.runID, failed, len(configs))
	}
	logrus.Infof("sweep %s complete: %d trials", e.runID, len(configs))
	return results, nil
}
