// Package sweep enumerates defense configuration grids, executes trials
// across seeds in parallel, aggregates per-family statistics, and
// extracts the security-vs-usability Pareto frontier.
//
// Data flows strictly forward through immutable tables:
//
//	SweepSpec → Engine.Run → []sim.TrialResult → Aggregate →
//	[]AggregatedResult → Frontier → []FrontierPoint
//
// The engine is the only concurrent stage; aggregation and frontier
// extraction operate single-threaded on materialized inputs and tolerate
// partial trial sets from a cancelled sweep.
package sweep
