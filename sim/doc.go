// Package sim provides the discrete-event trial kernel for defense-sim.
//
// # Reading Guide
//
// Start with these three files to understand the kernel:
//   - actors.go: attacker and legitimate-user behavior models
//   - simulator.go: world construction, the event loop, and RunTrial
//   - metrics.go: how an audit record becomes a (security, usability) pair
//
// # Architecture
//
// One trial is a pure function of (defense, parameters, seed, duration).
// The simulator builds a private world per trial: a virtual Clock, a
// PartitionedRNG derived from the trial seed, an in-memory sqlite
// AccountStore, a Defense policy, and a set of actors whose login attempts
// are processed in timestamp order from an event heap. Nothing is shared
// between trials, so the sweep layer may run many trials concurrently.
//
// # Key Interfaces
//
//   - Defense: admit or block a login attempt, then observe its outcome
//   - Actor: schedule the next attempt and produce credentials for it
//
// Defense implementations register a parameter schema; the sweep layer
// validates grids against these schemas before any trial executes.
package sim
