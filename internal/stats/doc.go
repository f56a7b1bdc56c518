// Package stats turns vote tallies into smoothed probability estimates and
// ranks comments as common ground, differences of opinion, or unresolved
// uncertainty.
//
// Two interchangeable Scorer strategies exist: PooledScorer ignores opinion
// groups and works on summed tallies; GroupAwareScorer requires per-group
// tallies and rewards simultaneous cross-group agreement. The strategy is
// picked once at the root of an analysis and threaded down the topic tree
// through a Factory.
//
// Everything here is pure, synchronous computation over read-only inputs;
// each call returns newly derived values and no state survives between
// invocations.
package stats
