// Package metavoting holds the per-node meta-voting state of the consensus
// algorithm.
//
// Peers gossip a DAG of events. Some events carry observations: payloads that
// the network must agree on. On top of the graph, every event is given a
// MetaEvent: the observations it newly considers decidable (its interesting
// content) and, for every voter, a sequence of meta-votes estimating round by
// round whether a decision has been reached. Computing MetaEvents is the job
// of the consensus engine; this package stores them.
//
// Elections
//
// A MetaElection covers the meta-voting towards exactly one decision. It owns
// the meta-events, the round-hash chain of every voter, the index of events
// with interesting content, the set of payload-carrying events that are not
// decided yet, and the history of decisions. When the engine detects a
// decision it calls NewElection, which retires the decided payload, applies
// the membership change that the decision produced (if any), and starts the
// next election in place.
//
// Starting an election from scratch is always correct. As an optimisation,
// when the voter set is unchanged, meta-events of events at or after the
// earliest undecided payload are kept, minus the decided observation, so the
// engine does not recompute them.
//
// A MetaElection is not safe for concurrent use. It is owned by the engine's
// processing loop, which must feed events in topological order and decisions
// in consensus order.
package metavoting
