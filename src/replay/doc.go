// Package replay drives a MetaElection through a scripted Scenario.
//
// A Scenario stands in for the consensus engine: it declares the peers and
// then a sequence of steps that insert events in a gossip graph, hand over
// meta-events, decide observations, prune events and seed round hashes. The
// Runner executes the steps in order, checks the election's invariants after
// every step, and stores a snapshot of the election after every decision.
//
// Scenarios are JSON documents:
//
//  {
//    "Mode": "supermajority",
//    "Peers": [{"Moniker": "alice"}, {"Moniker": "bob"}, {"Moniker": "carol"}],
//    "Steps": [
//      {"Kind": "init_round_hashes"},
//      {"Kind": "event", "Label": "a0", "Creator": "alice", "Payload": "tx1"},
//      {"Kind": "meta", "Label": "a0", "Interesting": [{"Payload": "tx1"}], "Votes": {"alice": [0, 1]}},
//      {"Kind": "decide", "Payload": "tx1", "Remove": "carol"},
//      {"Kind": "prune", "Label": "a0"}
//    ]
//  }
//
// Peers without a public key are given one derived from their moniker.
package replay
