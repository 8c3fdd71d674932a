// Package peers defines the concept of a peer and implements the local
// registry that maps peers to compact indices.
//
// A peer is identified by its public key, and optionaly a moniker which is a
// non-unique user-friendly name. Inside a node, peers are referred to by a
// PeerIndex: a small integer assigned by the local PeerList when the peer is
// first registered. Indices are local to one node and are never reused for a
// different identity.
//
// A peer is a voter when its votes count towards decisions. The set of voters
// evolves as decisions add or remove members; such a change is described by a
// PeerListChange and applied at most once per decision.
//
// Upon starting up, the replay tool expects to find a peers.json file in its
// data directory, listing the initial voters.
package peers
