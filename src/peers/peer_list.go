package peers

import (
	"fmt"

	"github.com/mosaicnetworks/metavote/src/crypto/keys"
)

// ChangeType distinguishes membership additions from removals.
type ChangeType uint8

const (
	// PeerAdd makes a peer a voter.
	PeerAdd ChangeType = iota
	// PeerRemove stops a peer from voting.
	PeerRemove
)

// String ...
func (t ChangeType) String() string {
	switch t {
	case PeerAdd:
		return "add"
	case PeerRemove:
		return "remove"
	}
	return "unknown"
}

// PeerListChange is a single membership delta resulting from a decision.
type PeerListChange struct {
	Type  ChangeType
	Index PeerIndex
}

// AddChange ...
func AddChange(i PeerIndex) *PeerListChange {
	return &PeerListChange{Type: PeerAdd, Index: i}
}

// RemoveChange ...
func RemoveChange(i PeerIndex) *PeerListChange {
	return &PeerListChange{Type: PeerRemove, Index: i}
}

// String ...
func (c PeerListChange) String() string {
	return fmt.Sprintf("%s(%s)", c.Type, c.Index)
}

// IndexedPeer pairs a registered peer with its index.
type IndexedPeer struct {
	Index PeerIndex
	Peer  *Peer
}

// PeerList is the node-local registry of peers. Indices are assigned in
// registration order and never reused.
type PeerList struct {
	peers    []*Peer
	byPubKey map[string]PeerIndex
	voters   PeerIndexSet
}

// NewPeerList creates an empty registry.
func NewPeerList() *PeerList {
	return &PeerList{
		byPubKey: make(map[string]PeerIndex),
		voters:   NewPeerIndexSet(),
	}
}

// NewPeerListFromVoters registers every peer as a voter, in slice order.
func NewPeerListFromVoters(voters []*Peer) (*PeerList, error) {
	pl := NewPeerList()
	for _, p := range voters {
		idx, err := pl.AddPeer(p)
		if err != nil {
			return nil, err
		}
		pl.SetVoter(idx, true)
	}
	return pl, nil
}

// AddPeer registers a peer and returns its index. Registering the same public
// key twice returns the existing index.
func (pl *PeerList) AddPeer(peer *Peer) (PeerIndex, error) {
	if keys.ToPublicKey(peer.PubKeyBytes()) == nil {
		return NoPeer, fmt.Errorf("peer %q has an invalid public key %q", peer.Moniker, peer.PubKeyHex)
	}

	key := peer.PubKeyString()
	if idx, ok := pl.byPubKey[key]; ok {
		return idx, nil
	}

	idx := PeerIndex(len(pl.peers))
	pl.peers = append(pl.peers, peer)
	pl.byPubKey[key] = idx

	return idx, nil
}

// Get returns the peer registered at index i.
func (pl *PeerList) Get(i PeerIndex) (*Peer, bool) {
	if int(i) >= len(pl.peers) {
		return nil, false
	}
	return pl.peers[i], true
}

// IndexByPubKey looks a peer up by its public key hex.
func (pl *PeerList) IndexByPubKey(pubKeyHex string) (PeerIndex, bool) {
	p := Peer{PubKeyHex: pubKeyHex}
	idx, ok := pl.byPubKey[p.PubKeyString()]
	return idx, ok
}

// IndexByMoniker returns the first peer registered with the given moniker.
func (pl *PeerList) IndexByMoniker(moniker string) (PeerIndex, bool) {
	for i, p := range pl.peers {
		if p.Moniker == moniker {
			return PeerIndex(i), true
		}
	}
	return NoPeer, false
}

// SetVoter marks a registered peer as a voter or non-voter.
func (pl *PeerList) SetVoter(i PeerIndex, voter bool) {
	if voter {
		pl.voters.Insert(i)
	} else {
		pl.voters.Remove(i)
	}
}

// Apply applies a membership change to the registry's voter set.
func (pl *PeerList) Apply(change *PeerListChange) {
	if change == nil {
		return
	}
	pl.SetVoter(change.Index, change.Type == PeerAdd)
}

// VoterIndices returns a copy of the current voter set.
func (pl *PeerList) VoterIndices() PeerIndexSet {
	return pl.voters.Clone()
}

// Voters enumerates the current voters in index order.
func (pl *PeerList) Voters() []IndexedPeer {
	res := []IndexedPeer{}
	for _, i := range pl.voters.Indices() {
		if p, ok := pl.Get(i); ok {
			res = append(res, IndexedPeer{Index: i, Peer: p})
		}
	}
	return res
}

// Len returns the number of registered peers, voters or not.
func (pl *PeerList) Len() int {
	return len(pl.peers)
}
