package metavoting

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/mosaicnetworks/metavote/src/peers"
)

func buildSnapshotFixture(t *testing.T) *electionFixture {
	f := newElectionFixture(t)
	e := f.election
	e.InitialiseRoundHashes(f.peerList.Voters())

	a0 := f.insert(alice, "tx1")
	b0 := f.insert(bob, "tx2")
	c0 := f.insert(carol, "")

	e.AddMetaEvent(NewMetaEventBuilder(a0))
	e.AddMetaEvent(NewMetaEventBuilder(b0).
		AddInterestingContent(key("tx1")).
		AddMetaVotes(alice, votes(0)...))
	e.AddMetaEvent(NewMetaEventBuilder(c0).
		AddInterestingContent(key("tx1"), key("tx2")).
		AddMetaVotes(alice, votes(0, 1)...).
		AddMetaVotes(carol, votes(0)...))

	return f
}

func TestSnapshot(t *testing.T) {
	f := buildSnapshotFixture(t)
	s := NewMetaElectionSnapshot(f.election, f.graph, f.peerList)

	if len(s.MetaEvents) != 3 {
		t.Fatalf("snapshot should hold 3 meta-events, not %d", len(s.MetaEvents))
	}

	alicePeer, _ := f.peerList.Get(alice)
	c0, _ := f.graph.Get(f.election.MetaEventIndices()[2])
	ces := s.MetaEvents[c0.Hex()]
	if len(ces.InterestingContent) != 2 || len(ces.MetaVotes[alicePeer.PubKeyString()]) != 2 {
		t.Fatalf("c0 snapshot mismatch: %v", ces)
	}

	if len(s.Voters) != 3 || len(s.RoundHashes) != 3 {
		t.Fatalf("snapshot should hold 3 voters with round hashes, got %d and %d", len(s.Voters), len(s.RoundHashes))
	}
	if len(s.RoundHashes[alicePeer.PubKeyString()]) != 2 {
		t.Fatalf("alice should have 2 round hashes")
	}
	if len(s.UnconsensusedEvents) != 2 || s.ConsensusHistory != nil {
		t.Fatalf("unconsensused events or history mismatch")
	}

	f.election.NewElection(f.graph, key("tx1"), nil)
	s = NewMetaElectionSnapshot(f.election, f.graph, f.peerList)
	if !reflect.DeepEqual(s.ConsensusHistory, []string{key("tx1").Hash.Hex()}) {
		t.Fatalf("history should hold tx1, got %v", s.ConsensusHistory)
	}
	if s.RoundHashes != nil || s.InterestingEvents != nil {
		t.Fatalf("round hashes and interesting events should be empty")
	}
}

func TestSnapshotSkipsUnknown(t *testing.T) {
	f := buildSnapshotFixture(t)

	// carol's event is pruned from the graph and carol is unknown to the
	// registry used for the export.
	f.graph.Remove(f.election.MetaEventIndices()[2])

	pl := peers.NewPeerList()
	for _, i := range []peers.PeerIndex{alice, bob} {
		p, _ := f.peerList.Get(i)
		pl.AddPeer(p)
	}

	s := NewMetaElectionSnapshot(f.election, f.graph, pl)
	if len(s.MetaEvents) != 2 {
		t.Fatalf("pruned events should be skipped, got %d meta-events", len(s.MetaEvents))
	}
	if len(s.Voters) != 2 || len(s.RoundHashes) != 2 {
		t.Fatalf("unknown peers should be skipped")
	}
}

func TestSnapshotMarshal(t *testing.T) {
	f := buildSnapshotFixture(t)
	f.election.NewElection(f.graph, key("tx1"), nil)
	s := NewMetaElectionSnapshot(f.election, f.graph, f.peerList)

	data, err := s.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	var decoded MetaElectionSnapshot
	if err := decoded.Unmarshal(data); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(*s, decoded) {
		t.Fatalf("decoded snapshot should be %#v, not %#v", *s, decoded)
	}

	// Identical states hash the same.
	other := buildSnapshotFixture(t)
	other.election.NewElection(other.graph, key("tx1"), nil)
	otherSnapshot := NewMetaElectionSnapshot(other.election, other.graph, other.peerList)

	h1, err := s.Hash()
	if err != nil {
		t.Fatal(err)
	}
	h2, err := otherSnapshot.Hash()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(h1, h2) {
		t.Fatalf("identical elections should have identical snapshot hashes")
	}
}
