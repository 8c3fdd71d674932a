package observation

import (
	"sort"
	"testing"

	"github.com/mosaicnetworks/metavote/src/peers"
)

func TestNewKey(t *testing.T) {
	a1 := NewKey([]byte("tx"), 1, Supermajority)
	a2 := NewKey([]byte("tx"), 2, Supermajority)
	if a1 != a2 {
		t.Fatalf("supermajority keys should ignore the creator")
	}
	if a1.Creator != peers.NoPeer {
		t.Fatalf("supermajority key creator should be NoPeer")
	}

	s1 := NewKey([]byte("tx"), 1, Single)
	s2 := NewKey([]byte("tx"), 2, Single)
	if s1 == s2 {
		t.Fatalf("single keys should include the creator")
	}
	if s1.Hash != a1.Hash {
		t.Fatalf("mode should not change the hash")
	}

	if HashOf([]byte("tx")) == ZeroHash {
		t.Fatalf("payload hash should not be zero")
	}
}

func TestKeyOrdering(t *testing.T) {
	keys := []Key{
		NewKey([]byte("c"), 2, Single),
		NewKey([]byte("a"), 0, Single),
		NewKey([]byte("c"), 1, Single),
		NewKey([]byte("b"), 0, Single),
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	for i := 1; i < len(keys); i++ {
		if keys[i-1].Compare(keys[i]) >= 0 {
			t.Fatalf("keys not strictly ordered at %d: %v", i, keys)
		}
	}

	k := NewKey([]byte("a"), 0, Single)
	if k.Compare(k) != 0 {
		t.Fatalf("a key should compare equal to itself")
	}
}

func TestParseConsensusMode(t *testing.T) {
	for _, m := range []ConsensusMode{Supermajority, Single} {
		got, err := ParseConsensusMode(m.String())
		if err != nil || got != m {
			t.Fatalf("ParseConsensusMode(%s) => %v, %v", m, got, err)
		}
	}
	if _, err := ParseConsensusMode("quorum"); err == nil {
		t.Fatalf("unknown mode should fail")
	}
}
