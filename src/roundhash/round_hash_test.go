package roundhash

import (
	"bytes"
	"testing"

	"github.com/mosaicnetworks/metavote/src/observation"
)

func TestRoundHashChain(t *testing.T) {
	latest := observation.HashOf([]byte("decided"))

	h0 := New([]byte("alice"), latest)
	if h0.Round != 0 {
		t.Fatalf("New should build round 0, not %d", h0.Round)
	}

	chain := []RoundHash{h0}
	for i := 1; i < 5; i++ {
		chain = append(chain, chain[i-1].IncrementRound())
	}

	for i, h := range chain {
		if h.Round != i {
			t.Fatalf("chain[%d] should have round %d, not %d", i, i, h.Round)
		}
		if i > 0 && bytes.Equal(h.Value, chain[i-1].Value) {
			t.Fatalf("chain[%d] should differ from its predecessor", i)
		}
	}

	// Deterministic: replaying gives the same chain.
	replay := New([]byte("alice"), latest)
	for i := 0; i < 4; i++ {
		replay = replay.IncrementRound()
	}
	if !replay.Equal(chain[4]) {
		t.Fatalf("replayed chain should match: %v != %v", replay, chain[4])
	}
}

func TestRoundHashSeeds(t *testing.T) {
	latest := observation.HashOf([]byte("decided"))

	a := New([]byte("alice"), latest)
	b := New([]byte("bob"), latest)
	z := New([]byte("alice"), observation.ZeroHash)

	if a.Equal(b) || bytes.Equal(a.Value, b.Value) {
		t.Fatalf("different identities should give different hashes")
	}
	if a.Equal(z) || bytes.Equal(a.Value, z.Value) {
		t.Fatalf("different decisions should give different hashes")
	}
}
