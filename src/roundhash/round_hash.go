// Package roundhash derives the per-voter, per-round hashes that seed coin
// rounds in meta-voting.
//
// A voter's chain starts at round 0 from the voter's identity and the hash of
// the latest decided observation, so every correct node that agrees on the
// consensus history computes the same chains. Round r+1 is derived from round
// r only.
package roundhash

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/mosaicnetworks/metavote/src/common"
	"github.com/mosaicnetworks/metavote/src/crypto"
	"github.com/mosaicnetworks/metavote/src/observation"
)

// RoundHash is one link of a voter's chain.
type RoundHash struct {
	PublicIDHash       []byte
	LatestDecisionHash observation.Hash
	Round              int
	Value              []byte
}

// New builds the round-0 hash of a voter identified by publicID.
func New(publicID []byte, latestDecisionHash observation.Hash) RoundHash {
	return newRoundHash(crypto.SHA256(publicID), latestDecisionHash, 0)
}

func newRoundHash(publicIDHash []byte, latest observation.Hash, round int) RoundHash {
	var r [8]byte
	binary.BigEndian.PutUint64(r[:], uint64(round))

	value := crypto.SHA256(crypto.SHA256(publicIDHash, latest[:]), r[:])

	return RoundHash{
		PublicIDHash:       publicIDHash,
		LatestDecisionHash: latest,
		Round:              round,
		Value:              value,
	}
}

// IncrementRound returns the hash of the next round.
func (h RoundHash) IncrementRound() RoundHash {
	return newRoundHash(h.PublicIDHash, h.LatestDecisionHash, h.Round+1)
}

// Equal ...
func (h RoundHash) Equal(o RoundHash) bool {
	return h.Round == o.Round &&
		h.LatestDecisionHash == o.LatestDecisionHash &&
		bytes.Equal(h.PublicIDHash, o.PublicIDHash) &&
		bytes.Equal(h.Value, o.Value)
}

// String ...
func (h RoundHash) String() string {
	return fmt.Sprintf("RoundHash{round: %d, value: %s}", h.Round, common.ShortHex(h.Value, 8))
}
