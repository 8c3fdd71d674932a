// Package observation identifies the payloads that peers try to agree on.
package observation

import (
	"bytes"
	"fmt"

	"github.com/mosaicnetworks/metavote/src/common"
	"github.com/mosaicnetworks/metavote/src/crypto"
	"github.com/mosaicnetworks/metavote/src/peers"
)

// HashSize is the length of an observation hash in bytes.
const HashSize = 32

// Hash is the SHA256 digest of an observation payload.
type Hash [HashSize]byte

// ZeroHash seeds round hashes before the first decision.
var ZeroHash = Hash{}

// HashOf hashes a payload.
func HashOf(payload []byte) Hash {
	var h Hash
	copy(h[:], crypto.SHA256(payload))
	return h
}

// Bytes ...
func (h Hash) Bytes() []byte {
	return h[:]
}

// Hex returns the 0X-prefixed upper-case hex form.
func (h Hash) Hex() string {
	return common.EncodeToString(h[:])
}

// String returns a shortened hex form for logs.
func (h Hash) String() string {
	return common.ShortHex(h[:], 8)
}

// ConsensusMode determines whether identical payloads proposed by different
// peers are the same observation.
type ConsensusMode uint8

const (
	// Supermajority identifies an observation by its payload alone. It is
	// decided once a supermajority of voters has proposed it.
	Supermajority ConsensusMode = iota
	// Single identifies an observation by payload and creator, so every
	// proposal is decided separately.
	Single
)

// String ...
func (m ConsensusMode) String() string {
	switch m {
	case Supermajority:
		return "supermajority"
	case Single:
		return "single"
	}
	return "unknown"
}

// ParseConsensusMode is the inverse of ConsensusMode.String.
func ParseConsensusMode(s string) (ConsensusMode, error) {
	switch s {
	case "", "supermajority":
		return Supermajority, nil
	case "single":
		return Single, nil
	}
	return Supermajority, fmt.Errorf("unknown consensus mode %q", s)
}

// Key identifies a candidate decided payload. Keys are comparable and can be
// used directly as map keys.
type Key struct {
	Hash    Hash
	Creator peers.PeerIndex
}

// NewKey builds the key of a payload proposed by creator.
func NewKey(payload []byte, creator peers.PeerIndex, mode ConsensusMode) Key {
	return KeyFromHash(HashOf(payload), creator, mode)
}

// KeyFromHash builds a key from an already computed payload hash.
func KeyFromHash(hash Hash, creator peers.PeerIndex, mode ConsensusMode) Key {
	if mode == Supermajority {
		creator = peers.NoPeer
	}
	return Key{Hash: hash, Creator: creator}
}

// Compare orders keys by hash bytes, then by creator. It returns -1, 0 or 1.
func (k Key) Compare(o Key) int {
	if c := bytes.Compare(k.Hash[:], o.Hash[:]); c != 0 {
		return c
	}
	switch {
	case k.Creator < o.Creator:
		return -1
	case k.Creator > o.Creator:
		return 1
	}
	return 0
}

// Less ...
func (k Key) Less(o Key) bool {
	return k.Compare(o) < 0
}

// String ...
func (k Key) String() string {
	if k.Creator == peers.NoPeer {
		return k.Hash.String()
	}
	return fmt.Sprintf("%s/%s", k.Hash, k.Creator)
}
