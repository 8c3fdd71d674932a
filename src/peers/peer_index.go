package peers

import (
	"fmt"
	"math"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// PeerIndex is a compact, node-local reference to a registered peer.
type PeerIndex uint32

// NoPeer is the sentinel used where no peer applies, for example as the
// creator of an observation key in supermajority mode.
const NoPeer PeerIndex = math.MaxUint32

// String ...
func (i PeerIndex) String() string {
	if i == NoPeer {
		return "none"
	}
	return fmt.Sprintf("#%d", uint32(i))
}

// PeerIndexSet is a set of peer indices. Iteration is in ascending index
// order.
type PeerIndexSet struct {
	bits *bitset.BitSet
}

// NewPeerIndexSet creates a set containing the given indices.
func NewPeerIndexSet(indices ...PeerIndex) PeerIndexSet {
	s := PeerIndexSet{bits: bitset.New(uint(len(indices)))}
	for _, i := range indices {
		s.Insert(i)
	}
	return s
}

func (s *PeerIndexSet) init() {
	if s.bits == nil {
		s.bits = bitset.New(0)
	}
}

// Insert adds i to the set and reports whether it was absent.
func (s *PeerIndexSet) Insert(i PeerIndex) bool {
	s.init()
	if s.bits.Test(uint(i)) {
		return false
	}
	s.bits.Set(uint(i))
	return true
}

// Remove deletes i from the set and reports whether it was present.
func (s *PeerIndexSet) Remove(i PeerIndex) bool {
	if !s.Contains(i) {
		return false
	}
	s.bits.Clear(uint(i))
	return true
}

// Contains ...
func (s PeerIndexSet) Contains(i PeerIndex) bool {
	return s.bits != nil && s.bits.Test(uint(i))
}

// Len returns the number of indices in the set.
func (s PeerIndexSet) Len() int {
	if s.bits == nil {
		return 0
	}
	return int(s.bits.Count())
}

// Indices returns the members in ascending order.
func (s PeerIndexSet) Indices() []PeerIndex {
	res := make([]PeerIndex, 0, s.Len())
	if s.bits == nil {
		return res
	}
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		res = append(res, PeerIndex(i))
	}
	return res
}

// Clone returns an independent copy.
func (s PeerIndexSet) Clone() PeerIndexSet {
	if s.bits == nil {
		return PeerIndexSet{bits: bitset.New(0)}
	}
	return PeerIndexSet{bits: s.bits.Clone()}
}

// Equal reports whether both sets have the same members.
func (s PeerIndexSet) Equal(o PeerIndexSet) bool {
	if s.Len() != o.Len() {
		return false
	}
	if s.Len() == 0 {
		return true
	}
	return s.bits.Intersection(o.bits).Count() == s.bits.Count()
}

// String ...
func (s PeerIndexSet) String() string {
	parts := []string{}
	for _, i := range s.Indices() {
		parts = append(parts, i.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
