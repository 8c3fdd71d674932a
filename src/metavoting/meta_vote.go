package metavoting

import (
	"fmt"

	"github.com/mosaicnetworks/metavote/src/common"
)

// Step is the position of a meta-vote inside its round. Rounds cycle through
// forced-true, forced-false and genuine coin-flip steps.
type Step uint8

const (
	// ForcedTrue ...
	ForcedTrue Step = iota
	// ForcedFalse ...
	ForcedFalse
	// GenuineFlip ...
	GenuineFlip
)

var steps = []string{"ForcedTrue", "ForcedFalse", "GenuineFlip"}

// String ...
func (s Step) String() string {
	if int(s) < len(steps) {
		return steps[s]
	}
	return "Unknown"
}

// BoolSet is a set of booleans: empty, one value, or both.
type BoolSet uint8

const (
	boolFalse BoolSet = 1 << iota
	boolTrue
)

const (
	// EmptyBoolSet contains no value.
	EmptyBoolSet BoolSet = 0
	// BothBoolSet contains true and false.
	BothBoolSet = boolFalse | boolTrue
)

// SingleBoolSet returns the set containing only b.
func SingleBoolSet(b bool) BoolSet {
	if b {
		return boolTrue
	}
	return boolFalse
}

// Insert adds b and reports whether the set changed.
func (s *BoolSet) Insert(b bool) bool {
	before := *s
	*s |= SingleBoolSet(b)
	return before != *s
}

// Contains ...
func (s BoolSet) Contains(b bool) bool {
	return s&SingleBoolSet(b) != 0
}

// Len ...
func (s BoolSet) Len() int {
	n := 0
	if s.Contains(false) {
		n++
	}
	if s.Contains(true) {
		n++
	}
	return n
}

// String renders the set as "-", "t", "f" or "b".
func (s BoolSet) String() string {
	switch s {
	case EmptyBoolSet:
		return "-"
	case boolTrue:
		return "t"
	case boolFalse:
		return "f"
	}
	return "b"
}

// MetaVote is one voter's state at a given round and step, as estimated by
// one event.
type MetaVote struct {
	Round     int
	Step      Step
	Estimates BoolSet
	BinValues BoolSet
	AuxValue  common.Trilean
	Decision  common.Trilean
}

// String ...
func (m MetaVote) String() string {
	return fmt.Sprintf("%d/%d est:%s bin:%s aux:%s dec:%s",
		m.Round, m.Step, m.Estimates, m.BinValues, trileanShort(m.AuxValue), trileanShort(m.Decision))
}

func trileanShort(t common.Trilean) string {
	switch t {
	case common.True:
		return "t"
	case common.False:
		return "f"
	}
	return "-"
}
