package metavoting

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/mosaicnetworks/metavote/src/gossip"
)

// CheckInvariants verifies the internal consistency of the election and
// returns a description of the first violation found. It is meant for tests
// and diagnostic tools.
func (m *MetaElection) CheckInvariants(graph gossip.Graph) error {
	for peer, hashes := range m.roundHashes {
		if !m.voters.Contains(peer) {
			return fmt.Errorf("round hashes held for non-voter %s", peer)
		}
		if len(hashes) == 0 {
			return fmt.Errorf("empty round hash chain for %s", peer)
		}
		for r, h := range hashes {
			if h.Round != r {
				return fmt.Errorf("round hash %d of %s has round %d", r, peer, h.Round)
			}
			if r > 0 && !h.Equal(hashes[r-1].IncrementRound()) {
				return fmt.Errorf("round hash %d of %s does not follow round %d", r, peer, r-1)
			}
		}
	}

	for creator, indices := range m.interestingEvents {
		for i, index := range indices {
			if slices.Index(indices[i+1:], index) >= 0 {
				return fmt.Errorf("event %s listed twice as interesting for %s", index, creator)
			}
			// Pruned events may still be listed.
			metaEvent, ok := m.metaEvents[index]
			if ok && len(metaEvent.InterestingContent) == 0 {
				return fmt.Errorf("event %s listed as interesting for %s without interesting content", index, creator)
			}
		}
	}

	for i, key := range m.consensusHistory {
		if slices.Index(m.consensusHistory[i+1:], key) >= 0 {
			return fmt.Errorf("observation %s decided twice", key)
		}
	}

	var err error
	m.unconsensusedEvents.Ascend(func(index gossip.EventIndex) bool {
		event, ok := graph.Get(index)
		if !ok {
			return true
		}
		key := event.PayloadKey()
		if key == nil {
			err = fmt.Errorf("unconsensused event %s carries no payload", index)
			return false
		}
		if slices.Contains(m.consensusHistory, *key) {
			err = fmt.Errorf("unconsensused event %s carries decided observation %s", index, key)
			return false
		}
		return true
	})

	return err
}
