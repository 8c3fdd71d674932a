package metavoting

import (
	"golang.org/x/exp/slices"

	"github.com/mosaicnetworks/metavote/src/gossip"
	"github.com/mosaicnetworks/metavote/src/observation"
	"github.com/mosaicnetworks/metavote/src/peers"
)

// MetaEvent is the meta-voting result computed for one event.
type MetaEvent struct {
	// InterestingContent lists the observations this event newly considers
	// decidable, in the order it became aware of them.
	InterestingContent []observation.Key
	// MetaVotes holds, for every voter, the event's meta-votes in round/step
	// order.
	MetaVotes map[peers.PeerIndex][]MetaVote
}

// NewMetaEvent ...
func NewMetaEvent() *MetaEvent {
	return &MetaEvent{
		MetaVotes: make(map[peers.PeerIndex][]MetaVote),
	}
}

// Clone returns a deep copy.
func (m *MetaEvent) Clone() *MetaEvent {
	res := &MetaEvent{
		InterestingContent: slices.Clone(m.InterestingContent),
		MetaVotes:          make(map[peers.PeerIndex][]MetaVote, len(m.MetaVotes)),
	}
	for p, votes := range m.MetaVotes {
		res.MetaVotes[p] = slices.Clone(votes)
	}
	return res
}

// MetaEventBuilder accumulates the meta-voting result of one event before it
// is handed over to a MetaElection.
type MetaEventBuilder struct {
	event     *gossip.Event
	metaEvent *MetaEvent
}

// NewMetaEventBuilder starts an empty meta-event for event.
func NewMetaEventBuilder(event *gossip.Event) *MetaEventBuilder {
	return &MetaEventBuilder{
		event:     event,
		metaEvent: NewMetaEvent(),
	}
}

// Event returns the event the meta-event is built for.
func (b *MetaEventBuilder) Event() *gossip.Event {
	return b.event
}

// AddInterestingContent appends keys that are not already present.
func (b *MetaEventBuilder) AddInterestingContent(keys ...observation.Key) *MetaEventBuilder {
	for _, k := range keys {
		if !slices.Contains(b.metaEvent.InterestingContent, k) {
			b.metaEvent.InterestingContent = append(b.metaEvent.InterestingContent, k)
		}
	}
	return b
}

// AddMetaVotes appends meta-votes on behalf of voter.
func (b *MetaEventBuilder) AddMetaVotes(voter peers.PeerIndex, votes ...MetaVote) *MetaEventBuilder {
	b.metaEvent.MetaVotes[voter] = append(b.metaEvent.MetaVotes[voter], votes...)
	return b
}

// Finish returns the meta-event. The builder must not be used afterwards.
func (b *MetaEventBuilder) Finish() *MetaEvent {
	m := b.metaEvent
	b.metaEvent = nil
	return m
}
