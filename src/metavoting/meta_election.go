package metavoting

import (
	"sort"

	"github.com/google/btree"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/mosaicnetworks/metavote/src/gossip"
	"github.com/mosaicnetworks/metavote/src/observation"
	"github.com/mosaicnetworks/metavote/src/peers"
	"github.com/mosaicnetworks/metavote/src/roundhash"
)

const unconsensusedTreeDegree = 8

// CreatorEvents lists the events of one creator that have interesting content,
// in ingestion order.
type CreatorEvents struct {
	Creator peers.PeerIndex
	Events  []gossip.EventIndex
}

// MetaElection is the meta-voting state of the current election. See the
// package documentation.
type MetaElection struct {
	metaEvents map[gossip.EventIndex]*MetaEvent
	// The round hashes of every voter. The hash of round x is held at index x.
	roundHashes map[peers.PeerIndex][]roundhash.RoundHash
	// Voters at the time the current election started.
	voters peers.PeerIndexSet
	// Events with non-empty interesting content, by creator.
	interestingEvents map[peers.PeerIndex][]gossip.EventIndex
	// Payload-carrying events whose payload is not decided yet, in topological
	// order.
	unconsensusedEvents *btree.BTreeG[gossip.EventIndex]
	// Decided observations, oldest first.
	consensusHistory []observation.Key

	logger *logrus.Entry
}

// NewMetaElection creates the election state of a node whose initial voters
// are given.
func NewMetaElection(voters peers.PeerIndexSet, logger *logrus.Entry) *MetaElection {
	if logger == nil {
		log := logrus.New()
		log.Level = logrus.DebugLevel
		logger = logrus.NewEntry(log)
	}

	return &MetaElection{
		metaEvents:          make(map[gossip.EventIndex]*MetaEvent),
		roundHashes:         make(map[peers.PeerIndex][]roundhash.RoundHash),
		voters:              voters.Clone(),
		interestingEvents:   make(map[peers.PeerIndex][]gossip.EventIndex),
		unconsensusedEvents: btree.NewG(unconsensusedTreeDegree, gossip.EventIndex.Less),
		consensusHistory:    []observation.Key{},
		logger:              logger,
	}
}

/*******************************************************************************
Ingestion
*******************************************************************************/

// AddMetaEvent stores the meta-event accumulated by builder.
func (m *MetaElection) AddMetaEvent(builder *MetaEventBuilder) {
	event := builder.Event()
	m.AddMetaEventFor(event.EventIndex(), event.Creator(), builder.Finish())
}

// AddMetaEventFor stores metaEvent as the meta-event of the event at index,
// created by creator. The election takes ownership of metaEvent.
//
// Round-hash chains of current voters are extended up to the highest round
// voted on. Votes on behalf of peers that have no chain are ignored: they
// belong to voters that left.
func (m *MetaElection) AddMetaEventFor(index gossip.EventIndex, creator peers.PeerIndex, metaEvent *MetaEvent) {
	for peer, votes := range metaEvent.MetaVotes {
		hashes, ok := m.roundHashes[peer]
		if !ok || len(hashes) == 0 {
			continue
		}

		for _, vote := range votes {
			for len(hashes) < vote.Round+1 {
				hashes = append(hashes, hashes[len(hashes)-1].IncrementRound())
			}
		}

		m.roundHashes[peer] = hashes
	}

	indices := m.interestingEvents[creator]
	if len(metaEvent.InterestingContent) > 0 {
		if !slices.Contains(indices, index) {
			m.interestingEvents[creator] = append(indices, index)
		}
	} else if i := slices.Index(indices, index); i >= 0 {
		// Replacing an interesting meta-event with an uninteresting one.
		m.interestingEvents[creator] = slices.Delete(indices, i, i+1)
	}

	m.metaEvents[index] = metaEvent
}

// RemoveMetaEvent deletes and returns the meta-event of an event, typically
// because the event was pruned from the graph. Round hashes and interesting
// events are left untouched.
func (m *MetaElection) RemoveMetaEvent(index gossip.EventIndex) (*MetaEvent, bool) {
	metaEvent, ok := m.metaEvents[index]
	if ok {
		delete(m.metaEvents, index)
	}
	return metaEvent, ok
}

// AddUnconsensusedEvent registers a payload-carrying event as pending
// decision. Callers must not register events whose payload IsDecided.
func (m *MetaElection) AddUnconsensusedEvent(index gossip.EventIndex) {
	m.unconsensusedEvents.ReplaceOrInsert(index)
}

/*******************************************************************************
Queries
*******************************************************************************/

// MetaEvent returns the meta-event of an event.
func (m *MetaElection) MetaEvent(index gossip.EventIndex) (*MetaEvent, bool) {
	metaEvent, ok := m.metaEvents[index]
	return metaEvent, ok
}

// PopulatedMetaVotes returns the meta-votes of an event if it has a
// meta-event with at least one voter's votes.
func (m *MetaElection) PopulatedMetaVotes(index gossip.EventIndex) (map[peers.PeerIndex][]MetaVote, bool) {
	metaEvent, ok := m.metaEvents[index]
	if !ok || len(metaEvent.MetaVotes) == 0 {
		return nil, false
	}
	return metaEvent.MetaVotes, true
}

// MetaEvents exposes the retained meta-events for diagnostics. The map must
// not be modified.
func (m *MetaElection) MetaEvents() map[gossip.EventIndex]*MetaEvent {
	return m.metaEvents
}

// MetaEventCount returns the number of retained meta-events.
func (m *MetaElection) MetaEventCount() int {
	return len(m.metaEvents)
}

// MetaEventIndices returns the indices of retained meta-events in topological
// order.
func (m *MetaElection) MetaEventIndices() []gossip.EventIndex {
	res := maps.Keys(m.metaEvents)
	sort.Slice(res, func(i, j int) bool { return res[i].Less(res[j]) })
	return res
}

// RoundHashes returns the round-hash chain of a voter. The returned slice must
// not be modified.
func (m *MetaElection) RoundHashes(peer peers.PeerIndex) ([]roundhash.RoundHash, bool) {
	hashes, ok := m.roundHashes[peer]
	return hashes[:len(hashes):len(hashes)], ok
}

// Voters returns a copy of the voters of the current election.
func (m *MetaElection) Voters() peers.PeerIndexSet {
	return m.voters.Clone()
}

// ConsensusHistory returns the decided observations, oldest first. The
// returned slice must not be modified.
func (m *MetaElection) ConsensusHistory() []observation.Key {
	return m.consensusHistory[:len(m.consensusHistory):len(m.consensusHistory)]
}

// InterestingEvents returns, for every creator with at least one, the events
// with interesting content in ingestion order. Creators are sorted.
func (m *MetaElection) InterestingEvents() []CreatorEvents {
	creators := maps.Keys(m.interestingEvents)
	sort.Slice(creators, func(i, j int) bool { return creators[i] < creators[j] })

	res := make([]CreatorEvents, 0, len(creators))
	for _, c := range creators {
		res = append(res, CreatorEvents{
			Creator: c,
			Events:  slices.Clone(m.interestingEvents[c]),
		})
	}
	return res
}

// FirstInterestingContentBy returns the first observation that creator's
// events found interesting in this election. It is the creator's candidate
// for the decision.
func (m *MetaElection) FirstInterestingContentBy(creator peers.PeerIndex) (observation.Key, bool) {
	indices := m.interestingEvents[creator]
	if len(indices) == 0 {
		return observation.Key{}, false
	}

	metaEvent, ok := m.metaEvents[indices[0]]
	if !ok || len(metaEvent.InterestingContent) == 0 {
		return observation.Key{}, false
	}

	return metaEvent.InterestingContent[0], true
}

// IsAlreadyInterestingContent reports whether one of creator's events already
// found payloadKey interesting in this election.
func (m *MetaElection) IsAlreadyInterestingContent(creator peers.PeerIndex, payloadKey observation.Key) bool {
	for _, index := range m.interestingEvents[creator] {
		metaEvent, ok := m.metaEvents[index]
		if ok && slices.Contains(metaEvent.InterestingContent, payloadKey) {
			return true
		}
	}
	return false
}

// IsDecided reports whether key is already in the consensus history. Events
// carrying a decided observation are late votes and never pending.
func (m *MetaElection) IsDecided(key observation.Key) bool {
	return slices.Contains(m.consensusHistory, key)
}

// StartIndex returns the topological index of the earliest payload-carrying
// event that is not decided yet. Events before it can be pruned safely.
func (m *MetaElection) StartIndex() (int, bool) {
	first, ok := m.unconsensusedEvents.Min()
	if !ok {
		return 0, false
	}
	return first.TopologicalIndex, true
}

// UnconsensusedEvents returns the pending payload-carrying events in
// topological order.
func (m *MetaElection) UnconsensusedEvents() []gossip.EventIndex {
	res := make([]gossip.EventIndex, 0, m.unconsensusedEvents.Len())
	m.unconsensusedEvents.Ascend(func(index gossip.EventIndex) bool {
		res = append(res, index)
		return true
	})
	return res
}

/*******************************************************************************
Election transition
*******************************************************************************/

// NewElection ends the current election with the decision decidedKey and
// starts the next one. change is the membership change produced by the
// decision, or nil.
func (m *MetaElection) NewElection(graph gossip.Graph, decidedKey observation.Key, change *peers.PeerListChange) {
	if m.IsDecided(decidedKey) {
		m.logger.WithField("decided", decidedKey).Warn("Observation decided twice")
	}

	retired := m.updateUnconsensusedEvents(graph, decidedKey)

	m.roundHashes = make(map[peers.PeerIndex][]roundhash.RoundHash)
	m.interestingEvents = make(map[peers.PeerIndex][]gossip.EventIndex)

	if change != nil {
		switch change.Type {
		case peers.PeerAdd:
			m.voters.Insert(change.Index)
		case peers.PeerRemove:
			m.voters.Remove(change.Index)
		}
	}

	// A different voter set invalidates every meta-vote computed so far.
	startIndex, reuse := 0, false
	if change == nil {
		startIndex, reuse = m.StartIndex()
	}

	if reuse {
		maps.DeleteFunc(m.metaEvents, func(index gossip.EventIndex, _ *MetaEvent) bool {
			return index.TopologicalIndex < startIndex
		})
		m.updateInterestingContent(decidedKey)
	} else {
		m.metaEvents = make(map[gossip.EventIndex]*MetaEvent)
	}

	m.consensusHistory = append(m.consensusHistory, decidedKey)

	fields := logrus.Fields{
		"decided":              decidedKey,
		"retired":              retired,
		"reuse":                reuse,
		"retained_meta_events": len(m.metaEvents),
		"unconsensused":        m.unconsensusedEvents.Len(),
		"history_len":          len(m.consensusHistory),
	}
	if change != nil {
		fields["peer_list_change"] = change.String()
		fields["voters"] = m.voters.Len()
	}
	if reuse {
		fields["start_index"] = startIndex
	}
	m.logger.WithFields(fields).Debug("NewElection")
}

// InitialiseRoundHashes seeds the round-0 hash of every given voter from the
// voter's identity and the latest decision.
func (m *MetaElection) InitialiseRoundHashes(voters []peers.IndexedPeer) {
	hash := observation.ZeroHash
	if n := len(m.consensusHistory); n > 0 {
		hash = m.consensusHistory[n-1].Hash
	}

	m.roundHashes = make(map[peers.PeerIndex][]roundhash.RoundHash, len(voters))
	for _, v := range voters {
		m.roundHashes[v.Index] = []roundhash.RoundHash{roundhash.New(v.Peer.PubKeyBytes(), hash)}
	}
}

// updateUnconsensusedEvents removes the events carrying decidedKey. Events no
// longer in the graph are kept; they were pruned and cannot be decided again.
func (m *MetaElection) updateUnconsensusedEvents(graph gossip.Graph, decidedKey observation.Key) int {
	remove := []gossip.EventIndex{}
	m.unconsensusedEvents.Ascend(func(index gossip.EventIndex) bool {
		event, ok := graph.Get(index)
		if ok {
			if key := event.PayloadKey(); key != nil && *key == decidedKey {
				remove = append(remove, index)
			}
		}
		return true
	})

	for _, index := range remove {
		m.unconsensusedEvents.Delete(index)
	}

	return len(remove)
}

func (m *MetaElection) updateInterestingContent(decidedKey observation.Key) {
	for _, metaEvent := range m.metaEvents {
		if !slices.Contains(metaEvent.InterestingContent, decidedKey) {
			continue
		}
		// Every copy goes; raw meta-events may hold duplicates.
		kept := make([]observation.Key, 0, len(metaEvent.InterestingContent)-1)
		for _, k := range metaEvent.InterestingContent {
			if k != decidedKey {
				kept = append(kept, k)
			}
		}
		metaEvent.InterestingContent = kept
	}
}
