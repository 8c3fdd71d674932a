package gossip

import (
	"fmt"

	"github.com/mosaicnetworks/metavote/src/observation"
	"github.com/mosaicnetworks/metavote/src/peers"
)

// Graph is the read access to the gossip graph.
type Graph interface {
	// Get returns the event at index, or false if it was never inserted or has
	// been pruned.
	Get(index EventIndex) (*Event, bool)
}

// InmemGraph is an in-memory Graph. Events are assigned topological indices in
// insertion order.
type InmemGraph struct {
	mode             observation.ConsensusMode
	events           map[EventIndex]*Event
	lastByCreator    map[peers.PeerIndex]*Event
	topologicalIndex int
}

// NewInmemGraph creates an empty graph. The consensus mode determines how
// payload keys are derived.
func NewInmemGraph(mode observation.ConsensusMode) *InmemGraph {
	return &InmemGraph{
		mode:          mode,
		events:        make(map[EventIndex]*Event),
		lastByCreator: make(map[peers.PeerIndex]*Event),
	}
}

// Insert creates the next event of creator, carrying payload if it is not nil,
// and returns it.
func (g *InmemGraph) Insert(creator peers.PeerIndex, payload []byte) *Event {
	index := 0
	selfParent := ""
	if last, ok := g.lastByCreator[creator]; ok {
		index = last.Body.Index + 1
		selfParent = last.Hex()
	}

	event := NewEvent(creator, index, selfParent, payload)
	if err := g.InsertEvent(event); err != nil {
		// NewEvent never produces an event that is already indexed.
		panic(err)
	}
	return event
}

// InsertEvent adds an event built elsewhere. It fails if the event was already
// inserted in a graph.
func (g *InmemGraph) InsertEvent(event *Event) error {
	if event.inserted {
		return fmt.Errorf("event %s already inserted", event.Hex())
	}

	event.index = NewEventIndex(g.topologicalIndex)
	g.topologicalIndex++

	if event.Body.Payload != nil {
		key := observation.NewKey(event.Body.Payload, event.Body.Creator, g.mode)
		event.payloadKey = &key
	}

	event.inserted = true
	g.events[event.index] = event
	g.lastByCreator[event.Body.Creator] = event

	return nil
}

// Get implements Graph.
func (g *InmemGraph) Get(index EventIndex) (*Event, bool) {
	e, ok := g.events[index]
	return e, ok
}

// Remove prunes an event from the graph.
func (g *InmemGraph) Remove(index EventIndex) (*Event, bool) {
	e, ok := g.events[index]
	if !ok {
		return nil, false
	}
	delete(g.events, index)
	return e, true
}

// Len returns the number of events currently in the graph.
func (g *InmemGraph) Len() int {
	return len(g.events)
}
