package gossip

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mosaicnetworks/metavote/src/common"
	"github.com/mosaicnetworks/metavote/src/crypto"
	"github.com/mosaicnetworks/metavote/src/observation"
	"github.com/mosaicnetworks/metavote/src/peers"
)

// EventIndex references an event by its topological index, a counter assigned
// when the event is inserted in the local graph. It is only meaningful inside
// one node.
type EventIndex struct {
	TopologicalIndex int
}

// NewEventIndex ...
func NewEventIndex(topologicalIndex int) EventIndex {
	return EventIndex{TopologicalIndex: topologicalIndex}
}

// Less orders events topologically.
func (e EventIndex) Less(o EventIndex) bool {
	return e.TopologicalIndex < o.TopologicalIndex
}

// String ...
func (e EventIndex) String() string {
	return fmt.Sprintf("e%d", e.TopologicalIndex)
}

// EventBody is the hashed part of an Event.
type EventBody struct {
	Creator    peers.PeerIndex //creator's index in the local registry
	Index      int             //index in the sequence of events created by Creator
	SelfParent string          //hex of the self-parent, empty for the first event
	Payload    []byte          //observation payload, nil if none
}

// Marshal returns the JSON encoding of an EventBody
func (e *EventBody) Marshal() ([]byte, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b) //will write to b
	if err := enc.Encode(e); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Hash returns the SHA256 hash of the JSON encoded EventBody.
func (e *EventBody) Hash() ([]byte, error) {
	hashBytes, err := e.Marshal()
	if err != nil {
		return nil, err
	}
	return crypto.SHA256(hashBytes), nil
}

// Event is a node of the gossip graph, as seen by the meta-voting bookkeeping.
type Event struct {
	Body EventBody

	index      EventIndex
	inserted   bool
	payloadKey *observation.Key

	hash []byte
	hex  string
}

// NewEvent creates an event that is not yet part of a graph.
func NewEvent(creator peers.PeerIndex, index int, selfParent string, payload []byte) *Event {
	return &Event{
		Body: EventBody{
			Creator:    creator,
			Index:      index,
			SelfParent: selfParent,
			Payload:    payload,
		},
	}
}

// EventIndex returns the event's topological index in the local graph.
func (e *Event) EventIndex() EventIndex {
	return e.index
}

// Creator ...
func (e *Event) Creator() peers.PeerIndex {
	return e.Body.Creator
}

// PayloadKey returns the key of the observation carried by the event, or nil.
func (e *Event) PayloadKey() *observation.Key {
	return e.payloadKey
}

// Hash returns the SHA256 hash of the JSON-encoded body
func (e *Event) Hash() ([]byte, error) {
	if len(e.hash) == 0 {
		hash, err := e.Body.Hash()
		if err != nil {
			return nil, err
		}
		e.hash = hash
	}

	return e.hash, nil
}

// Hex returns a hex string representation of the Event's hash
func (e *Event) Hex() string {
	if e.hex == "" {
		hash, _ := e.Hash()
		e.hex = common.EncodeToString(hash)
	}

	return e.hex
}
