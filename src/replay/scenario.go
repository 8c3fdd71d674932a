package replay

import (
	"bytes"
	"fmt"
	"io/ioutil"

	"github.com/ugorji/go/codec"

	"github.com/mosaicnetworks/metavote/src/crypto/keys"
	"github.com/mosaicnetworks/metavote/src/peers"
)

// StepKind names the action of a Step.
type StepKind string

const (
	// EventStep inserts an event in the graph.
	EventStep StepKind = "event"
	// MetaStep hands the meta-event of an event over to the election.
	MetaStep StepKind = "meta"
	// DecideStep ends the current election.
	DecideStep StepKind = "decide"
	// PruneStep removes an event from the graph and its meta-event from the
	// election.
	PruneStep StepKind = "prune"
	// InitRoundHashesStep seeds the round hashes of the current voters.
	InitRoundHashesStep StepKind = "init_round_hashes"
)

// ObservationRef designates an observation by payload. Creator is only
// meaningful in single mode.
type ObservationRef struct {
	Payload string
	Creator string
}

// Step is one action of a Scenario. Which fields are used depends on Kind.
type Step struct {
	Kind StepKind

	// Label names an event so that later steps can refer to it (event, meta,
	// prune).
	Label string

	// Creator is the moniker of the event's creator (event) or of the
	// decided observation's proposer (decide, single mode).
	Creator string

	// Payload is the observation carried by the event (event) or the decided
	// observation (decide). Empty means none.
	Payload string

	// Interesting lists the interesting content of a meta-event (meta).
	Interesting []ObservationRef

	// Votes lists, by voter moniker, the rounds of the meta-votes of a
	// meta-event (meta).
	Votes map[string][]int

	// Add and Remove are the monikers of the peer that the decision makes a
	// voter or removes from the voters (decide). At most one may be set.
	Add    string
	Remove string
}

// Scenario is a scripted replay.
type Scenario struct {
	// Mode is "supermajority" (default) or "single".
	Mode string

	// Peers are registered in order.
	Peers []*peers.Peer

	// Voters lists the monikers of the initial voters. Empty means every
	// peer.
	Voters []string

	Steps []Step
}

// Unmarshal decodes a JSON scenario.
func (s *Scenario) Unmarshal(data []byte) error {
	b := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	dec := codec.NewDecoder(b, jh)

	return dec.Decode(s)
}

// Marshal returns the canonical JSON encoding of the scenario.
func (s *Scenario) Marshal() ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(s); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// LoadScenario reads a JSON scenario from a file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	scenario := new(Scenario)
	if err := scenario.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("decoding scenario %s: %v", path, err)
	}

	return scenario, nil
}

// FillPubKeys gives a deterministic public key to every peer that has none,
// derived from its moniker.
func FillPubKeys(ps []*peers.Peer) error {
	for _, p := range ps {
		if p.PubKeyHex != "" {
			continue
		}
		if p.Moniker == "" {
			return fmt.Errorf("peer without public key nor moniker")
		}
		key, err := keys.DeterministicKey([]byte(p.Moniker))
		if err != nil {
			return err
		}
		p.PubKeyHex = keys.PublicKeyHex(&key.PublicKey)
	}
	return nil
}
