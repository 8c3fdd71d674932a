package metavoting

import (
	"bytes"
	"fmt"

	"github.com/ugorji/go/codec"

	"github.com/mosaicnetworks/metavote/src/common"
	"github.com/mosaicnetworks/metavote/src/crypto"
	"github.com/mosaicnetworks/metavote/src/gossip"
	"github.com/mosaicnetworks/metavote/src/observation"
	"github.com/mosaicnetworks/metavote/src/peers"
)

// MetaEventSnapshot is the exported form of a MetaEvent. Meta-votes are keyed
// by voter public key.
type MetaEventSnapshot struct {
	InterestingContent []string
	MetaVotes          map[string][]string
}

// MetaElectionSnapshot is an export of a MetaElection where events are
// identified by hash and peers by public key instead of local indices. It is
// what gets dumped for offline comparison.
type MetaElectionSnapshot struct {
	MetaEvents          map[string]MetaEventSnapshot
	RoundHashes         map[string][]string
	Voters              []string
	InterestingEvents   map[string][]string
	ConsensusHistory    []string
	UnconsensusedEvents []string
}

// NewMetaElectionSnapshot exports the state of election. Events missing from
// graph and peers missing from peerList are left out.
func NewMetaElectionSnapshot(election *MetaElection, graph gossip.Graph, peerList *peers.PeerList) *MetaElectionSnapshot {
	s := &MetaElectionSnapshot{}

	peerID := func(i peers.PeerIndex) (string, bool) {
		p, ok := peerList.Get(i)
		if !ok {
			return "", false
		}
		return p.PubKeyString(), true
	}

	keyID := func(k observation.Key) string {
		if k.Creator == peers.NoPeer {
			return k.Hash.Hex()
		}
		if id, ok := peerID(k.Creator); ok {
			return fmt.Sprintf("%s/%s", k.Hash.Hex(), id)
		}
		return fmt.Sprintf("%s/%s", k.Hash.Hex(), k.Creator)
	}

	eventID := func(index gossip.EventIndex) (string, bool) {
		event, ok := graph.Get(index)
		if !ok {
			return "", false
		}
		return event.Hex(), true
	}

	for _, index := range election.MetaEventIndices() {
		id, ok := eventID(index)
		if !ok {
			continue
		}

		metaEvent := election.metaEvents[index]
		es := MetaEventSnapshot{}
		for _, k := range metaEvent.InterestingContent {
			es.InterestingContent = append(es.InterestingContent, keyID(k))
		}
		for voter, votes := range metaEvent.MetaVotes {
			vid, ok := peerID(voter)
			if !ok {
				continue
			}
			if es.MetaVotes == nil {
				es.MetaVotes = make(map[string][]string)
			}
			for _, v := range votes {
				es.MetaVotes[vid] = append(es.MetaVotes[vid], v.String())
			}
		}

		if s.MetaEvents == nil {
			s.MetaEvents = make(map[string]MetaEventSnapshot)
		}
		s.MetaEvents[id] = es
	}

	for peer, hashes := range election.roundHashes {
		pid, ok := peerID(peer)
		if !ok {
			continue
		}
		if s.RoundHashes == nil {
			s.RoundHashes = make(map[string][]string)
		}
		for _, h := range hashes {
			s.RoundHashes[pid] = append(s.RoundHashes[pid], common.EncodeToString(h.Value))
		}
	}

	for _, v := range election.voters.Indices() {
		if pid, ok := peerID(v); ok {
			s.Voters = append(s.Voters, pid)
		}
	}

	for _, ce := range election.InterestingEvents() {
		pid, ok := peerID(ce.Creator)
		if !ok {
			continue
		}
		for _, index := range ce.Events {
			id, ok := eventID(index)
			if !ok {
				continue
			}
			if s.InterestingEvents == nil {
				s.InterestingEvents = make(map[string][]string)
			}
			s.InterestingEvents[pid] = append(s.InterestingEvents[pid], id)
		}
	}

	for _, k := range election.consensusHistory {
		s.ConsensusHistory = append(s.ConsensusHistory, keyID(k))
	}

	for _, index := range election.UnconsensusedEvents() {
		if id, ok := eventID(index); ok {
			s.UnconsensusedEvents = append(s.UnconsensusedEvents, id)
		}
	}

	return s
}

// Marshal returns the canonical JSON encoding of the snapshot.
func (s *MetaElectionSnapshot) Marshal() ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(s); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// Unmarshal decodes a snapshot produced by Marshal.
func (s *MetaElectionSnapshot) Unmarshal(data []byte) error {
	b := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	dec := codec.NewDecoder(b, jh)

	return dec.Decode(s)
}

// Hash returns the SHA256 hash of the canonical encoding.
func (s *MetaElectionSnapshot) Hash() ([]byte, error) {
	data, err := s.Marshal()
	if err != nil {
		return nil, err
	}
	return crypto.SHA256(data), nil
}
