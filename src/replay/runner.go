package replay

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mosaicnetworks/metavote/src/config"
	"github.com/mosaicnetworks/metavote/src/dump"
	"github.com/mosaicnetworks/metavote/src/gossip"
	"github.com/mosaicnetworks/metavote/src/metavoting"
	"github.com/mosaicnetworks/metavote/src/observation"
	"github.com/mosaicnetworks/metavote/src/peers"
)

// Runner executes a Scenario against a fresh graph and MetaElection.
type Runner struct {
	mode     observation.ConsensusMode
	peerList *peers.PeerList
	graph    *gossip.InmemGraph
	election *metavoting.MetaElection
	labels   map[string]*gossip.Event
	store    dump.Store

	logger *logrus.Entry
}

// NewRunner registers the scenario's peers and prepares an empty election.
// The scenario's mode takes precedence over the configured one. store
// receives a snapshot after every decision and may be nil.
func NewRunner(conf *config.Config, scenario *Scenario, store dump.Store) (*Runner, error) {
	modeName := scenario.Mode
	if modeName == "" {
		modeName = conf.ConsensusMode
	}
	mode, err := observation.ParseConsensusMode(modeName)
	if err != nil {
		return nil, err
	}

	if err := FillPubKeys(scenario.Peers); err != nil {
		return nil, err
	}

	peerList := peers.NewPeerList()
	for _, p := range scenario.Peers {
		if _, err := peerList.AddPeer(p); err != nil {
			return nil, err
		}
	}

	if len(scenario.Voters) == 0 {
		for i := 0; i < peerList.Len(); i++ {
			peerList.SetVoter(peers.PeerIndex(i), true)
		}
	}
	for _, moniker := range scenario.Voters {
		index, ok := peerList.IndexByMoniker(moniker)
		if !ok {
			return nil, fmt.Errorf("unknown voter %q", moniker)
		}
		peerList.SetVoter(index, true)
	}

	logger := conf.Logger()

	return &Runner{
		mode:     mode,
		peerList: peerList,
		graph:    gossip.NewInmemGraph(mode),
		election: metavoting.NewMetaElection(peerList.VoterIndices(), logger),
		labels:   make(map[string]*gossip.Event),
		store:    store,
		logger:   logger,
	}, nil
}

// Election ...
func (r *Runner) Election() *metavoting.MetaElection {
	return r.election
}

// Graph ...
func (r *Runner) Graph() *gossip.InmemGraph {
	return r.graph
}

// PeerList ...
func (r *Runner) PeerList() *peers.PeerList {
	return r.peerList
}

// Event returns the event inserted under label.
func (r *Runner) Event(label string) (*gossip.Event, bool) {
	e, ok := r.labels[label]
	return e, ok
}

// Snapshot exports the current state of the election.
func (r *Runner) Snapshot() *metavoting.MetaElectionSnapshot {
	return metavoting.NewMetaElectionSnapshot(r.election, r.graph, r.peerList)
}

// Run executes steps in order and stops at the first failure.
func (r *Runner) Run(steps []Step) error {
	for i, step := range steps {
		if err := r.Step(step); err != nil {
			return fmt.Errorf("step %d: %v", i, err)
		}
	}
	return nil
}

// Step executes a single step, then checks the election's invariants.
func (r *Runner) Step(step Step) error {
	var err error
	switch step.Kind {
	case EventStep:
		err = r.insertEvent(step)
	case MetaStep:
		err = r.addMetaEvent(step)
	case DecideStep:
		err = r.decide(step)
	case PruneStep:
		err = r.prune(step)
	case InitRoundHashesStep:
		r.election.InitialiseRoundHashes(r.peerList.Voters())
	default:
		err = fmt.Errorf("unknown step kind %q", step.Kind)
	}
	if err != nil {
		return err
	}

	return r.election.CheckInvariants(r.graph)
}

func (r *Runner) insertEvent(step Step) error {
	if step.Label == "" {
		return fmt.Errorf("event without label")
	}
	if _, ok := r.labels[step.Label]; ok {
		return fmt.Errorf("duplicate label %q", step.Label)
	}

	creator, err := r.peerIndex(step.Creator)
	if err != nil {
		return err
	}

	var payload []byte
	if step.Payload != "" {
		payload = []byte(step.Payload)
	}

	event := r.graph.Insert(creator, payload)
	r.labels[step.Label] = event

	// Late votes for a decided observation are not pending.
	if key := event.PayloadKey(); key != nil && !r.election.IsDecided(*key) {
		r.election.AddUnconsensusedEvent(event.EventIndex())
	}

	r.logger.WithFields(logrus.Fields{
		"label":   step.Label,
		"index":   event.EventIndex(),
		"creator": step.Creator,
		"payload": step.Payload,
	}).Debug("Insert event")

	return nil
}

func (r *Runner) addMetaEvent(step Step) error {
	event, ok := r.labels[step.Label]
	if !ok {
		return fmt.Errorf("unknown label %q", step.Label)
	}

	builder := metavoting.NewMetaEventBuilder(event)

	for _, ref := range step.Interesting {
		key, err := r.observationKey(ref)
		if err != nil {
			return err
		}
		builder.AddInterestingContent(key)
	}

	for moniker, rounds := range step.Votes {
		voter, err := r.peerIndex(moniker)
		if err != nil {
			return err
		}
		for _, round := range rounds {
			builder.AddMetaVotes(voter, metavoting.MetaVote{
				Round:     round,
				Step:      metavoting.ForcedTrue,
				Estimates: metavoting.SingleBoolSet(true),
			})
		}
	}

	r.election.AddMetaEvent(builder)

	return nil
}

func (r *Runner) decide(step Step) error {
	key, err := r.observationKey(ObservationRef{Payload: step.Payload, Creator: step.Creator})
	if err != nil {
		return err
	}

	var change *peers.PeerListChange
	switch {
	case step.Add != "" && step.Remove != "":
		return fmt.Errorf("a decision changes at most one peer")
	case step.Add != "":
		index, err := r.peerIndex(step.Add)
		if err != nil {
			return err
		}
		change = peers.AddChange(index)
	case step.Remove != "":
		index, err := r.peerIndex(step.Remove)
		if err != nil {
			return err
		}
		change = peers.RemoveChange(index)
	}

	r.peerList.Apply(change)
	r.election.NewElection(r.graph, key, change)

	if r.store != nil {
		index := len(r.election.ConsensusHistory()) - 1
		if err := r.store.SetSnapshot(index, r.Snapshot()); err != nil {
			return err
		}
	}

	return nil
}

func (r *Runner) prune(step Step) error {
	event, ok := r.labels[step.Label]
	if !ok {
		return fmt.Errorf("unknown label %q", step.Label)
	}

	r.graph.Remove(event.EventIndex())
	r.election.RemoveMetaEvent(event.EventIndex())

	return nil
}

func (r *Runner) peerIndex(moniker string) (peers.PeerIndex, error) {
	index, ok := r.peerList.IndexByMoniker(moniker)
	if !ok {
		return peers.NoPeer, fmt.Errorf("unknown peer %q", moniker)
	}
	return index, nil
}

func (r *Runner) observationKey(ref ObservationRef) (observation.Key, error) {
	if ref.Payload == "" {
		return observation.Key{}, fmt.Errorf("observation without payload")
	}

	creator := peers.NoPeer
	if r.mode == observation.Single {
		index, err := r.peerIndex(ref.Creator)
		if err != nil {
			return observation.Key{}, err
		}
		creator = index
	}

	return observation.NewKey([]byte(ref.Payload), creator, r.mode), nil
}
