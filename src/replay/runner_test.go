package replay

import (
	"reflect"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/mosaicnetworks/metavote/src/config"
	"github.com/mosaicnetworks/metavote/src/dump"
	"github.com/mosaicnetworks/metavote/src/gossip"
	"github.com/mosaicnetworks/metavote/src/observation"
	"github.com/mosaicnetworks/metavote/src/peers"
)

func newTestRunner(t *testing.T, scenario *Scenario, store dump.Store) *Runner {
	r, err := NewRunner(config.NewTestConfig(t, logrus.DebugLevel), scenario, store)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func supermajorityKey(payload string) observation.Key {
	return observation.NewKey([]byte(payload), peers.NoPeer, observation.Supermajority)
}

func TestRunMembershipScenario(t *testing.T) {
	scenario, err := LoadScenario("testdata/membership.json")
	if err != nil {
		t.Fatal(err)
	}

	store := dump.NewInmemStore(10)
	r := newTestRunner(t, scenario, store)

	if err := r.Run(scenario.Steps); err != nil {
		t.Fatal(err)
	}

	e := r.Election()

	history := []observation.Key{supermajorityKey("tx1"), supermajorityKey("tx2"), supermajorityKey("tx3")}
	if !reflect.DeepEqual(e.ConsensusHistory(), history) {
		t.Fatalf("history should be %v, not %v", history, e.ConsensusHistory())
	}

	alice, _ := r.PeerList().IndexByMoniker("alice")
	bob, _ := r.PeerList().IndexByMoniker("bob")
	dave, _ := r.PeerList().IndexByMoniker("dave")
	voters := peers.NewPeerIndexSet(alice, bob, dave)
	if !e.Voters().Equal(voters) {
		t.Fatalf("voters should be %v, not %v", voters, e.Voters())
	}
	if !r.PeerList().VoterIndices().Equal(voters) {
		t.Fatalf("registry voters should follow the election, got %v", r.PeerList().VoterIndices())
	}

	if e.MetaEventCount() != 0 || len(e.UnconsensusedEvents()) != 0 {
		t.Fatalf("the last election should start empty")
	}

	if store.LastIndex() != 2 {
		t.Fatalf("a snapshot should be stored per decision, LastIndex is %d", store.LastIndex())
	}

	// After the first decision, b0 and c0 were retained with tx1 stripped.
	first, err := store.GetSnapshot(0)
	if err != nil {
		t.Fatal(err)
	}
	b0, _ := r.Event("b0")
	c0, _ := r.Event("c0")
	if len(first.MetaEvents) != 2 {
		t.Fatalf("first snapshot should retain 2 meta-events, got %d", len(first.MetaEvents))
	}
	if got := first.MetaEvents[b0.Hex()].InterestingContent; !reflect.DeepEqual(got, []string{supermajorityKey("tx2").Hash.Hex()}) {
		t.Fatalf("b0 should only keep tx2, got %v", got)
	}
	if got := first.MetaEvents[c0.Hex()].InterestingContent; got != nil {
		t.Fatalf("c0 should have no interesting content left, got %v", got)
	}
	if !reflect.DeepEqual(first.UnconsensusedEvents, []string{b0.Hex()}) {
		t.Fatalf("b0 should be the only pending event, got %v", first.UnconsensusedEvents)
	}

	// The membership change cleared everything.
	second, _ := store.GetSnapshot(1)
	if second.MetaEvents != nil || len(second.Voters) != 4 {
		t.Fatalf("second snapshot mismatch: %#v", second)
	}
}

func TestRunSingleMode(t *testing.T) {
	scenario := &Scenario{
		Mode:  "single",
		Peers: []*peers.Peer{{Moniker: "alice"}, {Moniker: "bob"}},
		Steps: []Step{
			{Kind: EventStep, Label: "a0", Creator: "alice", Payload: "tx"},
			{Kind: EventStep, Label: "b0", Creator: "bob", Payload: "tx"},
			{Kind: MetaStep, Label: "b0", Interesting: []ObservationRef{{Payload: "tx", Creator: "alice"}}},
			{Kind: DecideStep, Payload: "tx", Creator: "alice"},
		},
	}

	r := newTestRunner(t, scenario, nil)
	if err := r.Run(scenario.Steps); err != nil {
		t.Fatal(err)
	}

	b0, _ := r.Event("b0")
	if !reflect.DeepEqual(r.Election().UnconsensusedEvents(), []gossip.EventIndex{b0.EventIndex()}) {
		t.Fatalf("bob's proposal should still be pending, got %v", r.Election().UnconsensusedEvents())
	}

	// b0 is retained, and alice's observation removed from its content.
	me, ok := r.Election().MetaEvent(b0.EventIndex())
	if !ok || len(me.InterestingContent) != 0 {
		t.Fatalf("b0 should be retained without interesting content")
	}

	// Deciding bob's proposal is a different observation.
	if err := r.Step(Step{Kind: DecideStep, Payload: "tx", Creator: "bob"}); err != nil {
		t.Fatal(err)
	}
	if len(r.Election().UnconsensusedEvents()) != 0 {
		t.Fatalf("every proposal should be decided")
	}
}

func TestRunLateVote(t *testing.T) {
	scenario := &Scenario{
		Peers: []*peers.Peer{{Moniker: "alice"}, {Moniker: "bob"}},
		Steps: []Step{
			{Kind: EventStep, Label: "a0", Creator: "alice", Payload: "tx1"},
			{Kind: DecideStep, Payload: "tx1"},
			{Kind: EventStep, Label: "b0", Creator: "bob", Payload: "tx1"},
			{Kind: EventStep, Label: "b1", Creator: "bob", Payload: "tx2"},
		},
	}

	r := newTestRunner(t, scenario, nil)
	if err := r.Run(scenario.Steps); err != nil {
		t.Fatal(err)
	}

	// b0 repeats a decided observation and is not pending.
	b1, _ := r.Event("b1")
	if !reflect.DeepEqual(r.Election().UnconsensusedEvents(), []gossip.EventIndex{b1.EventIndex()}) {
		t.Fatalf("only b1 should be pending, got %v", r.Election().UnconsensusedEvents())
	}
	if start, ok := r.Election().StartIndex(); !ok || start != b1.EventIndex().TopologicalIndex {
		t.Fatalf("start index should be b1, got %d", start)
	}
}

func TestRunErrors(t *testing.T) {
	base := func() *Scenario {
		return &Scenario{
			Peers: []*peers.Peer{{Moniker: "alice"}, {Moniker: "bob"}},
		}
	}

	cases := []struct {
		name  string
		steps []Step
		err   string
	}{
		{"unknown kind", []Step{{Kind: "vote"}}, "unknown step kind"},
		{"unknown label", []Step{{Kind: MetaStep, Label: "x"}}, "unknown label"},
		{"unknown creator", []Step{{Kind: EventStep, Label: "x", Creator: "zoe"}}, "unknown peer"},
		{"duplicate label", []Step{
			{Kind: EventStep, Label: "x", Creator: "alice"},
			{Kind: EventStep, Label: "x", Creator: "bob"},
		}, "duplicate label"},
		{"double change", []Step{{Kind: DecideStep, Payload: "tx", Add: "alice", Remove: "bob"}}, "at most one"},
		{"decided twice", []Step{
			{Kind: DecideStep, Payload: "tx"},
			{Kind: DecideStep, Payload: "tx"},
		}, "decided twice"},
		{"no payload", []Step{{Kind: DecideStep}}, "without payload"},
	}

	for _, c := range cases {
		s := base()
		r := newTestRunner(t, s, nil)
		err := r.Run(c.steps)
		if err == nil {
			t.Fatalf("%s: Run should fail", c.name)
		}
		if !strings.Contains(err.Error(), c.err) || !strings.HasPrefix(err.Error(), "step ") {
			t.Fatalf("%s: unexpected error %q", c.name, err)
		}
	}
}

func TestNewRunnerErrors(t *testing.T) {
	conf := config.NewTestConfig(t, logrus.DebugLevel)

	if _, err := NewRunner(conf, &Scenario{Mode: "plurality"}, nil); err == nil {
		t.Fatalf("unknown modes should be rejected")
	}
	if _, err := NewRunner(conf, &Scenario{Peers: []*peers.Peer{{}}}, nil); err == nil {
		t.Fatalf("anonymous peers should be rejected")
	}
	if _, err := NewRunner(conf, &Scenario{Peers: []*peers.Peer{{Moniker: "alice"}}, Voters: []string{"bob"}}, nil); err == nil {
		t.Fatalf("unknown voters should be rejected")
	}
}

func TestScenarioCodec(t *testing.T) {
	scenario, err := LoadScenario("testdata/membership.json")
	if err != nil {
		t.Fatal(err)
	}
	if len(scenario.Peers) != 4 || len(scenario.Steps) != 17 {
		t.Fatalf("unexpected scenario shape: %d peers, %d steps", len(scenario.Peers), len(scenario.Steps))
	}
	if scenario.Steps[5].Votes["alice"][1] != 1 {
		t.Fatalf("votes should be decoded, got %v", scenario.Steps[5].Votes)
	}

	data, err := scenario.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	var decoded Scenario
	if err := decoded.Unmarshal(data); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(decoded.Steps, scenario.Steps) || len(decoded.Peers) != 4 {
		t.Fatalf("scenario should survive a round trip")
	}

	if err := FillPubKeys(scenario.Peers); err != nil {
		t.Fatal(err)
	}
	other, _ := LoadScenario("testdata/membership.json")
	FillPubKeys(other.Peers)
	if scenario.Peers[0].PubKeyHex == "" || scenario.Peers[0].PubKeyHex != other.Peers[0].PubKeyHex {
		t.Fatalf("derived keys should be deterministic")
	}
}
