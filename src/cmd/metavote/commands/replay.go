package commands

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mosaicnetworks/metavote/src/common"
	"github.com/mosaicnetworks/metavote/src/dump"
	"github.com/mosaicnetworks/metavote/src/peers"
	"github.com/mosaicnetworks/metavote/src/replay"
)

//NewReplayCmd returns the command that replays a scenario
func NewReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "replay",
		Short:   "Replay a meta-election scenario",
		PreRunE: loadConfig,
		RunE:    runReplay,
	}
	AddReplayFlags(cmd)
	return cmd
}

/*******************************************************************************
* RUN
*******************************************************************************/

func runReplay(cmd *cobra.Command, args []string) error {
	logger := _config.Metavote.Logger()

	path := _config.Scenario
	if path == "" {
		path = _config.Metavote.ScenarioFile()
	}

	scenario, err := replay.LoadScenario(path)
	if err != nil {
		return err
	}

	// Scenarios may leave the peers to peers.json in the datadir
	if len(scenario.Peers) == 0 {
		ps, err := peers.NewJSONPeerSet(_config.Metavote.DataDir).Peers()
		if err != nil {
			return fmt.Errorf("scenario %s has no peers and peers.json could not be read: %v", path, err)
		}
		scenario.Peers = ps
	}

	var store dump.Store
	if _config.Metavote.Dump {
		if err := os.MkdirAll(_config.Metavote.DumpDir, 0700); err != nil {
			return err
		}
		store, err = dump.NewBadgerStore(_config.Metavote.CacheSize, _config.Metavote.DumpDir, logger.WithField("component", "badger"))
		if err != nil {
			return err
		}
		if store.LastIndex() >= 0 {
			store.Close()
			return fmt.Errorf("dump directory %s already holds snapshots", _config.Metavote.DumpDir)
		}
	} else {
		store = dump.NewInmemStore(_config.Metavote.CacheSize)
	}
	defer store.Close()

	runner, err := replay.NewRunner(&_config.Metavote, scenario, store)
	if err != nil {
		return err
	}

	if err := runner.Run(scenario.Steps); err != nil {
		return err
	}

	election := runner.Election()

	fields := logrus.Fields{
		"steps":         len(scenario.Steps),
		"decisions":     len(election.ConsensusHistory()),
		"voters":        election.Voters(),
		"meta_events":   election.MetaEventCount(),
		"unconsensused": len(election.UnconsensusedEvents()),
	}

	last, snapshot, err := dump.LastSnapshot(store)
	switch {
	case err == nil:
		hash, err := snapshot.Hash()
		if err != nil {
			return err
		}
		fields["last_snapshot"] = last
		fields["last_snapshot_hash"] = common.EncodeToString(hash)
	case !common.IsStore(err, common.Empty):
		return err
	}

	logger.WithFields(fields).Info("Replay done")

	for i, k := range election.ConsensusHistory() {
		fmt.Printf("%d %s\n", i, k)
	}

	return nil
}

/*******************************************************************************
* CONFIG
*******************************************************************************/

//AddReplayFlags adds flags to the Replay command
func AddReplayFlags(cmd *cobra.Command) {
	cmd.Flags().String("scenario", _config.Scenario, "Scenario file (defaults to [datadir]/scenario.json)")
	cmd.Flags().String("consensus", _config.Metavote.ConsensusMode, "supermajority or single, unless set by the scenario")

	// Dump
	cmd.Flags().Bool("dump", _config.Metavote.Dump, "Write snapshots to a badger database")
	cmd.Flags().String("dump-dir", _config.Metavote.DumpDir, "Snapshot database directory")
	cmd.Flags().Int("cache-size", _config.Metavote.CacheSize, "Number of snapshots kept in memory")
}
