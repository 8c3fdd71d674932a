package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mosaicnetworks/metavote/src/common"
	"github.com/mosaicnetworks/metavote/src/dump"
	"github.com/mosaicnetworks/metavote/src/metavoting"
)

//NewInspectCmd returns the command that prints a dumped snapshot
func NewInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "inspect",
		Short:   "Print a snapshot from the dump database",
		PreRunE: loadConfig,
		RunE:    inspect,
	}
	AddInspectFlags(cmd)
	return cmd
}

//AddInspectFlags adds flags to the Inspect command
func AddInspectFlags(cmd *cobra.Command) {
	cmd.Flags().String("dump-dir", _config.Metavote.DumpDir, "Snapshot database directory")
	cmd.Flags().Int("index", _config.Index, "Index of the snapshot, -1 for the last one")
}

func inspect(cmd *cobra.Command, args []string) error {
	store, err := dump.LoadBadgerStore(_config.Metavote.CacheSize, _config.Metavote.DumpDir, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	var (
		index    = _config.Index
		snapshot *metavoting.MetaElectionSnapshot
	)
	if index < 0 {
		index, snapshot, err = dump.LastSnapshot(store)
	} else {
		snapshot, err = store.GetSnapshot(index)
	}
	if err != nil {
		return err
	}

	data, err := snapshot.Marshal()
	if err != nil {
		return err
	}
	hash, err := snapshot.Hash()
	if err != nil {
		return err
	}

	fmt.Printf("snapshot %d %s\n", index, common.EncodeToString(hash))
	fmt.Println(string(data))

	return nil
}
