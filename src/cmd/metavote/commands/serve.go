package commands

import (
	"github.com/spf13/cobra"

	"github.com/mosaicnetworks/metavote/src/dump"
	"github.com/mosaicnetworks/metavote/src/service"
)

//NewServeCmd returns the command that serves a dump database over HTTP
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the snapshots of a dump database over HTTP",
		PreRunE: loadConfig,
		RunE:    serve,
	}
	AddServeFlags(cmd)
	return cmd
}

//AddServeFlags adds flags to the Serve command
func AddServeFlags(cmd *cobra.Command) {
	cmd.Flags().String("dump-dir", _config.Metavote.DumpDir, "Snapshot database directory")
	cmd.Flags().String("service-listen", _config.ServiceAddr, "Listen IP:Port for HTTP service")
}

func serve(cmd *cobra.Command, args []string) error {
	logger := _config.Metavote.Logger()

	store, err := dump.LoadBadgerStore(_config.Metavote.CacheSize, _config.Metavote.DumpDir, logger.WithField("component", "badger"))
	if err != nil {
		return err
	}
	defer store.Close()

	return service.NewService(_config.ServiceAddr, store, logger.WithField("component", "service")).Serve()
}
