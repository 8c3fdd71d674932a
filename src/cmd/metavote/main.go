package main

import (
	"os"

	cmd "github.com/mosaicnetworks/metavote/src/cmd/metavote/commands"
)

func main() {
	rootCmd := cmd.RootCmd

	rootCmd.AddCommand(
		cmd.NewReplayCmd(),
		cmd.NewInspectCmd(),
		cmd.NewServeCmd(),
		cmd.NewKeygenCmd(),
		cmd.VersionCmd,
	)

	//Do not print usage when error occurs
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
