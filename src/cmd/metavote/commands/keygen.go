package commands

import (
	"crypto/ecdsa"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mosaicnetworks/metavote/src/common"
	"github.com/mosaicnetworks/metavote/src/crypto/keys"
	"github.com/mosaicnetworks/metavote/src/peers"
)

var (
	moniker       string
	netAddr       string
	deterministic bool
	writePeer     bool
)

// NewKeygenCmd produces a KeygenCmd which creates a peer identity
func NewKeygenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "keygen",
		Short:   "Create a peer identity",
		PreRunE: loadConfig,
		RunE:    keygen,
	}

	AddKeygenFlags(cmd)

	return cmd
}

//AddKeygenFlags adds flags to the keygen command
func AddKeygenFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&moniker, "moniker", "", "Name of the peer")
	cmd.Flags().StringVar(&netAddr, "addr", "", "Network address of the peer")
	cmd.Flags().BoolVar(&deterministic, "deterministic", false, "Derive the key from the moniker, as replays do")
	cmd.Flags().BoolVar(&writePeer, "write", false, "Append the peer to [datadir]/peers.json")
}

func keygen(cmd *cobra.Command, args []string) error {
	var key *ecdsa.PrivateKey
	var err error

	if deterministic {
		if moniker == "" {
			return fmt.Errorf("--deterministic requires --moniker")
		}
		key, err = keys.DeterministicKey([]byte(moniker))
	} else {
		key, err = keys.GenerateECDSAKey()
	}
	if err != nil {
		return fmt.Errorf("Error generating ECDSA key: %v", err)
	}

	peer := peers.NewPeer(keys.PublicKeyHex(&key.PublicKey), netAddr, moniker)

	fmt.Printf("PublicKey: %s\n", peer.PubKeyHex)
	fmt.Printf("PrivateKey: %s\n", common.EncodeToString(keys.DumpPrivateKey(key)))

	if !writePeer {
		return nil
	}

	if err := os.MkdirAll(_config.Metavote.DataDir, 0700); err != nil {
		return fmt.Errorf("Writing peers.json: %s", err)
	}

	if err := peers.NewJSONPeerSet(_config.Metavote.DataDir).Add(peer); err != nil {
		return fmt.Errorf("Writing peers.json: %s", err)
	}

	fmt.Printf("Peer %q added to %s/peers.json\n", moniker, _config.Metavote.DataDir)

	return nil
}
