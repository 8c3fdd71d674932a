package peers

import (
	"github.com/mosaicnetworks/metavote/src/common"
)

// Peer is a participant identity.
type Peer struct {
	PubKeyHex string
	NetAddr   string
	Moniker   string
}

// NewPeer creates a new peer.
func NewPeer(pubKeyHex, netAddr, moniker string) *Peer {
	return &Peer{
		PubKeyHex: pubKeyHex,
		NetAddr:   netAddr,
		Moniker:   moniker,
	}
}

// PubKeyString returns the upper-case version of PubKeyHex. It is used for
// indexing in maps with string keys.
func (p *Peer) PubKeyString() string {
	return common.EncodeToString(p.PubKeyBytes())
}

// PubKeyBytes decodes PubKeyHex. It returns nil if the hex is malformed.
func (p *Peer) PubKeyBytes() []byte {
	b, err := common.DecodeFromString(p.PubKeyHex)
	if err != nil {
		return nil
	}
	return b
}
