package peers

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"github.com/ugorji/go/codec"

	"github.com/mosaicnetworks/metavote/src/common"
)

const jsonPeerSetPath = "peers.json"

// JSONPeerSet persists the peer registry of a data directory as a JSON
// array.
type JSONPeerSet struct {
	l    sync.Mutex
	path string
}

// NewJSONPeerSet ...
func NewJSONPeerSet(base string) *JSONPeerSet {
	return &JSONPeerSet{
		path: filepath.Join(base, jsonPeerSetPath),
	}
}

// Peers parses the underlying JSON file. Public keys are normalised to the
// upper-case 0X form.
func (j *JSONPeerSet) Peers() ([]*Peer, error) {
	j.l.Lock()
	defer j.l.Unlock()

	return j.read()
}

// Write replaces the file with peers.
func (j *JSONPeerSet) Write(peers []*Peer) error {
	j.l.Lock()
	defer j.l.Unlock()

	return j.write(peers)
}

// Add appends a peer, creating the file if needed. Monikers and public keys
// must be unique.
func (j *JSONPeerSet) Add(peer *Peer) error {
	j.l.Lock()
	defer j.l.Unlock()

	existing, err := j.read()
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	for _, p := range existing {
		if p.PubKeyString() == peer.PubKeyString() {
			return fmt.Errorf("public key %s is already in %s", peer.PubKeyHex, j.path)
		}
		if peer.Moniker != "" && p.Moniker == peer.Moniker {
			return fmt.Errorf("moniker %q is already in %s", peer.Moniker, j.path)
		}
	}

	return j.write(append(existing, peer))
}

func (j *JSONPeerSet) read() ([]*Peer, error) {
	buf, err := ioutil.ReadFile(j.path)
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(buf)) == 0 {
		return nil, nil
	}

	var peers []*Peer
	if err := codec.NewDecoderBytes(buf, new(codec.JsonHandle)).Decode(&peers); err != nil {
		return nil, fmt.Errorf("decoding %s: %v", j.path, err)
	}

	for _, p := range peers {
		if pub := p.PubKeyBytes(); pub != nil {
			p.PubKeyHex = common.EncodeToString(pub)
		}
	}

	return peers, nil
}

func (j *JSONPeerSet) write(peers []*Peer) error {
	var buf []byte
	jh := new(codec.JsonHandle)
	jh.Indent = 2
	if err := codec.NewEncoderBytes(&buf, jh).Encode(peers); err != nil {
		return err
	}

	return ioutil.WriteFile(j.path, buf, 0644)
}
