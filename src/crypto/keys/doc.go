// Package keys implements the public key cryptography that identifies peers.
//
// Every peer owns a secp256k1 key-pair. The uncompressed public key is the
// peer's identity: it seeds the peer's round-hash chain and keys the peer in
// diagnostic snapshots. Signing and verifying events belongs to the gossip
// layer and is not implemented here.
package keys
