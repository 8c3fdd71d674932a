package keys

import (
	"crypto/ecdsa"

	"github.com/btcsuite/btcd/btcec"

	"github.com/mosaicnetworks/metavote/src/common"
)

// ToPublicKey parses a serialized secp256k1 point, compressed or not. It
// returns nil if pub is not on the curve.
func ToPublicKey(pub []byte) *ecdsa.PublicKey {
	pk, err := btcec.ParsePubKey(pub, btcec.S256())
	if err != nil {
		return nil
	}
	return pk.ToECDSA()
}

// FromPublicKey returns the uncompressed form of pub.
func FromPublicKey(pub *ecdsa.PublicKey) []byte {
	if pub == nil || pub.X == nil || pub.Y == nil {
		return nil
	}
	return (*btcec.PublicKey)(pub).SerializeUncompressed()
}

// PublicKeyHex returns the 0X-prefixed hex of the uncompressed public key.
func PublicKeyHex(pub *ecdsa.PublicKey) string {
	return common.EncodeToString(FromPublicKey(pub))
}
