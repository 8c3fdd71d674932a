package keys

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec"
)

// maxDerivationRounds bounds DeterministicKey. A SHA256 digest falls outside
// [1, N) with negligible probability, so a few rounds are always enough.
const maxDerivationRounds = 16

// GenerateECDSAKey creates a random secp256k1 key.
func GenerateECDSAKey() (*ecdsa.PrivateKey, error) {
	priv, err := btcec.NewPrivateKey(btcec.S256())
	if err != nil {
		return nil, err
	}
	return priv.ToECDSA(), nil
}

// DeterministicKey derives a private key from a seed. The same moniker always
// maps to the same identity, and therefore to the same round hashes.
func DeterministicKey(seed []byte) (*ecdsa.PrivateKey, error) {
	d := sha256.Sum256(seed)
	for i := 0; i < maxDerivationRounds; i++ {
		if key, err := ParsePrivateKey(d[:]); err == nil {
			return key, nil
		}
		d = sha256.Sum256(d[:])
	}
	return nil, fmt.Errorf("no valid key derived from seed %q", seed)
}

// DumpPrivateKey returns the 32-byte big-endian scalar of priv.
func DumpPrivateKey(priv *ecdsa.PrivateKey) []byte {
	if priv == nil {
		return nil
	}
	return (*btcec.PrivateKey)(priv).Serialize()
}

// ParsePrivateKey is the inverse of DumpPrivateKey. d must be a 32-byte
// scalar in [1, N).
func ParsePrivateKey(d []byte) (*ecdsa.PrivateKey, error) {
	if len(d) != btcec.PrivKeyBytesLen {
		return nil, fmt.Errorf("invalid length, need %d bytes", btcec.PrivKeyBytesLen)
	}

	k := new(big.Int).SetBytes(d)
	if k.Sign() == 0 {
		return nil, fmt.Errorf("invalid private key, zero")
	}
	if k.Cmp(btcec.S256().N) >= 0 {
		return nil, fmt.Errorf("invalid private key, >=N")
	}

	priv, _ := btcec.PrivKeyFromBytes(btcec.S256(), d)
	return priv.ToECDSA(), nil
}
