package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestSHA256(t *testing.T) {
	// sha256("abc")
	expected, _ := hex.DecodeString("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad")
	if !bytes.Equal(SHA256([]byte("abc")), expected) {
		t.Fatalf("SHA256 of a single chunk mismatch")
	}
	if !bytes.Equal(SHA256([]byte("a"), []byte("bc")), expected) {
		t.Fatalf("SHA256 should hash the concatenation of its chunks")
	}
	if bytes.Equal(SHA256([]byte("bc"), []byte("a")), expected) {
		t.Fatalf("SHA256 should depend on chunk order")
	}
}
