package service

import (
	"bytes"
	"net/http"

	"github.com/ugorji/go/codec"
)

// writeJSON encodes v with the same canonical handle as the snapshots.
func writeJSON(w http.ResponseWriter, v interface{}) {
	var b bytes.Buffer
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	if err := codec.NewEncoder(&b, jh).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(b.Bytes())
}
