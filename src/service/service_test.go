package service

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/ugorji/go/codec"

	"github.com/mosaicnetworks/metavote/src/common"
	"github.com/mosaicnetworks/metavote/src/dump"
	"github.com/mosaicnetworks/metavote/src/metavoting"
)

func get(t *testing.T, s *Service, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServiceEmptyStore(t *testing.T) {
	s := NewService("", dump.NewInmemStore(10), common.NewTestEntry(t))

	rec := get(t, s, "/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("stats should succeed, got %d", rec.Code)
	}

	var stats Stats
	if err := codec.NewDecoderBytes(rec.Body.Bytes(), new(codec.JsonHandle)).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats.LastIndex != -1 || stats.LastHash != "" {
		t.Fatalf("empty store stats mismatch: %#v", stats)
	}

	if rec := get(t, s, "/snapshot/last"); rec.Code != http.StatusNotFound {
		t.Fatalf("last snapshot of an empty store should be 404, got %d", rec.Code)
	}
}

func TestServiceSnapshots(t *testing.T) {
	store := dump.NewInmemStore(10)

	snapshots := []*metavoting.MetaElectionSnapshot{
		{ConsensusHistory: []string{"0XAA"}},
		{ConsensusHistory: []string{"0XAA", "0XBB"}, Voters: []string{"0X01"}},
	}
	for i, snap := range snapshots {
		if err := store.SetSnapshot(i, snap); err != nil {
			t.Fatal(err)
		}
	}

	s := NewService("", store, common.NewTestEntry(t))

	for _, path := range []string{"/snapshot/1", "/snapshot/last"} {
		rec := get(t, s, path)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s should succeed, got %d", path, rec.Code)
		}
		var snap metavoting.MetaElectionSnapshot
		if err := snap.Unmarshal(rec.Body.Bytes()); err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(&snap, snapshots[1]) {
			t.Fatalf("%s should return %#v, not %#v", path, snapshots[1], snap)
		}
	}

	rec := get(t, s, "/stats")
	var stats Stats
	if err := codec.NewDecoderBytes(rec.Body.Bytes(), new(codec.JsonHandle)).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	hash, _ := snapshots[1].Hash()
	if stats.LastIndex != 1 || stats.LastHash != common.EncodeToString(hash) {
		t.Fatalf("stats mismatch: %#v", stats)
	}

	cases := []struct {
		path string
		code int
	}{
		{"/snapshot/5", http.StatusNotFound},
		{"/snapshot/abc", http.StatusBadRequest},
	}
	for _, c := range cases {
		if rec := get(t, s, c.path); rec.Code != c.code {
			t.Fatalf("%s should return %d, got %d", c.path, c.code, rec.Code)
		}
	}
}
