package dump

import (
	"github.com/mosaicnetworks/metavote/src/common"
	"github.com/mosaicnetworks/metavote/src/metavoting"
)

const snapshotDataType = "Snapshot"

// Store is an interface for snapshot stores. Indices are gapless, starting at
// 0 for the first decision.
type Store interface {
	// SetSnapshot stores the snapshot taken after decision index. It fails with
	// SkippedIndex if index is past LastIndex()+1.
	SetSnapshot(index int, snapshot *metavoting.MetaElectionSnapshot) error
	// GetSnapshot retrieves a snapshot by index.
	GetSnapshot(index int) (*metavoting.MetaElectionSnapshot, error)
	// LastIndex returns the index of the last snapshot, or -1.
	LastIndex() int
	// Close releases the underlying resources.
	Close() error
}

// LastSnapshot returns the most recent snapshot of a store, or an Empty
// StoreErr.
func LastSnapshot(s Store) (int, *metavoting.MetaElectionSnapshot, error) {
	last := s.LastIndex()
	if last < 0 {
		return -1, nil, common.NewStoreErr(snapshotDataType, common.Empty, "")
	}
	snapshot, err := s.GetSnapshot(last)
	if err != nil {
		return -1, nil, err
	}
	return last, snapshot, nil
}
