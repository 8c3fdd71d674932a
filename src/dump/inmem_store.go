package dump

import (
	"strconv"

	"github.com/mosaicnetworks/metavote/src/common"
	"github.com/mosaicnetworks/metavote/src/metavoting"
)

// InmemStore implements the Store interface with a rolling cache. Older
// snapshots are evicted once more than 2*cacheSize are held, after which they
// fail with TooLate.
type InmemStore struct {
	cacheSize int
	snapshots *common.RollingIndex[*metavoting.MetaElectionSnapshot]
	closed    bool
}

// NewInmemStore creates an empty InmemStore.
func NewInmemStore(cacheSize int) *InmemStore {
	if cacheSize < 1 {
		cacheSize = 1
	}
	return &InmemStore{
		cacheSize: cacheSize,
		snapshots: common.NewRollingIndex[*metavoting.MetaElectionSnapshot](snapshotDataType, cacheSize),
	}
}

// CacheSize returns the size of the rolling window.
func (s *InmemStore) CacheSize() int {
	return s.cacheSize
}

// SetSnapshot implements the Store interface.
func (s *InmemStore) SetSnapshot(index int, snapshot *metavoting.MetaElectionSnapshot) error {
	if s.closed {
		return common.NewStoreErr(snapshotDataType, common.Closed, strconv.Itoa(index))
	}
	return s.snapshots.Set(snapshot, index)
}

// GetSnapshot implements the Store interface.
func (s *InmemStore) GetSnapshot(index int) (*metavoting.MetaElectionSnapshot, error) {
	if s.closed {
		return nil, common.NewStoreErr(snapshotDataType, common.Closed, strconv.Itoa(index))
	}
	return s.snapshots.GetItem(index)
}

// LastIndex implements the Store interface.
func (s *InmemStore) LastIndex() int {
	return s.snapshots.LastIndex()
}

// Close implements the Store interface.
func (s *InmemStore) Close() error {
	s.closed = true
	return nil
}
