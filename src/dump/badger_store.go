package dump

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger"
	"github.com/sirupsen/logrus"

	"github.com/mosaicnetworks/metavote/src/common"
	"github.com/mosaicnetworks/metavote/src/metavoting"
)

const snapshotPrefix = "snapshot"

// BadgerStore implements the Store interface on top of a badger database.
// Recent snapshots are also kept in an InmemStore.
type BadgerStore struct {
	inmemStore *InmemStore
	db         *badger.DB
	path       string
	lastIndex  int
	closed     bool
}

// NewBadgerStore opens, or creates, the database at path. logger receives
// badger's own messages and may be nil.
func NewBadgerStore(cacheSize int, path string, logger *logrus.Entry) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.SyncWrites = false
	if logger != nil {
		opts.Logger = logger
	}

	handle, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	store := &BadgerStore{
		inmemStore: NewInmemStore(cacheSize),
		db:         handle,
		path:       path,
	}

	lastIndex, err := store.dbLastIndex()
	if err != nil {
		handle.Close()
		return nil, err
	}
	store.lastIndex = lastIndex

	return store, nil
}

// LoadBadgerStore opens an existing database. It fails if nothing exists at
// path.
func LoadBadgerStore(cacheSize int, path string, logger *logrus.Entry) (*BadgerStore, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return NewBadgerStore(cacheSize, path, logger)
}

func snapshotKey(index int) []byte {
	return []byte(fmt.Sprintf("%s_%010d", snapshotPrefix, index))
}

// StorePath returns the directory of the database.
func (s *BadgerStore) StorePath() string {
	return s.path
}

// SetSnapshot implements the Store interface.
func (s *BadgerStore) SetSnapshot(index int, snapshot *metavoting.MetaElectionSnapshot) error {
	if s.closed {
		return common.NewStoreErr(snapshotDataType, common.Closed, strconv.Itoa(index))
	}
	if index < 0 || index > s.lastIndex+1 {
		return common.NewStoreErr(snapshotDataType, common.SkippedIndex, strconv.Itoa(index))
	}

	if err := s.inmemStore.SetSnapshot(index, snapshot); err != nil && !common.IsStore(err, common.TooLate) {
		return err
	}

	if err := s.dbSetSnapshot(index, snapshot); err != nil {
		return err
	}

	if index > s.lastIndex {
		s.lastIndex = index
	}

	return nil
}

// GetSnapshot implements the Store interface.
func (s *BadgerStore) GetSnapshot(index int) (*metavoting.MetaElectionSnapshot, error) {
	if s.closed {
		return nil, common.NewStoreErr(snapshotDataType, common.Closed, strconv.Itoa(index))
	}
	res, err := s.inmemStore.GetSnapshot(index)
	if err != nil {
		res, err = s.dbGetSnapshot(index)
	}
	return res, mapError(err, snapshotDataType, string(snapshotKey(index)))
}

// LastIndex implements the Store interface.
func (s *BadgerStore) LastIndex() int {
	return s.lastIndex
}

// Close implements the Store interface.
func (s *BadgerStore) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.inmemStore.Close(); err != nil {
		return err
	}
	return s.db.Close()
}

//++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++
//DB Methods

func (s *BadgerStore) dbGetSnapshot(index int) (*metavoting.MetaElectionSnapshot, error) {
	var snapshotBytes []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey(index))
		if err != nil {
			return err
		}
		snapshotBytes, err = item.ValueCopy(nil)
		return err
	})

	if err != nil {
		return nil, err
	}

	snapshot := new(metavoting.MetaElectionSnapshot)
	if err := snapshot.Unmarshal(snapshotBytes); err != nil {
		return nil, err
	}

	return snapshot, nil
}

func (s *BadgerStore) dbSetSnapshot(index int, snapshot *metavoting.MetaElectionSnapshot) error {
	val, err := snapshot.Marshal()
	if err != nil {
		return err
	}

	//insert [snapshot_index] => [snapshot bytes]
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey(index), val)
	})
}

// dbLastIndex scans the snapshot keys. Keys are zero-padded, so the last one
// iterated is the highest index.
func (s *BadgerStore) dbLastIndex() (int, error) {
	last := -1
	prefix := []byte(snapshotPrefix + "_")

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			k := string(it.Item().KeyCopy(nil))
			index, err := strconv.Atoi(strings.TrimPrefix(k, string(prefix)))
			if err != nil {
				return fmt.Errorf("malformed snapshot key %q: %v", k, err)
			}
			last = index
		}
		return nil
	})

	return last, err
}

func isDBKeyNotFound(err error) bool {
	return err == badger.ErrKeyNotFound
}

func mapError(err error, name, key string) error {
	if err != nil && isDBKeyNotFound(err) {
		return common.NewStoreErr(name, common.KeyNotFound, key)
	}
	return err
}
