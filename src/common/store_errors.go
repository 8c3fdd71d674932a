package common

import "fmt"

// StoreErrType enumerates the failure modes of the diagnostic stores.
type StoreErrType uint32

const (
	// KeyNotFound is returned when nothing is stored under a key.
	KeyNotFound StoreErrType = iota
	// TooLate is returned when an item has been evicted from a rolling cache.
	TooLate
	// SkippedIndex is returned when a write would leave a gap in an index.
	SkippedIndex
	// Empty is returned when a store holds no items at all.
	Empty
	// Closed is returned when a store is used after Close.
	Closed
)

// StoreErr is the error type returned by stores. It records the kind of
// data, the key, and the failure mode.
type StoreErr struct {
	dataType string
	errType  StoreErrType
	key      string
}

// NewStoreErr ...
func NewStoreErr(dataType string, errType StoreErrType, key string) StoreErr {
	return StoreErr{
		dataType: dataType,
		errType:  errType,
		key:      key,
	}
}

// Error implements the error interface.
func (e StoreErr) Error() string {
	m := ""
	switch e.errType {
	case KeyNotFound:
		m = "Not Found"
	case TooLate:
		m = "Too Late"
	case SkippedIndex:
		m = "Skipped Index"
	case Empty:
		m = "Empty"
	case Closed:
		m = "Closed"
	}

	return fmt.Sprintf("%s, %s, %s", e.dataType, e.key, m)
}

// IsStore checks that an error is of type StoreErr and that its code matches
// the provided StoreErr code.
func IsStore(err error, t StoreErrType) bool {
	storeErr, ok := err.(StoreErr)
	return ok && storeErr.errType == t
}
