package common

import "strconv"

// RollingIndex keeps the most recent items of a gapless index. It holds
// between size and 2*size items; when full, the oldest size items are dropped
// at once.
type RollingIndex[T any] struct {
	name      string
	size      int
	lastIndex int
	items     []T
}

// NewRollingIndex ...
func NewRollingIndex[T any](name string, size int) *RollingIndex[T] {
	return &RollingIndex[T]{
		name:      name,
		size:      size,
		items:     make([]T, 0, 2*size),
		lastIndex: -1,
	}
}

// LastIndex returns the index of the newest item, or -1.
func (r *RollingIndex[T]) LastIndex() int {
	return r.lastIndex
}

// GetItem returns the item at index. It fails with TooLate if the item was
// rolled out, and KeyNotFound if it was never set.
func (r *RollingIndex[T]) GetItem(index int) (T, error) {
	var zero T
	items := len(r.items)
	oldestCached := r.lastIndex - items + 1
	if index < oldestCached {
		return zero, NewStoreErr(r.name, TooLate, strconv.Itoa(index))
	}
	findex := index - oldestCached
	if findex >= items {
		return zero, NewStoreErr(r.name, KeyNotFound, strconv.Itoa(index))
	}
	return r.items[findex], nil
}

// Set appends an item at lastIndex+1 or replaces a cached one.
func (r *RollingIndex[T]) Set(item T, index int) error {
	//only allow setting items with index <= lastIndex + 1 so we may assume
	//there are no gaps between items
	if index < 0 || (0 <= r.lastIndex && index > r.lastIndex+1) {
		return NewStoreErr(r.name, SkippedIndex, strconv.Itoa(index))
	}

	//adding a new item
	if r.lastIndex < 0 || (index == r.lastIndex+1) {
		if len(r.items) >= 2*r.size {
			r.Roll()
		}
		r.items = append(r.items, item)
		r.lastIndex = index
		return nil
	}

	cachedItems := len(r.items)
	oldestCachedIndex := r.lastIndex - cachedItems + 1

	if index < oldestCachedIndex {
		return NewStoreErr(r.name, TooLate, strconv.Itoa(index))
	}

	//replacing existing item
	r.items[index-oldestCachedIndex] = item

	return nil
}

// Roll drops the oldest size items.
func (r *RollingIndex[T]) Roll() {
	newList := make([]T, 0, 2*r.size)
	newList = append(newList, r.items[r.size:]...)
	r.items = newList
}
