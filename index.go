package lifedb

import (
	"slices"
	"strings"
)

// Locate finds key in items, which must be sorted ascending according to
// compare. compare(key, item) returns a negative number when key sorts before
// item, zero when they are equal, and a positive number otherwise.
//
// If found, Locate returns the 1-based position of the item (always positive).
// Otherwise it returns the negated 1-based position the key would occupy,
// so a single sign check tells the two cases apart.
func Locate[T, K any](items []T, key K, compare func(key K, item T) int) int {
	low, high := 0, len(items)-1
	for low <= high {
		mid := (low + high) / 2
		c := compare(key, items[mid])
		if c == 0 {
			return mid + 1
		}
		if c > 0 {
			low = mid + 1
		} else {
			high = mid - 1
		}
	}
	return -(low + 1)
}

// LocateKey is Locate over records using ordinal (byte-wise) key comparison.
func LocateKey[R Record](records []R, key string) int {
	return Locate(records, key, compareKey[R])
}

func compareKey[R Record](key string, r R) int {
	return strings.Compare(key, r.RecordKey())
}

// orderedIndex is the sorted in-memory view of a store's records. It is not
// safe for concurrent use; Store guards it.
type orderedIndex[R Record] struct {
	items []R
}

func (idx *orderedIndex[R]) locate(key string) int {
	return LocateKey(idx.items, key)
}

func (idx *orderedIndex[R]) get(key string) (R, bool) {
	pos := idx.locate(key)
	if pos <= 0 {
		var zero R
		return zero, false
	}
	return idx.items[pos-1], true
}

// insertAt splices r in at the insertion point returned by locate.
func (idx *orderedIndex[R]) insertAt(pos int, r R) {
	if pos > 0 {
		panic("insertAt: key already present")
	}
	idx.items = slices.Insert(idx.items, -pos-1, r)
}

func (idx *orderedIndex[R]) replaceAt(pos int, r R) {
	idx.items[pos-1] = r
}

func (idx *orderedIndex[R]) removeAt(pos int) R {
	r := idx.items[pos-1]
	idx.items = slices.Delete(idx.items, pos-1, pos)
	return r
}

func (idx *orderedIndex[R]) len() int {
	return len(idx.items)
}

func (idx *orderedIndex[R]) records() []R {
	return slices.Clone(idx.items)
}

func (idx *orderedIndex[R]) keys() []string {
	keys := make([]string, len(idx.items))
	for i, r := range idx.items {
		keys[i] = r.RecordKey()
	}
	return keys
}

func (idx *orderedIndex[R]) reset() {
	clear(idx.items)
	idx.items = idx.items[:0]
}

// load replaces the contents with records, which arrive in arbitrary order.
// Duplicate keys keep the last occurrence.
func (idx *orderedIndex[R]) load(records []R) {
	idx.reset()
	for _, r := range records {
		pos := idx.locate(r.RecordKey())
		if pos > 0 {
			idx.replaceAt(pos, r)
		} else {
			idx.insertAt(pos, r)
		}
	}
}
