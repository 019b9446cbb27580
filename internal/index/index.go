// Package index implements the three secondary-index shapes a Storage can
// maintain on a field: a unique string hash index, a unique ordered
// (numeric) index, and a non-unique string hash index. Each Index is
// bound to exactly one of these shapes for its lifetime; type-mismatched
// operations (e.g. inserting a number into a string hash index) are
// silent no-ops, so the storage engine can iterate every indexed field
// on a record without branching on index kind first.
package index

import (
	"github.com/google/btree"

	"github.com/steveyegge/witchql/internal/kverrors"
)

// Kind identifies which of the three index shapes an Index holds.
type Kind int

const (
	UniqueHash Kind = iota
	UniqueOrdered
	NonUniqueHash
)

func (k Kind) String() string {
	switch k {
	case UniqueHash:
		return "UniqueHash"
	case UniqueOrdered:
		return "UniqueOrdered"
	case NonUniqueHash:
		return "NonUniqueHash"
	default:
		return "Unknown"
	}
}

// orderedEntry is the btree.Item backing UniqueOrdered. Ties never occur
// in practice because the index is unique on value, but Less is defined
// purely on value so lookups/deletes only need a value to build a probe.
type orderedEntry struct {
	value int64
	key   string
}

func (e *orderedEntry) Less(than btree.Item) bool {
	return e.value < than.(*orderedEntry).value
}

// Index is a single secondary index bound to one field and one value
// type for its lifetime.
type Index struct {
	kind Kind

	uniqueHash map[string]string   // UniqueHash: field value -> key
	nonUnique  map[string][]string // NonUniqueHash: field value -> keys, insertion order
	ordered    *btree.BTree        // UniqueOrdered: numeric value -> key
}

// NewUniqueHash builds an empty UniqueHash index.
func NewUniqueHash() *Index {
	return &Index{kind: UniqueHash, uniqueHash: map[string]string{}}
}

// NewUniqueOrdered builds an empty UniqueOrdered index, backed by a
// B-tree so range queries stay ordered without re-sorting on every call.
func NewUniqueOrdered() *Index {
	return &Index{kind: UniqueOrdered, ordered: btree.New(32)}
}

// NewNonUniqueHash builds an empty NonUniqueHash index.
func NewNonUniqueHash() *Index {
	return &Index{kind: NonUniqueHash, nonUnique: map[string][]string{}}
}

// Kind reports which shape this index is.
func (ix *Index) Kind() Kind {
	return ix.kind
}

// InsertString records key under fieldValue. On UniqueHash it fails if
// fieldValue is already present. On NonUniqueHash it appends. On
// UniqueOrdered (a type mismatch) it is a silent no-op.
func (ix *Index) InsertString(fieldValue, key string) error {
	switch ix.kind {
	case UniqueHash:
		if _, exists := ix.uniqueHash[fieldValue]; exists {
			return kverrors.NewIndex("unique index already contains value %q", fieldValue)
		}
		ix.uniqueHash[fieldValue] = key
	case NonUniqueHash:
		ix.nonUnique[fieldValue] = append(ix.nonUnique[fieldValue], key)
	}
	return nil
}

// InsertNumber records key under fieldValue on a UniqueOrdered index,
// failing if fieldValue is already present. On other shapes it is a
// silent no-op.
func (ix *Index) InsertNumber(fieldValue int64, key string) error {
	if ix.kind != UniqueOrdered {
		return nil
	}
	if ix.ordered.Has(&orderedEntry{value: fieldValue}) {
		return kverrors.NewIndex("unique index already contains value %d", fieldValue)
	}
	ix.ordered.ReplaceOrInsert(&orderedEntry{value: fieldValue, key: key})
	return nil
}

// RemoveString removes key's entry under fieldValue. Removing an absent
// entry is a silent no-op; deletes are idempotent at the index level.
func (ix *Index) RemoveString(fieldValue, key string) {
	switch ix.kind {
	case UniqueHash:
		delete(ix.uniqueHash, fieldValue)
	case NonUniqueHash:
		keys := ix.nonUnique[fieldValue]
		for i, k := range keys {
			if k == key {
				keys = append(keys[:i], keys[i+1:]...)
				break
			}
		}
		if len(keys) == 0 {
			delete(ix.nonUnique, fieldValue)
		} else {
			ix.nonUnique[fieldValue] = keys
		}
	}
}

// RemoveNumber removes the entry under fieldValue on a UniqueOrdered
// index. Removing an absent entry is a silent no-op.
func (ix *Index) RemoveNumber(fieldValue int64) {
	if ix.kind != UniqueOrdered {
		return
	}
	ix.ordered.Delete(&orderedEntry{value: fieldValue})
}

// LookupUniqueString returns the key stored under fieldValue on a
// UniqueHash index. ok is false on any other index shape or absent value.
func (ix *Index) LookupUniqueString(fieldValue string) (key string, ok bool) {
	if ix.kind != UniqueHash {
		return "", false
	}
	key, ok = ix.uniqueHash[fieldValue]
	return key, ok
}

// LookupNonUniqueString returns the keys stored under fieldValue on a
// NonUniqueHash index. ok is false on any other index shape or absent
// value.
func (ix *Index) LookupNonUniqueString(fieldValue string) (keys []string, ok bool) {
	if ix.kind != NonUniqueHash {
		return nil, false
	}
	keys, ok = ix.nonUnique[fieldValue]
	return keys, ok
}

// Range returns keys whose numeric value falls within [lo, hi], honoring
// the given inclusivity at each bound, in ascending numeric order. Only
// meaningful on a UniqueOrdered index; nil on any other shape.
func (ix *Index) Range(lo, hi int64, loInclusive, hiInclusive bool) []string {
	if ix.kind != UniqueOrdered {
		return nil
	}
	var keys []string
	ix.ordered.AscendGreaterOrEqual(&orderedEntry{value: lo}, func(item btree.Item) bool {
		e := item.(*orderedEntry)
		if e.value == lo && !loInclusive {
			return true
		}
		if e.value > hi || (e.value == hi && !hiInclusive) {
			return false
		}
		keys = append(keys, e.key)
		return true
	})
	return keys
}

// ForEachString visits every (fieldValue, keys) pair in natural iteration
// order for UniqueHash and NonUniqueHash indexes. No-op on UniqueOrdered.
func (ix *Index) ForEachString(fn func(fieldValue string, keys []string)) {
	switch ix.kind {
	case UniqueHash:
		for v, k := range ix.uniqueHash {
			fn(v, []string{k})
		}
	case NonUniqueHash:
		for v, ks := range ix.nonUnique {
			fn(v, ks)
		}
	}
}

// Len reports the number of distinct field values currently indexed.
func (ix *Index) Len() int {
	switch ix.kind {
	case UniqueHash:
		return len(ix.uniqueHash)
	case NonUniqueHash:
		return len(ix.nonUnique)
	case UniqueOrdered:
		return ix.ordered.Len()
	default:
		return 0
	}
}
