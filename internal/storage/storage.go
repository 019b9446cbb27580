// Package storage implements the Database/Storage engine: named storages
// holding string values keyed by unique identifiers, each maintaining a
// set of secondary indexes kept consistent on every write.
//
// Database embeds sync.Mutex directly rather than wrapping it, mirroring
// how the original embeds the database value inside an Arc<Mutex<..>>:
// callers (the query facade, the CLI) are expected to Lock/Unlock once
// around an entire operation or query pipeline. The exported methods here
// do not lock internally — they assume the caller already holds the lock.
package storage

import (
	"encoding/json"
	"sync"

	"github.com/steveyegge/witchql/internal/index"
	"github.com/steveyegge/witchql/internal/kverrors"
)

// FieldType names the typed value an index expects from a JSON field.
type FieldType int

const (
	FieldString FieldType = iota
	FieldNumber
)

// Storage is a single named KV container with its own secondary indexes.
type Storage struct {
	name    string
	data    map[string]string
	indexes *index.List
	// fieldTypes records, for each index name, whether it expects a
	// string or numeric field value, since index.Index itself doesn't
	// expose its own Kind as a FieldType.
	fieldTypes map[string]FieldType
}

func newStorage(name string) *Storage {
	return &Storage{
		name:       name,
		data:       map[string]string{},
		indexes:    index.NewList(),
		fieldTypes: map[string]FieldType{},
	}
}

// Database owns an ordered collection of Storages keyed by unique name.
type Database struct {
	sync.Mutex

	storages []*Storage
	byName   map[string]*Storage
}

// New builds an empty Database.
func New() *Database {
	return &Database{byName: map[string]*Storage{}}
}

func (db *Database) storage(name string) (*Storage, error) {
	s, ok := db.byName[name]
	if !ok {
		return nil, kverrors.NewStorage("storage %q does not exist", name)
	}
	return s, nil
}

// CreateStorage adds a new, empty storage under name.
func (db *Database) CreateStorage(name string) error {
	if _, exists := db.byName[name]; exists {
		return kverrors.NewStorage("storage %q already exists", name)
	}
	s := newStorage(name)
	db.storages = append(db.storages, s)
	db.byName[name] = s
	return nil
}

// DeleteStorage removes the storage under name. Deleting an absent
// storage is a silent no-op.
func (db *Database) DeleteStorage(name string) {
	if _, exists := db.byName[name]; !exists {
		return
	}
	delete(db.byName, name)
	for i, s := range db.storages {
		if s.name == name {
			db.storages = append(db.storages[:i], db.storages[i+1:]...)
			break
		}
	}
}

// Get returns the value stored under key in storage.
func (db *Database) Get(storage, key string) (string, error) {
	s, err := db.storage(storage)
	if err != nil {
		return "", err
	}
	v, ok := s.data[key]
	if !ok {
		return "", kverrors.NewKeyNotFound(key)
	}
	return v, nil
}

// fieldMutation records one already-applied index write, so it can be
// rolled back if a later field in the same operation fails.
type fieldMutation struct {
	ix     *index.Index
	kind   index.Kind
	key    string
	str    string
	num    int64
	isNum  bool
	ixName string
}

// collectMutations builds, but does not apply, the set of index writes
// implied by fields against every index registered on s.
func collectMutations(s *Storage, key string, fields map[string]any) []fieldMutation {
	var muts []fieldMutation
	for _, name := range s.indexes.Names() {
		ix, ok := s.indexes.Get(name)
		if !ok {
			continue
		}
		raw, present := fields[name]
		if !present {
			continue
		}
		switch ft := s.fieldTypes[name]; ft {
		case FieldString:
			if str, ok := raw.(string); ok {
				muts = append(muts, fieldMutation{ix: ix, kind: ix.Kind(), key: key, str: str, ixName: name})
			}
		case FieldNumber:
			if n, ok := asInt64(raw); ok {
				muts = append(muts, fieldMutation{ix: ix, kind: ix.Kind(), key: key, num: n, isNum: true, ixName: name})
			}
		}
	}
	return muts
}

// applyMutations inserts each mutation's entry into its index in order,
// stopping and returning the applied prefix on the first failure so the
// caller can roll it back.
func applyMutations(muts []fieldMutation) ([]fieldMutation, error) {
	for i, m := range muts {
		var err error
		if m.isNum {
			err = m.ix.InsertNumber(m.num, m.key)
		} else {
			err = m.ix.InsertString(m.str, m.key)
		}
		if err != nil {
			return muts[:i], err
		}
	}
	return muts, nil
}

// undoMutations removes every already-applied mutation's index entry.
func undoMutations(muts []fieldMutation) {
	for _, m := range muts {
		if m.isNum {
			m.ix.RemoveNumber(m.num)
		} else {
			m.ix.RemoveString(m.str, m.key)
		}
	}
}

// Insert adds a new (key, value) record to storage, indexing any
// top-level JSON field of value that matches a registered index. On the
// first unique-constraint violation neither the KV entry nor any index
// entry is written.
func (db *Database) Insert(storageName, key, value string) error {
	s, err := db.storage(storageName)
	if err != nil {
		return err
	}
	if _, exists := s.data[key]; exists {
		return kverrors.NewKeyAlreadyExists(key)
	}

	fields, _ := parseJSONObjectFields(value)
	muts := collectMutations(s, key, fields)
	applied, err := applyMutations(muts)
	if err != nil {
		undoMutations(applied)
		return err
	}

	s.data[key] = value
	return nil
}

// Update replaces the value stored under key. Old index entries derived
// from the current value are removed first; new entries derived from
// newValue are then inserted. If any new index insertion fails, the old
// indexing is restored and the KV entry is left untouched.
func (db *Database) Update(storageName, key, newValue string) error {
	s, err := db.storage(storageName)
	if err != nil {
		return err
	}
	oldValue, exists := s.data[key]
	if !exists {
		return kverrors.NewKeyNotFound(key)
	}

	oldFields, _ := parseJSONObjectFields(oldValue)
	oldMuts := collectMutations(s, key, oldFields)
	undoMutations(oldMuts)

	newFields, _ := parseJSONObjectFields(newValue)
	newMuts := collectMutations(s, key, newFields)
	applied, err := applyMutations(newMuts)
	if err != nil {
		undoMutations(applied)
		if _, restoreErr := applyMutations(oldMuts); restoreErr != nil {
			return kverrors.NewIndex("update rollback failed restoring old index state: %v (original error: %v)", restoreErr, err)
		}
		return err
	}

	s.data[key] = newValue
	return nil
}

// Delete removes key's record and its derived index entries.
func (db *Database) Delete(storageName, key string) error {
	s, err := db.storage(storageName)
	if err != nil {
		return err
	}
	value, exists := s.data[key]
	if !exists {
		return kverrors.NewKeyNotFound(key)
	}

	fields, _ := parseJSONObjectFields(value)
	muts := collectMutations(s, key, fields)
	undoMutations(muts)

	delete(s.data, key)
	return nil
}

// CreateIndex allocates a new unique index of the given type on
// field_name and back-fills it from existing records. Non-unique index
// creation is rejected at this public boundary. On any back-fill
// violation the index is not installed.
func (db *Database) CreateIndex(storageName, fieldName string, fieldType FieldType, unique bool) error {
	if !unique {
		return kverrors.NewIndex("Non unique indexes are not supported")
	}
	s, err := db.storage(storageName)
	if err != nil {
		return err
	}

	var ix *index.Index
	switch fieldType {
	case FieldString:
		ix = index.NewUniqueHash()
	case FieldNumber:
		ix = index.NewUniqueOrdered()
	default:
		return kverrors.NewIndex("unknown field type")
	}

	var muts []fieldMutation
	for k, v := range s.data {
		fields, ok := parseJSONObjectFields(v)
		if !ok {
			continue
		}
		raw, present := fields[fieldName]
		if !present {
			continue
		}
		switch fieldType {
		case FieldString:
			if str, ok := raw.(string); ok {
				muts = append(muts, fieldMutation{ix: ix, key: k, str: str})
			}
		case FieldNumber:
			if n, ok := asInt64(raw); ok {
				muts = append(muts, fieldMutation{ix: ix, key: k, num: n, isNum: true})
			}
		}
	}

	if _, err := applyMutations(muts); err != nil {
		return err
	}

	s.indexes.Create(fieldName, ix)
	s.fieldTypes[fieldName] = fieldType
	return nil
}

// IndexFor returns the index registered under fieldName on storage, and
// whether it exists.
func (db *Database) IndexFor(storageName, fieldName string) (*index.Index, bool, error) {
	s, err := db.storage(storageName)
	if err != nil {
		return nil, false, err
	}
	ix, ok := s.indexes.Get(fieldName)
	return ix, ok, nil
}

// KV is one matched (key, value) record returned from an index search.
type KV struct {
	Key   string
	Value string
}

// StringIndexSearch iterates the given index, applying predicate to each
// indexed field value, and returns the (key, value) records whose keys
// appear in matching index entries, in the index's natural iteration
// order.
func (db *Database) StringIndexSearch(storageName string, ix *index.Index, predicate func(fieldValue string) bool) ([]KV, error) {
	s, err := db.storage(storageName)
	if err != nil {
		return nil, err
	}
	var out []KV
	ix.ForEachString(func(fieldValue string, keys []string) {
		if !predicate(fieldValue) {
			return
		}
		for _, k := range keys {
			if v, ok := s.data[k]; ok {
				out = append(out, KV{Key: k, Value: v})
			}
		}
	})
	return out, nil
}

// FullScan visits every (key, value) pair in storage.
func (db *Database) FullScan(storageName string, fn func(key, value string)) error {
	s, err := db.storage(storageName)
	if err != nil {
		return err
	}
	for k, v := range s.data {
		fn(k, v)
	}
	return nil
}

// parseJSONObjectFields parses value as a JSON object and returns its
// top-level fields. ok is false if value is not valid JSON or its
// top-level shape is not an object.
func parseJSONObjectFields(value string) (map[string]any, bool) {
	var raw any
	if err := json.Unmarshal([]byte(value), &raw); err != nil {
		return nil, false
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, false
	}
	return obj, true
}

// asInt64 reports whether v (a json.Unmarshal-produced float64) is an
// integral value representable as a signed 64-bit integer.
func asInt64(v any) (int64, bool) {
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	n := int64(f)
	if float64(n) != f {
		return 0, false
	}
	return n, true
}
