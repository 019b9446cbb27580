// Package vm implements the register-less, stack-shaped Query VM: a
// linear instruction list produced by the code generator, executed
// against a storage.Database to produce an ordered output of values and
// an EXPLAIN trace of the steps taken.
package vm

import (
	"time"

	"github.com/steveyegge/witchql/internal/index"
	"github.com/steveyegge/witchql/internal/kverrors"
	"github.com/steveyegge/witchql/internal/storage"
)

// Predicate is a captured-by-value boolean function over (key, value)
// produced by the code generator from a WHERE tree.
type Predicate func(key, value string) bool

// FieldConstant is one (column, literal) equality pair extracted by the
// code generator's scan-hint walker, split by literal type at the call
// site (string constants and number constants travel in separate
// slices).
type FieldConstant struct {
	Column string
	Str    string
	Num    int64
}

// Instruction is one opcode in the VM's linear program.
type Instruction interface {
	exec(v *VM, db *storage.Database) error
}

// VM holds the state threaded through one query's execution: the bound
// storage name, the accumulating output, and the EXPLAIN trace.
type VM struct {
	storageName *string
	output      []string
	explain     []ExplainStep
}

// New builds an empty VM ready to execute an instruction list.
func New() *VM {
	return &VM{}
}

func (v *VM) requireStorage() (string, error) {
	if v.storageName == nil {
		return "", kverrors.NewExecution("no storage selected")
	}
	return *v.storageName, nil
}

// Execute runs instructions in order against db, stopping at the first
// error. It returns the EXPLAIN trace accumulated up to that point.
func (v *VM) Execute(db *storage.Database, instructions []Instruction) ([]ExplainStep, error) {
	for _, instr := range instructions {
		if err := instr.exec(v, db); err != nil {
			return v.explain, err
		}
	}
	return v.explain, nil
}

// Output returns the VM's current output sequence.
func (v *VM) Output() []string {
	return v.output
}

// --- UseStorage ---

type UseStorage struct {
	Name string
}

func (i UseStorage) exec(v *VM, db *storage.Database) error {
	name := i.Name
	v.storageName = &name
	v.explain = append(v.explain, ExplainStep{Kind: ExplainSetStorage, Storage: name})
	return nil
}

// --- Get ---

type Get struct {
	Key string
}

func (i Get) exec(v *VM, db *storage.Database) error {
	name, err := v.requireStorage()
	if err != nil {
		return err
	}
	val, err := db.Get(name, i.Key)
	if err != nil {
		return err
	}
	v.output = append(v.output, val)
	return nil
}

// --- Set ---

type Set struct {
	Key   string
	Value string
}

func (i Set) exec(v *VM, db *storage.Database) error {
	name, err := v.requireStorage()
	if err != nil {
		return err
	}
	return db.Insert(name, i.Key, i.Value)
}

// --- GetJSONField ---

type GetJSONField struct {
	Key   string
	Field string
}

func (i GetJSONField) exec(v *VM, db *storage.Database) error {
	name, err := v.requireStorage()
	if err != nil {
		return err
	}
	val, err := db.Get(name, i.Key)
	if err != nil {
		return err
	}
	field, err := extractJSONField(val, i.Field)
	if err != nil {
		return err
	}
	v.output = append(v.output, field)
	return nil
}

// --- Scan ---

// Scan evaluates Predicate over a storage's records, choosing between an
// index-driven scan and a full scan based on which constant lists have
// matching indexes.
type Scan struct {
	Predicate       Predicate
	StringConstants []FieldConstant
	NumberConstants []FieldConstant
}

func (i Scan) exec(v *VM, db *storage.Database) error {
	name, err := v.requireStorage()
	if err != nil {
		return err
	}

	if len(i.StringConstants) > 0 && allStringFieldsIndexed(db, name, i.StringConstants) {
		return i.indexScan(v, db, name)
	}
	return i.fullScan(v, db, name)
}

func allStringFieldsIndexed(db *storage.Database, storageName string, constants []FieldConstant) bool {
	for _, c := range constants {
		ix, ok, err := db.IndexFor(storageName, c.Column)
		if err != nil || !ok || ix.Kind() != index.UniqueHash {
			return false
		}
	}
	return true
}

func (i Scan) indexScan(v *VM, db *storage.Database, storageName string) error {
	start := time.Now()

	seen := map[string]bool{}
	for _, c := range i.StringConstants {
		ix, ok, err := db.IndexFor(storageName, c.Column)
		if err != nil {
			return err
		}
		if !ok || ix.Kind() != index.UniqueHash {
			continue
		}
		literal := c.Str
		values, err := db.StringIndexSearch(storageName, ix, func(fieldValue string) bool {
			return fieldValue == literal
		})
		if err != nil {
			return err
		}
		for _, kv := range values {
			if seen[kv.Key] {
				continue
			}
			if i.Predicate(kv.Key, kv.Value) {
				seen[kv.Key] = true
				v.output = append(v.output, kv.Value)
			}
		}
	}

	v.explain = append(v.explain, ExplainStep{Kind: ExplainIndexScan, Duration: time.Since(start)})
	return nil
}

func (i Scan) fullScan(v *VM, db *storage.Database, storageName string) error {
	start := time.Now()

	err := db.FullScan(storageName, func(key, value string) {
		if i.Predicate(key, value) {
			v.output = append(v.output, value)
		}
	})
	if err != nil {
		return err
	}

	v.explain = append(v.explain, ExplainStep{Kind: ExplainFullScan, Duration: time.Since(start)})
	return nil
}

// --- MapOutput ---

type MapOutput struct {
	Fn func(string) string
}

func (i MapOutput) exec(v *VM, db *storage.Database) error {
	for idx, val := range v.output {
		v.output[idx] = i.Fn(val)
	}
	v.explain = append(v.explain, ExplainStep{Kind: ExplainMapOutput})
	return nil
}

// --- SortOutput ---

type SortOutput struct {
	Field string
}

func (i SortOutput) exec(v *VM, db *storage.Database) error {
	sortByStringifiedField(v.output, i.Field)
	v.explain = append(v.explain, ExplainStep{Kind: ExplainSortOutput})
	return nil
}

// --- SetLimit ---

type SetLimit struct {
	N int
}

func (i SetLimit) exec(v *VM, db *storage.Database) error {
	if i.N < len(v.output) {
		v.output = v.output[:i.N]
	}
	v.explain = append(v.explain, ExplainStep{Kind: ExplainLimit})
	return nil
}

// --- SetOffset ---

type SetOffset struct {
	N int
}

func (i SetOffset) exec(v *VM, db *storage.Database) error {
	if i.N >= len(v.output) {
		v.output = nil
	} else {
		v.output = v.output[i.N:]
	}
	v.explain = append(v.explain, ExplainStep{Kind: ExplainOffset})
	return nil
}
