package storage

import (
	"testing"

	"github.com/steveyegge/witchql/internal/kverrors"
)

// TestBasicInsertGet covers Scenario A.
func TestBasicInsertGet(t *testing.T) {
	db := New()
	if err := db.CreateStorage("people"); err != nil {
		t.Fatalf("CreateStorage: %v", err)
	}
	if err := db.Insert("people", "p1", `{"name":"John","age":30}`); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	got, err := db.Get("people", "p1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := `{"name":"John","age":30}`
	if got != want {
		t.Errorf("Get() = %q, want %q", got, want)
	}
}

func TestCreateStorageDuplicateFails(t *testing.T) {
	db := New()
	if err := db.CreateStorage("s"); err != nil {
		t.Fatalf("CreateStorage: %v", err)
	}
	err := db.CreateStorage("s")
	if !kverrors.Is(err, kverrors.Storage) {
		t.Fatalf("CreateStorage duplicate = %v, want StorageError", err)
	}
}

func TestDeleteStorageMissingIsNoOp(t *testing.T) {
	db := New()
	db.DeleteStorage("never-existed") // must not panic
}

// TestUniqueIndexRollbackOnViolation covers Scenario B.
func TestUniqueIndexRollbackOnViolation(t *testing.T) {
	db := New()
	if err := db.CreateStorage("u"); err != nil {
		t.Fatalf("CreateStorage: %v", err)
	}
	if err := db.CreateIndex("u", "email", FieldString, true); err != nil {
		t.Fatalf("CreateIndex: %v", err)
	}
	if err := db.Insert("u", "a", `{"email":"x@y"}`); err != nil {
		t.Fatalf("Insert a: %v", err)
	}
	err := db.Insert("u", "b", `{"email":"x@y"}`)
	if !kverrors.Is(err, kverrors.IndexConflict) {
		t.Fatalf("Insert b duplicate email = %v, want IndexError", err)
	}
	_, getErr := db.Get("u", "b")
	if !kverrors.Is(getErr, kverrors.KeyMissing) {
		t.Fatalf("Get(b) after rejected insert = %v, want KeyNotFound", getErr)
	}
}

func TestInsertDuplicateKeyFails(t *testing.T) {
	db := New()
	db.CreateStorage("s")
	db.Insert("s", "k1", `{"a":1}`)
	err := db.Insert("s", "k1", `{"a":2}`)
	if !kverrors.Is(err, kverrors.KeyDuplicate) {
		t.Fatalf("duplicate insert = %v, want KeyAlreadyExists", err)
	}
}

func TestUpdateRollsBackOnUniqueViolation(t *testing.T) {
	db := New()
	db.CreateStorage("u")
	if err := db.CreateIndex("u", "email", FieldString, true); err != nil {
		t.Fatalf("CreateIndex: %v", err)
	}
	if err := db.Insert("u", "a", `{"email":"a@x"}`); err != nil {
		t.Fatalf("insert a: %v", err)
	}
	if err := db.Insert("u", "b", `{"email":"b@x"}`); err != nil {
		t.Fatalf("insert b: %v", err)
	}

	err := db.Update("u", "b", `{"email":"a@x"}`)
	if !kverrors.Is(err, kverrors.IndexConflict) {
		t.Fatalf("Update to conflicting email = %v, want IndexError", err)
	}

	got, err := db.Get("u", "b")
	if err != nil {
		t.Fatalf("Get(b) after rolled-back update: %v", err)
	}
	if got != `{"email":"b@x"}` {
		t.Errorf("Get(b) after rolled-back update = %q, want original value", got)
	}

	ix, ok, err := db.IndexFor("u", "email")
	if err != nil || !ok {
		t.Fatalf("IndexFor(email): ok=%v err=%v", ok, err)
	}
	if key, ok := ix.LookupUniqueString("a@x"); !ok || key != "a" {
		t.Errorf("index for a@x after rollback = (%q, %v), want (a, true)", key, ok)
	}
	if key, ok := ix.LookupUniqueString("b@x"); !ok || key != "b" {
		t.Errorf("index for b@x after rollback = (%q, %v), want (b, true)", key, ok)
	}
}

func TestUpdateSucceedsAndReindexes(t *testing.T) {
	db := New()
	db.CreateStorage("u")
	if err := db.CreateIndex("u", "email", FieldString, true); err != nil {
		t.Fatalf("CreateIndex: %v", err)
	}
	db.Insert("u", "a", `{"email":"old@x"}`)

	if err := db.Update("u", "a", `{"email":"new@x"}`); err != nil {
		t.Fatalf("Update: %v", err)
	}

	ix, _, _ := db.IndexFor("u", "email")
	if _, ok := ix.LookupUniqueString("old@x"); ok {
		t.Error("old indexed value still present after update")
	}
	if key, ok := ix.LookupUniqueString("new@x"); !ok || key != "a" {
		t.Errorf("new indexed value = (%q, %v), want (a, true)", key, ok)
	}
}

func TestDeleteRemovesRecordAndIndexEntries(t *testing.T) {
	db := New()
	db.CreateStorage("u")
	db.CreateIndex("u", "email", FieldString, true)
	db.Insert("u", "a", `{"email":"a@x"}`)

	if err := db.Delete("u", "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := db.Get("u", "a"); !kverrors.Is(err, kverrors.KeyMissing) {
		t.Fatalf("Get after delete = %v, want KeyNotFound", err)
	}
	ix, _, _ := db.IndexFor("u", "email")
	if _, ok := ix.LookupUniqueString("a@x"); ok {
		t.Error("index entry survives delete")
	}
}

func TestDeleteMissingKeyFails(t *testing.T) {
	db := New()
	db.CreateStorage("s")
	err := db.Delete("s", "nope")
	if !kverrors.Is(err, kverrors.KeyMissing) {
		t.Fatalf("Delete missing key = %v, want KeyNotFound", err)
	}
}

func TestCreateIndexRejectsNonUnique(t *testing.T) {
	db := New()
	db.CreateStorage("s")
	err := db.CreateIndex("s", "name", FieldString, false)
	if !kverrors.Is(err, kverrors.IndexConflict) {
		t.Fatalf("CreateIndex(unique=false) = %v, want IndexError", err)
	}
}

func TestCreateIndexBackfillsExistingRecords(t *testing.T) {
	db := New()
	db.CreateStorage("s")
	db.Insert("s", "p1", `{"name":"N1"}`)
	db.Insert("s", "p2", `{"name":"N2"}`)

	if err := db.CreateIndex("s", "name", FieldString, true); err != nil {
		t.Fatalf("CreateIndex: %v", err)
	}
	ix, _, _ := db.IndexFor("s", "name")
	if key, ok := ix.LookupUniqueString("N1"); !ok || key != "p1" {
		t.Errorf("backfilled N1 = (%q, %v), want (p1, true)", key, ok)
	}
}

func TestCreateIndexBackfillFailsOnExistingDuplicate(t *testing.T) {
	db := New()
	db.CreateStorage("s")
	db.Insert("s", "p1", `{"name":"dup"}`)
	db.Insert("s", "p2", `{"name":"dup"}`)

	err := db.CreateIndex("s", "name", FieldString, true)
	if !kverrors.Is(err, kverrors.IndexConflict) {
		t.Fatalf("CreateIndex backfill with existing duplicates = %v, want IndexError", err)
	}
	if ok := func() bool { _, present, _ := db.IndexFor("s", "name"); return present }(); ok {
		t.Error("index was installed despite failed backfill")
	}
}

func TestFullScanVisitsEveryRecord(t *testing.T) {
	db := New()
	db.CreateStorage("s")
	db.Insert("s", "p1", `{"age":30}`)
	db.Insert("s", "p2", `{"age":25}`)

	seen := map[string]string{}
	if err := db.FullScan("s", func(key, value string) { seen[key] = value }); err != nil {
		t.Fatalf("FullScan: %v", err)
	}
	if len(seen) != 2 || seen["p1"] != `{"age":30}` || seen["p2"] != `{"age":25}` {
		t.Errorf("FullScan visited %v", seen)
	}
}
