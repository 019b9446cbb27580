package index

import (
	"testing"

	"github.com/steveyegge/witchql/internal/kverrors"
)

func TestUniqueHashRejectsDuplicateValue(t *testing.T) {
	ix := NewUniqueHash()
	if err := ix.InsertString("alice@example.com", "k1"); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err := ix.InsertString("alice@example.com", "k2")
	if err == nil {
		t.Fatal("expected IndexError on duplicate value, got nil")
	}
	if !kverrors.Is(err, kverrors.IndexConflict) {
		t.Fatalf("err kind = %v, want IndexConflict", err)
	}
	key, ok := ix.LookupUniqueString("alice@example.com")
	if !ok || key != "k1" {
		t.Fatalf("lookup after rejected duplicate = (%q, %v), want (k1, true)", key, ok)
	}
}

func TestNonUniqueHashAppendsInOrder(t *testing.T) {
	ix := NewNonUniqueHash()
	if err := ix.InsertString("engineering", "k1"); err != nil {
		t.Fatalf("insert k1: %v", err)
	}
	if err := ix.InsertString("engineering", "k2"); err != nil {
		t.Fatalf("insert k2: %v", err)
	}
	keys, ok := ix.LookupNonUniqueString("engineering")
	if !ok || len(keys) != 2 || keys[0] != "k1" || keys[1] != "k2" {
		t.Fatalf("lookup = %v, %v, want [k1 k2], true", keys, ok)
	}
}

func TestUniqueOrderedRangeBoundsInclusivity(t *testing.T) {
	ix := NewUniqueOrdered()
	for v, k := range map[int64]string{10: "a", 20: "b", 30: "c", 40: "d"} {
		if err := ix.InsertNumber(v, k); err != nil {
			t.Fatalf("insert %d: %v", v, err)
		}
	}

	got := ix.Range(20, 30, true, true)
	if !equalKeySets(got, []string{"b", "c"}) {
		t.Errorf("Range(20,30,incl,incl) = %v, want [b c]", got)
	}

	got = ix.Range(20, 30, false, true)
	if !equalKeySets(got, []string{"c"}) {
		t.Errorf("Range(20,30,excl,incl) = %v, want [c]", got)
	}

	got = ix.Range(20, 30, true, false)
	if !equalKeySets(got, []string{"b"}) {
		t.Errorf("Range(20,30,incl,excl) = %v, want [b]", got)
	}
}

func TestUniqueOrderedRejectsDuplicateValue(t *testing.T) {
	ix := NewUniqueOrdered()
	if err := ix.InsertNumber(5, "k1"); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := ix.InsertNumber(5, "k2"); err == nil {
		t.Fatal("expected IndexError on duplicate numeric value, got nil")
	}
}

func TestRemoveAbsentEntryIsNoOp(t *testing.T) {
	ix := NewUniqueHash()
	ix.RemoveString("never-inserted", "k1") // must not panic

	ordered := NewUniqueOrdered()
	ordered.RemoveNumber(999) // must not panic

	nonUnique := NewNonUniqueHash()
	nonUnique.RemoveString("never-inserted", "k1") // must not panic
}

func TestRemoveThenReinsertIsIdempotent(t *testing.T) {
	ix := NewUniqueHash()
	if err := ix.InsertString("bob@example.com", "k1"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	ix.RemoveString("bob@example.com", "k1")
	if _, ok := ix.LookupUniqueString("bob@example.com"); ok {
		t.Fatal("value still present after remove")
	}
	if err := ix.InsertString("bob@example.com", "k2"); err != nil {
		t.Fatalf("reinsert after remove: %v", err)
	}
	key, ok := ix.LookupUniqueString("bob@example.com")
	if !ok || key != "k2" {
		t.Fatalf("lookup after reinsert = (%q, %v), want (k2, true)", key, ok)
	}
}

func TestTypeMismatchedOperationsAreNoOps(t *testing.T) {
	hash := NewUniqueHash()
	if err := hash.InsertNumber(1, "k1"); err != nil {
		t.Fatalf("InsertNumber on UniqueHash should be a silent no-op, got error: %v", err)
	}
	if hash.Len() != 0 {
		t.Fatalf("Len() = %d after mismatched InsertNumber, want 0", hash.Len())
	}

	ordered := NewUniqueOrdered()
	if err := ordered.InsertString("x", "k1"); err != nil {
		t.Fatalf("InsertString on UniqueOrdered should be a silent no-op, got error: %v", err)
	}
	if ordered.Len() != 0 {
		t.Fatalf("Len() = %d after mismatched InsertString, want 0", ordered.Len())
	}
}

func equalKeySets(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	seen := map[string]bool{}
	for _, k := range got {
		seen[k] = true
	}
	for _, k := range want {
		if !seen[k] {
			return false
		}
	}
	return true
}
