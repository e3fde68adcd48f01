package index

import (
	"testing"
)

func TestApplyAndLookup(t *testing.T) {
	ix := New()
	ix.Apply(1, 100)
	ix.Apply(2, 50)
	ix.Apply(3, 150)
	ix.Apply(4, 100) // duplicate keys are legal

	if ix.Len() != 4 {
		t.Fatalf("len=%d, want 4", ix.Len())
	}
	if ix.LastSeq() != 4 {
		t.Fatalf("lastSeq=%d, want 4", ix.LastSeq())
	}
	if _, ok := ix.Lookup(100); !ok {
		t.Error("expected 100 present")
	}
	if _, ok := ix.Lookup(99); ok {
		t.Error("expected 99 absent")
	}
	if err := ix.Validate(); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}

func TestSnapshotEntriesAscending(t *testing.T) {
	ix := New()
	for i, k := range []int64{30, 10, 20, 20} {
		ix.Apply(uint64(i+1), k)
	}
	entries := ix.SnapshotEntries()
	want := []int64{10, 20, 20, 30}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(entries), len(want))
	}
	for i, e := range entries {
		if e.Key != want[i] {
			t.Fatalf("entries[%d].Key=%d, want %d", i, e.Key, want[i])
		}
	}
}

func TestMinMaxAndClear(t *testing.T) {
	ix := New()
	if _, ok := ix.Min(); ok {
		t.Error("min on empty index")
	}
	ix.Apply(1, 5)
	ix.Apply(2, -3)
	ix.Apply(3, 9)

	if k, _ := ix.Min(); k != -3 {
		t.Errorf("min=%d, want -3", k)
	}
	if k, _ := ix.Max(); k != 9 {
		t.Errorf("max=%d, want 9", k)
	}

	ix.Clear()
	if ix.Len() != 0 || ix.LastSeq() != 0 {
		t.Fatal("clear did not reset state")
	}
}
