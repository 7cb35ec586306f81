package arrowtable

import "testing"

func identityHash(k int) uint64 { return uint64(k) }
func intEqual(a, b int) bool    { return a == b }

func newIntTable(t *testing.T, capacity int) *Table[int, int] {
	t.Helper()
	tbl, err := New[int, int](capacity, identityHash, intEqual)
	if err != nil {
		t.Fatalf("New(%d): %v", capacity, err)
	}
	return tbl
}

// checkInvariants walks I1-I4 directly against the unexported fields,
// independent of the arrowtable_debug build tag.
func checkInvariants[K any, V any](t *testing.T, tbl *Table[K, V]) {
	t.Helper()
	owner := make([]int, tbl.capacity)
	for i := range owner {
		owner[i] = -1
	}
	for h, w := range tbl.windows {
		if w.len() == 0 {
			if w.start != 0 || w.end != 0 {
				t.Fatalf("bucket %d: empty window not canonical: %+v", h, w)
			}
			continue
		}
		for o := w.start; o < w.end; o++ {
			idx := (h + o) % tbl.capacity
			e := tbl.entries[idx]
			if !e.occupied {
				t.Fatalf("bucket %d window %+v covers empty slot %d", h, w, idx)
			}
			if tbl.home(e.hash) != h {
				t.Fatalf("slot %d in bucket %d's window has home %d", idx, h, tbl.home(e.hash))
			}
			if owner[idx] != -1 {
				t.Fatalf("slot %d claimed by bucket %d and bucket %d", idx, owner[idx], h)
			}
			owner[idx] = h
		}
	}
	occupied := 0
	for i, e := range tbl.entries {
		if e.occupied {
			occupied++
			if owner[i] == -1 {
				t.Fatalf("occupied slot %d not covered by any window", i)
			}
		}
	}
	if occupied != tbl.length {
		t.Fatalf("length %d != occupied slots %d", tbl.length, occupied)
	}
}

func TestNewRejectsNonPositiveCapacity(t *testing.T) {
	if _, err := New[int, int](0, identityHash, intEqual); err != ErrInvalidCapacity {
		t.Fatalf("New(0): got err %v, want ErrInvalidCapacity", err)
	}
	if _, err := New[int, int](-1, identityHash, intEqual); err != ErrInvalidCapacity {
		t.Fatalf("New(-1): got err %v, want ErrInvalidCapacity", err)
	}
}

func TestFullTableNoCollisions(t *testing.T) {
	tbl := newIntTable(t, 100)
	for i := 0; i < 100; i++ {
		if _, had, err := tbl.Insert(i, i*10); err != nil || had {
			t.Fatalf("Insert(%d): had=%v err=%v", i, had, err)
		}
	}
	if tbl.Len() != 100 {
		t.Fatalf("Len() = %d, want 100", tbl.Len())
	}
	for i := 0; i < 100; i++ {
		v, ok := tbl.Search(i)
		if !ok || v != i*10 {
			t.Fatalf("Search(%d) = %d, %v; want %d, true", i, v, ok, i*10)
		}
		w := tbl.windows[i]
		if w.start != 0 || w.end != 1 {
			t.Fatalf("windows[%d] = %+v, want (0,1)", i, w)
		}
	}
	checkInvariants(t, tbl)
}

func TestOverwrite(t *testing.T) {
	tbl, err := New[int, string](100, identityHash, intEqual)
	if err != nil {
		t.Fatal(err)
	}
	if _, had, err := tbl.Insert(1, "A"); err != nil || had {
		t.Fatalf("Insert(1,A): had=%v err=%v", had, err)
	}
	prev, had, err := tbl.Insert(1, "B")
	if err != nil || !had || prev != "A" {
		t.Fatalf("Insert(1,B) = %q, %v, %v; want A, true, nil", prev, had, err)
	}
	v, ok := tbl.Search(1)
	if !ok || v != "B" {
		t.Fatalf("Search(1) = %q, %v; want B, true", v, ok)
	}
	if tbl.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tbl.Len())
	}
	w := tbl.windows[1%100]
	if w.start != 0 || w.end != 1 {
		t.Fatalf("windows[1] = %+v, want (0,1)", w)
	}
	checkInvariants(t, tbl)
}

func TestFillAndEmpty(t *testing.T) {
	tbl, err := New[int, string](100, identityHash, intEqual)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		if _, _, err := tbl.Insert(i, "A"); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}
	checkInvariants(t, tbl)
	for i := 0; i < 100; i++ {
		if _, ok := tbl.Delete(i); !ok {
			t.Fatalf("Delete(%d): not found", i)
		}
	}
	if tbl.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", tbl.Len())
	}
	for i, e := range tbl.entries {
		if e.occupied {
			t.Fatalf("slot %d still occupied after draining table", i)
		}
	}
	checkInvariants(t, tbl)
}

func TestInsertFullReturnsErrFullUnchanged(t *testing.T) {
	tbl := newIntTable(t, 4)
	for i := 0; i < 4; i++ {
		if _, _, err := tbl.Insert(i, i); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}
	before := tbl.Len()
	beforeEntries := append([]entry[int, int]{}, tbl.entries...)
	beforeWindows := append([]window{}, tbl.windows...)

	if _, _, err := tbl.Insert(100, 100); err != ErrFull {
		t.Fatalf("Insert into full table: err = %v, want ErrFull", err)
	}
	if tbl.Len() != before {
		t.Fatalf("Len() changed after failed insert: %d -> %d", before, tbl.Len())
	}
	for i := range tbl.entries {
		if tbl.entries[i] != beforeEntries[i] {
			t.Fatalf("slot %d mutated by failed insert", i)
		}
		if tbl.windows[i] != beforeWindows[i] {
			t.Fatalf("window %d mutated by failed insert", i)
		}
	}
}

func TestDeleteIdempotent(t *testing.T) {
	tbl := newIntTable(t, 10)
	tbl.Insert(1, 11)
	v1, ok1 := tbl.Delete(1)
	v2, ok2 := tbl.Delete(1)
	if ok1 != true || v1 != 11 {
		t.Fatalf("first Delete(1) = %d, %v; want 11, true", v1, ok1)
	}
	if ok2 != false || v2 != 0 {
		t.Fatalf("second Delete(1) = %d, %v; want 0, false", v2, ok2)
	}
	checkInvariants(t, tbl)
}

func TestOverwriteNeutrality(t *testing.T) {
	tbl := newIntTable(t, 50)
	tbl.Insert(7, 1)
	lenAfterFirst := tbl.Len()
	tbl.Insert(7, 2)
	if tbl.Len() != lenAfterFirst {
		t.Fatalf("Len() changed on overwrite: %d -> %d", lenAfterFirst, tbl.Len())
	}
	v, ok := tbl.Search(7)
	if !ok || v != 2 {
		t.Fatalf("Search(7) = %d, %v; want 2, true", v, ok)
	}
}

func TestSearchAbsentOnEmptyTable(t *testing.T) {
	tbl := newIntTable(t, 10)
	if _, ok := tbl.Search(42); ok {
		t.Fatalf("Search(42) on empty table found a value")
	}
	if _, ok := tbl.Delete(42); ok {
		t.Fatalf("Delete(42) on empty table reported found")
	}
}
