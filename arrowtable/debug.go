//go:build arrowtable_debug

package arrowtable

import "fmt"

// checkInvariants walks the table's structural invariants (key count,
// window occupancy, window exclusivity, and window contiguity) and
// panics on the first violation found. Search, Insert, and Delete all
// call it on return. It costs O(capacity) per call, so this version is
// compiled in only under the arrowtable_debug build tag; see
// debug_off.go for the no-op production stub.
func (t *Table[K, V]) checkInvariants() {
	occupied := 0
	owner := make([]int, t.capacity)
	for i := range owner {
		owner[i] = -1
	}

	for h, w := range t.windows {
		if w.len() == 0 {
			if w.start != 0 || w.end != 0 {
				panic(fmt.Sprintf("arrowtable: bucket %d has empty but non-canonical window %+v", h, w))
			}
			continue
		}
		for o := w.start; o < w.end; o++ {
			idx := (h + o) % t.capacity
			e := t.entries[idx]
			if !e.occupied {
				panic(fmt.Sprintf("arrowtable: bucket %d window %+v covers empty slot %d", h, w, idx))
			}
			if t.home(e.hash) != h {
				panic(fmt.Sprintf("arrowtable: slot %d in bucket %d's window belongs to home %d", idx, h, t.home(e.hash)))
			}
			if owner[idx] != -1 {
				panic(fmt.Sprintf("arrowtable: slot %d claimed by both bucket %d and bucket %d", idx, owner[idx], h))
			}
			owner[idx] = h
		}
	}

	for i, e := range t.entries {
		if e.occupied {
			occupied++
			if owner[i] == -1 {
				panic(fmt.Sprintf("arrowtable: occupied slot %d is not covered by any window", i))
			}
		}
	}
	if occupied != t.length {
		panic(fmt.Sprintf("arrowtable: length %d does not match occupied slot count %d", t.length, occupied))
	}
}
