package arrowtable

// entry is one slot: either empty (occupied == false) or holding a
// key/hash/value triple. The hash is cached so displacement never
// recomputes it.
type entry[K any, V any] struct {
	hash     uint64
	key      K
	value    V
	occupied bool
}

// window is the (start, end) offset pair of a home bucket: its keys
// occupy slots (home+start)..(home+end-1), mod capacity. start == end
// means the bucket currently owns no keys.
type window struct {
	start, end int
}

func (w window) len() int { return w.end - w.start }

// canonicalizeEmpty resets home's window to the zero value once it has
// shrunk to empty. (0,0) is the only empty form checkInvariants
// accepts, so every site that shrinks a window's start or end forward
// calls this afterward.
func (t *Table[K, V]) canonicalizeEmpty(home int) {
	w := &t.windows[home]
	if w.start == w.end {
		w.start, w.end = 0, 0
	}
}

// Table is a fixed-capacity arrow-windowed hash table. The zero value
// is not usable; construct one with New.
type Table[K any, V any] struct {
	capacity int
	entries  []entry[K, V]
	windows  []window
	length   int
	hash     func(K) uint64
	equal    func(K, K) bool
}

// New creates an empty table of the given capacity. hash must be a
// pure, deterministic function stable for the lifetime of any key
// stored in the table; equal must be a reflexive, symmetric,
// transitive equivalence over K.
func New[K any, V any](capacity int, hash func(K) uint64, equal func(K, K) bool) (*Table[K, V], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &Table[K, V]{
		capacity: capacity,
		entries:  make([]entry[K, V], capacity),
		windows:  make([]window, capacity),
		hash:     hash,
		equal:    equal,
	}, nil
}

// Len returns the number of keys currently stored.
func (t *Table[K, V]) Len() int {
	return t.length
}

// Cap returns the table's fixed capacity.
func (t *Table[K, V]) Cap() int {
	return t.capacity
}

// MaxWindowLen returns the length of the longest window across all
// home buckets. It costs O(capacity); callers use it for periodic
// monitoring snapshots, not on any hot path.
func (t *Table[K, V]) MaxWindowLen() int {
	max := 0
	for _, w := range t.windows {
		if l := w.len(); l > max {
			max = l
		}
	}
	return max
}

// DisplacedCount returns the number of stored entries that are not
// sitting in their own home slot, the entries a lookup must walk a
// window to reach rather than landing on directly. It costs
// O(capacity); callers use it for periodic monitoring snapshots, not
// on any hot path.
func (t *Table[K, V]) DisplacedCount() int {
	count := 0
	for i, e := range t.entries {
		if e.occupied && t.home(e.hash) != i {
			count++
		}
	}
	return count
}

func (t *Table[K, V]) home(hash uint64) int {
	return int(hash % uint64(t.capacity))
}

// findInWindow scans home bucket h's current window for a key equal to
// k, returning its slot index or -1.
func (t *Table[K, V]) findInWindow(h int, hash uint64, k K) int {
	w := t.windows[h]
	for o := w.start; o < w.end; o++ {
		idx := (h + o) % t.capacity
		e := &t.entries[idx]
		if e.occupied && e.hash == hash && t.equal(e.key, k) {
			return idx
		}
	}
	return -1
}

// Search returns the value associated with k, if present.
func (t *Table[K, V]) Search(k K) (V, bool) {
	defer t.checkInvariants()
	hash := t.hash(k)
	h := t.home(hash)
	if idx := t.findInWindow(h, hash, k); idx >= 0 {
		return t.entries[idx].value, true
	}
	var zero V
	return zero, false
}

// Insert associates k with v. If k is already present, its value is
// overwritten in place and the previous value is returned with ok ==
// true; the arrow windows and length are unchanged. Otherwise a new
// entry is added, growing k's home bucket window by one, and (zero
// value, false) is returned.
//
// Insert fails with ErrFull if the table has no free slot; in that
// case the table is left byte-for-byte identical to its state before
// the call.
func (t *Table[K, V]) Insert(k K, v V) (V, bool, error) {
	defer t.checkInvariants()
	hash := t.hash(k)
	h := t.home(hash)
	if idx := t.findInWindow(h, hash, k); idx >= 0 {
		prev := t.entries[idx].value
		t.entries[idx].value = v
		return prev, true, nil
	}
	if t.length >= t.capacity {
		var zero V
		return zero, false, ErrFull
	}

	// carry is the pending (key, hash, value) waiting to be placed.
	// This is the iterative form of the displacement cascade described
	// for Insert: rather than recursing into the evicted incumbent's
	// own re-insertion, we loop with a single carry slot, bounding
	// stack depth to O(1).
	type carry struct {
		hash  uint64
		key   K
		value V
		home  int
	}
	cur := carry{hash: hash, key: k, value: v, home: h}

	for step := 0; step <= t.capacity; step++ {
		if t.windows[cur.home].len() > 0 {
			// cur.home already owns a non-empty window: grow it by one
			// at its current end, evicting whatever incumbent sits
			// there. By invariant that incumbent is sitting at its own
			// home's window start, so evicting it just slides that
			// window forward by one.
			w := t.windows[cur.home]
			target := (cur.home + w.end) % t.capacity
			incumbent := &t.entries[target]

			if !incumbent.occupied {
				*incumbent = entry[K, V]{hash: cur.hash, key: cur.key, value: cur.value, occupied: true}
				t.windows[cur.home].end++
				t.length++
				var zero V
				return zero, false, nil
			}

			displacedHome := t.home(incumbent.hash)
			displaced := carry{hash: incumbent.hash, key: incumbent.key, value: incumbent.value, home: displacedHome}

			*incumbent = entry[K, V]{hash: cur.hash, key: cur.key, value: cur.value, occupied: true}
			t.windows[cur.home].end++
			t.windows[displaced.home].start++
			t.canonicalizeEmpty(displaced.home)

			cur = displaced
			continue
		}

		// cur.home's own window is currently empty: bootstrap. Scan
		// forward for a free slot. An occupied slot along the way may
		// belong to the interior of some other bucket's window, and
		// only that bucket's current start is guaranteed safe to
		// evict, so such slots are only ever skipped over, never
		// touched. The one slot we do evict is a bucket's genuine
		// current start, jumped to directly once its home is spotted
		// during the scan.
		placed := false
		evicted := false
		for offset := 0; offset < t.capacity; offset++ {
			idx := (cur.home + offset) % t.capacity
			e := &t.entries[idx]
			if !e.occupied {
				*e = entry[K, V]{hash: cur.hash, key: cur.key, value: cur.value, occupied: true}
				t.windows[cur.home] = window{start: offset, end: offset + 1}
				t.length++
				placed = true
				break
			}

			ow := t.windows[idx]
			if ow.len() == 0 {
				// idx is occupied but owns no window of its own: this
				// slot belongs to some other, more distant bucket's
				// cascaded window. Leave it alone and keep scanning.
				continue
			}

			// idx is itself a home bucket with a non-empty window;
			// jump straight to its current start and evict the entry
			// sitting there, sliding idx's window forward by one.
			jump := ow.start
			target := (idx + jump) % t.capacity
			incumbent := &t.entries[target]
			displaced := carry{hash: incumbent.hash, key: incumbent.key, value: incumbent.value, home: idx}

			*incumbent = entry[K, V]{hash: cur.hash, key: cur.key, value: cur.value, occupied: true}
			t.windows[cur.home] = window{start: offset + jump, end: offset + jump + 1}
			t.windows[idx].start++
			t.canonicalizeEmpty(idx)

			cur = displaced
			evicted = true
			break
		}

		if placed {
			var zero V
			return zero, false, nil
		}
		if evicted {
			continue
		}

		// Unreachable: length < capacity guarantees an empty slot
		// exists among the capacity offsets scanned from cur.home.
		break
	}

	// Unreachable unless the arrow invariants have been violated by
	// something outside this package (e.g. a non-pure hash function):
	// length < capacity guarantees a free slot exists within capacity
	// steps of the cascade.
	panic("arrowtable: displacement cascade did not terminate; hash or equal is likely impure")
}

// Delete removes k's entry if present. It reports whether k was
// present along with its value; deleting an absent key is a no-op
// that returns (zero value, false).
func (t *Table[K, V]) Delete(k K) (V, bool) {
	defer t.checkInvariants()
	hash := t.hash(k)
	h := t.home(hash)
	idx := t.findInWindow(h, hash, k)
	if idx < 0 {
		var zero V
		return zero, false
	}

	prev := t.entries[idx].value
	w := &t.windows[h]
	last := (h + w.end - 1) % t.capacity
	if w.len() > 1 {
		t.entries[idx] = t.entries[last]
	}
	t.entries[last] = entry[K, V]{}
	w.end--
	t.canonicalizeEmpty(h)

	t.repairForward(h)
	t.length--
	return prev, true
}

// repairForward slides later buckets' windows backward by one after a
// delete opened a hole at (h + old end - 1). It walks offsets from h,
// stopping at the first empty slot or at the first non-empty bucket
// already anchored at its own home (start == 0), since that bucket's
// window cannot slide any further.
func (t *Table[K, V]) repairForward(h int) {
	for o := 1; o < t.capacity; o++ {
		idx := (h + o) % t.capacity
		if !t.entries[idx].occupied {
			return
		}
		w := &t.windows[idx]
		if w.len() == 0 {
			// idx owns no keys of its own; the slot is occupied by
			// some other bucket's cascaded entry. Keep walking.
			continue
		}
		if w.start == 0 {
			return
		}
		startIdx := (idx + w.start - 1) % t.capacity
		endIdx := (idx + w.end - 1) % t.capacity
		t.entries[startIdx] = t.entries[endIdx]
		t.entries[endIdx] = entry[K, V]{}
		w.start--
		w.end--
	}
}
