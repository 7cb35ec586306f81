// Package arrowtable implements a fixed-capacity, open-addressed hash
// table in which every home bucket tracks the contiguous offset window
// ("arrow") of the slots that currently hold its keys.
//
// Unlike a Robin Hood or linear-probing table, a lookup never walks a
// probe sequence: it reads the home bucket's (start, end) window and
// scans exactly that many slots, which is bounded by the number of
// keys that collide on that bucket, not by the table's overall load.
//
// The table does not resize, persist, or lock itself. Insertion into a
// full table fails with ErrFull rather than growing; callers needing
// concurrent access must wrap a Table in their own mutex.
package arrowtable
