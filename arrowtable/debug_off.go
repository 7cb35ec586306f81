//go:build !arrowtable_debug

package arrowtable

// checkInvariants is a no-op in production builds; see debug.go for
// the arrowtable_debug version that actually walks the table.
func (t *Table[K, V]) checkInvariants() {}
