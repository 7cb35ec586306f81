// Package arrowhash provides ready-made hash functions for the key
// kinds arrowtable.Table is commonly instantiated with. arrowtable
// itself stays polymorphic over any caller-supplied hash/equal pair
// (see arrowtable.New); this package exists so callers with ordinary
// int, string, or []byte keys don't have to write their own.
//
// Every function here closes over a maphash.Seed so that two tables
// get independent hash distributions, the same anti-collision-attack
// property hash/maphash itself is designed around.
package arrowhash

import "hash/maphash"

// NewSeed returns a fresh random seed suitable for passing to the
// functions below. Each Table should normally use its own seed.
func NewSeed() maphash.Seed {
	return maphash.MakeSeed()
}

// Bytes returns a hash function for []byte keys, seeded by seed.
func Bytes(seed maphash.Seed) func([]byte) uint64 {
	return func(v []byte) uint64 {
		return maphash.Bytes(seed, v)
	}
}

// String returns a hash function for string keys, seeded by seed.
func String(seed maphash.Seed) func(string) uint64 {
	return func(v string) uint64 {
		return maphash.String(seed, v)
	}
}

// Int returns a hash function for int keys, seeded by seed. The int is
// hashed by its little-endian byte representation.
func Int(seed maphash.Seed) func(int) uint64 {
	return func(v int) uint64 {
		return maphash.Bytes(seed, intBytes(uint64(v)))
	}
}

// Uint64 returns a hash function for uint64 keys, seeded by seed.
func Uint64(seed maphash.Seed) func(uint64) uint64 {
	return func(v uint64) uint64 {
		return maphash.Bytes(seed, intBytes(v))
	}
}

func intBytes(v uint64) []byte {
	var b [8]byte
	for i := range b {
		b[i] = byte(v >> (8 * i))
	}
	return b[:]
}

// Equal is the trivial, reflexive equality most built-in key types
// want: Go's native ==. It is generic so it can be passed directly as
// arrowtable.New's equal argument for any comparable K.
func Equal[K comparable](a, b K) bool {
	return a == b
}
