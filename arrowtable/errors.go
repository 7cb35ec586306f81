package arrowtable

import "errors"

// ErrInvalidCapacity is returned by New when capacity is not positive.
var ErrInvalidCapacity = errors.New("arrowtable: capacity must be positive")

// ErrFull is returned by Insert when the table has no free slot for a
// new key. The table is left unchanged.
var ErrFull = errors.New("arrowtable: table is full")
