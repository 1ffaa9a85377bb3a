// Package conv provides safe integer conversion helpers used throughout the
// automata packages (tag IDs, node IDs, register IDs, byte positions).
//
// These functions perform bounds checking before narrowing integer
// conversions to prevent silent overflow. They panic on overflow since this
// indicates a programming error (e.g. a schema producing more states or tags
// than the chosen ID width can address), never a recoverable runtime
// condition.
package conv

import "math"

// IntToUint32 safely converts an int to uint32.
// Panics if n < 0 or n > math.MaxUint32.
func IntToUint32(n int) uint32 {
	if n < 0 || uint(n) > math.MaxUint32 {
		panic("integer overflow: int value out of uint32 range")
	}
	return uint32(n)
}

// IntToInt32 safely converts an int to int32.
// Panics if n is outside the int32 range.
func IntToInt32(n int) int32 {
	if n < math.MinInt32 || n > math.MaxInt32 {
		panic("integer overflow: int value out of int32 range")
	}
	return int32(n)
}

// Uint64ToUint32 safely converts a uint64 to uint32.
// Panics if n > math.MaxUint32.
func Uint64ToUint32(n uint64) uint32 {
	if n > math.MaxUint32 {
		panic("integer overflow: uint64 value out of uint32 range")
	}
	return uint32(n)
}
