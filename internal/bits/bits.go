// Package bits provides bit manipulation utilities. This is not a replacement for math/bits.
package bits

import (
	"fmt"
	"math/bits"

	"golang.org/x/exp/constraints"
)

// Low returns a mask with the low "width" bits set. Low(64) is all ones and Low(0) is 0.
func Low(width uint8) uint64 {
	if width >= 64 {
		// Avoid shifting by 64 (illegal in Go)
		return ^uint64(0)
	}
	return uint64(1)<<width - 1
}

// Extract returns the "width" bits of store that begin at bit "shift".
func Extract(store uint64, shift, width uint8) uint64 {
	return (store >> shift) & Low(width)
}

// Insert replaces the "width" bits of store that begin at bit "shift" with val.
// Every other bit of store is left untouched.
func Insert(store, val uint64, shift, width uint8) uint64 {
	m := Low(width) << shift
	return store&^m | (val<<shift)&m
}

// SignExtend interprets the low "width" bits of v as a two's complement number.
// The value is moved up until its top bit sits in the sign position and then
// arithmetically shifted back down.
func SignExtend(v uint64, width uint8) int64 {
	if width == 0 || width >= 64 {
		return int64(v)
	}
	s := 64 - width
	return int64(v<<s) >> s
}

// SwapBytes reverses the order of the low n bytes of v. Bytes above n are dropped.
func SwapBytes(v uint64, n uint8) uint64 {
	if n <= 1 {
		return v & Low(n*8)
	}
	if n >= 8 {
		return bits.ReverseBytes64(v)
	}
	return bits.ReverseBytes64(v) >> (64 - 8*uint(n))
}

// NativeBits returns the smallest native integer width (8, 16, 32 or 64) that holds width bits.
func NativeBits(width uint8) uint8 {
	switch {
	case width <= 8:
		return 8
	case width <= 16:
		return 16
	case width <= 32:
		return 32
	}
	return 64
}

// Width returns the number of bits in U.
func Width[U constraints.Unsigned]() uint8 {
	var zero U
	return uint8(bits.Len64(uint64(^zero)))
}

// ReadWidth rounds a byte span up to a native load width: 1, 2, 4 or 8 bytes.
// Spans wider than 8 bytes panic, the caller must split them first.
func ReadWidth(span uint32) uint8 {
	switch {
	case span <= 1:
		return 1
	case span <= 2:
		return 2
	case span <= 4:
		return 4
	case span <= 8:
		return 8
	}
	panic(fmt.Sprintf("bug: span of %d bytes cannot be read with a single load", span))
}
