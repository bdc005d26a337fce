// Package binary loads and stores the byte windows that access plans read through.
// A window is 1 to 8 bytes assembled into a uint64 in either byte order. Windows may hang
// off the end of a buffer: the missing bytes read as zero and are never written.
package binary

import (
	"encoding/binary"
	"fmt"
)

// Order is the byte order a window is assembled in.
type Order uint8

const (
	// LittleEndian puts the first byte of the window in the low bits.
	LittleEndian Order = 0
	// BigEndian puts the first byte of the window in the high bits.
	BigEndian Order = 1
)

// Load reads an n byte window from b starting at off.
func Load(b []byte, off int, n uint8, o Order) uint64 {
	if off+int(n) <= len(b) {
		return loadFull(b[off:off+int(n)], o)
	}

	var v uint64
	avail := len(b) - off
	for k := 0; k < avail; k++ {
		v |= uint64(b[off+k]) << shiftFor(k, n, o)
	}
	return v
}

// Store writes the n byte window v into b starting at off. Only bytes that exist in b are written.
func Store(b []byte, off int, n uint8, o Order, v uint64) {
	if off+int(n) <= len(b) {
		storeFull(b[off:off+int(n)], o, v)
		return
	}

	avail := len(b) - off
	for k := 0; k < avail; k++ {
		b[off+k] = byte(v >> shiftFor(k, n, o))
	}
}

// shiftFor returns where byte k of an n byte window lands in the assembled value.
func shiftFor(k int, n uint8, o Order) uint {
	if o == BigEndian {
		return uint(int(n)-1-k) * 8
	}
	return uint(k) * 8
}

func loadFull(b []byte, o Order) uint64 {
	_ = b[len(b)-1] // bounds check hint to compiler; see golang.org/issue/14808

	if o == BigEndian {
		switch len(b) {
		case 1:
			return uint64(b[0])
		case 2:
			return uint64(binary.BigEndian.Uint16(b))
		case 4:
			return uint64(binary.BigEndian.Uint32(b))
		case 8:
			return binary.BigEndian.Uint64(b)
		}
	} else {
		switch len(b) {
		case 1:
			return uint64(b[0])
		case 2:
			return uint64(binary.LittleEndian.Uint16(b))
		case 4:
			return uint64(binary.LittleEndian.Uint32(b))
		case 8:
			return binary.LittleEndian.Uint64(b)
		}
	}

	if len(b) > 8 {
		panic(fmt.Sprintf("bug: window of %d bytes", len(b)))
	}
	var v uint64
	for k := range b {
		v |= uint64(b[k]) << shiftFor(k, uint8(len(b)), o)
	}
	return v
}

func storeFull(b []byte, o Order, v uint64) {
	_ = b[len(b)-1] // bounds check hint to compiler; see golang.org/issue/14808

	if o == BigEndian {
		switch len(b) {
		case 1:
			b[0] = byte(v)
			return
		case 2:
			binary.BigEndian.PutUint16(b, uint16(v))
			return
		case 4:
			binary.BigEndian.PutUint32(b, uint32(v))
			return
		case 8:
			binary.BigEndian.PutUint64(b, v)
			return
		}
	} else {
		switch len(b) {
		case 1:
			b[0] = byte(v)
			return
		case 2:
			binary.LittleEndian.PutUint16(b, uint16(v))
			return
		case 4:
			binary.LittleEndian.PutUint32(b, uint32(v))
			return
		case 8:
			binary.LittleEndian.PutUint64(b, v)
			return
		}
	}

	if len(b) > 8 {
		panic(fmt.Sprintf("bug: window of %d bytes", len(b)))
	}
	for k := range b {
		b[k] = byte(v >> shiftFor(k, uint8(len(b)), o))
	}
}
