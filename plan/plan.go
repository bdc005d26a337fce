// Package plan turns a layout into access plans: for every field, the loads, shifts and masks
// that get and set it without walking bits one at a time.
//
// A Plan is lowered for one storage kind. For a byte buffer a part is a window of 1, 2, 4 or 8
// bytes read in the natural byte order of the bit numbering (little endian for Lsb0, big
// endian for Msb0). For word storage a part is one 64 bit word, or the inline word itself.
// A field never needs more than two parts.
package plan

import (
	"fmt"

	"github.com/bearlytools/bitlayout/field"
	"github.com/bearlytools/bitlayout/internal/bits"
	"github.com/bearlytools/bitlayout/layout"
)

// Part is a single load or store.
type Part struct {
	// Index is a byte offset for buffer storage and a word index for word storage.
	Index uint32 `json:"index"`
	// ReadWidthBytes is the size of the load. For word storage it is the word size.
	ReadWidthBytes uint8 `json:"readWidthBytes"`
	// Shift is where the part's lowest bit sits in the loaded value.
	Shift uint8 `json:"shift"`
	// Bits is how many of the field's bits this part holds.
	Bits uint8 `json:"bits"`
}

// Mask is the part's bits positioned in the loaded value.
func (p Part) Mask() uint64 {
	return bits.Low(p.Bits) << p.Shift
}

// Plan is how to get and set one field.
type Plan struct {
	Name string
	// Index is the field's index in its layout, -1 for plans that cover undefined bits.
	Index int
	Kind  field.Kind
	// Start is the first bit of the field in the storage.
	Start uint32
	// Width is the field width. For a Nested plan it is the child's width.
	Width uint32
	// Mask is (1<<Width)-1.
	Mask uint64
	// Order is the field's effective order.
	Order layout.Order
	// Swap is set when the value's bytes are stored reversed.
	Swap bool
	// SignExtend is set for Signed fields narrower than their native integer.
	SignExtend bool
	// NativeBits is the smallest of 8, 16, 32 or 64 that holds the field.
	NativeBits uint8
	MustBe     field.MustBe

	// ByteOffset, ReadWidthBytes and BitShift locate the field in the byte image of the
	// storage, whatever storage the plan is lowered for. For a Nested plan ByteOffset and
	// BitShift are where the child's storage begins.
	ByteOffset     uint32
	ReadWidthBytes uint8
	BitShift       uint8
	// CrossesWordBoundary is set when the field needs two parts.
	CrossesWordBoundary bool

	Parts    [2]Part
	NumParts uint8
}

// End is the last bit of the field in the storage.
func (p *Plan) End() uint32 {
	return p.Start + p.Width - 1
}

// Join combines the values read through the parts into the field value. v1 is ignored for
// a single part plan.
func (p *Plan) Join(v0, v1 uint64) uint64 {
	if p.NumParts < 2 {
		return v0
	}
	if p.Order.Bits == field.Msb0 {
		return v0<<p.Parts[1].Bits | v1
	}
	return v0 | v1<<p.Parts[0].Bits
}

// Split is the reverse of Join.
func (p *Plan) Split(v uint64) (v0, v1 uint64) {
	if p.NumParts < 2 {
		return v, 0
	}
	if p.Order.Bits == field.Msb0 {
		return v >> p.Parts[1].Bits, v & bits.Low(p.Parts[1].Bits)
	}
	return v & bits.Low(p.Parts[0].Bits), v >> p.Parts[0].Bits
}

// Encode turns a value into the bits that are stored. Bits beyond Width are dropped and
// MustBe fields always encode their forced pattern.
func (p *Plan) Encode(v uint64) uint64 {
	switch p.MustBe {
	case field.MustBeZero:
		v = 0
	case field.MustBeOne:
		v = p.Mask
	}
	v &= p.Mask
	if p.Swap {
		v = bits.SwapBytes(v, uint8(p.Width/8))
	}
	return v
}

// Decode turns stored bits into the value.
func (p *Plan) Decode(raw uint64) uint64 {
	if p.Swap {
		return bits.SwapBytes(raw, uint8(p.Width/8))
	}
	return raw
}

// Signed interprets a decoded value as two's complement.
func (p *Plan) Signed(v uint64) int64 {
	return bits.SignExtend(v, uint8(p.Width))
}

func (p *Plan) String() string {
	if p.Kind == field.Nested {
		return fmt.Sprintf("%s: nested %d bits at byte %d bit %d", p.Name, p.Width, p.ByteOffset, p.BitShift)
	}
	s := fmt.Sprintf("%s: %s bits %d-%d byte %d read %d shift %d mask %#x", p.Name, p.Kind, p.Start, p.End(), p.ByteOffset, p.ReadWidthBytes, p.BitShift, p.Mask)
	if p.Swap {
		s += " swap"
	}
	if p.SignExtend {
		s += " signext"
	}
	if p.CrossesWordBoundary {
		s += " split"
	}
	return s
}

// Dynamic is a plan for a field whose layout begins at a bit offset that is only known at
// runtime. ReadWidthBytes is sized for the worst offset.
type Dynamic struct {
	// Plan is the field's plan at offset 0, built with the worst case read width.
	Plan
	// Split is set when some offset needs two windows.
	Split bool
}

// At returns the plan for a layout that starts bitOffset (0-7) bits into its first byte.
func (d *Dynamic) At(bitOffset uint8) Plan {
	if bitOffset > 7 {
		panic(fmt.Sprintf("bug: bit offset %d is not in 0-7", bitOffset))
	}
	p := d.Plan
	p.Start += uint32(bitOffset)
	if p.Kind == field.Nested {
		p.ByteOffset = p.Start / 8
		p.BitShift = uint8(p.Start % 8)
		return p
	}
	p.Parts, p.NumParts = window(p.Start, p.End(), p.Order.Bits, d.ReadWidthBytes)
	p.ByteOffset = p.Parts[0].Index
	p.BitShift = p.Parts[0].Shift
	p.CrossesWordBoundary = p.NumParts == 2
	return p
}
