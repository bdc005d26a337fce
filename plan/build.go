package plan

import (
	"github.com/bearlytools/bitlayout/field"
	"github.com/bearlytools/bitlayout/internal/bits"
	"github.com/bearlytools/bitlayout/layout"
)

// window lowers bits start-end of a byte buffer to loads. The read width is rounded up to
// a native size no smaller than minR. A span of more than 8 bytes becomes an 8 byte window
// followed by a 1 byte window.
func window(start, end uint32, bo field.BitOrder, minR uint8) ([2]Part, uint8) {
	first := start / 8
	span := end/8 - first + 1

	if span <= 8 {
		r := max(bits.ReadWidth(span), minR)
		return [2]Part{{
			Index:          first,
			ReadWidthBytes: r,
			Shift:          windowShift(start, end, first, r, bo),
			Bits:           uint8(end - start + 1),
		}}, 1
	}

	// The first window runs to the end of its 8th byte.
	mid := first*8 + 63
	return [2]Part{
		{
			Index:          first,
			ReadWidthBytes: 8,
			Shift:          windowShift(start, mid, first, 8, bo),
			Bits:           uint8(mid - start + 1),
		},
		{
			Index:          first + 8,
			ReadWidthBytes: 1,
			Shift:          windowShift(mid+1, end, first+8, 1, bo),
			Bits:           uint8(end - mid),
		},
	}, 2
}

// windowShift is where bit "end" (Msb0) or bit "start" (Lsb0) lands in an r byte window
// that begins at byte first.
func windowShift(start, end, first uint32, r uint8, bo field.BitOrder) uint8 {
	if bo == field.Msb0 {
		return uint8(uint32(r)*8 - 1 - (end - first*8))
	}
	return uint8(start - first*8)
}

// dynamicWidth finds the read width that covers bits start-end at every offset 0-7.
func dynamicWidth(start, end uint32) (r uint8, split bool) {
	var worst uint32
	for off := uint32(0); off < 8; off++ {
		s, e := start+off, end+off
		worst = max(worst, e/8-s/8+1)
	}
	if worst > 8 {
		return 8, true
	}
	return bits.ReadWidth(worst), false
}

// inlinePart lowers bits start-end of an inline word of w bits.
func inlinePart(start, end, w uint32, bo field.BitOrder) Part {
	shift := start
	if bo == field.Msb0 {
		shift = w - 1 - end
	}
	return Part{ReadWidthBytes: uint8(w / 8), Shift: uint8(shift), Bits: uint8(end - start + 1)}
}

// wordParts lowers bits start-end of an array of 64 bit words. With Lsb0 bit i is bit i%64
// of word i/64, with Msb0 it is bit 63-i%64.
func wordParts(start, end uint32, bo field.BitOrder) ([2]Part, uint8) {
	w := start / 64
	if end/64 == w {
		shift := start % 64
		if bo == field.Msb0 {
			shift = 63 - end%64
		}
		return [2]Part{{Index: w, ReadWidthBytes: 8, Shift: uint8(shift), Bits: uint8(end - start + 1)}}, 1
	}

	b0 := 64 - start%64
	p0 := Part{Index: w, ReadWidthBytes: 8, Bits: uint8(b0)}
	p1 := Part{Index: w + 1, ReadWidthBytes: 8, Bits: uint8(end - start + 1 - b0)}
	if bo == field.Msb0 {
		p1.Shift = uint8(63 - end%64)
	} else {
		p0.Shift = uint8(start % 64)
	}
	return [2]Part{p0, p1}, 2
}

// scalar builds the plan for a non nested field or a run of undefined bits at absolute bit
// start of storage.
func scalar(name string, index int, kind field.Kind, start, width uint32, o layout.Order, swap bool, mustBe field.MustBe, storage layout.Storage) Plan {
	w := uint8(width)
	p := Plan{
		Name:       name,
		Index:      index,
		Kind:       kind,
		Start:      start,
		Width:      width,
		Mask:       bits.Low(w),
		Order:      o,
		Swap:       swap,
		NativeBits: bits.NativeBits(w),
		MustBe:     mustBe,
	}
	p.SignExtend = kind == field.Signed && w < p.NativeBits

	img, _ := window(start, p.End(), o.Bits, 1)
	p.ByteOffset = img[0].Index
	p.ReadWidthBytes = img[0].ReadWidthBytes
	p.BitShift = img[0].Shift

	p.lower(storage)
	return p
}

// lower fills in Parts for the storage.
func (p *Plan) lower(storage layout.Storage) {
	switch {
	case storage.Kind == field.Buffer:
		p.Parts, p.NumParts = window(p.Start, p.End(), p.Order.Bits, 1)
	case storage.IsWords():
		p.Parts, p.NumParts = wordParts(p.Start, p.End(), p.Order.Bits)
	default:
		p.Parts = [2]Part{inlinePart(p.Start, p.End(), storage.WordBits, p.Order.Bits)}
		p.NumParts = 1
	}
	p.CrossesWordBoundary = p.NumParts == 2
}

// nested builds the plan for a Nested field of width bits at absolute bit start.
func nested(name string, index int, start, width uint32, o layout.Order) Plan {
	return Plan{
		Name:       name,
		Index:      index,
		Kind:       field.Nested,
		Start:      start,
		Width:      width,
		Order:      o,
		ByteOffset: start / 8,
		BitShift:   uint8(start % 8),
	}
}

// dynamic builds the runtime offset counterpart of a buffer plan.
func dynamic(p Plan) Dynamic {
	if p.Kind == field.Nested {
		return Dynamic{Plan: p}
	}
	r, split := dynamicWidth(p.Start, p.End())
	d := Dynamic{Plan: p, Split: split}
	d.ReadWidthBytes = r
	d.Parts, d.NumParts = window(p.Start, p.End(), p.Order.Bits, r)
	d.ByteOffset = d.Parts[0].Index
	d.BitShift = d.Parts[0].Shift
	d.CrossesWordBoundary = d.NumParts == 2
	return d
}

// relocate rebuilds a buffer plan at a new absolute start.
func relocate(p Plan, start uint32) Plan {
	p.Start = start
	if p.Kind == field.Nested {
		p.ByteOffset = start / 8
		p.BitShift = uint8(start % 8)
		return p
	}
	p.Parts, p.NumParts = window(start, p.End(), p.Order.Bits, 1)
	p.ByteOffset = p.Parts[0].Index
	p.ReadWidthBytes = p.Parts[0].ReadWidthBytes
	p.BitShift = p.Parts[0].Shift
	p.CrossesWordBoundary = p.NumParts == 2
	return p
}

// Range builds a plan for an arbitrary run of up to 64 bits of a byte buffer. It is used to
// move raw bits between buffers.
func Range(start, width uint32, bo field.BitOrder) Plan {
	o := layout.Order{Bytes: bo.Natural(), Bits: bo}
	return scalar("", -1, field.Unsigned, start, width, o, false, field.MustBeNone, layout.Buffer())
}

// WordRange is Range for storage made of 64 bit words.
func WordRange(start, width uint32, bo field.BitOrder) Plan {
	o := layout.Order{Bytes: bo.Natural(), Bits: bo}
	return scalar("", -1, field.Unsigned, start, width, o, false, field.MustBeNone, layout.MultiWord())
}
