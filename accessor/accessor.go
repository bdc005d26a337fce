// Package accessor gets and sets fields by executing the plans of a compiled plan.Set
// against real storage.
//
// There are three kinds of accessor:
//
//   - Word binds an inline integer of 8, 16, 32 or 64 bits.
//   - Words binds a []uint64, or a Uint128 for 128 bit words.
//   - View binds a byte buffer that may start at a bit offset of 0-7.
//
// Accessors never cache values. Two accessors over the same storage see each other's writes
// and do not lock; callers that share storage between goroutines must synchronize.
//
// Using a field the wrong way (a bad index, Uint on a nested field, SetNested with the wrong
// layout) is a bug in the caller and panics. Values too large for a field are truncated.
package accessor

import (
	"fmt"

	"github.com/bearlytools/bitlayout/field"
	"github.com/bearlytools/bitlayout/internal/binary"
	"github.com/bearlytools/bitlayout/internal/bits"
	"github.com/bearlytools/bitlayout/plan"
)

// Getter reads the raw value of a field.
type Getter interface {
	Uint(i int) uint64
}

// Setter writes the raw value of a field.
type Setter interface {
	SetUint(i int, v uint64)
}

// Fields is what every accessor provides.
type Fields interface {
	Getter
	Setter
	Set() *plan.Set
	Lookup(name string) (int, bool)
	Int(i int) int64
	SetInt(i int, v int64)
	Bool(i int) bool
	SetBool(i int, v bool)
	Enforce()
}

type nestable[A any] interface {
	Fields
	Nested(i int) A
}

// windowOrder is the byte order a window is read in. It follows from the bit numbering.
func windowOrder(bo field.BitOrder) binary.Order {
	if bo == field.Msb0 {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Load executes a buffer plan against buf and returns the field's raw value.
func Load(buf []byte, p *plan.Plan) uint64 {
	o := windowOrder(p.Order.Bits)
	v0 := loadPart(buf, &p.Parts[0], o)
	var v1 uint64
	if p.NumParts == 2 {
		v1 = loadPart(buf, &p.Parts[1], o)
	}
	return p.Decode(p.Join(v0, v1))
}

// Store executes a buffer plan against buf, writing v. Only the field's bits change.
func Store(buf []byte, p *plan.Plan, v uint64) {
	o := windowOrder(p.Order.Bits)
	v0, v1 := p.Split(p.Encode(v))
	storePart(buf, &p.Parts[0], o, v0)
	if p.NumParts == 2 {
		storePart(buf, &p.Parts[1], o, v1)
	}
}

func loadPart(buf []byte, pt *plan.Part, o binary.Order) uint64 {
	return bits.Extract(binary.Load(buf, int(pt.Index), pt.ReadWidthBytes, o), pt.Shift, pt.Bits)
}

func storePart(buf []byte, pt *plan.Part, o binary.Order, v uint64) {
	w := binary.Load(buf, int(pt.Index), pt.ReadWidthBytes, o)
	binary.Store(buf, int(pt.Index), pt.ReadWidthBytes, o, bits.Insert(w, v, pt.Shift, pt.Bits))
}

// scalar returns the plan of field i, panicking if it is nested.
func scalar(s *plan.Set, i int) *plan.Plan {
	p := &s.Plans[i]
	if p.Kind == field.Nested {
		panic(fmt.Sprintf("bug: field %q of layout %q is a nested layout, use Nested", p.Name, s.Name()))
	}
	return p
}

func checkBool(p *plan.Plan) {
	if p.Width != 1 {
		panic(fmt.Sprintf("bug: field %q is %d bits, not a bool", p.Name, p.Width))
	}
}

func toInt(p *plan.Plan, v uint64) int64 {
	if p.Kind == field.Signed {
		return p.Signed(v)
	}
	return int64(v)
}

func sameLayout(dst, src *plan.Set) {
	if dst.Layout != src.Layout {
		panic(fmt.Sprintf("bug: cannot set nested layout %q from layout %q", dst.Name(), src.Name()))
	}
}

// policyFill is the value gaps are filled with, and false if the policy leaves them alone.
func policyFill(p field.Policy) (uint64, bool) {
	switch p {
	case field.ForceZero:
		return 0, true
	case field.ForceOne:
		return ^uint64(0), true
	}
	return 0, false
}

// copyFields re-encodes every field of src into dst, recursing into nested layouts.
func copyFields[A nestable[A]](dst, src A) {
	s := dst.Set()
	for i := range s.Plans {
		if s.Plans[i].Kind == field.Nested {
			copyFields(dst.Nested(i), src.Nested(i))
			continue
		}
		dst.SetUint(i, src.Uint(i))
	}
}

// copyAligned copies n bits from the start of src to the start of dst. Bits of the last
// byte of dst past n are kept.
func copyAligned(dst, src []byte, n uint32, bo field.BitOrder) {
	full := n / 8
	copy(dst[:full], src[:full])

	r := uint8(n % 8)
	if r == 0 {
		return
	}
	m := byte(bits.Low(r))
	if bo == field.Msb0 {
		m <<= 8 - r
	}
	dst[full] = dst[full]&^m | src[full]&m
}

// copyBits copies n bits of src starting at bit srcOff to dst starting at bit dstOff.
func copyBits(dst []byte, dstOff uint32, src []byte, srcOff uint32, n uint32, bo field.BitOrder) {
	if dstOff%8 == 0 && srcOff%8 == 0 {
		copyAligned(dst[dstOff/8:], src[srcOff/8:], n, bo)
		return
	}
	for k := uint32(0); k < n; k += 64 {
		w := min(64, n-k)
		sp := plan.Range(srcOff+k, w, bo)
		dp := plan.Range(dstOff+k, w, bo)
		Store(dst, &dp, Load(src, &sp))
	}
}
