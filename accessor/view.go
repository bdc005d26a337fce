package accessor

import (
	"fmt"

	"github.com/bearlytools/bitlayout/errors"
	"github.com/bearlytools/bitlayout/field"
	"github.com/bearlytools/bitlayout/plan"
	"github.com/gostdlib/base/context"
)

// View is a layout laid over a byte buffer. A View is a small value; copying it does not
// copy the buffer.
type View struct {
	set *plan.Set
	buf []byte
	off uint8
}

// Bind lays s over buf. buf must hold at least s.Bytes() bytes. Bytes past the layout are
// never read or written.
func Bind(ctx context.Context, s *plan.Set, buf []byte) (View, error) {
	return BindAt(ctx, s, buf, 0)
}

// BindAt lays s over buf with the layout's bit 0 at bit bitOffset (0-7) of buf[0].
func BindAt(ctx context.Context, s *plan.Set, buf []byte, bitOffset uint8) (View, error) {
	if s == nil {
		return View{}, errors.E(ctx, errors.CatUser, errors.TypeParameter, errors.New("Bind: nil plan.Set"))
	}
	if s.Storage.Kind != field.Buffer {
		return View{}, errors.E(ctx, errors.CatUser, errors.TypeParameter, fmt.Errorf("Bind: layout %q is compiled for %s storage, not a buffer", s.Name(), s.Storage))
	}
	if bitOffset > 7 {
		return View{}, errors.E(ctx, errors.CatUser, errors.TypeParameter, fmt.Errorf("Bind: bit offset %d is not in 0-7", bitOffset))
	}
	if bitOffset != 0 && s.MixedBitOrder() {
		return View{}, errors.E(ctx, errors.CatUser, errors.TypeParameter, fmt.Errorf("Bind: layout %q mixes bit orders and must start on a byte", s.Name()))
	}
	need := viewBytes(bitOffset, s.Bits)
	if len(buf) < need {
		return View{}, errors.E(ctx, errors.CatUser, errors.TypeStorage, fmt.Errorf("Bind: layout %q at bit offset %d needs %d bytes, buffer has %d", s.Name(), bitOffset, need, len(buf)))
	}
	return View{set: s, buf: buf[:need], off: bitOffset}, nil
}

// NewView allocates a zeroed buffer for s and applies the layout's undefined bit policy
// and MustBe fields to it.
func NewView(s *plan.Set) View {
	v := View{set: s, buf: make([]byte, s.Bytes())}
	v.Enforce()
	return v
}

// FromBytes copies raw, the byte image of the layout, into a new buffer and applies the
// layout's undefined bit policy and MustBe fields.
func FromBytes(ctx context.Context, s *plan.Set, raw []byte) (View, error) {
	if len(raw) < s.Bytes() {
		return View{}, errors.E(ctx, errors.CatUser, errors.TypeStorage, fmt.Errorf("FromBytes: layout %q needs %d bytes, got %d", s.Name(), s.Bytes(), len(raw)))
	}
	v, err := Bind(ctx, s, make([]byte, s.Bytes()))
	if err != nil {
		return View{}, err
	}
	v.SetRaw(raw)
	return v, nil
}

func viewBytes(bitOffset uint8, n uint32) int {
	return int((uint32(bitOffset) + n + 7) / 8)
}

// Set is the compiled layout of the view.
func (v View) Set() *plan.Set {
	return v.set
}

// Bytes is the part of the buffer the view covers. It starts with the byte holding bit 0.
func (v View) Bytes() []byte {
	return v.buf
}

// BitOffset is where bit 0 of the layout sits in Bytes()[0].
func (v View) BitOffset() uint8 {
	return v.off
}

// Lookup returns the index of the field called name.
func (v View) Lookup(name string) (int, bool) {
	return v.set.Lookup(name)
}

// plan returns the plan for field i. A view at bit offset 0 uses the static plan.
func (v View) plan(i int) plan.Plan {
	if v.off == 0 {
		return v.set.Plans[i]
	}
	return v.set.Dynamic[i].At(v.off)
}

// Uint returns the raw value of field i.
func (v View) Uint(i int) uint64 {
	if v.off == 0 {
		return Load(v.buf, scalar(v.set, i))
	}
	scalar(v.set, i)
	p := v.set.Dynamic[i].At(v.off)
	return Load(v.buf, &p)
}

// SetUint sets field i to val, truncated to the field's width.
func (v View) SetUint(i int, val uint64) {
	if v.off == 0 {
		Store(v.buf, scalar(v.set, i), val)
		return
	}
	scalar(v.set, i)
	p := v.set.Dynamic[i].At(v.off)
	Store(v.buf, &p, val)
}

// Int returns field i as a signed value. Signed fields are sign extended.
func (v View) Int(i int) int64 {
	return toInt(&v.set.Plans[i], v.Uint(i))
}

// SetInt sets field i to the two's complement bits of val.
func (v View) SetInt(i int, val int64) {
	v.SetUint(i, uint64(val))
}

// Bool returns the 1 bit field i.
func (v View) Bool(i int) bool {
	checkBool(&v.set.Plans[i])
	return v.Uint(i) == 1
}

// SetBool sets the 1 bit field i.
func (v View) SetBool(i int, b bool) {
	checkBool(&v.set.Plans[i])
	var val uint64
	if b {
		val = 1
	}
	v.SetUint(i, val)
}

// Nested returns a view of the nested layout in field i. It shares the buffer.
func (v View) Nested(i int) View {
	child := v.set.Child(i)
	p := v.plan(i)
	b := int(p.ByteOffset)
	return View{
		set: child,
		buf: v.buf[b : b+viewBytes(p.BitShift, child.Bits)],
		off: p.BitShift,
	}
}

// SetNested sets the nested layout in field i from src, which must be a view of the same
// layout. When both are byte aligned and ordered alike the bytes are copied, otherwise
// every field is re-encoded. src may overlap the destination.
func (v View) SetNested(i int, src View) {
	dst := v.Nested(i)
	sameLayout(dst.set, src.set)

	if dst.off == 0 && src.off == 0 && dst.set.Order == src.set.Order {
		copyAligned(dst.buf, src.buf, dst.set.Bits, dst.set.Order.Bits)
		dst.Enforce()
		return
	}

	ctx := context.Background()
	scratch := scratchBytes.Get(ctx)
	defer scratchBytes.Put(ctx, scratch)

	snap := src
	snap.buf = (*scratch)[:len(src.buf)]
	copy(snap.buf, src.buf)

	copyFields(dst, snap)
	dst.Enforce()
}

// Raw returns a copy of the layout's bits as a byte image starting at bit 0.
func (v View) Raw() []byte {
	out := make([]byte, v.set.Bytes())
	copyBits(out, 0, v.buf, uint32(v.off), v.set.Bits, v.set.Order.Bits)
	return out
}

// SetRaw replaces every bit of the layout with the byte image raw and then applies the
// undefined bit policy and MustBe fields.
func (v View) SetRaw(raw []byte) {
	if len(raw) < v.set.Bytes() {
		panic(fmt.Sprintf("bug: SetRaw on layout %q needs %d bytes, got %d", v.set.Name(), v.set.Bytes(), len(raw)))
	}
	copyBits(v.buf, uint32(v.off), raw, 0, v.set.Bits, v.set.Order.Bits)
	v.Enforce()
}

// Enforce applies the undefined bit policy, then MustBe fields, then does the same for
// every nested layout with its own policy.
func (v View) Enforce() {
	s := v.set
	if fill, ok := policyFill(s.Policy()); ok {
		for g := range s.Gaps {
			if v.off == 0 {
				Store(v.buf, &s.Gaps[g], fill)
				continue
			}
			p := s.GapsDynamic[g].At(v.off)
			Store(v.buf, &p, fill)
		}
	}
	for i := range s.Plans {
		switch {
		case s.Plans[i].Kind == field.Nested:
			v.Nested(i).Enforce()
		case s.Plans[i].MustBe != field.MustBeNone:
			v.SetUint(i, 0)
		}
	}
}
