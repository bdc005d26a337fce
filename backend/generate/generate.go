// Package generate implements the Generate strategy. Each plan is turned into a getter and
// a setter with the plan's offsets, shifts and masks bound in when the Program is built, so
// nothing is looked up per call. It can also render a plan set as Go constants.
package generate

import (
	stdbinary "encoding/binary"
	"fmt"

	"github.com/bearlytools/bitlayout/backend"
	"github.com/bearlytools/bitlayout/field"
	"github.com/bearlytools/bitlayout/internal/binary"
	"github.com/bearlytools/bitlayout/internal/bits"
	"github.com/bearlytools/bitlayout/plan"
	"github.com/gostdlib/base/context"
)

func init() {
	backend.Register(backend.Generate, Builder{})
}

type (
	getFn func(buf []byte) uint64
	setFn func(buf []byte, v uint64)

	loadFn  func(buf []byte) uint64
	storeFn func(buf []byte, w uint64)
)

// Builder implements backend.Builder.
type Builder struct{}

// Build implements backend.Builder.Build().
func (Builder) Build(ctx context.Context, plans []plan.Plan) (backend.Program, error) {
	p := &Program{
		names: make([]string, len(plans)),
		get:   make([]getFn, len(plans)),
		set:   make([]setFn, len(plans)),
	}
	for i := range plans {
		if plans[i].Kind == field.Nested {
			return nil, fmt.Errorf("field %q is a nested layout, plans must be flattened", plans[i].Name)
		}
		p.names[i] = plans[i].Name
		p.get[i], p.set[i] = compile(plans[i])
	}
	return p, nil
}

// Program implements backend.Program.
type Program struct {
	names []string
	get   []getFn
	set   []setFn
}

func (p *Program) Strategy() backend.Strategy {
	return backend.Generate
}

func (p *Program) Len() int {
	return len(p.names)
}

func (p *Program) Name(i int) string {
	return p.names[i]
}

func (p *Program) Get(buf []byte, i int) uint64 {
	return p.get[i](buf)
}

func (p *Program) Set(buf []byte, i int, v uint64) {
	p.set[i](buf, v)
}

// compile builds the getter and setter for a buffer plan.
func compile(p plan.Plan) (getFn, setFn) {
	o := binary.LittleEndian
	if p.Order.Bits == field.Msb0 {
		o = binary.BigEndian
	}

	get0, set0 := part(p.Parts[0], o)
	var get, set = get0, set0
	if p.NumParts == 2 {
		get1, set1 := part(p.Parts[1], o)
		get = func(buf []byte) uint64 {
			return p.Join(get0(buf), get1(buf))
		}
		set = func(buf []byte, v uint64) {
			v0, v1 := p.Split(v)
			set0(buf, v0)
			set1(buf, v1)
		}
	}

	mask := p.Mask
	switch {
	case p.MustBe != field.MustBeNone:
		forced := p.Encode(0)
		return decode(p, get), func(buf []byte, _ uint64) { set(buf, forced) }
	case p.Swap:
		n := uint8(p.Width / 8)
		return decode(p, get), func(buf []byte, v uint64) { set(buf, bits.SwapBytes(v&mask, n)) }
	}
	return get, func(buf []byte, v uint64) { set(buf, v&mask) }
}

func decode(p plan.Plan, get getFn) getFn {
	if !p.Swap {
		return get
	}
	n := uint8(p.Width / 8)
	return func(buf []byte) uint64 {
		return bits.SwapBytes(get(buf), n)
	}
}

// part builds the functions that read and write the bits of one part.
func part(pt plan.Part, o binary.Order) (getFn, setFn) {
	ld, st := window(int(pt.Index), pt.ReadWidthBytes, o)
	shift := pt.Shift
	m := bits.Low(pt.Bits)

	if pt.Shift == 0 && pt.Bits == pt.ReadWidthBytes*8 {
		return getFn(ld), setFn(st)
	}

	mask := m << shift
	get := func(buf []byte) uint64 {
		return (ld(buf) >> shift) & m
	}
	set := func(buf []byte, v uint64) {
		st(buf, ld(buf)&^mask|(v<<shift)&mask)
	}
	return get, set
}

// window returns the load and store for an n byte window at off. Windows that fit the
// buffer use fixed size loads; the rest fall back to saturating loads.
func window(off int, n uint8, o binary.Order) (loadFn, storeFn) {
	end := off + int(n)
	slow := func() (loadFn, storeFn) {
		return func(buf []byte) uint64 {
				return binary.Load(buf, off, n, o)
			}, func(buf []byte, w uint64) {
				binary.Store(buf, off, n, o, w)
			}
	}

	var bo stdbinary.ByteOrder = stdbinary.LittleEndian
	if o == binary.BigEndian {
		bo = stdbinary.BigEndian
	}

	switch n {
	case 1:
		return func(buf []byte) uint64 {
				if off < len(buf) {
					return uint64(buf[off])
				}
				return 0
			}, func(buf []byte, w uint64) {
				if off < len(buf) {
					buf[off] = byte(w)
				}
			}
	case 2:
		ld, st := slow()
		return func(buf []byte) uint64 {
				if end <= len(buf) {
					return uint64(bo.Uint16(buf[off:]))
				}
				return ld(buf)
			}, func(buf []byte, w uint64) {
				if end <= len(buf) {
					bo.PutUint16(buf[off:], uint16(w))
					return
				}
				st(buf, w)
			}
	case 4:
		ld, st := slow()
		return func(buf []byte) uint64 {
				if end <= len(buf) {
					return uint64(bo.Uint32(buf[off:]))
				}
				return ld(buf)
			}, func(buf []byte, w uint64) {
				if end <= len(buf) {
					bo.PutUint32(buf[off:], uint32(w))
					return
				}
				st(buf, w)
			}
	case 8:
		ld, st := slow()
		return func(buf []byte) uint64 {
				if end <= len(buf) {
					return bo.Uint64(buf[off:])
				}
				return ld(buf)
			}, func(buf []byte, w uint64) {
				if end <= len(buf) {
					bo.PutUint64(buf[off:], w)
					return
				}
				st(buf, w)
			}
	}
	return slow()
}
