package accessor

import (
	"fmt"

	"github.com/bearlytools/bitlayout/errors"
	"github.com/bearlytools/bitlayout/field"
	"github.com/bearlytools/bitlayout/internal/bits"
	"github.com/bearlytools/bitlayout/plan"
	"github.com/gostdlib/base/context"
)

// Uint128 is a 128 bit word. With Lsb0 numbering bits 0-63 are in Lo, with Msb0 they are
// in Hi.
type Uint128 struct {
	Hi, Lo uint64
}

// Words is a layout packed into 64 bit words.
type Words struct {
	set *plan.Set
	w   []uint64
	u   *Uint128
	msb bool
}

// BindWords binds s to w, which must hold at least s.Words() words.
func BindWords(ctx context.Context, s *plan.Set, w []uint64) (Words, error) {
	if err := checkWords(ctx, s); err != nil {
		return Words{}, err
	}
	if s.Storage.Kind != field.MultiWord {
		return Words{}, errors.E(ctx, errors.CatUser, errors.TypeParameter, fmt.Errorf("BindWords: layout %q is compiled for %s storage, use Bind128", s.Name(), s.Storage))
	}
	if len(w) < s.Words() {
		return Words{}, errors.E(ctx, errors.CatUser, errors.TypeStorage, fmt.Errorf("BindWords: layout %q needs %d words, got %d", s.Name(), s.Words(), len(w)))
	}
	return Words{set: s, w: w, msb: s.Order.Bits == field.Msb0}, nil
}

// Bind128 binds s, compiled for a 128 bit word, to u.
func Bind128(ctx context.Context, s *plan.Set, u *Uint128) (Words, error) {
	if err := checkWords(ctx, s); err != nil {
		return Words{}, err
	}
	if u == nil {
		return Words{}, errors.E(ctx, errors.CatUser, errors.TypeParameter, errors.New("Bind128: nil storage"))
	}
	if s.Storage.Kind != field.SingleWord {
		return Words{}, errors.E(ctx, errors.CatUser, errors.TypeParameter, fmt.Errorf("Bind128: layout %q is compiled for %s storage, use BindWords", s.Name(), s.Storage))
	}
	return Words{set: s, u: u, msb: s.Order.Bits == field.Msb0}, nil
}

func checkWords(ctx context.Context, s *plan.Set) error {
	if s == nil {
		return errors.E(ctx, errors.CatUser, errors.TypeParameter, errors.New("nil plan.Set"))
	}
	if !s.Storage.IsWords() {
		return errors.E(ctx, errors.CatUser, errors.TypeParameter, fmt.Errorf("layout %q is compiled for %s storage, not words", s.Name(), s.Storage))
	}
	return nil
}

// NewWords allocates zeroed words for s and applies the undefined bit policy and MustBe
// fields.
func NewWords(s *plan.Set) Words {
	w := Words{set: s, msb: s.Order.Bits == field.Msb0}
	if s.Storage.Kind == field.SingleWord {
		w.u = &Uint128{}
	} else {
		w.w = make([]uint64, s.Words())
	}
	w.Enforce()
	return w
}

// word returns word i of the storage.
func (w Words) word(i uint32) *uint64 {
	if w.u == nil {
		return &w.w[i]
	}
	if (i == 0) == w.msb {
		return &w.u.Hi
	}
	return &w.u.Lo
}

func (w Words) load(p *plan.Plan) uint64 {
	pt := &p.Parts[0]
	v0 := bits.Extract(*w.word(pt.Index), pt.Shift, pt.Bits)
	var v1 uint64
	if p.NumParts == 2 {
		pt = &p.Parts[1]
		v1 = bits.Extract(*w.word(pt.Index), pt.Shift, pt.Bits)
	}
	return p.Decode(p.Join(v0, v1))
}

func (w Words) store(p *plan.Plan, v uint64) {
	v0, v1 := p.Split(p.Encode(v))
	pt := &p.Parts[0]
	word := w.word(pt.Index)
	*word = bits.Insert(*word, v0, pt.Shift, pt.Bits)
	if p.NumParts == 2 {
		pt = &p.Parts[1]
		word = w.word(pt.Index)
		*word = bits.Insert(*word, v1, pt.Shift, pt.Bits)
	}
}

// Set is the compiled layout of the words.
func (w Words) Set() *plan.Set {
	return w.set
}

// Lookup returns the index of the field called name.
func (w Words) Lookup(name string) (int, bool) {
	return w.set.Lookup(name)
}

// Uint returns the raw value of field i.
func (w Words) Uint(i int) uint64 {
	return w.load(scalar(w.set, i))
}

// SetUint sets field i to v, truncated to the field's width. A field that crosses a word
// boundary is written one word at a time.
func (w Words) SetUint(i int, v uint64) {
	w.store(scalar(w.set, i), v)
}

// Int returns field i as a signed value. Signed fields are sign extended.
func (w Words) Int(i int) int64 {
	return toInt(&w.set.Plans[i], w.Uint(i))
}

// SetInt sets field i to the two's complement bits of v.
func (w Words) SetInt(i int, v int64) {
	w.SetUint(i, uint64(v))
}

// Bool returns the 1 bit field i.
func (w Words) Bool(i int) bool {
	checkBool(&w.set.Plans[i])
	return w.Uint(i) == 1
}

// SetBool sets the 1 bit field i.
func (w Words) SetBool(i int, b bool) {
	checkBool(&w.set.Plans[i])
	var v uint64
	if b {
		v = 1
	}
	w.SetUint(i, v)
}

// Nested returns an accessor for the nested layout in field i. It shares the words.
func (w Words) Nested(i int) Words {
	n := w
	n.set = w.set.Child(i)
	return n
}

// SetNested re-encodes every field of src into the nested layout in field i. src must be
// of the same layout and may share storage with w.
func (w Words) SetNested(i int, src Words) {
	dst := w.Nested(i)
	sameLayout(dst.set, src.set)

	snap := src
	if src.u != nil {
		u := *src.u
		snap.u = &u
		copyFields(dst, snap)
		dst.Enforce()
		return
	}

	ctx := context.Background()
	scratch := scratchWords.Get(ctx)
	defer scratchWords.Put(ctx, scratch)

	n := min(len(src.w), src.set.Words())
	snap.w = (*scratch)[:n]
	copy(snap.w, src.w[:n])
	copyFields(dst, snap)
	dst.Enforce()
}

// Raw returns the layout's bits as 64 bit words, the first word holding bits 0-63 of the
// layout. A short last word is padded with zeros in the bits past the layout.
func (w Words) Raw() []uint64 {
	out := make([]uint64, w.rawWords())
	for k := range out {
		p := w.chunk(k)
		v := w.load(&p)
		if w.msb {
			v <<= 64 - p.Width
		}
		out[k] = v
	}
	return out
}

// SetRaw replaces every bit of the layout with raw, laid out as Raw returns it, and then
// applies the undefined bit policy and MustBe fields.
func (w Words) SetRaw(raw []uint64) {
	n := w.rawWords()
	if len(raw) < n {
		panic(fmt.Sprintf("bug: SetRaw on layout %q needs %d words, got %d", w.set.Name(), n, len(raw)))
	}
	for k := 0; k < n; k++ {
		p := w.chunk(k)
		v := raw[k]
		if w.msb {
			v >>= 64 - p.Width
		}
		w.store(&p, v)
	}
	w.Enforce()
}

func (w Words) rawWords() int {
	return int((w.set.Bits + 63) / 64)
}

// chunk is the plan for bits 64k to 64k+63 of the layout, cut short at its end.
func (w Words) chunk(k int) plan.Plan {
	start := uint32(k) * 64
	return plan.WordRange(w.set.Base+start, min(64, w.set.Bits-start), w.set.Order.Bits)
}

// Enforce applies the undefined bit policy, then MustBe fields, then does the same for
// every nested layout with its own policy.
func (w Words) Enforce() {
	s := w.set
	if fill, ok := policyFill(s.Policy()); ok {
		for g := range s.Gaps {
			w.store(&s.Gaps[g], fill)
		}
	}
	for i := range s.Plans {
		switch {
		case s.Plans[i].Kind == field.Nested:
			w.Nested(i).Enforce()
		case s.Plans[i].MustBe != field.MustBeNone:
			w.SetUint(i, 0)
		}
	}
}
