package accessor

import (
	"fmt"

	"github.com/bearlytools/bitlayout/errors"
	"github.com/bearlytools/bitlayout/field"
	"github.com/bearlytools/bitlayout/internal/bits"
	"github.com/bearlytools/bitlayout/plan"
	"github.com/gostdlib/base/context"
	"golang.org/x/exp/constraints"
)

// Word is a layout packed into an inline integer. U must be exactly as wide as the word
// the set was compiled for.
type Word[U constraints.Unsigned] struct {
	set *plan.Set
	p   *U
}

// BindWord binds s to the integer at p.
func BindWord[U constraints.Unsigned](ctx context.Context, s *plan.Set, p *U) (Word[U], error) {
	switch {
	case s == nil:
		return Word[U]{}, errors.E(ctx, errors.CatUser, errors.TypeParameter, errors.New("BindWord: nil plan.Set"))
	case p == nil:
		return Word[U]{}, errors.E(ctx, errors.CatUser, errors.TypeParameter, errors.New("BindWord: nil storage"))
	case !s.Inline():
		return Word[U]{}, errors.E(ctx, errors.CatUser, errors.TypeParameter, fmt.Errorf("BindWord: layout %q is compiled for %s storage, not an inline word", s.Name(), s.Storage))
	}
	if w := bits.Width[U](); uint32(w) != s.Storage.WordBits {
		return Word[U]{}, errors.E(ctx, errors.CatUser, errors.TypeStorage, fmt.Errorf("BindWord: layout %q needs a %d bit word, got %d bits", s.Name(), s.Storage.WordBits, w))
	}
	return Word[U]{set: s, p: p}, nil
}

// NewWord allocates a word holding raw, with the undefined bit policy and MustBe fields
// applied.
func NewWord[U constraints.Unsigned](ctx context.Context, s *plan.Set, raw U) (Word[U], error) {
	w, err := BindWord(ctx, s, new(U))
	if err != nil {
		return Word[U]{}, err
	}
	w.SetRaw(raw)
	return w, nil
}

// Set is the compiled layout of the word.
func (w Word[U]) Set() *plan.Set {
	return w.set
}

// Lookup returns the index of the field called name.
func (w Word[U]) Lookup(name string) (int, bool) {
	return w.set.Lookup(name)
}

// Raw returns the whole word.
func (w Word[U]) Raw() U {
	return *w.p
}

// SetRaw replaces the whole word and applies the undefined bit policy and MustBe fields.
func (w Word[U]) SetRaw(raw U) {
	*w.p = raw
	w.Enforce()
}

// Enforce applies the undefined bit policy, MustBe fields and the policies of nested layouts.
func (w Word[U]) Enforce() {
	*w.p = U(EnforceWord(w.set, uint64(*w.p)))
}

// Uint returns the raw value of field i.
func (w Word[U]) Uint(i int) uint64 {
	p := scalar(w.set, i)
	pt := &p.Parts[0]
	return p.Decode(bits.Extract(uint64(*w.p), pt.Shift, pt.Bits))
}

// SetUint sets field i to v, truncated to the field's width.
func (w Word[U]) SetUint(i int, v uint64) {
	p := scalar(w.set, i)
	pt := &p.Parts[0]
	*w.p = U(bits.Insert(uint64(*w.p), p.Encode(v), pt.Shift, pt.Bits))
}

// Int returns field i as a signed value. Signed fields are sign extended.
func (w Word[U]) Int(i int) int64 {
	return toInt(&w.set.Plans[i], w.Uint(i))
}

// SetInt sets field i to the two's complement bits of v.
func (w Word[U]) SetInt(i int, v int64) {
	w.SetUint(i, uint64(v))
}

// Bool returns the 1 bit field i.
func (w Word[U]) Bool(i int) bool {
	checkBool(&w.set.Plans[i])
	return w.Uint(i) == 1
}

// SetBool sets the 1 bit field i.
func (w Word[U]) SetBool(i int, b bool) {
	checkBool(&w.set.Plans[i])
	var v uint64
	if b {
		v = 1
	}
	w.SetUint(i, v)
}

// Nested returns an accessor for the nested layout in field i. It shares the word.
func (w Word[U]) Nested(i int) Word[U] {
	return Word[U]{set: w.set.Child(i), p: w.p}
}

// SetNested re-encodes every field of src into the nested layout in field i. src must be
// of the same layout and may be the same word.
func (w Word[U]) SetNested(i int, src Word[U]) {
	dst := w.Nested(i)
	sameLayout(dst.set, src.set)

	snap := *src.p
	copyFields(dst, Word[U]{set: src.set, p: &snap})
	dst.Enforce()
}

// EnforceWord applies the undefined bit policy of s to raw, then MustBe fields, then the
// policies of nested layouts. s must be compiled for an inline word. ForceZero computes
// raw & defined and ForceOne computes raw | ^defined, where defined is limited to the word.
func EnforceWord(s *plan.Set, raw uint64) uint64 {
	switch s.Policy() {
	case field.ForceZero:
		raw &^= s.Undefined
	case field.ForceOne:
		raw |= s.Undefined
	}
	for i := range s.Plans {
		p := &s.Plans[i]
		switch {
		case p.Kind == field.Nested:
			raw = EnforceWord(s.Child(i), raw)
		case p.MustBe != field.MustBeNone:
			pt := &p.Parts[0]
			raw = bits.Insert(raw, p.Encode(0), pt.Shift, pt.Bits)
		}
	}
	return raw
}
