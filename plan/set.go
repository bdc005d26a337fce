package plan

import (
	"fmt"
	"slices"

	"github.com/bearlytools/bitlayout/field"
	"github.com/bearlytools/bitlayout/layout"
)

// Set is a layout compiled for one storage context. It is immutable and may be shared by
// any number of accessors and goroutines.
type Set struct {
	// Layout is the layout the set was compiled from.
	Layout *layout.Layout
	// Order is the layout's effective order.
	Order layout.Order
	// Storage is the storage the root layout is bound to. Nested sets share it.
	Storage layout.Storage
	// Base is the absolute bit the layout starts at. It is always 0 for buffer storage,
	// where nested layouts are addressed relative to their own first byte.
	Base uint32
	// Bits is the size of the layout.
	Bits uint32

	// Plans holds one plan per field, in field order.
	Plans []Plan
	// Dynamic holds the runtime offset plans. Only buffer sets have them.
	Dynamic []Dynamic
	// Gaps cover the bits no field claims, in chunks of at most 64 bits.
	Gaps        []Plan
	GapsDynamic []Dynamic
	// Undefined is the mask of unclaimed bits positioned in the word. Only inline words
	// of 64 bits or less have it.
	Undefined uint64

	children []*Set
	names    map[string]int
}

// Name is the layout's name.
func (s *Set) Name() string {
	return s.Layout.Name
}

// Len is the number of fields.
func (s *Set) Len() int {
	return len(s.Plans)
}

// Policy is the layout's undefined bit policy.
func (s *Set) Policy() field.Policy {
	return s.Layout.Undefined
}

// Bytes is the number of bytes a buffer needs to hold the layout at bit offset 0.
func (s *Set) Bytes() int {
	return int((s.Bits + 7) / 8)
}

// Words is the number of 64 bit words the storage needs. For a nested set this counts
// from the start of the root storage.
func (s *Set) Words() int {
	return int((s.Base + s.Bits + 63) / 64)
}

// Inline reports if the set is bound to an inline word of 64 bits or less.
func (s *Set) Inline() bool {
	return s.Storage.Kind == field.SingleWord && s.Storage.WordBits <= 64
}

// Defined is the mask of claimed bits positioned in the word. Only inline words of 64 bits
// or less have it. Bits of nested layouts count as claimed.
func (s *Set) Defined() uint64 {
	if !s.Inline() {
		panic(fmt.Sprintf("bug: layout %q: Defined called on %s storage", s.Name(), s.Storage))
	}
	var m uint64
	for i := range s.Plans {
		p := &s.Plans[i]
		if p.Kind == field.Nested {
			m |= inlinePart(p.Start, p.End(), s.Storage.WordBits, s.Order.Bits).Mask()
			continue
		}
		m |= p.Parts[0].Mask()
	}
	return m
}

// MixedBitOrder reports if any nested layout, at any depth, numbers its bits differently
// from its parent. Such a set can only be laid over a buffer at bit offset 0.
func (s *Set) MixedBitOrder() bool {
	for _, c := range s.children {
		if c != nil && (c.Order.Bits != s.Order.Bits || c.MixedBitOrder()) {
			return true
		}
	}
	return false
}

// Lookup returns the index of the field called name.
func (s *Set) Lookup(name string) (int, bool) {
	i, ok := s.names[name]
	return i, ok
}

// Child returns the compiled child layout of field i. It panics if field i is not Nested.
func (s *Set) Child(i int) *Set {
	c := s.children[i]
	if c == nil {
		panic(fmt.Sprintf("bug: field %q of layout %q is not a nested layout", s.Plans[i].Name, s.Name()))
	}
	return c
}

// Flatten returns the plans of every scalar field in the set and its nested layouts, with
// dotted names and positions relative to the root's first bit.
func (s *Set) Flatten() []Plan {
	var out []Plan
	s.flatten(&out, "", 0)
	for i := range out {
		out[i].Index = i
	}
	return out
}

func (s *Set) flatten(out *[]Plan, prefix string, base uint32) {
	for i, p := range s.Plans {
		p.Name = prefix + p.Name
		if s.Storage.Kind == field.Buffer {
			p = relocate(p, base+p.Start)
		}
		if p.Kind == field.Nested {
			s.children[i].flatten(out, p.Name+".", p.Start)
			continue
		}
		*out = append(*out, p)
	}
}

// compile builds the Set for l at absolute bit base with effective order o.
func (c *compiler) compile(l *layout.Layout, o layout.Order, base uint32, root bool) *Set {
	k := cacheKey{l: l, order: o, base: base}
	if s, ok := c.cache[k]; ok {
		c.hits++
		return s
	}

	s := &Set{
		Layout:   l,
		Order:    o,
		Storage:  c.storage,
		Base:     base,
		Bits:     l.Bits(),
		Plans:    make([]Plan, len(l.Fields)),
		children: make([]*Set, len(l.Fields)),
		names:    make(map[string]int, len(l.Fields)),
	}
	if root && c.storage.Kind == field.SingleWord {
		s.Bits = c.storage.WordBits
	}
	c.cache[k] = s

	buffer := c.storage.Kind == field.Buffer
	if buffer {
		s.Dynamic = make([]Dynamic, len(l.Fields))
	}

	for i, f := range l.Fields {
		s.names[f.Name] = i
		fo := f.Resolve(o)
		abs := base + f.Start

		var p Plan
		if f.Kind == field.Nested {
			p = nested(f.Name, i, abs, f.Bits(), fo)
			childBase := abs
			if buffer {
				childBase = 0
			}
			s.children[i] = c.compile(f.Layout, fo, childBase, false)
		} else {
			p = scalar(f.Name, i, f.Kind, abs, f.Width, fo, f.Swapped(fo), f.MustBe, c.storage)
		}
		s.Plans[i] = p
		if buffer {
			s.Dynamic[i] = dynamic(p)
		}
	}

	for _, g := range gaps(l, s.Bits) {
		p := scalar("", -1, field.Unsigned, base+g.start, g.width, o, false, field.MustBeNone, c.storage)
		s.Gaps = append(s.Gaps, p)
		if buffer {
			s.GapsDynamic = append(s.GapsDynamic, dynamic(p))
		}
		if s.Inline() {
			s.Undefined |= p.Parts[0].Mask()
		}
	}
	return s
}

type run struct {
	start, width uint32
}

// gaps returns the runs of bits in 0-total that no field of l claims, split so that no run
// is wider than 64 bits.
func gaps(l *layout.Layout, total uint32) []run {
	fields := slices.Clone(l.Fields)
	slices.SortFunc(fields, func(a, b *layout.Field) int {
		return int(a.Start) - int(b.Start)
	})

	var out []run
	add := func(from, to uint32) {
		for from < to {
			w := min(to-from, 64)
			out = append(out, run{start: from, width: w})
			from += w
		}
	}

	var next uint32
	for _, f := range fields {
		if f.Start > next {
			add(next, f.Start)
		}
		next = max(next, f.Start+f.Bits())
	}
	add(next, total)
	return out
}

// Describe returns one line per plan, for logging and the bitplanc tool.
func (s *Set) Describe() []string {
	var out []string
	for _, p := range s.Flatten() {
		out = append(out, p.String())
	}
	return out
}
