package layout

import (
	"github.com/bearlytools/bitlayout/field"
)

// Field describes one named bit range of a Layout.
type Field struct {
	Name string
	// Start is the first bit of the field in the layout's bit numbering.
	Start uint32
	// Width is the number of bits. A Nested field with Width 0 takes the width of its layout.
	Width uint32
	Kind  field.Kind
	// ByteOrder overrides the byte order the field would otherwise inherit.
	ByteOrder field.ByteOrder
	// MustBe forces a reserved field to all zeros or all ones.
	MustBe field.MustBe
	// Layout is the child layout of a Nested field. It may be shared by any number of parents.
	Layout *Layout
}

// FieldOption is an optional argument to the Field constructors.
type FieldOption func(f *Field)

// WithByteOrder overrides the byte order of a field.
func WithByteOrder(o field.ByteOrder) FieldOption {
	return func(f *Field) { f.ByteOrder = o }
}

// WithMustBe makes the field a reserved field that always holds zeros or ones.
func WithMustBe(m field.MustBe) FieldOption {
	return func(f *Field) { f.MustBe = m }
}

func newField(name string, kind field.Kind, start, width uint32, options []FieldOption) *Field {
	f := &Field{Name: name, Kind: kind, Start: start, Width: width}
	for _, o := range options {
		o(f)
	}
	return f
}

// Uint is an unsigned field.
func Uint(name string, start, width uint32, options ...FieldOption) *Field {
	return newField(name, field.Unsigned, start, width, options)
}

// Int is a two's complement signed field.
func Int(name string, start, width uint32, options ...FieldOption) *Field {
	return newField(name, field.Signed, start, width, options)
}

// Enum is an unsigned field whose values the caller maps to an enumerated type.
func Enum(name string, start, width uint32, options ...FieldOption) *Field {
	return newField(name, field.Enum, start, width, options)
}

// Bool is a single bit flag.
func Bool(name string, bit uint32, options ...FieldOption) *Field {
	return newField(name, field.Bool, bit, 1, options)
}

// Nest places child at bit start of the parent.
func Nest(name string, start uint32, child *Layout, options ...FieldOption) *Field {
	f := newField(name, field.Nested, start, 0, options)
	f.Layout = child
	return f
}

// Bits is the number of bits the field occupies.
func (f *Field) Bits() uint32 {
	if f.Kind == field.Nested && f.Width == 0 && f.Layout != nil {
		return f.Layout.Bits()
	}
	return f.Width
}

// End is the last bit of the field.
func (f *Field) End() uint32 {
	return f.Start + f.Bits() - 1
}

// Resolve returns the order the field is accessed with inside a layout whose effective
// order is enclosing. The field's own byte order wins, then a nested layout's own
// declarations, then the enclosing order. For a Nested field the result is the order the
// child's fields inherit.
func (f *Field) Resolve(enclosing Order) Order {
	o := enclosing
	if f.Kind == field.Nested && f.Layout != nil {
		o = f.Layout.Effective(enclosing)
	}
	if f.ByteOrder != field.ByteOrderUnset {
		o.Bytes = f.ByteOrder
	}
	return o
}

// Swapped reports if the field's value is stored with its bytes reversed relative to the
// natural byte order of its bit numbering. Only whole byte fields wider than a byte carry a
// byte order; for anything else this is false.
func (f *Field) Swapped(o Order) bool {
	if f.Kind == field.Nested || f.Width <= 8 || f.Width%8 != 0 {
		return false
	}
	return o.Bytes != o.Bits.Natural()
}
