// Package bitlayout resolves bit-field layouts into access plans and gets and sets fields
// through them.
//
// A layout (package layout) names fields by bit position and width, the storage it lives in
// and the byte and bit order it uses. Compile validates the layout and turns every field
// into a plan (package plan): which bytes or words to load, how far to shift and what to
// mask. Accessors (package accessor) run those plans against an inline word, a []uint64 or
// a byte buffer.
//
// Layouts can also be read from JSON descriptors (package desc) and the plans exported as
// constants for code generators (package backend).
package bitlayout

import (
	"github.com/bearlytools/bitlayout/field"
	"github.com/bearlytools/bitlayout/layout"
	"github.com/bearlytools/bitlayout/plan"
	"github.com/gostdlib/base/context"
)

// Kind is the type of a field.
type Kind = field.Kind

const (
	KindUnknown  = field.Unknown
	KindUnsigned = field.Unsigned
	KindSigned   = field.Signed
	KindEnum     = field.Enum
	KindBool     = field.Bool
	KindNested   = field.Nested
)

// ByteOrder is the order of a multi-byte value's bytes.
type ByteOrder = field.ByteOrder

const (
	ByteOrderUnset = field.ByteOrderUnset
	LittleEndian   = field.LittleEndian
	BigEndian      = field.BigEndian
)

// BitOrder is how bits are numbered within storage.
type BitOrder = field.BitOrder

const (
	BitOrderUnset = field.BitOrderUnset
	Lsb0          = field.Lsb0
	Msb0          = field.Msb0
)

// Policy is what happens to bits no field claims.
type Policy = field.Policy

const (
	Preserve  = field.Preserve
	ForceZero = field.ForceZero
	ForceOne  = field.ForceOne
)

type (
	Layout = layout.Layout
	Field  = layout.Field
	Set    = plan.Set
)

// Compile validates l and builds its access plans. See plan.Compile.
func Compile(ctx context.Context, l *Layout, options ...plan.Option) (*Set, error) {
	return plan.Compile(ctx, l, options...)
}
