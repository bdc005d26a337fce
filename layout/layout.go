// Package layout describes packed bit-field structures: the fields, the storage they are
// packed into and the byte order, bit order and undefined bit policy that govern them.
//
// A Layout is a plain description. It is checked with Validate and turned into access
// plans by the plan package. Layouts are shared read-only once built; do not mutate a
// Layout after it has been compiled.
package layout

import (
	"fmt"
	"slices"

	"github.com/bearlytools/bitlayout/field"
)

const (
	// MaxBits is the largest layout that can be described, 256 64 bit words.
	MaxBits = 16384
	// MaxFieldWidth is the widest scalar field. Wider values must be split into several fields.
	MaxFieldWidth = 64
)

// Order is a byte order and bit order pair. A zero value in either half means "inherit".
type Order struct {
	Bytes field.ByteOrder
	Bits  field.BitOrder
}

// Default is the order used when nothing in the layout tree declares one.
var Default = Order{Bytes: field.LittleEndian, Bits: field.Lsb0}

// Over returns o with any unset half taken from inherited.
func (o Order) Over(inherited Order) Order {
	if o.Bytes == field.ByteOrderUnset {
		o.Bytes = inherited.Bytes
	}
	if o.Bits == field.BitOrderUnset {
		o.Bits = inherited.Bits
	}
	return o
}

// Complete reports if both halves are set.
func (o Order) Complete() bool {
	return o.Bytes != field.ByteOrderUnset && o.Bits != field.BitOrderUnset
}

func (o Order) String() string {
	return fmt.Sprintf("%s/%s", o.Bytes, o.Bits)
}

// Storage is the storage a layout is packed into.
type Storage struct {
	Kind field.StorageKind
	// WordBits is the width of a SingleWord: 8, 16, 32, 64 or 128.
	WordBits uint32
}

// Word is inline storage of a single integer of the given width.
func Word(bits uint32) Storage {
	return Storage{Kind: field.SingleWord, WordBits: bits}
}

// MultiWord is storage in an array of 64 bit words.
func MultiWord() Storage {
	return Storage{Kind: field.MultiWord}
}

// Buffer is storage in an external byte buffer.
func Buffer() Storage {
	return Storage{Kind: field.Buffer}
}

// IsWords reports if the storage is addressed by 64 bit words instead of inline or by bytes.
func (s Storage) IsWords() bool {
	return s.Kind == field.MultiWord || (s.Kind == field.SingleWord && s.WordBits == 128)
}

func (s Storage) String() string {
	if s.Kind == field.SingleWord {
		return fmt.Sprintf("word%d", s.WordBits)
	}
	return s.Kind.String()
}

// Layout describes one packed structure.
type Layout struct {
	// Name is used in diagnostics and generated constant names.
	Name string
	// Fields in declaration order. The order is only significant for diagnostics.
	Fields []*Field
	// TotalBits is the size of the layout. If zero, a SingleWord layout uses its word width
	// and any other layout ends at the last bit of its highest field.
	TotalBits uint32
	Storage   Storage
	// ByteOrder and BitOrder are the layout's own declarations. Unset halves are inherited
	// from the enclosing layout, or from Default at the root.
	ByteOrder field.ByteOrder
	BitOrder  field.BitOrder
	// Undefined is what happens to bits that no field claims.
	Undefined field.Policy
}

// Option is an optional argument to New.
type Option func(l *Layout)

// ByteOrder sets the layout's byte order.
func ByteOrder(o field.ByteOrder) Option {
	return func(l *Layout) { l.ByteOrder = o }
}

// BitOrder sets the layout's bit order.
func BitOrder(o field.BitOrder) Option {
	return func(l *Layout) { l.BitOrder = o }
}

// Undefined sets the undefined bit policy.
func Undefined(p field.Policy) Option {
	return func(l *Layout) { l.Undefined = p }
}

// TotalBits sets the size of the layout in bits.
func TotalBits(n uint32) Option {
	return func(l *Layout) { l.TotalBits = n }
}

// New creates a Layout. It does not validate it, use Validate or plan.Compile for that.
func New(name string, storage Storage, fields []*Field, options ...Option) *Layout {
	l := &Layout{Name: name, Storage: storage, Fields: fields}
	for _, o := range options {
		o(l)
	}
	return l
}

// Declared is the order the layout itself declares. It may be incomplete.
func (l *Layout) Declared() Order {
	return Order{Bytes: l.ByteOrder, Bits: l.BitOrder}
}

// Effective is the order the layout's fields resolve against when the layout sits in a
// context with the inherited order.
func (l *Layout) Effective(inherited Order) Order {
	return l.Declared().Over(inherited)
}

// Bits is the number of bits the layout occupies.
func (l *Layout) Bits() uint32 {
	if l.Storage.Kind == field.SingleWord {
		return l.Storage.WordBits
	}
	if l.TotalBits != 0 {
		return l.TotalBits
	}
	var n uint32
	for _, f := range l.Fields {
		if e := f.Start + f.Bits(); e > n {
			n = e
		}
	}
	return n
}

// Bytes is the number of bytes needed to hold the layout.
func (l *Layout) Bytes() int {
	return int((l.Bits() + 7) / 8)
}

// Words is the number of 64 bit words needed to hold the layout.
func (l *Layout) Words() int {
	return int((l.Bits() + 63) / 64)
}

// DefinedMask returns a mask with bit i set when a field claims bit i. It is only
// meaningful for layouts of 64 bits or less and panics otherwise. Bit i is bit i in the
// layout's own numbering, not a position in any particular storage.
func (l *Layout) DefinedMask() uint64 {
	if l.Bits() > 64 {
		panic(fmt.Sprintf("layout %q: DefinedMask called on a %d bit layout", l.Name, l.Bits()))
	}
	var m uint64
	for _, f := range l.Fields {
		w := f.Bits()
		if w >= 64 {
			return ^uint64(0)
		}
		m |= (uint64(1)<<w - 1) << f.Start
	}
	return m
}

// Index returns the index of the field called name.
func (l *Layout) Index(name string) (int, bool) {
	i := slices.IndexFunc(l.Fields, func(f *Field) bool { return f.Name == name })
	return i, i >= 0
}

// ByName retrieves the Field by name. If the name can't be found, it panics.
func (l *Layout) ByName(name string) *Field {
	i, ok := l.Index(name)
	if !ok {
		panic(fmt.Sprintf("layout %q: could not find field %q", l.Name, name))
	}
	return l.Fields[i]
}
