package layout

import (
	"slices"

	"github.com/bearlytools/bitlayout/field"
)

// Validate checks l and every layout nested in it, and returns every problem found. A nil
// return means the layout can be compiled for its declared storage.
func Validate(l *Layout) []*Error {
	return ValidateFor(l, l.Storage, Default)
}

// ValidateFor checks l as if it were bound to storage and sat inside a layout whose
// effective order is inherited.
func ValidateFor(l *Layout, storage Storage, inherited Order) []*Error {
	// Sizes are derived recursively, so a cycle has to be found before anything asks for one.
	if err := findCycle(l, nil, nil); err != nil {
		return []*Error{err}
	}

	v := &validator{storage: storage}
	v.layout(l, l.Effective(inherited), 0, nil, true)
	return v.errs
}

func findCycle(l *Layout, stack []*Layout, path []string) *Error {
	path = append(path, nameOf(l))
	if slices.Contains(stack, l) {
		return newError(Cycle, path, "", "layout %q contains itself", l.Name)
	}
	stack = append(stack, l)
	for _, f := range l.Fields {
		if f == nil || f.Layout == nil {
			continue
		}
		if err := findCycle(f.Layout, stack, append(path, f.Name)); err != nil {
			return err
		}
	}
	return nil
}

type validator struct {
	storage Storage
	errs    []*Error
}

func (v *validator) add(e *Error) {
	v.errs = append(v.errs, e)
}

// layout validates l placed at absolute bit base of the storage.
func (v *validator) layout(l *Layout, order Order, base uint32, path []string, root bool) {
	path = append(path, nameOf(l))

	if root && !v.storageOK(l, path) {
		return
	}

	bitsAvail := l.Bits()
	if bitsAvail > MaxBits {
		v.add(newError(TooLarge, path, "", "layout is %d bits, the maximum is %d", bitsAvail, MaxBits))
		return
	}

	names := map[string]bool{}
	for _, f := range l.Fields {
		if f == nil {
			v.add(newError(InvalidKind, path, "", "nil field"))
			continue
		}
		if f.Name == "" || names[f.Name] {
			v.add(newError(DuplicateName, path, f.Name, "field names must be unique and not empty"))
		}
		names[f.Name] = true

		if !v.fieldOK(l, f, order, path) {
			continue
		}

		end := uint64(f.Start) + uint64(f.Bits())
		switch {
		case l.Storage.Kind == field.SingleWord && end > uint64(l.Storage.WordBits):
			v.add(newError(ExceedsStorage, path, f.Name, "bits %d-%d do not fit a %d bit word", f.Start, end-1, l.Storage.WordBits))
			continue
		case end > uint64(bitsAvail):
			v.add(newError(OutOfRange, path, f.Name, "bits %d-%d are past the layout's %d bits", f.Start, end-1, bitsAvail))
			continue
		}

		if f.Kind == field.Nested {
			v.nested(f, order, base, path)
		}
	}

	v.overlaps(l, path)
}

// storageOK checks the storage the root layout is bound to.
func (v *validator) storageOK(l *Layout, path []string) bool {
	switch v.storage.Kind {
	case field.SingleWord:
		switch v.storage.WordBits {
		case 8, 16, 32, 64, 128:
		default:
			v.add(newError(InvalidStorage, path, "", "word width must be 8, 16, 32, 64 or 128, not %d", v.storage.WordBits))
			return false
		}
		if l.Bits() > v.storage.WordBits {
			v.add(newError(ExceedsStorage, path, "", "layout is %d bits, storage is a %d bit word", l.Bits(), v.storage.WordBits))
			return false
		}
	case field.MultiWord, field.Buffer:
	default:
		v.add(newError(InvalidStorage, path, "", "unknown storage kind %s", v.storage.Kind))
		return false
	}
	if l.Storage.Kind == field.SingleWord {
		switch l.Storage.WordBits {
		case 8, 16, 32, 64, 128:
		default:
			v.add(newError(InvalidStorage, path, "", "word width must be 8, 16, 32, 64 or 128, not %d", l.Storage.WordBits))
			return false
		}
	}
	if l.Storage.Kind != field.SingleWord && l.TotalBits == 0 && len(l.Fields) == 0 {
		v.add(newError(InvalidStorage, path, "", "a layout without fields needs TotalBits"))
		return false
	}
	return true
}

func (v *validator) fieldOK(l *Layout, f *Field, order Order, path []string) bool {
	switch f.Kind {
	case field.Unsigned, field.Signed, field.Enum:
		if f.Width == 0 || f.Width > MaxFieldWidth {
			v.add(newError(InvalidWidth, path, f.Name, "width %d is not in 1-%d", f.Width, MaxFieldWidth))
			return false
		}
	case field.Bool:
		if f.Width != 1 {
			v.add(newError(InvalidWidth, path, f.Name, "a bool is 1 bit, not %d", f.Width))
			return false
		}
	case field.Nested:
		if f.Layout == nil {
			v.add(newError(NestedMissing, path, f.Name, "nested field has no layout"))
			return false
		}
		if f.MustBe != field.MustBeNone {
			v.add(newError(MustBeNested, path, f.Name, "a nested field cannot be %s", f.MustBe))
		}
		if f.Width != 0 && f.Width != f.Layout.Bits() {
			v.add(newError(NestedMismatch, path, f.Name, "width %d but layout %q is %d bits", f.Width, f.Layout.Name, f.Layout.Bits()))
			return false
		}
		if f.Layout.Bits() == 0 {
			v.add(newError(NestedMismatch, path, f.Name, "layout %q has no bits", f.Layout.Name))
			return false
		}
		return true
	default:
		v.add(newError(InvalidKind, path, f.Name, "kind %s", f.Kind))
		return false
	}

	if f.Layout != nil {
		v.add(newError(NestedMismatch, path, f.Name, "a %s field cannot have a layout", f.Kind))
	}
	if f.ByteOrder != field.ByteOrderUnset && f.Width > 8 && f.Width%8 != 0 {
		o := f.Resolve(order)
		if o.Bytes != o.Bits.Natural() {
			v.add(newError(ByteOrderWidth, path, f.Name, "%s byte order needs a whole number of bytes, width is %d", f.ByteOrder, f.Width))
		}
	}
	return true
}

func (v *validator) nested(f *Field, order Order, base uint32, path []string) {
	child := f.Layout
	co := f.Resolve(order)
	abs := base + f.Start

	if co.Bits != order.Bits {
		switch {
		case v.storage.Kind != field.Buffer:
			v.add(newError(BitOrderMismatch, path, f.Name, "layout %q is %s inside %s word storage", child.Name, co.Bits, order.Bits))
			return
		case abs%8 != 0 || child.Bits()%8 != 0:
			v.add(newError(BitOrderMismatch, path, f.Name, "layout %q is %s inside %s, so it must cover whole bytes, it is bits %d-%d", child.Name, co.Bits, order.Bits, abs, abs+child.Bits()-1))
			return
		}
	}
	if child.Storage.Kind == field.SingleWord {
		switch child.Storage.WordBits {
		case 8, 16, 32, 64, 128:
		default:
			v.add(newError(InvalidStorage, path, f.Name, "layout %q word width must be 8, 16, 32, 64 or 128, not %d", child.Name, child.Storage.WordBits))
			return
		}
	}
	v.layout(child, co, abs, append(path, f.Name), false)
}

// overlaps reports every pair of fields that claim the same bits.
func (v *validator) overlaps(l *Layout, path []string) {
	fields := make([]*Field, 0, len(l.Fields))
	for _, f := range l.Fields {
		if f != nil && f.Bits() > 0 {
			fields = append(fields, f)
		}
	}
	slices.SortStableFunc(fields, func(a, b *Field) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		}
		return 0
	})

	for i, a := range fields {
		for _, b := range fields[i+1:] {
			if b.Start > a.End() {
				break
			}
			v.add(newError(Overlap, path, b.Name, "bits %d-%d overlap field %s at bits %d-%d", b.Start, b.End(), a.Name, a.Start, a.End()))
		}
	}
}

func nameOf(l *Layout) string {
	if l.Name == "" {
		return "<unnamed>"
	}
	return l.Name
}
