package layout

import (
	"fmt"
	"strings"
)

// ErrorKind categorizes a layout Error.
type ErrorKind string

const (
	// InvalidWidth is a field width of zero, over MaxFieldWidth, or a Bool wider than 1 bit.
	InvalidWidth ErrorKind = "invalid_width"
	// Overlap is two fields claiming the same bit.
	Overlap ErrorKind = "overlap"
	// OutOfRange is a field that ends past the layout's TotalBits.
	OutOfRange ErrorKind = "out_of_range"
	// ExceedsStorage is a field that does not fit in the layout's storage.
	ExceedsStorage ErrorKind = "exceeds_storage"
	// InvalidStorage is an unknown storage kind or an unsupported word width.
	InvalidStorage ErrorKind = "invalid_storage"
	// TooLarge is a layout bigger than MaxBits.
	TooLarge ErrorKind = "too_large"
	// NestedMissing is a Nested field without a child layout.
	NestedMissing ErrorKind = "nested_missing"
	// NestedMismatch is a child layout on a field that isn't Nested, or a Nested field whose
	// width disagrees with its child.
	NestedMismatch ErrorKind = "nested_mismatch"
	// BitOrderMismatch is a child layout whose bit numbering cannot be mapped into its parent.
	BitOrderMismatch ErrorKind = "bit_order_mismatch"
	// ByteOrderWidth is a byte order override on a field that is not a whole number of bytes.
	ByteOrderWidth ErrorKind = "byte_order_width"
	// DuplicateName is two fields with the same name, or a field without a name.
	DuplicateName ErrorKind = "duplicate_name"
	// MustBeNested is a MustBe constraint on a Nested field.
	MustBeNested ErrorKind = "must_be_nested"
	// Cycle is a layout that contains itself.
	Cycle ErrorKind = "cycle"
	// InvalidKind is a field with an unknown Kind.
	InvalidKind ErrorKind = "invalid_kind"
)

// Error is a single problem found in a layout.
type Error struct {
	Kind ErrorKind
	// Path is the chain of layout and nested field names leading to the layout with the problem.
	Path []string
	// Field is the name of the offending field, if there is one.
	Field  string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Kind))
	b.WriteByte(']')

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

// Is reports whether target is an *Error of the same Kind. This allows
// errors.Is(err, &layout.Error{Kind: layout.Overlap}).
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

func newError(kind ErrorKind, path []string, fieldName string, format string, args ...any) *Error {
	return &Error{
		Kind:   kind,
		Path:   append([]string(nil), path...),
		Field:  fieldName,
		Detail: fmt.Sprintf(format, args...),
	}
}
