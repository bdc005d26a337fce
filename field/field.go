// Package field holds the closed sets of tags that describe a bit field: what kind of value
// it holds, how its bytes and bits are ordered, what its undefined bits must be and what
// storage a layout is packed into.
//
// Every tag marshals to and from its lower case name so descriptors can be written as text.
package field

import "fmt"

//go:generate stringer -type=Kind -linecomment

// Kind is the kind of value a field holds.
type Kind uint8

const (
	Unknown  Kind = 0 // unknown
	Unsigned Kind = 1 // uint
	Signed   Kind = 2 // int
	Enum     Kind = 3 // enum
	Bool     Kind = 4 // bool
	Nested   Kind = 5 // nested
)

// IsNumber reports if the kind is read as an integer.
func (k Kind) IsNumber() bool {
	return k == Unsigned || k == Signed || k == Enum
}

//go:generate stringer -type=ByteOrder -linecomment

// ByteOrder is the order of the bytes of a multi-byte field. ByteOrderUnset means the field
// inherits the order from the layout that holds it.
type ByteOrder uint8

const (
	ByteOrderUnset ByteOrder = 0 // unset
	LittleEndian   ByteOrder = 1 // little
	BigEndian      ByteOrder = 2 // big
)

//go:generate stringer -type=BitOrder -linecomment

// BitOrder says which end of the storage bit 0 is at.
type BitOrder uint8

const (
	BitOrderUnset BitOrder = 0 // unset
	// Lsb0 numbers bits from the least significant bit of the first byte (or word).
	Lsb0 BitOrder = 1 // lsb0
	// Msb0 numbers bits from the most significant bit of the first byte (or word).
	Msb0 BitOrder = 2 // msb0
)

// Natural returns the byte order that bit numbering implies. Lsb0 storage reads as little
// endian and Msb0 storage reads as big endian. A field in a different byte order must
// have its bytes swapped.
func (b BitOrder) Natural() ByteOrder {
	if b == Msb0 {
		return BigEndian
	}
	return LittleEndian
}

//go:generate stringer -type=MustBe -linecomment

// MustBe forces the value of a reserved field.
type MustBe uint8

const (
	MustBeNone MustBe = 0 // none
	MustBeZero MustBe = 1 // zero
	MustBeOne  MustBe = 2 // one
)

//go:generate stringer -type=Policy -linecomment

// Policy decides what happens to the bits of a layout that no field claims.
type Policy uint8

const (
	// Preserve leaves undefined bits as they are.
	Preserve Policy = 0 // preserve
	// ForceZero clears undefined bits.
	ForceZero Policy = 1 // force-zero
	// ForceOne sets undefined bits.
	ForceOne Policy = 2 // force-one
)

//go:generate stringer -type=StorageKind -linecomment

// StorageKind is the kind of storage a layout is packed into.
type StorageKind uint8

const (
	StorageUnknown StorageKind = 0 // unknown
	// SingleWord is one inline integer of 8, 16, 32, 64 or 128 bits.
	SingleWord StorageKind = 1 // word
	// MultiWord is an array of 64 bit words.
	MultiWord StorageKind = 2 // multiword
	// Buffer is a view over an external byte buffer.
	Buffer StorageKind = 3 // buffer
)

type tag interface {
	~uint8
	String() string
}

// parse finds the value of T named s. T values must be dense from 0 to n-1.
func parse[T tag](s string, n int) (T, error) {
	for i := 0; i < n; i++ {
		if T(i).String() == s {
			return T(i), nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%q is not a valid %T", s, zero)
}

// ParseKind returns the Kind named s.
func ParseKind(s string) (Kind, error) {
	return parse[Kind](s, len(_Kind_index)-1)
}

// ParseByteOrder returns the ByteOrder named s.
func ParseByteOrder(s string) (ByteOrder, error) {
	return parse[ByteOrder](s, len(_ByteOrder_index)-1)
}

// ParseBitOrder returns the BitOrder named s.
func ParseBitOrder(s string) (BitOrder, error) {
	return parse[BitOrder](s, len(_BitOrder_index)-1)
}

// ParseMustBe returns the MustBe named s.
func ParseMustBe(s string) (MustBe, error) {
	return parse[MustBe](s, len(_MustBe_index)-1)
}

// ParsePolicy returns the Policy named s.
func ParsePolicy(s string) (Policy, error) {
	return parse[Policy](s, len(_Policy_index)-1)
}

// ParseStorageKind returns the StorageKind named s.
func ParseStorageKind(s string) (StorageKind, error) {
	return parse[StorageKind](s, len(_StorageKind_index)-1)
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

func (o ByteOrder) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *ByteOrder) UnmarshalText(b []byte) error {
	v, err := ParseByteOrder(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

func (o BitOrder) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *BitOrder) UnmarshalText(b []byte) error {
	v, err := ParseBitOrder(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

func (m MustBe) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *MustBe) UnmarshalText(b []byte) error {
	v, err := ParseMustBe(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (p Policy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Policy) UnmarshalText(b []byte) error {
	v, err := ParsePolicy(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (s StorageKind) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *StorageKind) UnmarshalText(b []byte) error {
	v, err := ParseStorageKind(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
