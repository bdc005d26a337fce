package backend

import (
	"github.com/bearlytools/bitlayout/field"
	"github.com/bearlytools/bitlayout/plan"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Constants is every plan of a layout as literal values, for code generators.
type Constants struct {
	Layout    string          `json:"layout"`
	Storage   string          `json:"storage"`
	ByteOrder field.ByteOrder `json:"byteOrder"`
	BitOrder  field.BitOrder  `json:"bitOrder"`
	Bits      uint32          `json:"bits"`
	Bytes     int             `json:"bytes"`
	Fields    []Constant      `json:"fields"`
}

// Constant is one field's plan.
type Constant struct {
	Name           string       `json:"name"`
	Kind           field.Kind   `json:"kind"`
	Start          uint32       `json:"start"`
	Width          uint32       `json:"width"`
	Mask           uint64       `json:"mask"`
	ByteOffset     uint32       `json:"byteOffset"`
	ReadWidthBytes uint8        `json:"readWidthBytes"`
	BitShift       uint8        `json:"bitShift"`
	NativeBits     uint8        `json:"nativeBits"`
	Swap           bool         `json:"swap,omitzero"`
	SignExtend     bool         `json:"signExtend,omitzero"`
	MustBe         field.MustBe `json:"mustBe,omitzero"`
	Split          bool         `json:"split,omitzero"`
	Parts          []plan.Part  `json:"parts"`
}

// NewConstants exports the flattened plans of s.
func NewConstants(s *plan.Set) Constants {
	flat := s.Flatten()
	c := Constants{
		Layout:    s.Name(),
		Storage:   s.Storage.String(),
		ByteOrder: s.Order.Bytes,
		BitOrder:  s.Order.Bits,
		Bits:      s.Bits,
		Bytes:     s.Bytes(),
		Fields:    make([]Constant, 0, len(flat)),
	}
	for _, p := range flat {
		c.Fields = append(c.Fields, Constant{
			Name:           p.Name,
			Kind:           p.Kind,
			Start:          p.Start,
			Width:          p.Width,
			Mask:           p.Mask,
			ByteOffset:     p.ByteOffset,
			ReadWidthBytes: p.ReadWidthBytes,
			BitShift:       p.BitShift,
			NativeBits:     p.NativeBits,
			Swap:           p.Swap,
			SignExtend:     p.SignExtend,
			MustBe:         p.MustBe,
			Split:          p.CrossesWordBoundary,
			Parts:          p.Parts[:p.NumParts],
		})
	}
	return c
}

// MarshalConstants renders c as indented JSON.
func MarshalConstants(c Constants) ([]byte, error) {
	return json.Marshal(c, jsontext.WithIndent("  "))
}

// UnmarshalConstants reads JSON written by MarshalConstants.
func UnmarshalConstants(b []byte) (Constants, error) {
	var c Constants
	if err := json.Unmarshal(b, &c, json.RejectUnknownMembers(true)); err != nil {
		return Constants{}, err
	}
	return c, nil
}
