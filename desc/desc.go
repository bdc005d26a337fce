// Package desc reads and writes layout descriptor documents: JSON files that describe a set
// of layouts, the form a front end hands layouts over in.
//
// A document looks like:
//
//	{
//	  "root": "header",
//	  "layouts": [
//	    {
//	      "name": "header",
//	      "storage": "buffer",
//	      "bitOrder": "msb0",
//	      "undefined": "force-zero",
//	      "fields": [
//	        {"name": "version", "kind": "uint", "start": 0, "width": 4},
//	        {"name": "addr", "kind": "nested", "start": 8, "layout": "addr"}
//	      ]
//	    },
//	    ...
//	  ]
//	}
//
// Nested fields name another layout in the same document.
package desc

import (
	"io/fs"
	"strconv"
	"strings"

	lerrors "github.com/bearlytools/bitlayout/errors"
	"github.com/bearlytools/bitlayout/field"
	"github.com/bearlytools/bitlayout/layout"
	"github.com/bearlytools/bitlayout/plan"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/gostdlib/base/context"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Document is a descriptor file.
type Document struct {
	// Root names the layout tools use when none is asked for. If empty, the first layout.
	Root    string   `json:"root,omitzero"`
	Layouts []Layout `json:"layouts"`
}

// Layout describes one layout.Layout.
type Layout struct {
	Name      string          `json:"name"`
	Storage   string          `json:"storage"`
	TotalBits uint32          `json:"totalBits,omitzero"`
	ByteOrder field.ByteOrder `json:"byteOrder,omitzero"`
	BitOrder  field.BitOrder  `json:"bitOrder,omitzero"`
	Undefined field.Policy    `json:"undefined,omitzero"`
	Fields    []Field         `json:"fields"`
}

// Field describes one layout.Field.
type Field struct {
	Name      string          `json:"name"`
	Kind      field.Kind      `json:"kind"`
	Start     uint32          `json:"start"`
	Width     uint32          `json:"width,omitzero"`
	ByteOrder field.ByteOrder `json:"byteOrder,omitzero"`
	MustBe    field.MustBe    `json:"mustBe,omitzero"`
	// Layout is the name of the nested layout.
	Layout string `json:"layout,omitzero"`
}

// Parse decodes a document. Unknown members are an error.
func Parse(b []byte) (*Document, error) {
	d := &Document{}
	if err := json.Unmarshal(b, d, json.RejectUnknownMembers(true)); err != nil {
		return nil, errors.Wrap(err, "descriptor is not valid")
	}
	if len(d.Layouts) == 0 {
		return nil, errors.New("descriptor has no layouts")
	}
	return d, nil
}

// Load reads and parses the document at path in fsys.
func Load(ctx context.Context, fsys fs.ReadFileFS, path string) (*Document, error) {
	b, err := fsys.ReadFile(path)
	if err != nil {
		return nil, lerrors.E(ctx, lerrors.CatUser, lerrors.TypeFS, errors.Wrapf(err, "problem reading descriptor %s", path))
	}
	d, err := Parse(b)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	plan.Logger().Debug("loaded descriptor", zap.String("path", path), zap.Int("layouts", len(d.Layouts)), zap.String("root", d.Root))
	return d, nil
}

// Marshal encodes d as indented JSON.
func (d *Document) Marshal() ([]byte, error) {
	return json.Marshal(d, jsontext.WithIndent("  "))
}

// Build turns every layout in the document into a *layout.Layout, keyed by name. Nested
// references are resolved by name; they are not validated, use layout.Validate or
// plan.Compile for that.
func (d *Document) Build() (map[string]*layout.Layout, error) {
	out := make(map[string]*layout.Layout, len(d.Layouts))
	for _, ld := range d.Layouts {
		if _, ok := out[ld.Name]; ok {
			return nil, errors.Errorf("layout %q is described more than once", ld.Name)
		}
		storage, err := ParseStorage(ld.Storage)
		if err != nil {
			return nil, errors.Wrapf(err, "layout %q", ld.Name)
		}
		out[ld.Name] = layout.New(ld.Name, storage, nil,
			layout.TotalBits(ld.TotalBits),
			layout.ByteOrder(ld.ByteOrder),
			layout.BitOrder(ld.BitOrder),
			layout.Undefined(ld.Undefined),
		)
	}

	// Fields are filled in once every layout exists, so layouts may refer to each other in
	// any order.
	for _, ld := range d.Layouts {
		l := out[ld.Name]
		l.Fields = make([]*layout.Field, 0, len(ld.Fields))
		for _, fd := range ld.Fields {
			f, err := fd.build(out)
			if err != nil {
				return nil, errors.Wrapf(err, "layout %q", ld.Name)
			}
			l.Fields = append(l.Fields, f)
		}
	}
	return out, nil
}

func (fd Field) build(layouts map[string]*layout.Layout) (*layout.Field, error) {
	f := &layout.Field{
		Name:      fd.Name,
		Kind:      fd.Kind,
		Start:     fd.Start,
		Width:     fd.Width,
		ByteOrder: fd.ByteOrder,
		MustBe:    fd.MustBe,
	}
	switch fd.Kind {
	case field.Nested:
		l, ok := layouts[fd.Layout]
		if !ok {
			return nil, errors.Errorf("field %q refers to layout %q, which is not in the descriptor", fd.Name, fd.Layout)
		}
		f.Layout = l
	case field.Bool:
		if f.Width == 0 {
			f.Width = 1
		}
	}
	if fd.Kind != field.Nested && fd.Layout != "" {
		return nil, errors.Errorf("field %q is %s and cannot name a layout", fd.Name, fd.Kind)
	}
	return f, nil
}

// Layout builds the document and returns the layout called name. An empty name means the
// document's root.
func (d *Document) Layout(name string) (*layout.Layout, error) {
	if name == "" {
		name = d.Root
	}
	if name == "" {
		name = d.Layouts[0].Name
	}
	all, err := d.Build()
	if err != nil {
		return nil, err
	}
	l, ok := all[name]
	if !ok {
		return nil, errors.Errorf("descriptor has no layout %q", name)
	}
	return l, nil
}

// FromLayout describes l and every layout nested in it. l is the document's root.
func FromLayout(l *layout.Layout) *Document {
	d := &Document{Root: l.Name}
	seen := map[*layout.Layout]bool{}

	var add func(l *layout.Layout)
	add = func(l *layout.Layout) {
		if seen[l] {
			return
		}
		seen[l] = true

		ld := Layout{
			Name:      l.Name,
			Storage:   FormatStorage(l.Storage),
			TotalBits: l.TotalBits,
			ByteOrder: l.ByteOrder,
			BitOrder:  l.BitOrder,
			Undefined: l.Undefined,
			Fields:    make([]Field, 0, len(l.Fields)),
		}
		d.Layouts = append(d.Layouts, ld)
		i := len(d.Layouts) - 1

		for _, f := range l.Fields {
			fd := Field{
				Name:      f.Name,
				Kind:      f.Kind,
				Start:     f.Start,
				Width:     f.Width,
				ByteOrder: f.ByteOrder,
				MustBe:    f.MustBe,
			}
			if f.Kind == field.Nested && f.Layout != nil {
				fd.Layout = f.Layout.Name
				add(f.Layout)
			}
			d.Layouts[i].Fields = append(d.Layouts[i].Fields, fd)
		}
	}
	add(l)
	return d
}

// ParseStorage parses "buffer", "multiword" or "word" followed by 8, 16, 32, 64 or 128.
func ParseStorage(s string) (layout.Storage, error) {
	switch s {
	case "buffer":
		return layout.Buffer(), nil
	case "multiword":
		return layout.MultiWord(), nil
	}
	if n, ok := strings.CutPrefix(s, "word"); ok {
		bits, err := strconv.ParseUint(n, 10, 32)
		if err == nil {
			switch bits {
			case 8, 16, 32, 64, 128:
				return layout.Word(uint32(bits)), nil
			}
		}
	}
	return layout.Storage{}, errors.Errorf("storage %q is not buffer, multiword or word8/16/32/64/128", s)
}

// FormatStorage is the reverse of ParseStorage.
func FormatStorage(s layout.Storage) string {
	return s.String()
}
