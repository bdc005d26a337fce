package generate

import (
	"bytes"
	"embed"
	"fmt"
	"go/format"
	"strings"
	"text/template"
	"unicode"

	"github.com/bearlytools/bitlayout/backend"
)

//go:embed templates/*
var f embed.FS
var templates *template.Template

func init() {
	t, err := template.New("").Funcs(template.FuncMap{"ident": ident}).ParseFS(f, "templates/*.tmpl")
	if err != nil {
		panic(err)
	}
	templates = t
}

type templateData struct {
	Package string
	Prefix  string
	C       backend.Constants
}

// Render renders c as Go source in package pkg: one block of constants per field, named
// after the layout and the field.
func Render(pkg string, c backend.Constants) ([]byte, error) {
	buff := bytes.Buffer{}

	data := templateData{Package: pkg, Prefix: ident(c.Layout), C: c}
	if err := checkNames(data); err != nil {
		return nil, err
	}
	if err := templates.ExecuteTemplate(&buff, "consts.tmpl", data); err != nil {
		return nil, err
	}
	b, err := format.Source(buff.Bytes())
	if err != nil {
		return nil, fmt.Errorf("rendered source for layout %q does not parse: %w", c.Layout, err)
	}
	return b, nil
}

// suffixes are the per field constants consts.tmpl emits.
var suffixes = []string{"ByteOffset", "ReadWidthBytes", "BitShift", "Mask", "NativeBits", "Swap", "SignExtend", "Split"}

// checkNames finds field names that map to the same constant, such as "a.b" and "a_b".
func checkNames(d templateData) error {
	seen := map[string]string{
		d.Prefix + "Bits":  d.C.Layout,
		d.Prefix + "Bytes": d.C.Layout,
	}
	for _, fc := range d.C.Fields {
		for _, suf := range suffixes {
			name := d.Prefix + ident(fc.Name) + suf
			if prev, ok := seen[name]; ok {
				return fmt.Errorf("layout %q: fields %q and %q both render as constant %s", d.C.Layout, prev, fc.Name, name)
			}
			seen[name] = fc.Name
		}
	}
	return nil
}

// ident turns a layout or dotted field name into an exported Go identifier.
func ident(s string) string {
	var sb strings.Builder
	up := true
	for _, r := range s {
		switch {
		case r == '.' || r == '_' || r == '-' || r == ' ':
			up = true
		case up:
			sb.WriteRune(unicode.ToUpper(r))
			up = false
		default:
			sb.WriteRune(r)
		}
	}
	out := sb.String()
	if out == "" || !unicode.IsLetter(rune(out[0])) {
		out = "X" + out
	}
	return out
}
