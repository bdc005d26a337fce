package layout

import (
	"errors"
	"testing"

	"github.com/bearlytools/bitlayout/field"
	"github.com/kylelemons/godebug/pretty"
)

func TestBits(t *testing.T) {
	tests := []struct {
		desc      string
		l         *Layout
		wantBits  uint32
		wantBytes int
		wantWords int
	}{
		{
			desc:      "single word uses the word width",
			l:         New("w", Word(32), []*Field{Uint("a", 0, 3)}),
			wantBits:  32,
			wantBytes: 4,
			wantWords: 1,
		},
		{
			desc:      "buffer with TotalBits",
			l:         New("b", Buffer(), []*Field{Uint("a", 0, 3)}, TotalBits(12)),
			wantBits:  12,
			wantBytes: 2,
			wantWords: 1,
		},
		{
			desc:      "buffer ends at the highest field",
			l:         New("b", Buffer(), []*Field{Uint("a", 60, 10), Bool("b", 3)}),
			wantBits:  70,
			wantBytes: 9,
			wantWords: 2,
		},
		{
			desc: "nested field takes the child's width",
			l: New("outer", MultiWord(), []*Field{
				Nest("in", 100, New("in", Buffer(), nil, TotalBits(40))),
			}),
			wantBits:  140,
			wantBytes: 18,
			wantWords: 3,
		},
	}

	for _, test := range tests {
		if got := test.l.Bits(); got != test.wantBits {
			t.Errorf("TestBits(%s): Bits() got %d, want %d", test.desc, got, test.wantBits)
		}
		if got := test.l.Bytes(); got != test.wantBytes {
			t.Errorf("TestBits(%s): Bytes() got %d, want %d", test.desc, got, test.wantBytes)
		}
		if got := test.l.Words(); got != test.wantWords {
			t.Errorf("TestBits(%s): Words() got %d, want %d", test.desc, got, test.wantWords)
		}
	}
}

func TestDefinedMask(t *testing.T) {
	l := New("sparse", Word(16), []*Field{
		Uint("low", 0, 4),
		Bool("flag", 7),
		Uint("high", 12, 4),
	})
	if got, want := l.DefinedMask(), uint64(0xF08F); got != want {
		t.Errorf("TestDefinedMask: got %#x, want %#x", got, want)
	}

	full := New("full", Word(64), []*Field{Uint("all", 0, 64)})
	if got := full.DefinedMask(); got != ^uint64(0) {
		t.Errorf("TestDefinedMask(full): got %#x", got)
	}
}

func TestResolve(t *testing.T) {
	leaf := New("leaf", Buffer(), []*Field{Uint("x", 0, 16)}, TotalBits(16), ByteOrder(field.BigEndian))
	mid := New("mid", Buffer(), []*Field{Nest("leaf", 0, leaf), Uint("y", 16, 16)})
	top := New("top", Buffer(), []*Field{
		Nest("mid", 0, mid),
		Uint("z", 32, 16, WithByteOrder(field.BigEndian)),
		Nest("over", 48, leaf, WithByteOrder(field.LittleEndian)),
	})

	tests := []struct {
		desc string
		got  Order
		want Order
	}{
		{
			desc: "root effective is the default",
			got:  top.Effective(Default),
			want: Order{Bytes: field.LittleEndian, Bits: field.Lsb0},
		},
		{
			desc: "field override wins over the enclosing order",
			got:  top.Fields[1].Resolve(top.Effective(Default)),
			want: Order{Bytes: field.BigEndian, Bits: field.Lsb0},
		},
		{
			desc: "undeclared child inherits",
			got:  top.Fields[0].Resolve(top.Effective(Default)),
			want: Order{Bytes: field.LittleEndian, Bits: field.Lsb0},
		},
		{
			desc: "child's own declaration wins two levels down",
			got:  mid.Fields[0].Resolve(top.Fields[0].Resolve(top.Effective(Default))),
			want: Order{Bytes: field.BigEndian, Bits: field.Lsb0},
		},
		{
			desc: "field override wins over the child's declaration",
			got:  top.Fields[2].Resolve(top.Effective(Default)),
			want: Order{Bytes: field.LittleEndian, Bits: field.Lsb0},
		},
		{
			desc: "layout declaration over an inherited order",
			got:  New("m", Buffer(), nil, BitOrder(field.Msb0)).Effective(Order{Bytes: field.LittleEndian, Bits: field.Lsb0}),
			want: Order{Bytes: field.LittleEndian, Bits: field.Msb0},
		},
	}

	for _, test := range tests {
		if diff := pretty.Compare(test.want, test.got); diff != "" {
			t.Errorf("TestResolve(%s): -want/+got:\n%s", test.desc, diff)
		}
	}
}

func TestSwapped(t *testing.T) {
	lsbBig := Order{Bytes: field.BigEndian, Bits: field.Lsb0}
	tests := []struct {
		desc string
		f    *Field
		o    Order
		want bool
	}{
		{desc: "natural order", f: Uint("a", 0, 16), o: Default, want: false},
		{desc: "big endian lsb0 word", f: Uint("a", 0, 16), o: lsbBig, want: true},
		{desc: "single byte never swaps", f: Uint("a", 0, 8), o: lsbBig, want: false},
		{desc: "partial bytes never swap", f: Uint("a", 0, 12), o: lsbBig, want: false},
		{desc: "msb0 big endian is natural", f: Uint("a", 0, 32), o: Order{Bytes: field.BigEndian, Bits: field.Msb0}, want: false},
		{desc: "msb0 little endian swaps", f: Uint("a", 0, 32), o: Order{Bytes: field.LittleEndian, Bits: field.Msb0}, want: true},
	}

	for _, test := range tests {
		if got := test.f.Swapped(test.o); got != test.want {
			t.Errorf("TestSwapped(%s): got %v, want %v", test.desc, got, test.want)
		}
	}
}

func TestValidate(t *testing.T) {
	child12 := New("child", Buffer(), []*Field{Uint("v", 4, 8)}, TotalBits(12))
	msbChild := New("msb", Buffer(), []*Field{Uint("v", 0, 8)}, BitOrder(field.Msb0))

	cyclic := New("cyclic", Buffer(), nil, TotalBits(8))
	cyclic.Fields = []*Field{Nest("self", 0, cyclic)}

	tests := []struct {
		desc  string
		l     *Layout
		want  []ErrorKind
		paths [][]string
	}{
		{
			desc: "valid",
			l: New("ok", Word(16), []*Field{
				Uint("a", 0, 4),
				Int("b", 4, 4),
				Bool("c", 8),
				Enum("d", 9, 3),
			}),
		},
		{
			desc:  "overlap",
			l:     New("o", Word(16), []*Field{Uint("a", 0, 4), Uint("b", 3, 4)}),
			want:  []ErrorKind{Overlap},
			paths: [][]string{{"o"}},
		},
		{
			desc: "zero and oversized widths",
			l:    New("w", MultiWord(), []*Field{Uint("a", 0, 0), Uint("b", 0, 65), Bool("c", 70, WithMustBe(field.MustBeOne))}),
			want: []ErrorKind{InvalidWidth, InvalidWidth},
		},
		{
			desc: "bool wider than a bit",
			l:    New("b", Word(8), []*Field{{Name: "b", Kind: field.Bool, Width: 2}}),
			want: []ErrorKind{InvalidWidth},
		},
		{
			desc: "field past the word",
			l:    New("x", Word(8), []*Field{Uint("a", 4, 8)}),
			want: []ErrorKind{ExceedsStorage},
		},
		{
			desc: "field past TotalBits",
			l:    New("x", Buffer(), []*Field{Uint("a", 4, 8)}, TotalBits(10)),
			want: []ErrorKind{OutOfRange},
		},
		{
			desc: "bad word width",
			l:    New("x", Word(24), []*Field{Uint("a", 0, 8)}),
			want: []ErrorKind{InvalidStorage},
		},
		{
			desc: "unknown storage",
			l:    New("x", Storage{}, []*Field{Uint("a", 0, 8)}),
			want: []ErrorKind{InvalidStorage},
		},
		{
			desc: "too large",
			l:    New("x", MultiWord(), []*Field{Uint("a", 0, 8)}, TotalBits(MaxBits+1)),
			want: []ErrorKind{TooLarge},
		},
		{
			desc: "duplicate names",
			l:    New("x", Word(8), []*Field{Uint("a", 0, 1), Uint("a", 1, 1)}),
			want: []ErrorKind{DuplicateName},
		},
		{
			desc: "nested without a layout",
			l:    New("x", Buffer(), []*Field{{Name: "n", Kind: field.Nested}}, TotalBits(8)),
			want: []ErrorKind{NestedMissing},
		},
		{
			desc: "nested width disagrees",
			l:    New("x", Buffer(), []*Field{{Name: "n", Kind: field.Nested, Width: 8, Layout: child12}}),
			want: []ErrorKind{NestedMismatch},
		},
		{
			desc: "nested must be",
			l:    New("x", Buffer(), []*Field{Nest("n", 0, child12, WithMustBe(field.MustBeZero))}),
			want: []ErrorKind{MustBeNested},
		},
		{
			desc:  "errors inside a child carry the path",
			l:     New("x", Buffer(), []*Field{Nest("n", 0, New("bad", Buffer(), []*Field{Uint("a", 0, 4), Uint("b", 2, 4)}))}),
			want:  []ErrorKind{Overlap},
			paths: [][]string{{"x", "n", "bad"}},
		},
		{
			desc: "msb0 child at an aligned buffer offset",
			l:    New("x", Buffer(), []*Field{Nest("n", 8, msbChild)}),
		},
		{
			desc: "msb0 child at an unaligned buffer offset",
			l:    New("x", Buffer(), []*Field{Nest("n", 3, msbChild)}),
			want: []ErrorKind{BitOrderMismatch},
		},
		{
			desc: "msb0 child in word storage",
			l:    New("x", Word(16), []*Field{Nest("n", 8, msbChild)}),
			want: []ErrorKind{BitOrderMismatch},
		},
		{
			desc: "byte order override on a partial byte field",
			l:    New("x", Word(16), []*Field{Uint("a", 0, 12, WithByteOrder(field.BigEndian))}),
			want: []ErrorKind{ByteOrderWidth},
		},
		{
			desc: "byte order override matching the natural order is fine",
			l:    New("x", Word(16), []*Field{Uint("a", 0, 12, WithByteOrder(field.LittleEndian))}),
		},
		{
			desc: "cycle",
			l:    cyclic,
			want: []ErrorKind{Cycle},
		},
	}

	for _, test := range tests {
		errs := Validate(test.l)
		var got []ErrorKind
		for _, e := range errs {
			got = append(got, e.Kind)
		}
		if diff := pretty.Compare(test.want, got); diff != "" {
			t.Errorf("TestValidate(%s): -want/+got:\n%s\nerrors: %v", test.desc, diff, errs)
			continue
		}
		for i, p := range test.paths {
			if diff := pretty.Compare(p, errs[i].Path); diff != "" {
				t.Errorf("TestValidate(%s): path -want/+got:\n%s", test.desc, diff)
			}
		}
	}
}

func TestValidateForStorage(t *testing.T) {
	l := New("x", Buffer(), []*Field{Uint("a", 0, 8)}, TotalBits(24))

	if errs := ValidateFor(l, Word(16), Default); len(errs) != 1 || errs[0].Kind != ExceedsStorage {
		t.Errorf("TestValidateForStorage(word16): got %v, want one exceeds_storage", errs)
	}
	if errs := ValidateFor(l, Word(32), Default); len(errs) != 0 {
		t.Errorf("TestValidateForStorage(word32): got %v, want none", errs)
	}
}

func TestErrorIs(t *testing.T) {
	errs := Validate(New("o", Word(8), []*Field{Uint("a", 0, 4), Uint("b", 3, 4)}))
	if len(errs) != 1 {
		t.Fatalf("TestErrorIs: got %d errors, want 1", len(errs))
	}
	joined := errors.Join(errs[0])
	if !errors.Is(joined, &Error{Kind: Overlap}) {
		t.Errorf("TestErrorIs: errors.Is(overlap) got false")
	}
	if errors.Is(joined, &Error{Kind: Cycle}) {
		t.Errorf("TestErrorIs: errors.Is(cycle) got true")
	}
	if got, want := errs[0].Error(), "[overlap] at o field b: bits 3-6 overlap field a at bits 0-3"; got != want {
		t.Errorf("TestErrorIs: Error() got %q, want %q", got, want)
	}
}

func TestByName(t *testing.T) {
	l := New("x", Word(8), []*Field{Uint("a", 0, 4), Uint("b", 4, 4)})
	if got := l.ByName("b"); got != l.Fields[1] {
		t.Errorf("TestByName: got %v", got)
	}
	if _, ok := l.Index("c"); ok {
		t.Errorf("TestByName: Index(c) found a field")
	}
	defer func() {
		if recover() == nil {
			t.Errorf("TestByName: ByName(c) did not panic")
		}
	}()
	l.ByName("c")
}
