package plan

import (
	"strings"
	"testing"

	"github.com/bearlytools/bitlayout/errors"
	"github.com/bearlytools/bitlayout/field"
	"github.com/bearlytools/bitlayout/layout"
	"github.com/gostdlib/base/context"
	"github.com/kylelemons/godebug/pretty"
)

func TestCompileErrors(t *testing.T) {
	ctx := context.Background()

	bad := layout.New("bad", layout.Word(8), []*layout.Field{
		layout.Uint("a", 0, 4),
		layout.Uint("b", 2, 4),
		layout.Uint("c", 6, 4),
	})
	_, err := Compile(ctx, bad)
	if err == nil {
		t.Fatalf("TestCompileErrors: got err == nil, want err != nil")
	}
	if !errors.Is(err, &layout.Error{Kind: layout.Overlap}) {
		t.Errorf("TestCompileErrors: errors.Is(overlap) got false: %s", err)
	}
	if !errors.Is(err, &layout.Error{Kind: layout.ExceedsStorage}) {
		t.Errorf("TestCompileErrors: errors.Is(exceeds_storage) got false: %s", err)
	}

	if _, err := Compile(ctx, nil); err == nil {
		t.Errorf("TestCompileErrors(nil layout): got err == nil")
	}
	if _, err := Compile(ctx, bad, WithOrder(layout.Order{Bits: field.Msb0})); err == nil {
		t.Errorf("TestCompileErrors(incomplete order): got err == nil")
	}

	fits := layout.New("fits", layout.Buffer(), []*layout.Field{layout.Uint("a", 0, 12)})
	if _, err := Compile(ctx, fits, WithStorage(layout.Word(8))); !errors.Is(err, &layout.Error{Kind: layout.ExceedsStorage}) {
		t.Errorf("TestCompileErrors(rebound to a small word): got %v", err)
	}
}

func TestCompileGaps(t *testing.T) {
	ctx := context.Background()

	l := layout.New("reg", layout.Word(16), []*layout.Field{
		layout.Uint("a", 0, 4),
		layout.Uint("b", 4, 5),
	}, layout.Undefined(field.ForceZero))

	s, err := Compile(ctx, l)
	if err != nil {
		t.Fatalf("TestCompileGaps: got err == %s", err)
	}
	if len(s.Gaps) != 1 || s.Gaps[0].Start != 9 || s.Gaps[0].Width != 7 {
		t.Fatalf("TestCompileGaps: got gaps %+v", s.Gaps)
	}
	if s.Undefined != 0xFE00 {
		t.Errorf("TestCompileGaps: Undefined got %#x, want 0xfe00", s.Undefined)
	}
	if s.Defined() != 0x01FF {
		t.Errorf("TestCompileGaps: Defined got %#x, want 0x1ff", s.Defined())
	}

	msb, err := Compile(ctx, l, WithOrder(layout.Order{Bytes: field.BigEndian, Bits: field.Msb0}))
	if err != nil {
		t.Fatalf("TestCompileGaps(msb0): got err == %s", err)
	}
	if msb.Undefined != 0x007F {
		t.Errorf("TestCompileGaps(msb0): Undefined got %#x, want 0x7f", msb.Undefined)
	}
}

func TestGapsChunked(t *testing.T) {
	l := layout.New("sparse", layout.MultiWord(), []*layout.Field{
		layout.Uint("a", 10, 4),
	}, layout.TotalBits(200))

	got := gaps(l, l.Bits())
	want := []run{
		{start: 0, width: 10},
		{start: 14, width: 64},
		{start: 78, width: 64},
		{start: 142, width: 58},
	}
	if diff := pretty.Compare(want, got); diff != "" {
		t.Errorf("TestGapsChunked: -want/+got:\n%s", diff)
	}
}

func TestCompileNested(t *testing.T) {
	ctx := context.Background()

	child := layout.New("child", layout.Buffer(), []*layout.Field{
		layout.Uint("v", 4, 8),
	}, layout.TotalBits(12))

	outer := layout.New("outer", layout.Buffer(), []*layout.Field{
		layout.Uint("head", 0, 16),
		layout.Nest("first", 16, child),
		layout.Nest("second", 29, child),
		layout.Uint("tail", 41, 7),
	})

	s, err := Compile(ctx, outer)
	if err != nil {
		t.Fatalf("TestCompileNested: got err == %s", err)
	}
	if s.Bits != 48 || s.Bytes() != 6 {
		t.Errorf("TestCompileNested: got %d bits %d bytes", s.Bits, s.Bytes())
	}
	if s.Child(1) != s.Child(2) {
		t.Errorf("TestCompileNested: the same child in buffer storage was compiled twice")
	}
	if p := s.Plans[2]; p.ByteOffset != 3 || p.BitShift != 5 || p.Width != 12 {
		t.Errorf("TestCompileNested: nested plan got %s", p.String())
	}

	var names []string
	var starts []uint32
	for _, p := range s.Flatten() {
		names = append(names, p.Name)
		starts = append(starts, p.Start)
	}
	if diff := pretty.Compare([]string{"head", "first.v", "second.v", "tail"}, names); diff != "" {
		t.Errorf("TestCompileNested: flattened names -want/+got:\n%s", diff)
	}
	if diff := pretty.Compare([]uint32{0, 20, 33, 41}, starts); diff != "" {
		t.Errorf("TestCompileNested: flattened starts -want/+got:\n%s", diff)
	}

	words, err := Compile(ctx, outer, WithStorage(layout.MultiWord()))
	if err != nil {
		t.Fatalf("TestCompileNested(words): got err == %s", err)
	}
	if words.Child(1) == words.Child(2) {
		t.Errorf("TestCompileNested(words): children at different bases must not be shared")
	}
	if got := words.Child(2).Plans[0].Start; got != 33 {
		t.Errorf("TestCompileNested(words): child field start got %d, want 33", got)
	}
	if words.Dynamic != nil {
		t.Errorf("TestCompileNested(words): word sets have no dynamic plans")
	}
}

func TestCompileSwap(t *testing.T) {
	ctx := context.Background()

	l := layout.New("hdr", layout.Buffer(), []*layout.Field{
		layout.Uint("inherited", 0, 16),
		layout.Uint("be", 16, 16, layout.WithByteOrder(field.BigEndian)),
		layout.Uint("odd", 32, 12),
	}, layout.ByteOrder(field.BigEndian))

	s, err := Compile(ctx, l)
	if err != nil {
		t.Fatalf("TestCompileSwap: got err == %s", err)
	}
	// The layout is big endian over lsb0 bits, so whole byte fields swap and others cannot.
	want := []bool{true, true, false}
	for i, w := range want {
		if s.Plans[i].Swap != w {
			t.Errorf("TestCompileSwap(%s): Swap got %v, want %v", s.Plans[i].Name, s.Plans[i].Swap, w)
		}
	}
}

func TestLookupAndDescribe(t *testing.T) {
	l := layout.New("x", layout.Word(8), []*layout.Field{
		layout.Uint("a", 0, 4),
		layout.Int("b", 4, 4),
	})
	s := MustCompile(l)

	if i, ok := s.Lookup("b"); !ok || i != 1 {
		t.Errorf("TestLookupAndDescribe: Lookup(b) got (%d, %v)", i, ok)
	}
	lines := s.Describe()
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "b: int bits 4-7") {
		t.Errorf("TestLookupAndDescribe: got %q", lines)
	}

	defer func() {
		if recover() == nil {
			t.Errorf("TestLookupAndDescribe: Child on a scalar field did not panic")
		}
	}()
	s.Child(0)
}
