package plan

import (
	"testing"

	"github.com/bearlytools/bitlayout/field"
	"github.com/bearlytools/bitlayout/layout"
	"github.com/kylelemons/godebug/pretty"
)

func TestWindow(t *testing.T) {
	tests := []struct {
		desc       string
		start, end uint32
		bo         field.BitOrder
		minR       uint8
		want       [2]Part
		wantN      uint8
	}{
		{
			desc: "lsb0 inside a byte", start: 3, end: 6, bo: field.Lsb0, minR: 1,
			want: [2]Part{{Index: 0, ReadWidthBytes: 1, Shift: 3, Bits: 4}}, wantN: 1,
		},
		{
			desc: "msb0 inside a byte", start: 3, end: 6, bo: field.Msb0, minR: 1,
			want: [2]Part{{Index: 0, ReadWidthBytes: 1, Shift: 1, Bits: 4}}, wantN: 1,
		},
		{
			desc: "lsb0 3 byte span reads 4", start: 6, end: 17, bo: field.Lsb0, minR: 1,
			want: [2]Part{{Index: 0, ReadWidthBytes: 4, Shift: 6, Bits: 12}}, wantN: 1,
		},
		{
			desc: "msb0 3 byte span reads 4", start: 6, end: 17, bo: field.Msb0, minR: 1,
			want: [2]Part{{Index: 0, ReadWidthBytes: 4, Shift: 14, Bits: 12}}, wantN: 1,
		},
		{
			desc: "second byte", start: 12, end: 14, bo: field.Lsb0, minR: 1,
			want: [2]Part{{Index: 1, ReadWidthBytes: 1, Shift: 4, Bits: 3}}, wantN: 1,
		},
		{
			desc: "minimum read width", start: 12, end: 14, bo: field.Msb0, minR: 2,
			want: [2]Part{{Index: 1, ReadWidthBytes: 2, Shift: 9, Bits: 3}}, wantN: 1,
		},
		{
			desc: "lsb0 64 bits over 9 bytes", start: 5, end: 68, bo: field.Lsb0, minR: 1,
			want: [2]Part{
				{Index: 0, ReadWidthBytes: 8, Shift: 5, Bits: 59},
				{Index: 8, ReadWidthBytes: 1, Shift: 0, Bits: 5},
			},
			wantN: 2,
		},
		{
			desc: "msb0 64 bits over 9 bytes", start: 5, end: 68, bo: field.Msb0, minR: 1,
			want: [2]Part{
				{Index: 0, ReadWidthBytes: 8, Shift: 0, Bits: 59},
				{Index: 8, ReadWidthBytes: 1, Shift: 3, Bits: 5},
			},
			wantN: 2,
		},
	}

	for _, test := range tests {
		got, n := window(test.start, test.end, test.bo, test.minR)
		if n != test.wantN {
			t.Errorf("TestWindow(%s): got %d parts, want %d", test.desc, n, test.wantN)
		}
		if diff := pretty.Compare(test.want, got); diff != "" {
			t.Errorf("TestWindow(%s): -want/+got:\n%s", test.desc, diff)
		}
	}
}

func TestWordParts(t *testing.T) {
	tests := []struct {
		desc       string
		start, end uint32
		bo         field.BitOrder
		want       [2]Part
		wantN      uint8
	}{
		{
			desc: "lsb0 in word 1", start: 70, end: 73, bo: field.Lsb0,
			want: [2]Part{{Index: 1, ReadWidthBytes: 8, Shift: 6, Bits: 4}}, wantN: 1,
		},
		{
			desc: "msb0 in word 1", start: 70, end: 73, bo: field.Msb0,
			want: [2]Part{{Index: 1, ReadWidthBytes: 8, Shift: 54, Bits: 4}}, wantN: 1,
		},
		{
			desc: "lsb0 cross word", start: 60, end: 67, bo: field.Lsb0,
			want: [2]Part{
				{Index: 0, ReadWidthBytes: 8, Shift: 60, Bits: 4},
				{Index: 1, ReadWidthBytes: 8, Shift: 0, Bits: 4},
			},
			wantN: 2,
		},
		{
			desc: "msb0 cross word", start: 60, end: 67, bo: field.Msb0,
			want: [2]Part{
				{Index: 0, ReadWidthBytes: 8, Shift: 0, Bits: 4},
				{Index: 1, ReadWidthBytes: 8, Shift: 60, Bits: 4},
			},
			wantN: 2,
		},
		{
			desc: "a whole word", start: 128, end: 191, bo: field.Msb0,
			want: [2]Part{{Index: 2, ReadWidthBytes: 8, Shift: 0, Bits: 64}}, wantN: 1,
		},
	}

	for _, test := range tests {
		got, n := wordParts(test.start, test.end, test.bo)
		if n != test.wantN {
			t.Errorf("TestWordParts(%s): got %d parts, want %d", test.desc, n, test.wantN)
		}
		if diff := pretty.Compare(test.want, got); diff != "" {
			t.Errorf("TestWordParts(%s): -want/+got:\n%s", test.desc, diff)
		}
	}
}

func TestInlinePart(t *testing.T) {
	if got := inlinePart(0, 3, 16, field.Msb0); got.Shift != 12 || got.Bits != 4 || got.ReadWidthBytes != 2 {
		t.Errorf("TestInlinePart(msb0): got %+v", got)
	}
	if got := inlinePart(5, 9, 32, field.Lsb0); got.Shift != 5 || got.Bits != 5 || got.ReadWidthBytes != 4 {
		t.Errorf("TestInlinePart(lsb0): got %+v", got)
	}
}

func TestDynamicWidth(t *testing.T) {
	tests := []struct {
		desc       string
		start, end uint32
		wantR      uint8
		wantSplit  bool
	}{
		{desc: "a byte needs two at some offset", start: 0, end: 7, wantR: 2},
		{desc: "one bit never leaves its byte", start: 0, end: 0, wantR: 1},
		{desc: "last bit of a byte", start: 7, end: 7, wantR: 1},
		{desc: "bit 0 of a byte", start: 8, end: 8, wantR: 1},
		{desc: "15 bits", start: 1, end: 15, wantR: 4},
		{desc: "57 bits", start: 0, end: 56, wantR: 8},
		{desc: "64 bits split", start: 0, end: 63, wantR: 8, wantSplit: true},
	}

	for _, test := range tests {
		r, split := dynamicWidth(test.start, test.end)
		if r != test.wantR || split != test.wantSplit {
			t.Errorf("TestDynamicWidth(%s): got (%d, %v), want (%d, %v)", test.desc, r, split, test.wantR, test.wantSplit)
		}
	}
}

func TestJoinSplit(t *testing.T) {
	for _, bo := range []field.BitOrder{field.Lsb0, field.Msb0} {
		p := scalar("f", 0, field.Unsigned, 60, 8, layout.Order{Bytes: bo.Natural(), Bits: bo}, false, field.MustBeNone, layout.MultiWord())
		if p.NumParts != 2 {
			t.Fatalf("TestJoinSplit(%s): got %d parts, want 2", bo, p.NumParts)
		}
		for _, v := range []uint64{0, 0x1F, 0xA5, 0xFF} {
			v0, v1 := p.Split(v)
			if got := p.Join(v0, v1); got != v {
				t.Errorf("TestJoinSplit(%s, %#x): got %#x", bo, v, got)
			}
		}
		// The first part holds the low bits in lsb0 and the high bits in msb0.
		v0, _ := p.Split(0x1F)
		want := uint64(0xF)
		if bo == field.Msb0 {
			want = 0x1
		}
		if v0 != want {
			t.Errorf("TestJoinSplit(%s): first part got %#x, want %#x", bo, v0, want)
		}
	}
}

func TestEncode(t *testing.T) {
	swapped := scalar("s", 0, field.Unsigned, 0, 16, layout.Order{Bytes: field.BigEndian, Bits: field.Lsb0}, true, field.MustBeNone, layout.Buffer())
	if got := swapped.Encode(0x1234); got != 0x3412 {
		t.Errorf("TestEncode(swap): got %#x, want 0x3412", got)
	}
	if got := swapped.Decode(0x3412); got != 0x1234 {
		t.Errorf("TestEncode(swap decode): got %#x, want 0x1234", got)
	}

	narrow := scalar("n", 0, field.Signed, 0, 3, layout.Default, false, field.MustBeNone, layout.Buffer())
	if got := narrow.Encode(uint64(0xFFFFFFFFFFFFFFFD)); got != 0b101 {
		t.Errorf("TestEncode(truncate -3): got %#b, want 0b101", got)
	}
	if got := narrow.Signed(0b101); got != -3 {
		t.Errorf("TestEncode(signed): got %d, want -3", got)
	}
	if !narrow.SignExtend || narrow.NativeBits != 8 {
		t.Errorf("TestEncode(signed): SignExtend %v NativeBits %d", narrow.SignExtend, narrow.NativeBits)
	}

	one := scalar("r", 0, field.Unsigned, 0, 4, layout.Default, false, field.MustBeOne, layout.Buffer())
	if got := one.Encode(0); got != 0xF {
		t.Errorf("TestEncode(must be one): got %#x, want 0xf", got)
	}
	zero := scalar("r", 0, field.Unsigned, 0, 4, layout.Default, false, field.MustBeZero, layout.Buffer())
	if got := zero.Encode(0xF); got != 0 {
		t.Errorf("TestEncode(must be zero): got %#x, want 0", got)
	}
}

func TestDynamicAt(t *testing.T) {
	p := scalar("f", 0, field.Unsigned, 6, 12, layout.Default, false, field.MustBeNone, layout.Buffer())
	d := dynamic(p)
	if d.ReadWidthBytes != 4 {
		t.Fatalf("TestDynamicAt: worst read width got %d, want 4", d.ReadWidthBytes)
	}

	for off := uint8(0); off < 8; off++ {
		got := d.At(off)
		start := 6 + uint32(off)
		if got.Start != start || got.ByteOffset != start/8 || got.BitShift != uint8(start%8) {
			t.Errorf("TestDynamicAt(%d): got start %d byte %d shift %d", off, got.Start, got.ByteOffset, got.BitShift)
		}
		if got.Parts[0].ReadWidthBytes != 4 || got.Parts[0].Bits != 12 {
			t.Errorf("TestDynamicAt(%d): got part %+v", off, got.Parts[0])
		}
	}

	defer func() {
		if recover() == nil {
			t.Errorf("TestDynamicAt(8): expected a panic")
		}
	}()
	d.At(8)
}
