package field

import (
	"testing"
)

func TestTextRoundTrip(t *testing.T) {
	for k := Unknown; k <= Nested; k++ {
		b, _ := k.MarshalText()
		var got Kind
		if err := got.UnmarshalText(b); err != nil {
			t.Fatalf("TestTextRoundTrip(Kind %s): got err == %s", k, err)
		}
		if got != k {
			t.Errorf("TestTextRoundTrip(Kind %s): got %s", k, got)
		}
	}
	for p := Preserve; p <= ForceOne; p++ {
		b, _ := p.MarshalText()
		var got Policy
		if err := got.UnmarshalText(b); err != nil {
			t.Fatalf("TestTextRoundTrip(Policy %s): got err == %s", p, err)
		}
		if got != p {
			t.Errorf("TestTextRoundTrip(Policy %s): got %s", p, got)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		desc    string
		parse   func(string) (uint8, error)
		in      string
		want    uint8
		wantErr bool
	}{
		{
			desc:  "kind uint",
			parse: func(s string) (uint8, error) { v, err := ParseKind(s); return uint8(v), err },
			in:    "uint",
			want:  uint8(Unsigned),
		},
		{
			desc:  "byte order big",
			parse: func(s string) (uint8, error) { v, err := ParseByteOrder(s); return uint8(v), err },
			in:    "big",
			want:  uint8(BigEndian),
		},
		{
			desc:  "bit order msb0",
			parse: func(s string) (uint8, error) { v, err := ParseBitOrder(s); return uint8(v), err },
			in:    "msb0",
			want:  uint8(Msb0),
		},
		{
			desc:  "must be one",
			parse: func(s string) (uint8, error) { v, err := ParseMustBe(s); return uint8(v), err },
			in:    "one",
			want:  uint8(MustBeOne),
		},
		{
			desc:  "policy force-zero",
			parse: func(s string) (uint8, error) { v, err := ParsePolicy(s); return uint8(v), err },
			in:    "force-zero",
			want:  uint8(ForceZero),
		},
		{
			desc:  "storage multiword",
			parse: func(s string) (uint8, error) { v, err := ParseStorageKind(s); return uint8(v), err },
			in:    "multiword",
			want:  uint8(MultiWord),
		},
		{
			desc:    "bad name",
			parse:   func(s string) (uint8, error) { v, err := ParseKind(s); return uint8(v), err },
			in:      "float",
			wantErr: true,
		},
		{
			desc:    "names are case sensitive",
			parse:   func(s string) (uint8, error) { v, err := ParseBitOrder(s); return uint8(v), err },
			in:      "LSB0",
			wantErr: true,
		},
	}

	for _, test := range tests {
		got, err := test.parse(test.in)
		switch {
		case err == nil && test.wantErr:
			t.Errorf("TestParse(%s): got err == nil, want err != nil", test.desc)
			continue
		case err != nil && !test.wantErr:
			t.Errorf("TestParse(%s): got err == %s, want err == nil", test.desc, err)
			continue
		case err != nil:
			continue
		}
		if got != test.want {
			t.Errorf("TestParse(%s): got %d, want %d", test.desc, got, test.want)
		}
	}
}

func TestNatural(t *testing.T) {
	if got := Lsb0.Natural(); got != LittleEndian {
		t.Errorf("TestNatural(lsb0): got %s, want little", got)
	}
	if got := Msb0.Natural(); got != BigEndian {
		t.Errorf("TestNatural(msb0): got %s, want big", got)
	}
}

func TestStringOutOfRange(t *testing.T) {
	if got := Kind(42).String(); got != "Kind(42)" {
		t.Errorf("TestStringOutOfRange: got %q", got)
	}
}
