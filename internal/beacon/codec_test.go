package beacon

import (
	"testing"

	"github.com/google/uuid"
)

// Golden vectors. These values are shared with the mobile encoder and decoder
// ports; changing any of them breaks deployed beacons.
var hash16Golden = []struct {
	token string
	want  uint16
}{
	{"", 0x0000},
	{"A", 0x0041},
	{"AB", 0x0821},
	{"BA", 0x083F},
	{"ABC123DEF456", 0xFA80},
	{"ZZZZZZZZZZZZ", 0x1380},
	{"234679ACDEFG", 0x3F09},
	{"HJKMNPQRTUVW", 0x70C9},
	{"XYZ234679ACD", 0x0E44},
	{"TOKEN2MATCH4", 0x0DE8},
	{"2222222222", 0x7F40},
	{"ACDEFGHJKMNP", 0x6BCA},
	{"QRTUVWXYZ234", 0x125D},
	{"679ACDEFGHJK", 0x524D},
	{"MNPQRTUVWXYZ", 0x3207},
}

func TestHash16_GoldenVectors(t *testing.T) {
	for _, tc := range hash16Golden {
		if got := Hash16(tc.token); got != tc.want {
			t.Errorf("Hash16(%q) = %#04x, want %#04x", tc.token, got, tc.want)
		}
	}
}

func TestHash16_OrderSensitive(t *testing.T) {
	if Hash16("AB") == Hash16("BA") {
		t.Error("Hash16 should depend on byte order")
	}
}

func TestHash16_CaseSensitiveBytes(t *testing.T) {
	// The hash runs over raw bytes; the token alphabet avoids case ambiguity,
	// not the hash.
	if Hash16("abc") == Hash16("ABC") {
		t.Error("Hash16 should differ for different byte values")
	}
}

func TestEncode(t *testing.T) {
	ns := uuid.MustParse("c9d3f8a2-5b1e-4e7a-9f64-2d08c1a4b7e3")
	c := NewCodec(ns)

	p := c.Encode(1, "ABC123DEF456")
	if p.Namespace != ns {
		t.Errorf("Namespace = %s, want %s", p.Namespace, ns)
	}
	if p.Major != 1 {
		t.Errorf("Major = %d, want 1", p.Major)
	}
	if p.Minor != 0xFA80 {
		t.Errorf("Minor = %#04x, want 0xFA80", p.Minor)
	}
}

func TestEncode_NamespaceIndependentOfOrg(t *testing.T) {
	ns := uuid.MustParse("c9d3f8a2-5b1e-4e7a-9f64-2d08c1a4b7e3")
	c := NewCodec(ns)

	a := c.Encode(1, "TOKEN2MATCH4")
	b := c.Encode(42, "TOKEN2MATCH4")
	if a.Namespace != b.Namespace {
		t.Error("namespace must be the same for every organization")
	}
	if a.Major == b.Major {
		t.Error("major must carry the organization code")
	}
}

func TestIsCandidate(t *testing.T) {
	ns := uuid.MustParse("c9d3f8a2-5b1e-4e7a-9f64-2d08c1a4b7e3")
	other := uuid.MustParse("8e7a2f40-93d1-4c2b-bd55-7f01a6e9c812")
	c := NewCodec(ns)

	if !c.IsCandidate(ns, 1, 1) {
		t.Error("matching namespace and major should be a candidate")
	}
	if c.IsCandidate(ns, 2, 1) {
		t.Error("major mismatch must short-circuit to not-a-candidate")
	}
	if c.IsCandidate(other, 1, 1) {
		t.Error("foreign namespace must not be a candidate")
	}
}
