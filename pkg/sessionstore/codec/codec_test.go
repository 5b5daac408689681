package codec

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	values := []Value{
		Nil(),
		Bool(true),
		Bool(false),
		Int(0),
		Int(42),
		Int(-7),
		Int(9223372036854775807),
		Float(1.5),
		Float(-0.25),
		Float(1e100),
		String(""),
		String("hello"),
		String("with \"quotes\" and \\ backslash"),
		String("delimiters: , ] } [ { : ~"),
		String("line\nbreaks\tand\x00control"),
		String("unicode: héllo wörld ☃"),
		List(),
		List(Int(1), Int(2), Int(3)),
		List(String("a"), Nil(), Bool(true), Float(2.5)),
		Map(),
		Map(E("user", String("bob")), E("visits", Int(3))),
		Map(
			E("nested", Map(E("deep", List(Int(1), Map(E("x", Nil())))))),
			E("empty", String("")),
		),
	}

	for _, v := range values {
		encoded := Encode(v)
		if strings.ContainsAny(encoded, "\n\r") {
			t.Errorf("Encode(%v) is not single-line: %q", v, encoded)
		}
		decoded, err := Decode(encoded)
		if err != nil {
			t.Fatalf("Decode(%q) failed: %v", encoded, err)
		}
		if diff := cmp.Diff(v, decoded); diff != "" {
			t.Errorf("round trip mismatch for %q (-want +got):\n%s", encoded, diff)
		}
		if !v.Equal(decoded) {
			t.Errorf("Equal reports mismatch after round trip of %q", encoded)
		}
	}
}

func TestEncode_PinnedGrammar(t *testing.T) {
	cases := []struct {
		value Value
		want  string
	}{
		{Nil(), "~"},
		{Bool(true), "T"},
		{Bool(false), "F"},
		{Int(42), "i42"},
		{Int(-7), "i-7"},
		{Float(1.5), "d1.5"},
		{String("hi"), `"hi"`},
		{List(Int(1), String("a")), `[i1,"a"]`},
		{Map(E("user", String("bob")), E("n", Int(3))), `{"user":"bob","n":i3}`},
		{Map(), "{}"},
		{List(), "[]"},
	}
	for _, c := range cases {
		if got := Encode(c.value); got != c.want {
			t.Errorf("Encode = %q, want %q", got, c.want)
		}
	}
}

func TestEncode_PreservesMapOrder(t *testing.T) {
	v := Map(E("z", Int(1)), E("a", Int(2)), E("m", Int(3)))
	decoded, err := Decode(Encode(v))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	keys := make([]string, len(decoded.Map))
	for i, e := range decoded.Map {
		keys[i] = e.Key
	}
	if diff := cmp.Diff([]string{"z", "a", "m"}, keys); diff != "" {
		t.Errorf("map order not preserved (-want +got):\n%s", diff)
	}
}

func TestDecode_IntFloatDistinct(t *testing.T) {
	v, err := Decode("i1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != KindInt {
		t.Errorf("expected int kind, got %v", v.Kind)
	}
	v, err = Decode("d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != KindFloat {
		t.Errorf("expected float kind, got %v", v.Kind)
	}
}

func TestDecode_CorruptPayloads(t *testing.T) {
	payloads := []string{
		"",
		"x",
		"i",
		"inotanumber",
		"d",
		"dxyz",
		`"unterminated`,
		`"bad escape \q"`,
		"[",
		"[i1",
		"[i1;i2]",
		"{",
		`{"a"`,
		`{"a"i1}`,
		`{a:i1}`,
		"T~",
		"i1i2",
		"[]x",
		"~trailing",
	}
	for _, p := range payloads {
		_, err := Decode(p)
		if err == nil {
			t.Errorf("Decode(%q) should have failed", p)
			continue
		}
		if !errors.Is(err, ErrCorruptPayload) {
			t.Errorf("Decode(%q) error %v is not ErrCorruptPayload", p, err)
		}
	}
}
