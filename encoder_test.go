package ron

import (
	"strings"
	"testing"

	"github.com/ronlang/ron/internal/lex"
	"github.com/ronlang/ron/value"
)

func TestMarshalValueScalarsCompact(t *testing.T) {
	for _, tc := range []struct {
		desc string
		v    value.Value
		want string
	}{
		{"bool true", value.Bool(true), "true"},
		{"bool false", value.Bool(false), "false"},
		{"uint", value.Num(value.Uint(42)), "42"},
		{"int", value.Num(value.Int(-7)), "-7"},
		{"float with dot", value.Num(value.Float(1)), "1."},
		{"char", value.Char('x'), "'x'"},
		{"string", value.Str("hi"), `"hi"`},
		{"none", value.None(), "None"},
		{"some", value.Some(value.Num(value.Uint(1))), "Some(1)"},
		{"unit", value.Unit(), "()"},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			out, err := MarshalValue(tc.v)
			if err != nil {
				t.Fatal(err)
			}
			if string(out) != tc.want {
				t.Errorf("MarshalValue(%v) = %q, want %q", tc.v, out, tc.want)
			}
		})
	}
}

func TestMarshalValueSeqAndMapCompact(t *testing.T) {
	seq := value.Seq([]value.Value{value.Num(value.Uint(1)), value.Num(value.Uint(2))})
	out, err := MarshalValue(seq)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "[1,2]" {
		t.Errorf("got %q, want [1,2]", out)
	}

	m := value.NewMap()
	m.Append(value.Str("a"), value.Num(value.Uint(1)))
	out, err = MarshalValue(value.MapVal(m))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"a": 1}` {
		t.Errorf("got %q, want {\"a\": 1}", out)
	}
}

func TestMarshalValueVariant(t *testing.T) {
	v := value.VariantVal(value.Variant{
		Name:  "Circle",
		Shape: value.ShapeTuple,
		Elems: []value.Value{value.Num(value.Float(1.5))},
	})
	out, err := MarshalValue(v)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "Circle(1.5)" {
		t.Errorf("got %q, want Circle(1.5)", out)
	}
}

func TestMarshalValueUnitStruct(t *testing.T) {
	out, err := MarshalValue(value.UnitStruct("Marker"))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "Marker" {
		t.Errorf("got %q, want Marker", out)
	}
}

func TestMarshalRoundTripStruct(t *testing.T) {
	in := point{X: 1.5, Y: -2.5}
	out, err := Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var got point
	if err := Unmarshal(out, &got); err != nil {
		t.Fatalf("round trip Unmarshal(%q): %v", out, err)
	}
	if got != in {
		t.Errorf("round trip = %+v, want %+v", got, in)
	}
}

func TestMarshalRoundTripEnum(t *testing.T) {
	in := shape{Circle: &circleVariant{Radius: 2.25}}
	out, err := Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var got shape
	if err := Unmarshal(out, &got); err != nil {
		t.Fatalf("round trip Unmarshal(%q): %v", out, err)
	}
	if got.Circle == nil || got.Circle.Radius != 2.25 {
		t.Errorf("round trip = %+v, want Circle{2.25}", got)
	}
}

func TestMarshalRoundTripTupleStruct(t *testing.T) {
	in := tuplePoint{X: 3, Y: 4}
	out, err := Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var got tuplePoint
	if err := Unmarshal(out, &got); err != nil {
		t.Fatalf("round trip Unmarshal(%q): %v", out, err)
	}
	if got.X != in.X || got.Y != in.Y {
		t.Errorf("round trip = %+v, want %+v", got, in)
	}
}

func TestMarshalPrettyMultiLine(t *testing.T) {
	in := point{X: 1, Y: 2}
	out, err := MarshalPretty(in, DefaultPrettyConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "\n") {
		t.Errorf("expected pretty output to be multi-line, got %q", out)
	}
}

func TestMarshalExtensionHeader(t *testing.T) {
	cfg := CompactConfig()
	cfg.Extensions = lex.ImplicitSome
	out, err := MarshalValue(value.Num(value.Uint(1)), WithPrettyConfig(cfg))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(out), "#![enable(") {
		t.Errorf("expected an extension header, got %q", out)
	}
}
