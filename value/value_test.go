package value

import "testing"

func TestEqualScalars(t *testing.T) {
	for _, tc := range []struct {
		desc string
		a, b Value
		want bool
	}{
		{"equal bools", Bool(true), Bool(true), true},
		{"unequal bools", Bool(true), Bool(false), false},
		{"equal ints", Num(Int(5)), Num(Int(5)), true},
		{"int vs uint not equal", Num(Int(1)), Num(Uint(1)), false},
		{"int vs float not equal", Num(Int(1)), Num(Float(1)), false},
		{"equal strings", Str("x"), Str("x"), true},
		{"equal bytes", Bytes([]byte("ab")), Bytes([]byte("ab")), true},
		{"different kind", Unit(), Bool(true), false},
		{"none equals none", None(), None(), true},
		{"some vs none", Some(Num(Int(1))), None(), false},
		{"equal some", Some(Num(Int(1))), Some(Num(Int(1))), true},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			if got := tc.a.Equal(tc.b); got != tc.want {
				t.Errorf("Equal() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEqualSeq(t *testing.T) {
	a := Seq([]Value{Num(Int(1)), Str("a")})
	b := Seq([]Value{Num(Int(1)), Str("a")})
	c := Seq([]Value{Str("a"), Num(Int(1))})
	if !a.Equal(b) {
		t.Error("expected equal sequences to compare equal")
	}
	if a.Equal(c) {
		t.Error("expected differently-ordered sequences to compare unequal")
	}
}

func TestEqualVariant(t *testing.T) {
	a := VariantVal(Variant{Name: "Circle", Shape: ShapeTuple, Elems: []Value{Num(Float(1.5))}})
	b := VariantVal(Variant{Name: "Circle", Shape: ShapeTuple, Elems: []Value{Num(Float(1.5))}})
	c := VariantVal(Variant{Name: "Square", Shape: ShapeTuple, Elems: []Value{Num(Float(1.5))}})
	if !a.Equal(b) {
		t.Error("expected matching variants to compare equal")
	}
	if a.Equal(c) {
		t.Error("expected differently-named variants to compare unequal")
	}
}

func TestMapOrderedLookup(t *testing.T) {
	m := NewMap()
	m.Set(Str("a"), Num(Int(1)))
	m.Set(Str("b"), Num(Int(2)))
	m.Set(Str("a"), Num(Int(3)))

	if got, ok := m.Get(Str("a")); !ok || !got.Equal(Num(Int(3))) {
		t.Errorf("Get(a) = %v, %v, want 3, true", got, ok)
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (update shouldn't grow the map)", m.Len())
	}

	var order []string
	m.Range(func(k, v Value) bool {
		s, _ := k.Str()
		order = append(order, s)
		return true
	})
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("Range order = %v, want [a b]", order)
	}
}

func TestMapHasDuplicateKey(t *testing.T) {
	m := NewMap()
	m.Append(Num(Int(1)), Str("x"))
	m.Append(Num(Int(1)), Str("y"))
	if _, dup := m.HasDuplicateKey(); !dup {
		t.Error("expected a duplicate key to be detected")
	}
}

func TestFormatFloat(t *testing.T) {
	for _, tc := range []struct {
		in   float64
		want string
	}{
		{1, "1."},
		{1.5, "1.5"},
	} {
		if got := FormatFloat(tc.in); got != tc.want {
			t.Errorf("FormatFloat(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
