// Package value implements the RON Value tree (component E of the
// core): a dynamically-typed, owned representation of any RON
// document, used when no static target type is available to drive the
// typed deserializer.
package value

import "bytes"

// Kind tags which field of a Value is populated, the same one-tag,
// one-field-per-kind shape internal/lex.Token uses for terminals one
// layer down.
type Kind int

const (
	KindUnit Kind = iota
	KindBool
	KindNumber
	KindChar
	KindStr
	KindBytes
	KindOption
	KindSeq
	KindMap
	KindUnitStruct
	KindVariant
)

func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindChar:
		return "char"
	case KindStr:
		return "string"
	case KindBytes:
		return "bytes"
	case KindOption:
		return "option"
	case KindSeq:
		return "seq"
	case KindMap:
		return "map"
	case KindUnitStruct:
		return "unit struct"
	case KindVariant:
		return "variant"
	default:
		return "?"
	}
}

// VariantShape is the syntactic body shape of a struct/variant value:
// unit (bare name), tuple (positional fields), or named (field: value
// pairs).
type VariantShape int

const (
	ShapeUnit VariantShape = iota
	ShapeTuple
	ShapeNamed
)

// Field is one named-struct/named-variant field.
type Field struct {
	Name  string
	Value Value
}

// Variant is the payload of a KindVariant Value: an optional enum
// name, a required identifier (the variant or struct name — "" when
// the source had no leading identifier, e.g. an anonymous named body
// parsed with no static type hint), and its body.
type Variant struct {
	EnumName string // "" when unknown, e.g. generic Value parsing
	Name     string
	Shape    VariantShape
	Elems    []Value // ShapeTuple
	Fields   []Field // ShapeNamed
}

// Value is the self-describing tagged union RON parses into when the
// caller has no static Go type to decode against.
type Value struct {
	kind Kind

	b    bool
	num  Number
	ch   rune
	str  string
	byts []byte
	opt  *Value // nil = None, non-nil = Some(*opt)
	seq  []Value
	mp   *Map
	uName string // KindUnitStruct: name (an anonymous `()` parses as KindUnit)
	vr   *Variant
}

func Unit() Value                  { return Value{kind: KindUnit} }
func Bool(b bool) Value            { return Value{kind: KindBool, b: b} }
func Num(n Number) Value           { return Value{kind: KindNumber, num: n} }
func Char(r rune) Value            { return Value{kind: KindChar, ch: r} }
func Str(s string) Value           { return Value{kind: KindStr, str: s} }
func Bytes(b []byte) Value         { return Value{kind: KindBytes, byts: b} }
func None() Value                  { return Value{kind: KindOption} }
func Some(v Value) Value           { return Value{kind: KindOption, opt: &v} }
func Seq(vs []Value) Value         { return Value{kind: KindSeq, seq: vs} }
func MapVal(m *Map) Value          { return Value{kind: KindMap, mp: m} }
func UnitStruct(name string) Value { return Value{kind: KindUnitStruct, uName: name} }
func VariantVal(v Variant) Value   { return Value{kind: KindVariant, vr: &v} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) Bool() (bool, bool)       { return v.b, v.kind == KindBool }
func (v Value) Number() (Number, bool)   { return v.num, v.kind == KindNumber }
func (v Value) Char() (rune, bool)       { return v.ch, v.kind == KindChar }
func (v Value) Str() (string, bool)      { return v.str, v.kind == KindStr }
func (v Value) BytesVal() ([]byte, bool) { return v.byts, v.kind == KindBytes }
func (v Value) Seq() ([]Value, bool)     { return v.seq, v.kind == KindSeq }
func (v Value) Map() (*Map, bool)        { return v.mp, v.kind == KindMap }
func (v Value) UnitStructName() (string, bool) {
	return v.uName, v.kind == KindUnitStruct
}
func (v Value) Variant() (*Variant, bool) { return v.vr, v.kind == KindVariant }

// Option reports whether v is KindOption, and if so whether it is
// Some, returning the inner value.
func (v Value) Option() (inner Value, isSome bool, isOption bool) {
	if v.kind != KindOption {
		return Value{}, false, false
	}
	if v.opt == nil {
		return Value{}, false, true
	}
	return *v.opt, true, true
}

// Equal implements structural equality, used both for map key
// comparisons and for the round-trip property tests.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindUnit:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.num.Equal(o.num)
	case KindChar:
		return v.ch == o.ch
	case KindStr:
		return v.str == o.str
	case KindBytes:
		return bytes.Equal(v.byts, o.byts)
	case KindOption:
		if (v.opt == nil) != (o.opt == nil) {
			return false
		}
		if v.opt == nil {
			return true
		}
		return v.opt.Equal(*o.opt)
	case KindSeq:
		if len(v.seq) != len(o.seq) {
			return false
		}
		for i := range v.seq {
			if !v.seq[i].Equal(o.seq[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return v.mp.Equal(o.mp)
	case KindUnitStruct:
		return v.uName == o.uName
	case KindVariant:
		return variantEqual(v.vr, o.vr)
	default:
		return false
	}
}

func variantEqual(a, b *Variant) bool {
	if a.EnumName != b.EnumName || a.Name != b.Name || a.Shape != b.Shape {
		return false
	}
	switch a.Shape {
	case ShapeUnit:
		return true
	case ShapeTuple:
		if len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !a.Elems[i].Equal(b.Elems[i]) {
				return false
			}
		}
		return true
	default: // ShapeNamed
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name || !a.Fields[i].Value.Equal(b.Fields[i].Value) {
				return false
			}
		}
		return true
	}
}
