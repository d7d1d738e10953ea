package ron

import (
	"fmt"

	"github.com/ronlang/ron/value"
)

// valueVisitor implements Visitor by building a value.Value tree
// (component E), used whenever no static Go type is available to drive
// the typed deserializer. It always reports ExpectAny: every shape
// decision is made by the Decoder from syntax alone (decodeAny), never
// from a target type, which is why valueVisitor has no use for
// BeginEnum — see the note on Visitor.BeginEnum.
//
// Each valueVisitor holds a commit callback rather than a result field
// directly, because composite values (Some, seq elements, map entries,
// struct fields) are only fully known once the Decoder finishes
// decoding into a child visitor; the child reports its finished value
// upward through commit instead of the parent polling a shared field.
type valueVisitor struct {
	commit func(value.Value)
}

func newValueVisitor(commit func(value.Value)) *valueVisitor {
	return &valueVisitor{commit: commit}
}

// parseAny runs the Decoder's generic parse and returns the resulting
// value.Value.
func parseAny(d *Decoder, depth int) (value.Value, error) {
	var result value.Value
	root := newValueVisitor(func(v value.Value) { result = v })
	if err := d.decode(root, depth); err != nil {
		return value.Value{}, err
	}
	return result, nil
}

func (v *valueVisitor) Expect() Expectation { return ExpectAny }
func (v *valueVisitor) Name() string        { return "" }
func (v *valueVisitor) Fields() []string    { return nil }
func (v *valueVisitor) Variants() []string  { return nil }
func (v *valueVisitor) Arity() int          { return -1 }

func (v *valueVisitor) Bool(b bool) error     { v.commit(value.Bool(b)); return nil }
func (v *valueVisitor) Int(n int64) error     { v.commit(value.Num(value.Int(n))); return nil }
func (v *valueVisitor) Uint(n uint64) error   { v.commit(value.Num(value.Uint(n))); return nil }
func (v *valueVisitor) Float(f float64) error { v.commit(value.Num(value.Float(f))); return nil }
func (v *valueVisitor) Char(r rune) error     { v.commit(value.Char(r)); return nil }
func (v *valueVisitor) Str(s string) error    { v.commit(value.Str(s)); return nil }

func (v *valueVisitor) Bytes(b []byte) error {
	cp := make([]byte, len(b))
	copy(cp, b)
	v.commit(value.Bytes(cp))
	return nil
}

func (v *valueVisitor) Unit() error { v.commit(value.Unit()); return nil }
func (v *valueVisitor) UnitStruct(name string) error {
	v.commit(value.UnitStruct(name))
	return nil
}

func (v *valueVisitor) None() error { v.commit(value.None()); return nil }
func (v *valueVisitor) Some() (Visitor, error) {
	return newValueVisitor(func(inner value.Value) {
		v.commit(value.Some(inner))
	}), nil
}

func (v *valueVisitor) BeginSeq() (SeqVisitor, error) {
	return &seqValueVisitor{commit: v.commit}, nil
}

func (v *valueVisitor) BeginMap() (MapVisitor, error) {
	return &mapValueVisitor{commit: v.commit, m: value.NewMap()}, nil
}

func (v *valueVisitor) BeginNewtypeStruct(name string) (Visitor, error) {
	return newValueVisitor(func(inner value.Value) {
		v.commit(value.VariantVal(value.Variant{
			Name:   name,
			Shape:  value.ShapeTuple,
			Elems:  []value.Value{inner},
		}))
	}), nil
}

func (v *valueVisitor) BeginTupleStruct(name string) (SeqVisitor, error) {
	return &seqValueVisitor{commit: v.commit, variantName: name, isVariant: true}, nil
}

func (v *valueVisitor) BeginStruct(name string) (StructVisitor, error) {
	return &structValueVisitor{commit: v.commit, name: name}, nil
}

func (v *valueVisitor) BeginEnum(enumName, variantName string) (EnumVisitor, error) {
	return nil, fmt.Errorf("ron: generic value decoding does not resolve enum variants (found %q)", variantName)
}

// seqValueVisitor collects elements for KindSeq (BeginSeq) or, when
// isVariant is set (BeginTupleStruct), for a KindVariant with
// ShapeTuple.
type seqValueVisitor struct {
	commit      func(value.Value)
	elems       []value.Value
	variantName string
	isVariant   bool
}

func (s *seqValueVisitor) Elem(i int) (Visitor, error) {
	return newValueVisitor(func(v value.Value) {
		s.elems = append(s.elems, v)
	}), nil
}

func (s *seqValueVisitor) End(n int) error {
	if s.isVariant {
		s.commit(value.VariantVal(value.Variant{
			Name:  s.variantName,
			Shape: value.ShapeTuple,
			Elems: s.elems,
		}))
		return nil
	}
	s.commit(value.Seq(s.elems))
	return nil
}

// mapValueVisitor collects entries for KindMap.
type mapValueVisitor struct {
	commit func(value.Value)
	m      *value.Map
	key    value.Value
}

func (mv *mapValueVisitor) SetEntry(key value.Value) (Visitor, error) {
	mv.key = key
	return newValueVisitor(func(v value.Value) {
		mv.m.Append(mv.key, v)
	}), nil
}

func (mv *mapValueVisitor) End() error {
	mv.commit(value.MapVal(mv.m))
	return nil
}

// structValueVisitor collects fields for a KindVariant with
// ShapeNamed (name is "" for an anonymous named body).
type structValueVisitor struct {
	commit func(value.Value)
	name   string
	fields []value.Field
}

func (s *structValueVisitor) Field(name string) (Visitor, error) {
	return newValueVisitor(func(v value.Value) {
		s.fields = append(s.fields, value.Field{Name: name, Value: v})
	}), nil
}

func (s *structValueVisitor) End() error {
	s.commit(value.VariantVal(value.Variant{
		Name:   s.name,
		Shape:  value.ShapeNamed,
		Fields: s.fields,
	}))
	return nil
}
