package ron

import "github.com/ronlang/ron/value"

// Expectation is what a Visitor's target type announces it wants next
// (expect a bool, expect a named struct body, ...), read by the
// Decoder to pick which RON production to parse at the current value
// position.
type Expectation int

const (
	ExpectAny Expectation = iota
	ExpectBool
	ExpectInt
	ExpectUint
	ExpectFloat
	ExpectChar
	ExpectStr
	ExpectBytes
	ExpectOption
	ExpectUnit
	ExpectSeq
	ExpectTuple
	ExpectMap
	ExpectUnitStruct
	ExpectNewtypeStruct
	ExpectTupleStruct
	ExpectStruct
	ExpectEnum
)

// Visitor is the data-model visitor contract: the consumer interface
// the parser drives, implementing one method per data-model kind. It
// is deliberately boilerplate — generalized serialization frameworks
// in other host languages get this from derive macros; here it is
// implemented once, by reflection, in reflectVisitor, and once more,
// structurally, by valueVisitor for the Value tree.
type Visitor interface {
	// Expect reports which RON production this visitor's target type
	// wants at the current position.
	Expect() Expectation

	// Name is the expected struct/enum/newtype name, or "" if the
	// target carries no name (e.g. decoding into value.Value or into an
	// unnamed Go struct type). reflectVisitor reports the Go type name,
	// or RonName() when the type defines one.
	Name() string
	// Fields is the expected named-struct field list (ExpectStruct).
	Fields() []string
	// Variants is the expected enum variant list (ExpectEnum).
	Variants() []string
	// Arity is the expected tuple/tuple-struct length, or -1 if
	// unconstrained.
	Arity() int

	Bool(b bool) error
	Int(n int64) error
	Uint(n uint64) error
	Float(f float64) error
	Char(r rune) error
	Str(s string) error
	Bytes(b []byte) error
	Unit() error
	UnitStruct(name string) error

	// None/Some drive Option<T> (ExpectOption). Some returns the
	// Visitor for the wrapped value.
	None() error
	Some() (Visitor, error)

	BeginSeq() (SeqVisitor, error)
	BeginMap() (MapVisitor, error)
	BeginNewtypeStruct(name string) (Visitor, error)
	BeginTupleStruct(name string) (SeqVisitor, error)
	BeginStruct(name string) (StructVisitor, error)

	// BeginEnum is driven only for ExpectEnum targets, after the
	// variant identifier has already been read and validated against
	// Variants(). The generic Value-tree path (valueVisitor) never
	// implements ExpectEnum: since bare Value parsing cannot tell a
	// struct from an enum variant apart, identifier-headed bodies are
	// routed through BeginStruct/BeginTupleStruct/UnitStruct instead,
	// both folding into value.KindVariant.
	BeginEnum(enumName, variantName string) (EnumVisitor, error)
}

// SeqVisitor drives one ordered sequence (list, tuple, or tuple-struct
// body): Elem is called once per element, in order, then End once the
// closing bracket/paren is reached.
type SeqVisitor interface {
	Elem(i int) (Visitor, error)
	End(n int) error
}

// MapVisitor drives one `{...}` body. Map keys may be any RON value,
// so they are always parsed generically into a value.Value first and
// handed to SetEntry, which returns the Visitor for that entry's
// value.
type MapVisitor interface {
	SetEntry(key value.Value) (Visitor, error)
	End() error
}

// StructVisitor drives one named-field record body.
type StructVisitor interface {
	Field(name string) (Visitor, error)
	End() error
}

// EnumVisitor dispatches to the Visitor/SeqVisitor/StructVisitor
// matching the variant's shape, which Expect reports from the static
// target type — the Decoder never guesses a variant's shape from
// lookahead. A "newtype variant" (a single unnamed field) is just a
// tuple variant with Arity()==1; Tuple serves both, since
// unwrap_variant_newtypes's mandatory-unwrap rule needs to know the
// arity before it decides whether to consume the inner value's own
// delimiter or reuse the variant's.
type EnumVisitor interface {
	Expect() value.VariantShape
	Arity() int

	Unit() error
	Tuple() (SeqVisitor, error)
	Named() (StructVisitor, error)
}
