package ron

// Char is a single Unicode scalar value, Go's analogue of RON's char
// literal ('a'). Go has no distinct character type (rune is just an
// alias for int32, indistinguishable from a number via reflection), so
// a field of this defined type is what tells reflectVisitor to expect
// RON's char production instead of a plain integer.
type Char rune

// TupleBase marks a Go struct as RON-tuple-struct-shaped: its exported
// fields are decoded and encoded positionally, by declaration order,
// instead of by name.
//
//	type Point struct {
//		ron.TupleBase
//		X, Y float64
//	}
//
// Without TupleBase, a struct with two or more exported fields decodes
// as a named struct (ExpectStruct); with exactly one exported field it
// is instead treated as a newtype struct wrapping that field, unless
// it embeds NamedBase.
type TupleBase struct{}

func (TupleBase) ronTuple() {}

type tupleMarker interface {
	ronTuple()
}

// NamedBase opts a single-exported-field struct out of the newtype-
// struct heuristic, forcing ExpectStruct (RON's `(field: value)` named
// body) instead of unwrapping to the lone field.
type NamedBase struct{}

func (NamedBase) ronNamed() {}

type namedMarker interface {
	ronNamed()
}
