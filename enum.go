package ron

// EnumBase marks a Go struct as a RON enum container: embed it in a
// struct whose other exported fields each represent one variant, and
// reflectVisitor will decode/encode through it instead of treating the
// struct as an ordinary named struct.
//
//	type Shape struct {
//		ron.EnumBase
//		Circle    *CircleVariant  `ron:"circle"`
//		Rectangle *RectVariant    `ron:"rectangle,tuple"`
//		Empty     bool            `ron:"empty,unit"`
//	}
//
// Exactly one variant field is populated at a time: a struct-typed
// pointer field (named fields, decoded like an ordinary struct), a
// pointer to a struct whose fields are taken positionally in
// declaration order (tagged ",tuple"), or a bool (",unit", true when that variant is
// selected). This mirrors the single-active-field "oneof" convention
// generated Go protobuf bindings use for sum types, since Go itself
// has no tagged-union language feature to map RON's enum onto
// directly.
type EnumBase struct{}

func (EnumBase) ronEnum() {}

type enumMarker interface {
	ronEnum()
}
