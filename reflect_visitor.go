package ron

import (
	"encoding"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/ronlang/ron/value"
)

// Sentinel errors Field/SetEntry return so the Decoder (which holds
// the token position) can attach the right lex.Kind and byte offset;
// the visitor itself has no position to report.
var (
	errFieldNotFound   = errors.New("ron: field not found")
	errDuplicateField  = errors.New("ron: duplicate field")
	errDuplicateMapKey = errors.New("ron: duplicate map key")
)

// missingFieldError reports which required field End found unfilled;
// the Decoder attaches a position to it the same way it does for the
// other Field/SetEntry sentinels.
type missingFieldError struct{ field string }

func (e *missingFieldError) Error() string {
	return fmt.Sprintf("ron: missing required field %q", e.field)
}

var (
	valueType           = reflect.TypeOf(value.Value{})
	charType            = reflect.TypeOf(Char(0))
	enumIface           = reflect.TypeOf((*enumMarker)(nil)).Elem()
	tupleIface          = reflect.TypeOf((*tupleMarker)(nil)).Elem()
	namedIface          = reflect.TypeOf((*namedMarker)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// textUnmarshaler reports whether v.Addr() implements
// encoding.TextUnmarshaler: such a field is decoded from a RON string
// by calling UnmarshalText instead of by its own Kind-directed
// production.
func textUnmarshaler(rv reflect.Value) (encoding.TextUnmarshaler, bool) {
	if !rv.CanAddr() {
		return nil, false
	}
	if !rv.Addr().Type().Implements(textUnmarshalerType) {
		return nil, false
	}
	return rv.Addr().Interface().(encoding.TextUnmarshaler), true
}

// reflectVisitor implements Visitor over a Go value by reflection, the
// typed-decode counterpart to valueVisitor: instead of building a
// generic map[string][]any tree, it drives each production straight
// into the caller's typed fields.
type reflectVisitor struct {
	rv reflect.Value // addressable, settable
}

// newReflectVisitor wraps rv, special-casing value.Value targets so a
// typed struct can embed a raw Value field for a partially-typed
// decode: the Decoder never learns this happened, since an *embedded*
// valueVisitor reports ExpectAny exactly like any other generic target
// and drives decodeAny the same way.
func newReflectVisitor(rv reflect.Value) Visitor {
	if rv.Type() == valueType {
		return newValueVisitor(func(v value.Value) { rv.Set(reflect.ValueOf(v)) })
	}
	return &reflectVisitor{rv: rv}
}

func (v *reflectVisitor) Expect() Expectation {
	t := v.rv.Type()
	if t == charType {
		return ExpectChar
	}
	if _, ok := textUnmarshaler(v.rv); ok {
		return ExpectStr
	}
	switch v.rv.Kind() {
	case reflect.Bool:
		return ExpectBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return ExpectInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return ExpectUint
	case reflect.Float32, reflect.Float64:
		return ExpectFloat
	case reflect.String:
		return ExpectStr
	case reflect.Pointer:
		return ExpectOption
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return ExpectBytes
		}
		return ExpectSeq
	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return ExpectBytes
		}
		return ExpectTuple
	case reflect.Map:
		return ExpectMap
	case reflect.Struct:
		return classifyStruct(t)
	default:
		return ExpectAny
	}
}

func (v *reflectVisitor) Name() string {
	if n, ok := reflect.New(v.rv.Type()).Interface().(interface{ RonName() string }); ok {
		return n.RonName()
	}
	return v.rv.Type().Name()
}

func (v *reflectVisitor) Fields() []string {
	fields := ronFields(v.rv.Type())
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.name
	}
	return names
}

func (v *reflectVisitor) Variants() []string {
	fields := ronEnumFields(v.rv.Type())
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.name
	}
	return names
}

func (v *reflectVisitor) Arity() int {
	switch v.rv.Kind() {
	case reflect.Array:
		return v.rv.Len()
	case reflect.Struct:
		return len(ronFields(v.rv.Type()))
	default:
		return -1
	}
}

func (v *reflectVisitor) Bool(b bool) error {
	v.rv.SetBool(b)
	return nil
}

func intBounds(k reflect.Kind) (min int64, max uint64) {
	switch k {
	case reflect.Int:
		return math.MinInt, math.MaxInt
	case reflect.Int8:
		return math.MinInt8, math.MaxInt8
	case reflect.Int16:
		return math.MinInt16, math.MaxInt16
	case reflect.Int32:
		return math.MinInt32, math.MaxInt32
	default:
		return math.MinInt64, math.MaxInt64
	}
}

func uintBounds(k reflect.Kind) uint64 {
	switch k {
	case reflect.Uint:
		return math.MaxUint
	case reflect.Uint8:
		return math.MaxUint8
	case reflect.Uint16:
		return math.MaxUint16
	case reflect.Uint32:
		return math.MaxUint32
	default:
		return math.MaxUint64
	}
}

func (v *reflectVisitor) Int(n int64) error {
	min, max := intBounds(v.rv.Kind())
	if n < min || (n > 0 && uint64(n) > max) {
		return fmt.Errorf("ron: %d is out of range for %s", n, v.rv.Type())
	}
	v.rv.SetInt(n)
	return nil
}

func (v *reflectVisitor) Uint(n uint64) error {
	if max := uintBounds(v.rv.Kind()); n > max {
		return fmt.Errorf("ron: %d is out of range for %s", n, v.rv.Type())
	}
	v.rv.SetUint(n)
	return nil
}

func (v *reflectVisitor) Float(f float64) error {
	v.rv.SetFloat(f)
	return nil
}

func (v *reflectVisitor) Char(r rune) error {
	v.rv.SetInt(int64(r))
	return nil
}

func (v *reflectVisitor) Str(s string) error {
	if u, ok := textUnmarshaler(v.rv); ok {
		return u.UnmarshalText([]byte(s))
	}
	v.rv.SetString(s)
	return nil
}

func (v *reflectVisitor) Bytes(b []byte) error {
	switch v.rv.Kind() {
	case reflect.Array:
		if v.rv.Len() != len(b) {
			return fmt.Errorf("ron: byte array length mismatch: want %d, got %d", v.rv.Len(), len(b))
		}
		reflect.Copy(v.rv, reflect.ValueOf(b))
	default:
		v.rv.Set(reflect.ValueOf(b).Convert(v.rv.Type()))
	}
	return nil
}

func (v *reflectVisitor) Unit() error { return nil }

func (v *reflectVisitor) UnitStruct(name string) error { return nil }

func (v *reflectVisitor) None() error {
	v.rv.Set(reflect.Zero(v.rv.Type()))
	return nil
}

func (v *reflectVisitor) Some() (Visitor, error) {
	ptr := reflect.New(v.rv.Type().Elem())
	v.rv.Set(ptr)
	return newReflectVisitor(ptr.Elem()), nil
}

func (v *reflectVisitor) BeginSeq() (SeqVisitor, error) {
	switch v.rv.Kind() {
	case reflect.Array:
		return &seqReflectVisitor{kind: seqArray, rv: v.rv}, nil
	case reflect.Slice:
		return &seqReflectVisitor{kind: seqSlice, rv: v.rv, elemType: v.rv.Type().Elem()}, nil
	default:
		return nil, fmt.Errorf("ron: cannot decode a sequence into %s", v.rv.Type())
	}
}

// newPositionalSeqVisitor builds a seqStructPositional visitor over
// rv's ronFields (which already excludes TupleBase/NamedBase/EnumBase
// marker embeds), so a tuple struct's declared fields are addressed by
// their logical position, not their raw reflect.StructField index.
func newPositionalSeqVisitor(rv reflect.Value) *seqReflectVisitor {
	return &seqReflectVisitor{kind: seqStructPositional, rv: rv, posFields: ronFields(rv.Type())}
}

func (v *reflectVisitor) BeginMap() (MapVisitor, error) {
	if v.rv.Kind() != reflect.Map {
		return nil, fmt.Errorf("ron: cannot decode a map into %s", v.rv.Type())
	}
	if v.rv.IsNil() {
		v.rv.Set(reflect.MakeMap(v.rv.Type()))
	}
	return &mapReflectVisitor{rv: v.rv}, nil
}

func (v *reflectVisitor) BeginNewtypeStruct(name string) (Visitor, error) {
	fields := ronFields(v.rv.Type())
	if len(fields) != 1 {
		return nil, fmt.Errorf("ron: %s is not a single-field newtype struct", v.rv.Type())
	}
	return newReflectVisitor(v.rv.Field(fields[0].index)), nil
}

func (v *reflectVisitor) BeginTupleStruct(name string) (SeqVisitor, error) {
	return newPositionalSeqVisitor(v.rv), nil
}

func (v *reflectVisitor) BeginStruct(name string) (StructVisitor, error) {
	return &structReflectVisitor{rv: v.rv, fields: ronFields(v.rv.Type())}, nil
}

func (v *reflectVisitor) BeginEnum(enumName, variantName string) (EnumVisitor, error) {
	fields := ronEnumFields(v.rv.Type())
	for _, f := range fields {
		if f.name == variantName {
			return &enumReflectVisitor{fieldVal: v.rv.Field(f.index), field: f}, nil
		}
	}
	return nil, fmt.Errorf("ron: %s has no variant named %q", v.rv.Type(), variantName)
}

// seqKind distinguishes the three Go shapes a SeqVisitor can be driven
// over: a growable slice, a fixed-size array (RON tuple), or a
// tuple-struct's fields taken positionally.
type seqKind int

const (
	seqSlice seqKind = iota
	seqArray
	seqStructPositional
)

type seqReflectVisitor struct {
	kind      seqKind
	rv        reflect.Value
	elemType  reflect.Type      // seqSlice only
	elems     []reflect.Value   // seqSlice only, built up then committed in End
	posFields []structFieldInfo // seqStructPositional only
}

func (s *seqReflectVisitor) Elem(i int) (Visitor, error) {
	switch s.kind {
	case seqArray:
		if i >= s.rv.Len() {
			return nil, fmt.Errorf("ron: tuple has more elements than %s can hold (%d)", s.rv.Type(), s.rv.Len())
		}
		return newReflectVisitor(s.rv.Index(i)), nil
	case seqStructPositional:
		if i >= len(s.posFields) {
			return nil, fmt.Errorf("ron: tuple struct %s has more elements than fields (%d)", s.rv.Type(), len(s.posFields))
		}
		return newReflectVisitor(s.rv.Field(s.posFields[i].index)), nil
	default:
		ev := reflect.New(s.elemType).Elem()
		s.elems = append(s.elems, ev)
		return newReflectVisitor(ev), nil
	}
}

func (s *seqReflectVisitor) End(n int) error {
	switch s.kind {
	case seqArray:
		if n != s.rv.Len() {
			return fmt.Errorf("ron: tuple arity mismatch: %s expects %d elements, got %d", s.rv.Type(), s.rv.Len(), n)
		}
	case seqStructPositional:
		if n != len(s.posFields) {
			return fmt.Errorf("ron: tuple struct arity mismatch: %s expects %d elements, got %d", s.rv.Type(), len(s.posFields), n)
		}
	default:
		sl := reflect.MakeSlice(s.rv.Type(), n, n)
		for i, ev := range s.elems {
			sl.Index(i).Set(ev)
		}
		s.rv.Set(sl)
	}
	return nil
}

// mapReflectVisitor buffers decoded entries and commits them with
// SetMapIndex in End, since (unlike a struct field or array element) a
// Go map value slot has no addressable view to decode into directly.
type mapReflectVisitor struct {
	rv      reflect.Value
	keys    []reflect.Value
	vals    []reflect.Value
	rawKeys []value.Value // source keys, for duplicate detection
}

func (m *mapReflectVisitor) SetEntry(key value.Value) (Visitor, error) {
	for _, k := range m.rawKeys {
		if k.Equal(key) {
			return nil, errDuplicateMapKey
		}
	}
	kv := reflect.New(m.rv.Type().Key()).Elem()
	if err := driveFromValue(newReflectVisitor(kv), key); err != nil {
		return nil, err
	}
	vv := reflect.New(m.rv.Type().Elem()).Elem()
	m.rawKeys = append(m.rawKeys, key)
	m.keys = append(m.keys, kv)
	m.vals = append(m.vals, vv)
	return newReflectVisitor(vv), nil
}

func (m *mapReflectVisitor) End() error {
	for i := range m.keys {
		m.rv.SetMapIndex(m.keys[i], m.vals[i])
	}
	return nil
}

type structReflectVisitor struct {
	rv     reflect.Value
	fields []structFieldInfo
	seen   map[string]bool
}

func (s *structReflectVisitor) Field(name string) (Visitor, error) {
	for _, f := range s.fields {
		if f.name == name {
			if s.seen == nil {
				s.seen = make(map[string]bool, len(s.fields))
			}
			if s.seen[name] {
				return nil, errDuplicateField
			}
			s.seen[name] = true
			return newReflectVisitor(s.rv.Field(f.index)), nil
		}
	}
	return nil, errFieldNotFound
}

// End requires every non-pointer exported field to have been seen: a
// pointer field represents Option<T> and is left nil when absent, but
// any other type has no such "not given" value to fall back to.
func (s *structReflectVisitor) End() error {
	for _, f := range s.fields {
		if s.seen[f.name] {
			continue
		}
		if s.rv.Field(f.index).Kind() == reflect.Pointer {
			continue
		}
		return &missingFieldError{field: f.name}
	}
	return nil
}

// enumReflectVisitor drives the single already-selected variant field
// of an EnumBase container (see enum.go).
type enumReflectVisitor struct {
	fieldVal reflect.Value
	field    enumFieldInfo
}

func (e *enumReflectVisitor) Expect() value.VariantShape { return e.field.shape }

func (e *enumReflectVisitor) Arity() int {
	switch e.field.shape {
	case value.ShapeTuple:
		return len(ronFields(e.fieldVal.Type().Elem()))
	case value.ShapeUnit:
		return 0
	default:
		return -1
	}
}

func (e *enumReflectVisitor) Unit() error {
	e.fieldVal.SetBool(true)
	return nil
}

func (e *enumReflectVisitor) Tuple() (SeqVisitor, error) {
	payload := reflect.New(e.fieldVal.Type().Elem())
	e.fieldVal.Set(payload)
	return newPositionalSeqVisitor(payload.Elem()), nil
}

func (e *enumReflectVisitor) Named() (StructVisitor, error) {
	payload := reflect.New(e.fieldVal.Type().Elem())
	e.fieldVal.Set(payload)
	return &structReflectVisitor{rv: payload.Elem(), fields: ronFields(payload.Elem().Type())}, nil
}

// structFieldInfo is one exported, non-skipped struct field together
// with its RON name (struct tag `ron:"name"` overrides the Go name,
// `ron:"-"` skips it).
type structFieldInfo struct {
	index int
	name  string
}

func ronFields(t reflect.Type) []structFieldInfo {
	var out []structFieldInfo
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Anonymous && (f.Type == reflect.TypeOf(EnumBase{}) || f.Type == reflect.TypeOf(TupleBase{}) || f.Type == reflect.TypeOf(NamedBase{})) {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("ron"); ok {
			base, _, _ := strings.Cut(tag, ",")
			if base == "-" {
				continue
			}
			if base != "" {
				name = base
			}
		}
		out = append(out, structFieldInfo{index: i, name: name})
	}
	return out
}

// enumFieldInfo is one variant field of an EnumBase container: its RON
// variant name and syntactic shape, read from `ron:"name"` plus an
// optional ",tuple"/",unit" modifier (named is the default).
type enumFieldInfo struct {
	index int
	name  string
	shape value.VariantShape
}

func ronEnumFields(t reflect.Type) []enumFieldInfo {
	var out []enumFieldInfo
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Anonymous && f.Type == reflect.TypeOf(EnumBase{}) {
			continue
		}
		name := f.Name
		shape := value.ShapeNamed
		if tag, ok := f.Tag.Lookup("ron"); ok {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
			for _, mod := range parts[1:] {
				switch mod {
				case "tuple":
					shape = value.ShapeTuple
				case "unit":
					shape = value.ShapeUnit
				}
			}
		}
		out = append(out, enumFieldInfo{index: i, name: name, shape: shape})
	}
	return out
}

func hasMarker(t reflect.Type, marker reflect.Type) bool {
	return t.Implements(marker) || reflect.PointerTo(t).Implements(marker)
}

// classifyStruct maps a Go struct type onto the data-model shape
// closest to how it's declared: an EnumBase embed is a sum type: a
// TupleBase embed is a tuple struct; one exported field unwraps to a
// newtype struct unless NamedBase opts out; zero exported fields is a
// unit struct; anything else is an ordinary named struct.
func classifyStruct(t reflect.Type) Expectation {
	if hasMarker(t, enumIface) {
		return ExpectEnum
	}
	if hasMarker(t, tupleIface) {
		return ExpectTupleStruct
	}
	fields := ronFields(t)
	switch {
	case len(fields) == 0:
		return ExpectUnitStruct
	case len(fields) == 1 && !hasMarker(t, namedIface):
		return ExpectNewtypeStruct
	default:
		return ExpectStruct
	}
}

// driveFromValue replays an already-parsed value.Value into vis,
// reusing the Visitor contract instead of a separate conversion path.
// It is how map keys (always parsed generically, since they may be any
// shape) reach a typed Go map's key type, and is exported indirectly
// through Into for decoding a value.Value tree into a Go type.
func driveFromValue(vis Visitor, v value.Value) error {
	switch v.Kind() {
	case value.KindUnit:
		return vis.Unit()
	case value.KindBool:
		b, _ := v.Bool()
		return vis.Bool(b)
	case value.KindNumber:
		n, _ := v.Number()
		switch vis.Expect() {
		case ExpectFloat:
			return vis.Float(n.AsFloat())
		case ExpectInt:
			if i, ok := n.AsInt(); ok {
				return vis.Int(i)
			}
			return fmt.Errorf("ron: %s does not fit in a signed integer", n)
		case ExpectUint:
			if u, ok := n.AsUint(); ok {
				return vis.Uint(u)
			}
			return fmt.Errorf("ron: %s does not fit in an unsigned integer", n)
		}
		switch n.Kind() {
		case value.NumberInt:
			i, _ := n.AsInt()
			return vis.Int(i)
		case value.NumberUint:
			u, _ := n.AsUint()
			return vis.Uint(u)
		default:
			return vis.Float(n.AsFloat())
		}
	case value.KindChar:
		r, _ := v.Char()
		return vis.Char(r)
	case value.KindStr:
		s, _ := v.Str()
		return vis.Str(s)
	case value.KindBytes:
		b, _ := v.BytesVal()
		return vis.Bytes(b)
	case value.KindOption:
		inner, isSome, _ := v.Option()
		if !isSome {
			return vis.None()
		}
		innerVis, err := vis.Some()
		if err != nil {
			return err
		}
		return driveFromValue(innerVis, inner)
	case value.KindSeq:
		elems, _ := v.Seq()
		sv, err := vis.BeginSeq()
		if err != nil {
			return err
		}
		for i, e := range elems {
			ev, err := sv.Elem(i)
			if err != nil {
				return err
			}
			if err := driveFromValue(ev, e); err != nil {
				return err
			}
		}
		return sv.End(len(elems))
	case value.KindMap:
		m, _ := v.Map()
		mv, err := vis.BeginMap()
		if err != nil {
			return err
		}
		var rangeErr error
		m.Range(func(k, val value.Value) bool {
			evv, err := mv.SetEntry(k)
			if err != nil {
				rangeErr = err
				return false
			}
			if err := driveFromValue(evv, val); err != nil {
				rangeErr = err
				return false
			}
			return true
		})
		if rangeErr != nil {
			return rangeErr
		}
		return mv.End()
	case value.KindUnitStruct:
		name, _ := v.UnitStructName()
		return vis.UnitStruct(name)
	case value.KindVariant:
		variant, _ := v.Variant()
		switch variant.Shape {
		case value.ShapeUnit:
			return vis.UnitStruct(variant.Name)
		case value.ShapeTuple:
			sv, err := vis.BeginTupleStruct(variant.Name)
			if err != nil {
				return err
			}
			for i, e := range variant.Elems {
				ev, err := sv.Elem(i)
				if err != nil {
					return err
				}
				if err := driveFromValue(ev, e); err != nil {
					return err
				}
			}
			return sv.End(len(variant.Elems))
		default:
			sv, err := vis.BeginStruct(variant.Name)
			if err != nil {
				return err
			}
			for _, f := range variant.Fields {
				fv, err := sv.Field(f.Name)
				if err != nil {
					return err
				}
				if err := driveFromValue(fv, f.Value); err != nil {
					return err
				}
			}
			return sv.End()
		}
	default:
		return fmt.Errorf("ron: cannot decode value of kind %s", v.Kind())
	}
}
