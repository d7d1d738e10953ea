package ron

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/ronlang/ron/internal/lex"
	"github.com/ronlang/ron/value"
)

// PrettyConfig controls Encoder rendering. The zero value is not
// directly usable; start from DefaultPrettyConfig or CompactConfig.
type PrettyConfig struct {
	DepthLimit      int
	NewLine         string
	Indentor        string
	Separator       string
	StructNames     bool
	EnumerateArrays bool
	Extensions      lex.Extensions
	CompactArrays   bool
	CompactMaps     bool
	CompactStructs  bool
	EscapeStrings   bool
	NumberSuffix    bool
}

// DefaultPrettyConfig is a readable multi-line rendering: one field
// per line, four-space indentation.
func DefaultPrettyConfig() PrettyConfig {
	return PrettyConfig{
		DepthLimit:    DefaultDepthLimit,
		NewLine:       "\n",
		Indentor:      "    ",
		Separator:     " ",
		EscapeStrings: true,
		NumberSuffix:  true,
	}
}

// CompactConfig renders everything on one line with no surrounding
// whitespace, the common wire-format shape.
func CompactConfig() PrettyConfig {
	return PrettyConfig{
		DepthLimit:     DefaultDepthLimit,
		NewLine:        "",
		Indentor:       "",
		Separator:      "",
		CompactArrays:  true,
		CompactMaps:    true,
		CompactStructs: true,
		EscapeStrings:  true,
		NumberSuffix:   true,
	}
}

// Encoder renders a value.Value or an arbitrary Go value as RON text,
// the serialization counterpart of Decoder.
type Encoder struct {
	cfg PrettyConfig
	sb  strings.Builder
}

// NewEncoder returns an Encoder using cfg.
func NewEncoder(cfg PrettyConfig) *Encoder {
	return &Encoder{cfg: cfg}
}

// String returns the accumulated output.
func (e *Encoder) String() string { return e.sb.String() }

// EncodeValue renders v, preceded by the extension header block when
// the configured extension set is non-empty.
func (e *Encoder) EncodeValue(v value.Value) error {
	if e.cfg.Extensions != 0 {
		e.sb.WriteString(e.cfg.Extensions.Header())
	}
	return e.encodeValue(v, 0)
}

// Encode renders an arbitrary Go value by reflection, the typed
// counterpart of EncodeValue.
func (e *Encoder) Encode(v any) error {
	if e.cfg.Extensions != 0 {
		e.sb.WriteString(e.cfg.Extensions.Header())
	}
	return e.encodeReflect(reflect.ValueOf(v), 0)
}

func (e *Encoder) depthErr(depth int) error {
	return fmt.Errorf("ron: nesting exceeds depth limit of %d", e.cfg.DepthLimit)
}

func (e *Encoder) indent(depth int) {
	for i := 0; i < depth; i++ {
		e.sb.WriteString(e.cfg.Indentor)
	}
}

func (e *Encoder) encodeValue(v value.Value, depth int) error {
	if depth > e.cfg.DepthLimit {
		return e.depthErr(depth)
	}
	switch v.Kind() {
	case value.KindUnit:
		e.sb.WriteString("()")
	case value.KindBool:
		b, _ := v.Bool()
		if b {
			e.sb.WriteString("true")
		} else {
			e.sb.WriteString("false")
		}
	case value.KindNumber:
		n, _ := v.Number()
		e.encodeNumber(n)
	case value.KindChar:
		r, _ := v.Char()
		e.encodeChar(r)
	case value.KindStr:
		s, _ := v.Str()
		e.encodeString(s)
	case value.KindBytes:
		b, _ := v.BytesVal()
		e.encodeBytes(b)
	case value.KindOption:
		inner, isSome, _ := v.Option()
		if !isSome {
			e.sb.WriteString("None")
			return nil
		}
		e.sb.WriteString("Some(")
		if err := e.encodeValue(inner, depth+1); err != nil {
			return err
		}
		e.sb.WriteString(")")
	case value.KindSeq:
		elems, _ := v.Seq()
		return e.encodeValueSeq(elems, depth)
	case value.KindMap:
		m, _ := v.Map()
		return e.encodeValueMap(m, depth)
	case value.KindUnitStruct:
		name, _ := v.UnitStructName()
		e.sb.WriteString(name)
	case value.KindVariant:
		variant, _ := v.Variant()
		return e.encodeValueVariant(variant, depth)
	default:
		return fmt.Errorf("ron: unknown value kind %v", v.Kind())
	}
	return nil
}

func (e *Encoder) encodeValueSeq(elems []value.Value, depth int) error {
	e.sb.WriteByte('[')
	compact := e.cfg.CompactArrays || len(elems) == 0
	for i, el := range elems {
		if !compact {
			e.sb.WriteString(e.cfg.NewLine)
			e.indent(depth + 1)
		} else if i > 0 {
			e.sb.WriteString(e.cfg.Separator)
		}
		if e.cfg.EnumerateArrays {
			fmt.Fprintf(&e.sb, "/*[%d]*/", i)
		}
		if err := e.encodeValue(el, depth+1); err != nil {
			return err
		}
		if !compact || i < len(elems)-1 {
			e.sb.WriteByte(',')
		}
	}
	if !compact {
		e.sb.WriteString(e.cfg.NewLine)
		e.indent(depth)
	}
	e.sb.WriteByte(']')
	return nil
}

func (e *Encoder) encodeValueMap(m *value.Map, depth int) error {
	e.sb.WriteByte('{')
	compact := e.cfg.CompactMaps || m.Len() == 0
	i := 0
	var rangeErr error
	m.Range(func(k, val value.Value) bool {
		if !compact {
			e.sb.WriteString(e.cfg.NewLine)
			e.indent(depth + 1)
		} else if i > 0 {
			e.sb.WriteString(e.cfg.Separator)
		}
		if err := e.encodeValue(k, depth+1); err != nil {
			rangeErr = err
			return false
		}
		e.sb.WriteString(": ")
		if err := e.encodeValue(val, depth+1); err != nil {
			rangeErr = err
			return false
		}
		if !compact || i < m.Len()-1 {
			e.sb.WriteByte(',')
		}
		i++
		return true
	})
	if rangeErr != nil {
		return rangeErr
	}
	if !compact {
		e.sb.WriteString(e.cfg.NewLine)
		e.indent(depth)
	}
	e.sb.WriteByte('}')
	return nil
}

func (e *Encoder) encodeValueVariant(variant *value.Variant, depth int) error {
	e.sb.WriteString(variant.Name)
	switch variant.Shape {
	case value.ShapeUnit:
		return nil
	case value.ShapeTuple:
		e.sb.WriteByte('(')
		compact := e.cfg.CompactStructs || len(variant.Elems) == 0
		for i, el := range variant.Elems {
			if !compact {
				e.sb.WriteString(e.cfg.NewLine)
				e.indent(depth + 1)
			} else if i > 0 {
				e.sb.WriteString(e.cfg.Separator)
			}
			if err := e.encodeValue(el, depth+1); err != nil {
				return err
			}
			if !compact || i < len(variant.Elems)-1 {
				e.sb.WriteByte(',')
			}
		}
		if !compact {
			e.sb.WriteString(e.cfg.NewLine)
			e.indent(depth)
		}
		e.sb.WriteByte(')')
		return nil
	default:
		e.sb.WriteByte('(')
		compact := e.cfg.CompactStructs || len(variant.Fields) == 0
		for i, f := range variant.Fields {
			if !compact {
				e.sb.WriteString(e.cfg.NewLine)
				e.indent(depth + 1)
			} else if i > 0 {
				e.sb.WriteString(e.cfg.Separator)
			}
			e.sb.WriteString(f.Name)
			e.sb.WriteString(": ")
			if err := e.encodeValue(f.Value, depth+1); err != nil {
				return err
			}
			if !compact || i < len(variant.Fields)-1 {
				e.sb.WriteByte(',')
			}
		}
		if !compact {
			e.sb.WriteString(e.cfg.NewLine)
			e.indent(depth)
		}
		e.sb.WriteByte(')')
		return nil
	}
}

func (e *Encoder) encodeNumber(n value.Number) {
	switch n.Kind() {
	case value.NumberInt:
		i, _ := n.AsInt()
		e.sb.WriteString(strconv.FormatInt(i, 10))
	case value.NumberUint:
		u, _ := n.AsUint()
		e.sb.WriteString(strconv.FormatUint(u, 10))
	default:
		s := value.FormatFloat(n.AsFloat())
		if !e.cfg.NumberSuffix {
			s = strings.TrimSuffix(s, ".")
		}
		e.sb.WriteString(s)
	}
}

func (e *Encoder) encodeChar(r rune) {
	e.sb.WriteByte('\'')
	switch r {
	case '\'':
		e.sb.WriteString(`\'`)
	case '\\':
		e.sb.WriteString(`\\`)
	case '\n':
		e.sb.WriteString(`\n`)
	case '\r':
		e.sb.WriteString(`\r`)
	case '\t':
		e.sb.WriteString(`\t`)
	default:
		e.sb.WriteRune(r)
	}
	e.sb.WriteByte('\'')
}

func (e *Encoder) encodeString(s string) {
	e.sb.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"':
			e.sb.WriteString(`\"`)
		case r == '\\':
			e.sb.WriteString(`\\`)
		case r == '\n':
			e.sb.WriteString(`\n`)
		case r == '\r':
			e.sb.WriteString(`\r`)
		case r == '\t':
			e.sb.WriteString(`\t`)
		case r < 0x20:
			fmt.Fprintf(&e.sb, `\x%02x`, r)
		case r > 0x7e && e.cfg.EscapeStrings:
			fmt.Fprintf(&e.sb, `\u{%x}`, r)
		default:
			e.sb.WriteRune(r)
		}
	}
	e.sb.WriteByte('"')
}

func (e *Encoder) encodeBytes(b []byte) {
	e.sb.WriteString(`b"`)
	for _, c := range b {
		switch {
		case c == '"':
			e.sb.WriteString(`\"`)
		case c == '\\':
			e.sb.WriteString(`\\`)
		case c < 0x20 || c > 0x7e:
			fmt.Fprintf(&e.sb, `\x%02x`, c)
		default:
			e.sb.WriteByte(c)
		}
	}
	e.sb.WriteString(`"`)
}

// encodeReflect renders a Go value using the same shape mapping
// reflectVisitor uses for decode (Expect()'s classification), so a
// round trip through Marshal/Unmarshal is symmetric by construction.
func (e *Encoder) encodeReflect(rv reflect.Value, depth int) error {
	if depth > e.cfg.DepthLimit {
		return e.depthErr(depth)
	}
	if rv.Kind() == reflect.Invalid {
		e.sb.WriteString("None")
		return nil
	}
	if rv.Type() == valueType {
		return e.encodeValue(rv.Interface().(value.Value), depth)
	}
	if m, ok := textMarshalerValue(rv); ok {
		text, err := m.MarshalText()
		if err != nil {
			return err
		}
		e.encodeString(string(text))
		return nil
	}
	if rv.Type() == charType {
		e.encodeChar(rune(rv.Int()))
		return nil
	}
	switch rv.Kind() {
	case reflect.Bool:
		if rv.Bool() {
			e.sb.WriteString("true")
		} else {
			e.sb.WriteString("false")
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.sb.WriteString(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		e.sb.WriteString(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		s := value.FormatFloat(rv.Float())
		if !e.cfg.NumberSuffix {
			s = strings.TrimSuffix(s, ".")
		}
		e.sb.WriteString(s)
	case reflect.String:
		e.encodeString(rv.String())
	case reflect.Pointer:
		if rv.IsNil() {
			e.sb.WriteString("None")
			return nil
		}
		e.sb.WriteString("Some(")
		if err := e.encodeReflect(rv.Elem(), depth+1); err != nil {
			return err
		}
		e.sb.WriteString(")")
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			if rv.Kind() == reflect.Array {
				b := make([]byte, rv.Len())
				reflect.Copy(reflect.ValueOf(b), rv)
				e.encodeBytes(b)
				return nil
			}
			e.encodeBytes(rv.Bytes())
			return nil
		}
		return e.encodeReflectSeq(rv, depth)
	case reflect.Map:
		return e.encodeReflectMap(rv, depth)
	case reflect.Struct:
		return e.encodeReflectStruct(rv, depth)
	default:
		return fmt.Errorf("ron: cannot encode value of kind %s", rv.Kind())
	}
	return nil
}

func textMarshalerValue(rv reflect.Value) (encoding.TextMarshaler, bool) {
	if rv.CanInterface() {
		if m, ok := rv.Interface().(encoding.TextMarshaler); ok {
			return m, true
		}
	}
	if rv.CanAddr() && rv.Addr().CanInterface() {
		if m, ok := rv.Addr().Interface().(encoding.TextMarshaler); ok {
			return m, true
		}
	}
	return nil, false
}

func (e *Encoder) encodeReflectSeq(rv reflect.Value, depth int) error {
	n := rv.Len()
	open, close := byte('['), byte(']')
	if rv.Kind() == reflect.Array {
		// a fixed-size array is a RON tuple, as reflectVisitor decodes it
		open, close = '(', ')'
	}
	e.sb.WriteByte(open)
	compact := e.cfg.CompactArrays || n == 0
	for i := 0; i < n; i++ {
		if !compact {
			e.sb.WriteString(e.cfg.NewLine)
			e.indent(depth + 1)
		} else if i > 0 {
			e.sb.WriteString(e.cfg.Separator)
		}
		if e.cfg.EnumerateArrays {
			fmt.Fprintf(&e.sb, "/*[%d]*/", i)
		}
		if err := e.encodeReflect(rv.Index(i), depth+1); err != nil {
			return err
		}
		if !compact || i < n-1 {
			e.sb.WriteByte(',')
		}
	}
	if !compact {
		e.sb.WriteString(e.cfg.NewLine)
		e.indent(depth)
	}
	e.sb.WriteByte(close)
	return nil
}

func (e *Encoder) encodeReflectMap(rv reflect.Value, depth int) error {
	keys := rv.MapKeys()
	e.sb.WriteByte('{')
	compact := e.cfg.CompactMaps || len(keys) == 0
	for i, k := range keys {
		if !compact {
			e.sb.WriteString(e.cfg.NewLine)
			e.indent(depth + 1)
		} else if i > 0 {
			e.sb.WriteString(e.cfg.Separator)
		}
		if err := e.encodeReflect(k, depth+1); err != nil {
			return err
		}
		e.sb.WriteString(": ")
		if err := e.encodeReflect(rv.MapIndex(k), depth+1); err != nil {
			return err
		}
		if !compact || i < len(keys)-1 {
			e.sb.WriteByte(',')
		}
	}
	if !compact {
		e.sb.WriteString(e.cfg.NewLine)
		e.indent(depth)
	}
	e.sb.WriteByte('}')
	return nil
}

func (e *Encoder) encodeReflectStruct(rv reflect.Value, depth int) error {
	t := rv.Type()
	if hasMarker(t, enumIface) {
		return e.encodeReflectEnum(rv, depth)
	}
	name := ""
	if e.cfg.StructNames {
		name = reflectName(rv)
	}
	fields := ronFields(t)
	isTuple := hasMarker(t, tupleIface) || (len(fields) == 1 && !hasMarker(t, namedIface))
	e.sb.WriteString(name)
	if len(fields) == 0 {
		if name == "" {
			e.sb.WriteString("()")
		}
		return nil
	}
	e.sb.WriteByte('(')
	compact := e.cfg.CompactStructs
	for i, f := range fields {
		fv := rv.Field(f.index)
		if !compact {
			e.sb.WriteString(e.cfg.NewLine)
			e.indent(depth + 1)
		} else if i > 0 {
			e.sb.WriteString(e.cfg.Separator)
		}
		if !isTuple {
			e.sb.WriteString(f.name)
			e.sb.WriteString(": ")
		}
		if err := e.encodeReflect(fv, depth+1); err != nil {
			return err
		}
		if !compact || i < len(fields)-1 {
			e.sb.WriteByte(',')
		}
	}
	if !compact {
		e.sb.WriteString(e.cfg.NewLine)
		e.indent(depth)
	}
	e.sb.WriteByte(')')
	return nil
}

func (e *Encoder) encodeReflectEnum(rv reflect.Value, depth int) error {
	fields := ronEnumFields(rv.Type())
	for _, f := range fields {
		fv := rv.Field(f.index)
		switch f.shape {
		case value.ShapeUnit:
			if fv.Bool() {
				e.sb.WriteString(f.name)
				return nil
			}
		default:
			if fv.IsNil() {
				continue
			}
			e.sb.WriteString(f.name)
			payload := fv.Elem()
			if f.shape == value.ShapeTuple {
				return e.encodeTuplePayload(payload, depth)
			}
			return e.encodeNamedPayload(payload, depth)
		}
	}
	return fmt.Errorf("ron: no active variant set on %s", rv.Type())
}

func (e *Encoder) encodeTuplePayload(rv reflect.Value, depth int) error {
	fields := ronFields(rv.Type())
	e.sb.WriteByte('(')
	compact := e.cfg.CompactStructs || len(fields) == 0
	for i, f := range fields {
		if !compact {
			e.sb.WriteString(e.cfg.NewLine)
			e.indent(depth + 1)
		} else if i > 0 {
			e.sb.WriteString(e.cfg.Separator)
		}
		if err := e.encodeReflect(rv.Field(f.index), depth+1); err != nil {
			return err
		}
		if !compact || i < len(fields)-1 {
			e.sb.WriteByte(',')
		}
	}
	if !compact {
		e.sb.WriteString(e.cfg.NewLine)
		e.indent(depth)
	}
	e.sb.WriteByte(')')
	return nil
}

func (e *Encoder) encodeNamedPayload(rv reflect.Value, depth int) error {
	fields := ronFields(rv.Type())
	e.sb.WriteByte('(')
	compact := e.cfg.CompactStructs || len(fields) == 0
	for i, f := range fields {
		if !compact {
			e.sb.WriteString(e.cfg.NewLine)
			e.indent(depth + 1)
		} else if i > 0 {
			e.sb.WriteString(e.cfg.Separator)
		}
		e.sb.WriteString(f.name)
		e.sb.WriteString(": ")
		if err := e.encodeReflect(rv.Field(f.index), depth+1); err != nil {
			return err
		}
		if !compact || i < len(fields)-1 {
			e.sb.WriteByte(',')
		}
	}
	if !compact {
		e.sb.WriteString(e.cfg.NewLine)
		e.indent(depth)
	}
	e.sb.WriteByte(')')
	return nil
}

func reflectName(rv reflect.Value) string {
	if n, ok := reflect.New(rv.Type()).Interface().(interface{ RonName() string }); ok {
		return n.RonName()
	}
	return rv.Type().Name()
}
