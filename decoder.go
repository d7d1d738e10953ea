package ron

import (
	"encoding/base64"
	"errors"

	"github.com/ronlang/ron/internal/cursor"
	"github.com/ronlang/ron/internal/lex"
	"github.com/ronlang/ron/value"
)

// DefaultDepthLimit bounds recursive-descent nesting: exceeding it
// raises DepthLimitExceeded instead of risking a native stack overflow
// on adversarial input.
const DefaultDepthLimit = 256

// Decoder is the typed deserializer: it consumes tokens from
// internal/lex under the frozen internal/lex.Extensions set and drives
// an external Visitor, resolving ambiguous bodies (is this a tuple, a
// named struct, or a newtype wrapper?) against the shape the Visitor
// declares it expects.
type Decoder struct {
	tz         *lex.Tokenizer
	ext        lex.Extensions
	depthLimit int
}

// NewDecoder builds a Decoder over data, parsing and freezing any
// leading `#![enable(...)]` headers merged with defaultExt.
func NewDecoder(data []byte, defaultExt lex.Extensions) (*Decoder, error) {
	c := cursor.New(data)
	ext, err := lex.ParseHeaders(c, defaultExt)
	if err != nil {
		return nil, err
	}
	return &Decoder{tz: lex.New(c), ext: ext, depthLimit: DefaultDepthLimit}, nil
}

// Extensions returns the frozen extension set in effect for this decode.
func (d *Decoder) Extensions() lex.Extensions { return d.ext }

// SetDepthLimit overrides DefaultDepthLimit.
func (d *Decoder) SetDepthLimit(n int) { d.depthLimit = n }

// DecodeValue drives v from the document's single top-level value.
// With implicit_outmost_struct enabled and a struct-shaped target, the
// document is the bare field list of that struct, outer parentheses
// omitted.
func (d *Decoder) DecodeValue(v Visitor) error {
	if d.ext.Has(lex.ImplicitOutmostStruct) && v.Expect() == ExpectStruct {
		sv, err := v.BeginStruct(v.Name())
		if err != nil {
			return err
		}
		return d.decodeStructFieldsToEOF(sv, 0)
	}
	if err := d.decode(v, 0); err != nil {
		return err
	}
	return d.finishDocument()
}

// finishDocument verifies nothing but whitespace and comments follows
// the terminal value, going through the tokenizer (not the raw cursor)
// so a token peeked but never consumed by the final production still
// counts as trailing input.
func (d *Decoder) finishDocument() error {
	tok, err := d.tz.Peek()
	if err != nil {
		if d.tz.Cursor().HasPrefix("#!") {
			return d.errf(lex.KindExtensionsAfterValue, "extension headers must precede the document value")
		}
		return err
	}
	if tok.Kind != lex.TokEOF {
		return d.errAt(tok, lex.KindTrailingCharacters, "unexpected trailing characters after document value")
	}
	return nil
}

// DecodeAny parses the document's single top-level value generically,
// with no static Go type to resolve ambiguity, producing a value.Value.
// With implicit_outmost_struct enabled the document is a bare field
// list, recorded as an anonymous named body.
func (d *Decoder) DecodeAny() (value.Value, error) {
	var val value.Value
	var err error
	if d.ext.Has(lex.ImplicitOutmostStruct) {
		root := newValueVisitor(func(v value.Value) { val = v })
		var sv StructVisitor
		sv, err = root.BeginStruct("")
		if err == nil {
			err = d.decodeStructFieldsToEOF(sv, 0)
		}
	} else {
		val, err = parseAny(d, 0)
	}
	if err != nil {
		return value.Value{}, err
	}
	if err := d.finishDocument(); err != nil {
		return value.Value{}, err
	}
	return val, nil
}

func (d *Decoder) errf(kind lex.Kind, reason string, args ...any) error {
	return lex.NewError(d.tz.Cursor().Bytes(), d.tz.Cursor().Offset(), kind, reason, args...)
}

func (d *Decoder) errAt(tok lex.Token, kind lex.Kind, reason string, args ...any) error {
	return lex.NewError(d.tz.Cursor().Bytes(), tok.Offset, kind, reason, args...)
}

// endStruct calls sv.End(), attaching tok's position to a missing-field
// failure the same way Field/SetEntry's sentinel errors are attached
// theirs: sv itself has no position to report.
func (d *Decoder) endStruct(sv StructVisitor, tok lex.Token) error {
	err := sv.End()
	var mfe *missingFieldError
	if errors.As(err, &mfe) {
		return d.errAt(tok, lex.KindMissingField, "missing required field %q", mfe.field)
	}
	return err
}

func (d *Decoder) mismatch(tok lex.Token, expected string) error {
	e := d.errAt(tok, lex.KindTypeMismatch, "expected %s, found %s", expected, tok.Kind)
	if ue, ok := e.(*lex.Error); ok {
		ue.Expected = expected
		ue.Found = tok.Kind.String()
	}
	return e
}

func (d *Decoder) depthErr(tok lex.Token) error {
	return d.errAt(tok, lex.KindDepthLimitExceeded, "nesting exceeds depth limit of %d", d.depthLimit)
}

func (d *Decoder) expectPunct(k lex.TokenKind) (lex.Token, error) {
	tok, err := d.tz.Next()
	if err != nil {
		return tok, err
	}
	if tok.Kind != k {
		return tok, d.mismatch(tok, k.String())
	}
	return tok, nil
}

// decode is the central dispatch of component D: it reads v.Expect()
// and parses exactly the production that expectation calls for.
func (d *Decoder) decode(v Visitor, depth int) error {
	if depth > d.depthLimit {
		tok, _ := d.tz.Peek()
		return d.depthErr(tok)
	}
	switch v.Expect() {
	case ExpectAny:
		return d.decodeAny(v, depth)
	case ExpectBool:
		tok, err := d.tz.Next()
		if err != nil {
			return err
		}
		switch tok.Kind {
		case lex.TokTrue:
			return v.Bool(true)
		case lex.TokFalse:
			return v.Bool(false)
		default:
			return d.mismatch(tok, "bool")
		}
	case ExpectInt, ExpectUint, ExpectFloat:
		return d.decodeNumber(v)
	case ExpectChar:
		tok, err := d.tz.Next()
		if err != nil {
			return err
		}
		if tok.Kind != lex.TokChar {
			return d.mismatch(tok, "char")
		}
		return v.Char(tok.Char)
	case ExpectStr:
		tok, err := d.tz.Next()
		if err != nil {
			return err
		}
		if tok.Kind != lex.TokString {
			return d.mismatch(tok, "string")
		}
		return v.Str(tok.Str)
	case ExpectBytes:
		return d.decodeBytes(v)
	case ExpectOption:
		return d.decodeOption(v, depth)
	case ExpectUnit:
		if _, err := d.expectPunct(lex.TokLParen); err != nil {
			return err
		}
		if _, err := d.expectPunct(lex.TokRParen); err != nil {
			return err
		}
		return v.Unit()
	case ExpectSeq:
		if _, err := d.expectPunct(lex.TokLBracket); err != nil {
			return err
		}
		sv, err := v.BeginSeq()
		if err != nil {
			return err
		}
		return d.decodeSeqBody(sv, lex.TokRBracket, depth)
	case ExpectTuple:
		name, hadParen, err := d.peekOptionalNameThenParen()
		if err != nil {
			return err
		}
		if err := d.checkStructName("", name, hadParen); err != nil {
			return err
		}
		sv, err := v.BeginSeq()
		if err != nil {
			return err
		}
		return d.decodeSeqBody(sv, lex.TokRParen, depth)
	case ExpectMap:
		if _, err := d.expectPunct(lex.TokLBrace); err != nil {
			return err
		}
		mv, err := v.BeginMap()
		if err != nil {
			return err
		}
		return d.decodeMapBody(mv, depth)
	case ExpectUnitStruct:
		return d.decodeUnitStruct(v)
	case ExpectNewtypeStruct:
		return d.decodeNewtypeStruct(v, depth)
	case ExpectTupleStruct:
		return d.decodeTupleStructExpect(v, depth)
	case ExpectStruct:
		return d.decodeStructExpect(v, depth)
	case ExpectEnum:
		return d.decodeEnum(v, depth)
	default:
		tok, _ := d.tz.Peek()
		return d.mismatch(tok, "value")
	}
}

func (d *Decoder) decodeNumber(v Visitor) error {
	tok, err := d.tz.Next()
	if err != nil {
		return err
	}
	switch exp := v.Expect(); exp {
	case ExpectInt:
		switch tok.Kind {
		case lex.TokInt:
			return v.Int(tok.Int)
		case lex.TokUint:
			if tok.Uint > 1<<63-1 {
				return d.errAt(tok, lex.KindNumberOutOfRange, "unsigned literal does not fit in a signed integer")
			}
			return v.Int(int64(tok.Uint))
		default:
			return d.mismatch(tok, "integer")
		}
	case ExpectUint:
		switch tok.Kind {
		case lex.TokUint:
			return v.Uint(tok.Uint)
		case lex.TokInt:
			if tok.Int < 0 {
				return d.errAt(tok, lex.KindNumberOutOfRange, "negative literal does not fit in an unsigned integer")
			}
			return v.Uint(uint64(tok.Int))
		default:
			return d.mismatch(tok, "unsigned integer")
		}
	case ExpectFloat:
		switch tok.Kind {
		case lex.TokFloat:
			return v.Float(tok.Float)
		case lex.TokInt:
			return v.Float(float64(tok.Int))
		case lex.TokUint:
			return v.Float(float64(tok.Uint))
		default:
			return d.mismatch(tok, "float")
		}
	default:
		return d.mismatch(tok, "number")
	}
}

func (d *Decoder) decodeBytes(v Visitor) error {
	tok, err := d.tz.Next()
	if err != nil {
		return err
	}
	if tok.Kind == lex.TokByteString {
		return v.Bytes(tok.Bytes)
	}
	if tok.Kind == lex.TokString && d.ext.Has(lex.DeprecatedBase64ByteString) {
		b, err := base64.StdEncoding.DecodeString(tok.Str)
		if err != nil {
			return d.errAt(tok, lex.KindBase64, "invalid base64 byte string: %v", err)
		}
		return v.Bytes(b)
	}
	return d.mismatch(tok, "byte string")
}

// decodeOption implements disambiguation rule 3 (and, by recursion
// through nested Option expectations, rule 7's implicit_some ladder):
// an explicit Some(...)/None is always honored; otherwise, with
// implicit_some enabled, the current token is re-driven through an
// implicitly inserted Some without being consumed.
func (d *Decoder) decodeOption(v Visitor, depth int) error {
	tok, err := d.tz.Peek()
	if err != nil {
		return err
	}
	switch tok.Kind {
	case lex.TokNone:
		d.tz.Next()
		return v.None()
	case lex.TokSome:
		d.tz.Next()
		if _, err := d.expectPunct(lex.TokLParen); err != nil {
			return err
		}
		inner, err := v.Some()
		if err != nil {
			return err
		}
		if err := d.decode(inner, depth+1); err != nil {
			return err
		}
		_, err = d.expectPunct(lex.TokRParen)
		return err
	default:
		if !d.ext.Has(lex.ImplicitSome) {
			return d.mismatch(tok, "option (None or Some(..))")
		}
		inner, err := v.Some()
		if err != nil {
			return err
		}
		return d.decode(inner, depth+1)
	}
}

func (d *Decoder) decodeSeqBody(sv SeqVisitor, closer lex.TokenKind, depth int) error {
	i := 0
	for {
		tok, err := d.tz.Peek()
		if err != nil {
			return err
		}
		if tok.Kind == closer {
			d.tz.Next()
			break
		}
		ev, err := sv.Elem(i)
		if err != nil {
			return err
		}
		if err := d.decode(ev, depth+1); err != nil {
			return err
		}
		i++
		tok, err = d.tz.Peek()
		if err != nil {
			return err
		}
		switch tok.Kind {
		case lex.TokComma:
			d.tz.Next()
		case closer:
			d.tz.Next()
			return sv.End(i)
		default:
			return d.mismatch(tok, "',' or "+closer.String())
		}
	}
	return sv.End(i)
}

func (d *Decoder) decodeMapBody(mv MapVisitor, depth int) error {
	for {
		tok, err := d.tz.Peek()
		if err != nil {
			return err
		}
		if tok.Kind == lex.TokRBrace {
			d.tz.Next()
			break
		}
		keyTok := tok
		key, err := d.decodeAnyValue(depth + 1)
		if err != nil {
			return err
		}
		if _, err := d.expectPunct(lex.TokColon); err != nil {
			return err
		}
		vv, err := mv.SetEntry(key)
		if err != nil {
			if errors.Is(err, errDuplicateMapKey) {
				return d.errAt(keyTok, lex.KindDuplicateMapKey, "duplicate map key")
			}
			return d.errAt(keyTok, lex.KindTypeMismatch, "invalid map key: %v", err)
		}
		if err := d.decode(vv, depth+1); err != nil {
			return err
		}
		tok, err = d.tz.Peek()
		if err != nil {
			return err
		}
		switch tok.Kind {
		case lex.TokComma:
			d.tz.Next()
		case lex.TokRBrace:
			d.tz.Next()
			return mv.End()
		default:
			return d.mismatch(tok, "',' or '}'")
		}
	}
	return mv.End()
}

// checkStructName enforces explicit_struct_names: when the extension
// is on, a name is mandatory and must match; when it is off, any given
// name is decorative and discarded.
func (d *Decoder) checkStructName(expected, found string, hadName bool) error {
	if !d.ext.Has(lex.ExplicitStructNames) {
		return nil
	}
	if !hadName {
		return d.errf(lex.KindExpectedStructName, "explicit_struct_names requires a struct name here")
	}
	if expected != "" && found != expected {
		return d.errf(lex.KindWrongStructName, "expected struct name %q, found %q", expected, found)
	}
	return nil
}

// peekOptionalNameThenParen consumes an optional leading identifier
// (decoration for struct_names) followed by the mandatory opening '(',
// reporting whether a name was present.
func (d *Decoder) peekOptionalNameThenParen() (name string, hadName bool, err error) {
	tok, err := d.tz.Peek()
	if err != nil {
		return "", false, err
	}
	if tok.Kind == lex.TokIdent {
		d.tz.Next()
		name, hadName = tok.Ident, true
	}
	if _, err := d.expectPunct(lex.TokLParen); err != nil {
		return name, hadName, err
	}
	return name, hadName, nil
}

func (d *Decoder) decodeUnitStruct(v Visitor) error {
	tok, err := d.tz.Peek()
	if err != nil {
		return err
	}
	if tok.Kind == lex.TokLParen {
		d.tz.Next()
		if err := d.checkStructName(v.Name(), "", false); err != nil {
			return err
		}
		if _, err := d.expectPunct(lex.TokRParen); err != nil {
			return err
		}
		return v.UnitStruct(v.Name())
	}
	if tok.Kind != lex.TokIdent {
		return d.mismatch(tok, "unit struct")
	}
	d.tz.Next()
	if err := d.checkStructName(v.Name(), tok.Ident, true); err != nil {
		return err
	}
	if pk, _ := d.tz.Peek(); pk.Kind == lex.TokLParen {
		d.tz.Next()
		if _, err := d.expectPunct(lex.TokRParen); err != nil {
			return err
		}
	}
	return v.UnitStruct(v.Name())
}

// decodeNewtypeStruct implements disambiguation rule 4.
func (d *Decoder) decodeNewtypeStruct(v Visitor, depth int) error {
	tok, err := d.tz.Peek()
	if err != nil {
		return err
	}
	if tok.Kind == lex.TokIdent || tok.Kind == lex.TokLParen {
		name, hadName, err := d.peekOptionalNameThenParen()
		if err != nil {
			return err
		}
		if err := d.checkStructName(v.Name(), name, hadName); err != nil {
			return err
		}
		inner, err := v.BeginNewtypeStruct(v.Name())
		if err != nil {
			return err
		}
		if err := d.decode(inner, depth+1); err != nil {
			return err
		}
		_, err = d.expectPunct(lex.TokRParen)
		return err
	}
	if !d.ext.Has(lex.UnwrapNewtypes) {
		return d.mismatch(tok, "newtype struct")
	}
	inner, err := v.BeginNewtypeStruct(v.Name())
	if err != nil {
		return err
	}
	return d.decode(inner, depth+1)
}

func (d *Decoder) decodeTupleStructExpect(v Visitor, depth int) error {
	name, hadName, err := d.peekOptionalNameThenParen()
	if err != nil {
		return err
	}
	if err := d.checkStructName(v.Name(), name, hadName); err != nil {
		return err
	}
	sv, err := v.BeginTupleStruct(v.Name())
	if err != nil {
		return err
	}
	return d.decodeSeqBody(sv, lex.TokRParen, depth)
}

func (d *Decoder) decodeStructExpect(v Visitor, depth int) error {
	tok, err := d.tz.Peek()
	if err != nil {
		return err
	}
	switch tok.Kind {
	case lex.TokLParen:
		d.tz.Next()
		if err := d.checkStructName(v.Name(), "", false); err != nil {
			return err
		}
		sv, err := v.BeginStruct(v.Name())
		if err != nil {
			return err
		}
		return d.decodeStructFields(sv, depth)
	case lex.TokIdent:
		d.tz.Next()
		if err := d.checkStructName(v.Name(), tok.Ident, true); err != nil {
			return err
		}
		pk, _ := d.tz.Peek()
		if pk.Kind != lex.TokLParen {
			sv, err := v.BeginStruct(v.Name())
			if err != nil {
				return err
			}
			return d.endStruct(sv, tok)
		}
		d.tz.Next()
		sv, err := v.BeginStruct(v.Name())
		if err != nil {
			return err
		}
		return d.decodeStructFields(sv, depth)
	default:
		return d.mismatch(tok, "struct")
	}
}

func (d *Decoder) decodeStructFields(sv StructVisitor, depth int) error {
	for {
		tok, err := d.tz.Peek()
		if err != nil {
			return err
		}
		if tok.Kind == lex.TokRParen {
			closeTok := tok
			d.tz.Next()
			return d.endStruct(sv, closeTok)
		}
		if tok.Kind != lex.TokIdent {
			return d.mismatch(tok, "field name")
		}
		d.tz.Next()
		if _, err := d.expectPunct(lex.TokColon); err != nil {
			return err
		}
		fv, err := sv.Field(tok.Ident)
		if err != nil {
			if errors.Is(err, errDuplicateField) {
				return d.errAt(tok, lex.KindDuplicateField, "duplicate field %q", tok.Ident)
			}
			return d.errAt(tok, lex.KindUnknownField, "unknown field %q", tok.Ident)
		}
		if err := d.decode(fv, depth+1); err != nil {
			return err
		}
		tok, err = d.tz.Peek()
		if err != nil {
			return err
		}
		switch tok.Kind {
		case lex.TokComma:
			d.tz.Next()
		case lex.TokRParen:
			closeTok := tok
			d.tz.Next()
			return d.endStruct(sv, closeTok)
		case lex.TokIdent:
			// a field name immediately after a value with no
			// intervening comma, e.g. "(a: 1 b: 2)": the missing
			// separator itself is the syntax error, not a type
			// mismatch on what follows it.
			return d.errAt(tok, lex.KindSyntax, "expected ',' or ')' before field %q", tok.Ident)
		default:
			return d.mismatch(tok, "',' or ')'")
		}
	}
}

// decodeStructFieldsToEOF parses a top-level field list with no
// enclosing parentheses, terminated by end of input
// (implicit_outmost_struct).
func (d *Decoder) decodeStructFieldsToEOF(sv StructVisitor, depth int) error {
	for {
		tok, err := d.tz.Peek()
		if err != nil {
			return err
		}
		if tok.Kind == lex.TokEOF {
			return d.endStruct(sv, tok)
		}
		if tok.Kind != lex.TokIdent {
			return d.mismatch(tok, "field name")
		}
		d.tz.Next()
		if _, err := d.expectPunct(lex.TokColon); err != nil {
			return err
		}
		fv, err := sv.Field(tok.Ident)
		if err != nil {
			if errors.Is(err, errDuplicateField) {
				return d.errAt(tok, lex.KindDuplicateField, "duplicate field %q", tok.Ident)
			}
			return d.errAt(tok, lex.KindUnknownField, "unknown field %q", tok.Ident)
		}
		if err := d.decode(fv, depth+1); err != nil {
			return err
		}
		tok, err = d.tz.Peek()
		if err != nil {
			return err
		}
		switch tok.Kind {
		case lex.TokComma:
			d.tz.Next()
		case lex.TokEOF:
			return d.endStruct(sv, tok)
		case lex.TokIdent:
			return d.errAt(tok, lex.KindSyntax, "expected ',' or end of document before field %q", tok.Ident)
		default:
			return d.mismatch(tok, "',' or end of document")
		}
	}
}

// decodeEnum implements disambiguation rules 2 and 5. The variant
// shape is always taken from the target type (via EnumVisitor.Expect),
// never guessed from lookahead: RON's grammar for a variant body is
// identical to a struct/tuple-struct body, so once the identifier is
// resolved to a known variant, the rest is exactly decodeStructFields
// / decodeSeqBody applied to that variant's own field list.
func (d *Decoder) decodeEnum(v Visitor, depth int) error {
	tok, err := d.tz.Next()
	if err != nil {
		return err
	}
	if tok.Kind != lex.TokIdent {
		return d.mismatch(tok, "enum variant")
	}
	variants := v.Variants()
	known := false
	for _, name := range variants {
		if name == tok.Ident {
			known = true
			break
		}
	}
	if !known {
		return d.errAt(tok, lex.KindUnknownVariant, "unknown variant %q (expected one of %v)", tok.Ident, variants)
	}
	ev, err := v.BeginEnum(v.Name(), tok.Ident)
	if err != nil {
		return d.errAt(tok, lex.KindUnknownVariant, "unknown variant %q (expected one of %v)", tok.Ident, variants)
	}
	switch ev.Expect() {
	case value.ShapeUnit:
		return ev.Unit()
	case value.ShapeTuple:
		if _, err := d.expectPunct(lex.TokLParen); err != nil {
			return err
		}
		sv, err := ev.Tuple()
		if err != nil {
			return err
		}
		if ev.Arity() == 1 && d.ext.Has(lex.UnwrapVariantNewtypes) {
			return d.decodeUnwrappedNewtypeVariant(sv, depth)
		}
		return d.decodeSeqBody(sv, lex.TokRParen, depth)
	case value.ShapeNamed:
		if _, err := d.expectPunct(lex.TokLParen); err != nil {
			return err
		}
		sv, err := ev.Named()
		if err != nil {
			return err
		}
		return d.decodeStructFields(sv, depth)
	default:
		return d.errAt(tok, lex.KindTypeMismatch, "unsupported variant shape")
	}
}

// decodeUnwrappedNewtypeVariant implements disambiguation rule 5: the
// single inner value's own opening delimiter is skipped, reusing the
// variant's own '(' as if it belonged to the inner type directly. This
// makes the old two-layer explicit form an error for free: if
// the source still writes the inner type's own leading identifier and
// delimiter, that text is parsed as if it were the inner value's
// content and fails the inner production instead.
func (d *Decoder) decodeUnwrappedNewtypeVariant(sv SeqVisitor, depth int) error {
	inner, err := sv.Elem(0)
	if err != nil {
		return err
	}
	if err := d.decodeBodyDirect(inner, depth+1); err != nil {
		return err
	}
	if err := sv.End(1); err != nil {
		return err
	}
	_, err = d.expectPunct(lex.TokRParen)
	return err
}

// decodeBodyDirect decodes inner assuming any opening delimiter its
// Expect() production would normally consume has already been consumed
// by an enclosing construct (used only for the unwrap_variant_newtypes
// mandatory-unwrap case above).
func (d *Decoder) decodeBodyDirect(inner Visitor, depth int) error {
	switch inner.Expect() {
	case ExpectStruct:
		sv, err := inner.BeginStruct(inner.Name())
		if err != nil {
			return err
		}
		return d.decodeStructFieldsNoClose(sv, depth)
	case ExpectTupleStruct:
		sv, err := inner.BeginTupleStruct(inner.Name())
		if err != nil {
			return err
		}
		return d.decodeSeqBodyNoClose(sv, depth)
	case ExpectSeq, ExpectTuple:
		sv, err := inner.BeginSeq()
		if err != nil {
			return err
		}
		return d.decodeSeqBodyNoClose(sv, depth)
	case ExpectMap:
		mv, err := inner.BeginMap()
		if err != nil {
			return err
		}
		return d.decodeMapBodyNoClose(mv, depth)
	default:
		return d.decode(inner, depth)
	}
}

// The NoClose variants parse a body's elements up to (but not
// including) its closing delimiter, leaving that delimiter for the
// enclosing decodeUnwrappedNewtypeVariant to consume as the variant's
// own ')'.
func (d *Decoder) decodeStructFieldsNoClose(sv StructVisitor, depth int) error {
	for {
		tok, err := d.tz.Peek()
		if err != nil {
			return err
		}
		if tok.Kind == lex.TokRParen {
			return d.endStruct(sv, tok)
		}
		if tok.Kind != lex.TokIdent {
			return d.mismatch(tok, "field name")
		}
		d.tz.Next()
		if _, err := d.expectPunct(lex.TokColon); err != nil {
			return err
		}
		fv, err := sv.Field(tok.Ident)
		if err != nil {
			if errors.Is(err, errDuplicateField) {
				return d.errAt(tok, lex.KindDuplicateField, "duplicate field %q", tok.Ident)
			}
			return d.errAt(tok, lex.KindUnknownField, "unknown field %q", tok.Ident)
		}
		if err := d.decode(fv, depth+1); err != nil {
			return err
		}
		tok, err = d.tz.Peek()
		if err != nil {
			return err
		}
		if tok.Kind == lex.TokComma {
			d.tz.Next()
			continue
		}
		if tok.Kind == lex.TokRParen {
			return d.endStruct(sv, tok)
		}
		if tok.Kind == lex.TokIdent {
			return d.errAt(tok, lex.KindSyntax, "expected ',' or ')' before field %q", tok.Ident)
		}
		return d.mismatch(tok, "',' or ')'")
	}
}

func (d *Decoder) decodeSeqBodyNoClose(sv SeqVisitor, depth int) error {
	i := 0
	for {
		tok, err := d.tz.Peek()
		if err != nil {
			return err
		}
		if tok.Kind == lex.TokRParen {
			return sv.End(i)
		}
		ev, err := sv.Elem(i)
		if err != nil {
			return err
		}
		if err := d.decode(ev, depth+1); err != nil {
			return err
		}
		i++
		tok, err = d.tz.Peek()
		if err != nil {
			return err
		}
		if tok.Kind == lex.TokComma {
			d.tz.Next()
			continue
		}
		if tok.Kind == lex.TokRParen {
			return sv.End(i)
		}
		return d.mismatch(tok, "',' or ')'")
	}
}

func (d *Decoder) decodeMapBodyNoClose(mv MapVisitor, depth int) error {
	for {
		tok, err := d.tz.Peek()
		if err != nil {
			return err
		}
		if tok.Kind == lex.TokRParen {
			return mv.End()
		}
		keyTok := tok
		key, err := d.decodeAnyValue(depth + 1)
		if err != nil {
			return err
		}
		if _, err := d.expectPunct(lex.TokColon); err != nil {
			return err
		}
		vv, err := mv.SetEntry(key)
		if err != nil {
			if errors.Is(err, errDuplicateMapKey) {
				return d.errAt(keyTok, lex.KindDuplicateMapKey, "duplicate map key")
			}
			return d.errAt(keyTok, lex.KindTypeMismatch, "invalid map key: %v", err)
		}
		if err := d.decode(vv, depth+1); err != nil {
			return err
		}
		tok, err = d.tz.Peek()
		if err != nil {
			return err
		}
		if tok.Kind == lex.TokComma {
			d.tz.Next()
			continue
		}
		if tok.Kind == lex.TokRParen {
			return mv.End()
		}
		return d.mismatch(tok, "',' or ')'")
	}
}

// decodeAny parses one value using syntax alone, with no static type
// to resolve ambiguity, and drives v's primitive/Begin* methods
// directly (including the anonymous-named-vs-tuple lookahead the
// valueVisitor needs the Checkpoint/Mark/Rewind mechanism for).
// Identifier-headed bodies and bare identifiers always
// go through BeginStruct/BeginTupleStruct/UnitStruct rather than
// BeginEnum: generic parsing cannot tell a struct literal from an enum
// variant apart, and both fold into the same value.Variant shape.
func (d *Decoder) decodeAny(v Visitor, depth int) error {
	tok, err := d.tz.Peek()
	if err != nil {
		return err
	}
	switch tok.Kind {
	case lex.TokTrue:
		d.tz.Next()
		return v.Bool(true)
	case lex.TokFalse:
		d.tz.Next()
		return v.Bool(false)
	case lex.TokInt:
		d.tz.Next()
		return v.Int(tok.Int)
	case lex.TokUint:
		d.tz.Next()
		return v.Uint(tok.Uint)
	case lex.TokFloat:
		d.tz.Next()
		return v.Float(tok.Float)
	case lex.TokChar:
		d.tz.Next()
		return v.Char(tok.Char)
	case lex.TokString:
		d.tz.Next()
		return v.Str(tok.Str)
	case lex.TokByteString:
		d.tz.Next()
		return v.Bytes(tok.Bytes)
	case lex.TokNone:
		d.tz.Next()
		return v.None()
	case lex.TokSome:
		d.tz.Next()
		if _, err := d.expectPunct(lex.TokLParen); err != nil {
			return err
		}
		inner, err := v.Some()
		if err != nil {
			return err
		}
		if err := d.decodeAny(inner, depth+1); err != nil {
			return err
		}
		_, err = d.expectPunct(lex.TokRParen)
		return err
	case lex.TokLBracket:
		d.tz.Next()
		sv, err := v.BeginSeq()
		if err != nil {
			return err
		}
		return d.decodeSeqBody(sv, lex.TokRBracket, depth)
	case lex.TokLBrace:
		d.tz.Next()
		mv, err := v.BeginMap()
		if err != nil {
			return err
		}
		return d.decodeMapBody(mv, depth)
	case lex.TokLParen:
		d.tz.Next()
		return d.decodeAnyParenBody(v, "", depth)
	case lex.TokIdent:
		d.tz.Next()
		name := tok.Ident
		pk, err := d.tz.Peek()
		if err != nil {
			return err
		}
		if pk.Kind != lex.TokLParen {
			return v.UnitStruct(name)
		}
		d.tz.Next()
		return d.decodeAnyParenBody(v, name, depth)
	default:
		return d.mismatch(tok, "value")
	}
}

// decodeAnyParenBody parses the body of a '(' already consumed (bare,
// for an anonymous tuple/unit/named value, or following name for an
// identifier-headed one), disambiguating named-vs-tuple shape with a
// 2-token lookahead.
func (d *Decoder) decodeAnyParenBody(v Visitor, name string, depth int) error {
	tok, err := d.tz.Peek()
	if err != nil {
		return err
	}
	if tok.Kind == lex.TokRParen {
		d.tz.Next()
		if name != "" {
			return v.UnitStruct(name)
		}
		return v.Unit()
	}
	named, err := d.peekIsNamedBody()
	if err != nil {
		return err
	}
	if named {
		sv, err := v.BeginStruct(name)
		if err != nil {
			return err
		}
		return d.decodeStructFields(sv, depth)
	}
	if name != "" {
		sv, err := v.BeginTupleStruct(name)
		if err != nil {
			return err
		}
		return d.decodeSeqBody(sv, lex.TokRParen, depth)
	}
	sv, err := v.BeginSeq()
	if err != nil {
		return err
	}
	return d.decodeSeqBody(sv, lex.TokRParen, depth)
}

// peekIsNamedBody looks two tokens ahead, past an already-consumed '(',
// for the "ident :" pattern that marks a named-field body, without
// consuming anything.
func (d *Decoder) peekIsNamedBody() (bool, error) {
	cp := d.tz.Mark()
	defer d.tz.Rewind(cp)
	tok, err := d.tz.Next()
	if err != nil || tok.Kind != lex.TokIdent {
		return false, nil
	}
	tok2, err := d.tz.Next()
	if err != nil {
		return false, nil
	}
	return tok2.Kind == lex.TokColon, nil
}

// decodeAnyValue parses one value generically into a value.Value,
// used for map keys (which may be of any shape) regardless of what the
// surrounding decode is typed against.
func (d *Decoder) decodeAnyValue(depth int) (value.Value, error) {
	return parseAny(d, depth)
}
