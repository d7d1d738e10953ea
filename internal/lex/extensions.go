package lex

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/ronlang/ron/internal/cursor"
)

// Extensions is a bitset over the closed enumeration of RON extension
// flags, a small explicit bit-flag state in place of a map[string]bool.
type Extensions uint8

const (
	UnwrapNewtypes Extensions = 1 << iota
	ImplicitSome
	UnwrapVariantNewtypes
	ExplicitStructNames
	DeprecatedBase64ByteString
	ImplicitOutmostStruct
	EnumRepr
)

var extensionNames = map[string]Extensions{
	"unwrap_newtypes":               UnwrapNewtypes,
	"implicit_some":                 ImplicitSome,
	"unwrap_variant_newtypes":       UnwrapVariantNewtypes,
	"explicit_struct_names":        ExplicitStructNames,
	"deprecated_base64_byte_string": DeprecatedBase64ByteString,
	"implicit_outmost_struct":       ImplicitOutmostStruct,
	"enum_repr":                     EnumRepr,
}

// Has reports whether every flag in want is set.
func (e Extensions) Has(want Extensions) bool { return e&want == want }

// ByName looks up a single named extension flag.
func ByName(name string) (Extensions, bool) {
	e, ok := extensionNames[name]
	return e, ok
}

var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)

// ParseHeaders consumes zero or more `#![enable(name, name, ...)]`
// headers from the front of the cursor: a dedicated loop run once,
// ahead of the main value parse. It returns the merged extension set
// (ORed with defaults) and leaves the cursor positioned at the first
// byte of the document value.
func ParseHeaders(c *cursor.Cursor, defaults Extensions) (Extensions, error) {
	set := defaults
	for {
		if _, ok := c.SkipWsAndComments(); !ok {
			return 0, NewError(c.Bytes(), c.Offset(), KindSyntax, "unterminated block comment")
		}
		if !c.HasPrefix("#!") {
			return set, nil
		}
		headerStart := c.Offset()
		c.Advance(2)
		if !expectByte(c, '[') {
			return 0, NewError(c.Bytes(), c.Offset(), KindSyntax, "expected '[' after '#!'")
		}
		skipInlineWS(c)
		if !c.ConsumePrefix("enable") {
			return 0, NewError(c.Bytes(), c.Offset(), KindSyntax, "expected 'enable'")
		}
		skipInlineWS(c)
		if !expectByte(c, '(') {
			return 0, NewError(c.Bytes(), c.Offset(), KindSyntax, "expected '(' after 'enable'")
		}
		for {
			skipInlineWS(c)
			if c.ConsumePrefix(")") {
				break
			}
			name := identRE.Find(c.Bytes()[c.Offset():])
			if name == nil {
				return 0, NewError(c.Bytes(), c.Offset(), KindSyntax, "expected extension name")
			}
			flag, ok := ByName(string(name))
			if !ok {
				return 0, NewError(c.Bytes(), c.Offset(), KindUnknownExtension, "unknown extension %q", name)
			}
			set |= flag
			c.Advance(len(name))
			skipInlineWS(c)
			if c.ConsumePrefix(",") {
				continue
			}
			if c.ConsumePrefix(")") {
				break
			}
			return 0, NewError(c.Bytes(), c.Offset(), KindSyntax, "expected ',' or ')' in extension list")
		}
		skipInlineWS(c)
		if !expectByte(c, ']') {
			return 0, NewError(c.Bytes(), c.Offset(), KindSyntax, "expected ']' to close extension header")
		}
		_ = headerStart
	}
}

func expectByte(c *cursor.Cursor, b byte) bool {
	got, ok := c.PeekByte()
	if !ok || got != b {
		return false
	}
	c.Advance(1)
	return true
}

// skipInlineWS skips whitespace and comments within a header without
// treating a second header as document content.
func skipInlineWS(c *cursor.Cursor) {
	c.SkipWsAndComments()
}

// Names returns the canonical names of every flag set in e, in the
// fixed order the flags are declared, for stable diagnostics.
func (e Extensions) Names() []string {
	order := []string{
		"unwrap_newtypes", "implicit_some", "unwrap_variant_newtypes",
		"explicit_struct_names", "deprecated_base64_byte_string",
		"implicit_outmost_struct", "enum_repr",
	}
	var out []string
	for _, n := range order {
		if e.Has(extensionNames[n]) {
			out = append(out, n)
		}
	}
	return out
}

func (e Extensions) String() string {
	names := e.Names()
	if len(names) == 0 {
		return "()"
	}
	return "(" + strings.Join(names, ", ") + ")"
}

// Header renders the `#![enable(...)]` text for a non-empty extension
// set, or "" when e is empty.
func (e Extensions) Header() string {
	names := e.Names()
	if len(names) == 0 {
		return ""
	}
	var b bytes.Buffer
	b.WriteString("#![enable(")
	b.WriteString(strings.Join(names, ", "))
	b.WriteString(")]\n")
	return b.String()
}
