// Package ron implements the RON (Rusty Object Notation) text format:
// a tokenizer, a type-directed decoder driven through the Visitor
// contract, a dynamically-typed Value tree for untyped parsing, and a
// serializer, mirroring the shape of encoding/json's public surface
// while following RON's own grammar and extension set.
package ron

import (
	"reflect"

	"github.com/ronlang/ron/internal/lex"
	"github.com/ronlang/ron/value"
)

// Option configures Unmarshal/ParseValue/Marshal behavior.
type Option func(*options)

type options struct {
	extensions lex.Extensions
	depthLimit int
	pretty     *PrettyConfig
}

func newOptions() *options {
	return &options{depthLimit: DefaultDepthLimit}
}

// WithExtensions sets the default extension set assumed before any
// `#![enable(...)]` header is read; the header's own set is unioned
// with this default, since extensions only ever accumulate, never
// turn off.
func WithExtensions(ext lex.Extensions) Option {
	return func(o *options) { o.extensions = ext }
}

// WithDepthLimit overrides DefaultDepthLimit for one call.
func WithDepthLimit(n int) Option {
	return func(o *options) { o.depthLimit = n }
}

// WithPrettyConfig selects the rendering configuration used by Marshal
// when given this option; without it Marshal uses CompactConfig.
func WithPrettyConfig(cfg PrettyConfig) Option {
	return func(o *options) { o.pretty = &cfg }
}

func applyOptions(opts []Option) *options {
	o := newOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Unmarshal parses RON data into v, which must be a non-nil pointer.
// It is the typed decode entry point, driving v's reflected shape
// through the Visitor contract the same way
// encoding/json's Unmarshal drives its internal decode state machine
// through a settable reflect.Value.
func Unmarshal(data []byte, v any, opts ...Option) error {
	o := applyOptions(opts)
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &UnmarshalError{err: errNonPointer{v}}
	}
	dec, err := NewDecoder(data, o.extensions)
	if err != nil {
		return wrapError(err)
	}
	dec.SetDepthLimit(o.depthLimit)
	if err := dec.DecodeValue(newReflectVisitor(rv.Elem())); err != nil {
		return wrapError(err)
	}
	return nil
}

type errNonPointer struct{ v any }

func (e errNonPointer) Error() string {
	return "ron: Unmarshal requires a non-nil pointer, got " + reflect.TypeOf(e.v).String()
}

// ParseValue parses RON data into a dynamically-typed value.Value tree
// without any static target type, the untyped counterpart to
// Unmarshal (component E driven directly).
func ParseValue(data []byte, opts ...Option) (value.Value, error) {
	o := applyOptions(opts)
	dec, err := NewDecoder(data, o.extensions)
	if err != nil {
		return value.Value{}, wrapError(err)
	}
	dec.SetDepthLimit(o.depthLimit)
	v, err := dec.DecodeAny()
	if err != nil {
		return value.Value{}, wrapError(err)
	}
	return v, nil
}

// Into decodes an already-parsed value.Value tree into v, reusing the
// Visitor contract (driveFromValue) instead of re-tokenizing. Useful
// when a document was first read generically (e.g. to inspect its
// shape) and only later bound to a concrete Go type.
func Into(val value.Value, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &UnmarshalError{err: errNonPointer{v}}
	}
	return driveFromValue(newReflectVisitor(rv.Elem()), val)
}

// Marshal renders v as RON text using CompactConfig, or the
// PrettyConfig supplied via WithPrettyConfig.
func Marshal(v any, opts ...Option) ([]byte, error) {
	o := applyOptions(opts)
	cfg := CompactConfig()
	if o.pretty != nil {
		cfg = *o.pretty
	}
	enc := NewEncoder(cfg)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return []byte(enc.String()), nil
}

// MarshalPretty renders v using cfg, the explicit-config counterpart
// to Marshal(v, WithPrettyConfig(cfg)).
func MarshalPretty(v any, cfg PrettyConfig) ([]byte, error) {
	enc := NewEncoder(cfg)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return []byte(enc.String()), nil
}

// MarshalValue renders a value.Value tree as RON text.
func MarshalValue(val value.Value, opts ...Option) ([]byte, error) {
	o := applyOptions(opts)
	cfg := CompactConfig()
	if o.pretty != nil {
		cfg = *o.pretty
	}
	enc := NewEncoder(cfg)
	if err := enc.EncodeValue(val); err != nil {
		return nil, err
	}
	return []byte(enc.String()), nil
}
