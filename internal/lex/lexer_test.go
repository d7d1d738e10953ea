package lex

import (
	"reflect"
	"testing"

	"github.com/ronlang/ron/internal/cursor"
)

func lexAll(t *testing.T, src string) []Token {
	t.Helper()
	tz := New(cursor.New([]byte(src)))
	var toks []Token
	for {
		tok, err := tz.Next()
		if err != nil {
			t.Fatalf("lexing %q: %v", src, err)
		}
		toks = append(toks, tok)
		if tok.Kind == TokEOF {
			return toks
		}
	}
}

func TestLexPunctuation(t *testing.T) {
	toks := lexAll(t, "(){}[]:,")
	want := []TokenKind{TokLParen, TokRParen, TokLBrace, TokRBrace, TokLBracket, TokRBracket, TokColon, TokComma, TokEOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %v, want %v", i, toks[i].Kind, k)
		}
	}
}

func TestLexNumbers(t *testing.T) {
	for _, tc := range []struct {
		src      string
		wantKind TokenKind
	}{
		{"42", TokUint},
		{"-42", TokInt},
		{"+42", TokUint},
		{"3.14", TokFloat},
		{"1.", TokFloat},
		{"1e10", TokFloat},
		{"1e-10", TokFloat},
		{"0x1F", TokUint},
		{"0o17", TokUint},
		{"0b101", TokUint},
		{"1_000", TokUint},
		{"inf", TokFloat},
		{"-inf", TokFloat},
		{"NaN", TokFloat},
	} {
		toks := lexAll(t, tc.src)
		if toks[0].Kind != tc.wantKind {
			t.Errorf("lex(%q) kind = %v, want %v", tc.src, toks[0].Kind, tc.wantKind)
		}
	}
}

func TestLexString(t *testing.T) {
	toks := lexAll(t, `"hello\nworld"`)
	if toks[0].Kind != TokString {
		t.Fatalf("kind = %v, want TokString", toks[0].Kind)
	}
	if toks[0].Str != "hello\nworld" {
		t.Errorf("Str = %q, want %q", toks[0].Str, "hello\nworld")
	}
}

func TestLexRawString(t *testing.T) {
	toks := lexAll(t, `r#"no \n escapes"#`)
	if toks[0].Kind != TokString {
		t.Fatalf("kind = %v, want TokString", toks[0].Kind)
	}
	if toks[0].Str != `no \n escapes` {
		t.Errorf("Str = %q, want %q", toks[0].Str, `no \n escapes`)
	}
}

func TestLexRawStringBalancedHashes(t *testing.T) {
	toks := lexAll(t, `r##"contains "# inside"##`)
	if toks[0].Kind != TokString {
		t.Fatalf("kind = %v, want TokString", toks[0].Kind)
	}
	if toks[0].Str != `contains "# inside` {
		t.Errorf("Str = %q, want %q", toks[0].Str, `contains "# inside`)
	}
}

func TestLexByteString(t *testing.T) {
	toks := lexAll(t, `b"abc"`)
	if toks[0].Kind != TokByteString {
		t.Fatalf("kind = %v, want TokByteString", toks[0].Kind)
	}
	if string(toks[0].Bytes) != "abc" {
		t.Errorf("Bytes = %q, want %q", toks[0].Bytes, "abc")
	}
}

func TestLexChar(t *testing.T) {
	toks := lexAll(t, `'a' '\n' '\u{1F600}'`)
	if toks[0].Char != 'a' {
		t.Errorf("Char = %q, want 'a'", toks[0].Char)
	}
	if toks[1].Char != '\n' {
		t.Errorf("Char = %q, want '\\n'", toks[1].Char)
	}
	if toks[2].Char != 0x1F600 {
		t.Errorf("Char = %x, want 0x1F600", toks[2].Char)
	}
}

func TestLexIdentKeywords(t *testing.T) {
	toks := lexAll(t, "true false None Some Foo")
	want := []TokenKind{TokTrue, TokFalse, TokNone, TokSome, TokIdent}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %v, want %v", i, toks[i].Kind, k)
		}
	}
	if toks[4].Ident != "Foo" {
		t.Errorf("Ident = %q, want Foo", toks[4].Ident)
	}
}

func TestLexRawIdent(t *testing.T) {
	toks := lexAll(t, "r#true")
	if toks[0].Kind != TokIdent || toks[0].Ident != "true" {
		t.Errorf("got %v %q, want ident %q", toks[0].Kind, toks[0].Ident, "true")
	}
}

func TestLexIdentsSharingStringPrefixes(t *testing.T) {
	// Identifiers starting with 'b' or 'r' must not be mistaken for
	// byte-string or raw-string openers.
	for _, tc := range []struct {
		src  string
		want string
	}{
		{"brightness", "brightness"},
		{"branch", "branch"},
		{"radius", "radius"},
		{"b", "b"},
		{"r", "r"},
		{"br", "br"},
	} {
		toks := lexAll(t, tc.src)
		if toks[0].Kind != TokIdent || toks[0].Ident != tc.want {
			t.Errorf("lex(%q) = %v %q, want ident %q", tc.src, toks[0].Kind, toks[0].Ident, tc.want)
		}
	}
}

func TestLexRawByteString(t *testing.T) {
	toks := lexAll(t, `br#"raw \n bytes"#`)
	if toks[0].Kind != TokByteString {
		t.Fatalf("kind = %v, want TokByteString", toks[0].Kind)
	}
	if string(toks[0].Bytes) != `raw \n bytes` {
		t.Errorf("Bytes = %q, want %q", toks[0].Bytes, `raw \n bytes`)
	}
}

func TestPeekIsIdempotent(t *testing.T) {
	tz := New(cursor.New([]byte("42")))
	a, err := tz.Peek()
	if err != nil {
		t.Fatal(err)
	}
	b, err := tz.Peek()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Peek() not idempotent: %+v != %+v", a, b)
	}
	n, err := tz.Next()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(n, a) {
		t.Errorf("Next() after Peek() = %+v, want %+v", n, a)
	}
}

func TestMarkRewind(t *testing.T) {
	tz := New(cursor.New([]byte("foo bar")))
	cp := tz.Mark()
	first, _ := tz.Next()
	second, _ := tz.Next()
	tz.Rewind(cp)
	again, _ := tz.Next()
	if !reflect.DeepEqual(again, first) {
		t.Errorf("after Rewind, Next() = %+v, want %+v", again, first)
	}
	_ = second
}

func TestLexUnexpectedByte(t *testing.T) {
	tz := New(cursor.New([]byte("@")))
	if _, err := tz.Next(); err == nil {
		t.Fatal("expected an error for unexpected byte '@'")
	}
}

func TestLexUnterminatedString(t *testing.T) {
	tz := New(cursor.New([]byte(`"abc`)))
	if _, err := tz.Next(); err == nil {
		t.Fatal("expected an error for unterminated string")
	}
}

func TestLexStringUnicodeEscape(t *testing.T) {
	toks := lexAll(t, `"\u{1F600}"`)
	if toks[0].Str != "\U0001F600" {
		t.Errorf("Str = %q, want U+1F600", toks[0].Str)
	}
}

func TestLexStringHexEscapeBytes(t *testing.T) {
	// \xHH contributes a raw byte; two of them may combine into one
	// multi-byte UTF-8 scalar.
	toks := lexAll(t, `"\xc3\xa9"`)
	if toks[0].Str != "é" {
		t.Errorf("Str = %q, want %q", toks[0].Str, "é")
	}
}

func TestLexStringHexEscapeInvalidUTF8(t *testing.T) {
	tz := New(cursor.New([]byte(`"\xff"`)))
	_, err := tz.Next()
	if err == nil {
		t.Fatal("expected an error: lone \\xff is not valid UTF-8 in a string")
	}
	le, ok := err.(*Error)
	if !ok || le.Kind != KindUTF8 {
		t.Errorf("got %v, want a KindUTF8 error", err)
	}
}

func TestLexByteStringEscapes(t *testing.T) {
	toks := lexAll(t, `b"\x00\xFFab"`)
	want := []byte{0x00, 0xFF, 'a', 'b'}
	if string(toks[0].Bytes) != string(want) {
		t.Errorf("Bytes = %v, want %v", toks[0].Bytes, want)
	}
}

func TestLexNegativeRadixBounds(t *testing.T) {
	toks := lexAll(t, "-0x8000000000000000")
	if toks[0].Kind != TokInt || toks[0].Int != -9223372036854775808 {
		t.Errorf("got %v %d, want MinInt64", toks[0].Kind, toks[0].Int)
	}
	tz := New(cursor.New([]byte("-0x8000000000000001")))
	if _, err := tz.Next(); err == nil {
		t.Fatal("expected out-of-range error below MinInt64")
	}
}

func TestLexIntegerOverflow(t *testing.T) {
	tz := New(cursor.New([]byte("99999999999999999999")))
	_, err := tz.Next()
	if err == nil {
		t.Fatal("expected an overflow error")
	}
	le, ok := err.(*Error)
	if !ok || le.Kind != KindNumberOutOfRange {
		t.Errorf("got %v, want KindNumberOutOfRange", err)
	}
}
