package lex

// Kind of terminal produced by the Tokenizer.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokIdent
	TokInt
	TokUint
	TokFloat
	TokChar
	TokString
	TokByteString
	TokTrue
	TokFalse
	TokNone
	TokSome
	TokLParen
	TokRParen
	TokLBracket
	TokRBracket
	TokLBrace
	TokRBrace
	TokColon
	TokComma
)

func (k TokenKind) String() string {
	switch k {
	case TokEOF:
		return "eof"
	case TokIdent:
		return "identifier"
	case TokInt:
		return "integer"
	case TokUint:
		return "unsigned integer"
	case TokFloat:
		return "float"
	case TokChar:
		return "char"
	case TokString:
		return "string"
	case TokByteString:
		return "byte string"
	case TokTrue, TokFalse:
		return "bool"
	case TokNone:
		return "None"
	case TokSome:
		return "Some"
	case TokLParen:
		return "'('"
	case TokRParen:
		return "')'"
	case TokLBracket:
		return "'['"
	case TokRBracket:
		return "']'"
	case TokLBrace:
		return "'{'"
	case TokRBrace:
		return "'}'"
	case TokColon:
		return "':'"
	case TokComma:
		return "','"
	default:
		return "?"
	}
}

// Token is one lexical unit with its decoded payload. Exactly one of
// the typed fields is meaningful, selected by Kind, the same
// one-field-per-kind shape the Value tree (component E) uses for its
// own tagged union.
type Token struct {
	Kind   TokenKind
	Offset int // byte offset of the first byte of the token
	End    int // byte offset just past the token

	Ident  string // TokIdent: decoded identifier (raw-ident hash stripped)
	Int    int64
	Uint   uint64
	Float  float64
	Char   rune
	Str    string // TokString: decoded text; TokByteString: n/a
	Bytes  []byte // TokByteString: decoded bytes
}
