// Package cursor implements the byte-indexed input cursor shared by the
// RON lexer: lookahead over raw bytes plus line/column tracking for
// error spans.
package cursor

import "unicode/utf8"

// Cursor walks a byte slice, tracking the derived line and column of
// the current position the way rhogenson-ccl's syntaxError computes
// them: by counting line terminators up to the offset in question,
// rather than keeping a running line/column pair that could drift out
// of sync with a saved/restored position.
type Cursor struct {
	data []byte
	pos  int

	// mark is the earliest position a save/restore pair is allowed to
	// rewind past; used by callers that need a bounded lookahead buffer
	// without risking them unreading data already handed to a caller.
	mark int
}

// New returns a Cursor positioned at the start of data.
func New(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Offset is the current byte offset into the source.
func (c *Cursor) Offset() int { return c.pos }

// Len is the length of the underlying source in bytes.
func (c *Cursor) Len() int { return len(c.data) }

// Bytes returns the full underlying source.
func (c *Cursor) Bytes() []byte { return c.data }

// Slice returns data[from:c.pos].
func (c *Cursor) Slice(from int) []byte { return c.data[from:c.pos] }

// AtEOF reports whether the cursor is at the end of input.
func (c *Cursor) AtEOF() bool { return c.pos >= len(c.data) }

// PeekByte returns the byte at the current position, or 0, false at EOF.
func (c *Cursor) PeekByte() (byte, bool) {
	if c.pos >= len(c.data) {
		return 0, false
	}
	return c.data[c.pos], true
}

// PeekByteAt returns the byte n bytes ahead of the current position.
func (c *Cursor) PeekByteAt(n int) (byte, bool) {
	if c.pos+n >= len(c.data) {
		return 0, false
	}
	return c.data[c.pos+n], true
}

// PeekRune decodes the rune at the current position without consuming it.
func (c *Cursor) PeekRune() (rune, int) {
	if c.pos >= len(c.data) {
		return 0, 0
	}
	return utf8.DecodeRune(c.data[c.pos:])
}

// Advance consumes n bytes.
func (c *Cursor) Advance(n int) { c.pos += n }

// AdvanceRune decodes and consumes one rune, returning it.
func (c *Cursor) AdvanceRune() (rune, int) {
	r, sz := c.PeekRune()
	c.pos += sz
	return r, sz
}

// HasPrefix reports whether the unconsumed input starts with s.
func (c *Cursor) HasPrefix(s string) bool {
	if c.pos+len(s) > len(c.data) {
		return false
	}
	return string(c.data[c.pos:c.pos+len(s)]) == s
}

// ConsumePrefix consumes s if the unconsumed input starts with it,
// reporting whether it did.
func (c *Cursor) ConsumePrefix(s string) bool {
	if !c.HasPrefix(s) {
		return false
	}
	c.pos += len(s)
	return true
}

// ConsumeWhile advances past bytes satisfying pred, returning the
// consumed slice.
func (c *Cursor) ConsumeWhile(pred func(byte) bool) []byte {
	start := c.pos
	for c.pos < len(c.data) && pred(c.data[c.pos]) {
		c.pos++
	}
	return c.data[start:c.pos]
}

// Save records the current position so SkipWsAndComments or a lexer
// production can roll back on a failed speculative parse.
func (c *Cursor) Save() int { return c.pos }

// Restore rewinds to a position previously returned by Save. It
// refuses to rewind past mark: a cursor should never be asked to
// un-consume bytes a caller has already committed to.
func (c *Cursor) Restore(pos int) {
	if pos < c.mark {
		panic("cursor: restore past mark")
	}
	c.pos = pos
}

// SetMark fixes the earliest position future Restore calls may target.
func (c *Cursor) SetMark() { c.mark = c.pos }

// LineCol computes the 1-based line and column of a byte offset by
// counting line terminators up to it.
func (c *Cursor) LineCol(offset int) (line, col int) {
	line, col = 1, 1
	end := offset
	if end > len(c.data) {
		end = len(c.data)
	}
	for _, b := range c.data[:end] {
		if b == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// SkipWsAndComments advances past any run of whitespace, `//` line
// comments, and nestable `/* */` block comments. It reports an error
// offset and false if a block comment is left unterminated.
func (c *Cursor) SkipWsAndComments() (unterminatedAt int, ok bool) {
	for {
		switch {
		case c.pos < len(c.data) && isSpace(c.data[c.pos]):
			c.pos++
		case c.HasPrefix("//"):
			c.pos += 2
			for c.pos < len(c.data) && c.data[c.pos] != '\n' {
				c.pos++
			}
		case c.HasPrefix("/*"):
			start := c.pos
			c.pos += 2
			depth := 1
			for depth > 0 {
				if c.pos >= len(c.data) {
					return start, false
				}
				switch {
				case c.HasPrefix("/*"):
					depth++
					c.pos += 2
				case c.HasPrefix("*/"):
					depth--
					c.pos += 2
				default:
					c.pos++
				}
			}
		default:
			return 0, true
		}
	}
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
