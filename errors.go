package ron

import (
	"errors"

	"github.com/ronlang/ron/internal/lex"
)

// UnmarshalError is the public error type returned by Unmarshal and
// ParseValue, wrapping the position and kind information the
// internal/lex.Error from the Decoder carries so callers outside this
// module can inspect a failure without reaching into internal/.
type UnmarshalError struct {
	Offset   int
	Line     int
	Col      int
	Kind     lex.Kind
	Reason   string
	Expected string
	Found    string

	err error
}

func (e *UnmarshalError) Error() string { return e.err.Error() }
func (e *UnmarshalError) Unwrap() error { return e.err }

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	var le *lex.Error
	if errors.As(err, &le) {
		return &UnmarshalError{
			Offset:   le.Offset,
			Line:     le.Line,
			Col:      le.Col,
			Kind:     le.Kind,
			Reason:   le.Reason,
			Expected: le.Expected,
			Found:    le.Found,
			err:      le,
		}
	}
	return err
}
