package object

import (
	"errors"
	"fmt"

	"github.com/yen-lang/Yen-sub000/internal/token"
)

type ErrorKind string

const (
	LexError             ErrorKind = "LexError"
	ParseError           ErrorKind = "ParseError"
	NameError            ErrorKind = "NameError"
	TypeError            ErrorKind = "TypeError"
	IndexError           ErrorKind = "IndexError"
	ArityError           ErrorKind = "ArityError"
	DivisionByZero       ErrorKind = "DivisionByZero"
	CastError            ErrorKind = "CastError"
	MatchExhaustionError ErrorKind = "MatchExhaustionError"
	AssertionError       ErrorKind = "AssertionError"
	ImportError          ErrorKind = "ImportError"
	RecursionError       ErrorKind = "RecursionError"
	ThrownError          ErrorKind = "Error"
	NativeError          ErrorKind = "NativeError"
)

// Error is a runtime error. It travels through Go error returns and becomes
// an ordinary value when caught by try/catch.
type Error struct {
	Kind    ErrorKind
	Message string
	Line    int
	Column  int
	Payload Object // the value passed to throw, if any
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string  { return string(e.Kind) + ": " + e.Message }

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%3d:%2d] %s: %s", e.Line, e.Column, e.Kind, e.Message)
	}
	return e.Inspect()
}

// At records the position of tok unless a position is already known.
func (e *Error) At(tok token.Token) *Error {
	if e.Line == 0 {
		e.Line, e.Column = tok.Line, tok.Column
	}
	return e
}

func NewError(kind ErrorKind, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, a...)}
}

// AsError converts any Go error into a runtime error, wrapping host failures
// as NativeError.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var rtErr *Error
	if errors.As(err, &rtErr) {
		return rtErr
	}
	return &Error{Kind: NativeError, Message: err.Error()}
}

// IsKind reports whether err is a runtime error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var rtErr *Error
	return errors.As(err, &rtErr) && rtErr.Kind == kind
}
