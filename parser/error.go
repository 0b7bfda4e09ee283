package parser

import "fmt"

// Error is a front-end failure at a source position.
type Error struct {
	File string
	Line int
	Msg  string
}

func newError(file string, tok token, format string, args ...interface{}) *Error {
	return &Error{
		File: file,
		Line: tok.line,
		Msg:  fmt.Sprintf(format, args...),
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d: error: %s", e.File, e.Line, e.Msg)
}
