package lexer

import (
	"errors"
	"fmt"

	"mend/internal/diag"
	"mend/internal/source"
)

// ErrUnterminated is matched by every unterminated literal error.
var ErrUnterminated = errors.New("unterminated literal")

// UnterminatedError describes a string, template or block comment that
// never closes. The file must not be repaired.
type UnterminatedError struct {
	Code diag.Code
	Span source.Span
	Msg  string
}

func (e *UnterminatedError) Error() string {
	return fmt.Sprintf("%s at %s", e.Msg, e.Span)
}

func (e *UnterminatedError) Unwrap() error {
	return ErrUnterminated
}

func (lx *Lexer) fail(code diag.Code, sp source.Span, msg string) error {
	lx.report(code, sp, msg)
	return &UnterminatedError{Code: code, Span: sp, Msg: msg}
}
