package program

import (
	"errors"
	"fmt"
)

// Load-time error kinds. A SyntaxError unwraps to one of these.
var (
	ErrDuplicateLabel    = errors.New("duplicate label")
	ErrEmptyLabel        = errors.New("empty label")
	ErrUnknownMnemonic   = errors.New("unknown mnemonic")
	ErrMissingOperand    = errors.New("missing operand")
	ErrInvalidNumber     = errors.New("invalid number")
	ErrInvalidJumpTarget = errors.New("invalid jump target")
	ErrInvalidLineNumber = errors.New("invalid line number")
	ErrJumpOutOfBounds   = errors.New("jump out of bounds")
	ErrUnbalancedQuotes  = errors.New("unbalanced quotes")
	ErrMissingEntry      = errors.New("missing entry label")
)

// Code names a load-time error kind.
type Code string

const (
	CodeDuplicateLabel    Code = "DuplicateLabel"
	CodeEmptyLabel        Code = "EmptyLabel"
	CodeUnknownMnemonic   Code = "UnknownMnemonic"
	CodeMissingOperand    Code = "MissingOperand"
	CodeInvalidNumber     Code = "InvalidNumber"
	CodeInvalidJumpTarget Code = "InvalidJumpTarget"
	CodeInvalidLineNumber Code = "InvalidLineNumber"
	CodeJumpOutOfBounds   Code = "JumpOutOfBounds"
	CodeUnbalancedQuotes  Code = "UnbalancedQuotes"
	CodeMissingEntry      Code = "MissingEntry"
)

var codeErrors = map[Code]error{
	CodeDuplicateLabel:    ErrDuplicateLabel,
	CodeEmptyLabel:        ErrEmptyLabel,
	CodeUnknownMnemonic:   ErrUnknownMnemonic,
	CodeMissingOperand:    ErrMissingOperand,
	CodeInvalidNumber:     ErrInvalidNumber,
	CodeInvalidJumpTarget: ErrInvalidJumpTarget,
	CodeInvalidLineNumber: ErrInvalidLineNumber,
	CodeJumpOutOfBounds:   ErrJumpOutOfBounds,
	CodeUnbalancedQuotes:  ErrUnbalancedQuotes,
	CodeMissingEntry:      ErrMissingEntry,
}

// Sentinel returns the sentinel error for a code, or nil for unknown codes.
func (c Code) Sentinel() error {
	return codeErrors[c]
}

// SyntaxError is a load-time error tied to a source line.
type SyntaxError struct {
	Code  Code
	Line  int // 1-based, 0 when not tied to a line
	Token string
	Msg   string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[SYNTAX] %s (Line: %d)", e.Msg, e.Line)
	}
	return fmt.Sprintf("[SYNTAX] %s", e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return e.Code.Sentinel()
}
