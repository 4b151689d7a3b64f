package core

import (
	"errors"
	"fmt"

	"github.com/sarchlab/stackvm/program"
)

// Run-time error kinds. A RuntimeError unwraps to one of these.
var (
	ErrStackUnderflow = errors.New("stack underflow")
	ErrUnknownLabel   = errors.New("unknown label")
	ErrDivisionByZero = errors.New("division by zero")
	ErrNotInteger     = errors.New("operand is not an integer")
	ErrNegativeSqrt   = errors.New("square root of a negative number")
	ErrEndOfProgram   = errors.New("program ran past its last line")
)

// RuntimeError is a fatal error raised while executing an instruction.
type RuntimeError struct {
	Mnemonic program.Mnemonic
	Line     int // 1-based
	Err      error
}

func (e *RuntimeError) Error() string {
	if errors.Is(e.Err, ErrEndOfProgram) {
		return fmt.Sprintf("[FATAL] missing RET statement as last statement! "+
			"Program runs out of bounds. (Line: %d)", e.Line)
	}
	return fmt.Sprintf("[FATAL] %s: %v (Line: %d)", e.Mnemonic, e.Err, e.Line)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}
