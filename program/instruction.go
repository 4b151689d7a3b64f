package program

import (
	"fmt"
	"strconv"

	"github.com/cockroachdb/apd/v3"
)

// Inst is a decoded instruction line.
type Inst struct {
	Mnemonic Mnemonic
	Arg      string
	HasArg   bool
	Line     int // 1-based
}

// Decode tokenizes an instruction line and resolves its mnemonic. It does not
// check the argument; see ParseTarget and ParseDecimal.
func Decode(line Line) (Inst, error) {
	tokens, err := Tokenize(line.Text)
	if err != nil {
		return Inst{}, &SyntaxError{
			Code: CodeUnbalancedQuotes,
			Line: line.Number(),
			Msg:  err.Error(),
		}
	}
	if len(tokens) == 0 {
		return Inst{}, &SyntaxError{
			Code: CodeUnknownMnemonic,
			Line: line.Number(),
			Msg:  "Empty instruction",
		}
	}

	m, ok := ParseMnemonic(tokens[0])
	if !ok {
		return Inst{}, &SyntaxError{
			Code:  CodeUnknownMnemonic,
			Line:  line.Number(),
			Token: tokens[0],
			Msg:   fmt.Sprintf("Mnemonic %q is not known!", tokens[0]),
		}
	}

	inst := Inst{Mnemonic: m, Line: line.Number()}
	if len(tokens) > 1 {
		inst.Arg = tokens[1]
		inst.HasArg = true
	}

	return inst, nil
}

// TargetKind tells literal line jumps from label jumps.
type TargetKind uint8

const (
	LiteralTarget TargetKind = iota
	LabelTarget
)

// Target is a parsed jump argument.
type Target struct {
	Kind  TargetKind
	Index int // 0-based line index, literal targets only
	Label string
}

// ParseTarget parses "=n" (1-based line number) or ">label". Literal targets
// are bounds-checked against lineCount; labels are not resolved.
func ParseTarget(arg string, lineCount int) (Target, error) {
	if arg == "" {
		return Target{}, fmt.Errorf("%w: empty target", ErrInvalidJumpTarget)
	}

	raw := arg[1:]
	switch arg[0] {
	case '=':
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Target{}, fmt.Errorf("%w: %q is not a valid line number",
				ErrInvalidLineNumber, raw)
		}
		if n < 1 || n >= lineCount {
			return Target{}, fmt.Errorf("%w: %q would be out of bounds",
				ErrJumpOutOfBounds, raw)
		}
		return Target{Kind: LiteralTarget, Index: n - 1}, nil
	case '>':
		if raw == "" {
			return Target{}, fmt.Errorf("%w: %q has no label name",
				ErrInvalidJumpTarget, arg)
		}
		return Target{Kind: LabelTarget, Label: raw}, nil
	default:
		return Target{}, fmt.Errorf("%w: cannot jump to %q, missing identifier '=' or '>'",
			ErrInvalidJumpTarget, arg)
	}
}

// ParseDecimal parses a finite decimal literal.
func ParseDecimal(s string) (*apd.Decimal, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	if d.Form != apd.Finite {
		return nil, fmt.Errorf("%w: %q is not finite", ErrInvalidNumber, s)
	}
	return d, nil
}
