package verify

import (
	"errors"
	"fmt"

	"github.com/sarchlab/stackvm/program"
)

// RunLint performs the static checks on a program and returns every issue
// found, in line order. Blank, comment and label lines are skipped; label
// problems are caught when the program table is built.
func RunLint(p *program.Program) []Issue {
	var issues []Issue

	for i := 0; i < p.Len(); i++ {
		line := p.Line(i)
		if line.Kind != program.Instruction {
			continue
		}

		inst, err := program.Decode(line)
		if err != nil {
			issues = append(issues, issueFromError(err, line.Number()))
			continue
		}

		switch inst.Mnemonic.Arg() {
		case program.ArgDecimal:
			issues = append(issues, checkLiteral(inst)...)
		case program.ArgTarget:
			issues = append(issues, checkTarget(inst, p.Len())...)
		case program.ArgTag, program.ArgNone:
		}
	}

	return issues
}

func checkLiteral(inst program.Inst) []Issue {
	if !inst.HasArg {
		return []Issue{missingOperand(inst)}
	}

	if _, err := program.ParseDecimal(inst.Arg); err != nil {
		return []Issue{{
			Type:    IssueSyntax,
			Code:    program.CodeInvalidNumber,
			Line:    inst.Line,
			Token:   inst.Arg,
			Message: fmt.Sprintf("%q is not a valid number!", inst.Arg),
		}}
	}

	return nil
}

func checkTarget(inst program.Inst, lineCount int) []Issue {
	if !inst.HasArg {
		return []Issue{missingOperand(inst)}
	}

	target, err := program.ParseTarget(inst.Arg, lineCount)
	if err != nil {
		issue := issueFromError(err, inst.Line)
		issue.Token = inst.Arg
		return []Issue{issue}
	}

	if target.Kind == program.LiteralTarget {
		return []Issue{{
			Type:    IssueWarning,
			Code:    CodeLiteralJump,
			Line:    inst.Line,
			Token:   inst.Arg,
			Message: "(conditional) jump based on line number!",
		}}
	}

	return nil
}

func missingOperand(inst program.Inst) Issue {
	return Issue{
		Type:    IssueSyntax,
		Code:    program.CodeMissingOperand,
		Line:    inst.Line,
		Message: fmt.Sprintf("Missing argument for %s!", inst.Mnemonic),
	}
}

var sentinelCodes = []program.Code{
	program.CodeUnknownMnemonic,
	program.CodeUnbalancedQuotes,
	program.CodeInvalidJumpTarget,
	program.CodeInvalidLineNumber,
	program.CodeJumpOutOfBounds,
	program.CodeInvalidNumber,
	program.CodeMissingOperand,
}

func issueFromError(err error, line int) Issue {
	issue := Issue{
		Type:    IssueSyntax,
		Line:    line,
		Message: err.Error(),
	}

	var se *program.SyntaxError
	if errors.As(err, &se) {
		issue.Code = se.Code
		issue.Token = se.Token
		issue.Message = se.Msg
		return issue
	}

	for _, code := range sentinelCodes {
		if errors.Is(err, code.Sentinel()) {
			issue.Code = code
			break
		}
	}

	return issue
}
