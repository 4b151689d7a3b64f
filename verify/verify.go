// Package verify implements the static check that runs over a stack program
// before any instruction executes.
//
// RunLint walks every instruction line once and reports:
//
//   - SYNTAX issues: unknown mnemonics, missing or malformed PUSH literals,
//     malformed jump targets, literal targets outside the program, unbalanced
//     quotes. Any SYNTAX issue rejects the program.
//   - WARNING issues: jumps to a literal line number ("=n"). They bypass label
//     indirection and break silently when lines move, but do not reject the
//     program.
//
// Symbolic targets (">name") are only checked for shape. A label may be
// declared after the jump that uses it, so resolution is left to the machine.
//
// # Usage Example
//
//	prog, err := program.LoadFile("fib.svm")
//	if err != nil {
//	    return err
//	}
//	warnings, err := verify.Validate(prog, program.DefaultEntry)
//	verify.WriteReport(os.Stdout, warnings)
//	if err != nil {
//	    return err
//	}
package verify

import (
	"fmt"

	"github.com/sarchlab/stackvm/program"
)

// IssueType categorizes lint issues
type IssueType string

const (
	IssueSyntax  IssueType = "SYNTAX"  // Rejects the program
	IssueWarning IssueType = "WARNING" // Advisory only
)

// CodeLiteralJump marks the advisory for "=n" jump targets.
const CodeLiteralJump program.Code = "LiteralJump"

// Issue represents a single lint issue
type Issue struct {
	Type    IssueType
	Code    program.Code
	Line    int    // 1-based, 0 if not tied to a line
	Token   string // offending token, if any
	Message string
}

// Fatal reports whether the issue rejects the program.
func (i Issue) Fatal() bool {
	return i.Type == IssueSyntax
}

// Err converts a fatal issue into a *program.SyntaxError.
func (i Issue) Err() error {
	return &program.SyntaxError{
		Code:  i.Code,
		Line:  i.Line,
		Token: i.Token,
		Msg:   i.Message,
	}
}

func (i Issue) String() string {
	if i.Type == IssueWarning {
		return fmt.Sprintf("[WARNING] %s (Line: %d)", i.Message, i.Line)
	}
	return i.Err().Error()
}

// Validate runs the lint and the entry check. It returns the warnings and, if
// the program is rejected, an error wrapping the first SYNTAX issue. Checking
// stops at that issue, so only warnings on earlier lines are returned.
func Validate(p *program.Program, entry string) ([]Issue, error) {
	var warnings []Issue
	var first *Issue

	issues := RunLint(p)
	for idx := range issues {
		issue := issues[idx]
		if issue.Fatal() {
			first = &issue
			break
		}
		warnings = append(warnings, issue)
	}

	if first != nil {
		return warnings, fmt.Errorf("program rejected: %w", first.Err())
	}

	if _, err := p.Entry(entry); err != nil {
		return warnings, fmt.Errorf("program rejected: %w", err)
	}

	return warnings, nil
}
