package core

import (
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// Console receives the line-oriented output of a run.
type Console interface {
	// WriteLine prints regular program output.
	WriteLine(line string)
	// WriteError prints diagnostics for fatal termination.
	WriteError(line string)
}

// NoValue is printed by PEEK and POP on an empty stack.
const NoValue = "no value"

// DumpFormat selects how the remaining stack is reported at termination.
type DumpFormat string

const (
	DumpLine  DumpFormat = "line"
	DumpTable DumpFormat = "table"
	DumpNone  DumpFormat = "none"
)

type writerConsole struct {
	out io.Writer
	err io.Writer
}

// NewWriterConsole prints output to out and diagnostics to errOut.
func NewWriterConsole(out, errOut io.Writer) Console {
	return writerConsole{out: out, err: errOut}
}

func (c writerConsole) WriteLine(line string) {
	fmt.Fprintln(c.out, line)
}

func (c writerConsole) WriteError(line string) {
	fmt.Fprintln(c.err, line)
}

func formatValue(v *apd.Decimal, ok bool) string {
	if !ok {
		return NoValue
	}
	return v.String()
}

func formatPrint(kind, tag string, hasTag bool, value string) string {
	if hasTag {
		return fmt.Sprintf("%s [%s]: %s", kind, tag, value)
	}
	return fmt.Sprintf("%s: %s", kind, value)
}

// FormatStackLine renders values, top first, the way the final dump does.
func FormatStackLine(values []*apd.Decimal) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	return "Remaining stack elements on finish: TOP -> [" + strings.Join(parts, ", ") + "]"
}
