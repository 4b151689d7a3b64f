// Package program holds the static side of a stack program: the ISA, the
// tokenizer, and the program table with its labels.
package program

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// DefaultEntry is the label execution starts at unless configured otherwise.
const DefaultEntry = "main"

// LineKind classifies a source line.
type LineKind uint8

const (
	Blank LineKind = iota
	Comment
	Label
	Instruction
)

func (k LineKind) String() string {
	switch k {
	case Blank:
		return "blank"
	case Comment:
		return "comment"
	case Label:
		return "label"
	case Instruction:
		return "instruction"
	default:
		return fmt.Sprintf("LineKind(%d)", uint8(k))
	}
}

// Line is one immutable source line.
type Line struct {
	Index int // 0-based
	Text  string
	Kind  LineKind
}

// Number returns the 1-based line number.
func (l Line) Number() int {
	return l.Index + 1
}

// Program is the ordered line table plus the label table. It is immutable
// once built and safe to share.
type Program struct {
	lines  []Line
	labels map[string]int
}

// Classify returns the kind of a raw source line. Labels and comments are
// recognized by the first character only; an indented ":name" or "# x" is an
// instruction line and fails to decode.
func Classify(text string) LineKind {
	switch {
	case strings.TrimSpace(text) == "":
		return Blank
	case text[0] == '#':
		return Comment
	case text[0] == ':':
		return Label
	default:
		return Instruction
	}
}

// New builds a program from its source lines and resolves every label
// declaration.
func New(lines []string) (*Program, error) {
	p := &Program{
		lines:  make([]Line, len(lines)),
		labels: make(map[string]int),
	}

	for i, text := range lines {
		line := Line{Index: i, Text: text, Kind: Classify(text)}
		p.lines[i] = line

		if line.Kind != Label {
			continue
		}

		name, err := labelName(line)
		if err != nil {
			return nil, err
		}

		if prev, dup := p.labels[name]; dup {
			return nil, &SyntaxError{
				Code:  CodeDuplicateLabel,
				Line:  line.Number(),
				Token: name,
				Msg: fmt.Sprintf("Duplicate label: %s (first declared at line %d, again at line %d)",
					name, prev+1, line.Number()),
			}
		}
		p.labels[name] = i
	}

	return p, nil
}

func labelName(line Line) (string, error) {
	tokens, err := Tokenize(line.Text)
	if err != nil {
		return "", &SyntaxError{
			Code: CodeUnbalancedQuotes,
			Line: line.Number(),
			Msg:  err.Error(),
		}
	}

	name := strings.TrimPrefix(tokens[0], ":")
	if name == "" {
		return "", &SyntaxError{
			Code: CodeEmptyLabel,
			Line: line.Number(),
			Msg:  "Label without a name",
		}
	}

	return name, nil
}

// LoadFile reads a newline-delimited program from disk.
func LoadFile(path string) (*Program, error) {
	lines, err := ReadLines(path)
	if err != nil {
		return nil, err
	}

	return New(lines)
}

// ReadLines returns the physical lines of a file, blank lines included.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read program file: %w", err)
	}

	return lines, nil
}

// Len returns the number of lines.
func (p *Program) Len() int {
	return len(p.lines)
}

// Line returns the line at a 0-based index.
func (p *Program) Line(i int) Line {
	return p.lines[i]
}

// Lines returns a copy of the line table.
func (p *Program) Lines() []Line {
	out := make([]Line, len(p.lines))
	copy(out, p.lines)
	return out
}

// Label resolves a label name to its 0-based line index.
func (p *Program) Label(name string) (int, bool) {
	idx, ok := p.labels[name]
	return idx, ok
}

// Labels returns a copy of the label table.
func (p *Program) Labels() map[string]int {
	out := make(map[string]int, len(p.labels))
	for k, v := range p.labels {
		out[k] = v
	}
	return out
}

// Entry returns the line index of the entry label.
func (p *Program) Entry(name string) (int, error) {
	idx, ok := p.labels[name]
	if !ok {
		return 0, &SyntaxError{
			Code:  CodeMissingEntry,
			Token: name,
			Msg:   fmt.Sprintf("Entry label %q is not declared", name),
		}
	}
	return idx, nil
}
