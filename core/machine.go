package core

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
	"github.com/sarchlab/stackvm/program"
)

// Outcome describes how a run ended.
type Outcome int

const (
	// Running means the machine has not terminated yet.
	Running Outcome = iota
	// Halted is normal termination: RET with an empty call stack.
	Halted
	// Fatal is termination by a run-time error.
	Fatal
)

func (o Outcome) String() string {
	switch o {
	case Running:
		return "running"
	case Halted:
		return "halted"
	case Fatal:
		return "fatal"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result is the final state of one run.
type Result struct {
	Outcome   Outcome
	Steps     int
	Remaining []*apd.Decimal // top first
	Err       error
}

type fetchKind uint8

const (
	nextLine fetchKind = iota
	endOfProgram
)

type fetchResult struct {
	kind fetchKind
	line program.Line
}

// Machine executes one program run. Create one per run with a Builder.
type Machine struct {
	state  machineState
	emu    instEmulator
	dump   DumpFormat
	trace  bool
	steps  int
	result Result
}

// fetch reads the line at PC and advances PC.
func (m *Machine) fetch() fetchResult {
	if m.state.PC < 0 || m.state.PC >= m.state.Code.Len() {
		return fetchResult{kind: endOfProgram}
	}

	line := m.state.Code.Line(m.state.PC)
	m.state.PC++
	return fetchResult{kind: nextLine, line: line}
}

// Step executes the next instruction line, skipping blank, comment and label
// lines. It returns false once the machine has terminated.
func (m *Machine) Step() bool {
	if m.Done() {
		return false
	}

	for {
		fr := m.fetch()
		if fr.kind == endOfProgram {
			m.terminate(Fatal, &RuntimeError{
				Mnemonic: program.NoMnemonic,
				Line:     m.state.Code.Len(),
				Err:  ErrEndOfProgram,
			})
			return false
		}

		if fr.line.Kind != program.Instruction {
			continue
		}

		inst, err := program.Decode(fr.line)
		if err != nil {
			m.terminate(Fatal, err)
			return false
		}

		halted, err := m.emu.RunInst(inst, &m.state)
		m.steps++
		if m.trace {
			LogState(inst, &m.state)
		}

		switch {
		case err != nil:
			m.terminate(Fatal, err)
			return false
		case halted:
			m.terminate(Halted, nil)
			return false
		}

		return true
	}
}

// Run steps until termination and returns the result.
func (m *Machine) Run() Result {
	for m.Step() {
	}
	return m.result
}

// Done reports whether the machine has terminated.
func (m *Machine) Done() bool {
	return m.result.Outcome != Running
}

// Result returns the run result; Outcome is Running until termination.
func (m *Machine) Result() Result {
	r := m.result
	r.Steps = m.steps
	return r
}

// PC returns the index of the next line to fetch.
func (m *Machine) PC() int {
	return m.state.PC
}

// Operands returns the operand stack, top first.
func (m *Machine) Operands() []*apd.Decimal {
	return m.state.Operands.Snapshot()
}

// CallDepth returns the number of pending return addresses.
func (m *Machine) CallDepth() int {
	return m.state.Calls.Len()
}

func (m *Machine) terminate(outcome Outcome, err error) {
	if err != nil {
		m.emu.console.WriteError(err.Error())
	}

	remaining := m.state.Operands.Drain()
	m.dumpStack(remaining)

	m.result = Result{
		Outcome:   outcome,
		Steps:     m.steps,
		Remaining: remaining,
		Err:       err,
	}

	Trace("MachineTerminated",
		"outcome", outcome.String(),
		"steps", m.steps,
		"remaining", len(remaining))
}

func (m *Machine) dumpStack(values []*apd.Decimal) {
	switch m.dump {
	case DumpNone:
	case DumpTable:
		m.emu.console.WriteLine(StackTable(values))
	default:
		m.emu.console.WriteLine(FormatStackLine(values))
	}
}
