package core

import (
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/stackvm/program"
)

// Builder can create new machines and cores.
type Builder struct {
	console Console
	entry   string
	dump    DumpFormat
	trace   bool

	engine sim.Engine
	freq   sim.Freq
}

// NewBuilder returns a builder with stdout/stderr output, the "main" entry
// label and the single-line stack dump.
func NewBuilder() Builder {
	return Builder{
		console: NewWriterConsole(os.Stdout, os.Stderr),
		entry:   program.DefaultEntry,
		dump:    DumpLine,
		freq:    1 * sim.GHz,
	}
}

// WithConsole sets where program output goes.
func (b Builder) WithConsole(console Console) Builder {
	b.console = console
	return b
}

// WithOutput prints both output and diagnostics to w.
func (b Builder) WithOutput(w io.Writer) Builder {
	b.console = NewWriterConsole(w, w)
	return b
}

// WithEntry sets the label execution starts at.
func (b Builder) WithEntry(label string) Builder {
	b.entry = label
	return b
}

// WithDumpFormat sets how the remaining stack is reported.
func (b Builder) WithDumpFormat(format DumpFormat) Builder {
	b.dump = format
	return b
}

// WithTrace logs a state checkpoint after every instruction.
func (b Builder) WithTrace(trace bool) Builder {
	b.trace = trace
	return b
}

// WithEngine sets the engine used by BuildCore.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of cores built by BuildCore.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// Build creates a machine positioned at the entry label of p. The program
// must have passed validation.
func (b Builder) Build(p *program.Program) (*Machine, error) {
	entry, err := p.Entry(b.entry)
	if err != nil {
		return nil, err
	}

	m := &Machine{
		emu:   instEmulator{console: b.console},
		dump:  b.dump,
		trace: b.trace,
	}
	m.state = machineState{
		PC:   entry,
		Code: p,
	}

	return m, nil
}

// BuildCore creates a ticking core that runs p on the builder's engine.
func (b Builder) BuildCore(name string, p *program.Program) (*Core, error) {
	if b.engine == nil {
		return nil, fmt.Errorf("core %s: no engine set", name)
	}

	m, err := b.Build(p)
	if err != nil {
		return nil, err
	}

	c := &Core{machine: m}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	return c, nil
}
