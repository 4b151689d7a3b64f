// Package api defines the driver API that loads, validates and runs stack
// programs.
package api

import (
	"errors"
	"fmt"
	"io"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/stackvm/config"
	"github.com/sarchlab/stackvm/core"
	"github.com/sarchlab/stackvm/program"
	"github.com/sarchlab/stackvm/verify"
)

// CoreName is the name of the component that runs programs on an engine.
const CoreName = "StackVM.Core"

// Driver runs programs end to end.
type Driver interface {
	// RunFile loads the program at path and runs it.
	RunFile(path string) (core.Result, error)

	// RunLines runs a program given as its source lines.
	RunLines(lines []string) (core.Result, error)

	// Check loads and validates a program without running it. It returns
	// every issue found, fatal or not.
	Check(lines []string) ([]verify.Issue, error)
}

type driverImpl struct {
	cfg    config.Config
	out    io.Writer
	engine sim.Engine
	freq   sim.Freq
}

// RunFile reads the program file and runs it.
func (d *driverImpl) RunFile(path string) (core.Result, error) {
	lines, err := program.ReadLines(path)
	if err != nil {
		d.reportLoadError(err)
		return core.Result{}, err
	}

	return d.RunLines(lines)
}

// RunLines validates the program and, if it is accepted, runs it once.
// Nothing executes when loading or validation fails.
func (d *driverImpl) RunLines(lines []string) (core.Result, error) {
	p, err := d.load(lines)
	if err != nil {
		return core.Result{}, err
	}

	b := core.NewBuilder().
		WithOutput(d.out).
		WithEntry(d.cfg.Entry).
		WithDumpFormat(d.cfg.Dump).
		WithTrace(d.cfg.Trace)

	if d.engine == nil {
		m, err := b.Build(p)
		if err != nil {
			return core.Result{}, err
		}
		return m.Run(), nil
	}

	return d.runOnEngine(b, p)
}

func (d *driverImpl) runOnEngine(
	b core.Builder,
	p *program.Program,
) (core.Result, error) {
	c, err := b.WithEngine(d.engine).WithFreq(d.freq).BuildCore(CoreName, p)
	if err != nil {
		return core.Result{}, err
	}

	c.Start()
	if err := d.engine.Run(); err != nil {
		return core.Result{}, fmt.Errorf("engine: %w", err)
	}

	return c.Result(), nil
}

// Check runs the validator and reports all issues.
func (d *driverImpl) Check(lines []string) ([]verify.Issue, error) {
	p, err := program.New(lines)
	if err != nil {
		return nil, err
	}

	issues := verify.RunLint(p)
	if _, err := p.Entry(d.cfg.Entry); err != nil {
		return issues, err
	}

	return issues, nil
}

func (d *driverImpl) load(lines []string) (*program.Program, error) {
	p, err := program.New(lines)
	if err != nil {
		d.reportLoadError(err)
		return nil, err
	}

	warnings, err := verify.Validate(p, d.cfg.Entry)
	if d.cfg.Advisories {
		verify.WriteReport(d.out, warnings)
	}
	if err != nil {
		d.reportLoadError(err)
		return nil, err
	}

	return p, nil
}

func (d *driverImpl) reportLoadError(err error) {
	var se *program.SyntaxError
	if errors.As(err, &se) {
		fmt.Fprintln(d.out, se.Error())
		return
	}
	fmt.Fprintln(d.out, err.Error())
}
