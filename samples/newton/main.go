package main

import (
	_ "embed"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/stackvm/core"
	"github.com/sarchlab/stackvm/program"
	"github.com/sarchlab/stackvm/verify"
	"github.com/tebeka/atexit"
)

//go:embed newton.svm
var newtonProgram string

var monitorFlag = flag.Bool("monitor", false,
	"serve the akita monitor and keep running after the program ends")

// buildNewton validates the embedded program and places it on engine.
func buildNewton(engine sim.Engine, out io.Writer) (*core.Core, error) {
	p, err := program.New(strings.Split(newtonProgram, "\n"))
	if err != nil {
		return nil, err
	}
	if _, err := verify.Validate(p, program.DefaultEntry); err != nil {
		return nil, err
	}

	return core.NewBuilder().
		WithOutput(out).
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		WithDumpFormat(core.DumpTable).
		BuildCore("Newton.Core", p)
}

// runNewton ticks c until the program ends.
func runNewton(engine sim.Engine, c *core.Core) error {
	c.Start()
	if err := engine.Run(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}

func main() {
	flag.Parse()

	engine := sim.NewSerialEngine()

	c, err := buildNewton(engine, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(2)
	}

	var monitor *monitoring.Monitor
	if *monitorFlag {
		monitor = monitoring.NewMonitor()
		monitor.RegisterEngine(engine)
		monitor.RegisterComponent(c)
		monitor.StartServer()
	}

	if err := runNewton(engine, c); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	fmt.Printf("%s after %d cycles\n", c.Result().Outcome, c.Cycles())

	if monitor != nil {
		select {}
	}

	atexit.Exit(0)
}
