// Command stackvm validates and runs a stack program file.
//
//	stackvm [-config file] [-trace] [-dump line|table|none] [-entry label]
//	        [-engine] [-check] [-lint-report file] program
//
// The exit status is 0 when the program halts normally, 1 when it stops on a
// run-time error and 2 when it cannot be loaded or the arguments are wrong.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/stackvm/api"
	"github.com/sarchlab/stackvm/config"
	"github.com/sarchlab/stackvm/core"
	"github.com/sarchlab/stackvm/program"
	"github.com/sarchlab/stackvm/verify"
	"github.com/tebeka/atexit"
)

const (
	exitHalted = 0
	exitFatal  = 1
	exitUsage  = 2
)

func main() {
	atexit.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	cfg        config.Config
	useEngine  bool
	checkOnly  bool
	lintReport string
	path       string
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("stackvm", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "YAML or TOML file with run settings")
	trace := fs.Bool("trace", false, "log the machine state after every instruction")
	dump := fs.String("dump", string(core.DumpLine), "final stack report: line, table or none")
	entry := fs.String("entry", program.DefaultEntry, "label execution starts at")
	useEngine := fs.Bool("engine", false, "run the program as a ticking core on a serial engine")
	checkOnly := fs.Bool("check", false, "validate the program without running it")
	lintReport := fs.String("lint-report", "", "write the validation issues to this file")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return options{}, fmt.Errorf("expected one program file, got %d arguments", fs.NArg())
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return options{}, err
		}
		cfg = loaded
	}

	// Flags given on the command line win over the config file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "trace":
			cfg.Trace = *trace
		case "dump":
			cfg.Dump = core.DumpFormat(*dump)
		case "entry":
			cfg.Entry = *entry
		}
	})

	if err := cfg.Validate(); err != nil {
		return options{}, err
	}

	return options{
		cfg:        cfg,
		useEngine:  *useEngine,
		checkOnly:  *checkOnly,
		lintReport: *lintReport,
		path:       fs.Arg(0),
	}, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, err)
		}
		return exitUsage
	}

	if opts.cfg.Trace {
		handler := slog.NewTextHandler(stderr, &slog.HandlerOptions{
			Level: core.LevelTrace,
		})
		slog.SetDefault(slog.New(handler))
	}

	b := api.DriverBuilder{}.
		WithConfig(opts.cfg).
		WithOutput(stdout)
	if opts.useEngine {
		b = b.WithEngine(sim.NewSerialEngine()).WithFreq(1 * sim.GHz)
	}
	driver := b.Build()

	if opts.checkOnly || opts.lintReport != "" {
		code, stop := check(driver, opts, stdout, stderr)
		if stop {
			return code
		}
	}

	res, err := driver.RunFile(opts.path)
	if err != nil {
		return exitUsage
	}

	if res.Outcome == core.Fatal {
		return exitFatal
	}

	return exitHalted
}

// check validates the program and writes the lint report. It reports
// whether the run should stop here, and with which exit status.
func check(
	driver api.Driver,
	opts options,
	stdout, stderr io.Writer,
) (int, bool) {
	lines, err := program.ReadLines(opts.path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage, true
	}

	issues, err := driver.Check(lines)
	if opts.lintReport != "" {
		if saveErr := verify.SaveReportToFile(opts.lintReport, issues); saveErr != nil {
			fmt.Fprintln(stderr, saveErr)
			return exitUsage, true
		}
	}

	if !opts.checkOnly {
		return 0, false
	}

	verify.WriteReport(stdout, issues)
	if err != nil {
		fmt.Fprintln(stdout, err)
		return exitUsage, true
	}

	syntax, warnings := verify.Summary(issues)
	fmt.Fprintf(stdout, "%d syntax errors, %d warnings\n", syntax, warnings)
	if syntax > 0 {
		return exitUsage, true
	}

	return exitHalted, true
}
