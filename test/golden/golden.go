// Package golden runs program files against their expected output.
//
// Every "name.svm" in a directory is paired with "name.golden", which holds
// the exact text the program prints. Programs run twice, once directly and
// once as a ticking core on a serial engine, and both runs must match.
package golden

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/stackvm/api"
)

// Run checks every program in dir.
func Run(t *testing.T, dir string) {
	t.Helper()

	programs, err := filepath.Glob(filepath.Join(dir, "*.svm"))
	if err != nil {
		t.Fatal(err)
	}
	if len(programs) == 0 {
		t.Fatalf("no programs in %s", dir)
	}

	for _, path := range programs {
		name := strings.TrimSuffix(filepath.Base(path), ".svm")
		want, err := os.ReadFile(strings.TrimSuffix(path, ".svm") + ".golden")
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}

		t.Run(name, func(t *testing.T) {
			var direct bytes.Buffer
			runFile(t, api.DriverBuilder{}.WithOutput(&direct), path)
			if got := direct.String(); got != string(want) {
				t.Errorf("direct run:\ngot:\n%s\nwant:\n%s", got, want)
			}

			var ticked bytes.Buffer
			runFile(t, api.DriverBuilder{}.
				WithOutput(&ticked).
				WithEngine(sim.NewSerialEngine()).
				WithFreq(1*sim.GHz), path)
			if got := ticked.String(); got != string(want) {
				t.Errorf("engine run:\ngot:\n%s\nwant:\n%s", got, want)
			}
		})
	}
}

func runFile(t *testing.T, b api.DriverBuilder, path string) {
	t.Helper()
	if _, err := b.Build().RunFile(path); err != nil {
		t.Fatalf("load %s: %v", path, err)
	}
}
