package main

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/sarchlab/stackvm/api"
	"github.com/tebeka/atexit"
)

//go:embed factorial.svm
var factorialProgram string

func main() {
	driver := api.DriverBuilder{}.
		WithOutput(os.Stdout).
		Build()

	res, err := driver.RunLines(strings.Split(factorialProgram, "\n"))
	if err != nil {
		atexit.Exit(2)
	}

	fmt.Printf("%s after %d steps\n", res.Outcome, res.Steps)
	atexit.Exit(0)
}
