package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cockroachdb/apd/v3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sarchlab/stackvm/program"
)

const (
	LevelTrace slog.Level = slog.LevelDebug - 4
)

func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

func decimalStrings(values []*apd.Decimal) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}

// LogState emits a checkpoint after an instruction has executed.
func LogState(inst program.Inst, state *machineState) {
	Trace("StateCheckpoint",
		"Line", inst.Line,
		"Mnemonic", inst.Mnemonic.String(),
		"Arg", inst.Arg,
		"PC", state.PC,
		"Operands", decimalStrings(state.Operands.Snapshot()),
		"Calls", state.Calls.Snapshot(),
	)
}

// StackTableTitle heads the table-format stack dump.
const StackTableTitle = "Remaining stack elements on finish"

// StackTable renders values, top first, as a table under a title line.
func StackTable(values []*apd.Decimal) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Depth", "Value"})

	for i, v := range values {
		depth := fmt.Sprintf("%d", i)
		if i == 0 {
			depth = "TOP"
		}
		t.AppendRow(table.Row{depth, v.String()})
	}
	if len(values) == 0 {
		t.AppendRow(table.Row{"-", "(empty)"})
	}

	return StackTableTitle + "\n" + t.Render()
}
