package core

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
	"github.com/sarchlab/stackvm/program"
)

type machineState struct {
	PC       int
	Operands Stack[*apd.Decimal]
	Calls    Stack[int]

	Code *program.Program
}

type instEmulator struct {
	console Console
}

// RunInst executes one decoded instruction. PC already points at the next
// line. halted is true when RET finds an empty call stack.
func (i instEmulator) RunInst(inst program.Inst, state *machineState) (halted bool, err error) {
	switch inst.Mnemonic {
	case program.PUSH:
		err = i.runPush(inst, state)
	case program.PEEK:
		i.runPeek(inst, state)
	case program.POP:
		i.runPop(inst, state)
	case program.DUP:
		err = i.runDup(state)
	case program.SWAP:
		err = i.runSwap(state)
	case program.DROP:
		_, err = i.pop(state)

	case program.CALL:
		err = i.runCall(inst, state)
	case program.RET:
		halted = i.runRet(state)

	case program.ADD:
		err = i.runBinary(state, add)
	case program.SUB:
		err = i.runBinary(state, sub)
	case program.MUL:
		err = i.runBinary(state, mul)
	case program.DIV:
		err = i.runBinary(state, quo)
	case program.MOD:
		err = i.runBinary(state, rem)
	case program.SUM:
		err = i.runReduce(state, decimalZero, add)
	case program.PROD:
		err = i.runReduce(state, decimalOne, mul)
	case program.SQRT:
		err = i.runSqrt(state)

	case program.BEQ:
		err = i.runCompare(inst, state, func(c int) bool { return c == 0 })
	case program.BNEQ:
		err = i.runCompare(inst, state, func(c int) bool { return c != 0 })
	case program.BGT:
		err = i.runCompare(inst, state, func(c int) bool { return c > 0 })
	case program.BGE:
		err = i.runCompare(inst, state, func(c int) bool { return c >= 0 })
	case program.BLT:
		err = i.runCompare(inst, state, func(c int) bool { return c < 0 })
	case program.BLE:
		err = i.runCompare(inst, state, func(c int) bool { return c <= 0 })
	case program.BEZ:
		err = i.runCompareZero(inst, state, func(c int) bool { return c == 0 })
	case program.BNEZ:
		err = i.runCompareZero(inst, state, func(c int) bool { return c != 0 })
	case program.JMP:
		err = i.Jump(inst.Arg, state)

	default:
		panic(fmt.Sprintf("unknown mnemonic %s at line %d", inst.Mnemonic, inst.Line))
	}

	if err != nil {
		return false, &RuntimeError{Mnemonic: inst.Mnemonic, Line: inst.Line, Err: err}
	}

	return halted, nil
}

func (i instEmulator) pop(state *machineState) (*apd.Decimal, error) {
	v, ok := state.Operands.Pop()
	if !ok {
		return nil, ErrStackUnderflow
	}
	return v, nil
}

func (i instEmulator) runPush(inst program.Inst, state *machineState) error {
	v, err := program.ParseDecimal(inst.Arg)
	if err != nil {
		return err
	}

	state.Operands.Push(v)
	return nil
}

func (i instEmulator) runPeek(inst program.Inst, state *machineState) {
	v, ok := state.Operands.Peek()
	i.console.WriteLine(formatPrint("PEEK", inst.Arg, inst.HasArg, formatValue(v, ok)))
}

func (i instEmulator) runPop(inst program.Inst, state *machineState) {
	v, ok := state.Operands.Pop()
	i.console.WriteLine(formatPrint("POP", inst.Arg, inst.HasArg, formatValue(v, ok)))
}

func (i instEmulator) runDup(state *machineState) error {
	v, ok := state.Operands.Peek()
	if !ok {
		return ErrStackUnderflow
	}

	state.Operands.Push(v)
	return nil
}

func (i instEmulator) runSwap(state *machineState) error {
	if state.Operands.Len() < 2 {
		return ErrStackUnderflow
	}

	top, _ := state.Operands.Pop()
	lower, _ := state.Operands.Pop()
	state.Operands.Push(top)
	state.Operands.Push(lower)
	return nil
}

func (i instEmulator) runCall(inst program.Inst, state *machineState) error {
	state.Calls.Push(state.PC)
	return i.Jump(inst.Arg, state)
}

func (i instEmulator) runRet(state *machineState) bool {
	pc, ok := state.Calls.Pop()
	if !ok {
		return true
	}

	state.PC = pc
	return false
}

// runBinary pops the right operand, then the left one, and pushes op(left, right).
func (i instEmulator) runBinary(
	state *machineState,
	op func(left, right *apd.Decimal) (*apd.Decimal, error),
) error {
	right, err := i.pop(state)
	if err != nil {
		return err
	}
	left, err := i.pop(state)
	if err != nil {
		return err
	}

	res, err := op(left, right)
	if err != nil {
		return err
	}

	state.Operands.Push(res)
	return nil
}

// runReduce folds the whole stack into a single value.
func (i instEmulator) runReduce(
	state *machineState,
	identity *apd.Decimal,
	op func(acc, v *apd.Decimal) (*apd.Decimal, error),
) error {
	acc := new(apd.Decimal).Set(identity)
	for {
		v, ok := state.Operands.Pop()
		if !ok {
			break
		}

		var err error
		acc, err = op(acc, v)
		if err != nil {
			return err
		}
	}

	state.Operands.Push(acc)
	return nil
}

func (i instEmulator) runSqrt(state *machineState) error {
	v, err := i.pop(state)
	if err != nil {
		return err
	}

	res, err := sqrt(v)
	if err != nil {
		return err
	}

	state.Operands.Push(res)
	return nil
}

// runCompare pops the right comparand, then the left one, and jumps when
// pred(left.Cmp(right)) holds. Both operands are consumed either way.
func (i instEmulator) runCompare(
	inst program.Inst,
	state *machineState,
	pred func(int) bool,
) error {
	right, err := i.pop(state)
	if err != nil {
		return err
	}
	left, err := i.pop(state)
	if err != nil {
		return err
	}

	if pred(left.Cmp(right)) {
		return i.Jump(inst.Arg, state)
	}
	return nil
}

func (i instEmulator) runCompareZero(
	inst program.Inst,
	state *machineState,
	pred func(int) bool,
) error {
	v, err := i.pop(state)
	if err != nil {
		return err
	}

	if pred(v.Cmp(decimalZero)) {
		return i.Jump(inst.Arg, state)
	}
	return nil
}

// Jump sets PC to a "=n" line number or a ">label" declaration.
func (i instEmulator) Jump(arg string, state *machineState) error {
	target, err := program.ParseTarget(arg, state.Code.Len())
	if err != nil {
		return err
	}

	switch target.Kind {
	case program.LiteralTarget:
		state.PC = target.Index
	case program.LabelTarget:
		idx, ok := state.Code.Label(target.Label)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownLabel, target.Label)
		}
		state.PC = idx
	}

	return nil
}
