package core

import (
	"github.com/sarchlab/akita/v4/sim"
)

// Core runs a Machine on an akita engine, one instruction line per tick.
type Core struct {
	*sim.TickingComponent

	machine *Machine
	cycles  uint64
}

// Start schedules the first tick. The core keeps ticking until the machine
// terminates.
func (c *Core) Start() {
	c.TickNow()
}

// Tick runs the program for one cycle.
func (c *Core) Tick() (madeProgress bool) {
	if c.machine.Done() {
		return false
	}

	c.cycles++
	c.machine.Step()

	return !c.machine.Done()
}

// Machine returns the machine driven by this core.
func (c *Core) Machine() *Machine {
	return c.machine
}

// Cycles returns the number of ticks that executed an instruction.
func (c *Core) Cycles() uint64 {
	return c.cycles
}

// Result returns the machine result.
func (c *Core) Result() Result {
	return c.machine.Result()
}
