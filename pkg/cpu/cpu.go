package cpu

import (
	"github.com/retroenv/retrogolib/log"
)

// Quirks select between divergent reference-machine behaviours.
type Quirks struct {
	// ShiftUsesVY makes 8XY6/8XYE shift VY into VX instead of shifting VX in place.
	ShiftUsesVY bool
	// JumpUsesVX makes BNNN jump to NNN+VX (X being the top nibble of NNN)
	// instead of NNN+V0.
	JumpUsesVX bool
}

// Options configures a new CPU. The zero value is a usable default.
type Options struct {
	Quirks     Quirks
	DrawPolicy DrawPolicy
	Random     Random
	Clock      Clock
	Logger     *log.Logger

	// Trace logs every executed instruction at debug level.
	Trace bool
}

// CPU is the whole machine: it owns memory, registers, the program
// counter, the delay timer and the display. Nothing is shared between
// instances.
type CPU struct {
	Regs    Registers
	PC      uint16
	Memory  *Memory
	Display *Display
	Delay   *Timer

	// SoundTimer is stored for hosts to inspect; it never produces sound.
	SoundTimer byte

	Quirks Quirks
	Random Random

	// Waiting is set by FX0A until a key is held.
	Waiting bool
	waitReg uint8

	Halted bool
	Fault  error

	// Cycles counts executed instructions.
	Cycles uint64

	logger *log.Logger
	trace  bool
}

func NewCPU(opts Options) *CPU {
	rnd := opts.Random
	if rnd == nil {
		rnd = NewRandom()
	}
	return &CPU{
		PC:      ProgramStart,
		Memory:  NewMemory(),
		Display: NewDisplay(opts.DrawPolicy),
		Delay:   NewTimer(opts.Clock),
		Quirks:  opts.Quirks,
		Random:  rnd,
		logger:  opts.Logger,
		trace:   opts.Trace && opts.Logger != nil,
	}
}

// Load copies a program image into memory at ProgramStart.
func (c *CPU) Load(image []byte) error {
	if err := c.Memory.Load(image); err != nil {
		return err
	}
	if c.logger != nil {
		c.logger.Debug("Program loaded",
			log.Hex("address", ProgramStart),
			log.Int("size", len(image)))
	}
	return nil
}

// Step executes exactly one instruction using keys as the key-state
// snapshot. A fatal error halts the machine; every later call returns the
// same fault.
func (c *CPU) Step(keys Keys) error {
	if c.Halted {
		if c.Fault != nil {
			return c.Fault
		}
		return ErrHalted
	}

	if c.Waiting {
		key, ok := firstPressed(keys)
		if !ok {
			return nil
		}
		c.Regs.Set(c.waitReg, key)
		c.Waiting = false
		return nil
	}

	pc := c.PC
	word, err := c.Memory.Fetch(pc)
	if err != nil {
		return c.halt(pc, err)
	}

	ins := Decode(word)
	if c.trace {
		c.logger.Debug("Executing instruction",
			log.Hex("address", pc),
			log.Hex("word", word),
			log.String("instruction", ins.String()))
	}

	if err := c.execute(pc, ins, keys); err != nil {
		return c.halt(pc, err)
	}
	c.Cycles++
	return nil
}

// RunCycles steps up to n times and returns how many steps ran. It stops
// early on a fault.
func (c *CPU) RunCycles(n int, keys Keys) (int, error) {
	for i := 0; i < n; i++ {
		if err := c.Step(keys); err != nil {
			return i, err
		}
	}
	return n, nil
}

func (c *CPU) halt(pc uint16, err error) error {
	c.Halted = true
	c.Fault = &Fault{PC: pc, Err: err}
	if c.logger != nil {
		c.logger.Error("Machine halted",
			log.Hex("address", pc),
			log.Err(err))
	}
	return c.Fault
}

func (c *CPU) next() {
	c.PC += 2
}

func (c *CPU) skip() {
	c.PC += 4
}

func (c *CPU) skipIf(cond bool) {
	if cond {
		c.skip()
	} else {
		c.next()
	}
}

func (c *CPU) jump(addr uint16) {
	c.PC = addr
}
