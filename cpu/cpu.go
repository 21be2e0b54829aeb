// Package cpu emulates the Hack CPU (component L): a 32K-word
// instruction ROM, a 24577-word data RAM, an A register, a D register
// and a program counter, decoding and executing one 16-bit word per
// tick.
package cpu

import (
	"fmt"
	"strings"
)

const (
	RAMSize = 24577
	ROMSize = 32768

	ScreenBase = 16384
	ScreenEnd  = 24575
	KBD        = 24576
)

// CPU is the emulator's full architectural state.
type CPU struct {
	ROM [ROMSize]uint16
	RAM [RAMSize]uint16

	A, D uint16
	PC   uint16
}

// New returns a CPU with SP initialized to the conventional stack base
// (RAM[256]) and everything else zeroed.
func New() *CPU {
	c := &CPU{}
	c.RAM[0] = 256
	return c
}

// LoadInstructions replaces the contents of ROM starting at address 0
// and resets PC to 0.
func (c *CPU) LoadInstructions(words []uint16) {
	for i := range c.ROM {
		c.ROM[i] = 0
	}
	copy(c.ROM[:], words)
	c.PC = 0
}

// decoded is one decoded instruction's fields, split out per spec §4.7's
// CPU emulator description.
type decoded struct {
	isA bool
	a   uint16 // raw 15-bit address/literal, A-instruction only

	useM             bool // the "a" bit of a C-instruction
	zx, nx, zy, ny   bool
	f, no            bool
	destA, destD, destM bool
	jlt, jeq, jgt    bool
}

// Decode splits a 16-bit instruction word into its fields.
func Decode(word uint16) decoded {
	if word&0x8000 == 0 {
		return decoded{isA: true, a: word & 0x7fff}
	}
	return decoded{
		isA:   false,
		useM:  word&(1<<12) != 0,
		zx:    word&(1<<11) != 0,
		nx:    word&(1<<10) != 0,
		zy:    word&(1<<9) != 0,
		ny:    word&(1<<8) != 0,
		f:     word&(1<<7) != 0,
		no:    word&(1<<6) != 0,
		destA: word&(1<<5) != 0,
		destD: word&(1<<4) != 0,
		destM: word&(1<<3) != 0,
		jlt:   word&(1<<2) != 0,
		jeq:   word&(1<<1) != 0,
		jgt:   word&1 != 0,
	}
}

// Step executes exactly one instruction at PC.
func (c *CPU) Step() {
	d := Decode(c.ROM[c.PC])
	if d.isA {
		c.A = d.a
		c.PC++
		return
	}

	x := c.D
	var y uint16
	if d.useM {
		y = c.RAM[c.A]
	} else {
		y = c.A
	}
	if d.zx {
		x = 0
	}
	if d.nx {
		x = ^x
	}
	if d.zy {
		y = 0
	}
	if d.ny {
		y = ^y
	}
	var r uint16
	if d.f {
		r = x + y
	} else {
		r = x & y
	}
	if d.no {
		r = ^r
	}

	if d.destM {
		c.RAM[c.A] = r
	}
	if d.destA {
		c.A = r
	}
	if d.destD {
		c.D = r
	}

	jump := false
	signed := int16(r)
	switch {
	case signed < 0:
		jump = d.jlt
	case signed == 0:
		jump = d.jeq
	default:
		jump = d.jgt
	}
	if jump {
		c.PC = c.A
	} else {
		c.PC++
	}
}

// Process runs up to cycles ticks, stopping early if until is non-nil
// and reports true. It returns the number of ticks actually executed and
// an error if the cycle budget was exhausted before until was satisfied.
func (c *CPU) Process(cycles int, until func(*CPU) bool) (int, error) {
	for i := 0; i < cycles; i++ {
		if until != nil && until(c) {
			return i, nil
		}
		c.Step()
	}
	if until != nil && until(c) {
		return cycles, nil
	}
	return cycles, errCycleBudget
}

var errCycleBudget = fmt.Errorf("cycle budget exhausted")

// ErrEmulatorHalt is returned by Process when cycles ticks elapsed
// without the until condition becoming true.
var ErrEmulatorHalt = errCycleBudget

// PrintState renders a human-readable dump of registers, the top of the
// stack, the static segment, the current function's locals, and a
// window of the memory-mapped screen, for debugging sessions.
func (c *CPU) PrintState() string {
	var b strings.Builder
	fmt.Fprintf(&b, "PC=%d A=%d D=%d SP=%d LCL=%d ARG=%d THIS=%d THAT=%d\n",
		c.PC, c.A, c.D, c.RAM[0], c.RAM[1], c.RAM[2], c.RAM[3], c.RAM[4])

	sp := int(c.RAM[0])
	fmt.Fprint(&b, "stack:")
	for i := sp - 1; i >= 0 && i >= sp-8; i-- {
		fmt.Fprintf(&b, " %d", c.RAM[i])
	}
	fmt.Fprintln(&b)

	fmt.Fprint(&b, "static:")
	for i := 16; i < 32 && i < RAMSize; i++ {
		fmt.Fprintf(&b, " %d", c.RAM[i])
	}
	fmt.Fprintln(&b)

	lcl := int(c.RAM[1])
	fmt.Fprint(&b, "locals:")
	for i := lcl; i < lcl+8 && i < RAMSize; i++ {
		fmt.Fprintf(&b, " %d", c.RAM[i])
	}
	fmt.Fprintln(&b)

	fmt.Fprint(&b, "screen:")
	for i := ScreenBase; i < ScreenBase+8 && i <= ScreenEnd; i++ {
		fmt.Fprintf(&b, " %04x", c.RAM[i])
	}
	fmt.Fprintln(&b)

	return b.String()
}
