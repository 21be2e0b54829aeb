package cpu

import (
	"strings"
	"testing"
)

func TestDecodeAInstruction(t *testing.T) {
	d := Decode(0x0015)
	if !d.isA || d.a != 21 {
		t.Fatalf("Decode(0x0015) = %+v, want isA=true a=21", d)
	}
}

func TestDecodeCInstruction(t *testing.T) {
	// D=A: comp=A (0b110000), dest=D (0b010), jump none.
	d := Decode(0xEC10)
	if d.isA {
		t.Fatal("0xEC10 should decode as a C-instruction")
	}
	if d.useM {
		t.Fatal("D=A should not address M")
	}
	if !d.destD || d.destA || d.destM {
		t.Fatalf("D=A dest bits = destA=%v destD=%v destM=%v, want only destD", d.destA, d.destD, d.destM)
	}
	if d.jlt || d.jeq || d.jgt {
		t.Fatal("D=A carries no jump")
	}
}

func TestStepLoadAndAssign(t *testing.T) {
	c := New()
	// @21 ; D=A ; @16 ; M=D
	c.LoadInstructions([]uint16{0x0015, 0xEC10, 0x0010, 0xE308})
	for i := 0; i < 4; i++ {
		c.Step()
	}
	if c.RAM[16] != 21 {
		t.Errorf("RAM[16] = %d, want 21", c.RAM[16])
	}
	if c.PC != 4 {
		t.Errorf("PC = %d, want 4", c.PC)
	}
}

func TestStepUnconditionalJump(t *testing.T) {
	c := New()
	// @0 ; 0;JMP  -- jumps to itself forever.
	c.LoadInstructions([]uint16{0x0000, 0b111_0101010_000_111})
	for i := 0; i < 10; i++ {
		c.Step()
	}
	if c.PC != 0 {
		t.Fatalf("PC = %d, want 0 (looping on the unconditional jump)", c.PC)
	}
}

func TestProcessHaltsOnCycleBudget(t *testing.T) {
	c := New()
	c.LoadInstructions([]uint16{0x0000, 0b111_0101010_000_111})
	ran, err := c.Process(5, func(c *CPU) bool { return false })
	if err != ErrEmulatorHalt {
		t.Fatalf("Process err = %v, want ErrEmulatorHalt", err)
	}
	if ran != 5 {
		t.Errorf("ran = %d, want 5", ran)
	}
}

func TestProcessStopsOnCondition(t *testing.T) {
	c := New()
	// @5 ; D=A ; @16 ; M=D ; @0 ; 0;JMP
	c.LoadInstructions([]uint16{
		0x0005, 0xEC10, 0x0010, 0xE308, 0x0000, 0b111_0101010_000_111,
	})
	ran, err := c.Process(1000, func(c *CPU) bool { return c.RAM[16] == 5 })
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if ran != 4 {
		t.Errorf("ran = %d, want 4 (stopped once RAM[16] was written)", ran)
	}
}

func TestPrintStateContainsRegisters(t *testing.T) {
	c := New()
	c.A = 10
	c.D = 20
	s := c.PrintState()
	if s == "" {
		t.Fatal("PrintState returned empty output")
	}
	for _, want := range []string{"A=10", "D=20", "SP=256"} {
		if !strings.Contains(s, want) {
			t.Errorf("PrintState output missing %q:\n%s", want, s)
		}
	}
}
