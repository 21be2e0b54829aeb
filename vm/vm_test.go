package vm

import (
	"strings"
	"testing"

	"github.com/dcbernard/nandkit/asm"
	"github.com/dcbernard/nandkit/cpu"
)

func TestTranslatePushConstantAdd(t *testing.T) {
	src := `push constant 7
push constant 8
add
`
	lines, diags := Translate(src, "Test")
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	asmSrc := strings.Join(lines, "\n")
	words, adiags := asm.Assemble(asmSrc)
	if len(adiags) > 0 {
		t.Fatalf("assemble: %v", adiags)
	}

	c := cpu.New()
	c.LoadInstructions(words)
	if _, err := c.Process(1000, func(c *cpu.CPU) bool {
		return int(c.PC) >= len(words)
	}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if c.RAM[0] != 257 {
		t.Errorf("SP = %d, want 257", c.RAM[0])
	}
	if c.RAM[256] != 15 {
		t.Errorf("RAM[256] = %d, want 15", c.RAM[256])
	}
}

func TestTranslatePopSegments(t *testing.T) {
	tr := NewTranslator("Test")
	if err := tr.Translate("push", "constant", "42"); err != nil {
		t.Fatal(err)
	}
	if err := tr.Translate("pop", "local", "2"); err != nil {
		t.Fatal(err)
	}
	lines := tr.Emit()
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "@LCL") {
		t.Errorf("pop local should reference LCL:\n%s", joined)
	}
}

func TestTranslateUnknownSegment(t *testing.T) {
	tr := NewTranslator("Test")
	if err := tr.Translate("push", "bogus", "0"); err == nil {
		t.Fatal("expected an error for an unknown segment")
	}
}

func TestCallReturnFrame(t *testing.T) {
	src := `function Main.main 0
push constant 5
call Main.inc 1
return
function Main.inc 0
push argument 0
push constant 1
add
return
`
	lines, diags := Translate(src, "Main")
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	asmSrc := strings.Join(lines, "\n")
	words, adiags := asm.Assemble(asmSrc)
	if len(adiags) > 0 {
		t.Fatalf("assemble: %v", adiags)
	}

	c := cpu.New()
	c.LoadInstructions(words)
	c.RAM[0] = 256
	c.PC = 0
	// Stop as soon as Main.inc's return has written its result back to
	// the caller's argument slot, before falling through into Main.main's
	// own (unprotected, in this minimal fixture) return.
	if _, err := c.Process(5000, func(c *cpu.CPU) bool {
		return c.RAM[256] == 6
	}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if c.RAM[256] != 6 {
		t.Errorf("RAM[256] = %d, want 6 (5 incremented by Main.inc)", c.RAM[256])
	}
}

func TestTranslateSkipsMalformedLine(t *testing.T) {
	src := `push constant 1
bogus
push constant 2
add
`
	_, diags := Translate(src, "Test")
	if len(diags) != 1 {
		t.Fatalf("diags = %v, want exactly one", diags)
	}
}
