package asm

import "testing"

func TestAssembleBasic(t *testing.T) {
	src := `
@21
D=A
@16
M=D
`
	words, diags := Assemble(src)
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	want := []uint16{0x0015, 0xEC10, 0x0010, 0xE308}
	if len(words) != len(want) {
		t.Fatalf("got %d words, want %d", len(words), len(want))
	}
	for i, w := range want {
		if words[i] != w {
			t.Errorf("words[%d] = %#04x, want %#04x", i, words[i], w)
		}
	}
}

func TestAssembleLabelsAndVariables(t *testing.T) {
	src := `
@i
M=0
(LOOP)
@i
D=M
@END
D;JGT
@END
0;JMP
(END)
@R0
M=0
`
	words, diags := Assemble(src)
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	// "i" is the first variable seen, so it is allocated RAM[16].
	if words[0] != 16 {
		t.Errorf("first @i resolved to %d, want 16", words[0])
	}
	// LOOP is declared at ROM address 2 (after the first two instructions).
	if words[2] != 16 {
		t.Errorf("second @i resolved to %d, want 16 (same variable)", words[2])
	}
	// END labels the (END) line itself: ROM address 8, after the 8
	// instructions that precede it.
	if words[4] != 8 {
		t.Errorf("first @END resolved to %d, want 8", words[4])
	}
	if words[6] != 8 {
		t.Errorf("second @END resolved to %d, want 8", words[6])
	}
}

func TestAssembleRejectsUnknownComp(t *testing.T) {
	src := "D=Q\n"
	_, diags := Assemble(src)
	if len(diags) == 0 {
		t.Fatal("expected a diagnostic for the unknown comp field Q")
	}
}

func TestAssembleRejectsLabelSymbolClash(t *testing.T) {
	src := "(SP)\n@0\n"
	_, diags := Assemble(src)
	if len(diags) == 0 {
		t.Fatal("expected a diagnostic for a label that redefines SP")
	}
}

func TestAssembleStripsCommentsAndBlankLines(t *testing.T) {
	src := `
// a full line comment

@1 // trailing comment
D=A
`
	words, diags := Assemble(src)
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(words) != 2 {
		t.Fatalf("got %d words, want 2", len(words))
	}
	if words[0] != 1 {
		t.Errorf("words[0] = %d, want 1", words[0])
	}
}
