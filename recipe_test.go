package nandkit

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseRecipeValid(t *testing.T) {
	src := `
# a comment, and a blank line follow

need nand
create And
input 2
output 1
add nand
add nand
wire 0 2
wire 1 3
wire 1001 4
wire 1001 5
wire 1002 1000
x And
`
	rec, diags := ParseRecipe(strings.NewReader(src))
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(rec.Lines) != 12 {
		t.Fatalf("got %d lines, want 12", len(rec.Lines))
	}
	if rec.Lines[0].Op != "need" || rec.Lines[0].Args[0] != "nand" {
		t.Errorf("line 0 = %+v", rec.Lines[0])
	}
	last := rec.Lines[len(rec.Lines)-1]
	if last.Op != "x" || len(last.Args) != 1 || last.Args[0] != "And" {
		t.Errorf("last line = %+v, want \"x And\"", last)
	}
}

func TestParseRecipeMalformedLinesAreCollected(t *testing.T) {
	src := `create And
input notanumber
bogus
wire 1
x And
`
	rec, diags := ParseRecipe(strings.NewReader(src))
	if !diags.HasErrors() {
		t.Fatal("expected diagnostics for malformed lines")
	}
	// create and x are still valid and recorded despite the bad lines
	// in between.
	var ops []string
	for _, l := range rec.Lines {
		ops = append(ops, l.Op)
	}
	want := []string{"create", "x"}
	if len(ops) != len(want) {
		t.Fatalf("ops = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("ops[%d] = %q, want %q", i, ops[i], want[i])
		}
	}
}

func TestLoadRecipeBuildsAnd(t *testing.T) {
	b := NewBoard()
	src := `create And
input 2
output 1
add nand
add nand
wire 0 2
wire 1 3
wire 1001 4
wire 1001 5
wire 1002 1000
x And
`
	rec, diags := ParseRecipe(strings.NewReader(src))
	if diags.HasErrors() {
		t.Fatalf("ParseRecipe: %v", diags)
	}
	ok, diags := b.LoadRecipe(rec)
	if !ok {
		t.Fatalf("LoadRecipe failed: %v", diags)
	}
	if !b.Contains("And") {
		t.Fatal("And was not registered on the board")
	}

	g, err := b.Instantiate("And")
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	g.Inputs[0].SetState(true)
	g.Inputs[1].SetState(true)
	g.Simulate(false)
	if !g.Outputs[0].State() {
		t.Fatal("And(1,1) should be true")
	}
}

func TestLoadRecipeReportsUnknownSubgate(t *testing.T) {
	b := NewBoard()
	src := `create Bad
add notachip
x Bad
`
	rec, diags := ParseRecipe(strings.NewReader(src))
	if diags.HasErrors() {
		t.Fatalf("ParseRecipe: %v", diags)
	}
	ok, diags := b.LoadRecipe(rec)
	if ok {
		t.Fatal("LoadRecipe should fail on an unknown subgate")
	}
	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic for the unknown subgate")
	}
	if b.Contains("Bad") {
		t.Fatal("a gate with an unknown subgate must not be registered")
	}
}

func TestWriteRecipeRoundTrip(t *testing.T) {
	tmpl := buildAnd()
	var buf bytes.Buffer
	if err := WriteRecipe(&buf, "And", tmpl, []string{"nand"}); err != nil {
		t.Fatalf("WriteRecipe: %v", err)
	}

	rec, diags := ParseRecipe(&buf)
	if diags.HasErrors() {
		t.Fatalf("round-tripped recipe failed to parse: %v", diags)
	}

	b := NewBoard()
	ok, diags := b.LoadRecipe(rec)
	if !ok {
		t.Fatalf("round-tripped recipe failed to load: %v", diags)
	}

	g, err := b.Instantiate("And")
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	g.Inputs[0].SetState(true)
	g.Inputs[1].SetState(false)
	g.Simulate(false)
	if g.Outputs[0].State() {
		t.Fatal("round-tripped And(1,0) should be false")
	}
}
