package hdl

import (
	"bytes"
	"testing"
)

const andSource = `
CHIP And {
    IN a, b;
    OUT out;
    PARTS:
    Nand(a=a, b=b, out=w);
    Nand(a=w, b=w, out=out);
}
`

func TestParseChip(t *testing.T) {
	p := NewParser(andSource, "And.hdl")
	chip, diags := p.Parse()
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if chip.name != "And" {
		t.Fatalf("chip.name = %q, want And", chip.name)
	}
	if len(chip.in) != 2 || len(chip.out) != 1 {
		t.Fatalf("chip.in = %v, chip.out = %v", chip.in, chip.out)
	}
	if len(chip.body) != 2 {
		t.Fatalf("chip.body has %d parts, want 2", len(chip.body))
	}
}

func TestParseChipRecoversFromError(t *testing.T) {
	src := `
CHIP Bad {
    IN a b;
    OUT out;
    PARTS:
    Nand(a=a, b=a, out=out);
}
`
	p := NewParser(src, "Bad.hdl")
	chip, diags := p.Parse()
	if len(diags) == 0 {
		t.Fatal("expected a diagnostic for the missing comma between a and b")
	}
	if chip == nil {
		t.Fatal("parser should still return a partial chipDecl after recovering")
	}
}

func TestChipMetaLookupExactAndPrefix(t *testing.T) {
	m := &ChipMeta{
		Name:    "Mux16",
		Inputs:  []BusEntry{{"a", 0, 16}, {"b", 16, 16}, {"sel", 32, 1}},
		Outputs: []BusEntry{{"out", 0, 16}},
	}
	m.index()

	if _, ok := m.Lookup("sel"); !ok {
		t.Fatal("exact lookup of sel failed")
	}
	if got, ok := m.Lookup("se"); !ok || got.Name != "sel" {
		t.Fatalf("unambiguous prefix lookup of se = (%v, %v), want (sel, true)", got, ok)
	}
	if _, ok := m.Lookup("nope"); ok {
		t.Fatal("lookup of an unknown name should fail")
	}
	if !m.IsOutput("out") || m.IsOutput("a") {
		t.Fatal("IsOutput misclassified a bus")
	}
}

func TestMetaRoundTrip(t *testing.T) {
	m := &ChipMeta{
		Name:    "Mux16",
		Inputs:  []BusEntry{{"a", 0, 16}, {"b", 16, 16}, {"sel", 32, 1}},
		Outputs: []BusEntry{{"out", 0, 16}},
	}
	m.index()

	var buf bytes.Buffer
	if err := WriteMeta(&buf, m); err != nil {
		t.Fatalf("WriteMeta: %v", err)
	}
	got, err := ReadMeta(&buf)
	if err != nil {
		t.Fatalf("ReadMeta: %v", err)
	}
	if got.Name != m.Name || len(got.Inputs) != 3 || len(got.Outputs) != 1 {
		t.Fatalf("round-tripped meta = %+v", got)
	}
	if got.Inputs[2].Name != "sel" || got.Inputs[2].Size != 1 {
		t.Fatalf("sel entry round-tripped as %+v", got.Inputs[2])
	}
}

func TestBuildAndRecipe(t *testing.T) {
	p := NewParser(andSource, "And.hdl")
	chip, diags := p.Parse()
	if len(diags) > 0 {
		t.Fatalf("parse: %v", diags)
	}
	lines, meta, buildDiags := Build(chip, NewMapProvider())
	if len(buildDiags) > 0 {
		t.Fatalf("build: %v", buildDiags)
	}
	if meta.Name != "And" || len(meta.Inputs) != 2 || len(meta.Outputs) != 1 {
		t.Fatalf("meta = %+v", meta)
	}

	var ops []string
	for _, l := range lines {
		ops = append(ops, l.Op)
	}
	// Each PARTS entry emits its "add" immediately followed by that part's
	// own wires, so two subgates do not produce two consecutive "add"s.
	wantPrefix := []string{"need", "create", "input", "output", "add"}
	if len(ops) < len(wantPrefix) {
		t.Fatalf("lines = %v, too short", ops)
	}
	for i, op := range wantPrefix {
		if ops[i] != op {
			t.Fatalf("lines[%d].Op = %q, want %q (full: %v)", i, ops[i], op, ops)
		}
	}
	if ops[len(ops)-1] != "x" {
		t.Fatalf("last line op = %q, want x", ops[len(ops)-1])
	}
}

func TestCompileReportsUnknownPin(t *testing.T) {
	src := `
CHIP Bad {
    IN a, b;
    OUT out;
    PARTS:
    Nand(a=a, b=b, notapin=out);
}
`
	_, _, diags := Compile(src, "Bad.hdl", NewMapProvider())
	if len(diags) == 0 {
		t.Fatal("expected a diagnostic for the unknown pin notapin")
	}
}
