package jack

import (
	"strings"
	"testing"
)

func TestCompilePointClass(t *testing.T) {
	src := `
class Point {
    field int x, y;

    constructor Point new(int ax, int ay) {
        let x = ax;
        let y = ay;
        return this;
    }

    method int getX() {
        return x;
    }

    function int add(int a, int b) {
        return a + b;
    }
}
`
	lines, diags := Compile(src, "Point")
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	out := strings.Join(lines, "\n")

	wantInOrder := []string{
		"function Point.new 0",
		"push constant 2",
		"call Memory.alloc 1",
		"pop pointer 0",
		"push argument 0",
		"pop this 0",
		"push argument 1",
		"pop this 1",
		"push pointer 0",
		"return",
		"function Point.getX 0",
		"push argument 0",
		"pop pointer 0",
		"push this 0",
		"return",
		"function Point.add 0",
		"push argument 0",
		"push argument 1",
		"add",
		"return",
	}
	assertSubsequence(t, lines, wantInOrder)
	_ = out
}

func TestCompileArrayAssignment(t *testing.T) {
	src := `
class Main {
    function void fill(Array a, int i, int v) {
        let a[i] = v;
        return;
    }
}
`
	lines, diags := Compile(src, "Main")
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	want := []string{
		"function Main.fill 0",
		"push argument 1",
		"push argument 0",
		"add",
		"push argument 2",
		"pop temp 0",
		"pop pointer 1",
		"push temp 0",
		"pop that 0",
		"push constant 0",
		"return",
	}
	assertSubsequence(t, lines, want)
}

func TestCompileIfWhileLabelsAreUnique(t *testing.T) {
	src := `
class Main {
    function void loop(int n) {
        while (n > 0) {
            if (n) {
                let n = n - 1;
            }
        }
        return;
    }
}
`
	lines, diags := Compile(src, "Main")
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	out := strings.Join(lines, "\n")
	for _, label := range []string{"WHILE_EXP1", "WHILE_END1", "IF_TRUE2", "IF_FALSE2"} {
		if !strings.Contains(out, label) {
			t.Errorf("expected label %q in output:\n%s", label, out)
		}
	}
}

func TestCompileReportsUndeclaredVariable(t *testing.T) {
	src := `
class Main {
    function void oops() {
        let q = 1;
        return;
    }
}
`
	_, diags := Compile(src, "Main")
	if len(diags) == 0 {
		t.Fatal("expected a diagnostic for the undeclared variable q")
	}
}

// assertSubsequence checks that want appears, in order, as a (not
// necessarily contiguous) subsequence of got.
func assertSubsequence(t *testing.T, got []string, want []string) {
	t.Helper()
	i := 0
	for _, line := range got {
		if i < len(want) && line == want[i] {
			i++
		}
	}
	if i != len(want) {
		t.Fatalf("missing %q at position %d in output:\n%s", want[i], i, strings.Join(got, "\n"))
	}
}
