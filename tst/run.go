package tst

import (
	"fmt"

	"github.com/dcbernard/nandkit"
	"github.com/dcbernard/nandkit/hdl"
	"github.com/google/uuid"
)

// MetaLookup resolves a chip name to its compiled interface so SET and
// REQUIRE can translate a dotted pin name like "g.out" to a pin index.
// The CLI supplies one backed by the same hdl.MapProvider used to
// compile the chips under test.
type MetaLookup func(chip string) (*hdl.ChipMeta, bool)

// Loader fetches (compiling if necessary) the named chip's template and
// registers it on sandbox, per spec §4.6's "LOAD compiles (if needed)
// and loads a chip by name into a sandboxed Board".
type Loader func(sandbox *nandkit.Board, chip string) error

// CaseResult is the outcome of one TEST block.
type CaseResult struct {
	Name     string
	Passed   bool
	Failures []string
}

// SuiteResult is the outcome of running every TEST block in a Script.
// RunID tags the run for correlation in CI logs; it has no semantic
// effect on pass/fail.
type SuiteResult struct {
	RunID string
	Cases []CaseResult
}

func (r SuiteResult) Passed() bool {
	for _, c := range r.Cases {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Runner executes a parsed Script against a sandboxed Board.
type Runner struct {
	Sandbox *nandkit.Board
	Meta    MetaLookup
	Load    Loader
}

// NewRunner creates a Runner over a fresh, non-singleton sandbox Board.
func NewRunner(meta MetaLookup, load Loader) *Runner {
	return &Runner{Sandbox: nandkit.NewBoard(), Meta: meta, Load: load}
}

// Run executes every LOAD and TEST in script and returns a uuid-tagged
// suite report. Run does not see Parse's diagnostics: a TEST block that
// Parse cut short at an error runs with the statements parsed before the
// error, and is not marked failed for the parse error itself.
func (r *Runner) Run(script *Script) (SuiteResult, error) {
	result := SuiteResult{RunID: uuid.NewString()}

	for _, name := range script.Loads {
		if err := r.Load(r.Sandbox, name); err != nil {
			return result, fmt.Errorf("LOAD %s: %w", name, err)
		}
	}

	for _, tc := range script.Tests {
		result.Cases = append(result.Cases, r.runCase(tc))
	}
	return result, nil
}

type testEnv struct {
	vars map[string]*nandkit.Gate
	meta map[string]*hdl.ChipMeta
}

func (r *Runner) runCase(tc testCase) CaseResult {
	cr := CaseResult{Name: tc.Name, Passed: true}
	env := &testEnv{vars: make(map[string]*nandkit.Gate), meta: make(map[string]*hdl.ChipMeta)}

	fail := func(format string, args ...interface{}) {
		cr.Passed = false
		cr.Failures = append(cr.Failures, fmt.Sprintf(format, args...))
	}

	for _, s := range tc.stmts {
		switch s.kind {
		case "var":
			tmpl := r.Sandbox.Get(s.decl.chip)
			if tmpl == nil {
				fail("line %d: VAR %s: unknown chip %q", s.line, s.decl.name, s.decl.chip)
				continue
			}
			meta, ok := r.Meta(s.decl.chip)
			if !ok {
				fail("line %d: VAR %s: no metadata for chip %q", s.line, s.decl.name, s.decl.chip)
				continue
			}
			env.vars[s.decl.name] = tmpl.Duplicate()
			env.meta[s.decl.name] = meta

		case "set":
			v, err := env.evalRHS(s.set.rhs)
			if err != nil {
				fail("line %d: SET: %s", s.line, err)
				continue
			}
			if err := env.assign(s.set.lhs, v); err != nil {
				fail("line %d: SET %s: %s", s.line, s.set.lhs, err)
			}

		case "eval":
			for _, g := range env.vars {
				g.Simulate(false)
			}

		case "require":
			for _, c := range s.require.conds {
				lv, err := env.evalRHS(c.lhs)
				if err != nil {
					fail("line %d: REQUIRE: %s", s.line, err)
					continue
				}
				rv, err := env.evalRHS(c.rhs)
				if err != nil {
					fail("line %d: REQUIRE: %s", s.line, err)
					continue
				}
				ok := lv == rv
				if c.kind == condNot {
					ok = !ok
				}
				if !ok {
					verb := "IS"
					if c.kind == condNot {
						verb = "NOT"
					}
					fail("line %d: REQUIRE %s %s %s failed: %d vs %d", s.line, c.lhs, verb, c.rhs, lv, rv)
				}
			}
		}
	}
	return cr
}

// evalRHS reads a constant or a variable's pin/bus value, packing a bus
// MSB-first into an int.
func (e *testEnv) evalRHS(o operand) (int, error) {
	if o.isConst {
		return o.value, nil
	}
	g, meta, entry, err := e.resolve(o)
	if err != nil {
		return 0, err
	}
	pins := g.Inputs
	if meta.IsOutput(o.pin) {
		pins = g.Outputs
	}
	v := 0
	for i := 0; i < entry.Size; i++ {
		v <<= 1
		if pins[entry.Start+i].State() {
			v |= 1
		}
	}
	return v, nil
}

// assign writes a value to a variable's input pin or bus. It fails with
// a bus-overflow-style error if v doesn't fit in the target bus.
func (e *testEnv) assign(o operand, v int) error {
	g, meta, entry, err := e.resolve(o)
	if err != nil {
		return err
	}
	if meta.IsOutput(o.pin) {
		return fmt.Errorf("cannot SET output pin %q", o.pin)
	}
	if entry.Size < 64 && v >= (1<<uint(entry.Size)) {
		return fmt.Errorf("%w: value %d overflows %d-bit bus %q", nandkit.ErrBusOverflow, v, entry.Size, o.pin)
	}
	for i := 0; i < entry.Size; i++ {
		shift := uint(entry.Size - 1 - i)
		g.Inputs[entry.Start+i].SetState((v>>shift)&1 != 0)
	}
	return nil
}

func (e *testEnv) resolve(o operand) (*nandkit.Gate, *hdl.ChipMeta, hdl.BusEntry, error) {
	g, ok := e.vars[o.varName]
	if !ok {
		return nil, nil, hdl.BusEntry{}, fmt.Errorf("undeclared variable %q", o.varName)
	}
	meta := e.meta[o.varName]
	entry, ok := meta.Lookup(o.pin)
	if !ok {
		return nil, nil, hdl.BusEntry{}, fmt.Errorf("unknown pin %q on %q", o.pin, o.varName)
	}
	return g, meta, entry, nil
}
