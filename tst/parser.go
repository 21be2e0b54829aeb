package tst

import "fmt"

// operand is either an integer literal or a reference to a variable's
// pin or bus, e.g. "g.out" or the bare 1/0 produced by SET/REQUIRE.
type operand struct {
	isConst bool
	value   int
	varName string
	pin     string
}

func (o operand) String() string {
	if o.isConst {
		return fmt.Sprintf("%d", o.value)
	}
	return o.varName + "." + o.pin
}

type condKind int

const (
	condIs condKind = iota
	condNot
)

type cond struct {
	lhs, rhs operand
	kind     condKind
}

type varDecl struct {
	name, chip string
	line       int
}

type setStmt struct {
	lhs, rhs operand
	line     int
}

type requireStmt struct {
	conds []cond
	line  int
}

// stmt is one statement inside a TEST block: a varDecl, setStmt, the
// literal EVAL marker, or a requireStmt.
type stmt struct {
	kind    string // "var", "set", "eval", "require"
	decl    varDecl
	set     setStmt
	require requireStmt
	line    int
}

type testCase struct {
	Name  string
	stmts []stmt
	line  int
}

// Script is a parsed .tst file: the chips it loads and the test cases
// to run against them.
type Script struct {
	Loads []string
	Tests []testCase
}

// Diagnostic is a parse-time error with source position.
type Diagnostic struct {
	Line    int
	Message string
}

func (d Diagnostic) Error() string { return fmt.Sprintf("line %d: %s", d.Line, d.Message) }

type parser struct {
	sc   *scanner
	t    tok
	errs []Diagnostic
}

// Parse parses a .tst script. Parse errors inside one TEST block abort
// only that block; parsing resumes at the next TEST or LOAD keyword, per
// spec §4.6.
func Parse(source string) (*Script, []Diagnostic) {
	p := &parser{sc: newScanner(source)}
	p.advance()
	s := &Script{}

	for p.t.kind != kEOF {
		switch {
		case p.t.kind == kKeyword && p.t.text == "LOAD":
			p.advance()
			name := p.expectIdent("chip name")
			if name != "" {
				s.Loads = append(s.Loads, name)
			}
			p.expect(kSemi, "';'")
		case p.t.kind == kKeyword && p.t.text == "TEST":
			tc := p.parseTest()
			if tc != nil {
				s.Tests = append(s.Tests, *tc)
			}
		default:
			p.errorf("expected LOAD or TEST, got %q", p.t.text)
			p.resync()
		}
	}
	return s, p.errs
}

func (p *parser) advance() { p.t = p.sc.next() }

func (p *parser) errorf(format string, args ...interface{}) {
	p.errs = append(p.errs, Diagnostic{Line: p.t.line, Message: fmt.Sprintf(format, args...)})
}

func (p *parser) resync() {
	for p.t.kind != kEOF {
		if p.t.kind == kKeyword && (p.t.text == "LOAD" || p.t.text == "TEST") {
			return
		}
		p.advance()
	}
}

func (p *parser) expect(k tokKind, what string) bool {
	if p.t.kind != k {
		p.errorf("expected %s, got %q", what, p.t.text)
		return false
	}
	p.advance()
	return true
}

func (p *parser) expectIdent(what string) string {
	if p.t.kind != kIdent {
		p.errorf("expected %s, got %q", what, p.t.text)
		return ""
	}
	s := p.t.text
	p.advance()
	return s
}

func (p *parser) parseTest() *testCase {
	line := p.t.line
	p.advance() // TEST
	if p.t.kind != kString {
		p.errorf("expected test name string")
		p.resync()
		return nil
	}
	tc := &testCase{Name: p.t.text, line: line}
	p.advance()
	if !p.expect(kLBrace, "'{'") {
		p.resync()
		return tc
	}
	for p.t.kind != kRBrace && p.t.kind != kEOF {
		if p.t.kind != kKeyword {
			p.errorf("unexpected %q in test body", p.t.text)
			p.resync()
			return tc
		}
		switch p.t.text {
		case "VAR":
			tc.stmts = append(tc.stmts, p.parseVar())
		case "SET":
			tc.stmts = append(tc.stmts, p.parseSet())
		case "EVAL":
			l := p.t.line
			p.advance()
			p.expect(kSemi, "';'")
			tc.stmts = append(tc.stmts, stmt{kind: "eval", line: l})
		case "REQUIRE":
			tc.stmts = append(tc.stmts, p.parseRequire())
		default:
			p.errorf("unexpected keyword %q in test body", p.t.text)
			p.resync()
			return tc
		}
	}
	if p.t.kind == kRBrace {
		p.advance()
	} else {
		p.errorf("expected '}' to close test %q", tc.Name)
	}
	return tc
}

func (p *parser) parseVar() stmt {
	line := p.t.line
	p.advance() // VAR
	name := p.expectIdent("variable name")
	p.expect(kColon, "':'")
	chip := p.expectIdent("chip name")
	p.expect(kSemi, "';'")
	return stmt{kind: "var", decl: varDecl{name: name, chip: chip, line: line}, line: line}
}

func (p *parser) parseSet() stmt {
	line := p.t.line
	p.advance() // SET
	lhs := p.parseOperand()
	p.expect(kEquals, "'='")
	rhs := p.parseOperand()
	p.expect(kSemi, "';'")
	return stmt{kind: "set", set: setStmt{lhs: lhs, rhs: rhs, line: line}, line: line}
}

func (p *parser) parseRequire() stmt {
	line := p.t.line
	p.advance() // REQUIRE
	var conds []cond
	for {
		lhs := p.parseOperand()
		var kind condKind
		if p.t.kind == kKeyword && p.t.text == "IS" {
			kind = condIs
			p.advance()
		} else if p.t.kind == kKeyword && p.t.text == "NOT" {
			kind = condNot
			p.advance()
		} else {
			p.errorf("expected IS or NOT, got %q", p.t.text)
			p.resync()
			return stmt{kind: "require", require: requireStmt{conds: conds, line: line}, line: line}
		}
		rhs := p.parseOperand()
		conds = append(conds, cond{lhs: lhs, rhs: rhs, kind: kind})
		if p.t.kind == kKeyword && p.t.text == "AND" {
			p.advance()
			continue
		}
		break
	}
	p.expect(kSemi, "';'")
	return stmt{kind: "require", require: requireStmt{conds: conds, line: line}, line: line}
}

func (p *parser) parseOperand() operand {
	if p.t.kind == kInt {
		v := p.t.num
		p.advance()
		return operand{isConst: true, value: v}
	}
	name := p.expectIdent("variable or constant")
	if !p.expect(kDot, "'.'") {
		return operand{varName: name}
	}
	pin := p.expectIdent("pin name")
	return operand{varName: name, pin: pin}
}
