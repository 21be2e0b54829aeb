package hdl

import (
	"fmt"
)

// pinRef is a parsed pin expression on either side of a PARTS connection:
// a bare name, a single index, or a range.
type pinRef struct {
	name       string
	hasIndex   bool
	start, end int // end == start for a single index
}

func (p pinRef) String() string {
	if !p.hasIndex {
		return p.name
	}
	if p.start == p.end {
		return fmt.Sprintf("%s[%d]", p.name, p.start)
	}
	return fmt.Sprintf("%s[%d..%d]", p.name, p.start, p.end)
}

type partConn struct {
	formal pinRef
	actual pinRef
	line   int
}

type partStmt struct {
	chip  string
	conns []partConn
	line  int
}

type busDecl struct {
	name string
	size int // 0 means a plain single-bit pin
	line int
}

// chipDecl is the parsed form of one CHIP block.
type chipDecl struct {
	name string
	in   []busDecl
	out  []busDecl
	body []partStmt
}

// Diagnostic mirrors the shape of nandkit.Diagnostic without importing
// the root package, so hdl stays a leaf dependency the way the teacher's
// internal/hdl package does.
type Diagnostic struct {
	Line    int
	Column  int
	Message string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("line %d, col %d: %s", d.Line, d.Column, d.Message)
}

// Parser is a recursive-descent parser over the CHIP/IN/OUT/PARTS
// grammar. Parse errors are accumulated rather than raised immediately:
// the parser resynchronizes at CHIP, IN, OUT, PARTS or the next ';' so a
// single run reports every problem in the file.
type Parser struct {
	lx   *lexer
	tok  token
	name string
	errs []Diagnostic
}

// NewParser creates a parser over the given HDL source. name is used only
// in diagnostic messages (typically the source file name).
func NewParser(source, name string) *Parser {
	p := &Parser{lx: newLexer(source), name: name}
	p.advance()
	return p
}

func (p *Parser) advance()         { p.tok = p.lx.next() }
func (p *Parser) errorf(format string, args ...interface{}) {
	p.errs = append(p.errs, Diagnostic{Line: p.tok.line, Column: p.tok.col, Message: fmt.Sprintf(format, args...)})
}

// synchronize skips tokens until a keyword, a ';', or EOF, so parsing can
// continue after an error instead of aborting the whole file.
func (p *Parser) synchronize() {
	for p.tok.kind != tokEOF {
		if p.tok.kind == tokKeyword || p.tok.kind == tokSemi {
			if p.tok.kind == tokSemi {
				p.advance()
			}
			return
		}
		p.advance()
	}
}

func (p *Parser) expect(k tokenKind, what string) (token, bool) {
	if p.tok.kind != k {
		p.errorf("expected %s, got %q", what, p.tok.text)
		return token{}, false
	}
	t := p.tok
	p.advance()
	return t, true
}

// Parse parses a single CHIP declaration and returns it together with any
// diagnostics collected along the way. A non-nil chipDecl may still carry
// diagnostics for recoverable errors inside PARTS.
func (p *Parser) Parse() (*chipDecl, []Diagnostic) {
	chip := p.parseChip()
	return chip, p.errs
}

func (p *Parser) parseChip() *chipDecl {
	if p.tok.kind != tokKeyword || p.tok.text != "CHIP" {
		p.errorf("expected CHIP")
		p.synchronize()
		return nil
	}
	p.advance()
	nameTok, ok := p.expect(tokIdent, "chip name")
	if !ok {
		p.synchronize()
		return nil
	}
	c := &chipDecl{name: nameTok.text}
	if _, ok := p.expect(tokLBrace, "'{'"); !ok {
		p.synchronize()
		return c
	}

	for p.tok.kind == tokKeyword && (p.tok.text == "IN" || p.tok.text == "OUT") {
		isOut := p.tok.text == "OUT"
		p.advance()
		decls := p.parseBusList()
		if isOut {
			c.out = append(c.out, decls...)
		} else {
			c.in = append(c.in, decls...)
		}
	}

	if p.tok.kind == tokKeyword && p.tok.text == "PARTS" {
		p.advance()
		if _, ok := p.expect(tokColon, "':'"); !ok {
			p.synchronize()
		}
		for p.tok.kind == tokIdent {
			c.body = append(c.body, p.parsePart())
		}
	}

	if p.tok.kind == tokRBrace {
		p.advance()
	} else {
		p.errorf("expected '}'")
	}
	return c
}

func (p *Parser) parseBusList() []busDecl {
	var out []busDecl
	for {
		nameTok, ok := p.expect(tokIdent, "pin name")
		if !ok {
			p.synchronize()
			return out
		}
		d := busDecl{name: nameTok.text, line: nameTok.line}
		if p.tok.kind == tokLBracket {
			p.advance()
			sz, ok := p.expect(tokInt, "bus size")
			if ok {
				d.size = sz.num
			}
			p.expect(tokRBracket, "']'")
		}
		out = append(out, d)
		if p.tok.kind == tokComma {
			p.advance()
			continue
		}
		break
	}
	p.expect(tokSemi, "';'")
	return out
}

func (p *Parser) parsePart() partStmt {
	nameTok := p.tok
	p.advance()
	stmt := partStmt{chip: nameTok.text, line: nameTok.line}
	if _, ok := p.expect(tokLParen, "'('"); !ok {
		p.synchronize()
		return stmt
	}
	if p.tok.kind != tokRParen {
		for {
			conn, ok := p.parseConn()
			if ok {
				stmt.conns = append(stmt.conns, conn)
			}
			if p.tok.kind == tokComma {
				p.advance()
				continue
			}
			break
		}
	}
	p.expect(tokRParen, "')'")
	p.expect(tokSemi, "';'")
	return stmt
}

func (p *Parser) parseConn() (partConn, bool) {
	line := p.tok.line
	formal, ok := p.parsePinRef()
	if !ok {
		p.synchronize()
		return partConn{}, false
	}
	if _, ok := p.expect(tokEquals, "'='"); !ok {
		p.synchronize()
		return partConn{}, false
	}
	actual, ok := p.parsePinRef()
	if !ok {
		p.synchronize()
		return partConn{}, false
	}
	return partConn{formal: formal, actual: actual, line: line}, true
}

func (p *Parser) parsePinRef() (pinRef, bool) {
	nameTok, ok := p.expect(tokIdent, "pin name")
	if !ok {
		return pinRef{}, false
	}
	ref := pinRef{name: nameTok.text}
	if p.tok.kind != tokLBracket {
		return ref, true
	}
	p.advance()
	startTok, ok := p.expect(tokInt, "index")
	if !ok {
		return ref, false
	}
	ref.hasIndex = true
	ref.start = startTok.num
	ref.end = startTok.num
	if p.tok.kind == tokDotDot {
		p.advance()
		endTok, ok := p.expect(tokInt, "range end")
		if !ok {
			return ref, false
		}
		ref.end = endTok.num
	}
	p.expect(tokRBracket, "']'")
	return ref, true
}
