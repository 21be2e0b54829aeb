package jack

import "fmt"

// Diagnostic is a compile-time error with source position.
type Diagnostic struct {
	Line    int
	Message string
}

func (d Diagnostic) Error() string { return fmt.Sprintf("line %d: %s", d.Line, d.Message) }

// Compile lowers one Jack class source file directly to VM instruction
// text, one line per VM command, ready for vm.Translate.
func Compile(src, className string) ([]string, []Diagnostic) {
	c := &compiler{toks: Tokenize(src), syms: newSymbolTable(), class: className}
	c.compileClass()
	return c.out, c.errs
}

type compiler struct {
	toks     []token
	pos      int
	class    string
	syms     *symbolTable
	out      []string
	labelSeq int
	errs     []Diagnostic
}

func (c *compiler) cur() token  { return c.toks[c.pos] }
func (c *compiler) advance()    { if c.pos < len(c.toks)-1 { c.pos++ } }
func (c *compiler) errorf(format string, args ...interface{}) {
	c.errs = append(c.errs, Diagnostic{Line: c.cur().line, Message: fmt.Sprintf(format, args...)})
}

func (c *compiler) emit(format string, args ...interface{}) {
	c.out = append(c.out, fmt.Sprintf(format, args...))
}

func (c *compiler) expectKeyword(kw string) bool {
	if c.cur().kind != tKeyword || c.cur().text != kw {
		c.errorf("expected keyword %q, got %q", kw, c.cur().text)
		return false
	}
	c.advance()
	return true
}

func (c *compiler) expectSymbol(sym string) bool {
	if c.cur().kind != tSymbol || c.cur().text != sym {
		c.errorf("expected %q, got %q", sym, c.cur().text)
		return false
	}
	c.advance()
	return true
}

func (c *compiler) expectIdent() string {
	if c.cur().kind != tIdent {
		c.errorf("expected identifier, got %q", c.cur().text)
		return ""
	}
	name := c.cur().text
	c.advance()
	return name
}

func (c *compiler) atSymbol(sym string) bool  { return c.cur().kind == tSymbol && c.cur().text == sym }
func (c *compiler) atKeyword(kw string) bool  { return c.cur().kind == tKeyword && c.cur().text == kw }

func (c *compiler) isTypeToken() bool {
	t := c.cur()
	if t.kind == tIdent {
		return true
	}
	return t.kind == tKeyword && (t.text == "int" || t.text == "char" || t.text == "boolean")
}

func (c *compiler) parseType() string {
	t := c.cur().text
	c.advance()
	return t
}

// compileClass parses the sole top-level production of a Jack file.
func (c *compiler) compileClass() {
	if !c.expectKeyword("class") {
		return
	}
	c.class = c.expectIdent()
	if !c.expectSymbol("{") {
		return
	}
	for c.atKeyword("static") || c.atKeyword("field") {
		c.compileClassVarDec()
	}
	for c.atKeyword("constructor") || c.atKeyword("function") || c.atKeyword("method") {
		c.compileSubroutine()
	}
	c.expectSymbol("}")
}

func (c *compiler) compileClassVarDec() {
	k := kindStatic
	if c.cur().text == "field" {
		k = kindField
	}
	c.advance()
	typ := c.parseType()
	name := c.expectIdent()
	c.syms.define(name, typ, k)
	for c.atSymbol(",") {
		c.advance()
		name = c.expectIdent()
		c.syms.define(name, typ, k)
	}
	c.expectSymbol(";")
}

func (c *compiler) compileSubroutine() {
	subKind := c.cur().text
	c.advance()
	if c.atKeyword("void") {
		c.advance()
	} else {
		c.parseType()
	}
	name := c.expectIdent()
	c.syms.startSubroutine()
	if subKind == "method" {
		c.syms.define("this", c.class, kindArgument)
	}
	c.expectSymbol("(")
	c.compileParameterList()
	c.expectSymbol(")")

	c.expectSymbol("{")
	nLocals := 0
	for c.atKeyword("var") {
		nLocals += c.compileVarDec()
	}

	c.emit("function %s.%s %d", c.class, name, nLocals)
	switch subKind {
	case "constructor":
		c.emit("push constant %d", c.syms.fieldCount())
		c.emit("call Memory.alloc 1")
		c.emit("pop pointer 0")
	case "method":
		c.emit("push argument 0")
		c.emit("pop pointer 0")
	}

	c.compileStatements()
	c.expectSymbol("}")
}

func (c *compiler) compileParameterList() {
	if !c.isTypeToken() {
		return
	}
	typ := c.parseType()
	name := c.expectIdent()
	c.syms.define(name, typ, kindArgument)
	for c.atSymbol(",") {
		c.advance()
		typ = c.parseType()
		name = c.expectIdent()
		c.syms.define(name, typ, kindArgument)
	}
}

func (c *compiler) compileVarDec() int {
	c.advance() // 'var'
	typ := c.parseType()
	n := 1
	name := c.expectIdent()
	c.syms.define(name, typ, kindLocal)
	for c.atSymbol(",") {
		c.advance()
		name = c.expectIdent()
		c.syms.define(name, typ, kindLocal)
		n++
	}
	c.expectSymbol(";")
	return n
}

func (c *compiler) compileStatements() {
	for {
		switch {
		case c.atKeyword("let"):
			c.compileLet()
		case c.atKeyword("if"):
			c.compileIf()
		case c.atKeyword("while"):
			c.compileWhile()
		case c.atKeyword("do"):
			c.compileDo()
		case c.atKeyword("return"):
			c.compileReturn()
		default:
			return
		}
	}
}

func (c *compiler) compileLet() {
	c.advance()
	name := c.expectIdent()
	isArray := false
	if c.atSymbol("[") {
		isArray = true
		c.advance()
		c.compileExpression()
		c.expectSymbol("]")
		c.pushVar(name)
		c.emit("add")
	}
	c.expectSymbol("=")
	c.compileExpression()
	c.expectSymbol(";")

	if isArray {
		c.emit("pop temp 0")
		c.emit("pop pointer 1")
		c.emit("push temp 0")
		c.emit("pop that 0")
	} else {
		c.popVar(name)
	}
}

func (c *compiler) compileIf() {
	c.advance()
	c.expectSymbol("(")
	c.compileExpression()
	c.expectSymbol(")")
	c.labelSeq++
	trueL := fmt.Sprintf("IF_TRUE%d", c.labelSeq)
	falseL := fmt.Sprintf("IF_FALSE%d", c.labelSeq)
	endL := fmt.Sprintf("IF_END%d", c.labelSeq)

	c.emit("if-goto %s", trueL)
	c.emit("goto %s", falseL)
	c.emit("label %s", trueL)
	c.expectSymbol("{")
	c.compileStatements()
	c.expectSymbol("}")

	if c.atKeyword("else") {
		c.emit("goto %s", endL)
		c.emit("label %s", falseL)
		c.advance()
		c.expectSymbol("{")
		c.compileStatements()
		c.expectSymbol("}")
		c.emit("label %s", endL)
	} else {
		c.emit("label %s", falseL)
	}
}

func (c *compiler) compileWhile() {
	c.advance()
	c.labelSeq++
	topL := fmt.Sprintf("WHILE_EXP%d", c.labelSeq)
	endL := fmt.Sprintf("WHILE_END%d", c.labelSeq)

	c.emit("label %s", topL)
	c.expectSymbol("(")
	c.compileExpression()
	c.expectSymbol(")")
	c.emit("not")
	c.emit("if-goto %s", endL)
	c.expectSymbol("{")
	c.compileStatements()
	c.expectSymbol("}")
	c.emit("goto %s", topL)
	c.emit("label %s", endL)
}

func (c *compiler) compileDo() {
	c.advance()
	c.compileSubroutineCall()
	c.expectSymbol(";")
	c.emit("pop temp 0")
}

func (c *compiler) compileReturn() {
	c.advance()
	if c.atSymbol(";") {
		c.emit("push constant 0")
	} else {
		c.compileExpression()
	}
	c.expectSymbol(";")
	c.emit("return")
}

var binOpVM = map[string]string{
	"+": "add", "-": "sub", "&": "and", "|": "or",
	"<": "lt", ">": "gt", "=": "eq",
}

func (c *compiler) compileExpression() {
	c.compileTerm()
	for c.cur().kind == tSymbol && isBinOp(c.cur().text) {
		op := c.cur().text
		c.advance()
		c.compileTerm()
		switch op {
		case "*":
			c.emit("call Math.multiply 2")
		case "/":
			c.emit("call Math.divide 2")
		default:
			c.emit(binOpVM[op])
		}
	}
}

func isBinOp(s string) bool {
	switch s {
	case "+", "-", "*", "/", "&", "|", "<", ">", "=":
		return true
	}
	return false
}

func (c *compiler) compileTerm() {
	t := c.cur()
	switch {
	case t.kind == tIntConst:
		c.emit("push constant %d", t.num)
		c.advance()
	case t.kind == tStringConst:
		c.compileStringConst(t.text)
		c.advance()
	case t.kind == tKeyword && t.text == "true":
		c.emit("push constant 1")
		c.emit("neg")
		c.advance()
	case t.kind == tKeyword && (t.text == "false" || t.text == "null"):
		c.emit("push constant 0")
		c.advance()
	case t.kind == tKeyword && t.text == "this":
		c.emit("push pointer 0")
		c.advance()
	case t.kind == tSymbol && t.text == "(":
		c.advance()
		c.compileExpression()
		c.expectSymbol(")")
	case t.kind == tSymbol && (t.text == "-" || t.text == "~"):
		c.advance()
		c.compileTerm()
		if t.text == "-" {
			c.emit("neg")
		} else {
			c.emit("not")
		}
	case t.kind == tIdent:
		c.compileIdentTerm()
	default:
		c.errorf("unexpected token %q in expression", t.text)
		c.advance()
	}
}

func (c *compiler) compileIdentTerm() {
	name := c.expectIdent()
	switch {
	case c.atSymbol("["):
		c.advance()
		c.compileExpression()
		c.expectSymbol("]")
		c.pushVar(name)
		c.emit("add")
		c.emit("pop pointer 1")
		c.emit("push that 0")
	case c.atSymbol("(") || c.atSymbol("."):
		c.compileSubroutineCallNamed(name)
	default:
		c.pushVar(name)
	}
}

// compileSubroutineCall parses a bare subroutine call appearing as a
// statement (the `do` statement's sole production).
func (c *compiler) compileSubroutineCall() {
	name := c.expectIdent()
	c.compileSubroutineCallNamed(name)
}

func (c *compiler) compileSubroutineCallNamed(name string) {
	callee := name
	nArgs := 0

	if c.atSymbol(".") {
		c.advance()
		member := c.expectIdent()
		if sym, ok := c.syms.lookup(name); ok {
			c.pushVar(name)
			callee = sym.typ + "." + member
			nArgs++
		} else {
			callee = name + "." + member
		}
	} else {
		c.emit("push pointer 0")
		callee = c.class + "." + name
		nArgs++
	}

	c.expectSymbol("(")
	nArgs += c.compileExpressionList()
	c.expectSymbol(")")
	c.emit("call %s %d", callee, nArgs)
}

func (c *compiler) compileExpressionList() int {
	n := 0
	if c.atSymbol(")") {
		return n
	}
	c.compileExpression()
	n++
	for c.atSymbol(",") {
		c.advance()
		c.compileExpression()
		n++
	}
	return n
}

// compileStringConst lowers a string literal to a freshly allocated
// String object built up character by character.
func (c *compiler) compileStringConst(s string) {
	c.emit("push constant %d", len(s))
	c.emit("call String.new 1")
	for _, ch := range s {
		c.emit("push constant %d", ch)
		c.emit("call String.appendChar 2")
	}
}

func (c *compiler) pushVar(name string) {
	sym, ok := c.syms.lookup(name)
	if !ok {
		c.errorf("undeclared variable %q", name)
		return
	}
	c.emit("push %s %d", sym.kind.vmSegment(), sym.index)
}

func (c *compiler) popVar(name string) {
	sym, ok := c.syms.lookup(name)
	if !ok {
		c.errorf("undeclared variable %q", name)
		return
	}
	c.emit("pop %s %d", sym.kind.vmSegment(), sym.index)
}
