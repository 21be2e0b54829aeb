package jack

// kind identifies which of the four Jack variable kinds a symbol table
// entry belongs to. Each kind has its own monotonically increasing
// index counter (spec §4.7).
type kind int

const (
	kindStatic kind = iota
	kindField
	kindArgument
	kindLocal
	kindNone
)

func (k kind) vmSegment() string {
	switch k {
	case kindStatic:
		return "static"
	case kindField:
		return "this"
	case kindArgument:
		return "argument"
	case kindLocal:
		return "local"
	default:
		return ""
	}
}

type symbol struct {
	typ   string
	kind  kind
	index int
}

// symbolTable is a two-scope table: class-level (static/field) entries
// persist for the whole class; subroutine-level (argument/local)
// entries are cleared at the start of each subroutine.
type symbolTable struct {
	class      map[string]symbol
	subroutine map[string]symbol
	counts     [4]int
}

func newSymbolTable() *symbolTable {
	return &symbolTable{class: make(map[string]symbol)}
}

func (t *symbolTable) startSubroutine() {
	t.subroutine = make(map[string]symbol)
	t.counts[kindArgument] = 0
	t.counts[kindLocal] = 0
}

func (t *symbolTable) define(name, typ string, k kind) {
	idx := t.counts[k]
	t.counts[k]++
	sym := symbol{typ: typ, kind: k, index: idx}
	if k == kindStatic || k == kindField {
		t.class[name] = sym
	} else {
		t.subroutine[name] = sym
	}
}

func (t *symbolTable) lookup(name string) (symbol, bool) {
	if s, ok := t.subroutine[name]; ok {
		return s, true
	}
	s, ok := t.class[name]
	return s, ok
}

func (t *symbolTable) fieldCount() int { return t.counts[kindField] }
