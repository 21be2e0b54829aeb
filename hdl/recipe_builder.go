package hdl

import (
	"fmt"
	"strconv"
	"strings"
)

// MetaProvider resolves a chip name to its compiled interface, so the
// builder can validate PARTS connections and allocate subgate pin
// ranges without needing the simulation package itself (hdl has no
// dependency on the nandkit root package, mirroring the teacher's
// internal/hdl leaf package).
type MetaProvider interface {
	Meta(chip string) (*ChipMeta, bool)
}

// RecipeLine is one emitted line of the .gate recipe format (need,
// create, input, output, add, wire, e -- see nandkit.Recipe).
type RecipeLine struct {
	Op   string
	Args []string
}

// symbol is one entry of the enclosing chip's pin symbol table: the flat
// pin-id range a declared bus, or a subgate's formal pin, occupies.
type symbol struct {
	start int
	size  int
	isOut bool
}

// RecipeBuilder walks a parsed chipDecl and lowers it to a flat recipe
// plus the ChipMeta a dependent chip will later look it up by.
type RecipeBuilder struct {
	provider MetaProvider
	chip     *chipDecl
	deps     []string
	lines    []RecipeLine
	meta     *ChipMeta

	symtab     map[string]symbol
	nextIn     int
	nextOut    int
	subgateIn  []int // running input-pin base offset per added subgate
	subgateOut []int
	diags      []Diagnostic
}

// Build lowers chip to a recipe and metadata. A non-empty diagnostics
// slice does not necessarily mean the recipe is unusable: individual bad
// connections are skipped while the rest of the chip is still emitted so
// callers can see every problem in one pass, per spec §7.
func Build(chip *chipDecl, provider MetaProvider) ([]RecipeLine, *ChipMeta, []Diagnostic) {
	b := &RecipeBuilder{
		provider: provider,
		chip:     chip,
		symtab:   make(map[string]symbol),
		meta:     &ChipMeta{Name: chip.name},
	}
	b.declareIO()
	b.lines = append(b.lines, RecipeLine{Op: "create", Args: []string{chip.name}})
	if n := TotalPins(b.meta.Inputs); n > 0 {
		b.lines = append(b.lines, RecipeLine{Op: "input", Args: []string{strconv.Itoa(n)}})
	}
	if n := TotalPins(b.meta.Outputs); n > 0 {
		b.lines = append(b.lines, RecipeLine{Op: "output", Args: []string{strconv.Itoa(n)}})
	}
	for _, part := range chip.body {
		b.addPart(part)
	}
	// x commits the chip whether or not it happens to be combinational;
	// e is left for the caller to invoke separately once loaded (see
	// nandkit serialize), since a stateful chip can't serialize at all.
	b.lines = append(b.lines, RecipeLine{Op: "x", Args: []string{chip.name}})

	var out []RecipeLine
	for _, d := range b.deps {
		out = append(out, RecipeLine{Op: "need", Args: []string{d}})
	}
	out = append(out, b.lines...)
	b.meta.index()
	return out, b.meta, b.diags
}

func (b *RecipeBuilder) declareIO() {
	start := 0
	for _, d := range b.chip.in {
		size := d.size
		if size == 0 {
			size = 1
		}
		b.symtab[strings.ToLower(d.name)] = symbol{start: start, size: size, isOut: false}
		b.meta.Inputs = append(b.meta.Inputs, BusEntry{Name: d.name, Start: start, Size: size})
		start += size
	}
	b.nextIn = start

	start = 0
	for _, d := range b.chip.out {
		size := d.size
		if size == 0 {
			size = 1
		}
		b.symtab[strings.ToLower(d.name)] = symbol{start: start, size: size, isOut: true}
		b.meta.Outputs = append(b.meta.Outputs, BusEntry{Name: d.name, Start: start, Size: size})
		start += size
	}
	b.nextOut = start
}

func (b *RecipeBuilder) errorf(line int, format string, args ...interface{}) {
	b.diags = append(b.diags, Diagnostic{Line: line, Message: fmt.Sprintf(format, args...)})
}

// addPart allocates a subgate's pin range and emits its wiring, skipping
// (but recording a diagnostic for) any connection that cannot be
// resolved rather than aborting the whole chip.
func (b *RecipeBuilder) addPart(part partStmt) {
	subMeta, ok := b.provider.Meta(part.chip)
	if !ok {
		b.errorf(part.line, "unknown chip %q", part.chip)
		return
	}
	b.noteDep(part.chip)
	b.lines = append(b.lines, RecipeLine{Op: "add", Args: []string{part.chip}})

	inBase := b.nextIn
	outBase := b.nextOut
	b.nextIn += TotalPins(subMeta.Inputs)
	b.nextOut += TotalPins(subMeta.Outputs)

	for _, conn := range part.conns {
		b.wireConn(conn, subMeta, inBase, outBase)
	}
}

func (b *RecipeBuilder) noteDep(name string) {
	for _, d := range b.deps {
		if strings.ToLower(d) == strings.ToLower(name) {
			return
		}
	}
	b.deps = append(b.deps, name)
}

// wireConn resolves one formal=actual PARTS connection and emits the
// corresponding low-level wire pairs, in the pin-ID addressing
// convention from spec §3 (id < InputPinLimit addresses an input pin,
// id >= InputPinLimit addresses an output pin of the enclosing chip).
func (b *RecipeBuilder) wireConn(conn partConn, subMeta *ChipMeta, inBase, outBase int) {
	entry, ok := subMeta.Lookup(conn.formal.name)
	if !ok {
		b.errorf(conn.line, "unknown pin %q on chip %q", conn.formal.name, subMeta.Name)
		return
	}
	formalIsOut := subMeta.IsOutput(conn.formal.name)

	formalLo, formalHi, ok := b.sliceRange(entry, conn.formal)
	if !ok {
		b.errorf(conn.line, "index out of range for %q", conn.formal)
		return
	}
	size := formalHi - formalLo

	if formalIsOut && !b.isKnown(conn.actual) {
		// actual names a brand-new internal net. The pin-ID space (see
		// gate.go's GetPin) has no ids to spare for nets: every id
		// belongs either to the chip's own pins or to a subgate's, so
		// the subgate's own output range is the net's only physical
		// pin. Bind the name to it directly instead of minting an id
		// GetPin would never resolve, and emit no wire: there is
		// nothing to connect, formal and actual are the same pin.
		b.symtab[strings.ToLower(conn.actual.name)] = symbol{start: outBase + formalLo, size: size, isOut: true}
		return
	}

	actualLo, actualSize, actualIsOut, ok := b.resolveActual(conn.actual, conn.line)
	if !ok {
		return
	}
	if actualSize != size {
		b.errorf(conn.line, "bus size mismatch: %q is %d bits, %q is %d bits", conn.formal, size, conn.actual, actualSize)
		return
	}

	for i := 0; i < size; i++ {
		if formalIsOut {
			sp := 1000 + outBase + formalLo + i
			var op int
			if actualIsOut {
				op = 1000 + actualLo + i
				b.emitWire(sp, op)
			} else {
				op = actualLo + i
				b.emitWire(sp, op)
			}
		} else {
			sp := inBase + formalLo + i
			if actualIsOut {
				ap := 1000 + actualLo + i
				b.emitWire(ap, sp)
			} else {
				ap := actualLo + i
				b.emitWire(ap, sp)
			}
		}
	}
}

// isKnown reports whether name already has a binding in the symbol
// table, either a declared bus or an already-produced internal net.
func (b *RecipeBuilder) isKnown(ref pinRef) bool {
	_, ok := b.symtab[strings.ToLower(ref.name)]
	return ok
}

func (b *RecipeBuilder) emitWire(src, dst int) {
	b.lines = append(b.lines, RecipeLine{Op: "wire", Args: []string{strconv.Itoa(src), strconv.Itoa(dst)}})
}

// sliceRange maps a formal pinRef (possibly indexed or ranged) onto the
// [lo, hi) offset range it occupies within its bus entry.
func (b *RecipeBuilder) sliceRange(entry BusEntry, ref pinRef) (lo, hi int, ok bool) {
	if !ref.hasIndex {
		return entry.Start, entry.Start + entry.Size, true
	}
	lo = entry.Start + ref.start
	hi = entry.Start + ref.end + 1
	if ref.start < 0 || ref.end >= entry.Size || ref.start > ref.end {
		return 0, 0, false
	}
	return lo, hi, true
}

// resolveActual resolves a pinRef against the enclosing chip's own
// symbol table: a declared IN/OUT bus, or an internal net already bound
// to its producing subgate's output range by an earlier connection (see
// wireConn). An actual still unknown here names a pin used as a
// consumer with nothing ever driving it.
func (b *RecipeBuilder) resolveActual(ref pinRef, line int) (lo, size int, isOut, ok bool) {
	sym, known := b.symtab[strings.ToLower(ref.name)]
	if !known {
		b.errorf(line, "undriven net %q", ref.name)
		return 0, 0, false, false
	}
	if !ref.hasIndex {
		return sym.start, sym.size, sym.isOut, true
	}
	if ref.start < 0 || ref.end >= sym.size || ref.start > ref.end {
		return 0, 0, false, false
	}
	return sym.start + ref.start, ref.end - ref.start + 1, sym.isOut, true
}


