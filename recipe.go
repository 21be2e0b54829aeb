package nandkit

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Recipe is the parsed form of a .gate file (component E): a flat,
// line-oriented sequence of construction commands emitted by the HDL
// compiler and replayed by LoadRecipe to build a custom gate on a Board.
// The grammar mirrors spec §5's on-disk format:
//
//	need <chip>              reference a chip that must already be on the board
//	create <chip>            start a new custom gate named <chip>
//	input <n>                append n input pins to the gate under construction
//	output <n>                append n output pins to the gate under construction
//	add <chip>                instantiate <chip> as a new subgate
//	wire <src> <dst>          connect pin ids src -> dst
//	e                         serialize the gate under construction (optional)
//	x <chip>                  exit context: commit <chip> to the board
type Recipe struct {
	Lines []RecipeLine
}

// RecipeLine is one parsed, 1-indexed recipe command.
type RecipeLine struct {
	LineNo int
	Op     string
	Args   []string
}

// ParseRecipe tokenizes r into a Recipe. Blank lines and lines starting
// with # are skipped. Malformed lines are collected as Diagnostics rather
// than stopping the scan, so a single typo doesn't hide every other error
// in the file.
func ParseRecipe(r io.Reader) (*Recipe, Diagnostics) {
	var rec Recipe
	var diags Diagnostics

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		op := strings.ToLower(fields[0])
		args := fields[1:]
		if err := validateRecipeLine(op, args); err != nil {
			diags = append(diags, Diagnostic{Line: lineNo, Message: err.Error()})
			continue
		}
		rec.Lines = append(rec.Lines, RecipeLine{LineNo: lineNo, Op: op, Args: args})
	}
	return &rec, diags
}

func validateRecipeLine(op string, args []string) error {
	switch op {
	case "need", "create", "add", "x":
		if len(args) != 1 {
			return errors.Errorf("%s takes exactly one chip name argument", op)
		}
	case "input", "output":
		if len(args) != 1 {
			return errors.Errorf("%s takes exactly one pin count argument", op)
		}
		if _, err := strconv.Atoi(args[0]); err != nil {
			return errors.Wrapf(err, "%s: invalid pin count %q", op, args[0])
		}
	case "wire":
		if len(args) != 2 {
			return errors.New("wire takes exactly two pin id arguments")
		}
		for _, a := range args {
			if _, err := strconv.Atoi(a); err != nil {
				return errors.Wrapf(err, "wire: invalid pin id %q", a)
			}
		}
	case "e":
		if len(args) != 0 {
			return errors.New("e takes no arguments")
		}
	default:
		return errors.Errorf("unknown recipe command %q", op)
	}
	return nil
}

// LoadRecipe replays a parsed Recipe against b, registering every chip it
// creates. It does not halt on the first semantic error: each failing
// line is recorded as a Diagnostic and the loader continues with the
// next line, so a single bad "wire" doesn't mask later problems in the
// same file. ok reports whether the whole recipe applied cleanly.
func (b *Board) LoadRecipe(rec *Recipe) (ok bool, diags Diagnostics) {
	ok = true
	var current *Gate
	var currentName string

	fail := func(ln int, format string, args ...interface{}) {
		ok = false
		diags = append(diags, Diagnostic{Line: ln, Message: errors.Errorf(format, args...).Error()})
	}

	for _, l := range rec.Lines {
		switch l.Op {
		case "need":
			if !b.Contains(l.Args[0]) {
				fail(l.LineNo, "need: unknown chip %q", l.Args[0])
			}

		case "create":
			currentName = l.Args[0]
			current = NewCustomGate(currentName)

		case "input":
			if current == nil {
				fail(l.LineNo, "input: no chip under construction")
				continue
			}
			n, _ := strconv.Atoi(l.Args[0])
			current.AddInputPin(n)

		case "output":
			if current == nil {
				fail(l.LineNo, "output: no chip under construction")
				continue
			}
			n, _ := strconv.Atoi(l.Args[0])
			current.AddOutputPin(n)

		case "add":
			if current == nil {
				fail(l.LineNo, "add: no chip under construction")
				continue
			}
			tmpl := b.Get(l.Args[0])
			if tmpl == nil {
				fail(l.LineNo, "add: unknown chip %q", l.Args[0])
				current = nil
				continue
			}
			current.AddSubgate(tmpl)

		case "wire":
			if current == nil {
				fail(l.LineNo, "wire: no chip under construction")
				continue
			}
			src, _ := strconv.Atoi(l.Args[0])
			dst, _ := strconv.Atoi(l.Args[1])
			if err := current.WirePins(src, dst); err != nil {
				fail(l.LineNo, "wire %d %d: %s", src, dst, err)
				current = nil
			}

		case "e":
			if current == nil {
				fail(l.LineNo, "e: no chip under construction")
				continue
			}
			if err := current.Serialize(); err != nil {
				fail(l.LineNo, "serialize %q: %s", currentName, err)
			}

		case "x":
			if current == nil {
				fail(l.LineNo, "x: no chip under construction")
				continue
			}
			if !strings.EqualFold(currentName, l.Args[0]) {
				fail(l.LineNo, "x: %q does not match chip under construction %q", l.Args[0], currentName)
				continue
			}
			b.Save(currentName, current)
			current = nil
		}
	}

	return ok, diags
}

// WriteRecipe serializes a custom gate's construction recipe back to the
// textual format understood by ParseRecipe. It is the inverse of the
// "need/create/input/output/add/wire/x" sequence LoadRecipe replays,
// for a gate built directly in Go. (The HDL compiler emits its own
// hdl.RecipeLine values, which `nandkit compile` writes out as text.)
// It never emits "e": a stateful gate (one
// built on DFF/Register/PC/RAM/ROM) cannot be serialized, and a
// combinational one can still be serialized later with `nandkit serialize`.
func WriteRecipe(w io.Writer, name string, g *Gate, deps []string) error {
	bw := bufio.NewWriter(w)
	for _, d := range deps {
		if _, err := io.WriteString(bw, "need "+d+"\n"); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(bw, "create "+name+"\n"); err != nil {
		return err
	}
	if len(g.Inputs) > 0 {
		io.WriteString(bw, "input "+strconv.Itoa(len(g.Inputs))+"\n")
	}
	if len(g.Outputs) > 0 {
		io.WriteString(bw, "output "+strconv.Itoa(len(g.Outputs))+"\n")
	}
	for _, sg := range g.Subgates {
		io.WriteString(bw, "add "+sg.Name+"\n")
	}
	for _, ws := range g.Recipe {
		io.WriteString(bw, "wire "+strconv.Itoa(ws.Src)+" "+strconv.Itoa(ws.Dst)+"\n")
	}
	io.WriteString(bw, "x "+name+"\n")
	return bw.Flush()
}
