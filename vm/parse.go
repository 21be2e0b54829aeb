package vm

import (
	"bufio"
	"fmt"
	"strings"
)

var arithmetic = map[string]bool{
	"add": true, "sub": true, "neg": true, "eq": true, "gt": true,
	"lt": true, "and": true, "or": true, "not": true, "return": true,
}

// Diagnostic is a translation-time error with source position.
type Diagnostic struct {
	Line    int
	Message string
}

func (d Diagnostic) Error() string { return fmt.Sprintf("line %d: %s", d.Line, d.Message) }

// Translate parses and lowers an entire VM source file to Hack assembly
// text, one source line at a time. A malformed command is recorded as a
// diagnostic and skipped so the rest of the file still translates.
func Translate(source, file string) ([]string, []Diagnostic) {
	t := NewTranslator(file)
	var diags []Diagnostic

	sc := bufio.NewScanner(strings.NewReader(source))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := stripComment(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd := fields[0]
		args := fields[1:]

		if err := validateArity(cmd, args); err != nil {
			diags = append(diags, Diagnostic{lineNo, err.Error()})
			continue
		}
		if err := t.Translate(cmd, args...); err != nil {
			diags = append(diags, Diagnostic{lineNo, err.Error()})
		}
	}
	return t.Emit(), diags
}

func stripComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

func validateArity(cmd string, args []string) error {
	switch {
	case arithmetic[cmd]:
		if len(args) != 0 {
			return fmt.Errorf("%s takes no arguments", cmd)
		}
	case cmd == "push" || cmd == "pop":
		if len(args) != 2 {
			return fmt.Errorf("%s takes a segment and an index", cmd)
		}
	case cmd == "label" || cmd == "goto" || cmd == "if-goto":
		if len(args) != 1 {
			return fmt.Errorf("%s takes exactly one label", cmd)
		}
	case cmd == "function" || cmd == "call":
		if len(args) != 2 {
			return fmt.Errorf("%s takes a name and a count", cmd)
		}
	default:
		return fmt.Errorf("unknown VM command %q", cmd)
	}
	return nil
}
