// Package asm assembles Hack-style assembly source into 16-bit machine
// words (component K): a predefined/label/variable symbol table combined
// in one pass, followed by a fixup pass that resolves forward label
// references when emitting the final word array.
package asm

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// Predefined symbols every program starts with (spec §4.7/§6).
var predefined = map[string]uint16{
	"SP": 0, "LCL": 1, "ARG": 2, "THIS": 3, "THAT": 4,
	"R0": 0, "R1": 1, "R2": 2, "R3": 3, "R4": 4, "R5": 5,
	"R6": 6, "R7": 7, "R8": 8, "R9": 9, "R10": 10, "R11": 11,
	"R12": 12, "R13": 13, "R14": 14, "R15": 15,
	"SCREEN": 16384, "KBD": 24576,
}

// compTable maps a comp mnemonic to its 7-bit field (the leading bit
// selects A vs M). Cross-checked against the Hack ISA encoding used by
// its-hmny-nand2tetris's code generator.
var compTable = map[string]uint16{
	"0": 0b0101010, "1": 0b0111111, "-1": 0b0111010,
	"D": 0b0001100, "A": 0b0110000, "M": 0b1110000,
	"!D": 0b0001101, "!A": 0b0110001, "!M": 0b1110001,
	"-D": 0b0001111, "-A": 0b0110011, "-M": 0b1110011,
	"D+1": 0b0011111, "A+1": 0b0110111, "M+1": 0b1110111,
	"D-1": 0b0001110, "A-1": 0b0110010, "M-1": 0b1110010,
	"D+A": 0b0000010, "D+M": 0b1000010,
	"D-A": 0b0010011, "D-M": 0b1010011,
	"A-D": 0b0000111, "M-D": 0b1000111,
	"D&A": 0b0000000, "D&M": 0b1000000,
	"D|A": 0b0010101, "D|M": 0b1010101,
}

var destTable = map[string]uint16{
	"": 0b000, "M": 0b001, "D": 0b010, "A": 0b100,
	"MD": 0b011, "AM": 0b101, "AD": 0b110, "AMD": 0b111,
}

var jumpTable = map[string]uint16{
	"": 0b000, "JGT": 0b001, "JEQ": 0b010, "JGE": 0b011,
	"JLT": 0b100, "JNE": 0b101, "JLE": 0b110, "JMP": 0b111,
}

type lineKind int

const (
	lineA lineKind = iota
	lineC
)

type rawLine struct {
	kind    lineKind
	lineNo  int
	aSymbol string // for lineA: literal "@..." operand, numeric or symbolic
	dest    string
	comp    string
	jump    string
}

// Diagnostic is an assembly-time error with source position.
type Diagnostic struct {
	Line    int
	Message string
}

func (d Diagnostic) Error() string { return fmt.Sprintf("line %d: %s", d.Line, d.Message) }

// Assemble translates Hack assembly source into 16-bit machine words.
// Labels may be referenced before their declaration; a fixup pass
// resolves every A-instruction once the full label table is known.
// Diagnostics are collected per line rather than aborting the first
// error, so a single typo doesn't hide the rest of the file's problems.
func Assemble(source string) ([]uint16, []Diagnostic) {
	symbols := make(map[string]uint16, len(predefined))
	for k, v := range predefined {
		symbols[k] = v
	}

	var lines []rawLine
	var diags []Diagnostic
	romAddr := uint16(0)

	sc := bufio.NewScanner(strings.NewReader(source))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		text := stripComment(sc.Text())
		if text == "" {
			continue
		}
		switch {
		case strings.HasPrefix(text, "("):
			name := strings.TrimSuffix(strings.TrimPrefix(text, "("), ")")
			if !strings.HasSuffix(text, ")") {
				diags = append(diags, Diagnostic{lineNo, fmt.Sprintf("malformed label %q", text)})
				continue
			}
			if _, exists := symbols[name]; exists {
				diags = append(diags, Diagnostic{lineNo, fmt.Sprintf("label %q redefines an existing symbol", name)})
				continue
			}
			symbols[name] = romAddr

		case strings.HasPrefix(text, "@"):
			lines = append(lines, rawLine{kind: lineA, lineNo: lineNo, aSymbol: text[1:]})
			romAddr++

		default:
			rl, err := parseC(text, lineNo)
			if err != nil {
				diags = append(diags, Diagnostic{lineNo, err.Error()})
				continue
			}
			lines = append(lines, rl)
			romAddr++
		}
	}

	nextVar := uint16(16)
	words := make([]uint16, 0, len(lines))
	for _, l := range lines {
		switch l.kind {
		case lineA:
			addr, err := resolveA(l.aSymbol, symbols, &nextVar)
			if err != nil {
				diags = append(diags, Diagnostic{l.lineNo, err.Error()})
				words = append(words, 0)
				continue
			}
			words = append(words, addr&0x7fff)

		case lineC:
			comp, ok := compTable[l.comp]
			if !ok {
				diags = append(diags, Diagnostic{l.lineNo, fmt.Sprintf("unknown comp %q", l.comp)})
				words = append(words, 0)
				continue
			}
			dest := destTable[l.dest]
			jump := jumpTable[l.jump]
			word := uint16(0b111<<13) | comp<<6 | dest<<3 | jump
			words = append(words, word)
		}
	}

	return words, diags
}

func stripComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

func parseC(text string, lineNo int) (rawLine, error) {
	rl := rawLine{kind: lineC, lineNo: lineNo}
	body := text
	if i := strings.IndexByte(body, ';'); i >= 0 {
		rl.jump = strings.TrimSpace(body[i+1:])
		body = body[:i]
	}
	if i := strings.IndexByte(body, '='); i >= 0 {
		rl.dest = strings.TrimSpace(body[:i])
		body = body[i+1:]
	}
	rl.comp = strings.TrimSpace(body)
	if rl.comp == "" {
		return rl, fmt.Errorf("missing comp field in %q", text)
	}
	return rl, nil
}

func resolveA(sym string, symbols map[string]uint16, nextVar *uint16) (uint16, error) {
	if n, err := strconv.ParseUint(sym, 10, 16); err == nil {
		return uint16(n), nil
	}
	if addr, ok := symbols[sym]; ok {
		return addr, nil
	}
	addr := *nextVar
	symbols[sym] = addr
	*nextVar++
	return addr, nil
}
