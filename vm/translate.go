// Package vm translates stack-machine VM instructions into Hack
// assembly (component J), using the standard convention of SP at
// RAM[0] and the LCL/ARG/THIS/THAT segment pointers.
package vm

import (
	"fmt"
	"strings"
)

// segmentBase maps a VM memory segment to the assembly symbol holding
// its base address, for segments accessed through a pointer.
var segmentBase = map[string]string{
	"local":    "LCL",
	"argument": "ARG",
	"this":     "THIS",
	"that":     "THAT",
}

// Translator lowers one translation unit's VM instructions to assembly
// text. Static segment references are mangled to "<file>.<index>" so
// multiple files can share RAM[16..255] without colliding (spec §4.7).
type Translator struct {
	file     string
	funcName string
	labelSeq int
	callSeq  int
	out      []string
}

// NewTranslator creates a Translator for one VM source file. file is
// used verbatim as the static-segment mangling prefix.
func NewTranslator(file string) *Translator {
	return &Translator{file: file, funcName: file}
}

// Emit returns the assembly lines produced so far.
func (t *Translator) Emit() []string { return t.out }

func (t *Translator) line(format string, args ...interface{}) {
	t.out = append(t.out, fmt.Sprintf(format, args...))
}

func (t *Translator) comment(s string) { t.out = append(t.out, "// "+s) }

// pushD emits the assembly that pushes the D register onto the stack
// and advances SP, the fixed sequence every push ends with.
func (t *Translator) pushD() {
	t.line("@SP")
	t.line("M=M+1")
	t.line("A=M-1")
	t.line("M=D")
}

// popToD emits the assembly that pops the top of the stack into D and
// retreats SP, the fixed sequence every pop (and arithmetic op) starts
// with when it needs the popped value.
func (t *Translator) popToD() {
	t.line("@SP")
	t.line("AM=M-1")
	t.line("D=M")
}

// Translate lowers one VM command. args has 0, 1, or 2 elements
// depending on the command (push/pop take segment+index, arithmetic
// commands take none, label/goto/if-goto take a label, function/call
// take name+n).
func (t *Translator) Translate(cmd string, args ...string) error {
	t.comment(strings.TrimSpace(cmd + " " + strings.Join(args, " ")))
	switch cmd {
	case "push":
		return t.translatePush(args[0], args[1])
	case "pop":
		return t.translatePop(args[0], args[1])
	case "add":
		t.binOp("D+M")
	case "sub":
		t.binOp("M-D")
	case "and":
		t.binOp("D&M")
	case "or":
		t.binOp("D|M")
	case "neg":
		t.unOp("-M")
	case "not":
		t.unOp("!M")
	case "eq":
		t.compareOp("JEQ")
	case "gt":
		t.compareOp("JGT")
	case "lt":
		t.compareOp("JLT")
	case "label":
		t.line("(%s)", t.qualifyLabel(args[0]))
	case "goto":
		t.line("@%s", t.qualifyLabel(args[0]))
		t.line("0;JMP")
	case "if-goto":
		t.popToD()
		t.line("@%s", t.qualifyLabel(args[0]))
		t.line("D;JNE")
	case "function":
		t.translateFunction(args[0], args[1])
	case "call":
		t.translateCall(args[0], args[1])
	case "return":
		t.translateReturn()
	default:
		return fmt.Errorf("unknown VM command %q", cmd)
	}
	return nil
}

// qualifyLabel scopes a label to the current function, the way Jack's
// compiler-generated if/while labels need to avoid colliding across
// functions in the same file.
func (t *Translator) qualifyLabel(name string) string {
	return t.funcName + "$" + name
}

func (t *Translator) translatePush(seg, idxStr string) error {
	switch seg {
	case "constant":
		t.line("@%s", idxStr)
		t.line("D=A")
	case "local", "argument", "this", "that":
		t.line("@%s", idxStr)
		t.line("D=A")
		t.line("@%s", segmentBase[seg])
		t.line("A=D+M")
		t.line("D=M")
	case "temp":
		t.line("@%s", addOffset(5, idxStr))
		t.line("D=M")
	case "pointer":
		t.line("@%s", pointerSymbol(idxStr))
		t.line("D=M")
	case "static":
		t.line("@%s.%s", t.file, idxStr)
		t.line("D=M")
	default:
		return fmt.Errorf("unknown segment %q", seg)
	}
	t.pushD()
	return nil
}

func (t *Translator) translatePop(seg, idxStr string) error {
	switch seg {
	case "local", "argument", "this", "that":
		t.line("@%s", idxStr)
		t.line("D=A")
		t.line("@%s", segmentBase[seg])
		t.line("D=D+M")
		t.line("@R13")
		t.line("M=D")
		t.popToD()
		t.line("@R13")
		t.line("A=M")
		t.line("M=D")
	case "temp":
		t.popToD()
		t.line("@%s", addOffset(5, idxStr))
		t.line("M=D")
	case "pointer":
		t.popToD()
		t.line("@%s", pointerSymbol(idxStr))
		t.line("M=D")
	case "static":
		t.popToD()
		t.line("@%s.%s", t.file, idxStr)
		t.line("M=D")
	default:
		return fmt.Errorf("unknown segment %q", seg)
	}
	return nil
}

func pointerSymbol(idx string) string {
	if idx == "0" {
		return "THIS"
	}
	return "THAT"
}

func addOffset(base int, idxStr string) string {
	n := 0
	for _, c := range idxStr {
		n = n*10 + int(c-'0')
	}
	return fmt.Sprintf("%d", base+n)
}

func (t *Translator) binOp(comp string) {
	t.popToD()
	t.line("A=A-1")
	t.line("M=%s", comp)
}

func (t *Translator) unOp(comp string) {
	t.line("@SP")
	t.line("A=M-1")
	t.line("M=%s", comp)
}

func (t *Translator) compareOp(jump string) {
	t.labelSeq++
	trueLabel := fmt.Sprintf("%s$CMP_TRUE_%d", t.funcName, t.labelSeq)
	endLabel := fmt.Sprintf("%s$CMP_END_%d", t.funcName, t.labelSeq)
	t.popToD()
	t.line("A=A-1")
	t.line("D=M-D")
	t.line("@%s", trueLabel)
	t.line("D;%s", jump)
	t.line("@SP")
	t.line("A=M-1")
	t.line("M=0")
	t.line("@%s", endLabel)
	t.line("0;JMP")
	t.line("(%s)", trueLabel)
	t.line("@SP")
	t.line("A=M-1")
	t.line("M=-1")
	t.line("(%s)", endLabel)
}

func (t *Translator) translateFunction(name, nLocalsStr string) {
	t.funcName = name
	t.line("(%s)", name)
	n := 0
	for _, c := range nLocalsStr {
		n = n*10 + int(c-'0')
	}
	for i := 0; i < n; i++ {
		t.line("@SP")
		t.line("M=M+1")
		t.line("A=M-1")
		t.line("M=0")
	}
}

func (t *Translator) translateCall(name, nArgsStr string) {
	t.callSeq++
	retLabel := fmt.Sprintf("%s$ret.%d", t.funcName, t.callSeq)

	t.line("@%s", retLabel)
	t.line("D=A")
	t.pushD()
	for _, sym := range []string{"LCL", "ARG", "THIS", "THAT"} {
		t.line("@%s", sym)
		t.line("D=M")
		t.pushD()
	}

	n := 0
	for _, c := range nArgsStr {
		n = n*10 + int(c-'0')
	}
	t.line("@SP")
	t.line("D=M")
	t.line("@%d", 5+n)
	t.line("D=D-A")
	t.line("@ARG")
	t.line("M=D")
	t.line("@SP")
	t.line("D=M")
	t.line("@LCL")
	t.line("M=D")

	t.line("@%s", name)
	t.line("0;JMP")
	t.line("(%s)", retLabel)
}

// translateReturn restores the caller's frame using R13 as the saved
// frame pointer (endFrame) and R14 as the saved return address, exactly
// as spec §4.7 prescribes.
func (t *Translator) translateReturn() {
	t.line("@LCL")
	t.line("D=M")
	t.line("@R13")
	t.line("M=D") // endFrame = LCL

	t.line("@5")
	t.line("A=D-A")
	t.line("D=M")
	t.line("@R14")
	t.line("M=D") // retAddr = *(endFrame-5)

	t.popToD()
	t.line("@ARG")
	t.line("A=M")
	t.line("M=D") // *ARG = pop()

	t.line("@ARG")
	t.line("D=M+1")
	t.line("@SP")
	t.line("M=D") // SP = ARG+1

	for i, sym := range []string{"THAT", "THIS", "ARG", "LCL"} {
		t.line("@R13")
		t.line("D=M")
		t.line("@%d", i+1)
		t.line("A=D-A")
		t.line("D=M")
		t.line("@%s", sym)
		t.line("M=D")
	}

	t.line("@R14")
	t.line("A=M")
	t.line("0;JMP")
}
