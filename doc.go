/*
Package nandkit is a from-scratch simulator and toolchain for a
Nand-to-Tetris-style digital computer.

A chip is described either directly in Go (by composing *Gate values) or
in a small hardware description language (package nandkit/hdl), compiled
into a textual "gate recipe" (see ParseRecipe and Board.LoadRecipe), and
loaded into a Board registry of named chip templates. Templates are
duplicated into runnable instances and driven by package nandkit/tst's
declarative test language or by the CPU emulator in package nandkit/cpu.

The simulation engine itself (Gate.Simulate) evaluates a chip's
combinational logic by breadth-first propagation starting from its input
pins, re-entering a subgate whenever one of its inputs has genuinely
changed. Purely combinational chips can additionally be serialized into
a precomputed truth table with Gate.Serialize, trading memory for a
constant-time Simulate.

The higher-level language stack (nandkit/jack, nandkit/vm, nandkit/asm,
nandkit/cpu) compiles a Jack-like language down through a stack VM and a
symbolic assembler into the 16-bit machine words the CPU emulator
executes.
*/
package nandkit
