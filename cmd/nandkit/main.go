// Command nandkit drives the gate simulator, HDL compiler and test
// interpreter from the command line: the non-interactive collaborator
// surface spec.md's REPL describes, built on cobra subcommands instead
// of a read-eval-print loop.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dcbernard/nandkit"
	"github.com/dcbernard/nandkit/hdl"
	"github.com/dcbernard/nandkit/tst"
	"github.com/spf13/cobra"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "nandkit: loading .nandkit.yaml:", err)
		os.Exit(1)
	}
	tc := newToolchain(cfg)

	root := &cobra.Command{
		Use:   "nandkit",
		Short: "Gate simulator, HDL compiler and test runner",
	}

	root.AddCommand(
		compileCmd(tc),
		loadCmd(tc),
		listCmd(tc),
		testCmd(tc),
		serializeCmd(tc),
		infoCmd(tc),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "nandkit:", err)
		os.Exit(1)
	}
}

func compileCmd(tc *toolchain) *cobra.Command {
	return &cobra.Command{
		Use:   "compile <name|all>",
		Short: "Compile a chip's .hdl source into .gate and .meta files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "all" {
				return tc.CompileAll()
			}
			return tc.Compile(args[0])
		},
	}
}

func loadCmd(tc *toolchain) *cobra.Command {
	return &cobra.Command{
		Use:   "load <name>",
		Short: "Load a compiled chip onto the board, compiling it first if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := tc.Load(args[0]); err != nil {
				return err
			}
			fmt.Printf("loaded %s\n", args[0])
			return nil
		},
	}
}

func listCmd(tc *toolchain) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every chip currently registered on the board",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, n := range tc.board.ListNames() {
				fmt.Println(n)
			}
			return nil
		},
	}
}

func serializeCmd(tc *toolchain) *cobra.Command {
	return &cobra.Command{
		Use:   "serialize <name>",
		Short: "Precompute a loaded chip's combinational truth table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return tc.Serialize(args[0])
		},
	}
}

func infoCmd(tc *toolchain) *cobra.Command {
	return &cobra.Command{
		Use:   "info <name>",
		Short: "Print a loaded chip's interface and status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g := tc.board.Get(args[0])
			if g == nil {
				return fmt.Errorf("unknown chip %q", args[0])
			}
			meta, _ := tc.readMeta(args[0])
			fmt.Printf("name:       %s\n", g.Name)
			fmt.Printf("variant:    %s\n", g.Variant)
			fmt.Printf("serialized: %v\n", g.Serialized)
			fmt.Printf("inputs:     %d\n", len(g.Inputs))
			fmt.Printf("outputs:    %d\n", len(g.Outputs))
			if meta != nil {
				var ins, outs []string
				for _, b := range meta.Inputs {
					ins = append(ins, b.Name)
				}
				for _, b := range meta.Outputs {
					outs = append(outs, b.Name)
				}
				fmt.Printf("in pins:    %s\n", strings.Join(ins, ", "))
				fmt.Printf("out pins:   %s\n", strings.Join(outs, ", "))
			}
			return nil
		},
	}
}

func testCmd(tc *toolchain) *cobra.Command {
	return &cobra.Command{
		Use:   "test <file.tst>",
		Short: "Run a declarative test script against the compiled chips",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(tc.testScriptPath(args[0]))
			if err != nil {
				return err
			}
			script, diags := tst.Parse(string(src))
			for _, d := range diags {
				fmt.Fprintln(os.Stderr, d.Error())
			}

			loader := func(sandbox *nandkit.Board, name string) error {
				if err := tc.Load(name); err != nil {
					return err
				}
				tmpl := tc.board.Get(name)
				sandbox.Save(name, tmpl.Duplicate())
				return nil
			}
			runner := tst.NewRunner(func(name string) (*hdl.ChipMeta, bool) {
				return tc.provider.Meta(name)
			}, loader)

			result, err := runner.Run(script)
			if err != nil {
				return err
			}
			for _, c := range result.Cases {
				status := "PASS"
				if !c.Passed {
					status = "FAIL"
				}
				fmt.Printf("[%s] %s\n", status, c.Name)
				for _, f := range c.Failures {
					fmt.Printf("    %s\n", f)
				}
			}
			if !result.Passed() {
				os.Exit(1)
			}
			return nil
		},
	}
}
