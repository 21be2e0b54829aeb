package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dcbernard/nandkit"
	"github.com/dcbernard/nandkit/hdl"
	"github.com/pkg/errors"
)

// toolchain wires a Board, an hdl.MapProvider tracking every chip's
// compiled metadata, and the project's chip directory into the set of
// operations the CLI subcommands drive.
type toolchain struct {
	board    *nandkit.Board
	provider hdl.MapProvider
	chipDir  string
	testDir  string
}

func newToolchain(cfg *config) *toolchain {
	return &toolchain{
		board:    nandkit.NewSingletonBoard(),
		provider: hdl.NewMapProvider(),
		chipDir:  cfg.ChipDir,
		testDir:  cfg.TestDir,
	}
}

// testScriptPath resolves a .tst script name against the project's test
// directory, leaving an already-absolute path untouched.
func (tc *toolchain) testScriptPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(tc.testDir, name)
}

func (tc *toolchain) gatePath(name string) string { return filepath.Join(tc.chipDir, name+".gate") }
func (tc *toolchain) metaPath(name string) string  { return filepath.Join(tc.chipDir, name+".meta") }
func (tc *toolchain) hdlPath(name string) string   { return filepath.Join(tc.chipDir, name+".hdl") }

// Compile reads <name>.hdl, lowers it to a recipe and metadata, and
// writes both the .gate and .meta sidecars to the chip directory.
func (tc *toolchain) Compile(name string) error {
	src, err := os.ReadFile(tc.hdlPath(name))
	if err != nil {
		return errors.Wrapf(nandkit.ErrFileNotFound, "%s", tc.hdlPath(name))
	}
	lines, meta, diags := hdl.Compile(string(src), name, tc.provider)
	if len(diags) > 0 {
		for _, d := range diags {
			fmt.Fprintln(os.Stderr, d.Error())
		}
		return errors.Errorf("compile %s: %d error(s)", name, len(diags))
	}

	gateFile, err := os.Create(tc.gatePath(name))
	if err != nil {
		return err
	}
	defer gateFile.Close()
	for _, l := range lines {
		fmt.Fprintln(gateFile, recipeLineText(l))
	}

	metaFile, err := os.Create(tc.metaPath(name))
	if err != nil {
		return err
	}
	defer metaFile.Close()
	if err := hdl.WriteMeta(metaFile, meta); err != nil {
		return err
	}

	tc.provider.Add(meta)
	return nil
}

// gateStale reports whether name's .gate sidecar is missing, or present
// but older than a .hdl source that still exists alongside it, in which
// case Load must recompile before reading it. A .gate with no .hdl
// companion (a prebuilt chip whose source was never shipped) is never
// considered stale.
func (tc *toolchain) gateStale(name string) (bool, error) {
	gateInfo, err := os.Stat(tc.gatePath(name))
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	hdlInfo, err := os.Stat(tc.hdlPath(name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return hdlInfo.ModTime().After(gateInfo.ModTime()), nil
}

// CompileAll compiles every .hdl source in the chip directory.
func (tc *toolchain) CompileAll() error {
	matches, err := filepath.Glob(filepath.Join(tc.chipDir, "*.hdl"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		name := strings.TrimSuffix(filepath.Base(m), ".hdl")
		if err := tc.Compile(name); err != nil {
			return err
		}
	}
	return nil
}

func recipeLineText(l hdl.RecipeLine) string {
	out := l.Op
	for _, a := range l.Args {
		out += " " + a
	}
	return out
}

// Load reads a chip's .gate file (compiling from .hdl first if it's
// missing or stale) and registers it on the Board.
func (tc *toolchain) Load(name string) error {
	if tc.board.Contains(name) {
		return nil
	}
	stale, err := tc.gateStale(name)
	if err != nil {
		return err
	}
	if stale {
		if err := tc.Compile(name); err != nil {
			return err
		}
	}
	f, err := os.Open(tc.gatePath(name))
	if err != nil {
		return errors.Wrapf(nandkit.ErrFileNotFound, "%s", tc.gatePath(name))
	}
	defer f.Close()

	rec, diags := nandkit.ParseRecipe(f)
	if diags.HasErrors() {
		return diags
	}
	ok, diags := tc.board.LoadRecipe(rec)
	if !ok {
		return diags
	}

	if meta, ok := tc.readMeta(name); ok {
		tc.provider.Add(meta)
	}
	return nil
}

func (tc *toolchain) readMeta(name string) (*hdl.ChipMeta, bool) {
	f, err := os.Open(tc.metaPath(name))
	if err != nil {
		return nil, false
	}
	defer f.Close()
	meta, err := hdl.ReadMeta(f)
	if err != nil {
		return nil, false
	}
	return meta, true
}

// Serialize compiles the combinational truth table for a loaded chip.
func (tc *toolchain) Serialize(name string) error {
	g := tc.board.Get(name)
	if g == nil {
		return errors.Wrap(nandkit.ErrUnknownChip, name)
	}
	return g.Serialize()
}
