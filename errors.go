package nandkit

import "github.com/pkg/errors"

// Sentinel error kinds (see spec §7). Callers compare with errors.Is.
var (
	// ErrInvalidPinID is returned by WirePins when either pin id does not
	// resolve to a pin in the gate or one of its subgates.
	ErrInvalidPinID = errors.New("invalid pin id")

	// ErrNotCombinational is returned by Serialize when the transitive
	// subgate closure contains a stateful built-in.
	ErrNotCombinational = errors.New("not combinational")

	// ErrUnknownChip is returned by the Board (SetContext, Instantiate)
	// when a referenced chip is not registered. The hdl package reports
	// an unknown chip as an hdl.Diagnostic instead.
	ErrUnknownChip = errors.New("unknown chip")

	// ErrUnknownPin names the error kind for a PARTS connection that
	// references a pin outside the part's public interface. The hdl
	// package does not import this package and reports the condition as
	// an hdl.Diagnostic; nothing in the module returns this value.
	ErrUnknownPin = errors.New("unknown pin")

	// ErrBusSizeMismatch names the error kind for a bus-to-bus linkage
	// between buses of different sizes. The hdl package reports the
	// condition as an hdl.Diagnostic; nothing in the module returns this
	// value.
	ErrBusSizeMismatch = errors.New("bus size mismatch")

	// ErrBusOverflow is returned by the test interpreter's SET when an
	// assigned value exceeds 2^size-1 for the target bus.
	ErrBusOverflow = errors.New("bus overflow")

	// ErrFileNotFound is returned (wrapped) by the nandkit command's
	// compile and load steps when a .hdl or .gate file cannot be opened.
	ErrFileNotFound = errors.New("file not found")

	// ErrEmulatorHalt names the error kind for an exhausted CPU cycle
	// budget. Package cpu does not import this package: its Process
	// returns cpu.ErrEmulatorHalt, a distinct value.
	ErrEmulatorHalt = errors.New("cycle budget exhausted")
)

// Diagnostic is a single parser-level error with source position, used by
// the .gate recipe parser and loader (ParseRecipe, Board.LoadRecipe) so
// that a single run can report every issue found in a file rather than
// stopping at the first. The hdl, jack, vm, asm and tst packages each
// define their own Diagnostic type.
type Diagnostic struct {
	Line    int
	Column  int
	Message string
}

func (d Diagnostic) Error() string {
	return errors.Errorf("line %d, col %d: %s", d.Line, d.Column, d.Message).Error()
}

// Diagnostics accumulates Diagnostic values and satisfies error so it can
// be returned from a parse when one or more issues were found.
type Diagnostics []Diagnostic

func (ds Diagnostics) Error() string {
	if len(ds) == 0 {
		return "no diagnostics"
	}
	s := ds[0].Error()
	if len(ds) > 1 {
		s += errors.Errorf(" (+%d more)", len(ds)-1).Error()
	}
	return s
}

// HasErrors reports whether any diagnostic was recorded.
func (ds Diagnostics) HasErrors() bool { return len(ds) > 0 }
