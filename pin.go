package nandkit

// A Pin is a single-bit signal carrier. Input pins belonging to a gate's
// body point back at their owning gate so the simulator knows when
// propagation has entered that gate; free (chip-level) pins have a nil
// owner.
type Pin struct {
	state bool
	owner *Gate
	outs  []*Wire
}

// State returns the pin's current boolean value.
func (p *Pin) State() bool { return p.state }

// SetState directly sets an input pin's value. It is used by callers
// outside the package (the test interpreter, tests) that drive a
// gate's inputs without going through a wired parent.
func (p *Pin) SetState(v bool) { p.state = v }

// A Wire is a directed, one-way connection from a source pin to a
// destination pin. Wires are owned by their source pin; the destination
// pin holds no back-reference to the wire itself.
type Wire struct {
	src *Pin
	dst *Pin
}

func newPin(owner *Gate) *Pin { return &Pin{owner: owner} }

func makePins(n int, owner *Gate) []*Pin {
	pins := make([]*Pin, n)
	for i := range pins {
		pins[i] = newPin(owner)
	}
	return pins
}
