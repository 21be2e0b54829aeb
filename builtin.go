package nandkit

// Backing-memory sizes, in 16-bit words, of the RAM16K and ROM32K
// built-ins. Pin counts and input pin order for each variant are fixed
// in newBuiltin and documented on the corresponding constructor.
const (
	ram16kWords = 1 << 14
	rom32kWords = 1 << 15
)

func newBuiltin(v Variant, name string) *Gate {
	g := &Gate{Variant: v, Name: name}
	switch v {
	case VariantNand:
		g.Inputs = makePins(2, g)
		g.Outputs = makePins(1, nil)
	case VariantDff:
		g.Inputs = makePins(2, g)
		g.Outputs = makePins(1, nil)
		g.seq = &seqState{}
	case VariantMux16:
		g.Inputs = makePins(33, g)
		g.Outputs = makePins(16, nil)
	case VariantRegister:
		g.Inputs = makePins(18, g)
		g.Outputs = makePins(16, nil)
		g.seq = &seqState{}
	case VariantPc:
		g.Inputs = makePins(20, g)
		g.Outputs = makePins(16, nil)
		g.seq = &seqState{}
	case VariantRam16k:
		g.Inputs = makePins(32, g)
		g.Outputs = makePins(16, nil)
		g.seq = &seqState{mem: make([]uint16, ram16kWords)}
	case VariantRom32k:
		g.Inputs = makePins(48, g)
		g.Outputs = makePins(16, nil)
		g.seq = &seqState{mem: make([]uint16, rom32kWords)}
	}
	return g
}

// NewNand returns a fresh two-input NAND gate: out = !(in0 && in1).
func NewNand() *Gate { return newBuiltin(VariantNand, "nand") }

// NewDFF returns a fresh clocked data flip-flop.
//
//	Inputs:  0=in, 1=clk
//	Outputs: 0=out
//	Function: on the rising edge of clk, out <- in; otherwise out holds.
func NewDFF() *Gate { return newBuiltin(VariantDff, "DFF") }

// NewMux16 returns a fresh 16-bit multiplexer.
//
//	Inputs:  0..15=a, 16..31=b, 32=sel
//	Outputs: 0..15=out
//	Function: out = sel ? b : a
func NewMux16() *Gate { return newBuiltin(VariantMux16, "Mux16") }

// NewRegister returns a fresh 16-bit clocked register.
//
//	Inputs:  0..15=data, 16=load, 17=clk
//	Outputs: 0..15=out
//	Function: on the rising edge of clk, if load then out <- data; else out holds.
func NewRegister() *Gate { return newBuiltin(VariantRegister, "Register") }

// NewPC returns a fresh 16-bit program counter.
//
//	Inputs:  0..15=data, 16=load, 17=inc, 18=reset, 19=clk
//	Outputs: 0..15=out
//	Function: on the rising edge of clk, performs exactly one of
//	reset (out <- 0), inc (out <- out+1) or load (out <- data), with
//	priority reset > inc > load; otherwise out holds.
func NewPC() *Gate { return newBuiltin(VariantPc, "PC") }

// NewRAM16K returns a fresh 16K-word random access memory.
//
//	Inputs:  0..15=data, 16..29=address (14 bits), 30=load, 31=clk
//	Outputs: 0..15=out
//	Function: out always mirrors RAM[address]; on the rising edge of clk,
//	if load then RAM[address] <- data (at most one write per clk pulse).
func NewRAM16K() *Gate { return newBuiltin(VariantRam16k, "RAM16K") }

// NewROM32K returns a fresh 32K-word read-only memory with a secondary
// write-address port used only during program loading.
//
//	Inputs:  0..15=data, 16..30=read address (15 bits),
//	         31..45=write address (15 bits), 46=load, 47=clk
//	Outputs: 0..15=out
//	Function: out always mirrors ROM[readAddress]; on the rising edge of
//	clk, if load then ROM[writeAddress] <- data.
func NewROM32K() *Gate { return newBuiltin(VariantRom32k, "ROM32K") }

// LoadROM is a convenience that writes prog directly into a ROM32K
// gate's backing memory, bypassing its write-address pins entirely --
// the common case of loading a program out-of-band (spec §9).
func (g *Gate) LoadROM(prog []uint16) {
	if g.Variant != VariantRom32k {
		return
	}
	n := copy(g.seq.mem, prog)
	for i := n; i < len(g.seq.mem); i++ {
		g.seq.mem[i] = 0
	}
}

// PeekRAM reads a word directly from a RAM16K gate's backing memory,
// bypassing simulation.
func (g *Gate) PeekRAM(addr int) uint16 {
	if g.Variant != VariantRam16k || addr < 0 || addr >= len(g.seq.mem) {
		return 0
	}
	return g.seq.mem[addr]
}

// PokeRAM writes a word directly into a RAM16K gate's backing memory,
// bypassing simulation.
func (g *Gate) PokeRAM(addr int, v uint16) {
	if g.Variant != VariantRam16k || addr < 0 || addr >= len(g.seq.mem) {
		return
	}
	g.seq.mem[addr] = v
}

func pinsUint16(pins []*Pin, width int) uint16 {
	var v uint16
	for i := 0; i < width; i++ {
		if pins[i].state {
			v |= 1 << uint(i)
		}
	}
	return v
}

func setPinsUint16(pins []*Pin, width int, v uint16) {
	for i := 0; i < width; i++ {
		pins[i].state = v&(1<<uint(i)) != 0
	}
}

func pinsUint(pins []*Pin, lo, width int) uint32 {
	var v uint32
	for i := 0; i < width; i++ {
		if pins[lo+i].state {
			v |= 1 << uint(i)
		}
	}
	return v
}

// clockEdge reports whether a rising edge occurs on a stateful built-in's
// clock this update, and advances its edge-detection history. The level
// that matters is whichever of the two clock sources is high: the board
// clock threaded into Simulate, or a signal actually wired onto the
// gate's own clock pin (spec §4.1) when the gate is used as a subgate.
// pin.state is only read, never written, so a clock pin left unwired
// (the direct-use case) always reads false and level collapses to
// exactly the clk parameter.
func clockEdge(pin *Pin, clk bool, prevClk *bool) bool {
	level := pin.state || clk
	edge := level && !*prevClk
	*prevClk = level
	return edge
}

// updateBuiltin applies a built-in variant's fixed behavior for the
// current pin states. clk is the current clock level.
func (g *Gate) updateBuiltin(clk bool) {
	switch g.Variant {
	case VariantNand:
		g.Outputs[0].state = !(g.Inputs[0].state && g.Inputs[1].state)

	case VariantMux16:
		sel := g.Inputs[32].state
		if sel {
			for i := 0; i < 16; i++ {
				g.Outputs[i].state = g.Inputs[16+i].state
			}
		} else {
			for i := 0; i < 16; i++ {
				g.Outputs[i].state = g.Inputs[i].state
			}
		}

	case VariantDff:
		edge := clockEdge(g.Inputs[1], clk, &g.seq.prevClk)
		if edge {
			g.seq.cell = boolToUint64(g.Inputs[0].state)
		}
		g.Outputs[0].state = g.seq.cell != 0

	case VariantRegister:
		edge := clockEdge(g.Inputs[17], clk, &g.seq.prevClk)
		load := g.Inputs[16].state
		if edge && load {
			g.seq.cell = uint64(pinsUint16(g.Inputs, 16))
		}
		setPinsUint16(g.Outputs, 16, uint16(g.seq.cell))

	case VariantPc:
		edge := clockEdge(g.Inputs[19], clk, &g.seq.prevClk)
		if edge {
			reset := g.Inputs[18].state
			inc := g.Inputs[17].state
			load := g.Inputs[16].state
			switch {
			case reset:
				g.seq.cell = 0
			case inc:
				g.seq.cell = uint64(uint16(g.seq.cell) + 1)
			case load:
				g.seq.cell = uint64(pinsUint16(g.Inputs, 16))
			}
		}
		setPinsUint16(g.Outputs, 16, uint16(g.seq.cell))

	case VariantRam16k:
		addr := pinsUint(g.Inputs, 16, 14)
		edge := clockEdge(g.Inputs[31], clk, &g.seq.prevClk)
		load := g.Inputs[30].state
		if edge && load {
			g.seq.mem[addr] = pinsUint16(g.Inputs, 16)
		}
		setPinsUint16(g.Outputs, 16, g.seq.mem[addr])

	case VariantRom32k:
		raddr := pinsUint(g.Inputs, 16, 15)
		waddr := pinsUint(g.Inputs, 31, 15)
		edge := clockEdge(g.Inputs[47], clk, &g.seq.prevClk)
		load := g.Inputs[46].state
		if edge && load {
			g.seq.mem[waddr] = pinsUint16(g.Inputs, 16)
		}
		setPinsUint16(g.Outputs, 16, g.seq.mem[raddr])
	}
}

func boolToUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
