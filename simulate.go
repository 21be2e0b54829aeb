package nandkit

// Simulate evaluates the gate's outputs for its current input pin
// states. Built-in variants apply their fixed behavior directly; a
// serialized custom gate indexes its truth table; an unserialized
// custom gate is evaluated by breadth-first propagation (spec §4.1).
//
// clk is the current clock level: true during a tick, false during a
// tock. Combinational gates ignore it.
func (g *Gate) Simulate(clk bool) {
	switch {
	case g.Variant != VariantCustom:
		g.updateBuiltin(clk)
	case g.Serialized:
		g.simulateSerialized()
	default:
		g.simulate(clk, map[*Gate]bool{g: true})
	}
}

// simulate runs the BFS propagation described in spec §4.1, sharing the
// visited set across the whole recursive simulation tree for this call
// so that feedback loops at any nesting depth are tracked consistently.
func (g *Gate) simulate(clk bool, visited map[*Gate]bool) {
	frontier := append([]*Pin(nil), g.Inputs...)

	for len(frontier) > 0 {
		var next []*Pin
		var order []*Gate
		queued := make(map[*Gate]bool)

		for _, p := range frontier {
			for _, w := range p.outs {
				old := w.dst.state
				w.dst.state = p.state
				changed := w.dst.state != old

				if changed && w.dst.owner != nil && visited[w.dst.owner] {
					delete(visited, w.dst.owner)
				}
				if w.dst.owner == nil {
					next = append(next, w.dst)
				} else if !queued[w.dst.owner] {
					queued[w.dst.owner] = true
					order = append(order, w.dst.owner)
				}
			}
		}

		for _, sg := range order {
			if visited[sg] {
				continue
			}
			visited[sg] = true
			switch {
			case sg.Variant != VariantCustom:
				sg.updateBuiltin(clk)
			case sg.Serialized:
				sg.simulateSerialized()
			default:
				sg.simulate(clk, visited)
			}
			next = append(next, sg.Outputs...)
		}

		frontier = next
	}
}

func (g *Gate) simulateSerialized() {
	idx := 0
	for _, p := range g.Inputs {
		idx <<= 1
		if p.state {
			idx |= 1
		}
	}
	val := g.Table.Outputs[idx]
	n := len(g.Outputs)
	for i := 0; i < n; i++ {
		shift := uint(n - 1 - i)
		g.Outputs[i].state = (val>>shift)&1 == 1
	}
}

// ApplyInput sets the gate's first width input pins from mask, MSB-first.
func (g *Gate) ApplyInput(mask uint64, width int) {
	for i := 0; i < width && i < len(g.Inputs); i++ {
		shift := uint(width - 1 - i)
		g.Inputs[i].state = (mask>>shift)&1 == 1
	}
}

// SerializeOutput packs the gate's output pins MSB-first into a uint64.
func (g *Gate) SerializeOutput() uint64 {
	var v uint64
	for _, p := range g.Outputs {
		v <<= 1
		if p.state {
			v |= 1
		}
	}
	return v
}

// Serialize precomputes a combinational custom gate's truth table,
// enumerating every input combination and recording the resulting
// output configuration. It fails with ErrNotCombinational, without
// mutating the gate, if any stateful built-in appears in the transitive
// subgate closure.
func (g *Gate) Serialize() error {
	if g.Variant != VariantCustom {
		return ErrNotCombinational
	}
	if g.Serialized {
		return nil
	}
	if hasStatefulClosure(g) {
		return ErrNotCombinational
	}

	n := len(g.Inputs)
	size := 1 << uint(n)
	table := make([]uint64, size)

	saved := make([]bool, n)
	for i, p := range g.Inputs {
		saved[i] = p.state
	}

	for i := 0; i < size; i++ {
		g.ApplyInput(uint64(i), n)
		g.simulate(false, map[*Gate]bool{g: true})
		table[i] = g.SerializeOutput()
	}

	for i, p := range g.Inputs {
		p.state = saved[i]
	}

	g.Table = &TruthTable{NumInputs: n, NumOutputs: len(g.Outputs), Outputs: table}
	g.Serialized = true
	g.Subgates = nil
	g.Recipe = nil
	return nil
}

// hasStatefulClosure reports whether any stateful built-in (DFF,
// Register, PC, RAM16K, ROM32K) appears anywhere in g's transitive
// subgate closure. An already-serialized subgate is trusted: it could
// only have been serialized if its own closure was combinational.
func hasStatefulClosure(g *Gate) bool {
	for _, sg := range g.Subgates {
		if sg.Serialized {
			continue
		}
		switch sg.Variant {
		case VariantNand, VariantMux16:
			// combinational, nothing to recurse into
		case VariantCustom:
			if hasStatefulClosure(sg) {
				return true
			}
		default:
			return true
		}
	}
	return false
}
