package hdl

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dcbernard/nandkit/trie"
)

// BusEntry describes one named bus (or single pin, size 1) within a
// chip's public interface: the contiguous range of pin ids [Start,
// Start+Size) it occupies in that chip's own numbering (component G).
type BusEntry struct {
	Name  string
	Start int
	Size  int
}

// ChipMeta is the compiled interface of one chip: its declared input and
// output buses, in declaration order. It is the on-disk counterpart of a
// .meta sidecar and is consulted by the HDL parser whenever another chip
// references this one by name in a PARTS statement.
type ChipMeta struct {
	Name    string
	Inputs  []BusEntry
	Outputs []BusEntry

	names trie.Trie
}

// NandMeta is the built-in metadata for the nand primitive: it has no
// on-disk .meta file, so the HDL parser special-cases it the same way
// the Board special-cases the nand gate itself.
func NandMeta() *ChipMeta {
	m := &ChipMeta{
		Name:    "nand",
		Inputs:  []BusEntry{{"a", 0, 1}, {"b", 1, 1}},
		Outputs: []BusEntry{{"out", 0, 1}},
	}
	m.index()
	return m
}

func (m *ChipMeta) index() {
	for _, b := range m.Inputs {
		m.names.Insert(strings.ToLower(b.Name))
	}
	for _, b := range m.Outputs {
		m.names.Insert(strings.ToLower(b.Name))
	}
}

// Lookup resolves a pin or bus name against this chip's interface,
// trying an exact (case-insensitive) match first and falling back to a
// trie prefix match when no bus has that exact name, per spec §4.5. A
// prefix resolves only when exactly one bus starts with it; it reports
// false when no bus matches or when the prefix is ambiguous.
func (m *ChipMeta) Lookup(name string) (BusEntry, bool) {
	low := strings.ToLower(name)
	for _, b := range m.Inputs {
		if strings.ToLower(b.Name) == low {
			return b, true
		}
	}
	for _, b := range m.Outputs {
		if strings.ToLower(b.Name) == low {
			return b, true
		}
	}
	hits := m.names.Search(low)
	if len(hits) == 1 {
		return m.Lookup(hits[0])
	}
	return BusEntry{}, false
}

// IsOutput reports whether name resolves to one of this chip's output
// buses rather than an input bus.
func (m *ChipMeta) IsOutput(name string) bool {
	low := strings.ToLower(name)
	for _, b := range m.Outputs {
		if strings.ToLower(b.Name) == low {
			return true
		}
	}
	return false
}

// WriteMeta writes the .meta sidecar format described in spec §4.5.
func WriteMeta(w io.Writer, m *ChipMeta) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, m.Name)
	fmt.Fprintf(bw, "INPUTS %d", len(m.Inputs))
	for _, b := range m.Inputs {
		fmt.Fprintf(bw, " %s", busToken(b))
	}
	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "OUTPUTS %d", len(m.Outputs))
	for _, b := range m.Outputs {
		fmt.Fprintf(bw, " %s", busToken(b))
	}
	fmt.Fprintln(bw)
	return bw.Flush()
}

func busToken(b BusEntry) string {
	if b.Size <= 1 {
		return b.Name
	}
	return fmt.Sprintf("%s[%d]", b.Name, b.Size)
}

// ReadMeta parses the .meta sidecar format.
func ReadMeta(r io.Reader) (*ChipMeta, error) {
	sc := bufio.NewScanner(r)
	m := &ChipMeta{}
	if !sc.Scan() {
		return nil, fmt.Errorf("empty meta file")
	}
	m.Name = strings.TrimSpace(sc.Text())

	readSection := func(tag string) ([]BusEntry, error) {
		if !sc.Scan() {
			return nil, fmt.Errorf("missing %s section", tag)
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || fields[0] != tag {
			return nil, fmt.Errorf("expected %s section, got %q", tag, sc.Text())
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("bad %s count: %w", tag, err)
		}
		start := 0
		entries := make([]BusEntry, 0, n)
		for i := 0; i < n; i++ {
			tok := fields[2+i]
			name, size := tok, 1
			if idx := strings.IndexByte(tok, '['); idx >= 0 {
				name = tok[:idx]
				size, _ = strconv.Atoi(strings.TrimSuffix(tok[idx+1:], "]"))
			}
			entries = append(entries, BusEntry{Name: name, Start: start, Size: size})
			start += size
		}
		return entries, nil
	}

	ins, err := readSection("INPUTS")
	if err != nil {
		return nil, err
	}
	outs, err := readSection("OUTPUTS")
	if err != nil {
		return nil, err
	}
	m.Inputs, m.Outputs = ins, outs
	m.index()
	return m, nil
}

// TotalPins sums the sizes of every bus in entries.
func TotalPins(entries []BusEntry) int {
	n := 0
	for _, b := range entries {
		n += b.Size
	}
	return n
}
