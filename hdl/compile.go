package hdl

import "strings"

// Compile parses HDL source and lowers it to a flat recipe and chip
// metadata in one pass. Diagnostics from both the parser and the
// recipe builder are concatenated; a non-nil recipe may still carry
// diagnostics describing connections the builder had to skip.
func Compile(source, fileName string, provider MetaProvider) ([]RecipeLine, *ChipMeta, []Diagnostic) {
	p := NewParser(source, fileName)
	chip, parseDiags := p.Parse()
	if chip == nil {
		return nil, nil, parseDiags
	}
	lines, meta, buildDiags := Build(chip, provider)
	diags := append(parseDiags, buildDiags...)
	return lines, meta, diags
}

// MapProvider is a MetaProvider backed by a plain map, used by the CLI
// and by tests to supply already-compiled dependencies without going
// through a Board.
type MapProvider map[string]*ChipMeta

// Meta implements MetaProvider.
func (m MapProvider) Meta(name string) (*ChipMeta, bool) {
	meta, ok := m[lower(name)]
	return meta, ok
}

// NewMapProvider seeds a MapProvider with the nand primitive, the one
// chip every HDL compilation implicitly depends on.
func NewMapProvider() MapProvider {
	m := make(MapProvider)
	nm := NandMeta()
	m[lower(nm.Name)] = nm
	return m
}

// Add registers a compiled chip's metadata under its own name.
func (m MapProvider) Add(meta *ChipMeta) {
	m[lower(meta.Name)] = meta
}

// lower normalizes a chip name to the case-insensitive map key.
func lower(name string) string { return strings.ToLower(name) }
