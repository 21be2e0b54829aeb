package nandkit

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dcbernard/nandkit/trie"
)

// Board is a named library of chip templates (component D). Names are
// stored and looked up case-insensitively. A Board also tracks a
// "current context": the chip currently under construction by the
// recipe loader or a REPL, and the implicit receiver of AddInputPin,
// AddOutputPin, AddSubgate and WirePins calls issued on its behalf.
type Board struct {
	mu        sync.RWMutex
	templates map[string]*Gate
	names     trie.Trie
	context   string
	singleton bool
}

var (
	singletonMu sync.Mutex
	singleton   *Board
)

// NewBoard creates an empty Board with the nand primitive pre-installed
// and indexed. The nand template is not serialized: Serialize returns
// ErrNotCombinational for every built-in variant, so nand keeps its
// built-in evaluation.
func NewBoard() *Board {
	b := &Board{templates: make(map[string]*Gate)}
	nand := NewNand()
	_ = nand.Serialize()
	b.templates["nand"] = nand
	b.names.Insert("nand")
	return b
}

// NewSingletonBoard creates a Board and installs it as the process-wide
// singleton returned by Singleton, so legacy call sites (the loader, the
// REPL) can reach the active board without threading it through every
// call. Only one singleton may be active at a time; it is cleared by
// Close.
func NewSingletonBoard() *Board {
	b := NewBoard()
	b.singleton = true
	singletonMu.Lock()
	singleton = b
	singletonMu.Unlock()
	return b
}

// Singleton returns the process-wide Board installed by the most recent
// NewSingletonBoard call, or nil if none is active.
func Singleton() *Board {
	singletonMu.Lock()
	defer singletonMu.Unlock()
	return singleton
}

// Close clears the process-wide singleton reference if b holds it. It is
// a no-op for non-singleton boards.
func (b *Board) Close() {
	if !b.singleton {
		return
	}
	singletonMu.Lock()
	if singleton == b {
		singleton = nil
	}
	singletonMu.Unlock()
}

func key(name string) string { return strings.ToLower(name) }

// Create registers a new, empty, unserialized custom gate template under
// name and makes it the current context.
func (b *Board) Create(name string) *Gate {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := NewCustomGate(name)
	b.templates[key(name)] = g
	b.names.Insert(key(name))
	b.context = key(name)
	return g
}

// SetContext makes the named chip the current context. It returns
// ErrUnknownChip if no such template exists.
func (b *Board) SetContext(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.templates[key(name)]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownChip, name)
	}
	b.context = key(name)
	return nil
}

// ResetContext clears the current context.
func (b *Board) ResetContext() {
	b.mu.Lock()
	b.context = ""
	b.mu.Unlock()
}

// Context returns the current context's template, or nil if none is set.
func (b *Board) Context() *Gate {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.context == "" {
		return nil
	}
	return b.templates[b.context]
}

// Get returns the named template, or nil if it is not registered.
func (b *Board) Get(name string) *Gate {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.templates[key(name)]
}

// Contains reports whether name is registered.
func (b *Board) Contains(name string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.templates[key(name)]
	return ok
}

// Save takes ownership of gate and registers it as an immutable template
// under name. Later Duplicate calls on that template (see Instantiate)
// create instance copies.
func (b *Board) Save(name string, gate *Gate) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.templates[key(name)] = gate
	b.names.Insert(key(name))
}

// Search returns every registered chip name starting with prefix.
func (b *Board) Search(prefix string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.names.Search(key(prefix))
}

// ListNames returns every registered chip name.
func (b *Board) ListNames() []string {
	return b.Search("")
}

// Instantiate duplicates the named template into a runnable instance. It
// fails with ErrUnknownChip if the name is not registered.
func (b *Board) Instantiate(name string) (*Gate, error) {
	tmpl := b.Get(name)
	if tmpl == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChip, name)
	}
	return tmpl.Duplicate(), nil
}
