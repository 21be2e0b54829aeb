package nandkit

import (
	"errors"
	"testing"
)

func TestBoardCreateAndGet(t *testing.T) {
	b := NewBoard()
	if !b.Contains("nand") {
		t.Fatal("new board must pre-install nand")
	}

	g := b.Create("MyGate")
	if b.Context() != g {
		t.Fatal("Create must set the new chip as the current context")
	}
	if got := b.Get("mygate"); got != g {
		t.Fatal("Get must be case-insensitive")
	}
	if !b.Contains("MYGATE") {
		t.Fatal("Contains must be case-insensitive")
	}
}

func TestBoardSetContext(t *testing.T) {
	b := NewBoard()
	b.Create("Foo")
	if err := b.SetContext("nand"); err != nil {
		t.Fatalf("SetContext(nand): %v", err)
	}
	if b.Context().Variant != VariantNand {
		t.Fatalf("context gate = %+v, want nand", b.Context())
	}
	if err := b.SetContext("nope"); !errors.Is(err, ErrUnknownChip) {
		t.Fatalf("SetContext(nope) = %v, want ErrUnknownChip", err)
	}

	b.ResetContext()
	if b.Context() != nil {
		t.Fatal("ResetContext must clear the context")
	}
}

func TestBoardSaveAndInstantiate(t *testing.T) {
	b := NewBoard()
	tmpl := buildAnd()
	b.Save("And", tmpl)

	g, err := b.Instantiate("and")
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	g.Inputs[0].SetState(true)
	g.Inputs[1].SetState(true)
	g.Simulate(false)
	if !g.Outputs[0].State() {
		t.Fatal("instantiated And(1,1) should be true")
	}

	if _, err := b.Instantiate("missing"); !errors.Is(err, ErrUnknownChip) {
		t.Fatalf("Instantiate(missing) = %v, want ErrUnknownChip", err)
	}
}

func TestBoardSearchAndListNames(t *testing.T) {
	b := NewBoard()
	b.Save("Not", NewCustomGate("Not"))
	b.Save("Nor", NewCustomGate("Nor"))
	b.Save("And", NewCustomGate("And"))

	got := b.Search("n")
	want := map[string]bool{"nand": true, "nor": true, "not": true}
	if len(got) != len(want) {
		t.Fatalf("Search(n) = %v, want 3 entries matching %v", got, want)
	}
	for _, n := range got {
		if !want[n] {
			t.Errorf("unexpected name %q in Search(n) result", n)
		}
	}

	all := b.ListNames()
	if len(all) != 4 {
		t.Fatalf("ListNames() = %v, want 4 entries", all)
	}
}

func TestSingletonBoard(t *testing.T) {
	if Singleton() != nil {
		t.Fatal("no singleton should be active before NewSingletonBoard")
	}
	b := NewSingletonBoard()
	if Singleton() != b {
		t.Fatal("Singleton() must return the board just installed")
	}
	b.Close()
	if Singleton() != nil {
		t.Fatal("Close must clear the singleton reference")
	}
}

func TestCloseNonSingletonIsNoop(t *testing.T) {
	outer := NewSingletonBoard()
	defer outer.Close()

	inner := NewBoard()
	inner.Close()
	if Singleton() != outer {
		t.Fatal("Close on a non-singleton board must not clear the active singleton")
	}
}
