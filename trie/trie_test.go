package trie

import (
	"reflect"
	"testing"
)

func TestInsertContains(t *testing.T) {
	var tr Trie
	tr.Insert("nand")
	tr.Insert("nor")
	tr.Insert("not")

	for _, name := range []string{"nand", "nor", "not"} {
		if !tr.Contains(name) {
			t.Errorf("Contains(%q) = false, want true", name)
		}
	}
	if tr.Contains("na") {
		t.Error("Contains(\"na\") = true, want false (not a full key)")
	}
	if tr.Contains("nands") {
		t.Error("Contains(\"nands\") = true, want false")
	}
}

func TestSearchPrefix(t *testing.T) {
	var tr Trie
	for _, s := range []string{"and", "or", "not", "nand", "nor"} {
		tr.Insert(s)
	}
	got := tr.Search("n")
	want := []string{"nand", "nor", "not"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Search(\"n\") = %v, want %v", got, want)
	}
	if got := tr.Search("zz"); got != nil {
		t.Errorf("Search(\"zz\") = %v, want nil", got)
	}
}

func TestHasPrefix(t *testing.T) {
	var tr Trie
	tr.Insert("mux16")
	if !tr.HasPrefix("mux") {
		t.Error("HasPrefix(\"mux\") = false, want true")
	}
	if tr.HasPrefix("dff") {
		t.Error("HasPrefix(\"dff\") = true, want false")
	}
}

func TestFuzzy(t *testing.T) {
	var tr Trie
	for _, s := range []string{"mux16", "mux", "nand", "not"} {
		tr.Insert(s)
	}
	got := tr.Fuzzy("mux1", 2)
	found := false
	for _, g := range got {
		if g == "mux16" {
			found = true
		}
	}
	if !found {
		t.Errorf("Fuzzy(\"mux1\", 2) = %v, want it to contain \"mux16\"", got)
	}
}
