// Package hwtest provides brute-force comparison helpers for gate
// templates, ported from the teacher's hwtest package to this project's
// pin-slice Gate model.
package hwtest

import (
	"math/rand"
	"testing"
	"time"

	"github.com/dcbernard/nandkit"
)

// maxExhaustiveBits caps how wide an input bus ComparePart will
// enumerate exhaustively before switching to random sampling.
const maxExhaustiveBits = 16

// sampleIterations is how many random vectors ComparePart tries once an
// input bus is too wide to enumerate exhaustively.
const sampleIterations = 1 << 12

// ComparePart duplicates tmpl1 and tmpl2 and checks that they produce
// identical outputs for every input combination on their first width
// input pins, MSB-first (the convention Gate.ApplyInput/SerializeOutput
// already use). Both templates must have the same input width and the
// same number of output pins.
func ComparePart(t *testing.T, width int, tmpl1, tmpl2 *nandkit.Gate) {
	t.Helper()

	if len(tmpl1.Outputs) != len(tmpl2.Outputs) {
		t.Fatalf("output width mismatch: %d vs %d", len(tmpl1.Outputs), len(tmpl2.Outputs))
	}

	check := func(mask uint64) {
		g1 := tmpl1.Duplicate()
		g2 := tmpl2.Duplicate()
		g1.ApplyInput(mask, width)
		g2.ApplyInput(mask, width)
		g1.Simulate(false)
		g2.Simulate(false)
		if o1, o2 := g1.SerializeOutput(), g2.SerializeOutput(); o1 != o2 {
			t.Fatalf("input %#x: out1=%#x out2=%#x", mask, o1, o2)
		}
	}

	if width <= maxExhaustiveBits {
		n := uint64(1) << uint(width)
		for mask := uint64(0); mask < n; mask++ {
			check(mask)
		}
		return
	}

	rand.Seed(time.Now().UnixNano())
	mask := uint64(1)<<uint(width) - 1
	for i := 0; i < sampleIterations; i++ {
		check(uint64(rand.Int63()) & mask)
	}
}
