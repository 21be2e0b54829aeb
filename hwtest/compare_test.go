package hwtest_test

import (
	"testing"

	"github.com/dcbernard/nandkit"
	"github.com/dcbernard/nandkit/hwtest"
)

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// buildNandXor wires the textbook 4-Nand xor: n1=Nand(a,b);
// out=Nand(Nand(a,n1),Nand(b,n1)).
func buildNandXor() *nandkit.Gate {
	g := nandkit.NewCustomGate("XorNand")
	g.AddInputPin(2)
	g.AddOutputPin(1)
	g.AddSubgate(nandkit.NewNand())
	g.AddSubgate(nandkit.NewNand())
	g.AddSubgate(nandkit.NewNand())
	g.AddSubgate(nandkit.NewNand())

	must(g.WirePins(0, 2)) // n1.a = a
	must(g.WirePins(1, 3)) // n1.b = b
	must(g.WirePins(0, 4)) // n2.a = a
	must(g.WirePins(1001, 5)) // n2.b = n1.out
	must(g.WirePins(1, 6)) // n3.a = b
	must(g.WirePins(1001, 7)) // n3.b = n1.out
	must(g.WirePins(1002, 8)) // n4.a = n2.out
	must(g.WirePins(1003, 9)) // n4.b = n3.out
	must(g.WirePins(1004, 1000)) // out = n4.out
	return g
}

// buildComposedXor wires the same truth table as a Not/And/Or/Nand
// composition, each gate inlined as a raw Nand subtree rather than via
// named templates -- the Xor an HDL chip built from Not/And/Or parts
// would describe, flattened by hand instead of routed through the HDL
// compiler.
func buildComposedXor() *nandkit.Gate {
	g := nandkit.NewCustomGate("XorComposed")
	g.AddInputPin(2)
	g.AddOutputPin(1)

	// na = Not(a) = Nand(a,a); nb = Not(b) = Nand(b,b)
	g.AddSubgate(nandkit.NewNand()) // 0: na
	g.AddSubgate(nandkit.NewNand()) // 1: nb
	// w1 = And(a,nb) = Nand(a,nb) -> Nand(w1n,w1n)
	g.AddSubgate(nandkit.NewNand()) // 2: w1n
	g.AddSubgate(nandkit.NewNand()) // 3: w1
	// w2 = And(na,b) = Nand(na,b) -> Nand(w2n,w2n)
	g.AddSubgate(nandkit.NewNand()) // 4: w2n
	g.AddSubgate(nandkit.NewNand()) // 5: w2
	// out = Or(w1,w2) = Nand(Not(w1),Not(w2))
	g.AddSubgate(nandkit.NewNand()) // 6: notW1
	g.AddSubgate(nandkit.NewNand()) // 7: notW2
	g.AddSubgate(nandkit.NewNand()) // 8: out

	must(g.WirePins(0, 2)) // na.a = a
	must(g.WirePins(0, 3)) // na.b = a
	must(g.WirePins(1, 4)) // nb.a = b
	must(g.WirePins(1, 5)) // nb.b = b

	must(g.WirePins(0, 6)) // w1n.a = a
	must(g.WirePins(1002, 7)) // w1n.b = nb
	must(g.WirePins(1003, 8)) // w1.a = w1n
	must(g.WirePins(1003, 9)) // w1.b = w1n

	must(g.WirePins(1001, 10)) // w2n.a = na
	must(g.WirePins(1, 11)) // w2n.b = b
	must(g.WirePins(1005, 12)) // w2.a = w2n
	must(g.WirePins(1005, 13)) // w2.b = w2n

	must(g.WirePins(1004, 14)) // notW1.a = w1
	must(g.WirePins(1004, 15)) // notW1.b = w1
	must(g.WirePins(1006, 16)) // notW2.a = w2
	must(g.WirePins(1006, 17)) // notW2.b = w2

	must(g.WirePins(1007, 18)) // out.a = notW1
	must(g.WirePins(1008, 19)) // out.b = notW2
	must(g.WirePins(1009, 1000))
	return g
}

func TestComparePartXor(t *testing.T) {
	hwtest.ComparePart(t, 2, buildNandXor(), buildComposedXor())
}
