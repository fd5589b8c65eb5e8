package canon

import (
	"testing"

	"github.com/nlsolve/scalargraph/graph"
)

func TestCommutativeSignaturesMatch(t *testing.T) {
	a := graph.W(1)
	b := graph.W(2)
	slots := map[*graph.Node]int{a: 0, b: 1}

	ab := Canonicalize(a.Add(b), slots)
	ba := Canonicalize(b.Add(a), slots)
	if ab.Key != ba.Key {
		t.Fatalf("add(a,b) key %q != add(b,a) key %q", ab.Key, ba.Key)
	}
	if ab.Hash != ba.Hash {
		t.Fatalf("add(a,b) hash != add(b,a) hash")
	}
}

// TestCommutativeSignaturesMatchWithNonLeafOperands guards against sorting
// commutative children by a key that already embeds local ids (circular:
// the id order would depend on the traversal order the sort exists to fix).
// Add(Mul(pA,pB), pC) and Add(pC, Mul(pA,pB)) swap a non-leaf operand with a
// leaf one, so a broken sort produces different keys even though Add is
// commutative.
func TestCommutativeSignaturesMatchWithNonLeafOperands(t *testing.T) {
	pA := graph.W(1)
	pB := graph.W(2)
	pC := graph.W(3)
	slots := map[*graph.Node]int{pA: 0, pB: 1, pC: 2}

	root1 := pA.Mul(pB).Add(pC)
	root2 := pC.Add(pA.Mul(pB))

	sig1 := Canonicalize(root1, slots)
	sig2 := Canonicalize(root2, slots)
	if sig1.Key != sig2.Key {
		t.Fatalf("add(mul(pA,pB),pC) key %q != add(pC,mul(pA,pB)) key %q", sig1.Key, sig2.Key)
	}
	if sig1.Hash != sig2.Hash {
		t.Fatalf("add(mul(pA,pB),pC) hash != add(pC,mul(pA,pB)) hash")
	}
}

// TestNonCommutativeSignaturesDiffer checks that Sub keeps its operand
// order. Leaf ids follow traversal position, not parameter slot, so
// sub(a,b) and sub(b,a) over two parameters share the key sub[P(0),P(1)]
// and differ in the slot order of their Externals; swapping a parameter
// with a constant changes the key itself.
func TestNonCommutativeSignaturesDiffer(t *testing.T) {
	a := graph.W(1)
	b := graph.W(2)
	slots := map[*graph.Node]int{a: 0, b: 1}

	ab := Canonicalize(a.Sub(b), slots)
	ba := Canonicalize(b.Sub(a), slots)
	if ab.Externals[0].Slot != 0 || ab.Externals[1].Slot != 1 || ba.Externals[0].Slot != 1 || ba.Externals[1].Slot != 0 {
		t.Fatalf("sub(a,b) externals %+v, sub(b,a) externals %+v, want slots [0 1] and [1 0]", ab.Externals, ba.Externals)
	}

	k := graph.C(3)
	ak := Canonicalize(a.Sub(k), slots)
	ka := Canonicalize(k.Sub(a), slots)
	if ak.Key == ka.Key {
		t.Fatalf("sub(a,k) and sub(k,a) produced equal keys %q", ak.Key)
	}
}

// TestStructuralReuseAcrossDistinctParametersAndConstants mirrors spec.md's
// end-to-end scenario 5: many residuals of identical shape (p - target)²,
// each referencing a distinct parameter AND a distinct constant target,
// must still canonicalize to the same signature.
func TestStructuralReuseAcrossDistinctParametersAndConstants(t *testing.T) {
	p1 := graph.W(0.3)
	p2 := graph.W(0.7)
	target1 := graph.C(0.1)
	target2 := graph.C(0.2)

	r1 := p1.Sub(target1).Square()
	r2 := p2.Sub(target2).Square()

	sig1 := Canonicalize(r1, map[*graph.Node]int{p1: 0})
	sig2 := Canonicalize(r2, map[*graph.Node]int{p2: 1})

	if sig1.Key != sig2.Key {
		t.Fatalf("structurally identical residuals over distinct constants got different keys:\n%q\n%q", sig1.Key, sig2.Key)
	}
	if len(sig1.Externals) != 2 || sig1.Externals[0].Kind != ParamExternal || sig1.Externals[0].Slot != 0 {
		t.Fatalf("sig1.Externals = %+v, want [Param(0), Const(...)]", sig1.Externals)
	}
	if sig2.Externals[0].Slot != 1 {
		t.Fatalf("sig2.Externals[0].Slot = %v, want 1", sig2.Externals[0].Slot)
	}
	if sig1.Externals[1].Value != 0.1 || sig2.Externals[1].Value != 0.2 {
		t.Fatalf("captured constant values = %v, %v, want 0.1, 0.2", sig1.Externals[1].Value, sig2.Externals[1].Value)
	}
}

func TestExternalsDedupedOnRepeatedUsage(t *testing.T) {
	p := graph.W(2)
	slots := map[*graph.Node]int{p: 5}
	sig := Canonicalize(p.Mul(p), slots)
	if len(sig.Externals) != 1 || sig.Externals[0].Slot != 5 {
		t.Fatalf("Externals = %+v, want a single Param(5) entry (p used twice)", sig.Externals)
	}
}

func TestSameParamTwiceDiffersFromTwoDistinctParams(t *testing.T) {
	p := graph.W(2)
	q := graph.W(3)

	same := Canonicalize(p.Mul(p), map[*graph.Node]int{p: 0})
	distinct := Canonicalize(p.Mul(q), map[*graph.Node]int{p: 0, q: 1})
	if same.Key == distinct.Key {
		t.Fatalf("mul(p,p) and mul(p,q) produced equal keys %q", same.Key)
	}
}

func TestSharedSubexpressionCollapses(t *testing.T) {
	p := graph.W(2)
	q := graph.W(3)
	shared := p.Add(q)
	left := shared.Mul(graph.C(2))
	right := shared.Mul(graph.C(2))

	slots := map[*graph.Node]int{p: 0, q: 1}
	sigL := Canonicalize(left, slots)
	sigR := Canonicalize(right, slots)
	if sigL.Key != sigR.Key {
		t.Fatalf("identical expressions over a shared subexpression differ: %q vs %q", sigL.Key, sigR.Key)
	}
}

func TestLeafIndexMatchesExternals(t *testing.T) {
	p := graph.W(1)
	q := graph.W(2)
	sig := Canonicalize(p.Add(q), map[*graph.Node]int{p: 0, q: 1})
	for leaf, idx := range sig.LeafIndex {
		if idx < 0 || idx >= len(sig.Externals) {
			t.Fatalf("LeafIndex[%v] = %d out of range", leaf, idx)
		}
	}
	if len(sig.LeafIndex) != len(sig.Externals) {
		t.Fatalf("len(LeafIndex)=%d != len(Externals)=%d", len(sig.LeafIndex), len(sig.Externals))
	}
}
