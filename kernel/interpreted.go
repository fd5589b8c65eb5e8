package kernel

import "github.com/nlsolve/scalargraph/graph"

// Interpreted is the uncompiled Kernel variant: it re-walks root's live
// subgraph on every Evaluate call (forward recompute, then full reverse
// pass), via package graph directly. This is the solver's lazy/structure-
// may-vary path — it never goes through the canonicalizer, so it has no
// cache to go stale and correctly reflects whatever the residual function
// built on its most recent invocation.
type Interpreted struct {
	root     *graph.Node
	slotNode map[int]*graph.Node
}

// NewInterpreted binds root to the outer parameter vector via paramSlot
// (every Param node reachable from root must appear in paramSlot, mapping
// it to its slot; extra entries for parameters root does not reference
// are harmless and ignored beyond keeping that node's Data synced).
func NewInterpreted(root *graph.Node, paramSlot map[*graph.Node]int) *Interpreted {
	slotNode := make(map[int]*graph.Node, len(paramSlot))
	for node, slot := range paramSlot {
		slotNode[slot] = node
	}
	return &Interpreted{root: root, slotNode: slotNode}
}

// Evaluate writes params into the bound parameter nodes' Data, recomputes
// the forward pass, runs backward, and reads the result back out.
//
// graph.Backward only zeroes Grad across root's own reachable subtree, so
// a bound parameter root's subtree doesn't reference (e.g. one residual in
// a multi-residual system that only touches some of the outer parameters)
// would otherwise keep whatever stale Grad was left on it by a previous
// call. Zeroing every bound slot's Grad up front, before Backward's own
// (redundant but harmless) zeroing of the nodes it does touch, keeps
// unreferenced slots correctly at 0 instead of leaking stale gradient.
func (k *Interpreted) Evaluate(params []float64) (float64, []float64) {
	for slot, node := range k.slotNode {
		if slot < len(params) {
			node.Data = params[slot]
		}
		node.Grad = 0
	}
	value := graph.Recompute(k.root)
	graph.Backward(k.root)

	grad := make([]float64, len(params))
	for slot, node := range k.slotNode {
		if slot < len(params) {
			grad[slot] = node.Grad
		}
	}
	return value, grad
}
