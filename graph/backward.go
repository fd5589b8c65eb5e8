package graph

import "github.com/nlsolve/scalargraph/ops"

// topoSort returns the nodes reachable from root in post-order (every
// node appears after all of its inputs), the reverse-topological order
// spec.md's backward algorithm requires. Shared inputs are visited once;
// revisiting the same node through a second usage path (e.g. t.Mul(t))
// is a no-op here and is instead handled by += accumulation during the
// backward sweep itself, so every usage still contributes.
func topoSort(root *Node) []*Node {
	visited := make(map[*Node]bool)
	order := make([]*Node, 0)
	var visit func(*Node)
	visit = func(n *Node) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, in := range n.Inputs {
			visit(in)
		}
		order = append(order, n)
	}
	visit(root)
	return order
}

// ZeroGradTree zeroes Grad on every node reachable from root.
func ZeroGradTree(root *Node) {
	for _, n := range topoSort(root) {
		n.Grad = 0
	}
}

// Backward runs a reverse-mode pass seeded at root: it zeroes Grad across
// root's reachable subtree, sets root.Grad = 1, and walks the subtree in
// reverse-topological order accumulating each node's local partials into
// its inputs' Grad fields. Nodes with RequiresGrad false are skipped as
// accumulation targets, but remain visited (and so still propagate
// through any other path that reaches them).
func Backward(root *Node) {
	topo := topoSort(root)
	for _, n := range topo {
		n.Grad = 0
	}
	root.Grad = 1
	backwardPass(topo)
}

// BackwardFrom runs the same reverse sweep as Backward but assumes the
// subtree's gradients have already been zeroed (e.g. by the solver's
// per-residual ZeroGradTree call before seeding many roots in turn).
func BackwardFrom(root *Node) {
	topo := topoSort(root)
	root.Grad = 1
	backwardPass(topo)
}

func backwardPass(topo []*Node) {
	grad := make([]float64, 4) // reused scratch buffer, grown as needed
	for i := len(topo) - 1; i >= 0; i-- {
		n := topo[i]
		if len(n.Inputs) == 0 {
			continue
		}
		if cap(grad) < len(n.Inputs) {
			grad = make([]float64, len(n.Inputs))
		}
		local := grad[:len(n.Inputs)]
		for i := range local {
			local[i] = 0
		}
		ops.Backward(n.Op, n.Payload, dataOf(n.Inputs), n.Data, n.Grad, local)
		for j, in := range n.Inputs {
			if in.RequiresGrad {
				in.Grad += local[j]
			}
		}
	}
}
