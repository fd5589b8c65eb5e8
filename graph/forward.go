package graph

import "github.com/nlsolve/scalargraph/ops"

// Recompute re-runs the forward pass over root's reachable subtree and
// returns root's refreshed Data. Leaf nodes (Const, Param) are left
// untouched — callers that want a new parameter value in effect write it
// directly to the Param node's Data field before calling Recompute. This
// is what lets a kernel.Interpreted bind fresh parameter values into a
// graph built once and re-evaluate it on every solver iteration, instead
// of rebuilding the graph from scratch.
func Recompute(root *Node) float64 {
	topo := topoSort(root)
	for _, n := range topo {
		if len(n.Inputs) == 0 {
			continue
		}
		n.Data = ops.Forward(n.Op, n.Payload, dataOf(n.Inputs))
	}
	return root.Data
}
