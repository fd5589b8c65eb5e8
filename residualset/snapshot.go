package residualset

import "github.com/nlsolve/scalargraph/graph"

// snapshotParams captures the current Data of every parameter node
// paramSlot knows about, keyed by node pointer, so it can be restored
// byte-identical after a compilation pass that may have invoked the
// user's residual-building function (and, through it, touched whatever
// external state that function reads from to decide its graph shape).
func snapshotParams(paramSlot map[*graph.Node]int) map[*graph.Node]float64 {
	snap := make(map[*graph.Node]float64, len(paramSlot))
	for n := range paramSlot {
		snap[n] = n.Data
	}
	return snap
}

func restoreParams(snap map[*graph.Node]float64) {
	for n, v := range snap {
		n.Data = v
	}
}
