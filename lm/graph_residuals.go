package lm

import (
	"github.com/nlsolve/scalargraph/graph"
	"github.com/nlsolve/scalargraph/kernel"
	"gonum.org/v1/gonum/mat"
)

// GraphResidualFunc builds (or rebuilds) the current set of residual
// roots. GraphResiduals re-invokes it on every Evaluate call (once per
// trial step Solve tests) and every EvaluateJacobian call, so a function
// that varies its graph structure across calls is supported, at the cost
// of rebuilding the graph every time.
type GraphResidualFunc func() []*graph.Node

// GraphResiduals adapts a graph-backed residual function to the
// ResidualProvider interface Solve consumes, reading and writing the
// outer parameter vector directly through the *graph.Node leaves that
// represent it.
type GraphResiduals struct {
	params    []*graph.Node
	build     GraphResidualFunc
	paramSlot map[*graph.Node]int
}

// NewGraphResiduals binds params (the ordered parameter vector — these
// are the same *graph.Node leaves build's residuals reference) to build.
func NewGraphResiduals(params []*graph.Node, build GraphResidualFunc) *GraphResiduals {
	paramSlot := make(map[*graph.Node]int, len(params))
	for i, p := range params {
		paramSlot[p] = i
	}
	return &GraphResiduals{params: params, build: build, paramSlot: paramSlot}
}

func (g *GraphResiduals) writeParams(params []float64) {
	for i, node := range g.params {
		node.Data = params[i]
	}
}

// Evaluate recomputes every residual's forward value at params without
// running backward — the cheap path Solve uses to test a tentative step.
func (g *GraphResiduals) Evaluate(params []float64) (residuals []float64, cost float64) {
	g.writeParams(params)
	roots := g.build()
	residuals = make([]float64, len(roots))
	for i, root := range roots {
		v := graph.Recompute(root)
		residuals[i] = v
		cost += v * v
	}
	return residuals, cost
}

// EvaluateJacobian assembles the dense Jacobian by running one backward
// pass per residual root, via a fresh kernel.Interpreted per root: each
// root may reference only some of the outer parameters (e.g. one residual
// in a multi-residual system that doesn't touch every variable), so the
// per-call kernel — not a raw graph.Backward — is what keeps the
// unreferenced columns of that row correctly at 0 instead of carrying over
// another residual's stale Grad.
func (g *GraphResiduals) EvaluateJacobian(params []float64) (residuals []float64, j *mat.Dense, cost float64) {
	roots := g.build()
	n := len(g.params)
	j = mat.NewDense(len(roots), n, nil)
	residuals = make([]float64, len(roots))
	for i, root := range roots {
		k := kernel.NewInterpreted(root, g.paramSlot)
		v, grad := k.Evaluate(params)
		residuals[i] = v
		cost += v * v
		for col := 0; col < n; col++ {
			j.Set(i, col, grad[col])
		}
	}
	return residuals, j, cost
}
