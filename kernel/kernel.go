// Package kernel turns a residual's expression graph into a repeatedly
// invocable evaluator: given the current outer parameter vector, produce
// the residual's scalar value and its gradient with respect to that
// vector. Two implementations share the Kernel interface — Interpreted,
// which walks the live graph.Node subgraph on every call, and Specialized,
// which executes a cached straight-line tape compiled once per distinct
// canonical structure (package canon) and shared across every residual
// with that structure.
package kernel

// Kernel evaluates a residual's value and gradient at a given point in
// the outer parameter vector. grad has the same length as params; the
// entries at slots the residual's graph never touches are left at zero.
type Kernel interface {
	Evaluate(params []float64) (value float64, grad []float64)
}
