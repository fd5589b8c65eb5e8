// Package graph implements the scalar autodiff computation graph: node
// construction, forward evaluation (computed eagerly at construction time),
// and reverse-mode gradient propagation.
package graph

import "github.com/nlsolve/scalargraph/ops"

// Node represents one intermediate value in a scalar computation. Data
// holds its current numeric value; Grad accumulates the reverse-mode
// gradient and is reset between backward passes. Inputs, Op and Payload
// together describe how Data was computed and let the canonicalizer and
// kernel compiler (packages canon, kernel) introspect the graph without
// re-deriving it from closures.
type Node struct {
	Data         float64
	Grad         float64
	RequiresGrad bool
	Inputs       []*Node
	Op           ops.Code
	Payload      []float64

	// Label is a human-readable diagnostic name; it carries no semantics.
	Label string
	// ParamName is a stable identifier a caller may use to recognize this
	// node as the same logical parameter across residual-function calls.
	// The kernel compiler does not require it: parameter identity and
	// slot position are established by node pointer, via the ordered
	// parameter vector passed to Compile.
	ParamName string

	ctx *Context
}

// IsLeaf reports whether n is a Const or Param node with no inputs.
func (n *Node) IsLeaf() bool {
	return len(n.Inputs) == 0
}

func dataOf(nodes []*Node) []float64 {
	vals := make([]float64, len(nodes))
	for i, n := range nodes {
		vals[i] = n.Data
	}
	return vals
}

func anyRequiresGrad(nodes []*Node) bool {
	for _, n := range nodes {
		if n.RequiresGrad {
			return true
		}
	}
	return false
}

// newNode builds a derived node for op applied to inputs, evaluating its
// forward value immediately. RequiresGrad follows spec: true if any input
// requires grad, unless the owning context is in a no-grad scope.
func newNode(op ops.Code, payload []float64, inputs ...*Node) *Node {
	var ctx *Context
	if len(inputs) > 0 {
		ctx = inputs[0].ctx
	} else {
		ctx = Default
	}
	requiresGrad := !ctx.noGrad && anyRequiresGrad(inputs)
	data := ops.Forward(op, payload, dataOf(inputs))
	return &Node{
		Data:         data,
		Op:           op,
		Payload:      payload,
		Inputs:       inputs,
		RequiresGrad: requiresGrad,
		ctx:          ctx,
	}
}
