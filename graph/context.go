package graph

import "github.com/nlsolve/scalargraph/ops"

// Context is the explicit, process-wide state the rest of the engine
// threads node construction through: a no-grad scope flag, and a registry
// of trainable leaves used by ZeroGradAll. Most callers use the package
// functions (W, C, NoGrad, ZeroGradAll), which operate on Default; an
// isolated Context lets a caller run an independent graph, e.g. to keep
// two concurrent solves (§5: the graph is not safe for concurrent
// mutation) from sharing state.
type Context struct {
	noGrad bool
	params []*Node
}

// NewContext returns a fresh, empty Context.
func NewContext() *Context {
	return &Context{}
}

// Default is the package-level Context used by W, C, NoGrad and
// ZeroGradAll.
var Default = NewContext()

// W creates a trainable weight leaf with the given initial value.
func (c *Context) W(data float64) *Node {
	n := &Node{Data: data, Op: ops.Param, RequiresGrad: !c.noGrad, ctx: c}
	if !c.noGrad {
		c.params = append(c.params, n)
	}
	return n
}

// C creates a constant leaf; it never requires grad and has no inputs.
func (c *Context) C(data float64) *Node {
	return &Node{Data: data, Op: ops.Const, ctx: c}
}

// NoGrad runs fn with this context's no-grad scope engaged: every node
// built inside fn (directly or as an intermediate of an operation) gets
// RequiresGrad false and is not registered as a trainable parameter.
func (c *Context) NoGrad(fn func()) {
	prev := c.noGrad
	c.noGrad = true
	defer func() { c.noGrad = prev }()
	fn()
}

// ZeroGradAll zeroes Grad on every parameter leaf this context has ever
// produced via W.
func (c *Context) ZeroGradAll() {
	for _, p := range c.params {
		p.Grad = 0
	}
}

// W creates a trainable weight leaf on the Default context.
func W(data float64) *Node { return Default.W(data) }

// C creates a constant leaf on the Default context.
func C(data float64) *Node { return Default.C(data) }

// NoGrad runs fn with the Default context's no-grad scope engaged.
func NoGrad(fn func()) { Default.NoGrad(fn) }

// ZeroGradAll zeroes Grad on every parameter the Default context has
// produced via W.
func ZeroGradAll() { Default.ZeroGradAll() }
