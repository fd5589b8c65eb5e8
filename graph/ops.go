package graph

import "github.com/nlsolve/scalargraph/ops"

// Add returns n + other.
func (n *Node) Add(other *Node) *Node { return newNode(ops.Add, nil, n, other) }

// Sub returns n - other.
func (n *Node) Sub(other *Node) *Node { return newNode(ops.Sub, nil, n, other) }

// Mul returns n * other.
func (n *Node) Mul(other *Node) *Node { return newNode(ops.Mul, nil, n, other) }

// Div returns n / other.
func (n *Node) Div(other *Node) *Node { return newNode(ops.Div, nil, n, other) }

// Neg returns -n.
func (n *Node) Neg() *Node { return newNode(ops.Neg, nil, n) }

// Reciprocal returns 1 / n.
func (n *Node) Reciprocal() *Node { return newNode(ops.Reciprocal, nil, n) }

// PowConst returns n^k for a fixed exponent k.
func (n *Node) PowConst(k float64) *Node { return newNode(ops.PowConst, []float64{k}, n) }

// PowValue returns n^other, differentiable in both the base and exponent.
func (n *Node) PowValue(other *Node) *Node { return newNode(ops.PowValue, nil, n, other) }

// Square returns n * n.
func (n *Node) Square() *Node { return newNode(ops.Square, nil, n) }

// Cube returns n * n * n.
func (n *Node) Cube() *Node { return newNode(ops.Cube, nil, n) }

// Mod returns n modulo other; its gradient is identically zero.
func (n *Node) Mod(other *Node) *Node { return newNode(ops.Mod, nil, n, other) }

// Relu returns max(0, n).
func (n *Node) Relu() *Node { return newNode(ops.Relu, nil, n) }

// Tanh returns tanh(n).
func (n *Node) Tanh() *Node { return newNode(ops.Tanh, nil, n) }

// Sigmoid returns the logistic sigmoid of n.
func (n *Node) Sigmoid() *Node { return newNode(ops.Sigmoid, nil, n) }

// Softplus returns log(1 + exp(n)).
func (n *Node) Softplus() *Node { return newNode(ops.Softplus, nil, n) }

// Exp returns e^n.
func (n *Node) Exp() *Node { return newNode(ops.Exp, nil, n) }

// Log returns the natural logarithm of n.
func (n *Node) Log() *Node { return newNode(ops.Log, nil, n) }

// Sqrt returns the square root of n.
func (n *Node) Sqrt() *Node { return newNode(ops.Sqrt, nil, n) }

// Abs returns |n|; its gradient is sign(n), zero at n == 0.
func (n *Node) Abs() *Node { return newNode(ops.Abs, nil, n) }

// Sign returns -1, 0, or 1; its gradient is identically zero.
func (n *Node) Sign() *Node { return newNode(ops.Sign, nil, n) }

// Sin returns sin(n).
func (n *Node) Sin() *Node { return newNode(ops.Sin, nil, n) }

// Cos returns cos(n).
func (n *Node) Cos() *Node { return newNode(ops.Cos, nil, n) }

// Tan returns tan(n).
func (n *Node) Tan() *Node { return newNode(ops.Tan, nil, n) }

// Asin returns arcsin(n).
func (n *Node) Asin() *Node { return newNode(ops.Asin, nil, n) }

// Acos returns arccos(n).
func (n *Node) Acos() *Node { return newNode(ops.Acos, nil, n) }

// Atan returns arctan(n).
func (n *Node) Atan() *Node { return newNode(ops.Atan, nil, n) }

// Min returns the smaller of n and other; the full upstream gradient
// flows to whichever operand was selected.
func (n *Node) Min(other *Node) *Node { return newNode(ops.Min, nil, n, other) }

// Max returns the larger of n and other.
func (n *Node) Max(other *Node) *Node { return newNode(ops.Max, nil, n, other) }

// Clamp returns n restricted to [lo, hi]. Gradient flows through only
// when n lies strictly inside the interval.
func (n *Node) Clamp(lo, hi float64) *Node { return newNode(ops.Clamp, []float64{lo, hi}, n) }

// Floor returns the greatest integer value <= n; gradient identically zero.
func (n *Node) Floor() *Node { return newNode(ops.Floor, nil, n) }

// Ceil returns the least integer value >= n; gradient identically zero.
func (n *Node) Ceil() *Node { return newNode(ops.Ceil, nil, n) }

// Round returns n rounded to the nearest integer; gradient identically zero.
func (n *Node) Round() *Node { return newNode(ops.Round, nil, n) }

// Eq returns 1 if n == other else 0; gradient identically zero.
func (n *Node) Eq(other *Node) *Node { return newNode(ops.Eq, nil, n, other) }

// Neq returns 1 if n != other else 0; gradient identically zero.
func (n *Node) Neq(other *Node) *Node { return newNode(ops.Neq, nil, n, other) }

// Gt returns 1 if n > other else 0; gradient identically zero.
func (n *Node) Gt(other *Node) *Node { return newNode(ops.Gt, nil, n, other) }

// Lt returns 1 if n < other else 0; gradient identically zero.
func (n *Node) Lt(other *Node) *Node { return newNode(ops.Lt, nil, n, other) }

// Gte returns 1 if n >= other else 0; gradient identically zero.
func (n *Node) Gte(other *Node) *Node { return newNode(ops.Gte, nil, n, other) }

// Lte returns 1 if n <= other else 0; gradient identically zero.
func (n *Node) Lte(other *Node) *Node { return newNode(ops.Lte, nil, n, other) }

// Sum returns the sum of nodes, an aggregator whose gradient distributes
// the upstream value unchanged to every operand.
func Sum(nodes ...*Node) *Node { return newNode(ops.Sum, nil, nodes...) }

// Mean returns the arithmetic mean of nodes.
func Mean(nodes ...*Node) *Node { return newNode(ops.Mean, nil, nodes...) }
