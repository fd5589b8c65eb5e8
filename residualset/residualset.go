// Package residualset compiles a set of residual expression graphs into a
// reusable evaluator: a CompiledResidualSet exposes value, Jacobian, and
// summed-gradient operations over the outer parameter vector, backed by
// kernels the package kernel compiler shares across structurally
// identical residuals.
package residualset

import (
	"github.com/nlsolve/scalargraph/graph"
	"github.com/nlsolve/scalargraph/kernel"
	"gonum.org/v1/gonum/mat"
)

// Build produces the current set of residual roots. It may be invoked
// more than once (lazy mode re-invokes it on every Evaluate* call to
// detect structure drift); a function used only in eager mode may assume
// it is called exactly once, at construction.
type Build func() []*graph.Node

// CompiledResidualSet evaluates a fixed parameter vector of length N
// against a (possibly large) set of residuals, reusing one compiled
// kernel per distinct residual structure.
type CompiledResidualSet struct {
	compiler  *kernel.Compiler
	build     Build
	paramSlot map[*graph.Node]int
	n         int
	lazy      bool
	roots     []*graph.Node
	kernels   []*kernel.Specialized
}

// NewEager compiles every residual build() produces exactly once, up
// front. Subsequent Evaluate* calls never re-invoke build; correct only
// when the residual graph structure is fixed across the solve.
func NewEager(build Build, paramSlot map[*graph.Node]int, n int) *CompiledResidualSet {
	return newCompiledResidualSet(build, paramSlot, n, false)
}

// NewLazy compiles build()'s residuals once at construction like NewEager,
// but re-invokes build on every subsequent Evaluate* call: each residual's
// canonical signature is rechecked against its previously bound kernel,
// and only the entries whose structure actually changed are recompiled.
func NewLazy(build Build, paramSlot map[*graph.Node]int, n int) *CompiledResidualSet {
	return newCompiledResidualSet(build, paramSlot, n, true)
}

func newCompiledResidualSet(build Build, paramSlot map[*graph.Node]int, n int, lazy bool) *CompiledResidualSet {
	snap := snapshotParams(paramSlot)
	roots := build()
	compiler := kernel.NewCompiler()
	kernels := make([]*kernel.Specialized, len(roots))
	for i, r := range roots {
		kernels[i] = compiler.Compile(r, paramSlot)
	}
	restoreParams(snap)

	return &CompiledResidualSet{
		compiler:  compiler,
		build:     build,
		paramSlot: paramSlot,
		n:         n,
		lazy:      lazy,
		roots:     roots,
		kernels:   kernels,
	}
}

// refresh re-invokes build in lazy mode and rebinds any residual whose
// structure no longer matches its previously compiled kernel. It is a
// no-op in eager mode.
func (s *CompiledResidualSet) refresh() {
	if !s.lazy {
		return
	}
	roots := s.build()
	if len(roots) != len(s.kernels) {
		kernels := make([]*kernel.Specialized, len(roots))
		for i, r := range roots {
			kernels[i] = s.compiler.Compile(r, s.paramSlot)
		}
		s.kernels = kernels
		s.roots = roots
		return
	}
	for i, r := range roots {
		if err := kernel.CheckSignature(s.kernels[i], r, s.paramSlot); err != nil {
			s.kernels[i] = s.compiler.Compile(r, s.paramSlot)
		}
	}
	s.roots = roots
}

// Evaluate returns every residual's value at params and the summed
// squared cost Σ rᵢ².
func (s *CompiledResidualSet) Evaluate(params []float64) (residuals []float64, cost float64) {
	s.refresh()
	residuals = make([]float64, len(s.kernels))
	for i, k := range s.kernels {
		v, _ := k.Evaluate(params)
		residuals[i] = v
		cost += v * v
	}
	return residuals, cost
}

// EvaluateJacobian returns every residual's value, the dense m×n Jacobian
// (row i is residual i's gradient with respect to the outer parameter
// vector), and the summed squared cost.
func (s *CompiledResidualSet) EvaluateJacobian(params []float64) (residuals []float64, j *mat.Dense, cost float64) {
	s.refresh()
	m := len(s.kernels)
	j = mat.NewDense(m, s.n, nil)
	residuals = make([]float64, m)
	for i, k := range s.kernels {
		v, grad := k.Evaluate(params)
		residuals[i] = v
		cost += v * v
		for col := 0; col < s.n; col++ {
			j.Set(i, col, grad[col])
		}
	}
	return residuals, j, cost
}

// EvaluateSumWithGradient returns Σ rᵢ and its gradient with respect to
// the outer parameter vector, accumulated in place across every kernel —
// the hot path for gradient-only consumers that never need a Jacobian.
func (s *CompiledResidualSet) EvaluateSumWithGradient(params []float64) (value float64, gradient []float64) {
	s.refresh()
	gradient = make([]float64, s.n)
	for _, k := range s.kernels {
		v, grad := k.Evaluate(params)
		value += v
		for i := range gradient {
			gradient[i] += grad[i]
		}
	}
	return value, gradient
}

// KernelCount is the number of distinct compiled kernels backing this
// set's residuals.
func (s *CompiledResidualSet) KernelCount() int { return s.compiler.KernelCount() }

// NumFunctions is the number of residuals this set evaluates.
func (s *CompiledResidualSet) NumFunctions() int { return len(s.kernels) }

// KernelReuseFactor is NumFunctions / KernelCount, the average number of
// residuals sharing each compiled kernel.
func (s *CompiledResidualSet) KernelReuseFactor() float64 {
	kc := s.KernelCount()
	if kc == 0 {
		return 0
	}
	return float64(s.NumFunctions()) / float64(kc)
}
