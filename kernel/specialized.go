package kernel

import "github.com/nlsolve/scalargraph/canon"

// Specialized is the compiled Kernel variant: it executes a shared Tape
// against this residual's own Externals binding (which outer slot, or
// which captured constant, each tape input reads from). Many Specialized
// values across many residuals of identical structure point to the same
// *Tape — that shared pointer is what the kernel_reuse_factor diagnostic
// (package residualset) counts.
type Specialized struct {
	tape      *Tape
	externals []canon.External
	key       string // the canon.Signature.Key this kernel was compiled from
}

// Evaluate gathers this residual's externals out of the outer parameter
// vector, runs the shared tape, and scatters the per-external gradient
// back into a full-length grad vector.
func (s *Specialized) Evaluate(params []float64) (float64, []float64) {
	extVals := make([]float64, len(s.externals))
	for i, e := range s.externals {
		switch e.Kind {
		case canon.ParamExternal:
			extVals[i] = params[e.Slot]
		case canon.ConstExternal:
			extVals[i] = e.Value
		}
	}

	value, extGrad := s.tape.eval(extVals)

	grad := make([]float64, len(params))
	for i, e := range s.externals {
		if e.Kind == canon.ParamExternal {
			grad[e.Slot] += extGrad[i]
		}
	}
	return value, grad
}
