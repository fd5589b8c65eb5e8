package kernel

import (
	"github.com/nlsolve/scalargraph/canon"
	"github.com/nlsolve/scalargraph/ops"
)

// Tape is the compiled form of a canon.Signature's Program: a straight-
// line sequence of Instructions, each consuming either an external input
// or an earlier instruction's result. A Tape depends only on structure —
// it carries no reference to any specific parameter slot or constant
// value — so the Compiler caches and shares exactly one Tape per distinct
// Signature, however many residuals have that shape.
type Tape struct {
	program []canon.Instruction
}

// eval runs the forward and reverse programs against extVals (the
// gathered external inputs, in Signature.Externals order) and returns the
// tape's output value and the gradient with respect to each external, in
// that same order.
func (t *Tape) eval(extVals []float64) (value float64, extGrad []float64) {
	extGrad = make([]float64, len(extVals))

	if len(t.program) == 0 {
		// The residual root is itself a bare external (e.g. just a
		// parameter, or just a constant): value passes through, and the
		// seed gradient flows directly to that one external.
		if len(extVals) > 0 {
			value = extVals[0]
			extGrad[0] = 1
		}
		return value, extGrad
	}

	temps := make([]float64, len(t.program))
	for i, instr := range t.program {
		in := gather(instr.Operands, extVals, temps)
		temps[i] = ops.Forward(instr.Op, instr.Payload, in)
	}
	value = temps[len(temps)-1]

	tempGrad := make([]float64, len(temps))
	tempGrad[len(temps)-1] = 1
	for i := len(t.program) - 1; i >= 0; i-- {
		instr := t.program[i]
		in := gather(instr.Operands, extVals, temps)
		local := make([]float64, len(instr.Operands))
		ops.Backward(instr.Op, instr.Payload, in, temps[i], tempGrad[i], local)
		for j, operand := range instr.Operands {
			switch operand.Kind {
			case canon.ExternalOperand:
				extGrad[operand.Index] += local[j]
			case canon.TempOperand:
				tempGrad[operand.Index] += local[j]
			}
		}
	}
	return value, extGrad
}

func gather(operands []canon.Operand, extVals, temps []float64) []float64 {
	in := make([]float64, len(operands))
	for i, o := range operands {
		switch o.Kind {
		case canon.ExternalOperand:
			in[i] = extVals[o.Index]
		case canon.TempOperand:
			in[i] = temps[o.Index]
		}
	}
	return in
}
