package ops

import "math"

// sign returns -1, 0, or 1, with sign(0) defined as 0 and not NaN, per the
// source behavior this engine preserves (spec open question: sign/abs at
// zero stay 0, never NaN).
func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// Forward evaluates op on the given input values and payload, returning
// the primitive's result. payload carries the extra scalar constants some
// ops need (the exponent of PowConst, the [lo, hi] bounds of Clamp).
func Forward(op Code, payload []float64, in []float64) float64 {
	switch op {
	case Add:
		return in[0] + in[1]
	case Sub:
		return in[0] - in[1]
	case Mul:
		return in[0] * in[1]
	case Div:
		return in[0] / in[1]
	case Neg:
		return -in[0]
	case Reciprocal:
		return 1 / in[0]
	case PowConst:
		return math.Pow(in[0], payload[0])
	case PowValue:
		return math.Pow(in[0], in[1])
	case Square:
		return in[0] * in[0]
	case Cube:
		return in[0] * in[0] * in[0]
	case Mod:
		return math.Mod(in[0], in[1])
	case Relu:
		return math.Max(0, in[0])
	case Tanh:
		return math.Tanh(in[0])
	case Sigmoid:
		return 1 / (1 + math.Exp(-in[0]))
	case Softplus:
		return math.Log1p(math.Exp(in[0]))
	case Exp:
		return math.Exp(in[0])
	case Log:
		return math.Log(in[0])
	case Sqrt:
		return math.Sqrt(in[0])
	case Abs:
		return math.Abs(in[0])
	case Sign:
		return sign(in[0])
	case Sin:
		return math.Sin(in[0])
	case Cos:
		return math.Cos(in[0])
	case Tan:
		return math.Tan(in[0])
	case Asin:
		return math.Asin(in[0])
	case Acos:
		return math.Acos(in[0])
	case Atan:
		return math.Atan(in[0])
	case Min:
		return math.Min(in[0], in[1])
	case Max:
		return math.Max(in[0], in[1])
	case Clamp:
		lo, hi := payload[0], payload[1]
		return math.Min(math.Max(in[0], lo), hi)
	case Floor:
		return math.Floor(in[0])
	case Ceil:
		return math.Ceil(in[0])
	case Round:
		return math.Round(in[0])
	case Sum:
		var s float64
		for _, v := range in {
			s += v
		}
		return s
	case Mean:
		var s float64
		for _, v := range in {
			s += v
		}
		return s / float64(len(in))
	case Eq:
		return boolF(in[0] == in[1])
	case Neq:
		return boolF(in[0] != in[1])
	case Gt:
		return boolF(in[0] > in[1])
	case Lt:
		return boolF(in[0] < in[1])
	case Gte:
		return boolF(in[0] >= in[1])
	case Lte:
		return boolF(in[0] <= in[1])
	default:
		panic("ops: unhandled op code in Forward: " + op.String())
	}
}

func boolF(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Backward accumulates the upstream gradient "upstream" into grad, one
// entry per element of in, using the analytic partial derivative of op at
// the point (in, out). It never overwrites grad; callers own the
// zero-initialization and += semantics this enables for shared
// subexpressions.
func Backward(op Code, payload []float64, in []float64, out float64, upstream float64, grad []float64) {
	switch op {
	case Add:
		grad[0] += upstream
		grad[1] += upstream
	case Sub:
		grad[0] += upstream
		grad[1] -= upstream
	case Mul:
		grad[0] += in[1] * upstream
		grad[1] += in[0] * upstream
	case Div:
		grad[0] += upstream / in[1]
		grad[1] += -upstream * in[0] / (in[1] * in[1])
	case Neg:
		grad[0] += -upstream
	case Reciprocal:
		grad[0] += -upstream / (in[0] * in[0])
	case PowConst:
		k := payload[0]
		grad[0] += upstream * k * math.Pow(in[0], k-1)
	case PowValue:
		a, b := in[0], in[1]
		grad[0] += upstream * b * math.Pow(a, b-1)
		grad[1] += upstream * math.Log(a) * out
	case Square:
		grad[0] += upstream * 2 * in[0]
	case Cube:
		grad[0] += upstream * 3 * in[0] * in[0]
	case Mod:
		// grad[0], grad[1] unchanged: derivative identically zero.
	case Relu:
		if in[0] > 0 {
			grad[0] += upstream
		}
	case Tanh:
		grad[0] += upstream * (1 - out*out)
	case Sigmoid:
		grad[0] += upstream * out * (1 - out)
	case Softplus:
		sig := 1 / (1 + math.Exp(-in[0]))
		grad[0] += upstream * sig
	case Exp:
		grad[0] += upstream * out
	case Log:
		grad[0] += upstream / in[0]
	case Sqrt:
		grad[0] += upstream / (2 * out)
	case Abs:
		grad[0] += upstream * sign(in[0])
	case Sign:
		// derivative identically zero.
	case Sin:
		grad[0] += upstream * math.Cos(in[0])
	case Cos:
		grad[0] += -upstream * math.Sin(in[0])
	case Tan:
		c := math.Cos(in[0])
		grad[0] += upstream / (c * c)
	case Asin:
		grad[0] += upstream / math.Sqrt(1-in[0]*in[0])
	case Acos:
		grad[0] += -upstream / math.Sqrt(1-in[0]*in[0])
	case Atan:
		grad[0] += upstream / (1 + in[0]*in[0])
	case Min:
		if in[0] <= in[1] {
			grad[0] += upstream
		} else {
			grad[1] += upstream
		}
	case Max:
		if in[0] >= in[1] {
			grad[0] += upstream
		} else {
			grad[1] += upstream
		}
	case Clamp:
		lo, hi := payload[0], payload[1]
		if in[0] > lo && in[0] < hi {
			grad[0] += upstream
		}
	case Floor, Ceil, Round:
		// derivative identically zero.
	case Sum:
		for i := range in {
			grad[i] += upstream
		}
	case Mean:
		n := float64(len(in))
		for i := range in {
			grad[i] += upstream / n
		}
	case Eq, Neq, Gt, Lt, Gte, Lte:
		// comparisons have zero gradient everywhere.
	default:
		panic("ops: unhandled op code in Backward: " + op.String())
	}
}
