package linalg

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Cholesky computes the lower-triangular factor L of a symmetric
// positive-definite matrix A such that A = L Lᵀ. It returns
// ErrNotPositiveDefinite as soon as a diagonal pivot would be non-positive;
// no pivoting is attempted, so callers are responsible for keeping A
// positive definite (the solver does this via Tikhonov damping).
func Cholesky(a *mat.Dense) (*mat.Dense, error) {
	n, c := a.Dims()
	if n != c {
		panic("linalg: Cholesky requires a square matrix")
	}
	l := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		var sumDiag float64
		for k := 0; k < j; k++ {
			sumDiag += l.At(j, k) * l.At(j, k)
		}
		diag := a.At(j, j) - sumDiag
		if diag <= 0 {
			return nil, ErrNotPositiveDefinite
		}
		ljj := math.Sqrt(diag)
		l.Set(j, j, ljj)

		for i := j + 1; i < n; i++ {
			var sum float64
			for k := 0; k < j; k++ {
				sum += l.At(i, k) * l.At(j, k)
			}
			l.Set(i, j, (a.At(i, j)-sum)/ljj)
		}
	}
	return l, nil
}

// CholeskySolve solves A x = b given A's Cholesky factor L (A = L Lᵀ) via
// forward substitution on L y = b followed by back substitution on Lᵀ x = y.
func CholeskySolve(l *mat.Dense, b *mat.VecDense) *mat.VecDense {
	y := ForwardSubstitute(l, b)
	return BackSubstitute(transpose(l), y)
}
