package linalg

import "gonum.org/v1/gonum/mat"

// ComputeJtJ returns Jᵀ J for the m×n Jacobian J, the normal-equations
// matrix the Levenberg-Marquardt step damps before a Cholesky solve.
func ComputeJtJ(j *mat.Dense) *mat.Dense {
	_, n := j.Dims()
	jtj := mat.NewDense(n, n, nil)
	jtj.Mul(j.T(), j)
	return jtj
}

// ComputeJtr returns Jᵀ r for the m×n Jacobian J and length-m residual r.
func ComputeJtr(j *mat.Dense, r *mat.VecDense) *mat.VecDense {
	_, n := j.Dims()
	jtr := mat.NewVecDense(n, nil)
	jtr.MulVec(j.T(), r)
	return jtr
}
