package linalg

import "gonum.org/v1/gonum/mat"

// ForwardSubstitute solves L x = b for lower-triangular L.
func ForwardSubstitute(l *mat.Dense, b *mat.VecDense) *mat.VecDense {
	n, _ := l.Dims()
	x := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		sum := b.AtVec(i)
		for j := 0; j < i; j++ {
			sum -= l.At(i, j) * x.AtVec(j)
		}
		x.SetVec(i, sum/l.At(i, i))
	}
	return x
}

// BackSubstitute solves U x = y for upper-triangular U.
func BackSubstitute(u *mat.Dense, y *mat.VecDense) *mat.VecDense {
	n, _ := u.Dims()
	x := mat.NewVecDense(n, nil)
	for i := n - 1; i >= 0; i-- {
		sum := y.AtVec(i)
		for j := i + 1; j < n; j++ {
			sum -= u.At(i, j) * x.AtVec(j)
		}
		x.SetVec(i, sum/u.At(i, i))
	}
	return x
}

// transpose returns a materialized transpose of a, since the Cholesky and
// QR solves below need to index the transposed triangle directly rather
// than through mat's lazy Transpose view.
func transpose(a *mat.Dense) *mat.Dense {
	r, c := a.Dims()
	t := mat.NewDense(c, r, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			t.Set(j, i, a.At(i, j))
		}
	}
	return t
}
