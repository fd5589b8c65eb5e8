package linalg

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// QRDecompose factors an m×n matrix A (m need not be >= n) into an
// orthonormal m×m matrix Q and an m×n upper-trapezoidal matrix R with
// A = Q R, using Householder reflections. Zero-norm columns (already
// zeroed by a prior reflection, or identically zero in A) are left
// untouched rather than producing a division by zero.
func QRDecompose(a *mat.Dense) (q, r *mat.Dense) {
	m, n := a.Dims()
	r = mat.NewDense(m, n, nil)
	r.Copy(a)
	q = identity(m)

	steps := n
	if m < steps {
		steps = m
	}
	for k := 0; k < steps; k++ {
		var normX float64
		for i := k; i < m; i++ {
			normX += r.At(i, k) * r.At(i, k)
		}
		normX = math.Sqrt(normX)
		if normX == 0 {
			continue
		}

		alpha := -normX
		if r.At(k, k) < 0 {
			alpha = normX
		}

		v := make([]float64, m)
		for i := k; i < m; i++ {
			v[i] = r.At(i, k)
		}
		v[k] -= alpha

		var vNormSq float64
		for i := k; i < m; i++ {
			vNormSq += v[i] * v[i]
		}
		if vNormSq == 0 {
			continue
		}

		householderLeft(r, v, vNormSq, k, m, n)
		householderRight(q, v, vNormSq, k, m)

		r.Set(k, k, alpha)
		for i := k + 1; i < m; i++ {
			r.Set(i, k, 0)
		}
	}
	return q, r
}

// householderLeft applies M := H M in place, where H = I - 2vvᵀ/(vᵀv) is
// the Householder reflector built from v (nonzero only on [k, rows)).
func householderLeft(m *mat.Dense, v []float64, vNormSq float64, k, rows, cols int) {
	for j := 0; j < cols; j++ {
		var dot float64
		for i := k; i < rows; i++ {
			dot += v[i] * m.At(i, j)
		}
		factor := 2 * dot / vNormSq
		if factor == 0 {
			continue
		}
		for i := k; i < rows; i++ {
			m.Set(i, j, m.At(i, j)-factor*v[i])
		}
	}
}

// householderRight applies M := M H in place across an m×m matrix M.
func householderRight(m *mat.Dense, v []float64, vNormSq float64, k, n int) {
	for i := 0; i < n; i++ {
		var dot float64
		for j := k; j < n; j++ {
			dot += m.At(i, j) * v[j]
		}
		factor := 2 * dot / vNormSq
		if factor == 0 {
			continue
		}
		for j := k; j < n; j++ {
			m.Set(i, j, m.At(i, j)-factor*v[j])
		}
	}
}

func identity(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// QRSolve solves the (possibly rectangular, possibly rank-deficient)
// least-squares problem A x ≈ b via QR factorization. Any diagonal pivot
// of R with |R_ii| < eps (eps <= 0 selects DefaultRankEpsilon) is treated
// as rank-deficient: the corresponding unknown is pinned to zero rather
// than divided by a near-zero pivot, giving a minimum-norm-ish truncated
// solution. Unknowns beyond R's row count (an underdetermined system, more
// columns than rows) are pinned to zero the same way, since no equation
// constrains them.
func QRSolve(a *mat.Dense, b *mat.VecDense, eps float64) *mat.VecDense {
	if eps <= 0 {
		eps = DefaultRankEpsilon
	}
	q, r := QRDecompose(a)
	m, n := a.Dims()

	qtb := mat.NewVecDense(m, nil)
	qtb.MulVec(transpose(q), b)

	x := mat.NewVecDense(n, nil)
	for i := n - 1; i >= 0; i-- {
		if i >= m {
			x.SetVec(i, 0)
			continue
		}
		pivot := r.At(i, i)
		if math.Abs(pivot) < eps {
			x.SetVec(i, 0)
			continue
		}
		sum := qtb.AtVec(i)
		for j := i + 1; j < n; j++ {
			sum -= r.At(i, j) * x.AtVec(j)
		}
		x.SetVec(i, sum/pivot)
	}
	return x
}
