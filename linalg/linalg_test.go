package linalg

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func matAlmostEqual(t *testing.T, got, want *mat.Dense, tol float64) {
	t.Helper()
	gr, gc := got.Dims()
	wr, wc := want.Dims()
	if gr != wr || gc != wc {
		t.Fatalf("dimension mismatch: got %dx%d, want %dx%d", gr, gc, wr, wc)
	}
	for i := 0; i < gr; i++ {
		for j := 0; j < gc; j++ {
			if math.Abs(got.At(i, j)-want.At(i, j)) > tol {
				t.Fatalf("[%d,%d] = %v, want %v", i, j, got.At(i, j), want.At(i, j))
			}
		}
	}
}

func TestCholeskyReconstructs(t *testing.T) {
	a := mat.NewDense(3, 3, []float64{
		4, 12, -16,
		12, 37, -43,
		-16, -43, 98,
	})
	l, err := Cholesky(a)
	if err != nil {
		t.Fatalf("Cholesky: %v", err)
	}
	var recon mat.Dense
	recon.Mul(l, l.T())
	matAlmostEqual(t, &recon, a, 1e-9)
}

func TestCholeskyNotPositiveDefinite(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 2, 2, 1})
	if _, err := Cholesky(a); err != ErrNotPositiveDefinite {
		t.Fatalf("Cholesky on indefinite matrix: err = %v, want ErrNotPositiveDefinite", err)
	}
}

func TestCholeskySolve(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{4, 2, 2, 3})
	b := mat.NewVecDense(2, []float64{8, 9})
	l, err := Cholesky(a)
	if err != nil {
		t.Fatalf("Cholesky: %v", err)
	}
	x := CholeskySolve(l, b)

	var check mat.VecDense
	check.MulVec(a, x)
	for i := 0; i < 2; i++ {
		if math.Abs(check.AtVec(i)-b.AtVec(i)) > 1e-9 {
			t.Fatalf("A x != b at %d: got %v, want %v", i, check.AtVec(i), b.AtVec(i))
		}
	}
}

func TestQRReconstructs(t *testing.T) {
	a := mat.NewDense(3, 2, []float64{
		1, 1,
		0, 1,
		1, 0,
	})
	q, r := QRDecompose(a)
	var recon mat.Dense
	recon.Mul(q, r)
	matAlmostEqual(t, &recon, a, 1e-9)

	// Q should be orthonormal: QᵀQ = I.
	var qtq mat.Dense
	qtq.Mul(q.T(), q)
	matAlmostEqual(t, &qtq, identity(3), 1e-9)
}

func TestQRSolveOverdetermined(t *testing.T) {
	// Least-squares fit of the slope c in y = c·x through 3 points lying
	// exactly on y=2x.
	a := mat.NewDense(3, 1, []float64{1, 2, 3})
	b := mat.NewVecDense(3, []float64{2, 4, 6})
	x := QRSolve(a, b, 0)
	if math.Abs(x.AtVec(0)-2) > 1e-9 {
		t.Fatalf("x = %v, want 2", x.AtVec(0))
	}
}

func TestQRSolveUnderdetermined(t *testing.T) {
	a := mat.NewDense(1, 3, []float64{1, 1, 1})
	b := mat.NewVecDense(1, []float64{3})
	x := QRSolve(a, b, 0)
	// Exactly one equation for three unknowns; verify the equation holds
	// and unconstrained dimensions beyond the rank were pinned to zero.
	sum := x.AtVec(0) + x.AtVec(1) + x.AtVec(2)
	if math.Abs(sum-3) > 1e-6 {
		t.Fatalf("sum(x) = %v, want 3", sum)
	}
	if x.AtVec(1) != 0 || x.AtVec(2) != 0 {
		t.Fatalf("x = %v, want x[1] and x[2] pinned to 0", mat.Formatted(x))
	}
}

func TestComputeJtJAndJtr(t *testing.T) {
	j := mat.NewDense(3, 2, []float64{
		1, 0,
		0, 1,
		1, 1,
	})
	r := mat.NewVecDense(3, []float64{1, 2, 3})

	jtj := ComputeJtJ(j)
	want := mat.NewDense(2, 2, []float64{2, 1, 1, 2})
	matAlmostEqual(t, jtj, want, 1e-12)

	jtr := ComputeJtr(j, r)
	if math.Abs(jtr.AtVec(0)-4) > 1e-12 || math.Abs(jtr.AtVec(1)-5) > 1e-12 {
		t.Fatalf("Jtr = %v, want [4 5]", mat.Formatted(jtr))
	}
}
