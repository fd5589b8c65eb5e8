// Package linalg implements the small set of dense linear algebra
// primitives the Levenberg-Marquardt solver (package lm) needs: Cholesky
// factorization with forward/back substitution, and Householder QR with a
// rank-revealing least-squares solve. Matrices are represented with
// gonum.org/v1/gonum/mat's *mat.Dense and *mat.VecDense, but the
// factorizations themselves are hand-rolled: mat's own LAPACK-backed
// Cholesky and QR types don't expose the solver-specific behavior this
// package needs (retry-with-fallback-damping on a failed Cholesky,
// epsilon-pivot rank truncation in the QR solve).
package linalg

import "errors"

// ErrNotPositiveDefinite is returned by Cholesky when a diagonal pivot
// becomes non-positive, meaning the input was not symmetric positive
// definite (spec §4.B).
var ErrNotPositiveDefinite = errors.New("linalg: matrix is not positive definite")

// DefaultRankEpsilon is the default pivot threshold QRSolve uses to treat
// a column as rank-deficient, per spec §4.B.
const DefaultRankEpsilon = 1e-10
