// Package lm implements Levenberg-Marquardt nonlinear least squares over
// a set of scalar residuals: adaptive-damping normal equations (with an
// optional QR path for underdetermined or ill-conditioned systems), a
// non-adaptive backtracking line-search alternative, trust-region
// clamping, and the convergence bookkeeping spec's external interface
// names as its wire contract.
package lm

import (
	"fmt"
	"math"
	"time"

	"github.com/nlsolve/scalargraph/linalg"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ResidualProvider is what Solve needs from a residual source: both
// *residualset.CompiledResidualSet and *GraphResiduals satisfy this
// (structurally — neither needs to import package lm).
type ResidualProvider interface {
	Evaluate(params []float64) (residuals []float64, cost float64)
	EvaluateJacobian(params []float64) (residuals []float64, j *mat.Dense, cost float64)
}

// noStatus marks an innerStep return as "step accepted, outer loop
// continues" — distinct from every real Status, including the zero value
// GradientToleranceReached.
const noStatus Status = -1

// Solve runs Levenberg-Marquardt starting from initial, returning a
// Result describing how the solve ended and the parameters it found.
// settings may be nil to use DefaultSettings().
func Solve(provider ResidualProvider, initial []float64, settings *Settings) Result {
	start := time.Now()
	s := defaultSettings(settings)
	n := len(initial)

	params := append([]float64(nil), initial...)
	lambda := s.InitialDamping
	residuals, j, cost := provider.EvaluateJacobian(params)
	prevCost := cost

	iter := 0
	for ; iter < s.MaxIterations; iter++ {
		r := mat.NewVecDense(len(residuals), residuals)
		g := linalg.ComputeJtr(j, r)
		gNorm := floats.Norm(g.RawVector().Data, 2)
		if s.Verbose {
			fmt.Printf("lm: iteration %d: cost=%g |g|=%g lambda=%g\n", iter, cost, gNorm, lambda)
		}
		if gNorm < s.GradientTolerance {
			return finish(GradientToleranceReached, "", iter, cost, params, start)
		}

		newParams, newCost, newLambda, status, cause := innerStep(provider, params, residuals, j, cost, lambda, n, s)
		switch status {
		case LinearSolverFailed, LineSearchFailed, DampingAdjustmentFailed:
			return finish(status, cause, iter, cost, params, start)
		case ParamToleranceReached:
			return finish(status, "", iter, cost, params, start)
		}
		params, cost, lambda = newParams, newCost, newLambda

		residuals, j, cost = provider.EvaluateJacobian(params)
		if math.Abs(prevCost-cost) < s.CostTolerance {
			return finish(CostToleranceReached, "", iter, cost, params, start)
		}
		if cost < s.CostTolerance {
			return finish(CostBelowThreshold, "", iter, cost, params, start)
		}
		prevCost = cost
	}
	return finish(MaxIterationsReached, "", iter, cost, params, start)
}

// innerStep runs the inner damping/line-search loop for one outer
// iteration. A status other than noStatus signals Solve should return
// immediately; noStatus means the step was accepted, and it returns the
// accepted params, cost and (possibly adjusted) lambda.
func innerStep(provider ResidualProvider, params, residuals []float64, j *mat.Dense, cost, lambda float64, n int, s *Settings) ([]float64, float64, float64, Status, string) {
	for inner := 0; inner < s.MaxInnerIterations; inner++ {
		delta, err := computeStep(j, residuals, lambda, n, s.UseQR)
		if err != nil {
			return params, cost, lambda, LinearSolverFailed, err.Error()
		}

		deltaNorm := floats.Norm(delta, 2)
		if deltaNorm > s.TrustRegionRadius {
			scale := s.TrustRegionRadius / deltaNorm
			for i := range delta {
				delta[i] *= scale
			}
			deltaNorm = s.TrustRegionRadius
		}
		if deltaNorm < s.ParamTolerance {
			return params, cost, lambda, ParamToleranceReached, ""
		}

		if s.AdaptiveDamping {
			trial := addScaled(params, delta, 1)
			_, newCost := provider.Evaluate(trial)
			if newCost < cost {
				return trial, newCost, math.Max(lambda/s.DampingDecreaseFactor, 1e-10), noStatus, ""
			}
			lambda = math.Min(lambda*s.DampingIncreaseFactor, 1e10)
			continue
		}

		alpha := 1.0
		for step := 0; step < s.LineSearchSteps; step++ {
			trial := addScaled(params, delta, alpha)
			_, newCost := provider.Evaluate(trial)
			if newCost < cost {
				return trial, newCost, lambda, noStatus, ""
			}
			alpha *= 0.5
		}
		return params, cost, lambda, LineSearchFailed, ""
	}
	return params, cost, lambda, DampingAdjustmentFailed, ""
}

func addScaled(base, delta []float64, alpha float64) []float64 {
	out := make([]float64, len(base))
	for i := range base {
		out[i] = base[i] + alpha*delta[i]
	}
	return out
}

// computeStep solves for the Levenberg-Marquardt step δ: either the
// damped normal equations (JᵀJ + λI)δ = -Jᵀr via Cholesky, retrying once
// at a small fallback damping if λ=0 and the system isn't positive
// definite, or the equivalent augmented least-squares problem
// [J; √λ I] δ = -[r; 0] via QR when useQR is set.
func computeStep(j *mat.Dense, residuals []float64, lambda float64, n int, useQR bool) ([]float64, error) {
	if useQR {
		return computeStepQR(j, residuals, lambda, n), nil
	}
	return computeStepNormalEquations(j, residuals, lambda, n)
}

func computeStepNormalEquations(j *mat.Dense, residuals []float64, lambda float64, n int) ([]float64, error) {
	jtj := linalg.ComputeJtJ(j)
	r := mat.NewVecDense(len(residuals), residuals)
	jtr := linalg.ComputeJtr(j, r)
	negJtr := mat.NewVecDense(n, nil)
	negJtr.ScaleVec(-1, jtr)

	addDamping(jtj, lambda, n)
	l, err := linalg.Cholesky(jtj)
	if err != nil && lambda == 0 {
		addDamping(jtj, 1e-6, n)
		l, err = linalg.Cholesky(jtj)
	}
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	delta := linalg.CholeskySolve(l, negJtr)
	return delta.RawVector().Data, nil
}

func computeStepQR(j *mat.Dense, residuals []float64, lambda float64, n int) []float64 {
	m, _ := j.Dims()
	augmented := mat.NewDense(m+n, n, nil)
	augmented.Copy(j)
	sqrtLambda := math.Sqrt(lambda)
	for i := 0; i < n; i++ {
		augmented.Set(m+i, i, sqrtLambda)
	}

	rhs := mat.NewVecDense(m+n, nil)
	for i, v := range residuals {
		rhs.SetVec(i, -v)
	}

	delta := linalg.QRSolve(augmented, rhs, 0)
	return delta.RawVector().Data
}

func addDamping(a *mat.Dense, lambda float64, n int) {
	for i := 0; i < n; i++ {
		a.Set(i, i, a.At(i, i)+lambda)
	}
}

func finish(status Status, cause string, iterations int, cost float64, params []float64, start time.Time) Result {
	reason := status.String()
	if cause != "" {
		reason = fmt.Sprintf("%s: %s", reason, cause)
	}
	return Result{
		Success:           status.succeeds(),
		Iterations:        iterations,
		FinalCost:         cost,
		ConvergenceReason: reason,
		ComputationTime:   float64(time.Since(start).Microseconds()) / 1000,
		Params:            params,
	}
}
