package lm

import (
	"math"
	"testing"

	"github.com/nlsolve/scalargraph/graph"
	"github.com/nlsolve/scalargraph/residualset"
)

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

// armResiduals builds the 2-residual, 3-parameter robot-arm IK problem
// from spec.md's end-to-end scenario 4: three revolute joints with
// segment lengths [3, 2.5, 2], end effector target (5, 4).
func armResiduals(theta []*graph.Node, lengths []float64, targetX, targetY float64) []*graph.Node {
	var cum *graph.Node
	var x, y *graph.Node
	for i, t := range theta {
		if cum == nil {
			cum = t
		} else {
			cum = cum.Add(t)
		}
		term := graph.C(lengths[i])
		xi := term.Mul(cum.Cos())
		yi := term.Mul(cum.Sin())
		if x == nil {
			x, y = xi, yi
		} else {
			x, y = x.Add(xi), y.Add(yi)
		}
	}
	return []*graph.Node{x.Sub(graph.C(targetX)), y.Sub(graph.C(targetY))}
}

func TestSolveRobotArmIK(t *testing.T) {
	lengths := []float64{3, 2.5, 2}
	theta := []*graph.Node{graph.W(0.1), graph.W(0.1), graph.W(0.1)}
	build := func() []*graph.Node { return armResiduals(theta, lengths, 5, 4) }
	provider := NewGraphResiduals(theta, build)

	result := Solve(provider, []float64{0.1, 0.1, 0.1}, nil)
	if result.FinalCost > 1e-6 {
		t.Fatalf("final cost = %v, want <= 1e-6 (reason: %s)", result.FinalCost, result.ConvergenceReason)
	}
	if result.Iterations > 20 {
		t.Fatalf("iterations = %d, want a small number (reference converges within ~10)", result.Iterations)
	}
}

func TestSolveUnderdeterminedWithQR(t *testing.T) {
	p0 := graph.W(0)
	p1 := graph.W(0)
	p2 := graph.W(0)
	params := []*graph.Node{p0, p1, p2}
	build := func() []*graph.Node {
		r1 := p0.Add(p1).Add(p2).Sub(graph.C(3))
		r2 := p0.Sub(p1).Sub(graph.C(1))
		return []*graph.Node{r1, r2}
	}
	provider := NewGraphResiduals(params, build)

	settings := DefaultSettings()
	settings.UseQR = true
	result := Solve(provider, []float64{0, 0, 0}, settings)

	if !result.Success {
		t.Fatalf("result.Success = false, reason: %s", result.ConvergenceReason)
	}
	r1 := result.Params[0] + result.Params[1] + result.Params[2] - 3
	r2 := result.Params[0] - result.Params[1] - 1
	if math.Abs(r1) > 1e-4 || math.Abs(r2) > 1e-4 {
		t.Fatalf("residuals at solution = (%v, %v), want both ~0", r1, r2)
	}
	if result.FinalCost > 1e-6 {
		t.Fatalf("final cost = %v, want <= 1e-6", result.FinalCost)
	}
}

// TestGraphResidualsJacobianZeroesUnreferencedColumns guards against stale
// Grad leaking across residuals: r1 references p0,p1,p2 and r2 references
// only p0,p1, so J[1][2] (d(r2)/dp2) must read 0 even though p2.Grad was
// nonzero moments earlier from r1's own backward pass.
func TestGraphResidualsJacobianZeroesUnreferencedColumns(t *testing.T) {
	p0 := graph.W(1)
	p1 := graph.W(2)
	p2 := graph.W(3)
	params := []*graph.Node{p0, p1, p2}
	build := func() []*graph.Node {
		r1 := p0.Add(p1).Add(p2)
		r2 := p0.Sub(p1)
		return []*graph.Node{r1, r2}
	}
	provider := NewGraphResiduals(params, build)

	_, j, _ := provider.EvaluateJacobian([]float64{1, 2, 3})
	if !near(j.At(1, 2), 0, 1e-12) {
		t.Fatalf("J[1][2] = %v, want 0 (r2 doesn't reference p2)", j.At(1, 2))
	}
	if !near(j.At(1, 0), 1, 1e-12) || !near(j.At(1, 1), -1, 1e-12) {
		t.Fatalf("J row 1 = [%v %v %v], want [1 -1 0]", j.At(1, 0), j.At(1, 1), j.At(1, 2))
	}
	if !near(j.At(0, 0), 1, 1e-12) || !near(j.At(0, 1), 1, 1e-12) || !near(j.At(0, 2), 1, 1e-12) {
		t.Fatalf("J row 0 = [%v %v %v], want [1 1 1]", j.At(0, 0), j.At(0, 1), j.At(0, 2))
	}
}

func TestSolveWithCompiledResidualSet(t *testing.T) {
	a := graph.W(0)
	b := graph.W(0)
	slots := map[*graph.Node]int{a: 0, b: 1}
	build := func() []*graph.Node {
		return []*graph.Node{a.Sub(graph.C(3)), b.Sub(graph.C(-2))}
	}
	set := residualset.NewEager(build, slots, 2)

	result := Solve(set, []float64{0, 0}, nil)
	if !result.Success {
		t.Fatalf("result.Success = false, reason: %s", result.ConvergenceReason)
	}
	if !near(result.Params[0], 3, 1e-3) || !near(result.Params[1], -2, 1e-3) {
		t.Fatalf("params = %v, want [3 -2]", result.Params)
	}
}

func TestSolveNonAdaptiveLineSearch(t *testing.T) {
	a := graph.W(0)
	params := []*graph.Node{a}
	build := func() []*graph.Node { return []*graph.Node{a.Sub(graph.C(4))} }
	provider := NewGraphResiduals(params, build)

	settings := DefaultSettings()
	settings.AdaptiveDamping = false
	result := Solve(provider, []float64{0}, settings)
	if !result.Success {
		t.Fatalf("result.Success = false, reason: %s", result.ConvergenceReason)
	}
	if !near(result.Params[0], 4, 1e-3) {
		t.Fatalf("params[0] = %v, want 4", result.Params[0])
	}
}
