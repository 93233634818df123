// Package linsolve solves symmetric positive-definite systems without forming the
// matrix.
package linsolve

import (
	"gonum.org/v1/gonum/floats"
)

const (
	DefaultTolerance     = 0.2
	DefaultMaxIterations = 100
)

// Operator writes A·x into dst. A must be symmetric positive-definite.
type Operator func(dst, x []float64)

// ConjugateGradient is a matrix-free conjugate gradient solver.
// Iteration stops when the residual norm falls below Tolerance times the initial
// residual norm, or after MaxIterations.
type ConjugateGradient struct {
	Apply         Operator
	Tolerance     float64
	MaxIterations int
}

// Result reports how a solve ended
type Result struct {
	Iterations int
	Residual   float64
	Converged  bool
}

// Solve returns x with A·x ≈ b, starting from x = 0
func (cg ConjugateGradient) Solve(b []float64) ([]float64, Result) {
	n := len(b)
	x := make([]float64, n)

	tolerance := cg.Tolerance
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	maxIterations := cg.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	if n == 0 {
		return x, Result{Converged: true}
	}

	r := make([]float64, n)
	copy(r, b)
	p := make([]float64, n)
	copy(p, r)
	ap := make([]float64, n)

	initial := floats.Norm(r, 2)
	if initial == 0 {
		return x, Result{Converged: true}
	}
	threshold := tolerance * initial

	rr := floats.Dot(r, r)
	for k := 0; k < maxIterations; k++ {
		cg.Apply(ap, p)

		pap := floats.Dot(p, ap)
		if pap <= 0 {
			// A is not positive-definite along p
			return x, Result{Iterations: k, Residual: floats.Norm(r, 2)}
		}

		alpha := rr / pap
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, ap)

		residual := floats.Norm(r, 2)
		if residual <= threshold {
			return x, Result{Iterations: k + 1, Residual: residual, Converged: true}
		}

		rrNext := floats.Dot(r, r)
		beta := rrNext / rr
		rr = rrNext

		// p = r + beta·p
		floats.Scale(beta, p)
		floats.Add(p, r)
	}

	return x, Result{Iterations: maxIterations, Residual: floats.Norm(r, 2)}
}
