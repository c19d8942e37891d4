package optimization

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// Objective is a scalar function over a candidate weight vector.
type Objective func(weights []float64) float64

// Solver finds the weight vector minimizing an objective subject to the
// full-investment and long-only constraints: sum(w) == 1, 0 <= w_i <= 1.
// Implementations are local minimizers; the mean-variance objectives are
// not convex over the simplex in general but are well behaved for
// long-only problems.
type Solver interface {
	Minimize(objective Objective, numAssets int) ([]float64, error)
}

// SimplexSolver implements Solver on gonum's local minimizers. The box
// bounds are enforced by projecting iterates into [0,1] and the equality
// constraint by a quadratic penalty; BFGS (finite difference gradients) is
// tried first with a Nelder-Mead fallback.
type SimplexSolver struct {
	penaltyWeight float64
	log           zerolog.Logger
}

// NewSimplexSolver creates a solver for long-only simplex problems.
func NewSimplexSolver(log zerolog.Logger) *SimplexSolver {
	return &SimplexSolver{
		penaltyWeight: 1000.0,
		log:           log.With().Str("component", "solver").Logger(),
	}
}

// Minimize solves the constrained problem from a deterministic equal
// weight starting point, so repeated runs on identical inputs agree up to
// solver tolerance. A run that does not converge returns
// *OptimizationFailedError; the last iterate is never reported as a
// result.
func (s *SimplexSolver) Minimize(objective Objective, numAssets int) ([]float64, error) {
	if numAssets <= 0 {
		return nil, fmt.Errorf("numAssets must be positive, got %d", numAssets)
	}
	if objective == nil {
		return nil, fmt.Errorf("objective is nil")
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			xp := projectToBox(x)
			obj := objective(xp)
			sum := floats.Sum(xp)
			return obj + s.penaltyWeight*(sum-1.0)*(sum-1.0)
		},
	}

	initial := make([]float64, numAssets)
	for i := range initial {
		initial[i] = 1.0 / float64(numAssets)
	}

	result, err := optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.BFGS{})
	if err != nil || !converged(result.Status) {
		status := "error"
		if result != nil {
			status = result.Status.String()
		}
		s.log.Debug().
			Err(err).
			Str("status", status).
			Msg("BFGS did not converge, retrying with Nelder-Mead")

		result, err = optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.NelderMead{})
		if err != nil {
			return nil, &OptimizationFailedError{Status: "error", Err: err}
		}
		if !converged(result.Status) {
			return nil, &OptimizationFailedError{Status: result.Status.String()}
		}
	}

	weights := projectToBox(result.X)
	sum := floats.Sum(weights)
	if sum <= 0 {
		return nil, &OptimizationFailedError{
			Status: result.Status.String(),
			Err:    fmt.Errorf("solver produced a non-positive weight sum %g", sum),
		}
	}
	floats.Scale(1.0/sum, weights)
	return weights, nil
}

// converged reports whether a solver status counts as success.
func converged(status optimize.Status) bool {
	switch status {
	case optimize.Success, optimize.GradientThreshold, optimize.FunctionConvergence:
		return true
	}
	return false
}

// projectToBox clamps every entry to [0, 1].
func projectToBox(x []float64) []float64 {
	proj := make([]float64, len(x))
	for i, v := range x {
		proj[i] = math.Max(0.0, math.Min(1.0, v))
	}
	return proj
}
