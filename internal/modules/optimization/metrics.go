package optimization

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Evaluate computes the annualized return, volatility and Sharpe ratio of
// a weight vector against the given statistics:
//
//	return     = w'μ
//	volatility = sqrt(w'Σw)
//	sharpe     = (return - riskFreeRate) / volatility
//
// Weights are used as supplied: a vector that does not sum to 1 is
// evaluated from the raw dot products, not renormalized. Enforcing the
// simplex constraints is the solver's responsibility.
func Evaluate(weights []float64, stats *Statistics, riskFreeRate float64) (PortfolioResult, error) {
	if len(weights) != stats.NumAssets() {
		return PortfolioResult{}, fmt.Errorf("weight vector has %d entries, expected %d", len(weights), stats.NumAssets())
	}

	ret := floats.Dot(weights, stats.MeanReturns)

	w := mat.NewVecDense(len(weights), weights)
	variance := mat.Inner(w, stats.CovMatrix, w)
	if variance < 0 {
		// The sample covariance is positive semi-definite; a tiny negative
		// inner product is floating point noise.
		variance = 0
	}
	vol := math.Sqrt(variance)
	if vol == 0 {
		return PortfolioResult{}, ErrDegenerateVolatility
	}

	return PortfolioResult{
		Return:     ret,
		Volatility: vol,
		Sharpe:     (ret - riskFreeRate) / vol,
	}, nil
}

// NegativeSharpe returns the objective minimized for the max-Sharpe
// strategy. Variance is floored inside the objective so intermediate
// iterates near zero volatility do not divide by zero; the final portfolio
// is still evaluated through Evaluate, which reports degenerate volatility
// explicitly.
func NegativeSharpe(stats *Statistics, riskFreeRate float64) Objective {
	return func(weights []float64) float64 {
		ret := floats.Dot(weights, stats.MeanReturns)
		w := mat.NewVecDense(len(weights), weights)
		vol := math.Sqrt(math.Max(mat.Inner(w, stats.CovMatrix, w), 1e-10))
		return -(ret - riskFreeRate) / vol
	}
}

// Volatility returns the objective minimized for the min-volatility
// strategy.
func Volatility(stats *Statistics) Objective {
	return func(weights []float64) float64 {
		w := mat.NewVecDense(len(weights), weights)
		return math.Sqrt(math.Max(mat.Inner(w, stats.CovMatrix, w), 0))
	}
}
