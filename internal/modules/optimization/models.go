// Package optimization implements mean-variance portfolio optimization:
// annualized return statistics, portfolio metrics, constrained weight
// solving and efficient-frontier sampling.
package optimization

import "math"

// TradingDaysPerYear is the fixed annualization factor applied to daily
// statistics. The input series is assumed to be daily; no frequency
// detection is performed, so callers supplying non-daily series get
// incorrectly scaled answers.
const TradingDaysPerYear = 252

// DefaultFrontierSamples is the number of random portfolios drawn when the
// caller does not configure a sample count.
const DefaultFrontierSamples = 5000

// Strategy identifies one of the supported allocation strategies.
type Strategy string

const (
	StrategyMaxSharpe     Strategy = "max_sharpe"
	StrategyMinVolatility Strategy = "min_volatility"
	StrategyEqualWeight   Strategy = "equal_weight"
)

// ReturnSeries holds aligned per-period fractional returns. Rows are
// periods, columns are assets in Symbols order. Missing observations are
// NaN; rows containing any NaN are dropped before statistics are computed.
type ReturnSeries struct {
	Symbols []string
	Periods [][]float64
}

// NumAssets returns the number of assets in the series.
func (s ReturnSeries) NumAssets() int { return len(s.Symbols) }

// NumPeriods returns the number of periods in the series, complete or not.
func (s ReturnSeries) NumPeriods() int { return len(s.Periods) }

// completePeriods returns the rows with no missing observations.
func (s ReturnSeries) completePeriods() [][]float64 {
	rows := make([][]float64, 0, len(s.Periods))
	for _, row := range s.Periods {
		complete := true
		for _, v := range row {
			if math.IsNaN(v) {
				complete = false
				break
			}
		}
		if complete {
			rows = append(rows, row)
		}
	}
	return rows
}

// PortfolioResult holds the three statistics of one portfolio evaluated
// against one set of return statistics and one risk-free rate.
type PortfolioResult struct {
	Return     float64 `json:"return"`
	Volatility float64 `json:"volatility"`
	Sharpe     float64 `json:"sharpe"`
}

// Outcome pairs a strategy with its weight vector and statistics.
type Outcome struct {
	Strategy    Strategy           `json:"strategy"`
	Weights     []float64          `json:"-"`
	Allocations map[string]float64 `json:"weights"`
	PortfolioResult
}

// Result holds the outcome of one optimization run, one fixed slot per
// strategy rather than an open-ended map.
type Result struct {
	MaxSharpe     Outcome `json:"max_sharpe"`
	MinVolatility Outcome `json:"min_volatility"`
	EqualWeight   Outcome `json:"equal_weight"`
}

// Outcomes returns the three strategy outcomes in a stable order.
func (r *Result) Outcomes() []Outcome {
	return []Outcome{r.MaxSharpe, r.MinVolatility, r.EqualWeight}
}
