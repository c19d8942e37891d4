package optimization

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Statistics holds annualized return statistics for a fixed asset
// ordering. Derived once per optimizer instance and treated as immutable
// afterwards; weight vectors are indexed in Symbols order.
type Statistics struct {
	Symbols     []string
	MeanReturns []float64     // annualized, Symbols order
	CovMatrix   *mat.SymDense // annualized sample covariance
}

// NumAssets returns the number of assets the statistics cover.
func (s *Statistics) NumAssets() int { return len(s.Symbols) }

// MeanBySymbol returns the annualized mean returns keyed by symbol.
func (s *Statistics) MeanBySymbol() map[string]float64 {
	out := make(map[string]float64, len(s.Symbols))
	for i, sym := range s.Symbols {
		out[sym] = s.MeanReturns[i]
	}
	return out
}

// Covariance returns the annualized covariance matrix as a plain slice,
// row-major in Symbols order.
func (s *Statistics) Covariance() [][]float64 {
	n := s.NumAssets()
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			out[i][j] = s.CovMatrix.At(i, j)
		}
	}
	return out
}

// ComputeStatistics derives annualized mean returns and covariance from a
// return series of simple period-over-period returns. Rows containing any
// missing (NaN) observation are dropped first; at least two complete
// periods must remain for the sample covariance to be defined.
func ComputeStatistics(series ReturnSeries) (*Statistics, error) {
	k := series.NumAssets()
	if k == 0 {
		return nil, fmt.Errorf("return series has no assets")
	}
	for i, row := range series.Periods {
		if len(row) != k {
			return nil, fmt.Errorf("return series row %d has %d entries, expected %d", i, len(row), k)
		}
	}

	rows := series.completePeriods()
	n := len(rows)
	if n < 2 {
		return nil, &InsufficientDataError{Periods: n}
	}

	data := mat.NewDense(n, k, nil)
	for i, row := range rows {
		data.SetRow(i, row)
	}

	means := make([]float64, k)
	for j := 0; j < k; j++ {
		means[j] = stat.Mean(mat.Col(nil, j, data), nil) * TradingDaysPerYear
	}

	cov := mat.NewSymDense(k, nil)
	stat.CovarianceMatrix(cov, data, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			cov.SetSym(i, j, cov.At(i, j)*TradingDaysPerYear)
		}
	}

	symbols := make([]string, k)
	copy(symbols, series.Symbols)

	return &Statistics{
		Symbols:     symbols,
		MeanReturns: means,
		CovMatrix:   cov,
	}, nil
}
