package optimization

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStatisticsSingleAsset(t *testing.T) {
	series := ReturnSeries{
		Symbols: []string{"AAPL"},
		Periods: [][]float64{{0.01}, {0.02}, {-0.01}},
	}

	stats, err := ComputeStatistics(series)
	require.NoError(t, err)
	require.Equal(t, 1, stats.NumAssets())

	// Daily mean 0.02/3 and sample variance 2.3333e-4, both scaled by 252.
	assert.InDelta(t, 1.68, stats.MeanReturns[0], 1e-9)
	assert.InDelta(t, 0.0588, stats.CovMatrix.At(0, 0), 1e-9)
}

func TestComputeStatisticsDropsIncompleteRows(t *testing.T) {
	nan := math.NaN()
	series := ReturnSeries{
		Symbols: []string{"AAPL", "MSFT"},
		Periods: [][]float64{
			{0.01, 0.02},
			{nan, 0.01},
			{0.02, -0.01},
			{0.01, nan},
			{-0.01, 0.03},
		},
	}

	stats, err := ComputeStatistics(series)
	require.NoError(t, err)

	clean := ReturnSeries{
		Symbols: series.Symbols,
		Periods: [][]float64{{0.01, 0.02}, {0.02, -0.01}, {-0.01, 0.03}},
	}
	want, err := ComputeStatistics(clean)
	require.NoError(t, err)

	assert.InDelta(t, want.MeanReturns[0], stats.MeanReturns[0], 1e-12)
	assert.InDelta(t, want.MeanReturns[1], stats.MeanReturns[1], 1e-12)
	assert.InDelta(t, want.CovMatrix.At(0, 1), stats.CovMatrix.At(0, 1), 1e-12)
}

func TestComputeStatisticsInsufficientData(t *testing.T) {
	series := ReturnSeries{
		Symbols: []string{"AAPL"},
		Periods: [][]float64{{0.01}},
	}

	_, err := ComputeStatistics(series)
	var insufficient *InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 1, insufficient.Periods)
}

func TestComputeStatisticsInsufficientAfterNaNFilter(t *testing.T) {
	// Five rows on paper, but only one survives the missing-data filter.
	nan := math.NaN()
	series := ReturnSeries{
		Symbols: []string{"AAPL", "MSFT"},
		Periods: [][]float64{
			{0.01, nan},
			{nan, 0.01},
			{0.02, 0.01},
			{nan, nan},
			{0.01, nan},
		},
	}

	_, err := ComputeStatistics(series)
	var insufficient *InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 1, insufficient.Periods)
}

func TestComputeStatisticsNoAssets(t *testing.T) {
	_, err := ComputeStatistics(ReturnSeries{})
	assert.Error(t, err)
}

func TestComputeStatisticsRaggedRows(t *testing.T) {
	series := ReturnSeries{
		Symbols: []string{"AAPL", "MSFT"},
		Periods: [][]float64{{0.01, 0.02}, {0.01}},
	}

	_, err := ComputeStatistics(series)
	assert.Error(t, err)
}

func TestComputeStatisticsCovarianceSymmetry(t *testing.T) {
	series := ReturnSeries{
		Symbols: []string{"AAPL", "MSFT", "GOOGL"},
		Periods: [][]float64{
			{0.010, 0.005, -0.002},
			{-0.004, 0.012, 0.007},
			{0.006, -0.003, 0.001},
			{0.002, 0.008, -0.005},
		},
	}

	stats, err := ComputeStatistics(series)
	require.NoError(t, err)

	cov := stats.Covariance()
	for i := range cov {
		for j := range cov[i] {
			assert.InDelta(t, cov[j][i], cov[i][j], 1e-12)
		}
		assert.GreaterOrEqual(t, cov[i][i], 0.0)
	}
}

func TestStatisticsMeanBySymbol(t *testing.T) {
	series := ReturnSeries{
		Symbols: []string{"AAPL", "MSFT"},
		Periods: [][]float64{{0.01, 0.02}, {0.03, -0.01}},
	}

	stats, err := ComputeStatistics(series)
	require.NoError(t, err)

	bySymbol := stats.MeanBySymbol()
	require.Len(t, bySymbol, 2)
	assert.InDelta(t, stats.MeanReturns[0], bySymbol["AAPL"], 1e-12)
	assert.InDelta(t, stats.MeanReturns[1], bySymbol["MSFT"], 1e-12)
}
