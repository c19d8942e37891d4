package history

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lohithreddy19/portfolio-optimizer1/internal/database"
)

func testRepo(t *testing.T) *PriceRepository {
	t.Helper()
	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "history.db"),
		Name: "history",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewPriceRepository(db, zerolog.Nop())
	require.NoError(t, repo.EnsureSchema())
	return repo
}

func TestSaveAndGetDailyPrices(t *testing.T) {
	repo := testRepo(t)

	prices := []DailyPrice{
		{Date: "2026-01-02", Close: 100.0},
		{Date: "2026-01-05", Close: 101.0},
		{Date: "2026-01-06", Close: 99.5},
	}
	require.NoError(t, repo.SaveDailyPrices("AAPL", prices))

	got, err := repo.GetDailyPrices("AAPL")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "2026-01-02", got[0].Date)
	assert.Equal(t, "AAPL", got[0].Symbol)
	assert.InDelta(t, 100.0, got[0].Close, 1e-12)
}

func TestSaveDailyPricesUpsert(t *testing.T) {
	repo := testRepo(t)

	require.NoError(t, repo.SaveDailyPrices("AAPL", []DailyPrice{{Date: "2026-01-02", Close: 100.0}}))
	require.NoError(t, repo.SaveDailyPrices("AAPL", []DailyPrice{{Date: "2026-01-02", Close: 105.0}}))

	got, err := repo.GetDailyPrices("AAPL")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 105.0, got[0].Close, 1e-12)
}

func TestSaveDailyPricesRejectsInvalid(t *testing.T) {
	repo := testRepo(t)

	err := repo.SaveDailyPrices("AAPL", []DailyPrice{{Date: "2026-01-02", Close: -1}})
	assert.Error(t, err)

	err = repo.SaveDailyPrices("AAPL", []DailyPrice{{Close: 100}})
	assert.Error(t, err)

	err = repo.SaveDailyPrices("", []DailyPrice{{Date: "2026-01-02", Close: 100}})
	assert.Error(t, err)
}

func TestReturnSeries(t *testing.T) {
	repo := testRepo(t)

	require.NoError(t, repo.SaveDailyPrices("AAPL", []DailyPrice{
		{Date: "2026-01-02", Close: 100.0},
		{Date: "2026-01-05", Close: 110.0},
		{Date: "2026-01-06", Close: 99.0},
	}))
	require.NoError(t, repo.SaveDailyPrices("MSFT", []DailyPrice{
		{Date: "2026-01-02", Close: 200.0},
		{Date: "2026-01-05", Close: 210.0},
		{Date: "2026-01-06", Close: 189.0},
	}))

	series, err := repo.ReturnSeries([]string{"AAPL", "MSFT"})
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, series.Symbols)
	require.Equal(t, 2, series.NumPeriods())

	assert.InDelta(t, 0.10, series.Periods[0][0], 1e-12)
	assert.InDelta(t, 0.05, series.Periods[0][1], 1e-12)
	assert.InDelta(t, -0.10, series.Periods[1][0], 1e-12)
	assert.InDelta(t, -0.10, series.Periods[1][1], 1e-12)
}

func TestReturnSeriesMissingObservations(t *testing.T) {
	repo := testRepo(t)

	require.NoError(t, repo.SaveDailyPrices("AAPL", []DailyPrice{
		{Date: "2026-01-02", Close: 100.0},
		{Date: "2026-01-05", Close: 110.0},
		{Date: "2026-01-06", Close: 99.0},
	}))
	// MSFT has no close on 2026-01-05; both adjacent returns are NaN.
	require.NoError(t, repo.SaveDailyPrices("MSFT", []DailyPrice{
		{Date: "2026-01-02", Close: 200.0},
		{Date: "2026-01-06", Close: 220.0},
	}))

	series, err := repo.ReturnSeries([]string{"AAPL", "MSFT"})
	require.NoError(t, err)
	require.Equal(t, 2, series.NumPeriods())

	assert.True(t, math.IsNaN(series.Periods[0][1]))
	assert.True(t, math.IsNaN(series.Periods[1][1]))
	assert.False(t, math.IsNaN(series.Periods[0][0]))
}

func TestReturnSeriesTooShort(t *testing.T) {
	repo := testRepo(t)

	require.NoError(t, repo.SaveDailyPrices("AAPL", []DailyPrice{{Date: "2026-01-02", Close: 100.0}}))

	series, err := repo.ReturnSeries([]string{"AAPL"})
	require.NoError(t, err)
	assert.Equal(t, 0, series.NumPeriods())
}

func TestReturnSeriesNoSymbols(t *testing.T) {
	repo := testRepo(t)
	_, err := repo.ReturnSeries(nil)
	assert.Error(t, err)
}
