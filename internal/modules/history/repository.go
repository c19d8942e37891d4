// Package history stores daily closing prices and derives the return
// series consumed by the optimizer.
package history

import (
	"database/sql"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/Lohithreddy19/portfolio-optimizer1/internal/database"
	"github.com/Lohithreddy19/portfolio-optimizer1/internal/modules/optimization"
)

const schema = `
CREATE TABLE IF NOT EXISTS daily_prices (
	symbol TEXT NOT NULL,
	date   TEXT NOT NULL,
	close  REAL NOT NULL,
	PRIMARY KEY (symbol, date)
);
CREATE INDEX IF NOT EXISTS idx_daily_prices_date ON daily_prices(date);
`

// DailyPrice is one closing price observation. Date is an ISO-8601 day
// (YYYY-MM-DD) so lexical and chronological order agree.
type DailyPrice struct {
	Symbol string  `json:"symbol"`
	Date   string  `json:"date"`
	Close  float64 `json:"close"`
}

// PriceRepository persists daily prices in SQLite.
type PriceRepository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewPriceRepository creates a price repository.
func NewPriceRepository(db *database.DB, log zerolog.Logger) *PriceRepository {
	return &PriceRepository{
		db:  db,
		log: log.With().Str("component", "history").Logger(),
	}
}

// EnsureSchema creates the price table if it does not exist.
func (r *PriceRepository) EnsureSchema() error {
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create price schema: %w", err)
	}
	return nil
}

// SaveDailyPrices upserts a batch of closing prices in one transaction.
// Re-saving an existing (symbol, date) pair overwrites the close.
func (r *PriceRepository) SaveDailyPrices(symbol string, prices []DailyPrice) error {
	if symbol == "" {
		return fmt.Errorf("symbol is empty")
	}
	for _, p := range prices {
		if p.Close <= 0 {
			return fmt.Errorf("invalid close %g for %s on %s", p.Close, symbol, p.Date)
		}
		if p.Date == "" {
			return fmt.Errorf("missing date for %s", symbol)
		}
	}

	err := database.WithTransaction(r.db.Conn(), func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO daily_prices (symbol, date, close) VALUES (?, ?, ?)
			ON CONFLICT(symbol, date) DO UPDATE SET close = excluded.close`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, p := range prices {
			if _, err := stmt.Exec(symbol, p.Date, p.Close); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save prices for %s: %w", symbol, err)
	}

	r.log.Debug().Str("symbol", symbol).Int("count", len(prices)).Msg("Saved daily prices")
	return nil
}

// GetDailyPrices returns all stored prices for a symbol in ascending date
// order.
func (r *PriceRepository) GetDailyPrices(symbol string) ([]DailyPrice, error) {
	rows, err := r.db.Query(
		"SELECT symbol, date, close FROM daily_prices WHERE symbol = ? ORDER BY date ASC", symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices for %s: %w", symbol, err)
	}
	defer rows.Close()

	var prices []DailyPrice
	for rows.Next() {
		var p DailyPrice
		if err := rows.Scan(&p.Symbol, &p.Date, &p.Close); err != nil {
			return nil, fmt.Errorf("failed to scan price row: %w", err)
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// ReturnSeries builds the aligned daily return series for the given
// symbols. Dates are the union across symbols; a return is NaN when either
// endpoint price is missing, and the statistics layer drops those rows.
func (r *PriceRepository) ReturnSeries(symbols []string) (optimization.ReturnSeries, error) {
	if len(symbols) == 0 {
		return optimization.ReturnSeries{}, fmt.Errorf("no symbols requested")
	}

	closes := make([]map[string]float64, len(symbols))
	dateSet := make(map[string]struct{})
	for i, sym := range symbols {
		prices, err := r.GetDailyPrices(sym)
		if err != nil {
			return optimization.ReturnSeries{}, err
		}
		closes[i] = make(map[string]float64, len(prices))
		for _, p := range prices {
			closes[i][p.Date] = p.Close
			dateSet[p.Date] = struct{}{}
		}
	}

	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	series := optimization.ReturnSeries{
		Symbols: append([]string(nil), symbols...),
	}
	if len(dates) < 2 {
		return series, nil
	}

	series.Periods = make([][]float64, 0, len(dates)-1)
	for t := 1; t < len(dates); t++ {
		row := make([]float64, len(symbols))
		for j := range symbols {
			prev, prevOK := closes[j][dates[t-1]]
			cur, curOK := closes[j][dates[t]]
			if !prevOK || !curOK || prev <= 0 {
				row[j] = math.NaN()
				continue
			}
			row[j] = cur/prev - 1.0
		}
		series.Periods = append(series.Periods, row)
	}

	return series, nil
}

var _ optimization.ReturnSource = (*PriceRepository)(nil)
