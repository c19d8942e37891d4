package optimization

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ReturnSource supplies the cleaned historical return series for a set of
// symbols. Fetching and cleaning live outside the core; the source hands
// over an aligned series ready for statistics.
type ReturnSource interface {
	ReturnSeries(symbols []string) (ReturnSeries, error)
}

// Optimizer derives optimal long-only allocations for a fixed symbol set.
// Statistics are computed lazily on first use and cached for the life of
// the instance; construct a new Optimizer to pick up new return data.
type Optimizer struct {
	symbols      []string
	riskFreeRate float64
	source       ReturnSource
	solver       Solver

	once     sync.Once
	stats    *Statistics
	statsErr error

	log zerolog.Logger
}

// Config holds optimizer construction parameters.
type Config struct {
	Symbols      []string
	RiskFreeRate float64 // annual
	Source       ReturnSource
	Solver       Solver // optional; SimplexSolver when nil
	Log          zerolog.Logger
}

// New creates an optimizer for the given symbols.
func New(cfg Config) (*Optimizer, error) {
	if len(cfg.Symbols) == 0 {
		return nil, fmt.Errorf("no symbols provided")
	}
	if cfg.Source == nil {
		return nil, fmt.Errorf("no return source provided")
	}
	solver := cfg.Solver
	if solver == nil {
		solver = NewSimplexSolver(cfg.Log)
	}
	return &Optimizer{
		symbols:      append([]string(nil), cfg.Symbols...),
		riskFreeRate: cfg.RiskFreeRate,
		source:       cfg.Source,
		solver:       solver,
		log:          cfg.Log.With().Str("component", "optimizer").Logger(),
	}, nil
}

// Symbols returns the configured asset symbols in weight order.
func (o *Optimizer) Symbols() []string {
	return append([]string(nil), o.symbols...)
}

// RiskFreeRate returns the annual risk-free rate.
func (o *Optimizer) RiskFreeRate() float64 { return o.riskFreeRate }

// Statistics returns the annualized return statistics, computing them from
// the return source on first call.
func (o *Optimizer) Statistics() (*Statistics, error) {
	o.once.Do(func() {
		series, err := o.source.ReturnSeries(o.symbols)
		if err != nil {
			o.statsErr = fmt.Errorf("loading return series: %w", err)
			return
		}
		o.stats, o.statsErr = ComputeStatistics(series)
	})
	return o.stats, o.statsErr
}

// Optimize runs all three strategies. The two solver-backed strategies
// read only the immutable statistics and run concurrently; a failure in
// either is reported as-is, never substituted with another strategy's
// result.
func (o *Optimizer) Optimize(ctx context.Context) (*Result, error) {
	stats, err := o.Statistics()
	if err != nil {
		return nil, err
	}
	n := stats.NumAssets()

	var maxSharpe, minVol Outcome
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := o.solve(StrategyMaxSharpe, NegativeSharpe(stats, o.riskFreeRate), stats)
		if err != nil {
			return err
		}
		maxSharpe = out
		return nil
	})
	g.Go(func() error {
		out, err := o.solve(StrategyMinVolatility, Volatility(stats), stats)
		if err != nil {
			return err
		}
		minVol = out
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	equalWeights := make([]float64, n)
	for i := range equalWeights {
		equalWeights[i] = 1.0 / float64(n)
	}
	equal, err := o.outcome(StrategyEqualWeight, equalWeights, stats)
	if err != nil {
		return nil, err
	}

	o.log.Info().
		Float64("max_sharpe", maxSharpe.Sharpe).
		Float64("min_volatility", minVol.Volatility).
		Float64("equal_weight_sharpe", equal.Sharpe).
		Msg("Optimization complete")

	return &Result{
		MaxSharpe:     maxSharpe,
		MinVolatility: minVol,
		EqualWeight:   equal,
	}, nil
}

func (o *Optimizer) solve(strategy Strategy, objective Objective, stats *Statistics) (Outcome, error) {
	weights, err := o.solver.Minimize(objective, stats.NumAssets())
	if err != nil {
		return Outcome{}, fmt.Errorf("%s: %w", strategy, err)
	}
	return o.outcome(strategy, weights, stats)
}

func (o *Optimizer) outcome(strategy Strategy, weights []float64, stats *Statistics) (Outcome, error) {
	res, err := Evaluate(weights, stats, o.riskFreeRate)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s: %w", strategy, err)
	}
	alloc := make(map[string]float64, len(weights))
	for i, sym := range stats.Symbols {
		alloc[sym] = weights[i]
	}
	return Outcome{
		Strategy:        strategy,
		Weights:         weights,
		Allocations:     alloc,
		PortfolioResult: res,
	}, nil
}
