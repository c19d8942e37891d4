package optimization

import (
	"fmt"
	"math/rand"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Sampler approximates the feasible risk/return region by evaluating
// randomly drawn long-only portfolios. Samples are exploratory output for
// inspection and plotting; they are never fed back into the solver.
type Sampler struct {
	log zerolog.Logger
}

// NewSampler creates a frontier sampler.
func NewSampler(log zerolog.Logger) *Sampler {
	return &Sampler{log: log.With().Str("component", "frontier").Logger()}
}

// Sample draws count feasible weight vectors (independent uniforms
// normalized by their sum, so every weight is in [0,1) and the vector sums
// to 1 by construction) and evaluates the portfolio metrics for each.
// Evaluations share no mutable state and run in parallel; rng seeds the
// per-worker sources, so a deterministically seeded rng replays the same
// cloud within one process.
func (s *Sampler) Sample(stats *Statistics, riskFreeRate float64, count int, rng *rand.Rand) ([]PortfolioResult, error) {
	if count <= 0 {
		return nil, fmt.Errorf("sample count must be positive, got %d", count)
	}
	if stats.NumAssets() == 0 {
		return nil, fmt.Errorf("statistics cover no assets")
	}
	n := stats.NumAssets()

	workers := runtime.GOMAXPROCS(0)
	if workers > count {
		workers = count
	}

	// Seeds are drawn up front from the caller's rng so the draw sequence
	// does not depend on worker scheduling.
	seeds := make([]int64, workers)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	results := make([]PortfolioResult, count)
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			local := rand.New(rand.NewSource(seeds[w]))
			for i := w; i < count; i += workers {
				weights := randomWeights(n, local)
				res, err := Evaluate(weights, stats, riskFreeRate)
				if err != nil {
					return fmt.Errorf("sample %d: %w", i, err)
				}
				results[i] = res
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.log.Debug().Int("count", count).Int("assets", n).Msg("Sampled random portfolios")
	return results, nil
}

// randomWeights draws n uniform values in [0,1) and normalizes them by
// their sum. All draws are non-negative, so no rejection step is needed.
func randomWeights(n int, rng *rand.Rand) []float64 {
	w := make([]float64, n)
	sum := 0.0
	for i := range w {
		w[i] = rng.Float64()
		sum += w[i]
	}
	if sum == 0 {
		// Vanishingly unlikely, but avoid dividing by zero.
		for i := range w {
			w[i] = 1.0 / float64(n)
		}
		return w
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}
