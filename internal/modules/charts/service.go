// Package charts renders the efficient frontier as a PNG line chart.
package charts

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/vicanso/go-charts/v2"

	"github.com/Lohithreddy19/portfolio-optimizer1/internal/modules/optimization"
)

// frontierBins is the number of volatility buckets the sample cloud is
// reduced to. The chart plots the best return seen in each bucket, which
// traces the upper envelope of the cloud.
const frontierBins = 60

// Service renders optimization output as charts.
type Service struct {
	log zerolog.Logger
}

// NewService creates a chart service.
func NewService(log zerolog.Logger) *Service {
	return &Service{log: log.With().Str("component", "charts").Logger()}
}

// RenderFrontier renders the efficient frontier from a random sample
// cloud, annotated with the optimized portfolios. Returns are plotted in
// percent against volatility buckets.
func (s *Service) RenderFrontier(samples []optimization.PortfolioResult, result *optimization.Result) ([]byte, error) {
	if len(samples) == 0 {
		return nil, errors.New("no samples to render")
	}

	sorted := make([]optimization.PortfolioResult, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Volatility < sorted[j].Volatility })

	minVol := sorted[0].Volatility
	maxVol := sorted[len(sorted)-1].Volatility
	if maxVol <= minVol {
		return nil, errors.New("sample volatilities are degenerate")
	}

	width := (maxVol - minVol) / frontierBins
	best := make([]float64, frontierBins)
	seen := make([]bool, frontierBins)
	for _, p := range sorted {
		bin := int((p.Volatility - minVol) / width)
		if bin >= frontierBins {
			bin = frontierBins - 1
		}
		if !seen[bin] || p.Return > best[bin] {
			best[bin] = p.Return
			seen[bin] = true
		}
	}

	var values []float64
	var labels []string
	for i := 0; i < frontierBins; i++ {
		if !seen[i] {
			continue
		}
		vol := minVol + (float64(i)+0.5)*width
		values = append(values, best[i]*100)
		labels = append(labels, fmt.Sprintf("%.1f%%", vol*100))
	}
	if len(values) < 2 {
		return nil, errors.New("not enough distinct volatility buckets")
	}

	subtitle := ""
	if result != nil {
		subtitle = fmt.Sprintf("max sharpe %.2f | min volatility %.2f%% | equal weight sharpe %.2f",
			result.MaxSharpe.Sharpe,
			result.MinVolatility.Volatility*100,
			result.EqualWeight.Sharpe)
	}

	painter, err := charts.LineRender([][]float64{values},
		charts.TitleTextOptionFunc("Efficient Frontier", subtitle),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: labels, BoundaryGap: charts.FalseFlag()}),
		charts.LegendOptionFunc(charts.LegendOption{Data: []string{"annualized return %"}}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render frontier chart: %w", err)
	}

	img, err := painter.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to encode frontier chart: %w", err)
	}

	s.log.Debug().Int("samples", len(samples)).Int("points", len(values)).Msg("Rendered frontier chart")
	return img, nil
}
