package charts

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lohithreddy19/portfolio-optimizer1/internal/modules/optimization"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func sampleCloud(n int) []optimization.PortfolioResult {
	rng := rand.New(rand.NewSource(1))
	out := make([]optimization.PortfolioResult, n)
	for i := range out {
		vol := 0.05 + rng.Float64()*0.25
		ret := 0.02 + vol*rng.Float64()
		out[i] = optimization.PortfolioResult{
			Return:     ret,
			Volatility: vol,
			Sharpe:     (ret - 0.02) / vol,
		}
	}
	return out
}

func TestRenderFrontierProducesPNG(t *testing.T) {
	svc := NewService(zerolog.Nop())

	result := &optimization.Result{
		MaxSharpe:     optimization.Outcome{PortfolioResult: optimization.PortfolioResult{Sharpe: 1.2}},
		MinVolatility: optimization.Outcome{PortfolioResult: optimization.PortfolioResult{Volatility: 0.08}},
		EqualWeight:   optimization.Outcome{PortfolioResult: optimization.PortfolioResult{Sharpe: 0.9}},
	}

	img, err := svc.RenderFrontier(sampleCloud(1000), result)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))
}

func TestRenderFrontierWithoutResult(t *testing.T) {
	svc := NewService(zerolog.Nop())

	img, err := svc.RenderFrontier(sampleCloud(500), nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))
}

func TestRenderFrontierEmptySamples(t *testing.T) {
	svc := NewService(zerolog.Nop())

	_, err := svc.RenderFrontier(nil, nil)
	assert.Error(t, err)
}

func TestRenderFrontierDegenerateVolatilities(t *testing.T) {
	svc := NewService(zerolog.Nop())

	flat := []optimization.PortfolioResult{
		{Return: 0.05, Volatility: 0.1},
		{Return: 0.06, Volatility: 0.1},
	}
	_, err := svc.RenderFrontier(flat, nil)
	assert.Error(t, err)
}
