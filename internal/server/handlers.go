package server

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Lohithreddy19/portfolio-optimizer1/internal/config"
	"github.com/Lohithreddy19/portfolio-optimizer1/internal/modules/charts"
	"github.com/Lohithreddy19/portfolio-optimizer1/internal/modules/history"
	"github.com/Lohithreddy19/portfolio-optimizer1/internal/modules/optimization"
)

// Handler serves the optimizer API.
type Handler struct {
	cfg       *config.Config
	priceRepo *history.PriceRepository
	charts    *charts.Service
	sampler   *optimization.Sampler
	log       zerolog.Logger

	mu     sync.RWMutex
	latest *optimizeResponse
}

// NewHandler creates the API handler.
func NewHandler(cfg *config.Config, priceRepo *history.PriceRepository, chartSvc *charts.Service, log zerolog.Logger) *Handler {
	return &Handler{
		cfg:       cfg,
		priceRepo: priceRepo,
		charts:    chartSvc,
		sampler:   optimization.NewSampler(log),
		log:       log.With().Str("component", "api").Logger(),
	}
}

// RegisterRoutes registers all optimizer routes on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Post("/prices/{symbol}", h.HandleSavePrices)
	r.Get("/statistics", h.HandleGetStatistics)
	r.Post("/optimize", h.HandleOptimize)
	r.Get("/optimize/latest", h.HandleGetLatest)
	r.Get("/frontier", h.HandleGetFrontier)
	r.Get("/frontier/chart", h.HandleGetFrontierChart)
}

type optimizeResponse struct {
	RunID      string               `json:"run_id"`
	Symbols    []string             `json:"symbols"`
	RiskFree   float64              `json:"risk_free_rate"`
	FinishedAt time.Time            `json:"finished_at"`
	Result     *optimization.Result `json:"strategies"`
}

// newOptimizer builds a fresh optimizer so every run reads the current
// price history rather than a stale cached snapshot.
func (h *Handler) newOptimizer() (*optimization.Optimizer, error) {
	return optimization.New(optimization.Config{
		Symbols:      h.cfg.Symbols,
		RiskFreeRate: h.cfg.RiskFreeRate,
		Source:       h.priceRepo,
		Log:          h.log,
	})
}

// HandleHealth returns service health.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"symbols": h.cfg.Symbols,
	})
}

// HandleSavePrices stores a batch of daily closing prices for one symbol.
func (h *Handler) HandleSavePrices(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	var prices []history.DailyPrice
	if err := json.NewDecoder(r.Body).Decode(&prices); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid price payload: "+err.Error())
		return
	}
	if len(prices) == 0 {
		h.writeError(w, http.StatusBadRequest, "empty price payload")
		return
	}

	if err := h.priceRepo.SaveDailyPrices(symbol, prices); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"symbol": symbol,
		"saved":  len(prices),
	})
}

// HandleGetStatistics returns the annualized return statistics for the
// configured symbols.
func (h *Handler) HandleGetStatistics(w http.ResponseWriter, r *http.Request) {
	opt, err := h.newOptimizer()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	stats, err := opt.Statistics()
	if err != nil {
		h.writeError(w, statusForError(err), err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"symbols":      stats.Symbols,
		"mean_returns": stats.MeanBySymbol(),
		"covariance":   stats.Covariance(),
	})
}

// HandleOptimize runs all strategies and stores the result as the latest
// run.
func (h *Handler) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	resp, err := h.runOptimization(r.Context())
	if err != nil {
		h.writeError(w, statusForError(err), err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// HandleGetLatest returns the most recent optimization run.
func (h *Handler) HandleGetLatest(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	latest := h.latest
	h.mu.RUnlock()

	if latest == nil {
		h.writeError(w, http.StatusNotFound, "no optimization run yet")
		return
	}
	h.writeJSON(w, http.StatusOK, latest)
}

// HandleGetFrontier returns a random portfolio sample cloud. Supports
// samples and seed query parameters; the seed defaults to the clock so
// repeated calls explore different draws.
func (h *Handler) HandleGetFrontier(w http.ResponseWriter, r *http.Request) {
	count, seed, err := h.frontierParams(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	opt, err := h.newOptimizer()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	stats, err := opt.Statistics()
	if err != nil {
		h.writeError(w, statusForError(err), err.Error())
		return
	}

	samples, err := h.sampler.Sample(stats, h.cfg.RiskFreeRate, count, rand.New(rand.NewSource(seed)))
	if err != nil {
		h.writeError(w, statusForError(err), err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"samples": samples,
		"count":   len(samples),
		"seed":    seed,
	})
}

// HandleGetFrontierChart renders the frontier as a PNG.
func (h *Handler) HandleGetFrontierChart(w http.ResponseWriter, r *http.Request) {
	count, seed, err := h.frontierParams(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	opt, err := h.newOptimizer()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	stats, err := opt.Statistics()
	if err != nil {
		h.writeError(w, statusForError(err), err.Error())
		return
	}
	result, err := opt.Optimize(r.Context())
	if err != nil {
		h.writeError(w, statusForError(err), err.Error())
		return
	}

	samples, err := h.sampler.Sample(stats, h.cfg.RiskFreeRate, count, rand.New(rand.NewSource(seed)))
	if err != nil {
		h.writeError(w, statusForError(err), err.Error())
		return
	}

	img, err := h.charts.RenderFrontier(samples, result)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img); err != nil {
		h.log.Error().Err(err).Msg("Failed to write chart response")
	}
}

// RefreshLatest runs the optimization and stores the result, used by the
// scheduler for periodic refreshes.
func (h *Handler) RefreshLatest(ctx context.Context) error {
	_, err := h.runOptimization(ctx)
	return err
}

func (h *Handler) runOptimization(ctx context.Context) (*optimizeResponse, error) {
	opt, err := h.newOptimizer()
	if err != nil {
		return nil, err
	}

	result, err := opt.Optimize(ctx)
	if err != nil {
		return nil, err
	}

	resp := &optimizeResponse{
		RunID:      uuid.NewString(),
		Symbols:    h.cfg.Symbols,
		RiskFree:   h.cfg.RiskFreeRate,
		FinishedAt: time.Now().UTC(),
		Result:     result,
	}

	h.mu.Lock()
	h.latest = resp
	h.mu.Unlock()

	h.log.Info().Str("run_id", resp.RunID).Msg("Stored optimization run")
	return resp, nil
}

func (h *Handler) frontierParams(r *http.Request) (count int, seed int64, err error) {
	count = h.cfg.FrontierSamples
	if raw := r.URL.Query().Get("samples"); raw != "" {
		count, err = strconv.Atoi(raw)
		if err != nil || count <= 0 {
			return 0, 0, errors.New("samples must be a positive integer")
		}
	}

	seed = time.Now().UnixNano()
	if raw := r.URL.Query().Get("seed"); raw != "" {
		seed, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, 0, errors.New("seed must be an integer")
		}
	}
	return count, seed, nil
}

// statusForError maps domain errors to HTTP status codes. Data problems
// are the client's to fix, solver failures are not.
func statusForError(err error) int {
	var insufficient *optimization.InsufficientDataError
	if errors.As(err, &insufficient) {
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, optimization.ErrDegenerateVolatility) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
