// Command server runs the portfolio optimizer HTTP service.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Lohithreddy19/portfolio-optimizer1/internal/config"
	"github.com/Lohithreddy19/portfolio-optimizer1/internal/database"
	"github.com/Lohithreddy19/portfolio-optimizer1/internal/modules/charts"
	"github.com/Lohithreddy19/portfolio-optimizer1/internal/modules/history"
	"github.com/Lohithreddy19/portfolio-optimizer1/internal/scheduler"
	"github.com/Lohithreddy19/portfolio-optimizer1/internal/server"
	"github.com/Lohithreddy19/portfolio-optimizer1/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info"})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().
		Strs("symbols", cfg.Symbols).
		Float64("risk_free_rate", cfg.RiskFreeRate).
		Int("port", cfg.Port).
		Msg("Starting portfolio optimizer")

	db, err := database.New(database.Config{
		Path: cfg.DatabasePath(),
		Name: "history",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open price database")
	}
	defer db.Close()

	priceRepo := history.NewPriceRepository(db, log)
	if err := priceRepo.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize price schema")
	}

	srv := server.New(server.Config{
		Log:       log,
		Cfg:       cfg,
		PriceRepo: priceRepo,
		Charts:    charts.NewService(log),
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	var sched *scheduler.Scheduler
	if cfg.RefreshSchedule != "" {
		sched = scheduler.New(log)
		err := sched.AddJob(cfg.RefreshSchedule, scheduler.JobFunc{
			JobName: "refresh_optimization",
			Fn:      srv.RefreshLatest,
		})
		if err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.RefreshSchedule).Msg("Invalid refresh schedule")
		}
		sched.Start()
	}

	waitForShutdown(log)

	if sched != nil {
		sched.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Shutdown complete")
}

func waitForShutdown(log zerolog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
}
