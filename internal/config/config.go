// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// DefaultRiskFreeRate is the annual risk-free rate used when none is
	// configured.
	DefaultRiskFreeRate = 0.02
	// DefaultFrontierSamples is the default random portfolio count for
	// frontier sampling.
	DefaultFrontierSamples = 5000
)

// Config holds all application configuration.
type Config struct {
	DataDir  string
	Port     int
	LogLevel string
	DevMode  bool

	Symbols         []string
	RiskFreeRate    float64
	FrontierSamples int
	RefreshSchedule string // cron expression, empty disables scheduled runs
}

// Load reads configuration from the environment, with a .env file as an
// optional source for local development.
func Load() (*Config, error) {
	// Missing .env is fine, real deployments set the environment directly.
	_ = godotenv.Load()

	dataDir := getEnv("OPTIMIZER_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DevMode:  getEnvAsBool("DEV_MODE", false),

		Symbols:         splitSymbols(getEnv("PORTFOLIO_SYMBOLS", "AAPL,MSFT,GOOGL,AMZN,JPM")),
		RiskFreeRate:    getEnvAsFloat("RISK_FREE_RATE", DefaultRiskFreeRate),
		FrontierSamples: getEnvAsInt("FRONTIER_SAMPLES", DefaultFrontierSamples),
		RefreshSchedule: getEnv("REFRESH_SCHEDULE", ""),
	}

	if len(cfg.Symbols) == 0 {
		return nil, fmt.Errorf("PORTFOLIO_SYMBOLS must name at least one symbol")
	}
	if cfg.FrontierSamples <= 0 {
		return nil, fmt.Errorf("FRONTIER_SAMPLES must be positive, got %d", cfg.FrontierSamples)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORT must be in 1..65535, got %d", cfg.Port)
	}

	return cfg, nil
}

// DatabasePath returns the path of the price history database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// splitSymbols parses a comma separated symbol list, trimming whitespace
// and uppercasing entries.
func splitSymbols(raw string) []string {
	var symbols []string
	for _, part := range strings.Split(raw, ",") {
		s := strings.ToUpper(strings.TrimSpace(part))
		if s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}

// getEnv retrieves an environment variable with a fallback.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// getEnvAsInt retrieves an environment variable as an integer with a fallback.
func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// getEnvAsFloat retrieves an environment variable as a float with a fallback.
func getEnvAsFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

// getEnvAsBool retrieves an environment variable as a boolean with a fallback.
func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
