// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/felipesbonatti/case-credit-risk-prediction/internal/profitability"
)

type LogConfig struct {
	Level  string
	Format string
}

type PricingConfig struct {
	FundingRate  float64 // annual funding cost, percent
	MinMarginPct float64 // required margin over principal, percent
}

type BatchConfig struct {
	Concurrency int
	MaxSize     int
}

type Config struct {
	Port          int
	DatabaseURL   string
	MigrationsDir string
	RedisURL      string
	QuoteCacheTTL time.Duration
	Log           LogConfig
	Pricing       PricingConfig
	Batch         BatchConfig
	ServiceName   string
}

var (
	ErrInvalidPort    = errors.New("config: PORT must be between 1 and 65535")
	ErrInvalidPricing = errors.New("config: FUNDING_RATE and MIN_MARGIN_PCT must be finite and non-negative")
	ErrInvalidBatch   = errors.New("config: BATCH_CONCURRENCY and BATCH_MAX_SIZE must be positive")
	ErrInvalidTTL     = errors.New("config: QUOTE_CACHE_TTL must be positive")
)

func Load() Config {
	return Config{
		Port:          getEnvInt("PORT", 8080),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		MigrationsDir: getEnv("MIGRATIONS_DIR", ""),
		RedisURL:      getEnv("REDIS_URL", ""),
		QuoteCacheTTL: getEnvDuration("QUOTE_CACHE_TTL", 5*time.Minute),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Pricing: PricingConfig{
			FundingRate:  getEnvFloat("FUNDING_RATE", profitability.DefaultFundingRate),
			MinMarginPct: getEnvFloat("MIN_MARGIN_PCT", profitability.DefaultMinMarginPct),
		},
		Batch: BatchConfig{
			Concurrency: getEnvInt("BATCH_CONCURRENCY", 8),
			MaxSize:     getEnvInt("BATCH_MAX_SIZE", 1000),
		},
		ServiceName: "credit-pricing",
	}
}

func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: got %d", ErrInvalidPort, c.Port)
	}
	if !finite(c.Pricing.FundingRate) || !finite(c.Pricing.MinMarginPct) ||
		c.Pricing.FundingRate < 0 || c.Pricing.MinMarginPct < 0 {
		return fmt.Errorf("%w: got %v, %v", ErrInvalidPricing, c.Pricing.FundingRate, c.Pricing.MinMarginPct)
	}
	if c.Batch.Concurrency < 1 || c.Batch.MaxSize < 1 {
		return ErrInvalidBatch
	}
	if c.QuoteCacheTTL <= 0 {
		return ErrInvalidTTL
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Calculator returns the profitability assumptions configured for pricing.
func (c Config) Calculator() profitability.Calculator {
	return profitability.Calculator{
		FundingRate:  c.Pricing.FundingRate,
		MinMarginPct: c.Pricing.MinMarginPct,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
