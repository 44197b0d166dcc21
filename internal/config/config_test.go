package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_URL", "REDIS_URL", "FUNDING_RATE", "MIN_MARGIN_PCT",
		"QUOTE_CACHE_TTL", "BATCH_CONCURRENCY", "BATCH_MAX_SIZE", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.HTTPAddr())
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 13.31, cfg.Pricing.FundingRate)
	assert.Equal(t, 5.0, cfg.Pricing.MinMarginPct)
	assert.Equal(t, 5*time.Minute, cfg.QuoteCacheTTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FUNDING_RATE", "11.5")
	t.Setenv("MIN_MARGIN_PCT", "3")
	t.Setenv("QUOTE_CACHE_TTL", "30s")
	t.Setenv("BATCH_CONCURRENCY", "2")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 11.5, cfg.Pricing.FundingRate)
	assert.Equal(t, 3.0, cfg.Pricing.MinMarginPct)
	assert.Equal(t, 30*time.Second, cfg.QuoteCacheTTL)
	assert.Equal(t, 2, cfg.Batch.Concurrency)

	calc := cfg.Calculator()
	assert.Equal(t, 11.5, calc.FundingRate)
	assert.Equal(t, 3.0, calc.MinMarginPct)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("FUNDING_RATE", "abc")
	t.Setenv("QUOTE_CACHE_TTL", "forever")

	cfg := Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 13.31, cfg.Pricing.FundingRate)
	assert.Equal(t, 5*time.Minute, cfg.QuoteCacheTTL)
}

func TestValidate(t *testing.T) {
	base := Load()

	bad := base
	bad.Port = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidPort)

	bad = base
	bad.Pricing.FundingRate = -1
	assert.ErrorIs(t, bad.Validate(), ErrInvalidPricing)

	bad = base
	bad.Batch.MaxSize = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidBatch)

	bad = base
	bad.QuoteCacheTTL = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidTTL)
}

func TestValidate_NonFinitePricing(t *testing.T) {
	for _, v := range []string{"NaN", "Inf", "-Inf", "+Inf"} {
		t.Setenv("FUNDING_RATE", v)
		t.Setenv("MIN_MARGIN_PCT", "")
		cfg := Load()
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidPricing, "FUNDING_RATE=%s", v)

		t.Setenv("FUNDING_RATE", "")
		t.Setenv("MIN_MARGIN_PCT", v)
		cfg = Load()
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidPricing, "MIN_MARGIN_PCT=%s", v)
	}
}
