// Package store provides the adapters the pricing service reads from:
// the product rate table (PostgreSQL, or in-memory for development and
// tests) and the quote cache (Redis, or in-memory).
//
// The service only ever reads product rates, once at start-up.
package store

import (
	"context"
	"errors"

	"github.com/felipesbonatti/case-credit-risk-prediction/internal/model"
)

// ErrCacheMiss is returned by QuoteCache.GetQuote when the key is absent or expired.
var ErrCacheMiss = errors.New("store: cache miss")

// RateStore lists the product rate rows the catalog is built from.
type RateStore interface {
	ListProductRates(ctx context.Context) ([]model.ProductRateInfo, error)
}

// QuoteCache keeps recently computed quotes keyed by a request fingerprint.
// Pricing is a pure function of the request, so a cached quote prices the
// same as a fresh one; callers assign each returned quote its own ID.
type QuoteCache interface {
	// GetQuote returns the cached quote or ErrCacheMiss.
	GetQuote(ctx context.Context, key string) (*model.Quote, error)

	// PutQuote stores a quote under key.
	PutQuote(ctx context.Context, key string, q *model.Quote) error
}
