package store

import (
	"context"
	"sync"
	"time"

	"github.com/felipesbonatti/case-credit-risk-prediction/internal/model"
)

// MemoryStore implements RateStore over a fixed slice. Used when no
// database is configured, and in tests.
type MemoryStore struct {
	products []model.ProductRateInfo
}

// NewMemoryStore creates a store serving the given products.
func NewMemoryStore(products ...model.ProductRateInfo) *MemoryStore {
	// Copy so later mutation of the caller's slice is not observed.
	cp := make([]model.ProductRateInfo, len(products))
	copy(cp, products)
	return &MemoryStore{products: cp}
}

func (s *MemoryStore) ListProductRates(_ context.Context) ([]model.ProductRateInfo, error) {
	out := make([]model.ProductRateInfo, len(s.products))
	copy(out, s.products)
	return out, nil
}

// MemoryQuoteCache implements QuoteCache with an in-process map. Expired
// entries are dropped lazily on read.
type MemoryQuoteCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry struct {
	quote   model.Quote
	expires time.Time
}

// NewMemoryQuoteCache creates an in-memory cache with the given TTL.
func NewMemoryQuoteCache(ttl time.Duration) *MemoryQuoteCache {
	return &MemoryQuoteCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryQuoteCache) GetQuote(_ context.Context, key string) (*model.Quote, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}
	if c.now().After(e.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, ErrCacheMiss
	}
	q := e.quote
	return &q, nil
}

func (c *MemoryQuoteCache) PutQuote(_ context.Context, key string, q *model.Quote) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryEntry{quote: *q, expires: c.now().Add(c.ttl)}
	return nil
}

// Len returns the number of entries, expired or not.
func (c *MemoryQuoteCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
