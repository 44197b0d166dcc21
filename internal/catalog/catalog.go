// Package catalog holds the read-only product rate catalog: the minimum,
// average, ceiling and currently practiced annual rates of every loan
// product the bank originates.
//
// A Catalog is built once at start-up and never written afterwards, so it
// is safe for concurrent use without locking. Lookups of unknown product
// codes never fail; they resolve through fixed defaults and emit a warning.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/felipesbonatti/case-credit-risk-prediction/internal/metrics"
	"github.com/felipesbonatti/case-credit-risk-prediction/internal/model"
)

// Fallbacks used when a product code is not in the catalog.
const (
	DefaultMinRate = 28.0
	DefaultAvgRate = 24.0
)

var (
	ErrEmptyCatalog     = errors.New("catalog: no products loaded")
	ErrDuplicateProduct = errors.New("catalog: duplicate product code")
)

// Source supplies the product rows a Catalog is built from.
type Source interface {
	ListProductRates(ctx context.Context) ([]model.ProductRateInfo, error)
}

// Catalog is an immutable lookup of rate bounds by product code.
type Catalog struct {
	products map[string]model.ProductRateInfo
	codes    []string // normalised keys, sorted
	logger   *slog.Logger
}

// New validates the given products and builds a catalog from them.
func New(products []model.ProductRateInfo, logger *slog.Logger) (*Catalog, error) {
	if len(products) == 0 {
		return nil, ErrEmptyCatalog
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Catalog{
		products: make(map[string]model.ProductRateInfo, len(products)),
		logger:   logger,
	}
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("catalog: product %q: %w", p.Code, err)
		}
		key := NormalizeCode(p.Code)
		if _, dup := c.products[key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateProduct, p.Code)
		}
		c.products[key] = p
		c.codes = append(c.codes, key)
	}
	sort.Strings(c.codes)
	return c, nil
}

// Load reads every product from src and builds a catalog.
func Load(ctx context.Context, src Source, logger *slog.Logger) (*Catalog, error) {
	products, err := src.ListProductRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: load products: %w", err)
	}
	return New(products, logger)
}

// MustDefault returns a catalog over DefaultProducts. It panics only if the
// built-in table is inconsistent.
func MustDefault() *Catalog {
	c, err := New(DefaultProducts(), nil)
	if err != nil {
		panic(err)
	}
	return c
}

// Info returns the catalog entry for code. The boolean is false when the
// product is unknown; callers apply their own fallbacks.
func (c *Catalog) Info(code string) (model.ProductRateInfo, bool) {
	p, ok := c.products[NormalizeCode(code)]
	return p, ok
}

// Products returns all entries ordered by normalised code.
func (c *Catalog) Products() []model.ProductRateInfo {
	out := make([]model.ProductRateInfo, 0, len(c.codes))
	for _, k := range c.codes {
		out = append(out, c.products[k])
	}
	return out
}

// MinRateFor returns the product minimum, or DefaultMinRate if unknown.
func (c *Catalog) MinRateFor(code string) float64 {
	if p, ok := c.Info(code); ok {
		return p.MinRate
	}
	c.warnFallback(code, "min_rate", DefaultMinRate)
	return DefaultMinRate
}

// AvgRateFor returns the product average, or DefaultAvgRate if unknown.
func (c *Catalog) AvgRateFor(code string) float64 {
	if p, ok := c.Info(code); ok {
		return p.AvgRate
	}
	c.warnFallback(code, "avg_rate", DefaultAvgRate)
	return DefaultAvgRate
}

// ReferenceRateFor returns the practiced market rate, falling back to
// AvgRateFor when the product is unknown.
func (c *Catalog) ReferenceRateFor(code string) float64 {
	if p, ok := c.Info(code); ok {
		return p.ReferenceRate
	}
	// Same value AvgRateFor would fall back to.
	c.warnFallback(code, "reference_rate", DefaultAvgRate)
	return DefaultAvgRate
}

// Family returns the product family. Unknown products price as consumer credit.
func (c *Catalog) Family(code string) model.Family {
	if p, ok := c.Info(code); ok {
		return p.Family
	}
	return model.FamilyConsumer
}

func (c *Catalog) warnFallback(code, field string, value float64) {
	metrics.CatalogFallbacks.WithLabelValues(field).Inc()
	c.logger.Warn("unknown product code, using default rate",
		"product", code,
		"field", field,
		"default", value,
	)
}

// NormalizeCode folds case and strips accents, so "Imobiliário" and
// "IMOBILIARIO" address the same product.
func NormalizeCode(code string) string {
	// Chained transformers carry state; build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(code))
	if err != nil {
		out = strings.TrimSpace(code)
	}
	return strings.ToUpper(out)
}
