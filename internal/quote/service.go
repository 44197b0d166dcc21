// Package quote is the service layer in front of the pricing engine: HTTP
// handlers for rate suggestions, profitability breakdowns, risk grades and
// rate validation, plus the dashboard's combined quote flow with caching,
// batch pricing and a live WebSocket feed.
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/felipesbonatti/case-credit-risk-prediction/internal/metrics"
	"github.com/felipesbonatti/case-credit-risk-prediction/internal/model"
	"github.com/felipesbonatti/case-credit-risk-prediction/internal/pricing"
	"github.com/felipesbonatti/case-credit-risk-prediction/internal/ratecheck"
	"github.com/felipesbonatti/case-credit-risk-prediction/internal/riskgrade"
	"github.com/felipesbonatti/case-credit-risk-prediction/internal/store"
)

// HighCommitmentPct is the income commitment above which a quote is flagged.
const HighCommitmentPct = 30.0

// MaxChosenRate bounds the annual rate a caller may price at.
const MaxChosenRate = 1000.0

var (
	ErrInvalidChosenRate = errors.New("quote: chosen rate must be between 0 and 1000")
	ErrBatchEmpty        = errors.New("quote: batch must contain at least one request")
	ErrBatchTooLarge     = errors.New("quote: batch exceeds maximum size")
)

// Options tunes the service. Zero values select the defaults.
type Options struct {
	BatchConcurrency int // parallel rows per batch, default 8
	BatchMaxSize     int // rows per batch, default 1000
}

// Service prices quotes. It holds no mutable state of its own; the cache
// and hub are safe for concurrent use.
type Service struct {
	engine    *pricing.Engine
	validator *ratecheck.Validator
	cache     store.QuoteCache // optional
	wsHub     *WSHub           // optional WebSocket hub for live broadcasts
	opts      Options
	now       func() time.Time
}

// NewService creates a quote service.
// Pass nil for cache or hub to disable caching or broadcasting.
func NewService(engine *pricing.Engine, validator *ratecheck.Validator, cache store.QuoteCache, hub *WSHub, opts Options) *Service {
	if opts.BatchConcurrency < 1 {
		opts.BatchConcurrency = 8
	}
	if opts.BatchMaxSize < 1 {
		opts.BatchMaxSize = 1000
	}
	return &Service{
		engine:    engine,
		validator: validator,
		cache:     cache,
		wsHub:     hub,
		opts:      opts,
		now:       time.Now,
	}
}

// QuoteRequest is a pricing request plus the rate the operator chose.
// When ChosenRate is nil the suggested rate is used.
type QuoteRequest struct {
	model.PricingRequest
	ChosenRate *float64 `json:"chosen_rate,omitempty"`
}

// Validate checks the request shape.
func (r QuoteRequest) Validate() error {
	if err := r.PricingRequest.Validate(); err != nil {
		return err
	}
	if r.ChosenRate != nil && (*r.ChosenRate < 0 || *r.ChosenRate > MaxChosenRate) {
		return fmt.Errorf("%w: got %v", ErrInvalidChosenRate, *r.ChosenRate)
	}
	return nil
}

// BuildQuote prices req, consulting the quote cache first.
func (s *Service) BuildQuote(ctx context.Context, req QuoteRequest) (*model.Quote, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key := cacheKey(req)
	if s.cache != nil {
		q, err := s.cache.GetQuote(ctx, key)
		switch {
		case err == nil:
			metrics.QuoteCacheResults.WithLabelValues("hit").Inc()
			// The cached pricing is reused; each call is still its own quote.
			s.stamp(q)
			s.observe(q)
			return q, nil
		case !errors.Is(err, store.ErrCacheMiss):
			slog.Warn("quote cache read failed", "err", err)
		}
		metrics.QuoteCacheResults.WithLabelValues("miss").Inc()
	}

	q := s.price(req)

	if s.cache != nil {
		if err := s.cache.PutQuote(ctx, key, q); err != nil {
			slog.Warn("quote cache write failed", "quote_id", q.ID, "err", err)
		}
	}
	return q, nil
}

// price runs the engine, then evaluates the chosen rate: profitability,
// risk grade, decision and rate bounds.
func (s *Service) price(req QuoteRequest) *model.Quote {
	pr := req.PricingRequest
	result := s.engine.Suggest(pr)

	chosen := result.SuggestedRate
	if req.ChosenRate != nil {
		chosen = *req.ChosenRate
	}

	breakdown := s.engine.Calculator().Calculate(pr.Principal, pr.TermMonths, chosen, result.PD)
	grade := riskgrade.Classify(result.PD)
	decision := Decide(grade)
	check := s.validator.Validate(pr.ProductCode, chosen)

	installment := pricing.Installment(pr.Principal.InexactFloat64(), chosen, pr.TermMonths)
	commitment := pricing.CommitmentPct(installment, pr.MonthlyIncome.InexactFloat64())

	q := &model.Quote{
		Request:               pr,
		Pricing:               result,
		ChosenRate:            chosen,
		Installment:           decimal.NewFromFloat(installment).Round(2),
		CommitmentPct:         commitment,
		HighCommitment:        commitment > HighCommitmentPct,
		Profitability:         breakdown,
		RiskGrade:             grade,
		Decision:              decision,
		ScoringRecommendation: pr.ScoringRecommendation,
		RateCheck:             check,
	}
	s.stamp(q)
	s.observe(q)

	if pr.ScoringRecommendation != "" && pr.ScoringRecommendation != decision {
		slog.Info("scoring recommendation differs from grade policy",
			"quote_id", q.ID,
			"grade", grade.Grade,
			"policy", decision,
			"scoring", pr.ScoringRecommendation,
		)
	}

	slog.Debug("quote priced",
		"quote_id", q.ID,
		"product", pr.ProductCode,
		"suggested_rate", result.SuggestedRate,
		"chosen_rate", chosen,
		"min_profitable_rate", result.MinimumProfitableRate,
		"pd", result.PD,
		"grade", grade.Grade,
		"approvable", breakdown.Approvable,
	)
	return q
}

// stamp gives q a fresh identity.
func (s *Service) stamp(q *model.Quote) {
	q.ID = uuid.New().String()
	q.CreatedAt = s.now().UTC()
}

func (s *Service) observe(q *model.Quote) {
	label := s.productLabel(q.Request.ProductCode)
	metrics.QuotesTotal.WithLabelValues(label, string(q.Decision)).Inc()
	metrics.SuggestedRate.WithLabelValues(label).Observe(q.Pricing.SuggestedRate)
	if q.Pricing.FloorApplied {
		metrics.FloorDominated.WithLabelValues(label).Inc()
	}
}

// productLabel bounds metric cardinality: unknown codes share one label.
func (s *Service) productLabel(code string) string {
	if p, ok := s.engine.Catalog().Info(code); ok {
		return p.Code
	}
	return "unknown"
}

// cacheKey fingerprints the request. Identical requests price identically,
// so the fingerprint is a safe cache key.
func cacheKey(req QuoteRequest) string {
	data, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}
