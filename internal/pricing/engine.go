// Package pricing implements the risk-factor pricing engine: it derives a
// recommended annual interest rate from a product's practiced market rate,
// adjusted by credit score, amount, term and income commitment, and never
// lets that rate fall below the loan's profitability floor.
//
// The engine is stateless apart from the read-only catalog; one Engine is
// shared by all requests. Factor math runs in float64, with money
// converted from shopspring/decimal at the boundary.
package pricing

import (
	"fmt"
	"math"
	"strings"

	"github.com/felipesbonatti/case-credit-risk-prediction/internal/catalog"
	"github.com/felipesbonatti/case-credit-risk-prediction/internal/model"
	"github.com/felipesbonatti/case-credit-risk-prediction/internal/profitability"
)

// CeilingMultiplier caps suggestions at this multiple of the product's
// average rate.
const CeilingMultiplier = 2.0

// Factor names, as reported in PricingResult.Factors.
const (
	FactorScore         = "score"
	FactorAmount        = "amount"
	FactorTerm          = "term"
	FactorAffordability = "affordability"
)

// Engine prices loan requests against a product catalog.
type Engine struct {
	catalog *catalog.Catalog
	calc    profitability.Calculator
}

// NewEngine creates a pricing engine. calc supplies the funding-cost and
// margin assumptions of the profitability floor.
func NewEngine(cat *catalog.Catalog, calc profitability.Calculator) *Engine {
	return &Engine{catalog: cat, calc: calc}
}

// Catalog returns the catalog the engine prices against.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Calculator returns the profitability assumptions used for the floor.
func (e *Engine) Calculator() profitability.Calculator {
	return e.calc
}

// Suggest returns the recommended annual rate for req.
//
// The request must already be valid (see model.PricingRequest.Validate).
// The result always satisfies SuggestedRate >= MinimumProfitableRate.
func (e *Engine) Suggest(req model.PricingRequest) model.PricingResult {
	code := req.ProductCode
	reference := e.catalog.ReferenceRateFor(code)
	minRate := e.catalog.MinRateFor(code)
	avgRate := e.catalog.AvgRateFor(code)
	family := e.catalog.Family(code)

	principal := req.Principal.InexactFloat64()
	income := req.MonthlyIncome.InexactFloat64()

	installment := Installment(principal, reference, req.TermMonths)
	commitment := CommitmentPct(installment, income)

	factors := []model.PricingFactor{
		{
			Name:   FactorScore,
			Value:  ScoreFactor(req.CreditScore),
			Detail: fmt.Sprintf("credit score %d", req.CreditScore),
		},
		{
			Name:   FactorAmount,
			Value:  AmountFactor(family, principal),
			Detail: fmt.Sprintf("amount %s", req.Principal.StringFixed(2)),
		},
		{
			Name:   FactorTerm,
			Value:  TermFactor(family, req.TermMonths),
			Detail: fmt.Sprintf("term %d months", req.TermMonths),
		},
		{
			Name:   FactorAffordability,
			Value:  AffordabilityFactor(commitment),
			Detail: fmt.Sprintf("income commitment %.2f%%", commitment),
		},
	}

	pd, estimated := resolvePD(req)
	minProfitable := e.calc.MinimumProfitableRate(req.Principal, req.TermMonths, pd)

	raw := reference
	for _, f := range factors {
		raw *= f.Value
	}

	// Clamp to the floor, then to product bounds, round, and clamp to the
	// floor again: rounding can land half a point under it.
	rate := math.Max(raw, minProfitable)
	maxAllowed := avgRate * CeilingMultiplier
	rate = math.Max(minRate, math.Min(rate, maxAllowed))
	rounded := RoundHalfPoint(rate)
	suggested := math.Max(rounded, CeilHalfPoint(minProfitable))

	result := model.PricingResult{
		ProductCode:           code,
		SuggestedRate:         suggested,
		ReferenceRate:         reference,
		MinRate:               minRate,
		MaxAllowedRate:        maxAllowed,
		MinimumProfitableRate: minProfitable,
		PD:                    pd,
		PDEstimated:           estimated,
		Factors:               factors,
		FloorApplied:          raw < minProfitable || suggested > rounded,
		AboveCeiling:          suggested > maxAllowed,
	}
	result.Justification = justify(result, raw)
	return result
}

// Range returns the coarse band shown next to the pricing form, without
// running the full pipeline.
func (e *Engine) Range(code string, score int) model.RateRange {
	reference := e.catalog.ReferenceRateFor(code)
	return model.RateRange{
		ProductCode: code,
		Min:         e.catalog.MinRateFor(code),
		Recommended: RoundHalfPoint(reference * ScoreFactor(score)),
		Max:         reference * CeilingMultiplier,
	}
}

// RoundHalfPoint rounds a rate to the nearest half percentage point.
func RoundHalfPoint(rate float64) float64 {
	return math.Round(rate*2) / 2
}

// CeilHalfPoint rounds a rate up to the next half percentage point.
func CeilHalfPoint(rate float64) float64 {
	return math.Ceil(rate*2) / 2
}

func resolvePD(req model.PricingRequest) (pd float64, estimated bool) {
	if req.PD != nil {
		return *req.PD, false
	}
	return EstimatePD(req.CreditScore), true
}

// justify renders the human-readable explanation of a suggestion.
func justify(r model.PricingResult, raw float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reference rate for %s: %.2f%% a.a.\n", r.ProductCode, r.ReferenceRate)
	for _, f := range r.Factors {
		fmt.Fprintf(&b, "- %s: %s (x%.2f)\n", f.Detail, describeFactor(f.Value), f.Value)
	}
	fmt.Fprintf(&b, "Risk-adjusted rate before limits: %.2f%% a.a.\n", raw)

	source := "supplied by scoring"
	if r.PDEstimated {
		source = "estimated from credit score"
	}
	fmt.Fprintf(&b, "Probability of default: %.2f%% (%s)\n", r.PD*100, source)
	fmt.Fprintf(&b, "Product minimum: %.2f%% a.a.; profitability minimum: %.2f%% a.a.\n",
		r.MinRate, r.MinimumProfitableRate)

	if r.FloorApplied {
		b.WriteString("Rate raised to the profitability minimum.\n")
	}
	if r.AboveCeiling {
		fmt.Fprintf(&b, "Profitability minimum exceeds the product ceiling of %.2f%% a.a.\n", r.MaxAllowedRate)
	}
	fmt.Fprintf(&b, "Suggested rate: %.1f%% a.a.", r.SuggestedRate)
	return b.String()
}

func describeFactor(v float64) string {
	switch {
	case v > 1:
		return fmt.Sprintf("raises the rate by %.1f%%", (v-1)*100)
	case v < 1:
		return fmt.Sprintf("lowers the rate by %.1f%%", (1-v)*100)
	default:
		return "neutral"
	}
}
