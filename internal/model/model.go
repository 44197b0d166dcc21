// Package model defines the core domain types shared across the pricing service.
// Money uses shopspring/decimal; rates, percentages and probabilities are
// float64 percentage points (or fractions, for PD).
package model

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// ProductRateInfo holds the annual rate bounds practiced for one loan product.
// Entries are loaded once at start-up and never modified.
type ProductRateInfo struct {
	Code          string  `json:"code" db:"code"`
	Name          string  `json:"name" db:"name"`
	MinRate       float64 `json:"min_rate" db:"min_rate"`
	AvgRate       float64 `json:"avg_rate" db:"avg_rate"`
	MaxRate       float64 `json:"max_rate" db:"max_rate"`
	ReferenceRate float64 `json:"reference_rate" db:"reference_rate"` // currently practiced market rate
	Family        Family  `json:"family" db:"family"`
	Description   string  `json:"description" db:"description"`
}

// Family groups products that share amount and term adjustment policies.
type Family string

const (
	FamilyConsumer   Family = "consumer"
	FamilyRealEstate Family = "real_estate"
	FamilyRevolving  Family = "revolving"
)

// Valid reports whether f is a known product family.
func (f Family) Valid() bool {
	switch f {
	case FamilyConsumer, FamilyRealEstate, FamilyRevolving:
		return true
	}
	return false
}

// Validate checks the ordering of the rate bounds.
func (p ProductRateInfo) Validate() error {
	if p.Code == "" {
		return ErrEmptyProductCode
	}
	if p.MinRate < 0 ||
		p.MinRate > p.ReferenceRate || p.ReferenceRate > p.MaxRate ||
		p.MinRate > p.AvgRate || p.AvgRate > p.MaxRate {
		return ErrInvalidRateBounds
	}
	// Half-point rounding of a rate clamped to [min, 2 x avg] must stay inside it.
	if !onGrid(p.MinRate, 2) || !onGrid(p.AvgRate, 4) {
		return fmt.Errorf("%w: min %v, avg %v", ErrOffGridRate, p.MinRate, p.AvgRate)
	}
	if !p.Family.Valid() {
		return ErrInvalidFamily
	}
	return nil
}

// onGrid reports whether rate is a whole multiple of 1/steps.
func onGrid(rate, steps float64) bool {
	x := rate * steps
	return x == math.Trunc(x)
}

// PricingRequest is a single loan request submitted for pricing.
type PricingRequest struct {
	ProductCode   string          `json:"product_code"`
	Principal     decimal.Decimal `json:"principal"`
	TermMonths    int             `json:"term_months"`
	CreditScore   int             `json:"credit_score"` // 0–1000
	MonthlyIncome decimal.Decimal `json:"monthly_income"`
	// PD is the probability of default supplied by the scoring service.
	// Nil means it is estimated from the credit score.
	PD *float64 `json:"pd,omitempty"`
	// ScoringRecommendation is the scoring service's own verdict, if any.
	ScoringRecommendation Decision `json:"scoring_recommendation,omitempty"`
}

// PricingFactor is one multiplicative adjustment applied to the reference rate.
type PricingFactor struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Detail string  `json:"detail"`
}

// PricingResult is the engine's recommendation for a PricingRequest.
type PricingResult struct {
	ProductCode           string          `json:"product_code"`
	SuggestedRate         float64         `json:"suggested_rate"`
	ReferenceRate         float64         `json:"reference_rate"`
	MinRate               float64         `json:"min_rate"`
	MaxAllowedRate        float64         `json:"max_allowed_rate"`
	MinimumProfitableRate float64         `json:"minimum_profitable_rate"`
	PD                    float64         `json:"pd"`
	PDEstimated           bool            `json:"pd_estimated"`
	Factors               []PricingFactor `json:"factors"`
	FloorApplied          bool            `json:"floor_applied"` // profitability floor raised the rate
	AboveCeiling          bool            `json:"above_ceiling"` // floor forced the rate past MaxAllowedRate
	Justification         string          `json:"justification"`
}

// RateRange is the coarse min/recommended/max band shown next to the form.
type RateRange struct {
	ProductCode string  `json:"product_code"`
	Min         float64 `json:"min"`
	Recommended float64 `json:"recommended"`
	Max         float64 `json:"max"`
}

// ProfitabilityBreakdown is the lender's expected result over the full term.
type ProfitabilityBreakdown struct {
	InterestRevenue       decimal.Decimal `json:"interest_revenue"`
	FundingCost           decimal.Decimal `json:"funding_cost"`
	Provision             decimal.Decimal `json:"provision"`
	OperatingCost         decimal.Decimal `json:"operating_cost"`
	NetProfit             decimal.Decimal `json:"net_profit"`
	ROIPct                float64         `json:"roi_pct"`
	MinimumProfitableRate float64         `json:"minimum_profitable_rate"`
	Approvable            bool            `json:"approvable"`
}

// RiskGrade is one of the nine regulatory tiers, AA (best) to H (worst).
type RiskGrade struct {
	Grade        string  `json:"grade"`
	Rank         int     `json:"rank"` // 0 = AA ... 8 = H
	ProvisionPct float64 `json:"provision_pct"`
	Description  string  `json:"description"`
}

// Validation levels.
const (
	LevelOK      = "ok"
	LevelWarning = "warning"
	LevelError   = "error"
)

// RateValidation is the verdict on a proposed annual rate.
type RateValidation struct {
	Valid         bool     `json:"valid"`
	Level         string   `json:"level"`
	Message       string   `json:"message"`
	CorrectedRate *float64 `json:"corrected_rate,omitempty"`
}

// Decision is the operational credit decision.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReview  Decision = "review"
	DecisionDeny    Decision = "deny"
)

// Valid reports whether d is one of the known decisions.
func (d Decision) Valid() bool {
	switch d {
	case DecisionApprove, DecisionReview, DecisionDeny:
		return true
	}
	return false
}

// Quote aggregates everything the dashboard renders for one request.
type Quote struct {
	ID                    string                 `json:"id"`
	Request               PricingRequest         `json:"request"`
	Pricing               PricingResult          `json:"pricing"`
	ChosenRate            float64                `json:"chosen_rate"`
	Installment           decimal.Decimal        `json:"installment"`
	CommitmentPct         float64                `json:"commitment_pct"`
	HighCommitment        bool                   `json:"high_commitment"`
	Profitability         ProfitabilityBreakdown `json:"profitability"`
	RiskGrade             RiskGrade              `json:"risk_grade"`
	Decision              Decision               `json:"decision"`
	ScoringRecommendation Decision               `json:"scoring_recommendation,omitempty"`
	RateCheck             RateValidation         `json:"rate_check"`
	CreatedAt             time.Time              `json:"created_at"`
}
