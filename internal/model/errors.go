package model

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyProductCode  = errors.New("model: product code is required")
	ErrInvalidRateBounds = errors.New("model: rate bounds must satisfy min <= reference, avg <= max")
	ErrInvalidFamily     = errors.New("model: unknown product family")
	ErrOffGridRate       = errors.New("model: min rate must be a multiple of 0.5 and avg rate a multiple of 0.25")
	ErrInvalidPrincipal  = errors.New("model: principal must be positive")
	ErrInvalidTerm       = errors.New("model: term must be at least one month")
	ErrInvalidIncome     = errors.New("model: monthly income must be positive")
	ErrInvalidScore      = errors.New("model: credit score must be between 0 and 1000")
	ErrInvalidPD         = errors.New("model: probability of default must be between 0 and 1")
	ErrInvalidDecision   = errors.New("model: recommendation must be approve, review or deny")
)

// MaxCreditScore is the top of the credit score scale.
const MaxCreditScore = 1000

// Validate checks the request shape. The pricing engine assumes a valid
// request and does not repeat these checks.
func (r PricingRequest) Validate() error {
	if r.ProductCode == "" {
		return ErrEmptyProductCode
	}
	if !r.Principal.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrInvalidPrincipal, r.Principal)
	}
	if r.TermMonths < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidTerm, r.TermMonths)
	}
	if !r.MonthlyIncome.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrInvalidIncome, r.MonthlyIncome)
	}
	if r.CreditScore < 0 || r.CreditScore > MaxCreditScore {
		return fmt.Errorf("%w: got %d", ErrInvalidScore, r.CreditScore)
	}
	if r.PD != nil && (*r.PD < 0 || *r.PD > 1) {
		return fmt.Errorf("%w: got %v", ErrInvalidPD, *r.PD)
	}
	if r.ScoringRecommendation != "" && !r.ScoringRecommendation.Valid() {
		return fmt.Errorf("%w: got %q", ErrInvalidDecision, r.ScoringRecommendation)
	}
	return nil
}
