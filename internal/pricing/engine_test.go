package pricing

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/felipesbonatti/case-credit-risk-prediction/internal/catalog"
	"github.com/felipesbonatti/case-credit-risk-prediction/internal/model"
	"github.com/felipesbonatti/case-credit-risk-prediction/internal/profitability"
)

// d is a test helper for creating decimals from float64.
func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func newTestEngine() *Engine {
	return NewEngine(catalog.MustDefault(), profitability.NewCalculator())
}

func factorValue(t *testing.T, r model.PricingResult, name string) float64 {
	t.Helper()
	for _, f := range r.Factors {
		if f.Name == name {
			return f.Value
		}
	}
	t.Fatalf("factor %s missing", name)
	return 0
}

// --- Scenarios ---

func TestSuggest_GoodConsumerCustomer(t *testing.T) {
	e := newTestEngine()
	r := e.Suggest(model.PricingRequest{
		ProductCode:   catalog.ProductCDC,
		Principal:     d(20000),
		TermMonths:    24,
		CreditScore:   820,
		MonthlyIncome: d(6000),
	})

	if r.PD != 0.02 || !r.PDEstimated {
		t.Errorf("expected estimated PD 0.02, got %v (estimated=%v)", r.PD, r.PDEstimated)
	}
	want := map[string]float64{
		FactorScore:         0.65,
		FactorAmount:        0.95,
		FactorTerm:          1.05,
		FactorAffordability: 0.95,
	}
	for name, v := range want {
		if got := factorValue(t, r, name); got != v {
			t.Errorf("factor %s: expected %v, got %v", name, v, got)
		}
	}
	if r.MinimumProfitableRate != 17.7 {
		t.Errorf("minimum profitable rate: expected 17.7, got %v", r.MinimumProfitableRate)
	}
	// Raw 19.71 is lifted to the CDC minimum of 25.
	if r.SuggestedRate != 25.0 {
		t.Errorf("expected 25.0, got %v", r.SuggestedRate)
	}
	if r.FloorApplied || r.AboveCeiling {
		t.Errorf("unexpected flags: floor=%v ceiling=%v", r.FloorApplied, r.AboveCeiling)
	}
	if r.MaxAllowedRate != 68 {
		t.Errorf("max allowed: expected 68, got %v", r.MaxAllowedRate)
	}
	if !strings.Contains(r.Justification, "Suggested rate: 25.0% a.a.") {
		t.Errorf("justification missing suggested rate:\n%s", r.Justification)
	}
}

func TestSuggest_HighRiskFloorBeatsCeiling(t *testing.T) {
	e := newTestEngine()
	r := e.Suggest(model.PricingRequest{
		ProductCode:   catalog.ProductCDC,
		Principal:     d(5000),
		TermMonths:    12,
		CreditScore:   350,
		MonthlyIncome: d(2000),
	})

	if r.PD != 0.70 {
		t.Errorf("expected PD 0.70, got %v", r.PD)
	}
	if r.MinimumProfitableRate != 124.1 {
		t.Errorf("minimum profitable rate: expected 124.1, got %v", r.MinimumProfitableRate)
	}
	if r.SuggestedRate != 124.5 {
		t.Errorf("expected 124.5, got %v", r.SuggestedRate)
	}
	if !r.FloorApplied || !r.AboveCeiling {
		t.Errorf("expected floor and ceiling flags, got floor=%v ceiling=%v", r.FloorApplied, r.AboveCeiling)
	}
	if !strings.Contains(r.Justification, "exceeds the product ceiling") {
		t.Errorf("justification should explain the ceiling breach:\n%s", r.Justification)
	}
}

func TestSuggest_RealEstateFundingDominates(t *testing.T) {
	e := newTestEngine()
	r := e.Suggest(model.PricingRequest{
		ProductCode:   catalog.ProductRealEstate,
		Principal:     d(300000),
		TermMonths:    360,
		CreditScore:   750,
		MonthlyIncome: d(15000),
	})

	if r.MinimumProfitableRate != 13.8 {
		t.Errorf("minimum profitable rate: expected 13.8, got %v", r.MinimumProfitableRate)
	}
	if r.SuggestedRate != 14.0 {
		t.Errorf("expected 14.0, got %v", r.SuggestedRate)
	}
	if !r.FloorApplied {
		t.Error("expected the profitability floor to apply")
	}
	if r.AboveCeiling {
		t.Error("14.0 is within the 23.0 ceiling")
	}
}

func TestSuggest_SuppliedPD(t *testing.T) {
	e := newTestEngine()
	pd := 0.30
	r := e.Suggest(model.PricingRequest{
		ProductCode:   catalog.ProductCDC,
		Principal:     d(20000),
		TermMonths:    24,
		CreditScore:   820,
		MonthlyIncome: d(6000),
		PD:            &pd,
	})
	if r.PD != 0.30 || r.PDEstimated {
		t.Errorf("expected supplied PD 0.30, got %v (estimated=%v)", r.PD, r.PDEstimated)
	}
	// Provision 9000 lifts the floor well above the score-driven price.
	if r.MinimumProfitableRate <= 17.7 {
		t.Errorf("expected a higher floor than the estimated-PD case, got %v", r.MinimumProfitableRate)
	}
	if r.SuggestedRate < r.MinimumProfitableRate {
		t.Errorf("suggested %v below floor %v", r.SuggestedRate, r.MinimumProfitableRate)
	}
}

func TestSuggest_UnknownProductUsesDefaults(t *testing.T) {
	e := newTestEngine()
	r := e.Suggest(model.PricingRequest{
		ProductCode:   "XYZ",
		Principal:     d(10000),
		TermMonths:    12,
		CreditScore:   650,
		MonthlyIncome: d(5000),
	})
	if r.ReferenceRate != catalog.DefaultAvgRate {
		t.Errorf("reference: expected %v, got %v", catalog.DefaultAvgRate, r.ReferenceRate)
	}
	if r.MinRate != catalog.DefaultMinRate {
		t.Errorf("min: expected %v, got %v", catalog.DefaultMinRate, r.MinRate)
	}
	if r.SuggestedRate < r.MinRate {
		t.Errorf("suggested %v below default min %v", r.SuggestedRate, r.MinRate)
	}
}

func TestSuggest_Deterministic(t *testing.T) {
	e := newTestEngine()
	req := model.PricingRequest{
		ProductCode:   catalog.ProductPersonal,
		Principal:     d(12000),
		TermMonths:    36,
		CreditScore:   610,
		MonthlyIncome: d(3500),
	}
	a, b := e.Suggest(req), e.Suggest(req)
	if a.SuggestedRate != b.SuggestedRate || a.Justification != b.Justification {
		t.Error("Suggest is not deterministic")
	}
}

// --- Invariants over random requests ---

func TestSuggest_RandomizedInvariants(t *testing.T) {
	e := newTestEngine()
	rng := rand.New(rand.NewSource(42))
	codes := []string{
		catalog.ProductCDC, catalog.ProductPersonal,
		catalog.ProductRealEstate, catalog.ProductCreditCard, "XYZ",
	}

	for i := 0; i < 5000; i++ {
		req := model.PricingRequest{
			ProductCode:   codes[rng.Intn(len(codes))],
			Principal:     decimal.NewFromInt(int64(500 + rng.Intn(800000))),
			TermMonths:    1 + rng.Intn(420),
			CreditScore:   rng.Intn(model.MaxCreditScore + 1),
			MonthlyIncome: decimal.NewFromInt(int64(300 + rng.Intn(60000))),
		}
		if rng.Intn(2) == 0 {
			pd := math.Round(rng.Float64()*1000) / 1000
			req.PD = &pd
		}
		if err := req.Validate(); err != nil {
			t.Fatalf("generated invalid request: %v", err)
		}

		r := e.Suggest(req)

		if r.SuggestedRate < r.MinimumProfitableRate {
			t.Fatalf("case %d: suggested %v below floor %v (%+v)", i, r.SuggestedRate, r.MinimumProfitableRate, req)
		}
		if r.SuggestedRate*2 != math.Trunc(r.SuggestedRate*2) {
			t.Fatalf("case %d: suggested %v off the half-point grid", i, r.SuggestedRate)
		}
		if r.AboveCeiling != (r.SuggestedRate > r.MaxAllowedRate) {
			t.Fatalf("case %d: AboveCeiling=%v with suggested %v, max %v", i, r.AboveCeiling, r.SuggestedRate, r.MaxAllowedRate)
		}
		if CeilHalfPoint(r.MinimumProfitableRate) <= r.MaxAllowedRate {
			if r.SuggestedRate < r.MinRate || r.SuggestedRate > r.MaxAllowedRate {
				t.Fatalf("case %d: suggested %v outside [%v, %v]", i, r.SuggestedRate, r.MinRate, r.MaxAllowedRate)
			}
		}
		if len(r.Factors) != 4 {
			t.Fatalf("case %d: expected 4 factors, got %d", i, len(r.Factors))
		}
	}
}

// --- Range and rounding ---

func TestRange(t *testing.T) {
	e := newTestEngine()
	rr := e.Range(catalog.ProductCDC, 820)
	if rr.Min != 25 || rr.Recommended != 21 || rr.Max != 64 {
		t.Errorf("unexpected range %+v", rr)
	}

	rr = e.Range(catalog.ProductCDC, 300)
	if rr.Recommended != 64 {
		t.Errorf("score 300: expected recommended 64, got %v", rr.Recommended)
	}
}

func TestRoundHalfPoint(t *testing.T) {
	tests := map[float64]float64{
		20.8:  21.0,
		20.74: 20.5,
		20.75: 21.0,
		20.24: 20.0,
		25.0:  25.0,
	}
	for in, want := range tests {
		if got := RoundHalfPoint(in); got != want {
			t.Errorf("RoundHalfPoint(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestCeilHalfPoint(t *testing.T) {
	tests := map[float64]float64{
		17.7:  18.0,
		17.5:  17.5,
		18.0:  18.0,
		124.1: 124.5,
		16.3:  16.5,
	}
	for in, want := range tests {
		if got := CeilHalfPoint(in); got != want {
			t.Errorf("CeilHalfPoint(%v) = %v, want %v", in, got, want)
		}
	}
}
