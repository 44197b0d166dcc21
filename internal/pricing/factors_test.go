package pricing

import (
	"math"
	"testing"

	"github.com/felipesbonatti/case-credit-risk-prediction/internal/model"
)

func TestScoreFactor_Boundaries(t *testing.T) {
	tests := map[int]float64{
		1000: 0.65,
		800:  0.65,
		799:  0.80,
		700:  0.80,
		600:  1.00,
		599:  1.35,
		500:  1.35,
		400:  1.70,
		399:  2.00,
		0:    2.00,
	}
	for score, want := range tests {
		if got := ScoreFactor(score); got != want {
			t.Errorf("ScoreFactor(%d) = %v, want %v", score, got, want)
		}
	}
}

func TestScoreFactor_NonIncreasing(t *testing.T) {
	prev := ScoreFactor(0)
	for s := 1; s <= model.MaxCreditScore; s++ {
		f := ScoreFactor(s)
		if f > prev {
			t.Fatalf("factor rose from %v to %v at score %d", prev, f, s)
		}
		prev = f
	}
}

func TestEstimatePD(t *testing.T) {
	tests := map[int]float64{
		820: 0.02,
		700: 0.05,
		650: 0.12,
		500: 0.28,
		450: 0.50,
		350: 0.70,
	}
	for score, want := range tests {
		if got := EstimatePD(score); got != want {
			t.Errorf("EstimatePD(%d) = %v, want %v", score, got, want)
		}
	}
}

func TestAmountFactor(t *testing.T) {
	tests := []struct {
		family    model.Family
		principal float64
		want      float64
	}{
		{model.FamilyConsumer, 50000, 0.90},
		{model.FamilyConsumer, 20000, 0.95},
		{model.FamilyConsumer, 19999.99, 1.00},
		{model.FamilyConsumer, 5000, 1.05},
		{model.FamilyConsumer, 4999, 1.10},
		{model.FamilyRealEstate, 500000, 0.85},
		{model.FamilyRealEstate, 300000, 0.90},
		{model.FamilyRealEstate, 150000, 0.95},
		{model.FamilyRealEstate, 80000, 1.00},
		{model.FamilyRevolving, 1000000, 1.00},
		{model.FamilyRevolving, 100, 1.00},
		{model.Family("unknown"), 4999, 1.10},
	}
	for _, tt := range tests {
		if got := AmountFactor(tt.family, tt.principal); got != tt.want {
			t.Errorf("AmountFactor(%s, %v) = %v, want %v", tt.family, tt.principal, got, tt.want)
		}
	}
}

func TestTermFactor(t *testing.T) {
	tests := []struct {
		family model.Family
		term   int
		want   float64
	}{
		{model.FamilyConsumer, 60, 1.15},
		{model.FamilyConsumer, 48, 1.15},
		{model.FamilyConsumer, 36, 1.10},
		{model.FamilyConsumer, 24, 1.05},
		{model.FamilyConsumer, 12, 1.00},
		{model.FamilyConsumer, 6, 0.95},
		{model.FamilyRealEstate, 420, 1.00},
		{model.FamilyRealEstate, 240, 0.95},
		{model.FamilyRealEstate, 180, 0.90},
		{model.FamilyRealEstate, 120, 0.85},
		{model.FamilyRevolving, 24, 1.10},
		{model.FamilyRevolving, 12, 1.00},
		{model.FamilyRevolving, 1, 0.95},
	}
	for _, tt := range tests {
		if got := TermFactor(tt.family, tt.term); got != tt.want {
			t.Errorf("TermFactor(%s, %d) = %v, want %v", tt.family, tt.term, got, tt.want)
		}
	}
}

func TestAffordabilityFactor(t *testing.T) {
	tests := map[float64]float64{
		75:    1.30,
		50:    1.30,
		40:    1.20,
		30:    1.10,
		29.99: 1.00,
		20:    1.00,
		19.99: 0.95,
		0:     0.95,
	}
	for pct, want := range tests {
		if got := AffordabilityFactor(pct); got != want {
			t.Errorf("AffordabilityFactor(%v) = %v, want %v", pct, got, want)
		}
	}
}

func TestInstallment(t *testing.T) {
	if got := Installment(12000, 0, 12); got != 1000 {
		t.Errorf("zero rate: expected 1000, got %v", got)
	}
	// 1000 at 12% a.a. over 12 months.
	if got := Installment(1000, 12, 12); math.Abs(got-88.8488) > 1e-4 {
		t.Errorf("expected 88.8488, got %v", got)
	}
	// Installments over the full term repay at least the principal.
	if got := Installment(20000, 32, 24) * 24; got <= 20000 {
		t.Errorf("total repaid %v should exceed principal", got)
	}
}

func TestCommitmentPct(t *testing.T) {
	if got := CommitmentPct(1000, 4000); got != 25 {
		t.Errorf("expected 25, got %v", got)
	}
}
