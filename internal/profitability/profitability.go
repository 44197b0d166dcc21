// Package profitability computes the lender's expected result on a loan over
// its full term and the minimum annual rate that keeps it profitable.
//
// The computation is simple interest over the term: revenue and funding cost
// scale with termMonths/12, provisioning and operating cost are one-off
// charges on the principal. All money is shopspring/decimal.
package profitability

import (
	"github.com/shopspring/decimal"

	"github.com/felipesbonatti/case-credit-risk-prediction/internal/model"
)

// Defaults for the funding cost and the minimum margin, in percent.
const (
	DefaultFundingRate  = 13.31
	DefaultMinMarginPct = 5.0
)

// MoneyScale is the number of decimal places reported for money.
const MoneyScale int32 = 2

var (
	// provisionMultiplier is the buffer applied over expected loss (principal x PD),
	// independent of the per-grade provisioning table.
	provisionMultiplier = decimal.RequireFromString("1.5")

	// operatingCostRate is the flat operating cost as a fraction of principal.
	operatingCostRate = decimal.RequireFromString("0.0075")

	monthsPerYearPct = decimal.NewFromInt(1200) // 12 months x 100 percent
	hundred          = decimal.NewFromInt(100)
)

// Calculator holds the funding and margin assumptions. The zero value is
// not useful; use NewCalculator.
type Calculator struct {
	FundingRate  float64 // annual funding cost, percent
	MinMarginPct float64 // required margin over principal, percent
}

// NewCalculator returns a calculator with the default assumptions.
func NewCalculator() Calculator {
	return Calculator{
		FundingRate:  DefaultFundingRate,
		MinMarginPct: DefaultMinMarginPct,
	}
}

// Calculate runs the default calculator.
func Calculate(principal decimal.Decimal, termMonths int, annualRate, pd float64) model.ProfitabilityBreakdown {
	return NewCalculator().Calculate(principal, termMonths, annualRate, pd)
}

// Calculate returns the profitability breakdown of lending principal for
// termMonths at annualRate percent with probability of default pd.
//
// principal must be positive and termMonths at least 1; callers validate.
func (c Calculator) Calculate(principal decimal.Decimal, termMonths int, annualRate, pd float64) model.ProfitabilityBreakdown {
	months := decimal.NewFromInt(int64(termMonths))
	rate := decimal.NewFromFloat(annualRate)

	// principal x rate% x months/12, kept as a single division.
	interest := principal.Mul(rate).Mul(months).Div(monthsPerYearPct)
	costs := c.costs(principal, months, pd)

	net := interest.Sub(costs.funding).Sub(costs.provision).Sub(costs.operating)
	roi := net.Div(principal).Mul(hundred)
	minRate := c.minimumRate(principal, months, costs)

	return model.ProfitabilityBreakdown{
		InterestRevenue:       interest.Round(MoneyScale),
		FundingCost:           costs.funding.Round(MoneyScale),
		Provision:             costs.provision.Round(MoneyScale),
		OperatingCost:         costs.operating.Round(MoneyScale),
		NetProfit:             net.Round(MoneyScale),
		ROIPct:                roi.InexactFloat64(),
		MinimumProfitableRate: minRate.InexactFloat64(),
		Approvable:            roi.IsPositive() && rate.GreaterThanOrEqual(minRate),
	}
}

// MinimumProfitableRate returns only the profitability floor, in percent,
// rounded up to one decimal.
func (c Calculator) MinimumProfitableRate(principal decimal.Decimal, termMonths int, pd float64) float64 {
	months := decimal.NewFromInt(int64(termMonths))
	return c.minimumRate(principal, months, c.costs(principal, months, pd)).InexactFloat64()
}

type costBreakdown struct {
	funding   decimal.Decimal
	provision decimal.Decimal
	operating decimal.Decimal
}

func (c Calculator) costs(principal, months decimal.Decimal, pd float64) costBreakdown {
	return costBreakdown{
		funding:   principal.Mul(decimal.NewFromFloat(c.FundingRate)).Mul(months).Div(monthsPerYearPct),
		provision: principal.Mul(decimal.NewFromFloat(pd)).Mul(provisionMultiplier),
		operating: principal.Mul(operatingCostRate),
	}
}

// minimumRate solves interest(rate) = costs + margin for rate and rounds the
// result up. Rounding down would let the floor rate miss the margin.
func (c Calculator) minimumRate(principal, months decimal.Decimal, costs costBreakdown) decimal.Decimal {
	margin := principal.Mul(decimal.NewFromFloat(c.MinMarginPct)).Div(hundred)
	required := costs.funding.Add(costs.provision).Add(costs.operating).Add(margin)
	raw := required.Mul(monthsPerYearPct).Div(principal.Mul(months))
	return raw.RoundCeil(1)
}
