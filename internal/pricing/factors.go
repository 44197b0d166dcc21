package pricing

import (
	"math"

	"github.com/felipesbonatti/case-credit-risk-prediction/internal/model"
)

// step is one row of a step-function table: inputs >= min map to value.
type step struct {
	min   float64
	value float64
}

// table is an ordered step function scanned top-down. Its last row has
// min = -Inf and acts as the else branch.
type table []step

var otherwise = math.Inf(-1)

// lookup returns the value of the first row whose threshold x reaches.
func (t table) lookup(x float64) float64 {
	for _, s := range t {
		if x >= s.min {
			return s.value
		}
	}
	return t[len(t)-1].value
}

// scoreFactors: a lower credit score means a higher rate.
var scoreFactors = table{
	{800, 0.65},
	{700, 0.80},
	{600, 1.00},
	{500, 1.35},
	{400, 1.70},
	{otherwise, 2.00},
}

// pdByScore estimates the probability of default when the scoring service
// did not supply one.
var pdByScore = table{
	{800, 0.02},
	{700, 0.05},
	{600, 0.12},
	{500, 0.28},
	{400, 0.50},
	{otherwise, 0.70},
}

// amountFactors: larger principals price lower, except on revolving credit.
var amountFactors = map[model.Family]table{
	model.FamilyRealEstate: {
		{500_000, 0.85},
		{300_000, 0.90},
		{150_000, 0.95},
		{otherwise, 1.00},
	},
	model.FamilyConsumer: {
		{50_000, 0.90},
		{20_000, 0.95},
		{10_000, 1.00},
		{5_000, 1.05},
		{otherwise, 1.10},
	},
	model.FamilyRevolving: {
		{otherwise, 1.00},
	},
}

// termFactors: longer terms carry more risk.
var termFactors = map[model.Family]table{
	model.FamilyRealEstate: {
		{360, 1.00},
		{240, 0.95},
		{180, 0.90},
		{otherwise, 0.85},
	},
	model.FamilyConsumer: {
		{48, 1.15},
		{36, 1.10},
		{24, 1.05},
		{12, 1.00},
		{otherwise, 0.95},
	},
	model.FamilyRevolving: {
		{24, 1.10},
		{12, 1.00},
		{otherwise, 0.95},
	},
}

// affordabilityFactors map the installment-to-income percentage to a factor.
var affordabilityFactors = table{
	{50, 1.30},
	{40, 1.20},
	{30, 1.10},
	{20, 1.00},
	{otherwise, 0.95},
}

// ScoreFactor returns the credit score multiplier.
func ScoreFactor(score int) float64 {
	return scoreFactors.lookup(float64(score))
}

// EstimatePD returns the probability of default implied by a credit score.
func EstimatePD(score int) float64 {
	return pdByScore.lookup(float64(score))
}

// AmountFactor returns the principal multiplier for a product family.
func AmountFactor(family model.Family, principal float64) float64 {
	return familyTable(amountFactors, family).lookup(principal)
}

// TermFactor returns the term multiplier for a product family.
func TermFactor(family model.Family, termMonths int) float64 {
	return familyTable(termFactors, family).lookup(float64(termMonths))
}

// AffordabilityFactor returns the multiplier for an income commitment percentage.
func AffordabilityFactor(commitmentPct float64) float64 {
	return affordabilityFactors.lookup(commitmentPct)
}

func familyTable(tables map[model.Family]table, family model.Family) table {
	if t, ok := tables[family]; ok {
		return t
	}
	return tables[model.FamilyConsumer]
}

// Installment is the level monthly payment that amortizes principal over
// termMonths at annualRate percent. A zero rate divides principal evenly.
func Installment(principal, annualRate float64, termMonths int) float64 {
	n := float64(termMonths)
	i := annualRate / 100 / 12
	if i == 0 {
		return principal / n
	}
	growth := math.Pow(1+i, n)
	return principal * i * growth / (growth - 1)
}

// CommitmentPct is the share of monthly income taken by the installment.
func CommitmentPct(installment, monthlyIncome float64) float64 {
	return installment / monthlyIncome * 100
}
