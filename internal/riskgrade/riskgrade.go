// Package riskgrade maps a probability of default to one of the nine
// regulatory risk grades (AA best, H worst) and its mandated provisioning
// percentage.
package riskgrade

import (
	"errors"
	"math"
	"strings"

	"github.com/felipesbonatti/case-credit-risk-prediction/internal/model"
)

var ErrUnknownGrade = errors.New("riskgrade: unknown grade")

// band is one row of the grade table. Upper bounds are inclusive.
type band struct {
	upper        float64
	grade        string
	provisionPct float64
	description  string
}

// bands is scanned top-down; the first band whose upper bound is >= pd wins.
// The final band catches everything else, including out-of-range input.
var bands = []band{
	{0.01, "AA", 0.0, "Minimal risk"},
	{0.03, "A", 0.5, "Low risk"},
	{0.10, "B", 1.0, "Moderate risk"},
	{0.30, "C", 3.0, "Medium risk, careful analysis required"},
	{0.50, "D", 10.0, "High risk, additional guarantees required"},
	{0.70, "E", 30.0, "Elevated risk"},
	{0.90, "F", 50.0, "Very elevated risk"},
	{0.99, "G", 70.0, "Critical risk, default likely"},
	{math.Inf(1), "H", 100.0, "Loss"},
}

// Classify returns the risk grade for pd. It is total: any input maps to a grade.
func Classify(pd float64) model.RiskGrade {
	for i, b := range bands[:len(bands)-1] {
		if pd <= b.upper {
			return b.toGrade(i)
		}
	}
	last := len(bands) - 1
	return bands[last].toGrade(last)
}

// Grades lists every grade from best to worst.
func Grades() []model.RiskGrade {
	out := make([]model.RiskGrade, len(bands))
	for i, b := range bands {
		out[i] = b.toGrade(i)
	}
	return out
}

// Parse resolves a grade code such as "aa" or "C".
func Parse(code string) (model.RiskGrade, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for i, b := range bands {
		if b.grade == code {
			return b.toGrade(i), nil
		}
	}
	return model.RiskGrade{}, ErrUnknownGrade
}

// Worse reports whether a is a strictly worse grade than b.
func Worse(a, b model.RiskGrade) bool {
	return a.Rank > b.Rank
}

func (b band) toGrade(rank int) model.RiskGrade {
	return model.RiskGrade{
		Grade:        b.grade,
		Rank:         rank,
		ProvisionPct: b.provisionPct,
		Description:  b.description,
	}
}

// Dashboard bands, a coarser three-level reading of PD.
const (
	BandLowRisk      = "approved - low risk"
	BandModerateRisk = "attention - moderate risk"
	BandHighRisk     = "rejected - high risk"
)

// DashboardBand returns the three-level label shown on the summary panel.
func DashboardBand(pd float64) string {
	switch {
	case pd <= 0.10:
		return BandLowRisk
	case pd <= 0.30:
		return BandModerateRisk
	default:
		return BandHighRisk
	}
}
