// Package ratecheck validates a proposed annual rate against the catalog
// bounds of its product. Out-of-band rates are advisory: they are reported as
// warnings and never blocked.
package ratecheck

import (
	"fmt"

	"github.com/felipesbonatti/case-credit-risk-prediction/internal/catalog"
	"github.com/felipesbonatti/case-credit-risk-prediction/internal/metrics"
	"github.com/felipesbonatti/case-credit-risk-prediction/internal/model"
)

// Messages returned in RateValidation.Message.
const (
	MsgInvalidProduct = "invalid product"
	MsgBelowMinimum   = "below recommended minimum"
	MsgAboveCeiling   = "above typical ceiling"
	MsgWithinBounds   = "within product bounds"
)

// Validator checks rates against a catalog.
type Validator struct {
	catalog *catalog.Catalog
}

// NewValidator creates a validator over cat.
func NewValidator(cat *catalog.Catalog) *Validator {
	return &Validator{catalog: cat}
}

// Validate grades proposedRate for the given product.
//
//   - unknown product: invalid, error
//   - 0 < rate < min:  valid, warning, corrected to the practiced reference rate
//   - rate > max:      valid, warning
//   - otherwise:       valid, ok
func (v *Validator) Validate(productCode string, proposedRate float64) model.RateValidation {
	result := v.validate(productCode, proposedRate)
	metrics.RateValidations.WithLabelValues(result.Level).Inc()
	return result
}

func (v *Validator) validate(productCode string, rate float64) model.RateValidation {
	p, ok := v.catalog.Info(productCode)
	if !ok {
		return model.RateValidation{
			Valid:   false,
			Level:   model.LevelError,
			Message: MsgInvalidProduct,
		}
	}

	switch {
	case rate > 0 && rate < p.MinRate:
		corrected := p.ReferenceRate
		return model.RateValidation{
			Valid:         true,
			Level:         model.LevelWarning,
			Message:       fmt.Sprintf("%s: %.2f%% < %.2f%%", MsgBelowMinimum, rate, p.MinRate),
			CorrectedRate: &corrected,
		}
	case rate > p.MaxRate:
		return model.RateValidation{
			Valid:   true,
			Level:   model.LevelWarning,
			Message: fmt.Sprintf("%s: %.2f%% > %.2f%%", MsgAboveCeiling, rate, p.MaxRate),
		}
	default:
		return model.RateValidation{
			Valid:   true,
			Level:   model.LevelOK,
			Message: MsgWithinBounds,
		}
	}
}
