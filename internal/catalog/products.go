package catalog

import "github.com/felipesbonatti/case-credit-risk-prediction/internal/model"

// Product codes of the built-in catalog.
const (
	ProductCDC        = "CDC"
	ProductPersonal   = "Pessoal"
	ProductRealEstate = "Imobiliario"
	ProductCreditCard = "Cartao"
)

// DefaultProducts is the built-in rate table, used when no database is
// configured and as the seed of the product_rates migration.
//
// Minimum rates sit on the half-point grid and average rates on the
// quarter-point grid, so the engine's half-point rounding never crosses a
// product bound.
func DefaultProducts() []model.ProductRateInfo {
	return []model.ProductRateInfo{
		{
			Code:          ProductCDC,
			Name:          "Crédito Direto ao Consumidor",
			MinRate:       25.0,
			AvgRate:       34.0,
			MaxRate:       60.0,
			ReferenceRate: 32.0,
			Family:        model.FamilyConsumer,
			Description:   "Consumer goods financing with fixed installments",
		},
		{
			Code:          ProductPersonal,
			Name:          "Crédito Pessoal",
			MinRate:       30.0,
			AvgRate:       48.0,
			MaxRate:       90.0,
			ReferenceRate: 45.0,
			Family:        model.FamilyConsumer,
			Description:   "Unsecured personal loan",
		},
		{
			Code:          ProductRealEstate,
			Name:          "Crédito Imobiliário",
			MinRate:       9.0,
			AvgRate:       11.5,
			MaxRate:       14.0,
			ReferenceRate: 10.5,
			Family:        model.FamilyRealEstate,
			Description:   "Mortgage secured by the financed property",
		},
		{
			Code:          ProductCreditCard,
			Name:          "Cartão de Crédito",
			MinRate:       60.0,
			AvgRate:       150.0,
			MaxRate:       450.0,
			ReferenceRate: 145.0,
			Family:        model.FamilyRevolving,
			Description:   "Revolving credit card balance",
		},
	}
}
