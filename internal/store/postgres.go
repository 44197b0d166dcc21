package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/felipesbonatti/case-credit-risk-prediction/internal/model"
)

// PostgresStore implements RateStore over the product_rates table.
// Rates are stored as NUMERIC and read back as text to keep them exact.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) ListProductRates(ctx context.Context) ([]model.ProductRateInfo, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT code, name,
		        min_rate::TEXT, avg_rate::TEXT, max_rate::TEXT, reference_rate::TEXT,
		        family, description
		 FROM product_rates ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list product rates: %w", err)
	}
	defer rows.Close()

	return scanProductRates(rows)
}

// pgxRows is the subset of pgx.Rows used by scanProductRates.
type pgxRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanProductRates(rows pgxRows) ([]model.ProductRateInfo, error) {
	var products []model.ProductRateInfo
	for rows.Next() {
		var p model.ProductRateInfo
		var minS, avgS, maxS, refS, family string

		if err := rows.Scan(&p.Code, &p.Name,
			&minS, &avgS, &maxS, &refS,
			&family, &p.Description); err != nil {
			return nil, err
		}

		var err error
		if p.MinRate, err = parseRate(minS); err != nil {
			return nil, fmt.Errorf("product %s min_rate: %w", p.Code, err)
		}
		if p.AvgRate, err = parseRate(avgS); err != nil {
			return nil, fmt.Errorf("product %s avg_rate: %w", p.Code, err)
		}
		if p.MaxRate, err = parseRate(maxS); err != nil {
			return nil, fmt.Errorf("product %s max_rate: %w", p.Code, err)
		}
		if p.ReferenceRate, err = parseRate(refS); err != nil {
			return nil, fmt.Errorf("product %s reference_rate: %w", p.Code, err)
		}
		p.Family = model.Family(family)

		products = append(products, p)
	}
	return products, rows.Err()
}

func parseRate(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}
