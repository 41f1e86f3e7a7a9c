// Package feed fetches raw price records from remote price sources.
package feed

import (
	"context"

	"github.com/shopspring/decimal"
)

// Record raw price record as delivered by a source.
// Price is nil when the source reported no price (missing or null).
type Record struct {
	Currency string
	Price    *decimal.Decimal
}

// HasUsablePrice reports whether the record carries a price that can be quoted.
// Missing, null and zero prices are unusable.
func (r Record) HasUsablePrice() bool {
	return r.Price != nil && !r.Price.IsZero()
}

// Source fetches the full list of raw price records.
type Source interface {
	Fetch(ctx context.Context) ([]Record, error)
}

func priceFromString(s string) *decimal.Decimal {
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}
