// Package domain defines core data structures used throughout the quoting engine.
package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Token tradable currency with its quoted price.
type Token struct {
	// Currency unique currency code, e.g. ETH.
	Currency string
	// Price quoted price, always positive for tokens taken from a catalog.
	Price decimal.Decimal
	// Icon locator of the token image.
	Icon string
}

// String returns the string representation.
func (t *Token) String() string {
	if t == nil {
		return "<none>"
	}
	return fmt.Sprintf("%s@%s", t.Currency, t.Price.String())
}

// Option converts the token into its selectable form.
func (t Token) Option() TokenOption {
	return TokenOption{
		Value: t.Currency,
		Label: t.Currency,
		Price: t.Price.String(),
		Icon:  t.Icon,
	}
}

// TokenOption token as shown in a selection list.
// Price is a string to avoid float precision issues in UI layers.
type TokenOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Price string `json:"price"`
	Icon  string `json:"icon"`
}
