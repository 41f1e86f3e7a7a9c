// Package conversion computes destination amounts from the price ratio of two tokens.
package conversion

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/swapquote/internal/domain"
)

const (
	// Precision fractional digits of every computed amount.
	Precision int32 = 6

	// divisionPrecision digits kept by the intermediate division before final rounding.
	divisionPrecision int32 = 24
)

// ErrInvalidPrice is returned when a token without a positive price reaches the engine.
var ErrInvalidPrice = errors.New("token price must be positive")

// Convert returns amount*from.Price/to.Price rounded half-up to Precision digits,
// trailing zeros kept. The result is empty when either token is missing or the
// amount has no numeric value yet.
func Convert(from, to *domain.Token, amount string) (string, error) {
	if from == nil || to == nil || amount == "" {
		return "", nil
	}

	value, err := decimal.NewFromString(amount)
	if err != nil {
		// partial input such as "." has no value yet
		return "", nil
	}

	if err := checkPrice(from); err != nil {
		return "", err
	}
	if err := checkPrice(to); err != nil {
		return "", err
	}

	converted := value.Mul(from.Price).DivRound(to.Price, divisionPrecision)

	return converted.StringFixed(Precision), nil
}

// Rate returns how many units of to one unit of from is worth, at Precision digits.
// It is empty when either token is missing.
func Rate(from, to *domain.Token) (string, error) {
	return Convert(from, to, "1")
}

// Recompute returns q with ToAmount derived from the other fields.
// On error ToAmount is empty.
func Recompute(q domain.QuotingSession) (domain.QuotingSession, error) {
	toAmount, err := Convert(q.From, q.To, q.FromAmount)
	q.ToAmount = toAmount
	return q, err
}

func checkPrice(t *domain.Token) error {
	if !t.Price.IsPositive() {
		return errors.Wrapf(ErrInvalidPrice, "%s priced at %s", t.Currency, t.Price.String())
	}
	return nil
}
