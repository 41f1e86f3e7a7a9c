package domain

import "fmt"

// Pair direction of a quote.
type Pair struct {
	// From source currency symbol.
	From string
	// To destination currency symbol.
	To string
}

// PairOf builds the pair of the session's selected tokens, empty sides stay blank.
func PairOf(q QuotingSession) Pair {
	var p Pair
	if q.From != nil {
		p.From = q.From.Currency
	}
	if q.To != nil {
		p.To = q.To.Currency
	}
	return p
}

// String returns the string representation.
func (p Pair) String() string {
	return fmt.Sprintf("%s_%s", p.From, p.To)
}

// Complete reports whether both sides are selected.
func (p Pair) Complete() bool {
	return p.From != "" && p.To != ""
}
