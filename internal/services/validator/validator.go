// Package validator gates raw amount keystrokes before they reach a quoting session.
package validator

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Reason why an amount edit was rejected.
type Reason string

const (
	ReasonNone      Reason = ""
	ReasonNegative  Reason = "negative"
	ReasonTooLarge  Reason = "tooLarge"
	ReasonMalformed Reason = "malformed"
)

// Message returns the user-facing warning for the reason.
func (r Reason) Message() string {
	switch r {
	case ReasonNegative:
		return "Amount cannot be negative"
	case ReasonTooLarge:
		return "Amount is too large"
	case ReasonMalformed:
		return "Amount must be a number"
	default:
		return ""
	}
}

// MaxSafeInteger largest integer a double can represent exactly (2^53 - 1).
var MaxSafeInteger = decimal.NewFromInt(1<<53 - 1)

var unsignedDecimal = regexp.MustCompile(`^\d*\.?\d*$`)

// Verdict outcome of validating an edit.
type Verdict struct {
	Accepted bool
	// Value amount the field should hold after the edit: the raw text when accepted,
	// the previous value otherwise.
	Value  string
	Reason Reason
}

// Validate checks raw against the unsigned decimal shape.
// The empty string is always accepted and means no amount is entered.
func Validate(raw, previous string) Verdict {
	if raw == "" {
		return Verdict{Accepted: true, Value: raw}
	}

	if strings.HasPrefix(raw, "-") {
		return reject(previous, ReasonNegative)
	}

	if !unsignedDecimal.MatchString(raw) {
		return reject(previous, ReasonMalformed)
	}

	if exceedsSafeInteger(raw) {
		return reject(previous, ReasonTooLarge)
	}

	return Verdict{Accepted: true, Value: raw}
}

func reject(previous string, reason Reason) Verdict {
	return Verdict{Accepted: false, Value: previous, Reason: reason}
}

// exceedsSafeInteger expects raw to already match the unsigned decimal shape.
// Text without digits, such as ".", has no numeric value yet and passes.
func exceedsSafeInteger(raw string) bool {
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return false
	}
	return v.GreaterThan(MaxSafeInteger)
}
