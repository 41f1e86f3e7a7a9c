package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		previous string
		accepted bool
		value    string
		reason   Reason
	}{
		{name: "Empty string", raw: "", previous: "12", accepted: true, value: ""},
		{name: "Integer", raw: "2", accepted: true, value: "2"},
		{name: "Decimal", raw: "0.125", accepted: true, value: "0.125"},
		{name: "Trailing dot while typing", raw: "1.", accepted: true, value: "1."},
		{name: "Leading dot", raw: ".5", accepted: true, value: ".5"},
		{name: "Lone dot", raw: ".", accepted: true, value: "."},
		{name: "Leading zeros", raw: "007", accepted: true, value: "007"},
		{name: "Max safe integer", raw: "9007199254740991", accepted: true, value: "9007199254740991"},
		{name: "Max safe integer with fraction below", raw: "9007199254740990.99", accepted: true, value: "9007199254740990.99"},
		{name: "Negative", raw: "-5", previous: "5", value: "5", reason: ReasonNegative},
		{name: "Lone minus", raw: "-", previous: "", value: "", reason: ReasonNegative},
		{name: "Negative decimal", raw: "-0.1", previous: "0.1", value: "0.1", reason: ReasonNegative},
		{name: "Above max safe integer", raw: "9007199254740992", previous: "1", value: "1", reason: ReasonTooLarge},
		{name: "Just above max safe integer", raw: "9007199254740991.5", previous: "1", value: "1", reason: ReasonTooLarge},
		{name: "Huge", raw: "123456789012345678901234567890", previous: "3", value: "3", reason: ReasonTooLarge},
		{name: "Two dots", raw: "1.2.3", previous: "1.2", value: "1.2", reason: ReasonMalformed},
		{name: "Letters", raw: "12a", previous: "12", value: "12", reason: ReasonMalformed},
		{name: "Exponent", raw: "1e5", previous: "1", value: "1", reason: ReasonMalformed},
		{name: "Plus sign", raw: "+1", previous: "", value: "", reason: ReasonMalformed},
		{name: "Whitespace", raw: " 1", previous: "", value: "", reason: ReasonMalformed},
		{name: "Comma", raw: "1,5", previous: "1", value: "1", reason: ReasonMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validate(tt.raw, tt.previous)
			assert.Equal(t, tt.accepted, v.Accepted)
			assert.Equal(t, tt.value, v.Value)
			assert.Equal(t, tt.reason, v.Reason)
		})
	}
}

func TestReason_Message(t *testing.T) {
	assert.Equal(t, "Amount cannot be negative", ReasonNegative.Message())
	assert.Equal(t, "Amount is too large", ReasonTooLarge.Message())
	assert.NotEmpty(t, ReasonMalformed.Message())
	assert.Empty(t, ReasonNone.Message())
}
