package models

import "encoding/json"

// FeeVariant tags the shape a raw fee input arrived in. Upstream sources
// disagree on how a fee component is encoded, so the parser is exhaustive
// over these cases instead of probing fields ad hoc at call sites.
type FeeVariant int

const (
	FeeVariantAbsent FeeVariant = iota
	FeeVariantNumber
	FeeVariantAmountObject
	FeeVariantAltKeyed
	FeeVariantUnrecognized
)

// Alternate numeric keys probed in priority order when an object carries no
// "amount" field.
var FeeAltKeys = []string{"value", "fee", "cost"}

// FeeInput carries one loosely-typed fee component exactly as decoded from a
// source payload. The zero value means the field was absent entirely.
type FeeInput struct {
	raw     interface{}
	present bool
}

// NewFeeInput wraps an already-decoded value, mainly for tests.
func NewFeeInput(raw interface{}) FeeInput {
	return FeeInput{raw: raw, present: true}
}

// UnmarshalJSON stores the decoded value without committing to a shape.
func (f *FeeInput) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		// Malformed fee payloads degrade to unrecognized, never abort the record.
		f.raw = nil
		f.present = true
		return nil
	}
	f.raw = v
	f.present = true
	return nil
}

// Raw returns the decoded value.
func (f FeeInput) Raw() interface{} {
	return f.raw
}

// Present reports whether the field appeared in the payload at all.
func (f FeeInput) Present() bool {
	return f.present
}

// Variant classifies the input so normalization can be exhaustive.
func (f FeeInput) Variant() FeeVariant {
	if !f.present || f.raw == nil {
		return FeeVariantAbsent
	}
	switch v := f.raw.(type) {
	case float64:
		return FeeVariantNumber
	case map[string]interface{}:
		if _, ok := v["amount"].(float64); ok {
			return FeeVariantAmountObject
		}
		for _, key := range FeeAltKeys {
			if _, ok := v[key].(float64); ok {
				return FeeVariantAltKeyed
			}
		}
		return FeeVariantUnrecognized
	default:
		return FeeVariantUnrecognized
	}
}

// NormalizedFee is the canonical fee component shape. A nil *NormalizedFee
// means "not set", which is distinct from a zero amount.
type NormalizedFee struct {
	Amount   float64 `json:"amount"`
	Paid     bool    `json:"paid"`
	PaidDate *string `json:"paidDate,omitempty"`
}
