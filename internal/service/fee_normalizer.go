package service

import (
	"github.com/noah-isme/academy-recon-api/internal/models"
)

// normalizeFee converts a loosely-shaped fee input into the canonical form.
// A nil result means no numeric value could be found under any rule; callers
// must render "not set" instead of coercing to zero, because unset and zero
// classify differently downstream.
func normalizeFee(input models.FeeInput) *models.NormalizedFee {
	switch input.Variant() {
	case models.FeeVariantNumber:
		return normalizeNumberFee(input.Raw())
	case models.FeeVariantAmountObject:
		return normalizeAmountObjectFee(input.Raw())
	case models.FeeVariantAltKeyed:
		return normalizeAltKeyedFee(input.Raw())
	default:
		return nil
	}
}

func normalizeNumberFee(raw interface{}) *models.NormalizedFee {
	amount, ok := raw.(float64)
	if !ok {
		return nil
	}
	return &models.NormalizedFee{Amount: amount, Paid: false}
}

func normalizeAmountObjectFee(raw interface{}) *models.NormalizedFee {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}
	amount, ok := obj["amount"].(float64)
	if !ok {
		return nil
	}
	fee := &models.NormalizedFee{
		Amount: amount,
		Paid:   truthy(obj["paid"]),
	}
	if date, ok := obj["paidDate"].(string); ok && date != "" {
		fee.PaidDate = &date
	}
	return fee
}

func normalizeAltKeyedFee(raw interface{}) *models.NormalizedFee {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}
	for _, key := range models.FeeAltKeys {
		if amount, ok := obj[key].(float64); ok {
			return &models.NormalizedFee{Amount: amount, Paid: truthy(obj["paid"])}
		}
	}
	return nil
}

// truthy interprets a paid flag the way the upstream payloads encode it:
// bool, 0/1, or a non-empty string.
func truthy(v interface{}) bool {
	switch typed := v.(type) {
	case nil:
		return false
	case bool:
		return typed
	case float64:
		return typed != 0
	case string:
		return typed != ""
	default:
		return true
	}
}
