package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-recon-api/internal/models"
)

func TestNormalizeFeeNumber(t *testing.T) {
	fee := normalizeFee(models.NewFeeInput(float64(500000)))
	require.NotNil(t, fee)
	assert.Equal(t, float64(500000), fee.Amount)
	assert.False(t, fee.Paid)
	assert.Nil(t, fee.PaidDate)
}

func TestNormalizeFeeAmountObject(t *testing.T) {
	fee := normalizeFee(models.NewFeeInput(map[string]interface{}{
		"amount":   float64(250000),
		"paid":     true,
		"paidDate": "2026-01-15",
	}))
	require.NotNil(t, fee)
	assert.Equal(t, float64(250000), fee.Amount)
	assert.True(t, fee.Paid)
	require.NotNil(t, fee.PaidDate)
	assert.Equal(t, "2026-01-15", *fee.PaidDate)
}

func TestNormalizeFeeAltKeys(t *testing.T) {
	for _, key := range []string{"value", "fee", "cost"} {
		fee := normalizeFee(models.NewFeeInput(map[string]interface{}{
			key:    float64(100000),
			"paid": float64(1),
		}))
		require.NotNil(t, fee, "key %q", key)
		assert.Equal(t, float64(100000), fee.Amount)
		assert.True(t, fee.Paid)
	}
}

func TestNormalizeFeeAltKeyPriority(t *testing.T) {
	// "value" wins over "fee" and "cost" when several alternates appear.
	fee := normalizeFee(models.NewFeeInput(map[string]interface{}{
		"cost":  float64(3),
		"fee":   float64(2),
		"value": float64(1),
	}))
	require.NotNil(t, fee)
	assert.Equal(t, float64(1), fee.Amount)
}

func TestNormalizeFeeAbsentAndUnrecognized(t *testing.T) {
	assert.Nil(t, normalizeFee(models.FeeInput{}))
	assert.Nil(t, normalizeFee(models.NewFeeInput(nil)))
	assert.Nil(t, normalizeFee(models.NewFeeInput("300000")))
	assert.Nil(t, normalizeFee(models.NewFeeInput(map[string]interface{}{"total": float64(5)})))
	assert.Nil(t, normalizeFee(models.NewFeeInput([]interface{}{float64(1)})))
}

func TestNormalizeFeeZeroAmountIsSet(t *testing.T) {
	// Zero is a real amount, distinct from "not set".
	fee := normalizeFee(models.NewFeeInput(float64(0)))
	require.NotNil(t, fee)
	assert.Equal(t, float64(0), fee.Amount)
}

func TestNormalizeFeePaidDateIgnoredOutsideAmountObject(t *testing.T) {
	fee := normalizeFee(models.NewFeeInput(map[string]interface{}{
		"value":    float64(100),
		"paidDate": "2026-01-15",
	}))
	require.NotNil(t, fee)
	assert.Nil(t, fee.PaidDate)
}

func TestNormalizeFeeTruthyPaidFlag(t *testing.T) {
	cases := []struct {
		name string
		paid interface{}
		want bool
	}{
		{"nil", nil, false},
		{"false", false, false},
		{"true", true, true},
		{"zero", float64(0), false},
		{"one", float64(1), true},
		{"empty string", "", false},
		{"string", "yes", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fee := normalizeFee(models.NewFeeInput(map[string]interface{}{
				"amount": float64(10),
				"paid":   tc.paid,
			}))
			require.NotNil(t, fee)
			assert.Equal(t, tc.want, fee.Paid)
		})
	}
}

func TestFeeInputDecodesFromEnrollmentPayload(t *testing.T) {
	payload := []byte(`{
		"id": "S1",
		"studentRegistration": 150000,
		"courseRegistration": {"amount": 200000, "paid": true},
		"confirmationFee": {"fee": 50000}
	}`)

	var enrollment models.StudentEnrollment
	require.NoError(t, json.Unmarshal(payload, &enrollment))

	assert.Equal(t, models.FeeVariantNumber, enrollment.StudentRegistration.Variant())
	assert.Equal(t, models.FeeVariantAmountObject, enrollment.CourseRegistration.Variant())
	assert.Equal(t, models.FeeVariantAltKeyed, enrollment.ConfirmationFee.Variant())
}
