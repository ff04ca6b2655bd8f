package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/academy-recon-api/internal/models"
)

func TestClassifyPaymentStatus(t *testing.T) {
	cases := []struct {
		name    string
		final   float64
		balance float64
		want    models.PaymentStatus
	}{
		{"no price", 0, 0, models.PaymentStatusUnset},
		{"negative price", -100, 0, models.PaymentStatusUnset},
		{"settled", 1000, 0, models.PaymentStatusPaid},
		{"outstanding", 1000, 400, models.PaymentStatusPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifyPaymentStatus(tc.final, tc.balance))
		})
	}
}

func TestCalculateRegistrationStatus(t *testing.T) {
	paid := &models.NormalizedFee{Amount: 100, Paid: true}
	unpaid := &models.NormalizedFee{Amount: 100, Paid: false}

	assert.Equal(t, models.PaymentStatusPending, calculateRegistrationStatus(&models.RegistrationFees{}))
	assert.Equal(t, models.PaymentStatusPending, calculateRegistrationStatus(&models.RegistrationFees{
		Student: paid, Course: unpaid,
	}))
	assert.Equal(t, models.PaymentStatusPaid, calculateRegistrationStatus(&models.RegistrationFees{
		Student: paid, Course: paid, Confirmation: paid,
	}))
	// Absent components do not block the rollup.
	assert.Equal(t, models.PaymentStatusPaid, calculateRegistrationStatus(&models.RegistrationFees{
		Student: paid,
	}))
}
