package service

import "github.com/noah-isme/academy-recon-api/internal/models"

// classifyPaymentStatus maps the derived financial fields to a display
// status. This is the only place the mapping lives; every call site derives
// through it.
func classifyPaymentStatus(finalPayment, balancePayment float64) models.PaymentStatus {
	if finalPayment <= 0 {
		return models.PaymentStatusUnset
	}
	if balancePayment == 0 {
		return models.PaymentStatusPaid
	}
	return models.PaymentStatusPending
}

// calculateRegistrationStatus rolls up the registration fee components:
// "Paid" only when every present component is paid. Absent components do
// not block the rollup.
func calculateRegistrationStatus(fees *models.RegistrationFees) models.PaymentStatus {
	if fees.Empty() {
		return models.PaymentStatusPending
	}
	for _, fee := range []*models.NormalizedFee{fees.Student, fees.Course, fees.Confirmation} {
		if fee != nil && !fee.Paid {
			return models.PaymentStatusPending
		}
	}
	return models.PaymentStatusPaid
}
