package dto

import "github.com/noah-isme/academy-recon-api/internal/models"

// UpdatePaymentRequest is the partial update applied to a published record.
type UpdatePaymentRequest struct {
	TotalPaidAmount *float64 `json:"totalPaidAmount" validate:"omitempty,gte=0"`
	NextPaymentDate *string  `json:"nextPaymentDate" validate:"omitempty,datetime=2006-01-02"`
	Reminder        *bool    `json:"reminder"`
}

// Patch converts the request into the model-level patch.
func (r UpdatePaymentRequest) Patch() models.PaymentPatch {
	return models.PaymentPatch{
		TotalPaidAmount: r.TotalPaidAmount,
		NextPaymentDate: r.NextPaymentDate,
		Reminder:        r.Reminder,
	}
}

// Empty reports whether the request patches nothing.
func (r UpdatePaymentRequest) Empty() bool {
	return r.TotalPaidAmount == nil && r.NextPaymentDate == nil && r.Reminder == nil
}

// RefreshResponse acknowledges a manual reconciliation trigger.
type RefreshResponse struct {
	Enqueued bool `json:"enqueued"`
}

// PollerStatusResponse exposes the state of every polling loop.
type PollerStatusResponse struct {
	Sources []models.PollSourceStatus `json:"sources"`
}
