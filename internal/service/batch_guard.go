package service

import (
	"go.uber.org/zap"

	"github.com/noah-isme/academy-recon-api/internal/models"
)

// batchGuard protects the published state against transient upstream
// regressions: whole-batch degradation (a join silently failing upstream
// returns a structurally valid but semantically empty payload) and
// record-level flicker that stays under the batch threshold.
type batchGuard struct {
	flatRatioThreshold float64
	logger             *zap.Logger
}

func newBatchGuard(flatRatioThreshold float64, logger *zap.Logger) batchGuard {
	if flatRatioThreshold <= 0 || flatRatioThreshold > 1 {
		flatRatioThreshold = 0.6
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return batchGuard{flatRatioThreshold: flatRatioThreshold, logger: logger}
}

// IsDegraded decides whether the incoming batch should be rejected wholesale.
// An empty incoming batch is always degraded; an empty previous batch never
// is, since there is nothing to protect on first run.
func (g batchGuard) IsDegraded(incoming, previous []models.PaymentRecord) bool {
	if len(incoming) == 0 {
		return true
	}
	if len(previous) == 0 {
		return false
	}

	flat := 0
	for _, record := range incoming {
		if isFlatRecord(record) {
			flat++
		}
	}
	ratio := float64(flat) / float64(len(incoming))
	if ratio > g.flatRatioThreshold {
		g.logger.Warn("incoming batch rejected as degraded",
			zap.Int("incoming", len(incoming)),
			zap.Int("flat", flat),
			zap.Float64("flat_ratio", ratio),
			zap.Float64("threshold", g.flatRatioThreshold),
		)
		return true
	}
	return false
}

// isFlatRecord flags a record whose financial and categorical fields all
// look unset, indicating a likely failed join upstream.
func isFlatRecord(record models.PaymentRecord) bool {
	if record.FinalPayment == 0 && record.TotalPaidAmount == 0 && record.BalancePayment == 0 {
		return true
	}
	return unsetField(record.Category) && unsetField(record.CourseType)
}

func unsetField(value string) bool {
	return value == "" || value == models.PlaceholderValue
}

// Stabilize merges each incoming record with its predecessor so trustworthy
// fields survive a partial upstream failure. Incoming wins by default;
// previous values are kept only where incoming regressed to unset. Records
// with no previous counterpart pass through unchanged. The second return is
// the number of records that kept at least one prior field.
func (g batchGuard) Stabilize(incoming, previous []models.PaymentRecord) ([]models.PaymentRecord, int) {
	if len(previous) == 0 {
		return incoming, 0
	}

	prior := make(map[string]models.PaymentRecord, len(previous))
	for _, record := range previous {
		prior[record.Key()] = record
	}

	kept := 0
	stabilized := make([]models.PaymentRecord, 0, len(incoming))
	for _, record := range incoming {
		old, ok := prior[record.Key()]
		if !ok {
			stabilized = append(stabilized, record)
			continue
		}
		merged, changed := g.mergeRecord(record, old)
		if changed {
			kept++
		}
		stabilized = append(stabilized, merged)
	}
	return stabilized, kept
}

func (g batchGuard) mergeRecord(incoming, previous models.PaymentRecord) (models.PaymentRecord, bool) {
	merged := incoming
	changed := false

	if incoming.FinalPayment == 0 && previous.FinalPayment > 0 {
		changed = true
		merged.FinalPayment = previous.FinalPayment
		merged.BalancePayment = previous.FinalPayment - incoming.TotalPaidAmount
		if merged.BalancePayment < 0 {
			merged.BalancePayment = 0
		}
		merged.DerivedFinalPayment = previous.DerivedFinalPayment
		g.logger.Debug("kept prior final payment for record",
			zap.String("key", incoming.Key()),
			zap.Float64("prior_final_payment", previous.FinalPayment),
		)
	}
	if unsetField(incoming.Category) && !unsetField(previous.Category) {
		merged.Category = previous.Category
		changed = true
	}
	if unsetField(incoming.CourseType) && !unsetField(previous.CourseType) {
		merged.CourseType = previous.CourseType
		changed = true
	}
	if incoming.RegistrationFees.Empty() && !previous.RegistrationFees.Empty() {
		merged.RegistrationFees = previous.RegistrationFees
		changed = true
	}

	merged.PaymentStatus = classifyPaymentStatus(merged.FinalPayment, merged.BalancePayment)
	return merged, changed
}
