package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-recon-api/internal/models"
)

func fullRecord(studentID, courseKey string, final, paid float64) models.PaymentRecord {
	balance := final - paid
	if balance < 0 {
		balance = 0
	}
	return models.PaymentRecord{
		StudentID:       studentID,
		CourseKey:       courseKey,
		Category:        "Regular",
		CourseType:      "Online",
		FinalPayment:    final,
		TotalPaidAmount: paid,
		BalancePayment:  balance,
		PaymentStatus:   classifyPaymentStatus(final, balance),
	}
}

func flatRecord(studentID, courseKey string) models.PaymentRecord {
	return models.PaymentRecord{
		StudentID:     studentID,
		CourseKey:     courseKey,
		Category:      "-",
		CourseType:    "-",
		PaymentStatus: models.PaymentStatusUnset,
	}
}

func TestIsDegradedEmptyIncoming(t *testing.T) {
	guard := newBatchGuard(0.6, zap.NewNop())
	previous := []models.PaymentRecord{fullRecord("S1", "C1", 1000, 0)}

	assert.True(t, guard.IsDegraded(nil, previous))
	assert.True(t, guard.IsDegraded([]models.PaymentRecord{}, previous))
}

func TestIsDegradedEmptyPreviousNeverDegraded(t *testing.T) {
	guard := newBatchGuard(0.6, zap.NewNop())
	incoming := []models.PaymentRecord{
		flatRecord("S1", "C1"),
		flatRecord("S2", "C1"),
	}

	assert.False(t, guard.IsDegraded(incoming, nil))
}

func TestIsDegradedFlatRatioAboveThreshold(t *testing.T) {
	guard := newBatchGuard(0.6, zap.NewNop())
	previous := []models.PaymentRecord{fullRecord("S1", "C1", 1000, 0)}

	// 7 of 10 flat: 0.7 > 0.6 rejects the batch.
	incoming := make([]models.PaymentRecord, 0, 10)
	for i := 0; i < 7; i++ {
		incoming = append(incoming, flatRecord("F"+string(rune('a'+i)), "C1"))
	}
	for i := 0; i < 3; i++ {
		incoming = append(incoming, fullRecord("S"+string(rune('a'+i)), "C1", 1000, 500))
	}
	assert.True(t, guard.IsDegraded(incoming, previous))

	// Exactly at the threshold passes: the comparison is strict.
	atThreshold := append([]models.PaymentRecord{}, incoming...)
	atThreshold[6] = fullRecord("S9", "C1", 1000, 500)
	assert.False(t, guard.IsDegraded(atThreshold, previous))
}

func TestIsFlatRecordCategoricalOnly(t *testing.T) {
	// Financials present but both categorical fields unset still counts flat.
	record := fullRecord("S1", "C1", 1000, 500)
	record.Category = ""
	record.CourseType = "-"
	assert.True(t, isFlatRecord(record))

	record.Category = "Regular"
	assert.False(t, isFlatRecord(record))
}

func TestStabilizeKeepsPriorFinalPayment(t *testing.T) {
	guard := newBatchGuard(0.6, zap.NewNop())
	previous := []models.PaymentRecord{fullRecord("S1", "C1", 15000, 5000)}

	incoming := fullRecord("S1", "C1", 0, 5000)
	incoming.PaymentStatus = models.PaymentStatusUnset

	stabilized, kept := guard.Stabilize([]models.PaymentRecord{incoming}, previous)
	assert.Equal(t, 1, kept)
	assert.Equal(t, float64(15000), stabilized[0].FinalPayment)
	assert.Equal(t, float64(10000), stabilized[0].BalancePayment)
	assert.Equal(t, models.PaymentStatusPending, stabilized[0].PaymentStatus)
}

func TestStabilizeIncomingWinsWhenSet(t *testing.T) {
	guard := newBatchGuard(0.6, zap.NewNop())
	previous := []models.PaymentRecord{fullRecord("S1", "C1", 15000, 5000)}

	incoming := fullRecord("S1", "C1", 18000, 6000)
	stabilized, kept := guard.Stabilize([]models.PaymentRecord{incoming}, previous)
	assert.Equal(t, 0, kept)
	assert.Equal(t, float64(18000), stabilized[0].FinalPayment)
	assert.Equal(t, float64(12000), stabilized[0].BalancePayment)
}

func TestStabilizeKeepsCategoricalFields(t *testing.T) {
	guard := newBatchGuard(0.6, zap.NewNop())
	previous := []models.PaymentRecord{fullRecord("S1", "C1", 1000, 0)}

	incoming := fullRecord("S1", "C1", 1000, 0)
	incoming.Category = "-"
	incoming.CourseType = ""

	stabilized, kept := guard.Stabilize([]models.PaymentRecord{incoming}, previous)
	assert.Equal(t, 1, kept)
	assert.Equal(t, "Regular", stabilized[0].Category)
	assert.Equal(t, "Online", stabilized[0].CourseType)
}

func TestStabilizeKeepsPriorRegistrationFees(t *testing.T) {
	guard := newBatchGuard(0.6, zap.NewNop())
	prev := fullRecord("S1", "C1", 1000, 0)
	prev.RegistrationFees = &models.RegistrationFees{
		Student: &models.NormalizedFee{Amount: 100, Paid: true},
		Overall: models.OverallRegistration{Paid: true, Status: models.PaymentStatusPaid},
	}

	incoming := fullRecord("S1", "C1", 1000, 0)
	stabilized, kept := guard.Stabilize([]models.PaymentRecord{incoming}, []models.PaymentRecord{prev})
	assert.Equal(t, 1, kept)
	assert.NotNil(t, stabilized[0].RegistrationFees)
	assert.True(t, stabilized[0].RegistrationFees.Overall.Paid)
}

func TestStabilizeNewRecordPassesThrough(t *testing.T) {
	guard := newBatchGuard(0.6, zap.NewNop())
	previous := []models.PaymentRecord{fullRecord("S1", "C1", 1000, 0)}

	incoming := flatRecord("S2", "C9")
	stabilized, kept := guard.Stabilize([]models.PaymentRecord{incoming}, previous)
	assert.Equal(t, 0, kept)
	assert.Equal(t, incoming, stabilized[0])
}

func TestStabilizeIdentityIsStudentAndCourse(t *testing.T) {
	guard := newBatchGuard(0.6, zap.NewNop())
	// Same student, different course: no merge across course keys.
	previous := []models.PaymentRecord{fullRecord("S1", "C1", 15000, 5000)}

	incoming := fullRecord("S1", "C2", 0, 0)
	stabilized, kept := guard.Stabilize([]models.PaymentRecord{incoming}, previous)
	assert.Equal(t, 0, kept)
	assert.Equal(t, float64(0), stabilized[0].FinalPayment)
}

func TestNewBatchGuardClampsThreshold(t *testing.T) {
	guard := newBatchGuard(0, nil)
	assert.Equal(t, 0.6, guard.flatRatioThreshold)

	guard = newBatchGuard(1.5, nil)
	assert.Equal(t, 0.6, guard.flatRatioThreshold)

	guard = newBatchGuard(0.8, nil)
	assert.Equal(t, 0.8, guard.flatRatioThreshold)
}
