package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/academy-recon-api/internal/models"
)

func TestRosterChangeHashStable(t *testing.T) {
	enrollments := []models.StudentEnrollment{
		{StudentID: "S1", Category: strPtr("Regular"), Program: strPtr("FT"), LastUpdated: strPtr("2026-01-01")},
		{StudentID: "S2", Category: strPtr("Scholarship")},
	}

	assert.Equal(t, rosterChangeHash(enrollments), rosterChangeHash(enrollments))
}

func TestRosterChangeHashIgnoresVolatileFields(t *testing.T) {
	base := []models.StudentEnrollment{
		{StudentID: "S1", Category: strPtr("Regular"), TotalPaidAmount: numPtr(100)},
	}
	changedVolatile := []models.StudentEnrollment{
		{StudentID: "S1", Category: strPtr("Regular"), TotalPaidAmount: numPtr(999), FullName: strPtr("Renamed")},
	}

	assert.Equal(t, rosterChangeHash(base), rosterChangeHash(changedVolatile))
}

func TestRosterChangeHashDetectsIdentityChange(t *testing.T) {
	base := []models.StudentEnrollment{{StudentID: "S1", Category: strPtr("Regular")}}
	changed := []models.StudentEnrollment{{StudentID: "S1", Category: strPtr("Scholarship")}}

	assert.NotEqual(t, rosterChangeHash(base), rosterChangeHash(changed))
}

func TestLedgerChangeHashDetectsPaymentAndPriceChanges(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	payments := []models.PaymentDoc{{ID: "P1", LastUpdated: now}}
	courses := []models.CoursePricing{{ID: "C1", Price: 1000}}

	base := ledgerChangeHash(payments, courses)
	assert.Equal(t, base, ledgerChangeHash(payments, courses))

	touched := []models.PaymentDoc{{ID: "P1", LastUpdated: now.Add(time.Second)}}
	assert.NotEqual(t, base, ledgerChangeHash(touched, courses))

	repriced := []models.CoursePricing{{ID: "C1", Price: 1200}}
	assert.NotEqual(t, base, ledgerChangeHash(payments, repriced))
}

func TestChangeHashEmptyInputs(t *testing.T) {
	assert.NotEmpty(t, rosterChangeHash(nil))
	assert.Equal(t, rosterChangeHash(nil), rosterChangeHash([]models.StudentEnrollment{}))
	assert.NotEqual(t, rosterChangeHash(nil), ledgerChangeHash(nil, []models.CoursePricing{{ID: "C1"}}))
}
