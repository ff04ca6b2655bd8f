package service

import (
	"time"

	"github.com/noah-isme/academy-recon-api/internal/models"
)

const dateLayout = "2006-01-02"

// recordSynthesizer combines an enrollment, its matched pricing record and
// the ledger reminder flags into a canonical PaymentRecord. It is a pure
// transformation over already-fetched inputs.
type recordSynthesizer struct {
	graceDays int
}

func newRecordSynthesizer(graceDays int) recordSynthesizer {
	if graceDays <= 0 {
		graceDays = 30
	}
	return recordSynthesizer{graceDays: graceDays}
}

// Synthesize builds one record. A nil match still synthesizes: the price
// falls back to zero and the status classifies as unset.
func (s recordSynthesizer) Synthesize(enrollment models.StudentEnrollment, matched *models.CoursePricing, reminders map[string]bool) models.PaymentRecord {
	courseKey := resolveCourseKey(enrollment, matched)

	finalPayment := models.NumField(enrollment.FinalPayment)
	derived := false
	if enrollment.FinalPayment == nil {
		if matched != nil {
			finalPayment = matched.Price
		}
		derived = matched != nil
	}

	totalPaid := models.NumField(enrollment.TotalPaidAmount)
	balance := finalPayment - totalPaid
	if balance < 0 {
		balance = 0
	}

	record := models.PaymentRecord{
		StudentID:   enrollment.StudentID,
		CourseKey:   courseKey,
		StudentName: models.StrField(enrollment.FullName),
		Program:     displayField(models.StrField(enrollment.Program)),
		Category:    displayField(models.StrField(enrollment.Category)),
		Cohort:      models.StrField(enrollment.Cohort),

		FinalPayment:    finalPayment,
		TotalPaidAmount: totalPaid,
		BalancePayment:  balance,

		DerivedFinalPayment: derived,
	}

	courseType := models.StrField(enrollment.CourseType)
	if courseType == "" && matched != nil {
		courseType = models.StrField(matched.Type)
	}
	record.CourseType = displayField(courseType)

	record.RegistrationFees = s.buildRegistrationFees(enrollment)
	record.PaymentStatus = classifyPaymentStatus(finalPayment, balance)

	// The schedule is computed even for fully paid records so it stays visible.
	record.NextPaymentDate = s.nextPaymentDate(enrollment, matched)

	if reminders != nil {
		record.Reminder = reminders[record.Key()]
	}

	return record
}

func (s recordSynthesizer) buildRegistrationFees(enrollment models.StudentEnrollment) *models.RegistrationFees {
	fees := &models.RegistrationFees{
		Student:      normalizeFee(enrollment.StudentRegistration),
		Course:       normalizeFee(enrollment.CourseRegistration),
		Confirmation: normalizeFee(enrollment.ConfirmationFee),
	}
	if fees.Empty() {
		return nil
	}
	status := calculateRegistrationStatus(fees)
	fees.Overall = models.OverallRegistration{
		Paid:   status == models.PaymentStatusPaid,
		Status: status,
	}
	return fees
}

func (s recordSynthesizer) nextPaymentDate(enrollment models.StudentEnrollment, matched *models.CoursePricing) *string {
	if explicit := models.StrField(enrollment.NextPaymentDate); explicit != "" {
		return &explicit
	}
	if matched == nil {
		return nil
	}
	start, ok := parseSourceDate(models.StrField(matched.StartDate))
	if !ok {
		return nil
	}
	due := start.AddDate(0, 0, s.graceDays).Format(dateLayout)
	return &due
}

// parseSourceDate accepts the two date encodings the sources emit.
func parseSourceDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// displayField substitutes the placeholder for unset categorical fields.
func displayField(value string) string {
	if value == "" {
		return models.PlaceholderValue
	}
	return value
}
