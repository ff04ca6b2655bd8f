package models

// StudentEnrollment is a student's claim of participation in a course as
// reported by the roster source. Every field beyond the student id is
// optional: roster payloads from different eras of the upstream system omit
// or rename fields freely, so decoding never fails on a missing one.
type StudentEnrollment struct {
	StudentID string  `json:"id"`
	FullName  *string `json:"name"`

	CourseRef  *string `json:"courseId"`
	CourseName *string `json:"course"`
	Level      *string `json:"level"`
	Category   *string `json:"category"`
	Program    *string `json:"program"`
	Cohort     *string `json:"batch"`
	CourseType *string `json:"courseType"`

	TotalPaidAmount *float64 `json:"totalPaidAmount"`
	FinalPayment    *float64 `json:"finalPayment"`
	NextPaymentDate *string  `json:"nextPaymentDate"`

	StudentRegistration FeeInput `json:"studentRegistration"`
	CourseRegistration  FeeInput `json:"courseRegistration"`
	ConfirmationFee     FeeInput `json:"confirmationFee"`

	LastUpdated *string `json:"lastUpdated"`
}

// StrField dereferences an optional string, trimming nothing: values are
// compared as stored.
func StrField(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NumField dereferences an optional number.
func NumField(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
