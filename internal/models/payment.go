package models

// PaymentStatus is the display status derived from the financial fields.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusUnset   PaymentStatus = "-"
)

// PlaceholderValue marks an unset categorical display field.
const PlaceholderValue = "-"

// OverallRegistration rolls up the per-component registration fee state.
type OverallRegistration struct {
	Paid   bool          `json:"paid"`
	Status PaymentStatus `json:"status"`
}

// RegistrationFees groups the normalized registration fee components. A nil
// component means the source never supplied it; absent components do not
// block the overall "paid" rollup.
type RegistrationFees struct {
	Student      *NormalizedFee      `json:"studentRegistration,omitempty"`
	Course       *NormalizedFee      `json:"courseRegistration,omitempty"`
	Confirmation *NormalizedFee      `json:"confirmationFee,omitempty"`
	Overall      OverallRegistration `json:"overall"`
}

// Empty reports whether no component was supplied at all.
func (r *RegistrationFees) Empty() bool {
	return r == nil || (r.Student == nil && r.Course == nil && r.Confirmation == nil)
}

// PaymentRecord is the canonical synthesized entity published to the UI.
// Identity is (StudentID, CourseKey): a student enrolled in two courses owns
// two records, so uniqueness is never by student id alone.
type PaymentRecord struct {
	StudentID   string `json:"studentId"`
	CourseKey   string `json:"courseKey"`
	StudentName string `json:"studentName"`
	Program     string `json:"program"`
	Category    string `json:"category"`
	CourseType  string `json:"courseType"`
	Cohort      string `json:"cohort"`

	FinalPayment     float64           `json:"finalPayment"`
	TotalPaidAmount  float64           `json:"totalPaidAmount"`
	BalancePayment   float64           `json:"balancePayment"`
	RegistrationFees *RegistrationFees `json:"registrationFees,omitempty"`

	PaymentStatus   PaymentStatus `json:"paymentStatus"`
	NextPaymentDate *string       `json:"nextPaymentDate"`

	// DerivedFinalPayment is true when the price came from the fallback
	// course match rather than a pre-joined authoritative sync payload.
	DerivedFinalPayment bool `json:"derivedFinalPayment"`
	Reminder            bool `json:"reminder"`
}

// Key returns the composite identity used to pair records across batches.
func (p PaymentRecord) Key() string {
	return RecordKey(p.StudentID, p.CourseKey)
}

// RecordKey builds the composite record identity.
func RecordKey(studentID, courseKey string) string {
	if courseKey == "" {
		courseKey = PlaceholderValue
	}
	return studentID + "/" + courseKey
}

// PaymentPatch is a partial update applied optimistically to a published
// record before the backing store confirms it.
type PaymentPatch struct {
	TotalPaidAmount *float64 `json:"totalPaidAmount,omitempty"`
	NextPaymentDate *string  `json:"nextPaymentDate,omitempty"`
	Reminder        *bool    `json:"reminder,omitempty"`
}
