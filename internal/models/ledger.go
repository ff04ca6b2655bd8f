package models

import "time"

// PaymentDoc is a raw payment document from the ledger store. It feeds the
// change hash and carries the manually-set reminder flags that must survive
// reconciliation passes.
type PaymentDoc struct {
	ID          string    `db:"id" json:"id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	CourseKey   string    `db:"course_key" json:"course_key"`
	Amount      float64   `db:"amount" json:"amount"`
	Reminder    bool      `db:"reminder" json:"reminder"`
	LastUpdated time.Time `db:"last_updated" json:"last_updated"`
}
