package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-recon-api/internal/models"
	appErrors "github.com/noah-isme/academy-recon-api/pkg/errors"
)

// LedgerRepository reads the external payment ledger and confirms record
// updates against it. The ledger is the backing store: this service never
// owns the rows, it only reads them and writes confirmed patches.
type LedgerRepository struct {
	db *sqlx.DB
}

// NewLedgerRepository constructs a LedgerRepository.
func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// ListPayments returns all payment documents in a stable order so the
// change hash is deterministic for an unchanged ledger.
func (r *LedgerRepository) ListPayments(ctx context.Context) ([]models.PaymentDoc, error) {
	query := `SELECT id, student_id, course_key, amount, reminder, last_updated FROM payments ORDER BY id`

	var payments []models.PaymentDoc
	if err := r.db.SelectContext(ctx, &payments, query); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// ConfirmUpdate persists an applied patch. A zero-row update means the
// backing store no longer has the record and the optimistic local change
// must be rolled back by the caller.
func (r *LedgerRepository) ConfirmUpdate(ctx context.Context, studentID, courseKey string, patch models.PaymentPatch) error {
	sets := []string{"last_updated = $1"}
	args := []interface{}{time.Now().UTC()}

	if patch.TotalPaidAmount != nil {
		sets = append(sets, fmt.Sprintf("amount = $%d", len(args)+1))
		args = append(args, *patch.TotalPaidAmount)
	}
	if patch.Reminder != nil {
		sets = append(sets, fmt.Sprintf("reminder = $%d", len(args)+1))
		args = append(args, *patch.Reminder)
	}
	if patch.NextPaymentDate != nil {
		sets = append(sets, fmt.Sprintf("next_payment_date = $%d", len(args)+1))
		args = append(args, *patch.NextPaymentDate)
	}

	query := fmt.Sprintf("UPDATE payments SET %s WHERE student_id = $%d AND course_key = $%d",
		strings.Join(sets, ", "), len(args)+1, len(args)+2)
	args = append(args, studentID, courseKey)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpdateRejected.Code, appErrors.ErrUpdateRejected.Status, "update confirmation failed")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("confirm update rows: %w", err)
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrUpdateRejected, "no ledger row for record")
	}

	r.auditUpdate(ctx, studentID, courseKey, patch)
	return nil
}

// auditUpdate records the applied patch. Audit rows are best effort: a
// failed insert never invalidates a confirmed update.
func (r *LedgerRepository) auditUpdate(ctx context.Context, studentID, courseKey string, patch models.PaymentPatch) {
	query := `INSERT INTO payment_update_audit (id, student_id, course_key, paid_amount, reminder, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`

	var amount sql.NullFloat64
	if patch.TotalPaidAmount != nil {
		amount = sql.NullFloat64{Float64: *patch.TotalPaidAmount, Valid: true}
	}
	var reminder sql.NullBool
	if patch.Reminder != nil {
		reminder = sql.NullBool{Bool: *patch.Reminder, Valid: true}
	}

	_, _ = r.db.ExecContext(ctx, query, uuid.NewString(), studentID, courseKey, amount, reminder, time.Now().UTC())
}
