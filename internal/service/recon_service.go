package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-recon-api/internal/dto"
	"github.com/noah-isme/academy-recon-api/internal/models"
	appErrors "github.com/noah-isme/academy-recon-api/pkg/errors"
)

type rosterFetcher interface {
	Fetch(ctx context.Context) ([]models.StudentEnrollment, error)
}

type pricingFetcher interface {
	Fetch(ctx context.Context) ([]models.CoursePricing, error)
}

type ledgerStore interface {
	ListPayments(ctx context.Context) ([]models.PaymentDoc, error)
	ConfirmUpdate(ctx context.Context, studentID, courseKey string, patch models.PaymentPatch) error
}

// ReconServiceConfig tunes the reconciliation pipeline.
type ReconServiceConfig struct {
	FlatRatioThreshold float64
	NextDueGraceDays   int
}

// ReconServiceParams groups constructor dependencies.
type ReconServiceParams struct {
	Roster   rosterFetcher
	Pricing  pricingFetcher
	Ledger   ledgerStore
	Snapshot *SnapshotService
	Metrics  *MetricsService
	Logger   *zap.Logger
	Validate *validator.Validate
	Config   ReconServiceConfig
}

// ReconService owns the reconciliation pipeline: it fetches the sources,
// synthesizes the canonical record set, guards it against degraded payloads
// and publishes the accepted batch, which is the only state the UI ever sees.
type ReconService struct {
	roster   rosterFetcher
	pricing  pricingFetcher
	ledger   ledgerStore
	snapshot *SnapshotService
	metrics  *MetricsService
	logger   *zap.Logger
	validate *validator.Validate

	state *AcceptedBatchState
	synth recordSynthesizer
	guard batchGuard
	cfg   ReconServiceConfig

	warnMu      sync.Mutex
	lastWarning *appErrors.Error
}

// NewReconService constructs a ReconService with sane defaults.
func NewReconService(params ReconServiceParams) *ReconService {
	cfg := params.Config
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validate
	if validate == nil {
		validate = validator.New()
	}
	return &ReconService{
		roster:   params.Roster,
		pricing:  params.Pricing,
		ledger:   params.Ledger,
		snapshot: params.Snapshot,
		metrics:  params.Metrics,
		logger:   logger,
		validate: validate,
		state:    NewAcceptedBatchState(),
		synth:    newRecordSynthesizer(cfg.NextDueGraceDays),
		guard:    newBatchGuard(cfg.FlatRatioThreshold, logger),
		cfg:      cfg,
	}
}

// RunReconciliation executes one full pass: fetch, synthesize, guard,
// stabilize, publish. A degraded batch retains the previous state and is
// not an error; source failures are returned for logging but the previous
// state likewise stays published.
func (s *ReconService) RunReconciliation(ctx context.Context) error {
	start := time.Now()

	enrollments, err := s.roster.Fetch(ctx)
	if err != nil {
		s.metrics.RecordPass(PassResultFailed, time.Since(start))
		return fmt.Errorf("reconciliation roster fetch: %w", err)
	}
	courses, err := s.pricing.Fetch(ctx)
	if err != nil {
		s.metrics.RecordPass(PassResultFailed, time.Since(start))
		return fmt.Errorf("reconciliation pricing fetch: %w", err)
	}
	payments, err := s.ledger.ListPayments(ctx)
	if err != nil {
		s.metrics.RecordPass(PassResultFailed, time.Since(start))
		return fmt.Errorf("reconciliation ledger fetch: %w", err)
	}

	incoming := s.synthesizeBatch(enrollments, courses, reminderFlags(payments))
	previous := s.state.Snapshot()

	if s.guard.IsDegraded(incoming, previous) {
		// Previous state stays published; the UI keeps showing last good data
		// and a soft warning rides along on reads until a batch is accepted.
		s.setWarning(appErrors.Clone(appErrors.ErrDegradedBatch, "showing last good data"))
		s.metrics.RecordPass(PassResultDegraded, time.Since(start))
		s.logger.Warn("reconciliation pass rejected degraded batch",
			zap.Int("incoming", len(incoming)),
			zap.Int("published", len(previous)),
		)
		return nil
	}

	stabilized, kept := s.guard.Stabilize(incoming, previous)
	s.state.Publish(stabilized)
	s.setWarning(nil)

	s.metrics.RecordStabilized(kept)
	s.metrics.SetPublishedSize(len(stabilized))
	s.metrics.RecordPass(PassResultPublished, time.Since(start))
	if err := s.snapshot.Invalidate(ctx); err != nil {
		s.logger.Warn("snapshot cache invalidation failed", zap.Error(err))
	}

	s.logger.Info("reconciliation pass published",
		zap.Int("records", len(stabilized)),
		zap.Int("stabilized", kept),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

func (s *ReconService) synthesizeBatch(enrollments []models.StudentEnrollment, courses []models.CoursePricing, reminders map[string]bool) []models.PaymentRecord {
	records := make([]models.PaymentRecord, 0, len(enrollments))
	for _, enrollment := range enrollments {
		matched := matchCourse(enrollment, courses)
		records = append(records, s.synth.Synthesize(enrollment, matched, reminders))
	}
	return records
}

// reminderFlags extracts manually-set reminder flags so they survive
// roster-driven rebuilds of the record set.
func reminderFlags(payments []models.PaymentDoc) map[string]bool {
	flags := make(map[string]bool, len(payments))
	for _, p := range payments {
		if p.Reminder {
			flags[models.RecordKey(p.StudentID, p.CourseKey)] = true
		}
	}
	return flags
}

// CurrentRecords returns the published record set and whether it was served
// from cache.
func (s *ReconService) CurrentRecords(ctx context.Context) ([]models.PaymentRecord, bool, error) {
	if cached, hit, err := s.snapshot.Get(ctx); err == nil && hit {
		return cached, true, nil
	}

	records := s.state.Snapshot()
	if err := s.snapshot.Set(ctx, records); err != nil {
		s.logger.Warn("snapshot cache write failed", zap.Error(err))
	}
	return records, false, nil
}

// ApplyUpdate optimistically patches a published record, then confirms the
// patch against the ledger. A failed confirmation rolls the record back and
// surfaces the failure: it is the one error class the caller must see.
func (s *ReconService) ApplyUpdate(ctx context.Context, studentID, courseKey string, req dto.UpdatePaymentRequest) (*models.PaymentRecord, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "studentId is required")
	}
	if req.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}

	key := models.RecordKey(studentID, courseKey)
	current, ok := s.state.Get(key)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "payment record not found")
	}

	updated := applyPatch(current, req.Patch())
	s.state.Replace(key, updated)

	if err := s.ledger.ConfirmUpdate(ctx, studentID, current.CourseKey, req.Patch()); err != nil {
		s.state.Replace(key, current)
		s.logger.Warn("update confirmation failed, rolled back",
			zap.String("key", key), zap.Error(err))
		return nil, err
	}

	if err := s.snapshot.Invalidate(ctx); err != nil {
		s.logger.Warn("snapshot cache invalidation failed", zap.Error(err))
	}
	return &updated, nil
}

// applyPatch overlays the patch and re-derives every dependent field so the
// record invariants hold after the update.
func applyPatch(record models.PaymentRecord, patch models.PaymentPatch) models.PaymentRecord {
	if patch.TotalPaidAmount != nil {
		record.TotalPaidAmount = *patch.TotalPaidAmount
	}
	if patch.NextPaymentDate != nil {
		record.NextPaymentDate = patch.NextPaymentDate
	}
	if patch.Reminder != nil {
		record.Reminder = *patch.Reminder
	}

	record.BalancePayment = record.FinalPayment - record.TotalPaidAmount
	if record.BalancePayment < 0 {
		record.BalancePayment = 0
	}
	record.PaymentStatus = classifyPaymentStatus(record.FinalPayment, record.BalancePayment)
	return record
}

// RosterChangeHash fetches the roster and fingerprints its identity fields.
func (s *ReconService) RosterChangeHash(ctx context.Context) (string, error) {
	enrollments, err := s.roster.Fetch(ctx)
	if err != nil {
		return "", err
	}
	return rosterChangeHash(enrollments), nil
}

// LedgerChangeHash fetches payments and pricing and fingerprints the
// combined mutation-relevant fields.
func (s *ReconService) LedgerChangeHash(ctx context.Context) (string, error) {
	payments, err := s.ledger.ListPayments(ctx)
	if err != nil {
		return "", err
	}
	courses, err := s.pricing.Fetch(ctx)
	if err != nil {
		return "", err
	}
	return ledgerChangeHash(payments, courses), nil
}

func (s *ReconService) setWarning(warn *appErrors.Error) {
	s.warnMu.Lock()
	s.lastWarning = warn
	s.warnMu.Unlock()
}

// LastWarning returns the soft warning left by the most recent pass, or nil
// when the published batch is current. A degraded pass sets it; the next
// accepted pass clears it.
func (s *ReconService) LastWarning() *appErrors.Error {
	s.warnMu.Lock()
	defer s.warnMu.Unlock()
	return s.lastWarning
}

// PublishedAt reports when the accepted batch last changed.
func (s *ReconService) PublishedAt() time.Time {
	return s.state.PublishedAt()
}

// PublishedCount reports the size of the accepted batch.
func (s *ReconService) PublishedCount() int {
	return s.state.Len()
}
