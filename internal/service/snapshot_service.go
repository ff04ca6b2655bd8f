package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-recon-api/internal/models"
	appErrors "github.com/noah-isme/academy-recon-api/pkg/errors"
)

// SnapshotStore is the persistence contract for the published record
// snapshot, implemented by repository.SnapshotRepository.
type SnapshotStore interface {
	GetRecords(ctx context.Context) ([]models.PaymentRecord, error)
	SetRecords(ctx context.Context, records []models.PaymentRecord, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// SnapshotServiceParams groups constructor dependencies.
type SnapshotServiceParams struct {
	Store      SnapshotStore
	Metrics    *MetricsService
	DefaultTTL time.Duration
	Logger     *zap.Logger
}

// SnapshotService fronts the Redis-backed snapshot of published payment
// records. A nil store disables it: every lookup is a miss and writes are
// no-ops, so callers never branch on whether Redis is configured.
type SnapshotService struct {
	store      SnapshotStore
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
}

// NewSnapshotService constructs a SnapshotService with sane defaults.
func NewSnapshotService(params SnapshotServiceParams) *SnapshotService {
	ttl := params.DefaultTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotService{
		store:      params.Store,
		metrics:    params.Metrics,
		defaultTTL: ttl,
		logger:     logger,
	}
}

// Enabled reports whether a backing store is configured.
func (s *SnapshotService) Enabled() bool {
	return s != nil && s.store != nil
}

// Get returns the cached snapshot and whether it was present.
func (s *SnapshotService) Get(ctx context.Context) ([]models.PaymentRecord, bool, error) {
	if !s.Enabled() {
		return nil, false, nil
	}
	start := time.Now()
	records, err := s.store.GetRecords(ctx)
	if err != nil {
		s.metrics.RecordCacheOperation(false, time.Since(start))
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, false, nil
		}
		s.logger.Warn("snapshot read failed", zap.Error(err))
		return nil, false, err
	}
	s.metrics.RecordCacheOperation(true, time.Since(start))
	return records, true, nil
}

// Set stores the snapshot under the default TTL.
func (s *SnapshotService) Set(ctx context.Context, records []models.PaymentRecord) error {
	if !s.Enabled() {
		return nil
	}
	return s.store.SetRecords(ctx, records, s.defaultTTL)
}

// Invalidate drops every cached snapshot key.
func (s *SnapshotService) Invalidate(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.store.Invalidate(ctx)
}
