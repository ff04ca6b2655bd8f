package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-recon-api/internal/models"
	appErrors "github.com/noah-isme/academy-recon-api/pkg/errors"
)

// Key layout for the snapshot cache. Everything this service caches lives
// under the payments: prefix so invalidation is a single pattern sweep.
const (
	snapshotKey     = "payments:snapshot"
	snapshotPattern = "payments:*"
)

// SnapshotRepository caches the published payment record set in Redis so
// repeated reads between reconciliation passes skip the in-memory state and
// its lock entirely.
type SnapshotRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewSnapshotRepository constructs a snapshot repository.
func NewSnapshotRepository(client *redis.Client, logger *zap.Logger) *SnapshotRepository {
	return &SnapshotRepository{client: client, logger: logger}
}

// GetRecords returns the cached record set, or ErrCacheMiss when absent.
func (r *SnapshotRepository) GetRecords(ctx context.Context) ([]models.PaymentRecord, error) {
	if r.client == nil {
		return nil, appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", snapshotKey, err)
	}

	var records []models.PaymentRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return records, nil
}

// SetRecords stores the record set with the given TTL.
func (r *SnapshotRepository) SetRecords(ctx context.Context, records []models.PaymentRecord, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := r.client.Set(ctx, snapshotKey, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", snapshotKey, err)
	}
	return nil
}

// Invalidate drops every cached payments entry. Called after each publish
// and each confirmed update so readers never see a stale snapshot.
func (r *SnapshotRepository) Invalidate(ctx context.Context) error {
	if r.client == nil {
		return nil
	}

	iter := r.client.Scan(ctx, 0, snapshotPattern, 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("redis delete %s: %w", key, err)
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan pattern %s: %w", snapshotPattern, err)
	}
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *SnapshotRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
