package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-recon-api/internal/models"
	appErrors "github.com/noah-isme/academy-recon-api/pkg/errors"
)

type mockSnapshotStore struct {
	records     []models.PaymentRecord
	getErr      error
	setErr      error
	invalidated int
	lastTTL     time.Duration
}

func (m *mockSnapshotStore) GetRecords(_ context.Context) ([]models.PaymentRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.records, nil
}

func (m *mockSnapshotStore) SetRecords(_ context.Context, records []models.PaymentRecord, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.records = records
	m.lastTTL = ttl
	return nil
}

func (m *mockSnapshotStore) Invalidate(_ context.Context) error {
	m.invalidated++
	m.records = nil
	return nil
}

func TestSnapshotServiceGetHit(t *testing.T) {
	store := &mockSnapshotStore{records: []models.PaymentRecord{{StudentID: "s1", CourseKey: "math-b1"}}}
	svc := NewSnapshotService(SnapshotServiceParams{Store: store})

	records, hit, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	require.Len(t, records, 1)
	assert.Equal(t, "s1", records[0].StudentID)
}

func TestSnapshotServiceGetMiss(t *testing.T) {
	store := &mockSnapshotStore{getErr: appErrors.ErrCacheMiss}
	svc := NewSnapshotService(SnapshotServiceParams{Store: store})

	records, hit, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, records)
}

func TestSnapshotServiceSetUsesDefaultTTL(t *testing.T) {
	store := &mockSnapshotStore{}
	svc := NewSnapshotService(SnapshotServiceParams{Store: store, DefaultTTL: 30 * time.Second})

	err := svc.Set(context.Background(), []models.PaymentRecord{{StudentID: "s1"}})
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, store.lastTTL)
	assert.Len(t, store.records, 1)
}

func TestSnapshotServiceInvalidate(t *testing.T) {
	store := &mockSnapshotStore{records: []models.PaymentRecord{{StudentID: "s1"}}}
	svc := NewSnapshotService(SnapshotServiceParams{Store: store})

	require.NoError(t, svc.Invalidate(context.Background()))
	assert.Equal(t, 1, store.invalidated)
	assert.Empty(t, store.records)
}

func TestSnapshotServiceDisabledWithoutStore(t *testing.T) {
	svc := NewSnapshotService(SnapshotServiceParams{})

	assert.False(t, svc.Enabled())
	records, hit, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, records)
	require.NoError(t, svc.Set(context.Background(), nil))
	require.NoError(t, svc.Invalidate(context.Background()))
}

func TestSnapshotServiceNilIsSafe(t *testing.T) {
	var svc *SnapshotService

	assert.False(t, svc.Enabled())
	_, hit, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
}
