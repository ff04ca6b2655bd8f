package service

import (
	"sync"
	"time"

	"github.com/noah-isme/academy-recon-api/internal/models"
)

// AcceptedBatchState holds the last batch of records the system is willing
// to show. It is the sole in-memory state: empty after a restart until the
// first successful pass. Readers always observe a fully-formed batch; the
// publish step is the only whole-batch mutation.
type AcceptedBatchState struct {
	mu          sync.RWMutex
	records     []models.PaymentRecord
	index       map[string]int
	publishedAt time.Time
}

// NewAcceptedBatchState returns an empty state.
func NewAcceptedBatchState() *AcceptedBatchState {
	return &AcceptedBatchState{index: make(map[string]int)}
}

// Snapshot returns a copy of the published records.
func (s *AcceptedBatchState) Snapshot() []models.PaymentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.PaymentRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Publish replaces the accepted batch atomically.
func (s *AcceptedBatchState) Publish(records []models.PaymentRecord) {
	index := make(map[string]int, len(records))
	for i, record := range records {
		index[record.Key()] = i
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.index = index
	s.publishedAt = time.Now().UTC()
}

// Get returns the record for the composite key.
func (s *AcceptedBatchState) Get(key string) (models.PaymentRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[key]
	if !ok {
		return models.PaymentRecord{}, false
	}
	return s.records[i], true
}

// Replace swaps a single record in place, used by the optimistic update
// path and its rollback. It reports whether the key was present.
func (s *AcceptedBatchState) Replace(key string, record models.PaymentRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[key]
	if !ok {
		return false
	}
	s.records[i] = record
	return true
}

// Len returns the published record count.
func (s *AcceptedBatchState) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// PublishedAt returns the time of the last publish, zero when empty.
func (s *AcceptedBatchState) PublishedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.publishedAt
}
