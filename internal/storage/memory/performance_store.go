package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/hashadar/fintracker-v2/internal/domain"
	"github.com/hashadar/fintracker-v2/internal/storage"
)

// PerformanceStore is an in-memory implementation of storage.PerformanceStore.
type PerformanceStore struct {
	mu   sync.RWMutex
	data map[int64]*domain.PerformanceRecord // keyed by timestamp
}

// NewPerformanceStore creates a new in-memory performance store.
func NewPerformanceStore() *PerformanceStore {
	return &PerformanceStore{data: make(map[int64]*domain.PerformanceRecord)}
}

// Compile-time interface check.
var _ storage.PerformanceStore = (*PerformanceStore)(nil)

// InsertBulk adds multiple records. Fails entire batch on duplicate timestamp.
func (s *PerformanceStore) InsertBulk(_ context.Context, records []*domain.PerformanceRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[int64]struct{}, len(records))
	for _, r := range records {
		if r == nil {
			return storage.ErrInvalidInput
		}
		key := r.Timestamp.UnixNano()
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, r := range records {
		cp := *r
		s.data[r.Timestamp.UnixNano()] = &cp
	}
	return nil
}

// GetAll retrieves all records, ordered by timestamp ASC.
func (s *PerformanceStore) GetAll(_ context.Context) ([]*domain.PerformanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.PerformanceRecord, 0, len(s.data))
	for _, r := range s.data {
		cp := *r
		result = append(result, &cp)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result, nil
}
