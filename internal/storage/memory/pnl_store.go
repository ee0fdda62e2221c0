package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/hashadar/fintracker-v2/internal/domain"
	"github.com/hashadar/fintracker-v2/internal/storage"
)

// PnLStore is an in-memory implementation of storage.PnLStore.
type PnLStore struct {
	mu   sync.RWMutex
	data map[int64]*domain.PnLRecord // keyed by timestamp
}

// NewPnLStore creates a new in-memory PnL store.
func NewPnLStore() *PnLStore {
	return &PnLStore{data: make(map[int64]*domain.PnLRecord)}
}

// Compile-time interface check.
var _ storage.PnLStore = (*PnLStore)(nil)

// InsertBulk adds multiple records. Fails entire batch on duplicate timestamp.
func (s *PnLStore) InsertBulk(_ context.Context, records []*domain.PnLRecord) error {
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
func (s *PnLStore) GetAll(_ context.Context) ([]*domain.PnLRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.PnLRecord, 0, len(s.data))
	for _, r := range s.data {
		cp := *r
		result = append(result, &cp)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result, nil
}
