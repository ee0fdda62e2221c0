package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/hashadar/fintracker-v2/internal/domain"
	"github.com/hashadar/fintracker-v2/internal/storage"
)

// AllocationStore is an in-memory implementation of storage.AllocationStore.
type AllocationStore struct {
	mu   sync.RWMutex
	data map[string]*domain.AllocationRecord // keyed by asset symbol
}

// NewAllocationStore creates a new in-memory allocation store.
func NewAllocationStore() *AllocationStore {
	return &AllocationStore{data: make(map[string]*domain.AllocationRecord)}
}

// Compile-time interface check.
var _ storage.AllocationStore = (*AllocationStore)(nil)

// InsertBulk adds multiple records. Fails entire batch on duplicate asset symbol.
func (s *AllocationStore) InsertBulk(_ context.Context, records []*domain.AllocationRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r == nil || r.AssetSymbol == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[r.AssetSymbol]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[r.AssetSymbol]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[r.AssetSymbol] = struct{}{}
	}

	for _, r := range records {
		cp := *r
		s.data[r.AssetSymbol] = &cp
	}
	return nil
}

// GetAll retrieves all records, ordered by allocation rank ASC.
func (s *AllocationStore) GetAll(_ context.Context) ([]*domain.AllocationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.AllocationRecord, 0, len(s.data))
	for _, r := range s.data {
		cp := *r
		result = append(result, &cp)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].AllocationRank != result[j].AllocationRank {
			return result[i].AllocationRank < result[j].AllocationRank
		}
		return result[i].AssetSymbol < result[j].AssetSymbol
	})
	return result, nil
}
