package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/hashadar/fintracker-v2/internal/domain"
	"github.com/hashadar/fintracker-v2/internal/storage"
)

// PositionStore is an in-memory implementation of storage.PositionStore.
type PositionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Position // keyed by asset symbol
}

// NewPositionStore creates a new in-memory position store.
func NewPositionStore() *PositionStore {
	return &PositionStore{data: make(map[string]*domain.Position)}
}

// Compile-time interface check.
var _ storage.PositionStore = (*PositionStore)(nil)

// InsertBulk adds multiple positions. Fails entire batch on duplicate asset symbol.
func (s *PositionStore) InsertBulk(_ context.Context, positions []*domain.Position) error {
	if len(positions) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(positions))
	for _, p := range positions {
		if p == nil || p.AssetSymbol == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[p.AssetSymbol]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[p.AssetSymbol]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[p.AssetSymbol] = struct{}{}
	}

	for _, p := range positions {
		cp := *p
		s.data[p.AssetSymbol] = &cp
	}
	return nil
}

// GetAll retrieves all positions, ordered by current value descending.
func (s *PositionStore) GetAll(_ context.Context) ([]*domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Position, 0, len(s.data))
	for _, p := range s.data {
		cp := *p
		result = append(result, &cp)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CurrentValue != result[j].CurrentValue {
			return result[i].CurrentValue > result[j].CurrentValue
		}
		return result[i].AssetSymbol < result[j].AssetSymbol
	})
	return result, nil
}
