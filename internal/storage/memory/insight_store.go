package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/hashadar/fintracker-v2/internal/domain"
	"github.com/hashadar/fintracker-v2/internal/storage"
)

// InsightStore is an in-memory implementation of storage.InsightStore.
type InsightStore struct {
	mu   sync.RWMutex
	data map[string]*domain.MarketInsight // keyed by asset symbol
}

// NewInsightStore creates a new in-memory insight store.
func NewInsightStore() *InsightStore {
	return &InsightStore{data: make(map[string]*domain.MarketInsight)}
}

// Compile-time interface check.
var _ storage.InsightStore = (*InsightStore)(nil)

// InsertBulk adds multiple insights. Fails entire batch on duplicate asset symbol.
func (s *InsightStore) InsertBulk(_ context.Context, insights []*domain.MarketInsight) error {
	if len(insights) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(insights))
	for _, in := range insights {
		if in == nil || in.AssetSymbol == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[in.AssetSymbol]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[in.AssetSymbol]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[in.AssetSymbol] = struct{}{}
	}

	for _, in := range insights {
		cp := *in
		s.data[in.AssetSymbol] = &cp
	}
	return nil
}

// GetAll retrieves all insights, ordered by asset symbol ASC.
func (s *InsightStore) GetAll(_ context.Context) ([]*domain.MarketInsight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.MarketInsight, 0, len(s.data))
	for _, in := range s.data {
		cp := *in
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AssetSymbol < result[j].AssetSymbol
	})
	return result, nil
}
