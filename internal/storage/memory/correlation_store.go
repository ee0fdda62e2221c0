package memory

import (
	"context"
	"sync"

	"github.com/hashadar/fintracker-v2/internal/domain"
	"github.com/hashadar/fintracker-v2/internal/storage"
)

// CorrelationStore is an in-memory implementation of storage.CorrelationStore.
type CorrelationStore struct {
	mu      sync.RWMutex
	results []*domain.CorrelationResult // append order, latest last
}

// NewCorrelationStore creates a new in-memory correlation store.
func NewCorrelationStore() *CorrelationStore {
	return &CorrelationStore{}
}

// Compile-time interface check.
var _ storage.CorrelationStore = (*CorrelationStore)(nil)

// Insert adds one result.
func (s *CorrelationStore) Insert(_ context.Context, result *domain.CorrelationResult) error {
	if result == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = append(s.results, copyCorrelationResult(result))
	return nil
}

// GetLatest retrieves the result with the most recent CalculatedAt. Returns
// storage.ErrNotFound when the store is empty.
func (s *CorrelationStore) GetLatest(_ context.Context) (*domain.CorrelationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.results) == 0 {
		return nil, storage.ErrNotFound
	}

	latest := s.results[0]
	for _, r := range s.results[1:] {
		if !r.CalculatedAt.Before(latest.CalculatedAt) {
			latest = r
		}
	}
	return copyCorrelationResult(latest), nil
}

// copyCorrelationResult deep-copies the matrix so callers cannot mutate
// stored state.
func copyCorrelationResult(r *domain.CorrelationResult) *domain.CorrelationResult {
	cp := *r
	if r.Matrix != nil {
		cp.Matrix = make(map[string]map[string]float64, len(r.Matrix))
		for asset, row := range r.Matrix {
			rowCp := make(map[string]float64, len(row))
			for other, coeff := range row {
				rowCp[other] = coeff
			}
			cp.Matrix[asset] = rowCp
		}
	}
	return &cp
}
