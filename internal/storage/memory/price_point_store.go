package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hashadar/fintracker-v2/internal/domain"
	"github.com/hashadar/fintracker-v2/internal/storage"
)

// PricePointStore is an in-memory implementation of storage.PricePointStore.
type PricePointStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PricePoint // keyed by (asset, timestamp)
}

// NewPricePointStore creates a new in-memory price point store.
func NewPricePointStore() *PricePointStore {
	return &PricePointStore{data: make(map[string]*domain.PricePoint)}
}

// Compile-time interface check.
var _ storage.PricePointStore = (*PricePointStore)(nil)

func priceKey(assetSymbol string, timestampNs int64) string {
	return fmt.Sprintf("%s|%d", assetSymbol, timestampNs)
}

// InsertBulk adds multiple points. Fails entire batch on duplicate (asset, timestamp).
func (s *PricePointStore) InsertBulk(_ context.Context, points []*domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.AssetSymbol == "" {
			return storage.ErrInvalidInput
		}
		key := priceKey(p.AssetSymbol, p.Timestamp.UnixNano())
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, p := range points {
		cp := *p
		s.data[priceKey(p.AssetSymbol, p.Timestamp.UnixNano())] = &cp
	}
	return nil
}

// GetAll retrieves all points, ordered by timestamp then asset ASC.
func (s *PricePointStore) GetAll(_ context.Context) ([]*domain.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.PricePoint, 0, len(s.data))
	for _, p := range s.data {
		cp := *p
		result = append(result, &cp)
	}
	sortPricePoints(result)
	return result, nil
}

// GetByAsset retrieves all points for one asset, ordered by timestamp ASC.
func (s *PricePointStore) GetByAsset(_ context.Context, assetSymbol string) ([]*domain.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PricePoint
	for _, p := range s.data {
		if p.AssetSymbol == assetSymbol {
			cp := *p
			result = append(result, &cp)
		}
	}
	sortPricePoints(result)
	return result, nil
}

func sortPricePoints(points []*domain.PricePoint) {
	sort.SliceStable(points, func(i, j int) bool {
		if !points[i].Timestamp.Equal(points[j].Timestamp) {
			return points[i].Timestamp.Before(points[j].Timestamp)
		}
		return points[i].AssetSymbol < points[j].AssetSymbol
	})
}
