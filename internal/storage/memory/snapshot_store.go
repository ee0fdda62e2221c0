package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/hashadar/fintracker-v2/internal/domain"
	"github.com/hashadar/fintracker-v2/internal/storage"
)

// SnapshotStore is an in-memory implementation of storage.SnapshotStore.
type SnapshotStore struct {
	mu   sync.RWMutex
	data map[int64]*domain.PortfolioSnapshot // keyed by timestamp
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{data: make(map[int64]*domain.PortfolioSnapshot)}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// InsertBulk adds multiple snapshots. Fails entire batch on duplicate timestamp.
func (s *SnapshotStore) InsertBulk(_ context.Context, snapshots []*domain.PortfolioSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[int64]struct{}, len(snapshots))
	for _, snap := range snapshots {
		if snap == nil {
			return storage.ErrInvalidInput
		}
		key := snap.Timestamp.UnixNano()
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, snap := range snapshots {
		cp := *snap
		s.data[snap.Timestamp.UnixNano()] = &cp
	}
	return nil
}

// GetAll retrieves all snapshots, ordered by timestamp ASC.
func (s *SnapshotStore) GetAll(_ context.Context) ([]*domain.PortfolioSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.PortfolioSnapshot, 0, len(s.data))
	for _, snap := range s.data {
		cp := *snap
		result = append(result, &cp)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result, nil
}
