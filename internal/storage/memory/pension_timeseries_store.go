package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hashadar/fintracker-v2/internal/domain"
	"github.com/hashadar/fintracker-v2/internal/storage"
)

// PensionTimeseriesStore is an in-memory implementation of
// storage.PensionTimeseriesStore.
type PensionTimeseriesStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PensionTimeseriesRecord // keyed by "platform|tsNano"
}

// NewPensionTimeseriesStore creates a new in-memory pension timeseries store.
func NewPensionTimeseriesStore() *PensionTimeseriesStore {
	return &PensionTimeseriesStore{data: make(map[string]*domain.PensionTimeseriesRecord)}
}

// Compile-time interface check.
var _ storage.PensionTimeseriesStore = (*PensionTimeseriesStore)(nil)

func pensionTimeseriesKey(r *domain.PensionTimeseriesRecord) string {
	return fmt.Sprintf("%s|%d", r.Platform, r.Timestamp.UnixNano())
}

// InsertBulk adds multiple records. Fails entire batch on duplicate
// (platform, timestamp) pair.
func (s *PensionTimeseriesStore) InsertBulk(_ context.Context, records []*domain.PensionTimeseriesRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r == nil || r.Platform == "" {
			return storage.ErrInvalidInput
		}
		key := pensionTimeseriesKey(r)
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
		s.data[pensionTimeseriesKey(r)] = &cp
	}
	return nil
}

// GetByPlatform retrieves one platform's series, ordered by timestamp ASC.
func (s *PensionTimeseriesStore) GetByPlatform(_ context.Context, platform string) ([]*domain.PensionTimeseriesRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PensionTimeseriesRecord
	for _, r := range s.data {
		if r.Platform == platform {
			cp := *r
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result, nil
}

// ListPlatforms returns the distinct platforms present, sorted ASC.
func (s *PensionTimeseriesStore) ListPlatforms(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, r := range s.data {
		seen[r.Platform] = struct{}{}
	}
	platforms := make([]string, 0, len(seen))
	for p := range seen {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)
	return platforms, nil
}
