package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hashadar/fintracker-v2/internal/domain"
	"github.com/hashadar/fintracker-v2/internal/storage"
)

// PensionEventStore is an in-memory implementation of storage.PensionEventStore.
type PensionEventStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PensionEvent // keyed by (platform, kind, timestamp)
}

// NewPensionEventStore creates a new in-memory pension event store.
func NewPensionEventStore() *PensionEventStore {
	return &PensionEventStore{data: make(map[string]*domain.PensionEvent)}
}

// Compile-time interface check.
var _ storage.PensionEventStore = (*PensionEventStore)(nil)

func pensionEventKey(platform string, kind domain.PensionEventKind, timestampNs int64) string {
	return fmt.Sprintf("%s|%s|%d", platform, kind, timestampNs)
}

// InsertBulk adds multiple events. Fails entire batch on duplicate (platform, kind, timestamp).
func (s *PensionEventStore) InsertBulk(_ context.Context, events []*domain.PensionEvent) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(events))
	for _, e := range events {
		if e == nil || e.Platform == "" || e.Kind == "" {
			return storage.ErrInvalidInput
		}
		key := pensionEventKey(e.Platform, e.Kind, e.Timestamp.UnixNano())
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, e := range events {
		cp := *e
		s.data[pensionEventKey(e.Platform, e.Kind, e.Timestamp.UnixNano())] = &cp
	}
	return nil
}

// GetByPlatform retrieves one platform's events of one kind, ordered by timestamp ASC.
func (s *PensionEventStore) GetByPlatform(_ context.Context, platform string, kind domain.PensionEventKind) ([]*domain.PensionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PensionEvent
	for _, e := range s.data {
		if e.Platform == platform && e.Kind == kind {
			cp := *e
			result = append(result, &cp)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result, nil
}

// ListPlatforms returns the distinct platforms present, sorted ASC.
func (s *PensionEventStore) ListPlatforms(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, e := range s.data {
		seen[e.Platform] = struct{}{}
	}

	platforms := make([]string, 0, len(seen))
	for p := range seen {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)
	return platforms, nil
}
