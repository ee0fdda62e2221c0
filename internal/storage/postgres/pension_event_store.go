package postgres

import (
	"context"
	"fmt"

	"github.com/hashadar/fintracker-v2/internal/domain"
	"github.com/hashadar/fintracker-v2/internal/storage"
)

// PensionEventStore implements storage.PensionEventStore using PostgreSQL.
type PensionEventStore struct {
	pool *Pool
}

// NewPensionEventStore creates a new PensionEventStore.
func NewPensionEventStore(pool *Pool) *PensionEventStore {
	return &PensionEventStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PensionEventStore = (*PensionEventStore)(nil)

// InsertBulk adds multiple events atomically. Fails entire batch on any duplicate.
func (s *PensionEventStore) InsertBulk(ctx context.Context, events []*domain.PensionEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO pension_events (platform, timestamp, kind, amount)
		VALUES ($1, $2, $3, $4)
	`

	for _, e := range events {
		_, err := tx.Exec(ctx, query,
			e.Platform,
			e.Timestamp,
			string(e.Kind),
			e.Amount,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert pension event in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByPlatform retrieves one platform's events of one kind, ordered by timestamp ASC.
func (s *PensionEventStore) GetByPlatform(ctx context.Context, platform string, kind domain.PensionEventKind) ([]*domain.PensionEvent, error) {
	query := `
		SELECT platform, timestamp, kind, amount
		FROM pension_events
		WHERE platform = $1 AND kind = $2
		ORDER BY timestamp ASC
	`

	rows, err := s.pool.Query(ctx, query, platform, string(kind))
	if err != nil {
		return nil, fmt.Errorf("get pension events by platform: %w", err)
	}
	defer rows.Close()

	var events []*domain.PensionEvent

	for rows.Next() {
		var e domain.PensionEvent
		var k string

		if err := rows.Scan(&e.Platform, &e.Timestamp, &k, &e.Amount); err != nil {
			return nil, fmt.Errorf("scan pension event row: %w", err)
		}
		e.Kind = domain.PensionEventKind(k)

		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pension event rows: %w", err)
	}

	return events, nil
}

// ListPlatforms returns the distinct platforms present, sorted ASC.
func (s *PensionEventStore) ListPlatforms(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT platform
		FROM pension_events
		ORDER BY platform ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pension platforms: %w", err)
	}
	defer rows.Close()

	var platforms []string

	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan platform row: %w", err)
		}
		platforms = append(platforms, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate platform rows: %w", err)
	}

	return platforms, nil
}
