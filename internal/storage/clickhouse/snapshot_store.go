package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/hashadar/fintracker-v2/internal/domain"
	"github.com/hashadar/fintracker-v2/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using ClickHouse.
type SnapshotStore struct {
	conn *Conn
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(conn *Conn) *SnapshotStore {
	return &SnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// InsertBulk adds multiple snapshots. Fails entire batch on duplicate timestamp.
func (s *SnapshotStore) InsertBulk(ctx context.Context, snapshots []*domain.PortfolioSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[int64]struct{})
	for _, snap := range snapshots {
		k := snap.Timestamp.UnixNano()
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, snap := range snapshots {
		exists, err := s.exists(ctx, snap.Timestamp)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO portfolio_snapshots (timestamp, total_value, num_assets)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, snap := range snapshots {
		err = batch.Append(snap.Timestamp, snap.TotalValue, uint32(snap.NumAssets))
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetAll retrieves all snapshots, ordered by timestamp ASC.
func (s *SnapshotStore) GetAll(ctx context.Context) ([]*domain.PortfolioSnapshot, error) {
	query := `
		SELECT timestamp, total_value, num_assets
		FROM portfolio_snapshots
		ORDER BY timestamp ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*domain.PortfolioSnapshot

	for rows.Next() {
		var snap domain.PortfolioSnapshot
		var numAssets uint32

		if err := rows.Scan(&snap.Timestamp, &snap.TotalValue, &numAssets); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		snap.NumAssets = int(numAssets)

		snapshots = append(snapshots, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	return snapshots, nil
}

// exists checks if a snapshot with the given timestamp exists.
func (s *SnapshotStore) exists(ctx context.Context, ts time.Time) (bool, error) {
	query := `
		SELECT count(*) FROM portfolio_snapshots
		WHERE timestamp = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, ts).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
