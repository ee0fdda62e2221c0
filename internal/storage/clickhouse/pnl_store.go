package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/hashadar/fintracker-v2/internal/domain"
	"github.com/hashadar/fintracker-v2/internal/storage"
)

// PnLStore implements storage.PnLStore using ClickHouse.
type PnLStore struct {
	conn *Conn
}

// NewPnLStore creates a new PnLStore.
func NewPnLStore(conn *Conn) *PnLStore {
	return &PnLStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PnLStore = (*PnLStore)(nil)

// InsertBulk adds multiple records. Fails entire batch on duplicate timestamp.
func (s *PnLStore) InsertBulk(ctx context.Context, records []*domain.PnLRecord) error {
	if len(records) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[int64]struct{})
	for _, r := range records {
		k := r.Timestamp.UnixNano()
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, r := range records {
		exists, err := s.exists(ctx, r.Timestamp)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO pnl_tracking (
			timestamp, total_cost_basis, total_current_value, unrealized_pnl, unrealized_pnl_pct
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		err = batch.Append(
			r.Timestamp, r.TotalCostBasis, r.TotalCurrentValue,
			r.UnrealizedPnL, r.UnrealizedPnLPct,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetAll retrieves all records, ordered by timestamp ASC.
func (s *PnLStore) GetAll(ctx context.Context) ([]*domain.PnLRecord, error) {
	query := `
		SELECT timestamp, total_cost_basis, total_current_value, unrealized_pnl, unrealized_pnl_pct
		FROM pnl_tracking
		ORDER BY timestamp ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query pnl records: %w", err)
	}
	defer rows.Close()

	var records []*domain.PnLRecord

	for rows.Next() {
		var r domain.PnLRecord

		err := rows.Scan(
			&r.Timestamp, &r.TotalCostBasis, &r.TotalCurrentValue,
			&r.UnrealizedPnL, &r.UnrealizedPnLPct,
		)
		if err != nil {
			return nil, fmt.Errorf("scan pnl row: %w", err)
		}

		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pnl rows: %w", err)
	}

	return records, nil
}

// exists checks if a record with the given timestamp exists.
func (s *PnLStore) exists(ctx context.Context, ts time.Time) (bool, error) {
	query := `
		SELECT count(*) FROM pnl_tracking
		WHERE timestamp = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, ts).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
