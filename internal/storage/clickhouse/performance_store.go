package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/hashadar/fintracker-v2/internal/domain"
	"github.com/hashadar/fintracker-v2/internal/storage"
)

// PerformanceStore implements storage.PerformanceStore using ClickHouse.
// Windowed fields are stored as Nullable(Float64); nil survives the round trip.
type PerformanceStore struct {
	conn *Conn
}

// NewPerformanceStore creates a new PerformanceStore.
func NewPerformanceStore(conn *Conn) *PerformanceStore {
	return &PerformanceStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PerformanceStore = (*PerformanceStore)(nil)

// InsertBulk adds multiple records. Fails entire batch on duplicate timestamp.
func (s *PerformanceStore) InsertBulk(ctx context.Context, records []*domain.PerformanceRecord) error {
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
		INSERT INTO performance_metrics (
			timestamp, total_value, daily_return, cumulative_return,
			volatility_30d, sharpe_ratio, peak, drawdown, max_drawdown, beta, alpha
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		err = batch.Append(
			r.Timestamp, r.TotalValue, r.DailyReturn, r.CumulativeReturn,
			r.Volatility30, r.SharpeRatio, r.Peak, r.Drawdown, r.MaxDrawdown,
			r.Beta, r.Alpha,
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
func (s *PerformanceStore) GetAll(ctx context.Context) ([]*domain.PerformanceRecord, error) {
	query := `
		SELECT timestamp, total_value, daily_return, cumulative_return,
			volatility_30d, sharpe_ratio, peak, drawdown, max_drawdown, beta, alpha
		FROM performance_metrics
		ORDER BY timestamp ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query performance records: %w", err)
	}
	defer rows.Close()

	var records []*domain.PerformanceRecord

	for rows.Next() {
		var r domain.PerformanceRecord

		err := rows.Scan(
			&r.Timestamp, &r.TotalValue, &r.DailyReturn, &r.CumulativeReturn,
			&r.Volatility30, &r.SharpeRatio, &r.Peak, &r.Drawdown, &r.MaxDrawdown,
			&r.Beta, &r.Alpha,
		)
		if err != nil {
			return nil, fmt.Errorf("scan performance row: %w", err)
		}

		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate performance rows: %w", err)
	}

	return records, nil
}

// exists checks if a record with the given timestamp exists.
func (s *PerformanceStore) exists(ctx context.Context, ts time.Time) (bool, error) {
	query := `
		SELECT count(*) FROM performance_metrics
		WHERE timestamp = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, ts).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
