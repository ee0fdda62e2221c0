package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/hashadar/fintracker-v2/internal/domain"
	"github.com/hashadar/fintracker-v2/internal/storage"
)

// RiskStore implements storage.RiskStore using ClickHouse.
// Windowed fields are stored as Nullable(Float64); nil survives the round trip.
type RiskStore struct {
	conn *Conn
}

// NewRiskStore creates a new RiskStore.
func NewRiskStore(conn *Conn) *RiskStore {
	return &RiskStore{conn: conn}
}

// Compile-time interface check.
var _ storage.RiskStore = (*RiskStore)(nil)

// InsertBulk adds multiple records. Fails entire batch on duplicate timestamp.
func (s *RiskStore) InsertBulk(ctx context.Context, records []*domain.RiskRecord) error {
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
		INSERT INTO risk_metrics (
			timestamp, var_95, cvar_95, downside_deviation, sortino_ratio,
			calmar_ratio, information_ratio, volatility_30d, max_drawdown
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		err = batch.Append(
			r.Timestamp, r.VaR95, r.CVaR95, r.DownsideDeviation, r.SortinoRatio,
			r.CalmarRatio, r.InformationRatio, r.Volatility30, r.MaxDrawdown,
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
func (s *RiskStore) GetAll(ctx context.Context) ([]*domain.RiskRecord, error) {
	query := `
		SELECT timestamp, var_95, cvar_95, downside_deviation, sortino_ratio,
			calmar_ratio, information_ratio, volatility_30d, max_drawdown
		FROM risk_metrics
		ORDER BY timestamp ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query risk records: %w", err)
	}
	defer rows.Close()

	var records []*domain.RiskRecord

	for rows.Next() {
		var r domain.RiskRecord

		err := rows.Scan(
			&r.Timestamp, &r.VaR95, &r.CVaR95, &r.DownsideDeviation, &r.SortinoRatio,
			&r.CalmarRatio, &r.InformationRatio, &r.Volatility30, &r.MaxDrawdown,
		)
		if err != nil {
			return nil, fmt.Errorf("scan risk row: %w", err)
		}

		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate risk rows: %w", err)
	}

	return records, nil
}

// exists checks if a record with the given timestamp exists.
func (s *RiskStore) exists(ctx context.Context, ts time.Time) (bool, error) {
	query := `
		SELECT count(*) FROM risk_metrics
		WHERE timestamp = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, ts).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
