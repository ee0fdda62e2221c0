package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/hashadar/fintracker-v2/internal/domain"
	"github.com/hashadar/fintracker-v2/internal/storage"
)

// PensionTimeseriesStore implements storage.PensionTimeseriesStore using ClickHouse.
// Observed-only fields are stored as Nullable(Float64); nil survives the round trip.
type PensionTimeseriesStore struct {
	conn *Conn
}

// NewPensionTimeseriesStore creates a new PensionTimeseriesStore.
func NewPensionTimeseriesStore(conn *Conn) *PensionTimeseriesStore {
	return &PensionTimeseriesStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PensionTimeseriesStore = (*PensionTimeseriesStore)(nil)

// InsertBulk adds multiple records. Fails entire batch on duplicate (platform, timestamp).
func (s *PensionTimeseriesStore) InsertBulk(ctx context.Context, records []*domain.PensionTimeseriesRecord) error {
	if len(records) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		platform string
		tsNano   int64
	}
	seen := make(map[key]struct{})
	for _, r := range records {
		k := key{r.Platform, r.Timestamp.UnixNano()}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, r := range records {
		exists, err := s.exists(ctx, r.Platform, r.Timestamp)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO pension_timeseries (
			platform, timestamp, cash_invested, observed_value, imputed_value,
			gain_loss_abs, gain_loss_pct, imputed_gain_loss_abs, imputed_gain_loss_pct
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		err = batch.Append(
			r.Platform, r.Timestamp, r.CashInvested, r.ObservedValue, r.ImputedValue,
			r.GainLossAbs, r.GainLossPct, r.ImputedGainLossAbs, r.ImputedGainLossPct,
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

// GetByPlatform retrieves one platform's series, ordered by timestamp ASC.
func (s *PensionTimeseriesStore) GetByPlatform(ctx context.Context, platform string) ([]*domain.PensionTimeseriesRecord, error) {
	query := `
		SELECT platform, timestamp, cash_invested, observed_value, imputed_value,
			gain_loss_abs, gain_loss_pct, imputed_gain_loss_abs, imputed_gain_loss_pct
		FROM pension_timeseries
		WHERE platform = ?
		ORDER BY timestamp ASC
	`

	rows, err := s.conn.Query(ctx, query, platform)
	if err != nil {
		return nil, fmt.Errorf("query pension timeseries: %w", err)
	}
	defer rows.Close()

	var records []*domain.PensionTimeseriesRecord

	for rows.Next() {
		var r domain.PensionTimeseriesRecord

		err := rows.Scan(
			&r.Platform, &r.Timestamp, &r.CashInvested, &r.ObservedValue, &r.ImputedValue,
			&r.GainLossAbs, &r.GainLossPct, &r.ImputedGainLossAbs, &r.ImputedGainLossPct,
		)
		if err != nil {
			return nil, fmt.Errorf("scan pension timeseries row: %w", err)
		}

		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pension timeseries rows: %w", err)
	}

	return records, nil
}

// ListPlatforms returns the distinct platforms present, sorted ASC.
func (s *PensionTimeseriesStore) ListPlatforms(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT platform
		FROM pension_timeseries
		ORDER BY platform ASC
	`

	rows, err := s.conn.Query(ctx, query)
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

// exists checks if a record with the given key exists.
func (s *PensionTimeseriesStore) exists(ctx context.Context, platform string, ts time.Time) (bool, error) {
	query := `
		SELECT count(*) FROM pension_timeseries
		WHERE platform = ? AND timestamp = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, platform, ts).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
