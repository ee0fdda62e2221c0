package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hashadar/fintracker-v2/internal/domain"
	"github.com/hashadar/fintracker-v2/internal/storage"
)

// PricePointStore implements storage.PricePointStore using PostgreSQL.
type PricePointStore struct {
	pool *Pool
}

// NewPricePointStore creates a new PricePointStore.
func NewPricePointStore(pool *Pool) *PricePointStore {
	return &PricePointStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PricePointStore = (*PricePointStore)(nil)

// InsertBulk adds multiple points atomically. Fails entire batch on any duplicate.
func (s *PricePointStore) InsertBulk(ctx context.Context, points []*domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO price_history (
			asset_symbol, timestamp, open, high, low, close, volume,
			price_range, price_change, price_change_pct
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	for _, p := range points {
		_, err := tx.Exec(ctx, query,
			p.AssetSymbol,
			p.Timestamp,
			p.Open,
			p.High,
			p.Low,
			p.Close,
			p.Volume,
			p.PriceRange,
			p.PriceChange,
			p.PriceChangePct,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert price point in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetAll retrieves all points, ordered by timestamp then asset ASC.
func (s *PricePointStore) GetAll(ctx context.Context) ([]*domain.PricePoint, error) {
	query := `
		SELECT asset_symbol, timestamp, open, high, low, close, volume,
			price_range, price_change, price_change_pct
		FROM price_history
		ORDER BY timestamp ASC, asset_symbol ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all price points: %w", err)
	}
	defer rows.Close()

	return scanPricePoints(rows)
}

// GetByAsset retrieves all points for one asset, ordered by timestamp ASC.
func (s *PricePointStore) GetByAsset(ctx context.Context, assetSymbol string) ([]*domain.PricePoint, error) {
	query := `
		SELECT asset_symbol, timestamp, open, high, low, close, volume,
			price_range, price_change, price_change_pct
		FROM price_history
		WHERE asset_symbol = $1
		ORDER BY timestamp ASC
	`

	rows, err := s.pool.Query(ctx, query, assetSymbol)
	if err != nil {
		return nil, fmt.Errorf("get price points by asset: %w", err)
	}
	defer rows.Close()

	return scanPricePoints(rows)
}

// scanPricePoints scans multiple rows into a slice of PricePoint.
func scanPricePoints(rows pgx.Rows) ([]*domain.PricePoint, error) {
	var points []*domain.PricePoint

	for rows.Next() {
		var p domain.PricePoint

		err := rows.Scan(
			&p.AssetSymbol,
			&p.Timestamp,
			&p.Open,
			&p.High,
			&p.Low,
			&p.Close,
			&p.Volume,
			&p.PriceRange,
			&p.PriceChange,
			&p.PriceChangePct,
		)
		if err != nil {
			return nil, fmt.Errorf("scan price point row: %w", err)
		}

		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price point rows: %w", err)
	}

	return points, nil
}
