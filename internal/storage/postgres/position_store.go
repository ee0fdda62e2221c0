package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hashadar/fintracker-v2/internal/domain"
	"github.com/hashadar/fintracker-v2/internal/storage"
)

// PositionStore implements storage.PositionStore using PostgreSQL.
type PositionStore struct {
	pool *Pool
}

// NewPositionStore creates a new PositionStore.
func NewPositionStore(pool *Pool) *PositionStore {
	return &PositionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PositionStore = (*PositionStore)(nil)

// InsertBulk adds multiple positions atomically. Fails entire batch on any duplicate.
func (s *PositionStore) InsertBulk(ctx context.Context, positions []*domain.Position) error {
	if len(positions) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO positions (
			asset_symbol, quantity, average_cost, current_value, unrealized_pnl,
			allocation_pct, cost_basis, unrealized_pnl_pct
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for _, p := range positions {
		_, err := tx.Exec(ctx, query,
			p.AssetSymbol,
			p.Quantity,
			p.AverageCost,
			p.CurrentValue,
			p.UnrealizedPnL,
			p.AllocationPct,
			p.CostBasis,
			p.UnrealizedPnLPct,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert position in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetAll retrieves all positions, ordered by current value descending.
func (s *PositionStore) GetAll(ctx context.Context) ([]*domain.Position, error) {
	query := `
		SELECT asset_symbol, quantity, average_cost, current_value, unrealized_pnl,
			allocation_pct, cost_basis, unrealized_pnl_pct
		FROM positions
		ORDER BY current_value DESC, asset_symbol ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all positions: %w", err)
	}
	defer rows.Close()

	return scanPositions(rows)
}

// scanPositions scans multiple rows into a slice of Position.
func scanPositions(rows pgx.Rows) ([]*domain.Position, error) {
	var positions []*domain.Position

	for rows.Next() {
		var p domain.Position

		err := rows.Scan(
			&p.AssetSymbol,
			&p.Quantity,
			&p.AverageCost,
			&p.CurrentValue,
			&p.UnrealizedPnL,
			&p.AllocationPct,
			&p.CostBasis,
			&p.UnrealizedPnLPct,
		)
		if err != nil {
			return nil, fmt.Errorf("scan position row: %w", err)
		}

		positions = append(positions, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate position rows: %w", err)
	}

	return positions, nil
}
