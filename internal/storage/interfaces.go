package storage

import (
	"context"

	"github.com/hashadar/fintracker-v2/internal/domain"
)

// Input stores feed the analytics engine. The engine only reads them; the
// extraction collaborators own their population.

// PositionStore provides access to current position storage.
type PositionStore interface {
	// InsertBulk adds multiple positions. Returns ErrDuplicateKey on a
	// repeated asset symbol (intra-batch or existing).
	InsertBulk(ctx context.Context, positions []*domain.Position) error

	// GetAll retrieves all positions, ordered by current value descending.
	GetAll(ctx context.Context) ([]*domain.Position, error)
}

// PricePointStore provides access to price history storage.
type PricePointStore interface {
	// InsertBulk adds multiple points. Returns ErrDuplicateKey on a repeated
	// (asset, timestamp) pair.
	InsertBulk(ctx context.Context, points []*domain.PricePoint) error

	// GetAll retrieves all points, ordered by timestamp then asset ASC.
	GetAll(ctx context.Context) ([]*domain.PricePoint, error)

	// GetByAsset retrieves all points for one asset, ordered by timestamp ASC.
	GetByAsset(ctx context.Context, assetSymbol string) ([]*domain.PricePoint, error)
}

// PensionEventStore provides access to the per-platform pension event logs.
// Contributions and valuations are independent streams distinguished by kind.
type PensionEventStore interface {
	// InsertBulk adds multiple events. Returns ErrDuplicateKey on a repeated
	// (platform, kind, timestamp) triple.
	InsertBulk(ctx context.Context, events []*domain.PensionEvent) error

	// GetByPlatform retrieves one platform's events of one kind, ordered by
	// timestamp ASC.
	GetByPlatform(ctx context.Context, platform string, kind domain.PensionEventKind) ([]*domain.PensionEvent, error)

	// ListPlatforms returns the distinct platforms present, sorted ASC.
	ListPlatforms(ctx context.Context) ([]string, error)
}

// Output stores persist the derived artifacts of a run.

// SnapshotStore provides access to portfolio_snapshots storage.
type SnapshotStore interface {
	// InsertBulk adds multiple snapshots. Returns ErrDuplicateKey on a
	// repeated timestamp.
	InsertBulk(ctx context.Context, snapshots []*domain.PortfolioSnapshot) error

	// GetAll retrieves all snapshots, ordered by timestamp ASC.
	GetAll(ctx context.Context) ([]*domain.PortfolioSnapshot, error)
}

// PnLStore provides access to pnl_tracking storage.
type PnLStore interface {
	// InsertBulk adds multiple records. Returns ErrDuplicateKey on a repeated
	// timestamp.
	InsertBulk(ctx context.Context, records []*domain.PnLRecord) error

	// GetAll retrieves all records, ordered by timestamp ASC.
	GetAll(ctx context.Context) ([]*domain.PnLRecord, error)
}

// PerformanceStore provides access to performance_metrics storage.
type PerformanceStore interface {
	// InsertBulk adds multiple records. Returns ErrDuplicateKey on a repeated
	// timestamp.
	InsertBulk(ctx context.Context, records []*domain.PerformanceRecord) error

	// GetAll retrieves all records, ordered by timestamp ASC.
	GetAll(ctx context.Context) ([]*domain.PerformanceRecord, error)
}

// RiskStore provides access to risk_metrics storage.
type RiskStore interface {
	// InsertBulk adds multiple records. Returns ErrDuplicateKey on a repeated
	// timestamp.
	InsertBulk(ctx context.Context, records []*domain.RiskRecord) error

	// GetAll retrieves all records, ordered by timestamp ASC.
	GetAll(ctx context.Context) ([]*domain.RiskRecord, error)
}

// AllocationStore provides access to allocation_analysis storage.
type AllocationStore interface {
	// InsertBulk adds multiple records. Returns ErrDuplicateKey on a repeated
	// asset symbol.
	InsertBulk(ctx context.Context, records []*domain.AllocationRecord) error

	// GetAll retrieves all records, ordered by allocation rank ASC.
	GetAll(ctx context.Context) ([]*domain.AllocationRecord, error)
}

// CorrelationStore provides access to correlation_metrics storage.
type CorrelationStore interface {
	// Insert adds one result.
	Insert(ctx context.Context, result *domain.CorrelationResult) error

	// GetLatest retrieves the most recently calculated result. Returns
	// ErrNotFound if none exists.
	GetLatest(ctx context.Context) (*domain.CorrelationResult, error)
}

// InsightStore provides access to market_insights storage.
type InsightStore interface {
	// InsertBulk adds multiple insights. Returns ErrDuplicateKey on a
	// repeated asset symbol.
	InsertBulk(ctx context.Context, insights []*domain.MarketInsight) error

	// GetAll retrieves all insights, ordered by asset symbol ASC.
	GetAll(ctx context.Context) ([]*domain.MarketInsight, error)
}

// PensionTimeseriesStore provides access to the reconciled per-platform
// pension timeseries.
type PensionTimeseriesStore interface {
	// InsertBulk adds multiple records. Returns ErrDuplicateKey on a repeated
	// (platform, timestamp) pair.
	InsertBulk(ctx context.Context, records []*domain.PensionTimeseriesRecord) error

	// GetByPlatform retrieves one platform's series, ordered by timestamp ASC.
	GetByPlatform(ctx context.Context, platform string) ([]*domain.PensionTimeseriesRecord, error)

	// ListPlatforms returns the distinct platforms present, sorted ASC.
	ListPlatforms(ctx context.Context) ([]string, error)
}
