// Package orchestrator provides batch run coordination.
// It coordinates: load inputs → transform → analytics → pension reconciliation.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hashadar/fintracker-v2/internal/analytics"
	"github.com/hashadar/fintracker-v2/internal/domain"
	"github.com/hashadar/fintracker-v2/internal/pension"
	"github.com/hashadar/fintracker-v2/internal/storage"
	"github.com/hashadar/fintracker-v2/internal/transform"
)

// Orchestrator coordinates one batch analytics run.
type Orchestrator struct {
	// Input stores
	positionStore     storage.PositionStore
	pricePointStore   storage.PricePointStore
	pensionEventStore storage.PensionEventStore

	// Output stores
	snapshotStore          storage.SnapshotStore
	pnlStore               storage.PnLStore
	performanceStore       storage.PerformanceStore
	riskStore              storage.RiskStore
	allocationStore        storage.AllocationStore
	correlationStore       storage.CorrelationStore
	insightStore           storage.InsightStore
	pensionTimeseriesStore storage.PensionTimeseriesStore

	riskFreeRate float64
	logger       *zap.Logger
}

// Options for creating Orchestrator.
type Options struct {
	// Required input stores
	PositionStore     storage.PositionStore
	PricePointStore   storage.PricePointStore
	PensionEventStore storage.PensionEventStore

	// Required output stores
	SnapshotStore          storage.SnapshotStore
	PnLStore               storage.PnLStore
	PerformanceStore       storage.PerformanceStore
	RiskStore              storage.RiskStore
	AllocationStore        storage.AllocationStore
	CorrelationStore       storage.CorrelationStore
	InsightStore           storage.InsightStore
	PensionTimeseriesStore storage.PensionTimeseriesStore

	// RiskFreeRate is the annual risk-free rate used by the performance and
	// risk analyzers. Zero means domain.DefaultRiskFreeRate.
	RiskFreeRate float64

	Logger *zap.Logger
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	rate := opts.RiskFreeRate
	if rate == 0 {
		rate = domain.DefaultRiskFreeRate
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		positionStore:          opts.PositionStore,
		pricePointStore:        opts.PricePointStore,
		pensionEventStore:      opts.PensionEventStore,
		snapshotStore:          opts.SnapshotStore,
		pnlStore:               opts.PnLStore,
		performanceStore:       opts.PerformanceStore,
		riskStore:              opts.RiskStore,
		allocationStore:        opts.AllocationStore,
		correlationStore:       opts.CorrelationStore,
		insightStore:           opts.InsightStore,
		pensionTimeseriesStore: opts.PensionTimeseriesStore,
		riskFreeRate:           rate,
		logger:                 logger,
	}
}

// RunResult contains results from orchestrator execution.
type RunResult struct {
	PositionsLoaded    int
	PricePointsLoaded  int
	SnapshotsCreated   int
	PnLRecordsCreated  int
	PerformanceRecords int
	RiskRecords        int
	AllocationRecords  int
	InsightsCreated    int
	PlatformsProcessed int
	PlatformsSkipped   int
	PensionRecords     int
	Errors             []string
}

// Run executes the full batch pipeline.
// Phases:
//  1. Load positions and price history
//  2. Transform (snapshots, PnL) and persist
//  3. Analytics (performance, risk, allocation, correlation, insights) and persist
//  4. Pension reconciliation per platform and persist
//
// A failure in one analyzer or one platform is recorded in the result and the
// run continues. A failure loading inputs or persisting snapshots aborts the run.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}

	// Phase 1: Load inputs
	o.logger.Info("phase 1: loading inputs")
	positions, err := o.positionStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (load positions) failed: %w", err)
	}
	prices, err := o.pricePointStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (load price history) failed: %w", err)
	}
	result.PositionsLoaded = len(positions)
	result.PricePointsLoaded = len(prices)
	o.logger.Info("loaded inputs",
		zap.Int("positions", len(positions)),
		zap.Int("price_points", len(prices)))

	positions = transform.NormalizePositions(positions)
	prices = transform.NormalizePriceHistory(prices)

	// Phase 2: Transform
	o.logger.Info("phase 2: building snapshots and pnl")
	snapshots := transform.BuildSnapshots(positions, prices)
	pnl := transform.TrackPnL(positions, prices)

	if err := o.insertSkipDuplicates(func() error {
		return o.snapshotStore.InsertBulk(ctx, snapshots)
	}); err != nil {
		return nil, fmt.Errorf("phase 2 (persist snapshots) failed: %w", err)
	}
	if err := o.insertSkipDuplicates(func() error {
		return o.pnlStore.InsertBulk(ctx, pnl)
	}); err != nil {
		return nil, fmt.Errorf("phase 2 (persist pnl) failed: %w", err)
	}
	result.SnapshotsCreated = len(snapshots)
	result.PnLRecordsCreated = len(pnl)
	o.logger.Info("transform complete",
		zap.Int("snapshots", len(snapshots)),
		zap.Int("pnl_records", len(pnl)))

	// Phase 3: Analytics
	o.logger.Info("phase 3: running analytics")
	o.runAnalytics(ctx, positions, prices, snapshots, result)

	// Phase 4: Pension reconciliation
	o.logger.Info("phase 4: reconciling pension platforms")
	if err := o.runPension(ctx, result); err != nil {
		return nil, err
	}

	o.logger.Info("run complete",
		zap.Int("snapshots", result.SnapshotsCreated),
		zap.Int("performance_records", result.PerformanceRecords),
		zap.Int("risk_records", result.RiskRecords),
		zap.Int("pension_records", result.PensionRecords),
		zap.Int("errors", len(result.Errors)))

	return result, nil
}

// runAnalytics computes and persists all derived analytics. A failure in one
// analyzer is recorded and the others still run.
func (o *Orchestrator) runAnalytics(ctx context.Context, positions []*domain.Position, prices []*domain.PricePoint, snapshots []*domain.PortfolioSnapshot, result *RunResult) {
	perf := analytics.NewPerformanceAnalyzer(o.riskFreeRate).Analyze(snapshots)
	if err := o.insertSkipDuplicates(func() error {
		return o.performanceStore.InsertBulk(ctx, perf)
	}); err != nil {
		o.recordError(result, "persist performance metrics", err)
	} else {
		result.PerformanceRecords = len(perf)
	}

	risk := analytics.NewRiskAnalyzer(o.riskFreeRate).Analyze(snapshots)
	if err := o.insertSkipDuplicates(func() error {
		return o.riskStore.InsertBulk(ctx, risk)
	}); err != nil {
		o.recordError(result, "persist risk metrics", err)
	} else {
		result.RiskRecords = len(risk)
	}

	allocations := analytics.AnalyzeAllocations(positions)
	if err := o.insertSkipDuplicates(func() error {
		return o.allocationStore.InsertBulk(ctx, allocations)
	}); err != nil {
		o.recordError(result, "persist allocation analysis", err)
	} else {
		result.AllocationRecords = len(allocations)
	}

	correlation := analytics.NewCorrelationAnalyzer().Analyze(prices)
	if err := o.correlationStore.Insert(ctx, correlation); err != nil {
		o.recordError(result, "persist correlation result", err)
	}

	insights := analytics.AnalyzeMarketInsights(prices)
	if err := o.insertSkipDuplicates(func() error {
		return o.insightStore.InsertBulk(ctx, insights)
	}); err != nil {
		o.recordError(result, "persist market insights", err)
	} else {
		result.InsightsCreated = len(insights)
	}
}

// runPension reconciles every platform present in the event store. A platform
// missing either event stream is skipped with a log line; a reconciliation
// failure for one platform is recorded and the others still run.
func (o *Orchestrator) runPension(ctx context.Context, result *RunResult) error {
	platforms, err := o.pensionEventStore.ListPlatforms(ctx)
	if err != nil {
		return fmt.Errorf("phase 4 (list pension platforms) failed: %w", err)
	}

	for _, platform := range platforms {
		contributions, err := o.pensionEventStore.GetByPlatform(ctx, platform, domain.EventContribution)
		if err != nil {
			o.recordError(result, fmt.Sprintf("load contributions for %s", platform), err)
			continue
		}
		valuations, err := o.pensionEventStore.GetByPlatform(ctx, platform, domain.EventValuation)
		if err != nil {
			o.recordError(result, fmt.Sprintf("load valuations for %s", platform), err)
			continue
		}

		if len(contributions) == 0 || len(valuations) == 0 {
			o.logger.Warn("skipping pension platform with incomplete data",
				zap.String("platform", platform),
				zap.Int("contributions", len(contributions)),
				zap.Int("valuations", len(valuations)))
			result.PlatformsSkipped++
			continue
		}

		series := pension.Reconcile(platform, contributions, valuations)
		if err := o.insertSkipDuplicates(func() error {
			return o.pensionTimeseriesStore.InsertBulk(ctx, series)
		}); err != nil {
			o.recordError(result, fmt.Sprintf("persist pension series for %s", platform), err)
			continue
		}
		result.PlatformsProcessed++
		result.PensionRecords += len(series)
	}

	return nil
}

// insertSkipDuplicates runs insert and treats ErrDuplicateKey as success, so a
// re-run over already-persisted inputs is a no-op rather than a failure.
func (o *Orchestrator) insertSkipDuplicates(insert func() error) error {
	if err := insert(); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			o.logger.Warn("artifact already persisted, skipping insert")
			return nil
		}
		return err
	}
	return nil
}

func (o *Orchestrator) recordError(result *RunResult, what string, err error) {
	o.logger.Warn("continuing after failure", zap.String("step", what), zap.Error(err))
	result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", what, err))
}
