package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/hashadar/fintracker-v2/internal/domain"
	"github.com/hashadar/fintracker-v2/internal/storage/memory"
)

type testStores struct {
	positions *memory.PositionStore
	prices    *memory.PricePointStore
	pensions  *memory.PensionEventStore
	snapshots *memory.SnapshotStore
	pnl       *memory.PnLStore
	perf      *memory.PerformanceStore
	risk      *memory.RiskStore
	alloc     *memory.AllocationStore
	corr      *memory.CorrelationStore
	insights  *memory.InsightStore
	pensionTS *memory.PensionTimeseriesStore
}

func newTestStores() *testStores {
	return &testStores{
		positions: memory.NewPositionStore(),
		prices:    memory.NewPricePointStore(),
		pensions:  memory.NewPensionEventStore(),
		snapshots: memory.NewSnapshotStore(),
		pnl:       memory.NewPnLStore(),
		perf:      memory.NewPerformanceStore(),
		risk:      memory.NewRiskStore(),
		alloc:     memory.NewAllocationStore(),
		corr:      memory.NewCorrelationStore(),
		insights:  memory.NewInsightStore(),
		pensionTS: memory.NewPensionTimeseriesStore(),
	}
}

func (s *testStores) orchestrator() *Orchestrator {
	return New(Options{
		PositionStore:          s.positions,
		PricePointStore:        s.prices,
		PensionEventStore:      s.pensions,
		SnapshotStore:          s.snapshots,
		PnLStore:               s.pnl,
		PerformanceStore:       s.perf,
		RiskStore:              s.risk,
		AllocationStore:        s.alloc,
		CorrelationStore:       s.corr,
		InsightStore:           s.insights,
		PensionTimeseriesStore: s.pensionTS,
	})
}

func ts(day int) time.Time {
	return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
}

func seedInputs(t *testing.T, ctx context.Context, s *testStores) {
	t.Helper()

	err := s.positions.InsertBulk(ctx, []*domain.Position{
		{AssetSymbol: "BTC", Quantity: 1, AverageCost: 20000, CurrentValue: 30000, UnrealizedPnL: 10000, AllocationPct: 60},
		{AssetSymbol: "ETH", Quantity: 10, AverageCost: 1000, CurrentValue: 20000, UnrealizedPnL: 10000, AllocationPct: 40},
	})
	if err != nil {
		t.Fatalf("Seed positions failed: %v", err)
	}

	var prices []*domain.PricePoint
	for d := 1; d <= 5; d++ {
		btc := 25000 + float64(d)*1000
		prices = append(prices,
			&domain.PricePoint{AssetSymbol: "BTC", Timestamp: ts(d), Open: btc, High: btc, Low: btc, Close: btc},
			&domain.PricePoint{AssetSymbol: "ETH", Timestamp: ts(d), Open: 2000, High: 2000, Low: 2000, Close: 2000},
		)
	}
	if err := s.prices.InsertBulk(ctx, prices); err != nil {
		t.Fatalf("Seed prices failed: %v", err)
	}

	err = s.pensions.InsertBulk(ctx, []*domain.PensionEvent{
		{Platform: "aviva", Timestamp: ts(1), Kind: domain.EventContribution, Amount: 1000},
		{Platform: "aviva", Timestamp: ts(5), Kind: domain.EventValuation, Amount: 1100},
		{Platform: "nest", Timestamp: ts(1), Kind: domain.EventContribution, Amount: 500},
		// nest has no valuation, so it must be skipped.
	})
	if err != nil {
		t.Fatalf("Seed pension events failed: %v", err)
	}
}

func TestOrchestrator_Run(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores()
	seedInputs(t, ctx, stores)

	result, err := stores.orchestrator().Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.PositionsLoaded != 2 {
		t.Errorf("PositionsLoaded: got %d, want 2", result.PositionsLoaded)
	}
	if result.PricePointsLoaded != 10 {
		t.Errorf("PricePointsLoaded: got %d, want 10", result.PricePointsLoaded)
	}
	if result.SnapshotsCreated != 5 {
		t.Errorf("SnapshotsCreated: got %d, want 5", result.SnapshotsCreated)
	}
	if result.PnLRecordsCreated != 5 {
		t.Errorf("PnLRecordsCreated: got %d, want 5", result.PnLRecordsCreated)
	}
	if result.PerformanceRecords != 5 {
		t.Errorf("PerformanceRecords: got %d, want 5", result.PerformanceRecords)
	}
	if result.RiskRecords != 5 {
		t.Errorf("RiskRecords: got %d, want 5", result.RiskRecords)
	}
	if result.AllocationRecords != 2 {
		t.Errorf("AllocationRecords: got %d, want 2", result.AllocationRecords)
	}
	// Both assets have under 30 observations, so no insights are produced.
	if result.InsightsCreated != 0 {
		t.Errorf("InsightsCreated: got %d, want 0", result.InsightsCreated)
	}
	if result.PlatformsProcessed != 1 {
		t.Errorf("PlatformsProcessed: got %d, want 1", result.PlatformsProcessed)
	}
	if result.PlatformsSkipped != 1 {
		t.Errorf("PlatformsSkipped: got %d, want 1", result.PlatformsSkipped)
	}
	if result.PensionRecords != 2 {
		t.Errorf("PensionRecords: got %d, want 2", result.PensionRecords)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors: got %v, want none", result.Errors)
	}

	// Derived artifacts land in their stores.
	snapshots, err := stores.snapshots.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll snapshots failed: %v", err)
	}
	if len(snapshots) != 5 {
		t.Fatalf("Stored snapshots: got %d, want 5", len(snapshots))
	}
	// Day 1: 1 BTC at 26000 + 10 ETH at 2000.
	if snapshots[0].TotalValue != 46000 {
		t.Errorf("TotalValue[0]: got %v, want 46000", snapshots[0].TotalValue)
	}

	if _, err := stores.corr.GetLatest(ctx); err != nil {
		t.Errorf("Expected a stored correlation result: %v", err)
	}

	series, err := stores.pensionTS.GetByPlatform(ctx, "aviva")
	if err != nil {
		t.Fatalf("GetByPlatform failed: %v", err)
	}
	if len(series) != 2 {
		t.Errorf("Pension series: got %d records, want 2", len(series))
	}
}

func TestOrchestrator_RunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores()
	seedInputs(t, ctx, stores)

	orch := stores.orchestrator()
	if _, err := orch.Run(ctx); err != nil {
		t.Fatalf("First run failed: %v", err)
	}

	// A second run over already-persisted artifacts must not fail on
	// duplicate keys.
	result, err := orch.Run(ctx)
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Second run errors: got %v, want none", result.Errors)
	}

	snapshots, _ := stores.snapshots.GetAll(ctx)
	if len(snapshots) != 5 {
		t.Errorf("Snapshots after re-run: got %d, want 5", len(snapshots))
	}
}

func TestOrchestrator_RunWithEmptyInputs(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores()

	result, err := stores.orchestrator().Run(ctx)
	if err != nil {
		t.Fatalf("Run on empty inputs failed: %v", err)
	}

	if result.SnapshotsCreated != 0 || result.PensionRecords != 0 {
		t.Errorf("Expected an empty result, got %+v", result)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors: got %v, want none", result.Errors)
	}

	// The correlation analyzer still records an explicit insufficient-data result.
	corr, err := stores.corr.GetLatest(ctx)
	if err != nil {
		t.Fatalf("GetLatest failed: %v", err)
	}
	if corr.Notes != "no price data available" {
		t.Errorf("Correlation notes: got %q", corr.Notes)
	}
}
