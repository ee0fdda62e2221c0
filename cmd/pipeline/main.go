// Package main provides the batch analytics entry point.
// Executes: load inputs → transform → analytics → pension reconciliation → report.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hashadar/fintracker-v2/internal/config"
	"github.com/hashadar/fintracker-v2/internal/inputs"
	"github.com/hashadar/fintracker-v2/internal/logger"
	"github.com/hashadar/fintracker-v2/internal/observability"
	"github.com/hashadar/fintracker-v2/internal/orchestrator"
	"github.com/hashadar/fintracker-v2/internal/reporting"
	"github.com/hashadar/fintracker-v2/internal/storage"
	"github.com/hashadar/fintracker-v2/internal/storage/clickhouse"
	"github.com/hashadar/fintracker-v2/internal/storage/memory"
	"github.com/hashadar/fintracker-v2/internal/storage/migrations"
	"github.com/hashadar/fintracker-v2/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	envOnly := flag.Bool("env-only", false, "Skip config file, use env vars and defaults")
	dataDir := flag.String("data-dir", "data", "Directory holding input CSV files")
	outputDir := flag.String("output-dir", "", "Output directory for report artifacts (overrides config)")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (empty to disable)")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envOnly)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *outputDir != "" {
		cfg.Reporting.OutputDir = *outputDir
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("received signal, cancelling run", zap.String("signal", sig.String()))
		cancel()
	}()

	// Start metrics server if enabled
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			log.Info("starting metrics server", zap.String("addr", *metricsAddr))
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server error", zap.Error(err))
			}
		}()
	}

	stores, cleanup, err := buildStores(ctx, cfg)
	if err != nil {
		log.Error("building stores failed", zap.Error(err))
		os.Exit(1)
	}
	defer cleanup()

	if err := inputs.LoadAll(ctx, *dataDir, stores.position, stores.pricePoint, stores.pensionEvent); err != nil {
		log.Error("loading inputs failed", zap.Error(err))
		os.Exit(1)
	}

	orch := orchestrator.New(orchestrator.Options{
		PositionStore:          stores.position,
		PricePointStore:        stores.pricePoint,
		PensionEventStore:      stores.pensionEvent,
		SnapshotStore:          stores.snapshot,
		PnLStore:               stores.pnl,
		PerformanceStore:       stores.performance,
		RiskStore:              stores.risk,
		AllocationStore:        stores.allocation,
		CorrelationStore:       stores.correlation,
		InsightStore:           stores.insight,
		PensionTimeseriesStore: stores.pensionTimeseries,
		RiskFreeRate:           cfg.Analytics.RiskFreeRate,
		Logger:                 log,
	})

	start := time.Now()
	result, err := orch.Run(ctx)
	if err != nil {
		log.Error("run failed", zap.Error(err))
		observability.RecordPipelineRun("orchestrator", "error", time.Since(start).Seconds())
		os.Exit(1)
	}
	observability.RecordPipelineRun("orchestrator", "success", time.Since(start).Seconds())

	observability.RecordInputRows("positions", result.PositionsLoaded)
	observability.RecordInputRows("price_points", result.PricePointsLoaded)
	observability.RecordArtifacts("snapshots", result.SnapshotsCreated)
	observability.RecordArtifacts("pnl", result.PnLRecordsCreated)
	observability.RecordArtifacts("performance", result.PerformanceRecords)
	observability.RecordArtifacts("risk", result.RiskRecords)
	observability.RecordArtifacts("allocation", result.AllocationRecords)
	observability.RecordArtifacts("insights", result.InsightsCreated)
	observability.RecordArtifacts("pension_timeseries", result.PensionRecords)
	observability.RecordPensionPlatforms(result.PlatformsProcessed, result.PlatformsSkipped)
	observability.RecordRunErrors(len(result.Errors))

	fmt.Println("Run completed:")
	fmt.Printf("  Positions: %d\n", result.PositionsLoaded)
	fmt.Printf("  Price points: %d\n", result.PricePointsLoaded)
	fmt.Printf("  Snapshots: %d\n", result.SnapshotsCreated)
	fmt.Printf("  PnL records: %d\n", result.PnLRecordsCreated)
	fmt.Printf("  Performance records: %d\n", result.PerformanceRecords)
	fmt.Printf("  Risk records: %d\n", result.RiskRecords)
	fmt.Printf("  Allocation records: %d\n", result.AllocationRecords)
	fmt.Printf("  Insights: %d\n", result.InsightsCreated)
	fmt.Printf("  Pension platforms: %d processed, %d skipped (%d records)\n",
		result.PlatformsProcessed, result.PlatformsSkipped, result.PensionRecords)
	if len(result.Errors) > 0 {
		fmt.Printf("  Errors: %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("    - %s\n", e)
		}
	}

	generator := reporting.NewGenerator(reporting.GeneratorOptions{
		PerformanceStore:       stores.performance,
		RiskStore:              stores.risk,
		AllocationStore:        stores.allocation,
		CorrelationStore:       stores.correlation,
		InsightStore:           stores.insight,
		PensionTimeseriesStore: stores.pensionTimeseries,
	})
	report, err := generator.Generate(ctx)
	if err != nil {
		log.Error("generating report failed", zap.Error(err))
		os.Exit(1)
	}
	if err := reporting.WriteFiles(report, cfg.Reporting.OutputDir); err != nil {
		log.Error("writing report failed", zap.Error(err))
		os.Exit(1)
	}
	observability.RecordReportGenerated()
	observability.RecordSuccessfulRun(time.Now().Unix())
	fmt.Printf("Report written to %s\n", cfg.Reporting.OutputDir)
}

// allStores holds one store per interface, backed per the configured backend.
type allStores struct {
	position     storage.PositionStore
	pricePoint   storage.PricePointStore
	pensionEvent storage.PensionEventStore

	snapshot          storage.SnapshotStore
	pnl               storage.PnLStore
	performance       storage.PerformanceStore
	risk              storage.RiskStore
	allocation        storage.AllocationStore
	correlation       storage.CorrelationStore
	insight           storage.InsightStore
	pensionTimeseries storage.PensionTimeseriesStore
}

// buildStores wires the configured backend. "memory" backs everything in
// process. "db" runs migrations, then backs inputs with postgres and derived
// time series with clickhouse; point-in-time artifacts (allocation,
// correlation, insights) stay in memory and are rendered before exit.
func buildStores(ctx context.Context, cfg config.Config) (*allStores, func(), error) {
	stores := &allStores{
		allocation:  memory.NewAllocationStore(),
		correlation: memory.NewCorrelationStore(),
		insight:     memory.NewInsightStore(),
	}
	cleanup := func() {}

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		stores.position = memory.NewPositionStore()
		stores.pricePoint = memory.NewPricePointStore()
		stores.pensionEvent = memory.NewPensionEventStore()
		stores.snapshot = memory.NewSnapshotStore()
		stores.pnl = memory.NewPnLStore()
		stores.performance = memory.NewPerformanceStore()
		stores.risk = memory.NewRiskStore()
		stores.pensionTimeseries = memory.NewPensionTimeseriesStore()
		return stores, cleanup, nil

	case config.BackendDB:
		pool, err := postgres.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}

		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}

		stores.position = postgres.NewPositionStore(pool)
		stores.pricePoint = postgres.NewPricePointStore(pool)
		stores.pensionEvent = postgres.NewPensionEventStore(pool)
		stores.snapshot = clickhouse.NewSnapshotStore(conn)
		stores.pnl = clickhouse.NewPnLStore(conn)
		stores.performance = clickhouse.NewPerformanceStore(conn)
		stores.risk = clickhouse.NewRiskStore(conn)
		stores.pensionTimeseries = clickhouse.NewPensionTimeseriesStore(conn)
		cleanup = func() {
			conn.Close()
			pool.Close()
		}
		return stores, cleanup, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
