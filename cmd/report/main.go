// Package main renders persisted analytics as CSV/JSON artifacts.
// Useful with the db backend, where a previous run's derived series live in
// clickhouse. With the memory backend there is nothing to read back; use the
// pipeline command, which renders its own report.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/hashadar/fintracker-v2/internal/config"
	"github.com/hashadar/fintracker-v2/internal/logger"
	"github.com/hashadar/fintracker-v2/internal/reporting"
	"github.com/hashadar/fintracker-v2/internal/storage/clickhouse"
	"github.com/hashadar/fintracker-v2/internal/storage/memory"
	"github.com/hashadar/fintracker-v2/internal/storage/migrations"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	envOnly := flag.Bool("env-only", false, "Skip config file, use env vars and defaults")
	outputDir := flag.String("output-dir", "", "Output directory for report artifacts (overrides config)")
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

	if cfg.Storage.Backend != config.BackendDB {
		log.Error("report command requires the db backend",
			zap.String("backend", cfg.Storage.Backend))
		os.Exit(1)
	}

	ctx := context.Background()

	conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
	if err != nil {
		log.Error("connecting to clickhouse failed", zap.Error(err))
		os.Exit(1)
	}
	defer conn.Close()

	// Allocation, correlation and insight artifacts are point-in-time and not
	// persisted to clickhouse; their sections render empty here.
	generator := reporting.NewGenerator(reporting.GeneratorOptions{
		PerformanceStore:       clickhouse.NewPerformanceStore(conn),
		RiskStore:              clickhouse.NewRiskStore(conn),
		AllocationStore:        memory.NewAllocationStore(),
		CorrelationStore:       memory.NewCorrelationStore(),
		InsightStore:           memory.NewInsightStore(),
		PensionTimeseriesStore: clickhouse.NewPensionTimeseriesStore(conn),
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

	fmt.Printf("Report written to %s\n", cfg.Reporting.OutputDir)
}
