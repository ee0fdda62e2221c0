// Package reporting renders stored analytics artifacts as CSV and JSON files.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashadar/fintracker-v2/internal/domain"
	"github.com/hashadar/fintracker-v2/internal/storage"
)

// Generator produces report artifacts from stored analytics.
type Generator struct {
	performanceStore       storage.PerformanceStore
	riskStore              storage.RiskStore
	allocationStore        storage.AllocationStore
	correlationStore       storage.CorrelationStore
	insightStore           storage.InsightStore
	pensionTimeseriesStore storage.PensionTimeseriesStore
	now                    func() time.Time // Injectable clock for deterministic output
}

// GeneratorOptions holds the stores a Generator reads from.
type GeneratorOptions struct {
	PerformanceStore       storage.PerformanceStore
	RiskStore              storage.RiskStore
	AllocationStore        storage.AllocationStore
	CorrelationStore       storage.CorrelationStore
	InsightStore           storage.InsightStore
	PensionTimeseriesStore storage.PensionTimeseriesStore
}

// NewGenerator creates a new report generator.
func NewGenerator(opts GeneratorOptions) *Generator {
	return &Generator{
		performanceStore:       opts.PerformanceStore,
		riskStore:              opts.RiskStore,
		allocationStore:        opts.AllocationStore,
		correlationStore:       opts.CorrelationStore,
		insightStore:           opts.InsightStore,
		pensionTimeseriesStore: opts.PensionTimeseriesStore,
		now:                    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Report holds everything one run renders.
type Report struct {
	GeneratedAt time.Time

	Performance []*domain.PerformanceRecord
	Risk        []*domain.RiskRecord
	Allocations []*domain.AllocationRecord
	Correlation *domain.CorrelationResult // nil when no result has been stored
	Insights    []*domain.MarketInsight
	Pension     map[string][]*domain.PensionTimeseriesRecord // keyed by platform
}

// Generate loads all stored artifacts into a Report.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	report := &Report{
		GeneratedAt: g.now(),
		Pension:     make(map[string][]*domain.PensionTimeseriesRecord),
	}

	var err error
	if report.Performance, err = g.performanceStore.GetAll(ctx); err != nil {
		return nil, fmt.Errorf("load performance metrics: %w", err)
	}
	if report.Risk, err = g.riskStore.GetAll(ctx); err != nil {
		return nil, fmt.Errorf("load risk metrics: %w", err)
	}
	if report.Allocations, err = g.allocationStore.GetAll(ctx); err != nil {
		return nil, fmt.Errorf("load allocation analysis: %w", err)
	}
	if report.Insights, err = g.insightStore.GetAll(ctx); err != nil {
		return nil, fmt.Errorf("load market insights: %w", err)
	}

	report.Correlation, err = g.correlationStore.GetLatest(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("load correlation result: %w", err)
		}
		report.Correlation = nil
	}

	platforms, err := g.pensionTimeseriesStore.ListPlatforms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pension platforms: %w", err)
	}
	for _, platform := range platforms {
		series, err := g.pensionTimeseriesStore.GetByPlatform(ctx, platform)
		if err != nil {
			return nil, fmt.Errorf("load pension series for %s: %w", platform, err)
		}
		report.Pension[platform] = series
	}

	return report, nil
}

// WriteFiles renders the report into outputDir, one file per artifact.
// Pension series get one CSV per platform.
func WriteFiles(report *Report, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	files := map[string]string{
		"performance_metrics.csv": RenderPerformanceCSV(report.Performance),
		"risk_metrics.csv":        RenderRiskCSV(report.Risk),
		"allocation_analysis.csv": RenderAllocationCSV(report.Allocations),
		"market_insights.csv":     RenderInsightsCSV(report.Insights),
	}

	if report.Correlation != nil {
		data, err := RenderCorrelationJSON(report.Correlation)
		if err != nil {
			return err
		}
		files["correlation_metrics.json"] = data
	}

	for platform, series := range report.Pension {
		files["pension_"+platform+".csv"] = RenderPensionCSV(series)
	}

	for name, content := range files {
		path := filepath.Join(outputDir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}

	return nil
}
