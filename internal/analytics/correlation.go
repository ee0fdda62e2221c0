package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/hashadar/fintracker-v2/internal/domain"
)

// CorrelationAnalyzer computes the pairwise return-correlation matrix across
// assets from long-form price history.
type CorrelationAnalyzer struct {
	now func() time.Time // injectable clock for deterministic output
}

// NewCorrelationAnalyzer creates a CorrelationAnalyzer.
func NewCorrelationAnalyzer() *CorrelationAnalyzer {
	return &CorrelationAnalyzer{now: func() time.Time { return time.Now().UTC() }}
}

// WithClock sets a custom clock function for deterministic output.
func (a *CorrelationAnalyzer) WithClock(now func() time.Time) *CorrelationAnalyzer {
	a.now = now
	return a
}

// Analyze pivots price history to a wide timestamp-by-asset table, derives
// percentage returns, and computes the Pearson correlation matrix. Inputs
// with fewer than 2 assets or fewer than 2 aligned return rows produce an
// explicit insufficient-data result, never an error.
func (a *CorrelationAnalyzer) Analyze(prices []*domain.PricePoint) *domain.CorrelationResult {
	if len(prices) == 0 {
		return a.insufficient("no price data available")
	}

	assets, timestamps, wide := pivotClose(prices)

	if len(assets) < 2 {
		return a.insufficient(fmt.Sprintf("only %d asset(s) available", len(assets)))
	}

	// Percentage returns per asset; the first pivot row has no prior value
	// and is dropped. Zero price bases contribute a 0 return, not an infinity.
	returns := make([][]float64, len(timestamps)-1)
	for r := 1; r < len(timestamps); r++ {
		row := make([]float64, len(assets))
		for c := range assets {
			prev := wide[r-1][c]
			if prev != 0 {
				row[c] = wide[r][c]/prev - 1
			}
		}
		returns[r-1] = row
	}

	if len(returns) < 2 {
		return a.insufficient("insufficient return data")
	}

	// Column-major view for pairwise correlation.
	cols := make([][]float64, len(assets))
	for c := range assets {
		col := make([]float64, len(returns))
		for r := range returns {
			col[r] = returns[r][c]
		}
		cols[c] = col
	}

	matrix := make(map[string]map[string]float64, len(assets))
	for _, asset := range assets {
		matrix[asset] = make(map[string]float64, len(assets))
	}

	sum := 0.0
	pairs := 0
	for i := range assets {
		matrix[assets[i]][assets[i]] = 1
		for j := i + 1; j < len(assets); j++ {
			coeff, ok := pearson(cols[i], cols[j])
			matrix[assets[i]][assets[j]] = coeff
			matrix[assets[j]][assets[i]] = coeff
			if ok {
				sum += coeff
				pairs++
			}
		}
	}

	avg := 0.0
	if pairs > 0 {
		avg = sum / float64(pairs)
	}

	score := 1 - avg
	if avg < 0 {
		score = 1 + avg // 1 - |avg|
	}

	return &domain.CorrelationResult{
		CalculatedAt:         a.now(),
		AverageCorrelation:   avg,
		DiversificationScore: score,
		Matrix:               matrix,
		Notes:                fmt.Sprintf("correlation calculated for %d assets", len(assets)),
	}
}

func (a *CorrelationAnalyzer) insufficient(reason string) *domain.CorrelationResult {
	return &domain.CorrelationResult{
		CalculatedAt: a.now(),
		Matrix:       map[string]map[string]float64{},
		Notes:        reason,
	}
}

// pivotClose builds a wide close-price table: rows are sorted distinct
// timestamps, columns are sorted distinct assets, missing cells are 0.
// Duplicate (timestamp, asset) rows keep the latest occurrence; if conflicting
// values still collide for one cell, their mean is used.
func pivotClose(prices []*domain.PricePoint) (assets []string, timestamps []time.Time, wide [][]float64) {
	type cellKey struct {
		ts    int64
		asset string
	}

	// Keep-last pass: later occurrences replace earlier ones wholesale.
	deduped := make(map[cellKey][]float64)
	assetSet := make(map[string]struct{})
	tsSet := make(map[int64]time.Time)
	for _, p := range prices {
		k := cellKey{p.Timestamp.UnixNano(), p.AssetSymbol}
		deduped[k] = []float64{p.Close}
		assetSet[p.AssetSymbol] = struct{}{}
		tsSet[k.ts] = p.Timestamp
	}

	for a := range assetSet {
		assets = append(assets, a)
	}
	sort.Strings(assets)

	nanos := make([]int64, 0, len(tsSet))
	for ts := range tsSet {
		nanos = append(nanos, ts)
	}
	sort.Slice(nanos, func(i, j int) bool { return nanos[i] < nanos[j] })
	for _, ts := range nanos {
		timestamps = append(timestamps, tsSet[ts])
	}

	wide = make([][]float64, len(timestamps))
	for r, ts := range nanos {
		row := make([]float64, len(assets))
		for c, asset := range assets {
			if vals := deduped[cellKey{ts, asset}]; len(vals) > 0 {
				row[c] = mean(vals)
			}
		}
		wide[r] = row
	}

	return assets, timestamps, wide
}
