package transform

import (
	"sort"
	"time"

	"github.com/hashadar/fintracker-v2/internal/domain"
)

// BuildSnapshots combines a position list with a price history to produce one
// portfolio-value record per distinct price-history timestamp. An asset with
// no observed price at a timestamp contributes 0. Timestamps where no asset
// has any coverage (total value 0) are not emitted. Empty inputs yield an
// empty result, not an error.
func BuildSnapshots(positions []*domain.Position, prices []*domain.PricePoint) []*domain.PortfolioSnapshot {
	if len(positions) == 0 || len(prices) == 0 {
		return nil
	}

	timestamps, closes := indexPrices(prices)

	var snapshots []*domain.PortfolioSnapshot
	for _, ts := range timestamps {
		atTS := closes[ts.UnixNano()]

		totalValue := 0.0
		numAssets := 0
		for _, p := range positions {
			price, ok := atTS[p.AssetSymbol]
			if !ok {
				continue
			}
			value := p.Quantity * price
			totalValue += value
			if value > 0 {
				numAssets++
			}
		}

		if totalValue > 0 {
			snapshots = append(snapshots, &domain.PortfolioSnapshot{
				Timestamp:  ts,
				TotalValue: totalValue,
				NumAssets:  numAssets,
			})
		}
	}

	return snapshots
}

// TrackPnL produces cost-basis-relative profit/loss per distinct
// price-history timestamp. Only assets with an observed price at a timestamp
// contribute to that timestamp's cost basis and value. Records are emitted
// only where the cost basis is positive.
func TrackPnL(positions []*domain.Position, prices []*domain.PricePoint) []*domain.PnLRecord {
	if len(positions) == 0 || len(prices) == 0 {
		return nil
	}

	timestamps, closes := indexPrices(prices)

	var records []*domain.PnLRecord
	for _, ts := range timestamps {
		atTS := closes[ts.UnixNano()]

		var costBasis, pnl float64
		for _, p := range positions {
			price, ok := atTS[p.AssetSymbol]
			if !ok {
				continue
			}
			costBasis += p.Quantity * p.AverageCost
			pnl += p.Quantity*price - p.Quantity*p.AverageCost
		}

		if costBasis > 0 {
			records = append(records, &domain.PnLRecord{
				Timestamp:         ts,
				TotalCostBasis:    costBasis,
				TotalCurrentValue: costBasis + pnl,
				UnrealizedPnL:     pnl,
				UnrealizedPnLPct:  pnl / costBasis * 100,
			})
		}
	}

	return records
}

// indexPrices returns the sorted distinct timestamps of a price history and a
// close-price lookup keyed by timestamp then asset. The first observed price
// wins for a duplicated (timestamp, asset) pair.
func indexPrices(prices []*domain.PricePoint) ([]time.Time, map[int64]map[string]float64) {
	closes := make(map[int64]map[string]float64)
	tsSet := make(map[int64]time.Time)

	for _, p := range prices {
		key := p.Timestamp.UnixNano()
		if _, ok := tsSet[key]; !ok {
			tsSet[key] = p.Timestamp
			closes[key] = make(map[string]float64)
		}
		if _, ok := closes[key][p.AssetSymbol]; !ok {
			closes[key][p.AssetSymbol] = p.Close
		}
	}

	nanos := make([]int64, 0, len(tsSet))
	for ts := range tsSet {
		nanos = append(nanos, ts)
	}
	sort.Slice(nanos, func(i, j int) bool { return nanos[i] < nanos[j] })

	timestamps := make([]time.Time, len(nanos))
	for i, ts := range nanos {
		timestamps[i] = tsSet[ts]
	}

	return timestamps, closes
}
