package analytics

import (
	"sort"

	"github.com/hashadar/fintracker-v2/internal/domain"
)

// AnalyzeAllocations derives per-asset concentration metrics and
// portfolio-level diversification aggregates from current positions. The
// aggregates are broadcast onto every record. Empty positions yield an empty
// result.
func AnalyzeAllocations(positions []*domain.Position) []*domain.AllocationRecord {
	n := len(positions)
	if n == 0 {
		return nil
	}

	ranks := fractionalRanks(positions)

	totalConcentration := 0.0
	records := make([]*domain.AllocationRecord, n)
	for i, p := range positions {
		fraction := p.AllocationPct / 100
		records[i] = &domain.AllocationRecord{
			AssetSymbol:               p.AssetSymbol,
			AllocationPct:             p.AllocationPct,
			AllocationRank:            ranks[i],
			ConcentrationContribution: fraction * fraction,
		}
		totalConcentration += fraction * fraction
	}

	effectiveAssets := 0.0
	if totalConcentration > 0 {
		effectiveAssets = 1 / totalConcentration
	}

	for _, rec := range records {
		rec.PortfolioConcentration = totalConcentration
		rec.EffectiveAssets = effectiveAssets
		rec.DiversificationScore = 1 - totalConcentration
	}

	return records
}

// fractionalRanks ranks positions by allocation percentage descending. Tied
// allocations share the average of the ranks they span.
func fractionalRanks(positions []*domain.Position) []float64 {
	n := len(positions)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return positions[order[a]].AllocationPct > positions[order[b]].AllocationPct
	})

	ranks := make([]float64, n)
	for start := 0; start < n; {
		end := start
		for end+1 < n && positions[order[end+1]].AllocationPct == positions[order[start]].AllocationPct {
			end++
		}
		// 1-based ranks start+1..end+1 averaged across the tie group
		avg := float64(start+end+2) / 2
		for i := start; i <= end; i++ {
			ranks[order[i]] = avg
		}
		start = end + 1
	}

	return ranks
}
