package transform

import (
	"sort"

	"github.com/hashadar/fintracker-v2/internal/domain"
)

// NormalizePositions fills the derived position fields (cost basis,
// unrealized PnL percentage) and orders positions by current value
// descending. The input slice is not modified.
func NormalizePositions(positions []*domain.Position) []*domain.Position {
	out := make([]*domain.Position, len(positions))
	for i, p := range positions {
		cp := *p
		cp.CostBasis = cp.Quantity * cp.AverageCost
		if cp.CostBasis != 0 {
			cp.UnrealizedPnLPct = cp.UnrealizedPnL / cp.CostBasis * 100
		} else {
			cp.UnrealizedPnLPct = 0
		}
		out[i] = &cp
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CurrentValue > out[j].CurrentValue
	})

	return out
}
