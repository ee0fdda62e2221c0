package transform

import (
	"sort"

	"github.com/hashadar/fintracker-v2/internal/domain"
)

// NormalizePriceHistory fills the derived OHLC fields (range, change, change
// percentage) and orders rows chronologically. The input slice is not
// modified. A zero open price yields a 0 change percentage, not an infinity.
func NormalizePriceHistory(prices []*domain.PricePoint) []*domain.PricePoint {
	out := make([]*domain.PricePoint, len(prices))
	for i, p := range prices {
		cp := *p
		cp.PriceRange = cp.High - cp.Low
		cp.PriceChange = cp.Close - cp.Open
		if cp.Open != 0 {
			cp.PriceChangePct = cp.PriceChange / cp.Open * 100
		} else {
			cp.PriceChangePct = 0
		}
		out[i] = &cp
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})

	return out
}
