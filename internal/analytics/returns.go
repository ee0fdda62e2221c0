package analytics

import (
	"sort"
	"time"

	"github.com/hashadar/fintracker-v2/internal/domain"
)

// returnSeries holds the daily-return derivations shared by the performance
// and risk analyzers, so both compute them identically.
type returnSeries struct {
	times  []time.Time
	values []float64

	// returns[0] is 0 by convention (no prior value) and is excluded from all
	// rolling windows. Zero-denominator returns are replaced with 0 on the spot.
	returns []float64

	peaks        []float64 // running maximum of values
	drawdowns    []float64 // (value - peak) / peak, <= 0
	maxDrawdowns []float64 // running minimum of drawdowns
}

// newReturnSeries sorts snapshots chronologically, deduplicates timestamps
// keeping the last occurrence, and derives returns, peaks and drawdowns.
func newReturnSeries(snapshots []*domain.PortfolioSnapshot) *returnSeries {
	ordered := make([]*domain.PortfolioSnapshot, len(snapshots))
	copy(ordered, snapshots)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	// Keep the last record per timestamp.
	deduped := ordered[:0]
	for i, s := range ordered {
		if i+1 < len(ordered) && ordered[i+1].Timestamp.Equal(s.Timestamp) {
			continue
		}
		deduped = append(deduped, s)
	}

	s := &returnSeries{
		times:        make([]time.Time, len(deduped)),
		values:       make([]float64, len(deduped)),
		returns:      make([]float64, len(deduped)),
		peaks:        make([]float64, len(deduped)),
		drawdowns:    make([]float64, len(deduped)),
		maxDrawdowns: make([]float64, len(deduped)),
	}

	peak := 0.0
	maxDD := 0.0
	for i, snap := range deduped {
		s.times[i] = snap.Timestamp
		s.values[i] = snap.TotalValue

		if i > 0 && s.values[i-1] != 0 {
			s.returns[i] = s.values[i]/s.values[i-1] - 1
		}

		if snap.TotalValue > peak {
			peak = snap.TotalValue
		}
		s.peaks[i] = peak
		if peak != 0 {
			s.drawdowns[i] = (snap.TotalValue - peak) / peak
		}
		if s.drawdowns[i] < maxDD {
			maxDD = s.drawdowns[i]
		}
		s.maxDrawdowns[i] = maxDD
	}

	return s
}

func (s *returnSeries) len() int {
	return len(s.values)
}

// excessReturns subtracts the per-sample risk-free rate from every return.
// The index-0 convention carries over.
func (s *returnSeries) excessReturns(annualRiskFree float64) []float64 {
	out := make([]float64, len(s.returns))
	for i := 1; i < len(s.returns); i++ {
		out[i] = s.returns[i] - annualRiskFree/float64(domain.TradingDays)
	}
	return out
}
