package analytics

import (
	"math"

	"github.com/hashadar/fintracker-v2/internal/domain"
)

// PerformanceAnalyzer derives per-timestamp return, cumulative return,
// rolling volatility, rolling Sharpe ratio and drawdown statistics from a
// portfolio value series.
type PerformanceAnalyzer struct {
	riskFreeRate float64 // annual
}

// NewPerformanceAnalyzer creates a PerformanceAnalyzer with the given annual
// risk-free rate.
func NewPerformanceAnalyzer(riskFreeRate float64) *PerformanceAnalyzer {
	return &PerformanceAnalyzer{riskFreeRate: riskFreeRate}
}

// Analyze emits one record per distinct snapshot timestamp. Duplicate
// timestamps keep the last snapshot. Windowed statistics stay nil until their
// window has filled; non-finite ratios are nil rather than infinities.
func (a *PerformanceAnalyzer) Analyze(snapshots []*domain.PortfolioSnapshot) []*domain.PerformanceRecord {
	s := newReturnSeries(snapshots)
	if s.len() == 0 {
		return nil
	}

	annualize := math.Sqrt(float64(domain.TradingDays))

	volatility := rollingStddev(s.returns, domain.ShortWindow)
	meanExcess := rollingMean(s.excessReturns(a.riskFreeRate), domain.LongWindow)
	longStddev := rollingStddev(s.returns, domain.LongWindow)

	records := make([]*domain.PerformanceRecord, s.len())
	cumulative := 0.0
	for i := range records {
		rec := &domain.PerformanceRecord{
			Timestamp:   s.times[i],
			TotalValue:  s.values[i],
			DailyReturn: s.returns[i],
			Peak:        s.peaks[i],
			Drawdown:    s.drawdowns[i],
			MaxDrawdown: s.maxDrawdowns[i],
			Beta:        1.0, // placeholder, no benchmark series available
		}

		if i > 0 {
			cumulative = (1+cumulative)*(1+s.returns[i]) - 1
			rec.Alpha = s.returns[i] - a.riskFreeRate/float64(domain.TradingDays)
		}
		rec.CumulativeReturn = cumulative

		if volatility[i] != nil {
			v := *volatility[i] * annualize
			rec.Volatility30 = &v
		}
		if meanExcess[i] != nil && longStddev[i] != nil {
			denom := *longStddev[i] * annualize
			if denom != 0 {
				sharpe := *meanExcess[i] * float64(domain.TradingDays) / denom
				rec.SharpeRatio = &sharpe
			}
		}

		records[i] = rec
	}

	return records
}
