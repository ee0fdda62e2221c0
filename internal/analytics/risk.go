package analytics

import (
	"math"

	"github.com/hashadar/fintracker-v2/internal/domain"
)

// RiskAnalyzer derives rolling tail-risk and risk-adjusted-return statistics
// from the same portfolio value series the performance analyzer consumes.
type RiskAnalyzer struct {
	riskFreeRate float64 // annual
}

// NewRiskAnalyzer creates a RiskAnalyzer with the given annual risk-free rate.
func NewRiskAnalyzer(riskFreeRate float64) *RiskAnalyzer {
	return &RiskAnalyzer{riskFreeRate: riskFreeRate}
}

// Analyze emits one record per distinct snapshot timestamp. Every ratio
// guards its denominator: a zero denominator or an unfilled window yields nil.
func (a *RiskAnalyzer) Analyze(snapshots []*domain.PortfolioSnapshot) []*domain.RiskRecord {
	s := newReturnSeries(snapshots)
	if s.len() == 0 {
		return nil
	}

	annualize := math.Sqrt(float64(domain.TradingDays))

	varWindow := rollingApply(s.returns, domain.ShortWindow, func(xs []float64) float64 {
		return percentile(xs, 0.05)
	})
	cvarWindow := rollingApply(s.returns, domain.ShortWindow, conditionalVaR)
	downside := rollingApply(s.returns, domain.ShortWindow, downsideDeviation)

	volatility := rollingStddev(s.returns, domain.ShortWindow)
	meanReturn := rollingMean(s.returns, domain.LongWindow)
	meanExcess := rollingMean(s.excessReturns(a.riskFreeRate), domain.LongWindow)
	longStddev := rollingStddev(s.returns, domain.LongWindow)

	records := make([]*domain.RiskRecord, s.len())
	for i := range records {
		rec := &domain.RiskRecord{
			Timestamp:         s.times[i],
			VaR95:             varWindow[i],
			CVaR95:            cvarWindow[i],
			DownsideDeviation: downside[i],
			MaxDrawdown:       s.maxDrawdowns[i],
		}

		if volatility[i] != nil {
			v := *volatility[i] * annualize
			rec.Volatility30 = &v
		}

		// Sortino: annualized long-window mean return over annualized
		// short-window downside deviation.
		if meanReturn[i] != nil && downside[i] != nil {
			denom := *downside[i] * annualize
			if denom != 0 {
				sortino := (*meanReturn[i]*float64(domain.TradingDays) - a.riskFreeRate) / denom
				rec.SortinoRatio = &sortino
			}
		}

		// Calmar: annualized return over the magnitude of max drawdown.
		if meanReturn[i] != nil && s.maxDrawdowns[i] != 0 {
			calmar := *meanReturn[i] * float64(domain.TradingDays) / math.Abs(s.maxDrawdowns[i])
			rec.CalmarRatio = &calmar
		}

		// Information ratio: annualized mean excess return over tracking error.
		if meanExcess[i] != nil && longStddev[i] != nil {
			trackingError := *longStddev[i] * annualize
			if trackingError != 0 {
				ir := *meanExcess[i] * float64(domain.TradingDays) / trackingError
				rec.InformationRatio = &ir
			}
		}

		records[i] = rec
	}

	return records
}

// conditionalVaR is the mean of all returns at or below the window's 5th
// percentile (expected shortfall at 95% confidence).
func conditionalVaR(xs []float64) float64 {
	threshold := percentile(xs, 0.05)
	var tail []float64
	for _, x := range xs {
		if x <= threshold {
			tail = append(tail, x)
		}
	}
	return mean(tail)
}

// downsideDeviation is the root-mean-square of the negative half of the
// demeaned returns: sqrt(mean(min(x - mean(x), 0)^2)).
func downsideDeviation(xs []float64) float64 {
	m := mean(xs)
	sumSq := 0.0
	for _, x := range xs {
		d := x - m
		if d > 0 {
			d = 0
		}
		sumSq += d * d
	}
	if len(xs) == 0 {
		return 0
	}
	return math.Sqrt(sumSq / float64(len(xs)))
}
