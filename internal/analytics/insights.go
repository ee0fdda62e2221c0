package analytics

import (
	"math"
	"sort"

	"github.com/hashadar/fintracker-v2/internal/domain"
)

// Trend and volatility labels emitted by AnalyzeMarketInsights.
const (
	TrendBullish = "bullish"
	TrendBearish = "bearish"
	TrendNeutral = "neutral"

	VolatilityHigh   = "high"
	VolatilityMedium = "medium"
	VolatilityLow    = "low"
)

// AnalyzeMarketInsights derives per-asset trend indicators (moving averages,
// momentum, RSI, annualized volatility) from price history, emitting the
// latest observation per asset. Assets with fewer than 30 observations are
// skipped. Results are ordered by asset symbol.
func AnalyzeMarketInsights(prices []*domain.PricePoint) []*domain.MarketInsight {
	byAsset := make(map[string][]*domain.PricePoint)
	for _, p := range prices {
		byAsset[p.AssetSymbol] = append(byAsset[p.AssetSymbol], p)
	}

	assets := make([]string, 0, len(byAsset))
	for a := range byAsset {
		assets = append(assets, a)
	}
	sort.Strings(assets)

	var insights []*domain.MarketInsight
	for _, asset := range assets {
		points := byAsset[asset]
		if len(points) < domain.ShortWindow {
			continue
		}
		sort.SliceStable(points, func(i, j int) bool {
			return points[i].Timestamp.Before(points[j].Timestamp)
		})

		closes := make([]float64, len(points))
		for i, p := range points {
			closes[i] = p.Close
		}

		insights = append(insights, assetInsight(asset, closes))
	}

	return insights
}

func assetInsight(asset string, closes []float64) *domain.MarketInsight {
	n := len(closes)
	current := closes[n-1]

	ins := &domain.MarketInsight{
		AssetSymbol:  asset,
		CurrentPrice: current,
	}

	ma30 := mean(closes[n-domain.ShortWindow:])
	ins.PriceMA30 = &ma30
	if n >= domain.LongMAWindow {
		ma90 := mean(closes[n-domain.LongMAWindow:])
		ins.PriceMA90 = &ma90
	}

	// Volatility needs 30 trailing returns, i.e. 31 closes.
	if n > domain.ShortWindow {
		returns := make([]float64, domain.ShortWindow)
		for i := 0; i < domain.ShortWindow; i++ {
			idx := n - domain.ShortWindow + i
			if closes[idx-1] != 0 {
				returns[i] = closes[idx]/closes[idx-1] - 1
			}
		}
		vol := sampleStddev(returns) * math.Sqrt(float64(domain.TradingDays))
		ins.Volatility30 = &vol
	}

	ins.Momentum30 = momentum(closes, domain.ShortWindow)
	ins.Momentum90 = momentum(closes, domain.LongMAWindow)
	ins.RSI = relativeStrength(closes)

	ins.Trend = TrendNeutral
	if ins.PriceMA90 != nil {
		switch {
		case current > ma30 && ma30 > *ins.PriceMA90:
			ins.Trend = TrendBullish
		case current < ma30 && ma30 < *ins.PriceMA90:
			ins.Trend = TrendBearish
		}
	}

	// An undefined volatility reads as low, matching the output tables where
	// missing values render as 0.
	ins.VolatilityLevel = VolatilityLow
	if ins.Volatility30 != nil {
		switch {
		case *ins.Volatility30 > 0.5:
			ins.VolatilityLevel = VolatilityHigh
		case *ins.Volatility30 > 0.3:
			ins.VolatilityLevel = VolatilityMedium
		}
	}

	return ins
}

// momentum is close/close[k samples back] - 1, nil when history is short or
// the base price is 0.
func momentum(closes []float64, k int) *float64 {
	n := len(closes)
	if n <= k {
		return nil
	}
	base := closes[n-1-k]
	if base == 0 {
		return nil
	}
	m := closes[n-1]/base - 1
	return &m
}

// relativeStrength computes a 14-sample RSI from simple rolling mean gain and
// loss. A flat window (no gains, no losses) has no defined RSI; a window with
// gains and no losses saturates at 100.
func relativeStrength(closes []float64) *float64 {
	n := len(closes)
	if n < domain.RSIWindow+1 {
		return nil
	}

	var gain, loss float64
	for i := n - domain.RSIWindow; i < n; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
	}
	gain /= float64(domain.RSIWindow)
	loss /= float64(domain.RSIWindow)

	if loss == 0 {
		if gain == 0 {
			return nil
		}
		rsi := 100.0
		return &rsi
	}

	rs := gain / loss
	rsi := 100 - 100/(1+rs)
	return &rsi
}
