package domain

import "time"

// Rolling window sizes and annualization constants shared by the analyzers.
const (
	ShortWindow         = 30   // samples for volatility, VaR, CVaR, downside deviation
	LongWindow          = 252  // samples for Sharpe, Sortino, Calmar, Information ratio
	TradingDays         = 252  // annualization factor
	RSIWindow           = 14   // samples for the relative strength index
	LongMAWindow        = 90   // samples for the long moving average
	DefaultRiskFreeRate = 0.02 // annual
)

// PerformanceRecord holds rolling performance statistics at one timestamp.
// Windowed fields are nil until their window has filled; nil renders as 0 in
// persisted output. Corresponds to the performance_metrics table.
type PerformanceRecord struct {
	Timestamp        time.Time
	TotalValue       float64
	DailyReturn      float64  // (v_t / v_{t-1}) - 1; 0 for the first record and on zero denominators
	CumulativeReturn float64  // running product of (1 + return) minus 1
	Volatility30     *float64 // 30-sample stddev of returns, annualized by sqrt(252)
	SharpeRatio      *float64 // 252-sample mean excess return over return volatility
	Peak             float64  // running maximum of total value
	Drawdown         float64  // (value - peak) / peak, always <= 0
	MaxDrawdown      float64  // running minimum of drawdown, non-increasing
	Beta             float64  // fixed 1.0; no external benchmark series available
	Alpha            float64  // return - riskfree/252; placeholder, not market-relative
}

// RiskRecord holds rolling risk statistics at one timestamp.
// Corresponds to the risk_metrics table.
type RiskRecord struct {
	Timestamp         time.Time
	VaR95             *float64 // 5th percentile of the trailing 30 returns
	CVaR95            *float64 // mean of trailing-30 returns at or below their 5th percentile
	DownsideDeviation *float64 // rms of the negative half of demeaned trailing-30 returns
	SortinoRatio      *float64
	CalmarRatio       *float64
	InformationRatio  *float64
	Volatility30      *float64
	MaxDrawdown       float64
}

// AllocationRecord holds per-asset concentration metrics plus portfolio-wide
// aggregates broadcast onto every row. Corresponds to the allocation_analysis table.
type AllocationRecord struct {
	AssetSymbol               string
	AllocationPct             float64
	AllocationRank            float64 // descending fractional rank; ties share the average rank
	ConcentrationContribution float64 // squared allocation fraction (Herfindahl component)
	PortfolioConcentration    float64 // sum of contributions over all assets
	EffectiveAssets           float64 // 1 / portfolio concentration, 0 when concentration is 0
	DiversificationScore      float64 // 1 - portfolio concentration
}

// CorrelationResult holds the pairwise return-correlation analysis at a point
// in time. Matrix is symmetric with unit diagonal, keyed asset -> asset.
// Corresponds to the correlation_metrics artifact.
type CorrelationResult struct {
	CalculatedAt         time.Time
	AverageCorrelation   float64 // mean of the strict upper triangle
	DiversificationScore float64 // 1 - |average correlation|
	Matrix               map[string]map[string]float64
	Notes                string // reason string on insufficient data
}

// MarketInsight holds per-asset trend indicators derived from price history.
// Corresponds to the market_insights table. Windowed fields are nil until
// enough history exists.
type MarketInsight struct {
	AssetSymbol     string
	CurrentPrice    float64
	PriceMA30       *float64
	PriceMA90       *float64
	Volatility30    *float64 // annualized stddev of daily returns
	Momentum30      *float64 // close / close 30 samples back - 1
	Momentum90      *float64
	RSI             *float64 // 14-sample relative strength index
	Trend           string   // "bullish", "bearish" or "neutral"
	VolatilityLevel string   // "high", "medium" or "low"
}
