package domain

import "time"

// PricePoint represents one OHLCV observation for one asset at one timestamp.
// Corresponds to the price_history input table.
type PricePoint struct {
	AssetSymbol    string
	Timestamp      time.Time
	Open           float64
	High           float64
	Low            float64
	Close          float64 // >= 0
	Volume         float64
	PriceRange     float64 // high - low, derived
	PriceChange    float64 // close - open, derived
	PriceChangePct float64 // price change / open * 100, derived (0 on zero open)
}
