package domain

// Position represents a held balance in one asset at evaluation time.
// Corresponds to the positions input table.
type Position struct {
	AssetSymbol      string  // e.g. "BTC"
	Quantity         float64 // units held, >= 0
	AverageCost      float64 // average purchase price per unit
	CurrentValue     float64 // value in the reporting currency
	UnrealizedPnL    float64 // current value minus cost basis
	AllocationPct    float64 // share of total portfolio value, 0..100
	CostBasis        float64 // quantity * average cost, derived
	UnrealizedPnLPct float64 // unrealized PnL / cost basis * 100, derived
}
