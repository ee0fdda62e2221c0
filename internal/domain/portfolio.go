package domain

import "time"

// PortfolioSnapshot represents total portfolio value at one timestamp.
// Corresponds to the portfolio_snapshots table.
type PortfolioSnapshot struct {
	Timestamp  time.Time
	TotalValue float64 // sum of quantity * close price over all priced assets
	NumAssets  int     // count of assets with nonzero value at this timestamp
}

// PnLRecord represents cost-basis-relative profit/loss at one timestamp.
// Corresponds to the pnl_tracking table. Emitted only where cost basis > 0.
type PnLRecord struct {
	Timestamp         time.Time
	TotalCostBasis    float64
	TotalCurrentValue float64
	UnrealizedPnL     float64
	UnrealizedPnLPct  float64
}
