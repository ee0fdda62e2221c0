package domain

import "time"

// PensionEventKind distinguishes the two independently-sampled event streams
// observed per pension platform.
type PensionEventKind string

const (
	// EventContribution is a cash payment into the account. Amounts are
	// incremental; the reconciler derives the cumulative total.
	EventContribution PensionEventKind = "contribution"

	// EventValuation is an observed account value at a point in time.
	EventValuation PensionEventKind = "valuation"
)

// PensionEvent is a single contribution or valuation observation for one
// platform. Timestamps need not align across kinds.
type PensionEvent struct {
	Platform  string
	Timestamp time.Time
	Kind      PensionEventKind
	Amount    float64
}

// PensionTimeseriesRecord is one row of the reconciled per-platform series.
// ObservedValue is set only at timestamps carrying a real valuation event;
// ImputedValue is always set after interpolation and boundary fill. All
// monetary fields are rounded to 2 decimal places.
type PensionTimeseriesRecord struct {
	Platform           string
	Timestamp          time.Time
	CashInvested       float64  // running contribution total, forward-filled
	ObservedValue      *float64 // raw valuation at this exact timestamp, if any
	ImputedValue       float64  // observed, else time-interpolated, else boundary-filled
	GainLossAbs        *float64 // observed value - cash invested
	GainLossPct        *float64 // 100 * gain/loss / cash invested
	ImputedGainLossAbs float64  // imputed value - cash invested
	ImputedGainLossPct *float64 // nil when cash invested is 0
}
