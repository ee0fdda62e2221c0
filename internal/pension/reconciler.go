// Package pension reconciles two independently-sampled event streams per
// account — irregular cash contributions and irregular value snapshots — into
// one time-aligned gain/loss series with a time-interpolated imputed value.
package pension

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hashadar/fintracker-v2/internal/domain"
)

// Reconcile merges the contribution and valuation logs of one platform into a
// reconciled timeseries. Steps:
//  1. Sort contributions chronologically; derive cumulative cash invested.
//  2. Sort valuations chronologically, relabeling amount as observed value.
//  3. Union both streams into one timeline; for a shared timestamp each
//     column keeps its latest-defined value.
//  4. Linearly interpolate observed value over elapsed wall-clock time to
//     produce the imputed value at every timeline point.
//  5. Forward-fill cumulative cash invested.
//  6. Boundary policy: before the first valuation the imputed value equals
//     cash invested; after the last valuation the last known value carries
//     forward. Rows still missing cash or imputed value are dropped.
//  7. Derive raw and imputed gain/loss, rounding all outputs to 2 decimals.
//
// An empty contribution or valuation stream yields nil (the platform is
// skipped, not an error).
func Reconcile(platform string, contributions, valuations []*domain.PensionEvent) []*domain.PensionTimeseriesRecord {
	if len(contributions) == 0 || len(valuations) == 0 {
		return nil
	}

	// Cumulative cash invested; the running total at a repeated timestamp
	// overwrites the earlier one (last write wins per timestamp).
	sorted := make([]*domain.PensionEvent, len(contributions))
	copy(sorted, contributions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	cashAt := make(map[int64]float64)
	running := 0.0
	for _, e := range sorted {
		running += e.Amount
		cashAt[e.Timestamp.UnixNano()] = running
	}

	observedAt := make(map[int64]float64)
	sortedVals := make([]*domain.PensionEvent, len(valuations))
	copy(sortedVals, valuations)
	sort.SliceStable(sortedVals, func(i, j int) bool {
		return sortedVals[i].Timestamp.Before(sortedVals[j].Timestamp)
	})
	for _, e := range sortedVals {
		observedAt[e.Timestamp.UnixNano()] = e.Amount
	}

	timeline := mergeTimeline(cashAt, observedAt)

	observed := make([]*float64, len(timeline))
	for i, ts := range timeline {
		if v, ok := observedAt[ts.UnixNano()]; ok {
			value := v
			observed[i] = &value
		}
	}

	imputed := interpolateByTime(timeline, observed)

	// Forward-fill cash; leading nil means no contribution has happened yet.
	cash := make([]*float64, len(timeline))
	var lastCash *float64
	for i, ts := range timeline {
		if v, ok := cashAt[ts.UnixNano()]; ok {
			value := v
			lastCash = &value
		}
		cash[i] = lastCash
	}

	// Boundary fill: before the first valuation, assume no gain/loss.
	for i := range imputed {
		if imputed[i] == nil && cash[i] != nil {
			imputed[i] = cash[i]
		}
	}

	var records []*domain.PensionTimeseriesRecord
	for i, ts := range timeline {
		if cash[i] == nil || imputed[i] == nil {
			continue
		}

		rec := &domain.PensionTimeseriesRecord{
			Platform:           platform,
			Timestamp:          ts,
			CashInvested:       round2(*cash[i]),
			ImputedValue:       round2(*imputed[i]),
			ImputedGainLossAbs: round2(*imputed[i] - *cash[i]),
		}

		if *cash[i] != 0 {
			pct := round2(100 * (*imputed[i] - *cash[i]) / *cash[i])
			rec.ImputedGainLossPct = &pct
		}

		if observed[i] != nil {
			obs := round2(*observed[i])
			rec.ObservedValue = &obs
			abs := round2(*observed[i] - *cash[i])
			rec.GainLossAbs = &abs
			if *cash[i] != 0 {
				pct := round2(100 * (*observed[i] - *cash[i]) / *cash[i])
				rec.GainLossPct = &pct
			}
		}

		records = append(records, rec)
	}

	return records
}

// mergeTimeline unions the timestamps of both event streams, sorted ascending.
func mergeTimeline(cashAt, observedAt map[int64]float64) []time.Time {
	set := make(map[int64]struct{}, len(cashAt)+len(observedAt))
	for ts := range cashAt {
		set[ts] = struct{}{}
	}
	for ts := range observedAt {
		set[ts] = struct{}{}
	}

	nanos := make([]int64, 0, len(set))
	for ts := range set {
		nanos = append(nanos, ts)
	}
	sort.Slice(nanos, func(i, j int) bool { return nanos[i] < nanos[j] })

	timeline := make([]time.Time, len(nanos))
	for i, ts := range nanos {
		timeline[i] = time.Unix(0, ts).UTC()
	}
	return timeline
}

// interpolateByTime fills gaps in a sparse series by piecewise-linear
// interpolation weighted by elapsed wall-clock time between the bracketing
// known points. Gaps after the last known point carry that value forward;
// gaps before the first known point stay nil (the boundary policy above
// handles them).
func interpolateByTime(timeline []time.Time, sparse []*float64) []*float64 {
	out := make([]*float64, len(sparse))

	var known []int
	for i, v := range sparse {
		if v != nil {
			known = append(known, i)
		}
	}
	if len(known) == 0 {
		return out
	}

	for i := range timeline {
		switch {
		case i < known[0]:
			// no left anchor
		case i > known[len(known)-1]:
			v := *sparse[known[len(known)-1]]
			out[i] = &v
		case sparse[i] != nil:
			v := *sparse[i]
			out[i] = &v
		default:
			lo, hi := bracket(known, i)
			t0 := timeline[lo]
			t1 := timeline[hi]
			frac := float64(timeline[i].Sub(t0)) / float64(t1.Sub(t0))
			v := *sparse[lo] + (*sparse[hi]-*sparse[lo])*frac
			out[i] = &v
		}
	}

	return out
}

// bracket returns the nearest known indices below and above i.
func bracket(known []int, i int) (lo, hi int) {
	pos := sort.SearchInts(known, i)
	return known[pos-1], known[pos]
}

func round2(x float64) float64 {
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}
