package analytics

import (
	"math"
	"testing"
)

func TestRiskAnalyzer_WindowedFieldsNilUntilFull(t *testing.T) {
	values := make([]float64, 40)
	for i := range values {
		// Alternate gains and losses so tail statistics are nonzero.
		if i%2 == 0 {
			values[i] = 100 + float64(i)
		} else {
			values[i] = 95 + float64(i)
		}
	}
	records := NewRiskAnalyzer(0.02).Analyze(snapshotSeries(values...))

	if len(records) != 40 {
		t.Fatalf("Expected 40 records, got %d", len(records))
	}
	for i := 0; i < 30; i++ {
		if records[i].VaR95 != nil {
			t.Errorf("VaR95[%d]: expected nil before window fills, got %v", i, *records[i].VaR95)
		}
		if records[i].CVaR95 != nil {
			t.Errorf("CVaR95[%d]: expected nil before window fills", i)
		}
		if records[i].DownsideDeviation != nil {
			t.Errorf("DownsideDeviation[%d]: expected nil before window fills", i)
		}
	}
	for i := 30; i < 40; i++ {
		if records[i].VaR95 == nil || records[i].CVaR95 == nil || records[i].DownsideDeviation == nil {
			t.Fatalf("Tail statistics[%d]: expected values after window fills", i)
		}
		if *records[i].VaR95 >= 0 {
			t.Errorf("VaR95[%d]: expected negative on an alternating series, got %v", i, *records[i].VaR95)
		}
		if *records[i].CVaR95 > *records[i].VaR95 {
			t.Errorf("CVaR95[%d] (%v) should not exceed VaR95 (%v)", i, *records[i].CVaR95, *records[i].VaR95)
		}
	}
}

func TestRiskAnalyzer_CalmarNilWhileNoDrawdown(t *testing.T) {
	// Strictly increasing values: max drawdown stays 0 so Calmar is undefined.
	values := make([]float64, 35)
	for i := range values {
		values[i] = 100 + float64(i)
	}
	records := NewRiskAnalyzer(0.02).Analyze(snapshotSeries(values...))

	for i, rec := range records {
		if rec.CalmarRatio != nil {
			t.Errorf("CalmarRatio[%d]: expected nil with zero max drawdown, got %v", i, *rec.CalmarRatio)
		}
		if rec.MaxDrawdown != 0 {
			t.Errorf("MaxDrawdown[%d]: got %v, want 0", i, rec.MaxDrawdown)
		}
	}
}

func TestRiskAnalyzer_EmptyInput(t *testing.T) {
	if records := NewRiskAnalyzer(0.02).Analyze(nil); records != nil {
		t.Errorf("Expected nil for empty input, got %d records", len(records))
	}
}

func TestPercentile(t *testing.T) {
	cases := []struct {
		name string
		xs   []float64
		p    float64
		want float64
	}{
		{"Median interpolates", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"Lower tail", []float64{1, 2, 3, 4, 5}, 0.05, 1.2},
		{"Single element", []float64{7}, 0.05, 7},
		{"Empty", nil, 0.5, 0},
		{"Upper bound clamps", []float64{1, 2, 3}, 1.0, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := percentile(tc.xs, tc.p)
			if !almostEqual(got, tc.want) {
				t.Errorf("percentile(%v, %v): got %v, want %v", tc.xs, tc.p, got, tc.want)
			}
		})
	}
}

func TestConditionalVaR(t *testing.T) {
	// 5th percentile of [-3,-1,0,1,2] interpolates to -2.6; only -3 sits at or
	// below it, so the expected shortfall is -3.
	got := conditionalVaR([]float64{-3, -1, 0, 1, 2})
	if !almostEqual(got, -3) {
		t.Errorf("conditionalVaR: got %v, want -3", got)
	}
}

func TestDownsideDeviation(t *testing.T) {
	// mean([1,-1]) = 0; only -1 is below it: sqrt(1/2).
	got := downsideDeviation([]float64{1, -1})
	if !almostEqual(got, math.Sqrt(0.5)) {
		t.Errorf("downsideDeviation: got %v, want %v", got, math.Sqrt(0.5))
	}

	if got := downsideDeviation(nil); got != 0 {
		t.Errorf("downsideDeviation(nil): got %v, want 0", got)
	}
}

func TestSampleStddev(t *testing.T) {
	// Variance of [2,4,4,4,5,5,7,9] is 32/7 with the n-1 denominator.
	got := sampleStddev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	want := math.Sqrt(32.0 / 7.0)
	if !almostEqual(got, want) {
		t.Errorf("sampleStddev: got %v, want %v", got, want)
	}

	if got := sampleStddev([]float64{5}); got != 0 {
		t.Errorf("sampleStddev of one element: got %v, want 0", got)
	}
}
