package reporting

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/hashadar/fintracker-v2/internal/domain"
)

func ts(day int) time.Time {
	return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
}

func f(v float64) *float64 { return &v }

func TestRenderPerformanceCSV(t *testing.T) {
	out := RenderPerformanceCSV([]*domain.PerformanceRecord{
		{
			Timestamp:    ts(1),
			TotalValue:   45000,
			DailyReturn:  0.05,
			Peak:         45000,
			Beta:         1,
			Volatility30: f(0.25),
			// SharpeRatio nil: window not filled
		},
	})

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected header and 1 row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "timestamp,total_value,daily_return") {
		t.Errorf("Unexpected header: %s", lines[0])
	}

	row := strings.Split(lines[1], ",")
	if row[0] != "2024-01-01T00:00:00Z" {
		t.Errorf("Timestamp column: got %s", row[0])
	}
	if row[4] != "0.250000" {
		t.Errorf("volatility_30d column: got %s, want 0.250000", row[4])
	}
	// Nil Sharpe renders as 0.
	if row[5] != "0.000000" {
		t.Errorf("sharpe_ratio column: got %s, want 0.000000", row[5])
	}
}

func TestRenderRiskCSV_NonFiniteRendersAsZero(t *testing.T) {
	out := RenderRiskCSV([]*domain.RiskRecord{
		{
			Timestamp:    ts(1),
			SortinoRatio: f(math.Inf(1)),
			CalmarRatio:  f(math.NaN()),
			MaxDrawdown:  -0.10,
		},
	})

	if strings.Contains(out, "Inf") || strings.Contains(out, "NaN") {
		t.Errorf("Rendered output must not carry non-finite values:\n%s", out)
	}
	row := strings.Split(strings.Split(out, "\n")[1], ",")
	if row[4] != "0.000000" {
		t.Errorf("sortino_ratio column: got %s, want 0.000000", row[4])
	}
	if row[8] != "-0.100000" {
		t.Errorf("max_drawdown column: got %s, want -0.100000", row[8])
	}
}

func TestRenderAllocationCSV(t *testing.T) {
	out := RenderAllocationCSV([]*domain.AllocationRecord{
		{
			AssetSymbol:               "BTC",
			AllocationPct:             50,
			AllocationRank:            1.5,
			ConcentrationContribution: 0.25,
			PortfolioConcentration:    0.38,
			EffectiveAssets:           2.631579,
			DiversificationScore:      0.62,
		},
	})

	row := strings.Split(strings.Split(out, "\n")[1], ",")
	if row[0] != "BTC" {
		t.Errorf("asset_symbol column: got %s", row[0])
	}
	// Ranks render at one decimal place to keep tied halves readable.
	if row[2] != "1.5" {
		t.Errorf("allocation_rank column: got %s, want 1.5", row[2])
	}
}

func TestRenderInsightsCSV(t *testing.T) {
	out := RenderInsightsCSV([]*domain.MarketInsight{
		{
			AssetSymbol:     "BTC",
			CurrentPrice:    30000,
			PriceMA30:       f(29000),
			Trend:           "bullish",
			VolatilityLevel: "medium",
			// RSI and MA90 nil
		},
	})

	row := strings.Split(strings.Split(out, "\n")[1], ",")
	if row[3] != "0.000000" {
		t.Errorf("price_ma_90 column: got %s, want 0.000000", row[3])
	}
	if row[8] != "bullish" || row[9] != "medium" {
		t.Errorf("Label columns: got %s, %s", row[8], row[9])
	}
}

func TestRenderPensionCSV(t *testing.T) {
	out := RenderPensionCSV([]*domain.PensionTimeseriesRecord{
		{
			Platform:           "aviva",
			Timestamp:          ts(3),
			CashInvested:       1500,
			ObservedValue:      f(1650),
			ImputedValue:       1650,
			GainLossAbs:        f(150),
			GainLossPct:        f(10),
			ImputedGainLossAbs: 150,
			ImputedGainLossPct: f(10),
		},
		{
			Platform:     "aviva",
			Timestamp:    ts(1),
			CashInvested: 1000,
			ImputedValue: 1000,
			// Observed fields nil between valuations
		},
	})

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header and 2 rows, got %d lines", len(lines))
	}

	row := strings.Split(lines[1], ",")
	if row[0] != "aviva" {
		t.Errorf("platform column: got %s", row[0])
	}
	// Monetary columns render at two decimal places.
	if row[2] != "1500.00" {
		t.Errorf("cash_invested column: got %s, want 1500.00", row[2])
	}
	if row[6] != "10.00" {
		t.Errorf("gain_loss_pct column: got %s, want 10.00", row[6])
	}

	// Nil observed fields render as 0.
	row = strings.Split(lines[2], ",")
	if row[3] != "0.00" || row[5] != "0.00" {
		t.Errorf("Nil observed columns should render as 0.00, got %s, %s", row[3], row[5])
	}
}

func TestRenderCSV_EmptyInputsHeaderOnly(t *testing.T) {
	cases := map[string]string{
		"performance": RenderPerformanceCSV(nil),
		"risk":        RenderRiskCSV(nil),
		"allocation":  RenderAllocationCSV(nil),
		"insights":    RenderInsightsCSV(nil),
		"pension":     RenderPensionCSV(nil),
	}
	for name, out := range cases {
		if strings.Count(out, "\n") != 1 {
			t.Errorf("%s: expected header-only output, got %q", name, out)
		}
	}
}
