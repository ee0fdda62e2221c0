package reporting

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/hashadar/fintracker-v2/internal/domain"
)

// fill substitutes 0 for nil and non-finite values. Rendered artifacts never
// carry NaN/Inf; the not-yet-defined distinction lives only in the stores.
func fill(p *float64) float64 {
	if p == nil {
		return 0
	}
	return finite(*p)
}

func finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}

func csvTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// RenderPerformanceCSV renders performance records as CSV string.
func RenderPerformanceCSV(records []*domain.PerformanceRecord) string {
	var sb strings.Builder

	// Header
	sb.WriteString("timestamp,total_value,daily_return,cumulative_return,")
	sb.WriteString("volatility_30d,sharpe_ratio,peak,drawdown,max_drawdown,beta,alpha\n")

	// Rows
	for _, r := range records {
		sb.WriteString(fmt.Sprintf("%s,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f\n",
			csvTime(r.Timestamp),
			finite(r.TotalValue),
			finite(r.DailyReturn),
			finite(r.CumulativeReturn),
			fill(r.Volatility30),
			fill(r.SharpeRatio),
			finite(r.Peak),
			finite(r.Drawdown),
			finite(r.MaxDrawdown),
			finite(r.Beta),
			finite(r.Alpha),
		))
	}

	return sb.String()
}

// RenderRiskCSV renders risk records as CSV string.
func RenderRiskCSV(records []*domain.RiskRecord) string {
	var sb strings.Builder

	// Header
	sb.WriteString("timestamp,var_95,cvar_95,downside_deviation,sortino_ratio,")
	sb.WriteString("calmar_ratio,information_ratio,volatility_30d,max_drawdown\n")

	// Rows
	for _, r := range records {
		sb.WriteString(fmt.Sprintf("%s,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f\n",
			csvTime(r.Timestamp),
			fill(r.VaR95),
			fill(r.CVaR95),
			fill(r.DownsideDeviation),
			fill(r.SortinoRatio),
			fill(r.CalmarRatio),
			fill(r.InformationRatio),
			fill(r.Volatility30),
			finite(r.MaxDrawdown),
		))
	}

	return sb.String()
}

// RenderAllocationCSV renders allocation records as CSV string.
func RenderAllocationCSV(records []*domain.AllocationRecord) string {
	var sb strings.Builder

	// Header
	sb.WriteString("asset_symbol,allocation_pct,allocation_rank,concentration_contribution,")
	sb.WriteString("portfolio_concentration,effective_assets,diversification_score\n")

	// Rows
	for _, r := range records {
		sb.WriteString(fmt.Sprintf("%s,%.6f,%.1f,%.6f,%.6f,%.6f,%.6f\n",
			r.AssetSymbol,
			finite(r.AllocationPct),
			finite(r.AllocationRank),
			finite(r.ConcentrationContribution),
			finite(r.PortfolioConcentration),
			finite(r.EffectiveAssets),
			finite(r.DiversificationScore),
		))
	}

	return sb.String()
}

// RenderInsightsCSV renders market insights as CSV string.
func RenderInsightsCSV(insights []*domain.MarketInsight) string {
	var sb strings.Builder

	// Header
	sb.WriteString("asset_symbol,current_price,price_ma_30,price_ma_90,volatility_30d,")
	sb.WriteString("momentum_30d,momentum_90d,rsi,trend,volatility_level\n")

	// Rows
	for _, in := range insights {
		sb.WriteString(fmt.Sprintf("%s,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%s,%s\n",
			in.AssetSymbol,
			finite(in.CurrentPrice),
			fill(in.PriceMA30),
			fill(in.PriceMA90),
			fill(in.Volatility30),
			fill(in.Momentum30),
			fill(in.Momentum90),
			fill(in.RSI),
			in.Trend,
			in.VolatilityLevel,
		))
	}

	return sb.String()
}

// RenderPensionCSV renders one platform's reconciled series as CSV string.
func RenderPensionCSV(records []*domain.PensionTimeseriesRecord) string {
	var sb strings.Builder

	// Header
	sb.WriteString("platform,timestamp,cash_invested,observed_value,imputed_value,")
	sb.WriteString("gain_loss_abs,gain_loss_pct,imputed_gain_loss_abs,imputed_gain_loss_pct\n")

	// Rows
	for _, r := range records {
		sb.WriteString(fmt.Sprintf("%s,%s,%.2f,%.2f,%.2f,%.2f,%.2f,%.2f,%.2f\n",
			r.Platform,
			csvTime(r.Timestamp),
			finite(r.CashInvested),
			fill(r.ObservedValue),
			finite(r.ImputedValue),
			fill(r.GainLossAbs),
			fill(r.GainLossPct),
			finite(r.ImputedGainLossAbs),
			fill(r.ImputedGainLossPct),
		))
	}

	return sb.String()
}
