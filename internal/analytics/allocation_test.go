package analytics

import (
	"testing"

	"github.com/hashadar/fintracker-v2/internal/domain"
)

func TestAnalyzeAllocations(t *testing.T) {
	positions := []*domain.Position{
		{AssetSymbol: "BTC", AllocationPct: 50},
		{AssetSymbol: "ETH", AllocationPct: 30},
		{AssetSymbol: "SOL", AllocationPct: 20},
	}
	records := AnalyzeAllocations(positions)

	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	wantContribution := []float64{0.25, 0.09, 0.04}
	wantRank := []float64{1, 2, 3}
	for i, rec := range records {
		if !almostEqual(rec.ConcentrationContribution, wantContribution[i]) {
			t.Errorf("ConcentrationContribution[%s]: got %v, want %v", rec.AssetSymbol, rec.ConcentrationContribution, wantContribution[i])
		}
		if rec.AllocationRank != wantRank[i] {
			t.Errorf("AllocationRank[%s]: got %v, want %v", rec.AssetSymbol, rec.AllocationRank, wantRank[i])
		}
		if !almostEqual(rec.PortfolioConcentration, 0.38) {
			t.Errorf("PortfolioConcentration[%s]: got %v, want 0.38", rec.AssetSymbol, rec.PortfolioConcentration)
		}
		if !almostEqual(rec.EffectiveAssets, 1/0.38) {
			t.Errorf("EffectiveAssets[%s]: got %v, want %v", rec.AssetSymbol, rec.EffectiveAssets, 1/0.38)
		}
		if !almostEqual(rec.DiversificationScore, 0.62) {
			t.Errorf("DiversificationScore[%s]: got %v, want 0.62", rec.AssetSymbol, rec.DiversificationScore)
		}
	}
}

func TestAnalyzeAllocations_TiedRanksAverage(t *testing.T) {
	positions := []*domain.Position{
		{AssetSymbol: "BTC", AllocationPct: 40},
		{AssetSymbol: "ETH", AllocationPct: 40},
		{AssetSymbol: "SOL", AllocationPct: 20},
	}
	records := AnalyzeAllocations(positions)

	wantRank := []float64{1.5, 1.5, 3}
	for i, rec := range records {
		if rec.AllocationRank != wantRank[i] {
			t.Errorf("AllocationRank[%s]: got %v, want %v", rec.AssetSymbol, rec.AllocationRank, wantRank[i])
		}
	}
}

func TestAnalyzeAllocations_SingleAsset(t *testing.T) {
	records := AnalyzeAllocations([]*domain.Position{
		{AssetSymbol: "BTC", AllocationPct: 100},
	})

	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if !almostEqual(rec.PortfolioConcentration, 1.0) {
		t.Errorf("PortfolioConcentration: got %v, want 1.0", rec.PortfolioConcentration)
	}
	if !almostEqual(rec.EffectiveAssets, 1.0) {
		t.Errorf("EffectiveAssets: got %v, want 1.0", rec.EffectiveAssets)
	}
	if !almostEqual(rec.DiversificationScore, 0) {
		t.Errorf("DiversificationScore: got %v, want 0", rec.DiversificationScore)
	}
}

func TestAnalyzeAllocations_Empty(t *testing.T) {
	if records := AnalyzeAllocations(nil); records != nil {
		t.Errorf("Expected nil for empty positions, got %d records", len(records))
	}
}

func TestAnalyzeAllocations_ZeroAllocations(t *testing.T) {
	records := AnalyzeAllocations([]*domain.Position{
		{AssetSymbol: "BTC", AllocationPct: 0},
		{AssetSymbol: "ETH", AllocationPct: 0},
	})

	for _, rec := range records {
		if rec.EffectiveAssets != 0 {
			t.Errorf("EffectiveAssets[%s]: got %v, want 0 when concentration is 0", rec.AssetSymbol, rec.EffectiveAssets)
		}
		if rec.AllocationRank != 1.5 {
			t.Errorf("AllocationRank[%s]: got %v, want 1.5", rec.AssetSymbol, rec.AllocationRank)
		}
	}
}
