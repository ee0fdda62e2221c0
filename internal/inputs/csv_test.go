package inputs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hashadar/fintracker-v2/internal/domain"
	"github.com/hashadar/fintracker-v2/internal/storage/memory"
)

func TestLoadPositions(t *testing.T) {
	ctx := context.Background()
	store := memory.NewPositionStore()

	input := strings.NewReader(
		"asset_symbol,quantity,average_cost,current_value,unrealized_pnl,allocation_pct\n" +
			"BTC,1.5,20000,45000,15000,60\n" +
			"ETH,10,1000,20000,10000,40\n")

	if err := LoadPositions(ctx, input, store); err != nil {
		t.Fatalf("LoadPositions failed: %v", err)
	}

	positions, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(positions) != 2 {
		t.Fatalf("Expected 2 positions, got %d", len(positions))
	}

	var btc *domain.Position
	for _, p := range positions {
		if p.AssetSymbol == "BTC" {
			btc = p
		}
	}
	if btc == nil {
		t.Fatal("BTC position not loaded")
	}
	if btc.Quantity != 1.5 || btc.AverageCost != 20000 || btc.AllocationPct != 60 {
		t.Errorf("BTC fields: got %+v", btc)
	}
}

func TestLoadPositions_BadFloat(t *testing.T) {
	store := memory.NewPositionStore()
	input := strings.NewReader(
		"asset_symbol,quantity,average_cost,current_value,unrealized_pnl,allocation_pct\n" +
			"BTC,abc,20000,45000,15000,60\n")

	err := LoadPositions(context.Background(), input, store)
	if err == nil {
		t.Fatal("Expected parse error")
	}
	if !strings.Contains(err.Error(), "row 2") || !strings.Contains(err.Error(), "quantity") {
		t.Errorf("Error should name the row and field: %v", err)
	}
}

func TestLoadPriceHistory(t *testing.T) {
	ctx := context.Background()
	store := memory.NewPricePointStore()

	input := strings.NewReader(
		"asset_symbol,timestamp,open,high,low,close,volume\n" +
			"BTC,2024-01-01,100,115,95,110,1000\n" +
			"BTC,2024-01-02T12:30:00Z,110,130,100,120,1200\n")

	if err := LoadPriceHistory(ctx, input, store); err != nil {
		t.Fatalf("LoadPriceHistory failed: %v", err)
	}

	points, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(points))
	}

	// Plain dates read as midnight UTC.
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !points[0].Timestamp.Equal(want) {
		t.Errorf("Timestamp[0]: got %v, want %v", points[0].Timestamp, want)
	}
	want = time.Date(2024, 1, 2, 12, 30, 0, 0, time.UTC)
	if !points[1].Timestamp.Equal(want) {
		t.Errorf("Timestamp[1]: got %v, want %v", points[1].Timestamp, want)
	}
	if points[1].Close != 120 || points[1].Volume != 1200 {
		t.Errorf("Fields[1]: got %+v", points[1])
	}
}

func TestLoadPriceHistory_WrongColumnCount(t *testing.T) {
	store := memory.NewPricePointStore()
	input := strings.NewReader(
		"asset_symbol,timestamp,open,high,low,close,volume\n" +
			"BTC,2024-01-01,100\n")

	if err := LoadPriceHistory(context.Background(), input, store); err == nil {
		t.Fatal("Expected error for wrong column count")
	}
}

func TestLoadPensionEvents(t *testing.T) {
	ctx := context.Background()
	store := memory.NewPensionEventStore()

	input := strings.NewReader(
		"platform,timestamp,kind,amount\n" +
			"aviva,2024-01-01,contribution,1000\n" +
			"aviva,2024-01-15,valuation,1100\n")

	if err := LoadPensionEvents(ctx, input, store); err != nil {
		t.Fatalf("LoadPensionEvents failed: %v", err)
	}

	contributions, err := store.GetByPlatform(ctx, "aviva", domain.EventContribution)
	if err != nil {
		t.Fatalf("GetByPlatform failed: %v", err)
	}
	if len(contributions) != 1 || contributions[0].Amount != 1000 {
		t.Errorf("Contributions: got %+v", contributions)
	}

	valuations, err := store.GetByPlatform(ctx, "aviva", domain.EventValuation)
	if err != nil {
		t.Fatalf("GetByPlatform failed: %v", err)
	}
	if len(valuations) != 1 || valuations[0].Amount != 1100 {
		t.Errorf("Valuations: got %+v", valuations)
	}
}

func TestLoadPensionEvents_UnknownKind(t *testing.T) {
	store := memory.NewPensionEventStore()
	input := strings.NewReader(
		"platform,timestamp,kind,amount\n" +
			"aviva,2024-01-01,withdrawal,1000\n")

	err := LoadPensionEvents(context.Background(), input, store)
	if err == nil {
		t.Fatal("Expected error for unknown event kind")
	}
	if !strings.Contains(err.Error(), "withdrawal") {
		t.Errorf("Error should name the unknown kind: %v", err)
	}
}

func TestLoadAll_MissingFilesSkipped(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	// Only positions.csv exists; the other inputs are simply absent.
	positionsCSV := "asset_symbol,quantity,average_cost,current_value,unrealized_pnl,allocation_pct\n" +
		"BTC,1,20000,30000,10000,100\n"
	if err := os.WriteFile(filepath.Join(dir, PositionsFile), []byte(positionsCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	positions := memory.NewPositionStore()
	prices := memory.NewPricePointStore()
	pensions := memory.NewPensionEventStore()

	if err := LoadAll(ctx, dir, positions, prices, pensions); err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	loaded, _ := positions.GetAll(ctx)
	if len(loaded) != 1 {
		t.Errorf("Expected 1 position, got %d", len(loaded))
	}
	points, _ := prices.GetAll(ctx)
	if len(points) != 0 {
		t.Errorf("Expected no price points, got %d", len(points))
	}
}

func TestLoadAll_EmptyFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, PositionsFile), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	positions := memory.NewPositionStore()
	if err := LoadAll(ctx, dir, positions, memory.NewPricePointStore(), memory.NewPensionEventStore()); err != nil {
		t.Fatalf("LoadAll on an empty file failed: %v", err)
	}
	loaded, _ := positions.GetAll(ctx)
	if len(loaded) != 0 {
		t.Errorf("Expected no positions from an empty file, got %d", len(loaded))
	}
}
