// Package inputs loads raw engine inputs from CSV files into the input
// stores. Extraction from upstream providers is out of scope; these loaders
// accept the exported files those providers produce.
package inputs

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hashadar/fintracker-v2/internal/domain"
	"github.com/hashadar/fintracker-v2/internal/storage"
)

// File names expected under the data directory.
const (
	PositionsFile     = "positions.csv"
	PriceHistoryFile  = "price_history.csv"
	PensionEventsFile = "pension_events.csv"
)

// LoadAll loads every input file present in dataDir into its store. A missing
// file is skipped; the run proceeds on whatever inputs exist.
func LoadAll(ctx context.Context, dataDir string, positions storage.PositionStore, prices storage.PricePointStore, pensions storage.PensionEventStore) error {
	if err := loadFile(dataDir, PositionsFile, func(r io.Reader) error {
		return LoadPositions(ctx, r, positions)
	}); err != nil {
		return err
	}
	if err := loadFile(dataDir, PriceHistoryFile, func(r io.Reader) error {
		return LoadPriceHistory(ctx, r, prices)
	}); err != nil {
		return err
	}
	return loadFile(dataDir, PensionEventsFile, func(r io.Reader) error {
		return LoadPensionEvents(ctx, r, pensions)
	})
}

func loadFile(dataDir, name string, load func(io.Reader) error) error {
	f, err := os.Open(filepath.Join(dataDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	if err := load(f); err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	return nil
}

// LoadPositions reads positions from CSV with header
// asset_symbol,quantity,average_cost,current_value,unrealized_pnl,allocation_pct.
func LoadPositions(ctx context.Context, r io.Reader, store storage.PositionStore) error {
	rows, err := readRows(r, 6)
	if err != nil {
		return err
	}

	var positions []*domain.Position
	for i, row := range rows {
		p := &domain.Position{AssetSymbol: row[0]}
		fields := []struct {
			name string
			dst  *float64
		}{
			{"quantity", &p.Quantity},
			{"average_cost", &p.AverageCost},
			{"current_value", &p.CurrentValue},
			{"unrealized_pnl", &p.UnrealizedPnL},
			{"allocation_pct", &p.AllocationPct},
		}
		for j, f := range fields {
			if *f.dst, err = parseFloat(row[j+1]); err != nil {
				return fmt.Errorf("row %d: parse %s: %w", i+2, f.name, err)
			}
		}
		positions = append(positions, p)
	}

	return store.InsertBulk(ctx, positions)
}

// LoadPriceHistory reads price points from CSV with header
// asset_symbol,timestamp,open,high,low,close,volume.
func LoadPriceHistory(ctx context.Context, r io.Reader, store storage.PricePointStore) error {
	rows, err := readRows(r, 7)
	if err != nil {
		return err
	}

	var points []*domain.PricePoint
	for i, row := range rows {
		p := &domain.PricePoint{AssetSymbol: row[0]}
		if p.Timestamp, err = parseTime(row[1]); err != nil {
			return fmt.Errorf("row %d: parse timestamp: %w", i+2, err)
		}
		fields := []struct {
			name string
			dst  *float64
		}{
			{"open", &p.Open},
			{"high", &p.High},
			{"low", &p.Low},
			{"close", &p.Close},
			{"volume", &p.Volume},
		}
		for j, f := range fields {
			if *f.dst, err = parseFloat(row[j+2]); err != nil {
				return fmt.Errorf("row %d: parse %s: %w", i+2, f.name, err)
			}
		}
		points = append(points, p)
	}

	return store.InsertBulk(ctx, points)
}

// LoadPensionEvents reads pension events from CSV with header
// platform,timestamp,kind,amount. Kind is "contribution" or "valuation".
func LoadPensionEvents(ctx context.Context, r io.Reader, store storage.PensionEventStore) error {
	rows, err := readRows(r, 4)
	if err != nil {
		return err
	}

	var events []*domain.PensionEvent
	for i, row := range rows {
		e := &domain.PensionEvent{Platform: row[0]}
		if e.Timestamp, err = parseTime(row[1]); err != nil {
			return fmt.Errorf("row %d: parse timestamp: %w", i+2, err)
		}
		switch domain.PensionEventKind(row[2]) {
		case domain.EventContribution, domain.EventValuation:
			e.Kind = domain.PensionEventKind(row[2])
		default:
			return fmt.Errorf("row %d: unknown event kind %q", i+2, row[2])
		}
		if e.Amount, err = parseFloat(row[3]); err != nil {
			return fmt.Errorf("row %d: parse amount: %w", i+2, err)
		}
		events = append(events, e)
	}

	return store.InsertBulk(ctx, events)
}

// readRows reads all CSV records, validates the column count and drops the
// header row.
func readRows(r io.Reader, columns int) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = columns
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// parseTime accepts RFC3339 or plain dates (2006-01-02), both read as UTC.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
