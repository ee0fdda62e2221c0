package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashadar/fintracker-v2/internal/domain"
	"github.com/hashadar/fintracker-v2/internal/storage"
)

func TestPensionTimeseriesStore_InsertBulkAndGetByPlatform(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPensionTimeseriesStore(conn)
	ctx := context.Background()

	records := []*domain.PensionTimeseriesRecord{
		{
			Platform:           "aviva",
			Timestamp:          ts(3),
			CashInvested:       1500,
			ObservedValue:      ptr(1650.0),
			ImputedValue:       1650,
			GainLossAbs:        ptr(150.0),
			GainLossPct:        ptr(10.0),
			ImputedGainLossAbs: 150,
			ImputedGainLossPct: ptr(10.0),
		},
		{
			Platform:           "aviva",
			Timestamp:          ts(1),
			CashInvested:       1000,
			ImputedValue:       1000,
			ImputedGainLossPct: ptr(0.0),
			// Observed fields nil: no valuation at this timestamp
		},
		{
			Platform:     "nest",
			Timestamp:    ts(1),
			CashInvested: 500,
			ImputedValue: 500,
		},
	}

	err := store.InsertBulk(ctx, records)
	require.NoError(t, err)

	retrieved, err := store.GetByPlatform(ctx, "aviva")
	require.NoError(t, err)
	require.Len(t, retrieved, 2)

	// Ordered by timestamp ascending.
	assert.True(t, retrieved[0].Timestamp.Equal(ts(1)))
	assert.Equal(t, 1000.0, retrieved[0].CashInvested)

	// Nil observed fields survive the round trip.
	assert.Nil(t, retrieved[0].ObservedValue)
	assert.Nil(t, retrieved[0].GainLossAbs)
	assert.Nil(t, retrieved[0].GainLossPct)

	require.NotNil(t, retrieved[1].ObservedValue)
	assert.Equal(t, 1650.0, *retrieved[1].ObservedValue)
	require.NotNil(t, retrieved[1].GainLossPct)
	assert.Equal(t, 10.0, *retrieved[1].GainLossPct)
	assert.Equal(t, 150.0, retrieved[1].ImputedGainLossAbs)
}

func TestPensionTimeseriesStore_ListPlatforms(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPensionTimeseriesStore(conn)
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.PensionTimeseriesRecord{
		{Platform: "nest", Timestamp: ts(1), CashInvested: 500, ImputedValue: 500},
		{Platform: "aviva", Timestamp: ts(1), CashInvested: 1000, ImputedValue: 1000},
	})
	require.NoError(t, err)

	platforms, err := store.ListPlatforms(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"aviva", "nest"}, platforms)
}

func TestPensionTimeseriesStore_DuplicateKey(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPensionTimeseriesStore(conn)
	ctx := context.Background()

	record := &domain.PensionTimeseriesRecord{
		Platform: "aviva", Timestamp: ts(1), CashInvested: 1000, ImputedValue: 1000,
	}

	err := store.InsertBulk(ctx, []*domain.PensionTimeseriesRecord{record})
	require.NoError(t, err)

	err = store.InsertBulk(ctx, []*domain.PensionTimeseriesRecord{record})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Same timestamp on another platform is a distinct key.
	err = store.InsertBulk(ctx, []*domain.PensionTimeseriesRecord{
		{Platform: "nest", Timestamp: ts(1), CashInvested: 500, ImputedValue: 500},
	})
	require.NoError(t, err)
}
