package engine

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
)

func TestBuildCycles_InsufficientHistory(t *testing.T) {
	eng := New(&fakeStore{receipts: []domain.ReceivingEvent{receipt(daysAgo(3), 20)}}, 1)

	cycles, err := eng.buildCycles(context.Background(), "item-1")

	require.NoError(t, err)
	assert.Empty(t, cycles)
}

func TestBuildCycles_ConsumedLogsTakePriority(t *testing.T) {
	store := &fakeStore{
		receipts: []domain.ReceivingEvent{
			receipt(daysAgo(0), 40),
			receipt(daysAgo(10), 60),
		},
		entries: []domain.AuditLogEntry{
			consumedEntry(daysAgo(8), 10),
			consumedEntry(daysAgo(4), 20),
			// Snapshots exist too, but the consumed sum wins.
			restockedEntry(daysAgo(10).Add(5*time.Minute), 90),
			updatedEntry(daysAgo(0).Add(-5*time.Minute), 15),
		},
	}
	eng := New(store, 1)

	cycles, err := eng.buildCycles(context.Background(), "item-1")

	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Equal(t, domain.SourceConsumedLogs, cycles[0].Provenance)
	assert.InDelta(t, 30.0, cycles[0].QuantityConsumed, 1e-9)
	assert.InDelta(t, 3.0, cycles[0].UsageRate, 1e-9)
	// Boundary snapshots still inform start/end stock.
	assert.InDelta(t, 90.0, cycles[0].StartStock, 1e-9)
	assert.InDelta(t, 15.0, cycles[0].EndStock, 1e-9)
}

func TestBuildCycles_ConsumedEntriesOutsideCycleIgnored(t *testing.T) {
	store := &fakeStore{
		receipts: []domain.ReceivingEvent{
			receipt(daysAgo(0), 40),
			receipt(daysAgo(10), 60),
		},
		entries: []domain.AuditLogEntry{
			// Exactly at cycle start: excluded (strictly after).
			consumedEntry(daysAgo(10), 99),
			// Exactly at cycle end: included (at/before).
			consumedEntry(daysAgo(0), 25),
		},
	}
	eng := New(store, 1)

	cycles, err := eng.buildCycles(context.Background(), "item-1")

	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.InDelta(t, 25.0, cycles[0].QuantityConsumed, 1e-9)
}

func TestBuildCycles_SnapshotFallback(t *testing.T) {
	store := &fakeStore{
		receipts: []domain.ReceivingEvent{
			receipt(daysAgo(0), 40),
			receipt(daysAgo(10), 60),
		},
		entries: []domain.AuditLogEntry{
			restockedEntry(daysAgo(10).Add(10*time.Minute), 80),
			updatedEntry(daysAgo(0).Add(-10*time.Minute), 20),
		},
	}
	eng := New(store, 1)

	cycles, err := eng.buildCycles(context.Background(), "item-1")

	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Equal(t, domain.SourceSnapshot, cycles[0].Provenance)
	assert.InDelta(t, 60.0, cycles[0].QuantityConsumed, 1e-9)
	assert.InDelta(t, 80.0, cycles[0].StartStock, 1e-9)
	assert.InDelta(t, 20.0, cycles[0].EndStock, 1e-9)
}

func TestBuildCycles_SnapshotClosestEntryWins(t *testing.T) {
	store := &fakeStore{
		receipts: []domain.ReceivingEvent{
			receipt(daysAgo(0), 40),
			receipt(daysAgo(10), 60),
		},
		entries: []domain.AuditLogEntry{
			// Both within the window; the 5-minute one is closer.
			restockedEntry(daysAgo(10).Add(45*time.Minute), 70),
			restockedEntry(daysAgo(10).Add(5*time.Minute), 85),
			updatedEntry(daysAgo(0).Add(-5*time.Minute), 25),
		},
	}
	eng := New(store, 1)

	cycles, err := eng.buildCycles(context.Background(), "item-1")

	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.InDelta(t, 60.0, cycles[0].QuantityConsumed, 1e-9)
	assert.InDelta(t, 85.0, cycles[0].StartStock, 1e-9)
}

func TestBuildCycles_SnapshotOutsideWindowIgnored(t *testing.T) {
	store := &fakeStore{
		receipts: []domain.ReceivingEvent{
			receipt(daysAgo(0), 40),
			receipt(daysAgo(10), 60),
		},
		entries: []domain.AuditLogEntry{
			restockedEntry(daysAgo(10).Add(2*time.Hour), 80),
			updatedEntry(daysAgo(0).Add(-10*time.Minute), 20),
		},
	}
	eng := New(store, 1)

	cycles, err := eng.buildCycles(context.Background(), "item-1")

	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Equal(t, domain.SourceFallbackQty, cycles[0].Provenance)
	assert.InDelta(t, 60.0, cycles[0].QuantityConsumed, 1e-9)
}

func TestBuildCycles_FallbackToOrderQuantity(t *testing.T) {
	store := &fakeStore{
		receipts: []domain.ReceivingEvent{
			receipt(daysAgo(0), 40),
			receipt(daysAgo(10), 60),
		},
	}
	eng := New(store, 1)

	cycles, err := eng.buildCycles(context.Background(), "item-1")

	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Equal(t, domain.SourceFallbackQty, cycles[0].Provenance)
	assert.InDelta(t, 60.0, cycles[0].QuantityConsumed, 1e-9)
	assert.InDelta(t, 60.0, cycles[0].StartStock, 1e-9)
	assert.InDelta(t, 0.0, cycles[0].EndStock, 1e-9)
}

func TestBuildCycles_MalformedPayloadSkipped(t *testing.T) {
	store := &fakeStore{
		receipts: []domain.ReceivingEvent{
			receipt(daysAgo(0), 40),
			receipt(daysAgo(10), 60),
		},
		entries: []domain.AuditLogEntry{
			{
				ItemID:     "item-1",
				Action:     domain.ActionConsumed,
				OccurredAt: daysAgo(5),
				Details:    json.RawMessage(`not json at all`),
			},
		},
	}
	eng := New(store, 1)

	cycles, err := eng.buildCycles(context.Background(), "item-1")

	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Equal(t, domain.SourceFallbackQty, cycles[0].Provenance)
}

func TestBuildCycles_SubDayPairsSkipped(t *testing.T) {
	store := &fakeStore{
		receipts: []domain.ReceivingEvent{
			receipt(daysAgo(0), 40),
			receipt(daysAgo(0).Add(-2*time.Hour), 30),
			receipt(daysAgo(10), 60),
		},
	}
	eng := New(store, 1)

	cycles, err := eng.buildCycles(context.Background(), "item-1")

	require.NoError(t, err)
	// The 2-hour pair is noise; only the long span survives.
	require.Len(t, cycles, 1)
	assert.InDelta(t, 9.9, cycles[0].DurationDays, 0.05)
}

func TestBuildCycles_OverrideFlagWithinHalfOpenRange(t *testing.T) {
	store := &fakeStore{
		receipts: []domain.ReceivingEvent{
			receipt(daysAgo(0), 40),
			receipt(daysAgo(10), 60),
			receipt(daysAgo(20), 60),
		},
		overrides: []domain.OverrideRecord{
			{ItemID: "item-1", CreatedAt: daysAgo(10)},
		},
	}
	eng := New(store, 1)

	cycles, err := eng.buildCycles(context.Background(), "item-1")

	require.NoError(t, err)
	require.Len(t, cycles, 2)
	// Cycles come out newest-first; the override at t-10 sits at the start
	// of the newer cycle and the (exclusive) end of the older one.
	assert.True(t, cycles[0].Overridden)
	assert.False(t, cycles[1].Overridden)
}
