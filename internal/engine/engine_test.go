package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
)

// fakeStore is an in-memory HistoryRepository for engine tests.
type fakeStore struct {
	receipts  []domain.ReceivingEvent
	entries   []domain.AuditLogEntry
	overrides []domain.OverrideRecord
	err       error
}

func (f *fakeStore) RecentReceipts(ctx context.Context, itemID string, limit int) ([]domain.ReceivingEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && len(f.receipts) > limit {
		return f.receipts[:limit], nil
	}
	return f.receipts, nil
}

func (f *fakeStore) AuditEntries(ctx context.Context, itemID string, since time.Time) ([]domain.AuditLogEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

func (f *fakeStore) Overrides(ctx context.Context, itemID string) ([]domain.OverrideRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.overrides, nil
}

var testBase = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(n float64) time.Time {
	return testBase.Add(-time.Duration(n * 24 * float64(time.Hour)))
}

func receipt(at time.Time, qty float64) domain.ReceivingEvent {
	return domain.ReceivingEvent{ItemID: "item-1", Quantity: qty, ReceivedAt: at}
}

func consumedEntry(at time.Time, delta float64) domain.AuditLogEntry {
	return domain.AuditLogEntry{
		ItemID:     "item-1",
		Action:     domain.ActionConsumed,
		OccurredAt: at,
		Details:    json.RawMessage(fmt.Sprintf(`{"delta": %g}`, delta)),
	}
}

func restockedEntry(at time.Time, newStock float64) domain.AuditLogEntry {
	return domain.AuditLogEntry{
		ItemID:     "item-1",
		Action:     domain.ActionRestocked,
		OccurredAt: at,
		Details:    json.RawMessage(fmt.Sprintf(`{"new_stock": %g}`, newStock)),
	}
}

func updatedEntry(at time.Time, previousStock float64) domain.AuditLogEntry {
	return domain.AuditLogEntry{
		ItemID:     "item-1",
		Action:     domain.ActionUpdated,
		OccurredAt: at,
		Details:    json.RawMessage(fmt.Sprintf(`{"previous_stock": %g}`, previousStock)),
	}
}

func testItem(stock float64) domain.Item {
	return domain.Item{ID: "item-1", Name: "Widget", CurrentStock: stock}
}

func TestComputeMetrics_NoReceiptsIsDormant(t *testing.T) {
	eng := New(&fakeStore{}, 1)

	metrics := eng.ComputeMetrics(context.Background(), testItem(40), Options{})

	assert.Equal(t, domain.StatusDormant, metrics.Status)
	assert.Equal(t, domain.ConfidenceLow, metrics.Confidence)
	assert.Equal(t, 0, metrics.RecommendedQty)
	assert.True(t, math.IsInf(metrics.DaysRemaining, 1))
	assert.Nil(t, metrics.RecommendedOrderDate)
	assert.Equal(t, DefaultLeadTimeDays, metrics.LeadTimeDays)
}

func TestComputeMetrics_SingleReceiptIsDormant(t *testing.T) {
	store := &fakeStore{receipts: []domain.ReceivingEvent{receipt(daysAgo(5), 50)}}
	eng := New(store, 1)

	metrics := eng.ComputeMetrics(context.Background(), testItem(40), Options{})

	assert.Equal(t, domain.StatusDormant, metrics.Status)
	assert.Equal(t, 0, metrics.RecommendedQty)
}

func TestComputeMetrics_StoreFailureDegradesToDormant(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	eng := New(store, 1)

	metrics := eng.ComputeMetrics(context.Background(), testItem(40), Options{})

	assert.Equal(t, domain.StatusDormant, metrics.Status)
	assert.Equal(t, 0, metrics.AnomalyCount)
	assert.Equal(t, 0, metrics.RecommendedQty)
	assert.True(t, math.IsInf(metrics.DaysRemaining, 1))
}

func TestComputeMetrics_EndToEnd(t *testing.T) {
	// Three clean 10-day cycles of 50 units each.
	store := &fakeStore{
		receipts: []domain.ReceivingEvent{
			receipt(daysAgo(0), 50),
			receipt(daysAgo(10), 50),
			receipt(daysAgo(20), 50),
			receipt(daysAgo(30), 50),
		},
		entries: []domain.AuditLogEntry{
			consumedEntry(daysAgo(25), 50),
			consumedEntry(daysAgo(15), 50),
			consumedEntry(daysAgo(5), 50),
		},
	}
	eng := New(store, 1)
	eng.now = func() time.Time { return testBase }

	metrics := eng.ComputeMetrics(context.Background(), testItem(100), Options{})

	assert.InDelta(t, 5.0, metrics.DailyUsageRate, 1e-9)
	assert.InDelta(t, 10.0, metrics.PredictedCycleDays, 1e-9)
	assert.InDelta(t, 20.0, metrics.DaysRemaining, 1e-9)
	assert.InDelta(t, 0.0, metrics.StabilityIndex, 1e-9)
	assert.False(t, metrics.Volatile)
	assert.Equal(t, domain.ConfidenceHigh, metrics.Confidence)
	assert.Equal(t, domain.StatusHealthy, metrics.Status)
	assert.Equal(t, 0, metrics.AnomalyCount)
	assert.Equal(t, 50, metrics.RecommendedQty)

	assert.InDelta(t, 42.0, metrics.Audit.SafetyStock, 1e-9)
	assert.InDelta(t, 77.0, metrics.Audit.ReorderPoint, 1e-9)
	assert.InDelta(t, 50.0, metrics.Audit.RawQty, 1e-9)
	assert.InDelta(t, 60.0, metrics.Audit.CapQty, 1e-9)
	assert.False(t, metrics.Audit.CapApplied)
	assert.Len(t, metrics.Audit.CyclesUsed, 3)

	require.NotNil(t, metrics.RecommendedOrderDate)
	// (100 - 77) / 5 = 4.6 days until the reorder point is crossed.
	wantDate := testBase.Add(time.Duration(4.6 * 24 * float64(time.Hour)))
	assert.WithinDuration(t, wantDate, *metrics.RecommendedOrderDate, time.Second)
}

func TestComputeMetrics_CoverageMultiplierIsCapped(t *testing.T) {
	store := &fakeStore{
		receipts: []domain.ReceivingEvent{
			receipt(daysAgo(0), 50),
			receipt(daysAgo(10), 50),
			receipt(daysAgo(20), 50),
			receipt(daysAgo(30), 50),
		},
		entries: []domain.AuditLogEntry{
			consumedEntry(daysAgo(25), 50),
			consumedEntry(daysAgo(15), 50),
			consumedEntry(daysAgo(5), 50),
		},
	}
	eng := New(store, 1)

	metrics := eng.ComputeMetrics(context.Background(), testItem(100), Options{CoverageCycles: 3})

	// raw = 5 * 10 * 3 = 150, cap = 1.2 * 5 * 10 = 60.
	assert.True(t, metrics.Audit.CapApplied)
	assert.Equal(t, 60, metrics.RecommendedQty)
	assert.LessOrEqual(t, float64(metrics.RecommendedQty), math.Ceil(metrics.Audit.CapQty))
}

func TestComputeBatch_KeepsItemOrder(t *testing.T) {
	store := &fakeStore{
		receipts: []domain.ReceivingEvent{
			receipt(daysAgo(0), 50),
			receipt(daysAgo(10), 50),
			receipt(daysAgo(20), 50),
		},
		entries: []domain.AuditLogEntry{
			consumedEntry(daysAgo(15), 50),
			consumedEntry(daysAgo(5), 50),
		},
	}
	eng := New(store, 4)

	items := []domain.Item{
		{ID: "item-a", Name: "A", CurrentStock: 100},
		{ID: "item-b", Name: "B", CurrentStock: 10},
	}
	results := eng.ComputeBatch(context.Background(), items, Options{})

	require.Len(t, results, 2)
	assert.Equal(t, "item-a", results[0].ItemID)
	assert.Equal(t, "item-b", results[1].ItemID)
}
