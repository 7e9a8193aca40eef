package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
)

// buildCycles reconstructs the item's purchase cycles from its most recent
// receipts. Fewer than two receipts yields an empty list, which callers must
// treat as insufficient history rather than an error.
func (e *Engine) buildCycles(ctx context.Context, itemID string) ([]domain.PurchaseCycle, error) {
	receipts, err := e.store.RecentReceipts(ctx, itemID, MaxReceivingEvents)
	if err != nil {
		return nil, fmt.Errorf("fetch receipts for %s: %w", itemID, err)
	}
	if len(receipts) < 2 {
		return nil, nil
	}

	// Newest first, regardless of how the store orders them.
	sort.Slice(receipts, func(i, j int) bool {
		return receipts[i].ReceivedAt.After(receipts[j].ReceivedAt)
	})

	oldest := receipts[len(receipts)-1].ReceivedAt
	entries, err := e.store.AuditEntries(ctx, itemID, oldest.Add(-SnapshotMatchWindow))
	if err != nil {
		return nil, fmt.Errorf("fetch audit entries for %s: %w", itemID, err)
	}

	overrides, err := e.store.Overrides(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("fetch overrides for %s: %w", itemID, err)
	}

	cycles := make([]domain.PurchaseCycle, 0, len(receipts)-1)
	for i := 0; i < len(receipts)-1; i++ {
		newer, older := receipts[i], receipts[i+1]

		duration := newer.ReceivedAt.Sub(older.ReceivedAt).Hours() / hoursPerDay
		if duration < MinCycleDurationDays {
			continue
		}

		cycle := domain.PurchaseCycle{
			Start:        older.ReceivedAt,
			End:          newer.ReceivedAt,
			DurationDays: duration,
			Overridden:   overriddenWithin(overrides, older.ReceivedAt, newer.ReceivedAt),
		}
		deriveConsumption(&cycle, older.Quantity, entries)
		cycle.UsageRate = cycle.QuantityConsumed / duration

		cycles = append(cycles, cycle)
	}

	return cycles, nil
}

// deriveConsumption fills in the cycle's consumed quantity, provenance and
// boundary stock levels. Sources are tried in strict priority order:
// consumed-log sum, then boundary stock snapshots, then the older receipt's
// quantity as a replenishment-cycle heuristic.
func deriveConsumption(cycle *domain.PurchaseCycle, orderQty float64, entries []domain.AuditLogEntry) {
	startSnap, haveStart := snapshotNear(entries, domain.ActionRestocked, cycle.Start)
	endSnap, haveEnd := snapshotNear(entries, domain.ActionUpdated, cycle.End)

	if sum := consumedSum(entries, cycle.Start, cycle.End); sum > 0 {
		cycle.QuantityConsumed = sum
		cycle.Provenance = domain.SourceConsumedLogs
	} else if haveStart && haveEnd && startSnap >= endSnap {
		cycle.QuantityConsumed = startSnap - endSnap
		cycle.Provenance = domain.SourceSnapshot
	} else {
		cycle.QuantityConsumed = orderQty
		cycle.Provenance = domain.SourceFallbackQty
	}

	// Boundary stock levels feed the under-consumption check. When no
	// snapshot is trustworthy, the order quantity stands in for the level
	// right after receiving.
	cycle.StartStock = orderQty
	if haveStart {
		cycle.StartStock = startSnap
	}
	if haveEnd {
		cycle.EndStock = endSnap
	} else {
		cycle.EndStock = cycle.StartStock - cycle.QuantityConsumed
	}
}

// consumedSum totals CONSUMED deltas strictly after start and at/before end.
// Entries with unparseable payloads contribute nothing.
func consumedSum(entries []domain.AuditLogEntry, start, end time.Time) float64 {
	var sum float64
	for _, entry := range entries {
		if entry.Action != domain.ActionConsumed {
			continue
		}
		if !entry.OccurredAt.After(start) || entry.OccurredAt.After(end) {
			continue
		}
		payload, ok := entry.Payload()
		if !ok || payload.Delta == nil {
			continue
		}
		sum += *payload.Delta
	}
	return sum
}

// snapshotNear returns the stock level from the entry of the given action
// closest to the boundary, within SnapshotMatchWindow on either side. When
// several entries qualify, the one nearest the boundary wins.
func snapshotNear(entries []domain.AuditLogEntry, action domain.AuditAction, boundary time.Time) (float64, bool) {
	var (
		best     float64
		bestDist time.Duration
		found    bool
	)

	for _, entry := range entries {
		if entry.Action != action {
			continue
		}
		dist := entry.OccurredAt.Sub(boundary)
		if dist < 0 {
			dist = -dist
		}
		if dist > SnapshotMatchWindow {
			continue
		}

		payload, ok := entry.Payload()
		if !ok {
			continue
		}

		var level *float64
		switch action {
		case domain.ActionRestocked:
			level = payload.NewStock
		case domain.ActionUpdated:
			level = payload.PreviousStock
		}
		if level == nil || math.IsNaN(*level) {
			continue
		}

		if !found || dist < bestDist {
			best = *level
			bestDist = dist
			found = true
		}
	}

	return best, found
}

// overriddenWithin reports whether any override record falls in [start, end).
func overriddenWithin(overrides []domain.OverrideRecord, start, end time.Time) bool {
	for _, o := range overrides {
		if !o.CreatedAt.Before(start) && o.CreatedAt.Before(end) {
			return true
		}
	}
	return false
}
