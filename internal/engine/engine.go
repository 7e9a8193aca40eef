// backend-go/internal/engine/engine.go
//
// Package engine turns an item's historical receiving and consumption
// events into a depletion forecast, a confidence-rated reorder
// recommendation and a bounded order quantity. The heuristics are simple
// and explainable on purpose: medians and coefficients of variation a
// human operator can audit, not a statistical model.
package engine

import (
	"context"
	"math"
	"time"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/andresuchdata/replenish/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Options tune a single metrics computation.
type Options struct {
	// CoverageCycles is the target coverage multiplier: how many predicted
	// cycles of stock to order for. Zero or negative means the default of
	// one cycle.
	CoverageCycles float64
}

// Engine is a stateless per-item computation over a queryable history
// store. Invocations share no mutable state, so callers may run them
// concurrently without locks.
type Engine struct {
	store            repository.HistoryRepository
	batchConcurrency int
	now              func() time.Time
}

func New(store repository.HistoryRepository, batchConcurrency int) *Engine {
	if batchConcurrency < 1 {
		batchConcurrency = 1
	}
	return &Engine{
		store:            store,
		batchConcurrency: batchConcurrency,
		now:              time.Now,
	}
}

// ComputeMetrics runs the full pipeline for one item: cycles, anomaly
// classification, rolling-window prediction, reorder planning and status.
// It always returns a metrics record. A failing history store degrades the
// item to a dormant result with the failure logged; it never aborts a
// batch of other items.
func (e *Engine) ComputeMetrics(ctx context.Context, item domain.Item, opts Options) domain.ItemMetrics {
	coverage := opts.CoverageCycles
	if coverage <= 0 {
		coverage = DefaultCoverageCycles
	}
	leadTime := item.LeadTime(DefaultLeadTimeDays)

	raw, err := e.buildCycles(ctx, item.ID)
	if err != nil {
		log.Warn().Err(err).Str("item_id", item.ID).Msg("history unavailable, falling back to dormant")
		return e.dormantMetrics(item, leadTime, nil)
	}

	valid, all := classifyCycles(raw)
	anomalies := anomalyNotes(all)

	pred := predict(valid, len(anomalies))
	if pred.Dormant {
		return e.dormantMetrics(item, leadTime, anomalies)
	}

	daysRemaining := item.CurrentStock / pred.DailyUsageRate
	plan := planReorder(item.CurrentStock, pred.DailyUsageRate, pred.PredictedCycleDays, leadTime, coverage, e.now())

	reorderDate := plan.ReorderDate
	cyclesUsed := make([]time.Time, len(pred.Window))
	for i, c := range pred.Window {
		cyclesUsed[i] = c.End
	}

	return domain.ItemMetrics{
		ItemID:               item.ID,
		ItemName:             item.Name,
		CurrentStock:         item.CurrentStock,
		DailyUsageRate:       pred.DailyUsageRate,
		PredictedCycleDays:   pred.PredictedCycleDays,
		DaysRemaining:        daysRemaining,
		RecommendedOrderDate: &reorderDate,
		RecommendedQty:       plan.RecommendedQty,
		Status:               classifyStatus(daysRemaining, pred.PredictedCycleDays, leadTime),
		Confidence:           pred.Confidence,
		StabilityIndex:       pred.StabilityIndex,
		AnomalyCount:         len(anomalies),
		Volatile:             pred.Volatile,
		LeadTimeDays:         leadTime,
		Audit: domain.MetricsAudit{
			RawQty:       plan.RawQty,
			CapQty:       plan.CapQty,
			CapApplied:   plan.CapApplied,
			SafetyStock:  plan.SafetyStock,
			ReorderPoint: plan.ReorderPoint,
			CyclesUsed:   cyclesUsed,
			Anomalies:    anomalies,
		},
	}
}

// ComputeBatch fans the pipeline out across items with bounded
// concurrency. Per-item failures already degrade to dormant inside
// ComputeMetrics, so the batch itself cannot fail.
func (e *Engine) ComputeBatch(ctx context.Context, items []domain.Item, opts Options) []domain.ItemMetrics {
	results := make([]domain.ItemMetrics, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.batchConcurrency)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			results[i] = e.ComputeMetrics(ctx, item, opts)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// dormantMetrics is the fully populated, zero-valued record for items with
// insufficient or unusable history. Days remaining is infinite and no order
// is recommended.
func (e *Engine) dormantMetrics(item domain.Item, leadTime int, anomalies []domain.AnomalyNote) domain.ItemMetrics {
	if anomalies == nil {
		anomalies = []domain.AnomalyNote{}
	}
	return domain.ItemMetrics{
		ItemID:        item.ID,
		ItemName:      item.Name,
		CurrentStock:  item.CurrentStock,
		DaysRemaining: math.Inf(1),
		Status:        domain.StatusDormant,
		Confidence:    domain.ConfidenceLow,
		AnomalyCount:  len(anomalies),
		LeadTimeDays:  leadTime,
		Audit: domain.MetricsAudit{
			CyclesUsed: []time.Time{},
			Anomalies:  anomalies,
		},
	}
}

func anomalyNotes(all []domain.PurchaseCycle) []domain.AnomalyNote {
	notes := []domain.AnomalyNote{}
	for _, c := range all {
		if c.Anomalous {
			notes = append(notes, domain.AnomalyNote{Reason: c.AnomalyReason, Date: c.End})
		}
	}
	return notes
}
