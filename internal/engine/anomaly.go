package engine

import (
	"sort"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
)

// classifyCycles partitions raw cycles into a clean subset fit for
// forecasting and the full, flag-annotated list kept for anomaly counting
// and audit display.
//
// Baseline medians come from non-override cycles only: a cycle a human
// already corrected must not anchor the next forecast. If every cycle is an
// override, the full set serves as baseline to avoid an empty one.
func classifyCycles(raw []domain.PurchaseCycle) (valid, all []domain.PurchaseCycle) {
	baseline := make([]domain.PurchaseCycle, 0, len(raw))
	for _, c := range raw {
		if !c.Overridden {
			baseline = append(baseline, c)
		}
	}
	if len(baseline) == 0 {
		baseline = raw
	}

	quantities := make([]float64, len(baseline))
	durations := make([]float64, len(baseline))
	for i, c := range baseline {
		quantities[i] = c.QuantityConsumed
		durations[i] = c.DurationDays
	}
	medianQty := median(quantities)
	medianDur := median(durations)

	all = make([]domain.PurchaseCycle, 0, len(raw))
	valid = make([]domain.PurchaseCycle, 0, len(raw))
	for _, c := range raw {
		if reason, anomalous := checkCycle(c, medianQty, medianDur); anomalous {
			c.Anomalous = true
			c.AnomalyReason = reason
		} else {
			valid = append(valid, c)
		}
		all = append(all, c)
	}

	return valid, all
}

// checkCycle applies the anomaly rules in order. A zero median means the
// corresponding rule cannot evaluate, never that it fires.
func checkCycle(c domain.PurchaseCycle, medianQty, medianDur float64) (domain.AnomalyReason, bool) {
	switch {
	case c.Overridden:
		return domain.ReasonOverride, true
	case medianQty > 0 && c.QuantityConsumed > QuantitySpikeFactor*medianQty:
		return domain.ReasonPanicBuy, true
	case medianDur > 0 && c.DurationDays > DurationStretchFactor*medianDur:
		return domain.ReasonHoarding, true
	case medianDur > 0 && c.DurationDays < DurationShrinkFactor*medianDur:
		return domain.ReasonPremature, true
	case c.StartStock > 0 && c.EndStock > UnderConsumptionRatio*c.StartStock:
		return domain.ReasonUnderConsumption, true
	}

	return "", false
}

// median returns the middle value of vs, averaging the two middle values for
// even-length input. Empty input yields 0.
func median(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}

	sorted := append([]float64(nil), vs...)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
