package engine

import (
	"math"
	"time"
)

// reorderPlan carries both the final integers and every intermediate float,
// so a recommendation can be explained down to its inputs.
type reorderPlan struct {
	SafetyStock      float64
	ReorderPoint     float64
	DaysUntilReorder float64
	ReorderDate      time.Time
	RawQty           float64
	CapQty           float64
	RecommendedQty   int
	CapApplied       bool
}

// planReorder turns a usage rate and predicted cycle length into a reorder
// point, a reorder date and a capital-bounded order quantity. The capital
// cap keeps one unusually large historical cycle from driving
// over-ordering: the recommendation never exceeds CriticalityFactor cycles
// of predicted usage.
func planReorder(currentStock, rate, predictedDays float64, leadTimeDays int, coverage float64, now time.Time) reorderPlan {
	lead := float64(leadTimeDays)

	safetyStock := rate * lead * CriticalityFactor
	reorderPoint := rate*lead + safetyStock

	daysUntil := math.Max(0, (currentStock-reorderPoint)/rate)

	rawQty := rate * predictedDays * coverage
	capQty := CriticalityFactor * rate * predictedDays
	capApplied := rawQty > capQty

	return reorderPlan{
		SafetyStock:      safetyStock,
		ReorderPoint:     reorderPoint,
		DaysUntilReorder: daysUntil,
		ReorderDate:      now.Add(time.Duration(daysUntil * float64(hoursPerDay) * float64(time.Hour))),
		RawQty:           rawQty,
		CapQty:           capQty,
		RecommendedQty:   int(math.Ceil(math.Min(rawQty, capQty))),
		CapApplied:       capApplied,
	}
}
