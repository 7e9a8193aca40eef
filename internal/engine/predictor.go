package engine

import (
	"math"
	"sort"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
)

// prediction is the rolling-window forecast derived from the most recent
// valid cycles.
type prediction struct {
	DailyUsageRate     float64
	PredictedCycleDays float64
	StabilityIndex     float64
	Volatile           bool
	Confidence         domain.ConfidenceTier
	Window             []domain.PurchaseCycle
	Dormant            bool
}

// predict derives a usage rate, predicted cycle length and stability score
// from at most RollingWindowSize of the most recent valid cycles.
// anomalyCount covers the entire raw history, not just the window, since a
// history that needed pruning never earns HIGH confidence.
//
// With no valid cycles, or a usage rate below the negligible threshold, the
// item is dormant: there is no silent fallback to an assumed cycle length.
func predict(valid []domain.PurchaseCycle, anomalyCount int) prediction {
	if len(valid) == 0 {
		return prediction{Dormant: true, Confidence: domain.ConfidenceLow}
	}

	sorted := append([]domain.PurchaseCycle(nil), valid...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].End.After(sorted[j].End)
	})

	window := sorted
	if len(window) > RollingWindowSize {
		window = window[:RollingWindowSize]
	}

	var totalQty, totalDays float64
	for _, c := range window {
		totalQty += c.QuantityConsumed
		totalDays += c.DurationDays
	}

	rate := totalQty / totalDays
	if rate < NegligibleDailyUsage {
		return prediction{Dormant: true, Confidence: domain.ConfidenceLow, Window: window}
	}

	durations := make([]float64, len(window))
	rates := make([]float64, len(window))
	for i, c := range window {
		durations[i] = c.DurationDays
		rates[i] = c.UsageRate
	}

	stability := coefficientOfVariation(rates)

	return prediction{
		DailyUsageRate:     rate,
		PredictedCycleDays: median(durations),
		StabilityIndex:     stability,
		Volatile:           stability > VolatilityThreshold,
		Confidence:         confidenceFor(len(window), stability, anomalyCount),
		Window:             window,
	}
}

// confidenceFor rates the forecast. HIGH demands a full window, tight
// stability and a spotless raw history.
func confidenceFor(windowSize int, stability float64, anomalyCount int) domain.ConfidenceTier {
	if windowSize == RollingWindowSize && stability < HighStabilityCeiling && anomalyCount == 0 {
		return domain.ConfidenceHigh
	}
	if windowSize >= 2 && stability < MediumStabilityCeiling {
		return domain.ConfidenceMedium
	}
	return domain.ConfidenceLow
}

// coefficientOfVariation returns the population CV of vs as a percentage:
// 0 for fewer than two values or a zero mean.
func coefficientOfVariation(vs []float64) float64 {
	if len(vs) < 2 {
		return 0
	}

	var sum float64
	for _, v := range vs {
		sum += v
	}
	mean := sum / float64(len(vs))
	if mean == 0 {
		return 0
	}

	var sq float64
	for _, v := range vs {
		d := v - mean
		sq += d * d
	}
	stddev := math.Sqrt(sq / float64(len(vs)))

	return stddev / mean * 100
}
