package engine

import "time"

// Governance constants for the replenishment engine. They are exported so
// callers and tests reference the same values instead of duplicating magic
// numbers.
const (
	// MaxReceivingEvents bounds how many completed receipts are fetched per
	// item when reconstructing purchase cycles.
	MaxReceivingEvents = 15

	// RollingWindowSize is the number of most recent valid cycles the
	// predictor considers.
	RollingWindowSize = 3

	// MinCycleDurationDays discards event pairs spanning less than a day;
	// shorter spans are receiving noise, not consumption periods.
	MinCycleDurationDays = 1.0

	// SnapshotMatchWindow is how far a RESTOCKED/UPDATED audit entry may sit
	// from a cycle boundary and still count as a stock snapshot for that
	// boundary. A tunable heuristic, not a law.
	SnapshotMatchWindow = time.Hour

	// DefaultLeadTimeDays applies when an item has no configured lead time.
	DefaultLeadTimeDays = 7

	// BufferDays separates ORDER_SOON from CRITICAL.
	BufferDays = 5.0

	// CriticalityFactor scales safety stock and the capital cap.
	CriticalityFactor = 1.2

	// DefaultCoverageCycles is the target coverage multiplier when the
	// caller supplies none: order one predicted cycle's worth of stock.
	DefaultCoverageCycles = 1.0

	// NegligibleDailyUsage is the rate below which an item is dormant.
	NegligibleDailyUsage = 0.01

	// QuantitySpikeFactor flags a cycle as PANIC_BUY when its consumption
	// exceeds this multiple of the median.
	QuantitySpikeFactor = 2.0

	// DurationStretchFactor flags HOARDING, DurationShrinkFactor PREMATURE.
	DurationStretchFactor = 2.0
	DurationShrinkFactor  = 0.5

	// UnderConsumptionRatio flags cycles that barely drew down stock:
	// ending stock above this share of starting stock.
	UnderConsumptionRatio = 0.4

	// Stability index (coefficient of variation, %) thresholds.
	HighStabilityCeiling   = 20.0
	MediumStabilityCeiling = 40.0
	VolatilityThreshold    = 40.0
)

const hoursPerDay = 24.0
