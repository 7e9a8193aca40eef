package engine

import "github.com/andresuchdata/replenish/backend-go/internal/domain"

// classifyStatus maps days of stock remaining into an operational state.
// Precedence is strict: the first matching rule wins, so an item can never
// be reported OVERSTOCK while already inside its lead time.
func classifyStatus(daysRemaining, predictedCycleDays float64, leadTimeDays int) domain.StockStatus {
	lead := float64(leadTimeDays)

	switch {
	case daysRemaining <= lead:
		return domain.StatusCritical
	case daysRemaining <= lead+BufferDays:
		return domain.StatusOrderSoon
	case daysRemaining > 2*predictedCycleDays:
		return domain.StatusOverstock
	default:
		return domain.StatusHealthy
	}
}
