package domain

import "strings"

// StockStatus is the operational state derived from days of stock remaining.
type StockStatus string

const (
	StatusCritical  StockStatus = "CRITICAL"
	StatusOrderSoon StockStatus = "ORDER_SOON"
	StatusHealthy   StockStatus = "HEALTHY"
	StatusOverstock StockStatus = "OVERSTOCK"
	StatusDormant   StockStatus = "DORMANT"
)

// ConfidenceTier rates how much the forecast behind a recommendation can be
// trusted.
type ConfidenceTier string

const (
	ConfidenceHigh   ConfidenceTier = "HIGH"
	ConfidenceMedium ConfidenceTier = "MEDIUM"
	ConfidenceLow    ConfidenceTier = "LOW"
)

var stockStatusLabels = map[StockStatus]string{
	StatusCritical:  "Critical",
	StatusOrderSoon: "Order Soon",
	StatusHealthy:   "Healthy",
	StatusOverstock: "Overstock",
	StatusDormant:   "Dormant",
}

var stockStatusCodes = map[string]StockStatus{
	"critical":   StatusCritical,
	"order_soon": StatusOrderSoon,
	"healthy":    StatusHealthy,
	"overstock":  StatusOverstock,
	"dormant":    StatusDormant,
}

// StatusLabel returns a human-readable label for a stock status.
func StatusLabel(status StockStatus) string {
	if label, ok := stockStatusLabels[status]; ok {
		return label
	}

	return "Unknown"
}

// ParseStatus returns the status for a given label (case-insensitive).
func ParseStatus(label string) (StockStatus, bool) {
	status, ok := stockStatusCodes[strings.ToLower(label)]

	return status, ok
}
