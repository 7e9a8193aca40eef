// backend-go/internal/domain/models.go
package domain

import (
	"encoding/json"
	"time"
)

// Item represents an inventory item tracked by the replenishment engine.
// Items are consumed read-only; the engine never mutates them.
type Item struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	CurrentStock float64   `json:"current_stock" db:"current_stock"`
	LeadTimeDays *int      `json:"lead_time_days" db:"lead_time_days"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// LeadTime returns the item's lead time in days, falling back to the
// supplied default when none is configured.
func (i Item) LeadTime(defaultDays int) int {
	if i.LeadTimeDays != nil && *i.LeadTimeDays > 0 {
		return *i.LeadTimeDays
	}
	return defaultDays
}

// ReceivingEvent records that a quantity of an item arrived and was marked
// received. Two consecutive events bound one purchase cycle.
type ReceivingEvent struct {
	ID         int64     `json:"id" db:"id"`
	ItemID     string    `json:"item_id" db:"item_id"`
	Quantity   float64   `json:"quantity" db:"quantity"`
	ReceivedAt time.Time `json:"received_at" db:"received_at"`
}

// AuditAction tags an audit log entry with the kind of stock movement it
// describes.
type AuditAction string

const (
	ActionConsumed  AuditAction = "CONSUMED"
	ActionRestocked AuditAction = "RESTOCKED"
	ActionUpdated   AuditAction = "UPDATED"
)

// AuditLogEntry is best-effort telemetry emitted by the surrounding system.
// Entries may be sparse or malformed; consumers must skip what they cannot
// parse.
type AuditLogEntry struct {
	ID         int64           `json:"id" db:"id"`
	ItemID     string          `json:"item_id" db:"item_id"`
	Action     AuditAction     `json:"action" db:"action"`
	OccurredAt time.Time       `json:"occurred_at" db:"occurred_at"`
	Details    json.RawMessage `json:"details" db:"details"`
}

// AuditPayload is the structured part of an audit entry. Fields are optional
// because different actions carry different data.
type AuditPayload struct {
	Delta         *float64 `json:"delta"`
	NewStock      *float64 `json:"new_stock"`
	PreviousStock *float64 `json:"previous_stock"`
}

// Payload decodes the entry's details. A malformed or empty payload returns
// ok=false and the entry contributes nothing to a computation.
func (e AuditLogEntry) Payload() (AuditPayload, bool) {
	if len(e.Details) == 0 {
		return AuditPayload{}, false
	}

	var p AuditPayload
	if err := json.Unmarshal(e.Details, &p); err != nil {
		return AuditPayload{}, false
	}

	return p, true
}

// OverrideRecord documents a human's deliberate deviation from a recommended
// order quantity. It is the only row this engine ever writes.
type OverrideRecord struct {
	ID             string    `json:"id" db:"id"`
	ItemID         string    `json:"item_id" db:"item_id"`
	UserID         string    `json:"user_id" db:"user_id"`
	RecommendedQty int       `json:"recommended_qty" db:"recommended_qty"`
	OrderedQty     int       `json:"ordered_qty" db:"ordered_qty"`
	Justification  string    `json:"justification" db:"justification"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// ConsumptionSource describes how a cycle's consumption was derived.
type ConsumptionSource string

const (
	SourceConsumedLogs ConsumptionSource = "CONSUMED_LOGS"
	SourceSnapshot     ConsumptionSource = "SNAPSHOT"
	SourceFallbackQty  ConsumptionSource = "FALLBACK_ORDER_QTY"
)

// AnomalyReason classifies why a cycle was excluded from forecasting.
type AnomalyReason string

const (
	ReasonOverride         AnomalyReason = "OVERRIDE"
	ReasonPanicBuy         AnomalyReason = "PANIC_BUY"
	ReasonHoarding         AnomalyReason = "HOARDING"
	ReasonPremature        AnomalyReason = "PREMATURE"
	ReasonUnderConsumption AnomalyReason = "UNDER_CONSUMPTION"
)

// PurchaseCycle is the span between two consecutive receiving events, the
// unit of consumption analysis. Cycles are derived fresh on every run and
// never persisted.
type PurchaseCycle struct {
	Start            time.Time         `json:"start"`
	End              time.Time         `json:"end"`
	DurationDays     float64           `json:"duration_days"`
	QuantityConsumed float64           `json:"quantity_consumed"`
	UsageRate        float64           `json:"usage_rate"`
	Provenance       ConsumptionSource `json:"provenance"`
	StartStock       float64           `json:"start_stock"`
	EndStock         float64           `json:"end_stock"`
	Anomalous        bool              `json:"anomalous"`
	AnomalyReason    AnomalyReason     `json:"anomaly_reason,omitempty"`
	Overridden       bool              `json:"overridden"`
}

// AnomalyNote is the audit-facing view of one excluded cycle.
type AnomalyNote struct {
	Reason AnomalyReason `json:"reason"`
	Date   time.Time     `json:"date"`
}

// MetricsAudit exposes every intermediate float used to reach the final
// integers, so a disputed recommendation can always be explained.
type MetricsAudit struct {
	RawQty       float64       `json:"raw_qty"`
	CapQty       float64       `json:"cap_qty"`
	CapApplied   bool          `json:"cap_applied"`
	SafetyStock  float64       `json:"safety_stock"`
	ReorderPoint float64       `json:"reorder_point"`
	CyclesUsed   []time.Time   `json:"cycles_used"`
	Anomalies    []AnomalyNote `json:"anomalies"`
}

// ItemMetrics is the engine's output for one item. Every item always
// produces a metrics record; distrust is expressed through the confidence
// tier and anomaly count, never through an error.
//
// DaysRemaining is +Inf for dormant items; the API layer serializes it as
// null, so it carries no json tag of its own.
type ItemMetrics struct {
	ItemID               string         `json:"item_id"`
	ItemName             string         `json:"item_name"`
	CurrentStock         float64        `json:"current_stock"`
	DailyUsageRate       float64        `json:"daily_usage_rate"`
	PredictedCycleDays   float64        `json:"predicted_cycle_days"`
	DaysRemaining        float64        `json:"-"`
	RecommendedOrderDate *time.Time     `json:"recommended_order_date"`
	RecommendedQty       int            `json:"recommended_qty"`
	Status               StockStatus    `json:"status"`
	Confidence           ConfidenceTier `json:"confidence"`
	StabilityIndex       float64        `json:"stability_index"`
	AnomalyCount         int            `json:"anomaly_count"`
	Volatile             bool           `json:"volatile"`
	LeadTimeDays         int            `json:"lead_time_days"`
	Audit                MetricsAudit   `json:"audit"`
}
