package payouts

import (
	"time"

	"github.com/google/uuid"

	"github.com/ecosaro/marketplace-backend/pkg/db/models"
)

// OrderReport summarizes one engine pass over an order's line items.
type OrderReport struct {
	OrderID  uuid.UUID `json:"order_id"`
	Deferred bool      `json:"deferred"`
	Settled  int       `json:"settled"`
	Blocked  int       `json:"blocked"`
	Failed   int       `json:"failed"`
	Skipped  int       `json:"skipped"`
}

// SweepReport aggregates a full sweep run.
type SweepReport struct {
	Orders  int           `json:"orders"`
	Reports []OrderReport `json:"reports"`
	Settled int           `json:"settled"`
	Blocked int           `json:"blocked"`
	Failed  int           `json:"failed"`
}

// ManualSettleItem addresses one line item by order id and item name.
type ManualSettleItem struct {
	OrderID  uuid.UUID
	ItemName string
}

// ManualSettleInput marks a batch of line items as paid out off-platform.
type ManualSettleInput struct {
	Items     []ManualSettleItem
	Reference string
}

// ManualSettleResult reports the outcome for one requested item.
type ManualSettleResult struct {
	OrderID  uuid.UUID `json:"order_id"`
	ItemName string    `json:"item_name"`
	Settled  bool      `json:"settled"`
	Reason   string    `json:"reason,omitempty"`
}

// ManualSettleReport summarizes a manual settlement batch.
type ManualSettleReport struct {
	Reference string               `json:"reference"`
	Settled   int                  `json:"settled"`
	Failed    int                  `json:"failed"`
	PaidAt    time.Time            `json:"paid_at"`
	Results   []ManualSettleResult `json:"results"`
}

// VendorSummary aggregates a vendor's ledger and refunds over a date range.
type VendorSummary struct {
	VendorID       uuid.UUID       `json:"vendor_id"`
	From           time.Time       `json:"from"`
	To             time.Time       `json:"to"`
	GrossSales     int             `json:"gross_sales"`
	PaidAmount     int             `json:"paid_amount"`
	PaidCount      int             `json:"paid_count"`
	OwedAmount     int             `json:"owed_amount"`
	OwedCount      int             `json:"owed_count"`
	BlockedCount   int             `json:"blocked_count"`
	FailedCount    int             `json:"failed_count"`
	PlatformFees   int             `json:"platform_fees"`
	RefundedAmount int             `json:"refunded_amount"`
	RefundedCount  int             `json:"refunded_count"`
	Entries        []models.Payout `json:"entries"`
}
