package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ecosaro/marketplace-backend/pkg/enums"
)

// OrderLineItem is the per-item payout tracking record embedded in an order.
// CommissionAmount and NetAmount are frozen at order creation from the
// then-current commission rate; a zero value means legacy data and the live
// rate is used as a fallback at settlement time.
//
// Once PayoutStatus is COMPLETED or IsLocked is set, the automatic engine
// never touches the item again.
type OrderLineItem struct {
	ID                uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID           uuid.UUID          `gorm:"column:order_id;type:uuid;not null"`
	ProductID         uuid.UUID          `gorm:"column:product_id;type:uuid;not null"`
	VendorID          uuid.UUID          `gorm:"column:vendor_id;type:uuid;not null"`
	Name              string             `gorm:"column:name;not null"`
	UnitPrice         int                `gorm:"column:unit_price;not null"`
	Qty               int                `gorm:"column:qty;not null"`
	CommissionAmount  int                `gorm:"column:commission_amount;not null;default:0"`
	NetAmount         int                `gorm:"column:net_amount;not null;default:0"`
	PayoutStatus      enums.PayoutStatus `gorm:"column:payout_status;not null;default:'PENDING'"`
	PayoutBlockReason *string            `gorm:"column:payout_block_reason"`
	TransferID        *string            `gorm:"column:transfer_id"`
	Refunded          bool               `gorm:"column:refunded;not null;default:false"`
	IsLocked          bool               `gorm:"column:is_locked;not null;default:false"`
	PayoutDate        *time.Time         `gorm:"column:payout_date"`
	PayoutReference   *string            `gorm:"column:payout_reference"`
	CreatedAt         time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// IsSettledTerminal reports whether the item is closed to automatic payout.
func (i OrderLineItem) IsSettledTerminal() bool {
	return i.PayoutStatus == enums.PayoutStatusCompleted || i.Refunded || i.IsLocked
}
