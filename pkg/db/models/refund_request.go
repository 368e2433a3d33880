package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ecosaro/marketplace-backend/pkg/enums"
)

// RefundRequest is a buyer-initiated refund for one line item, identified by
// its position in the order's item list.
type RefundRequest struct {
	ID         uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID                 `gorm:"column:order_id;type:uuid;not null"`
	ItemIndex  int                       `gorm:"column:item_index;not null"`
	UserID     uuid.UUID                 `gorm:"column:user_id;type:uuid;not null"`
	VendorID   uuid.UUID                 `gorm:"column:vendor_id;type:uuid;not null"`
	Amount     int                       `gorm:"column:amount;not null"`
	Reason     string                    `gorm:"column:reason;not null"`
	Status     enums.RefundRequestStatus `gorm:"column:status;not null;default:'PENDING'"`
	AdminNotes *string                   `gorm:"column:admin_notes"`
	CreatedAt  time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
