package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ecosaro/marketplace-backend/pkg/enums"
)

// Payout is one settlement-ledger entry: an immutable record of a single
// payout attempt and its outcome. The webhook reconciler is the only writer
// allowed to change Status/ProcessedAt in place, matched by TransferID.
type Payout struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID      uuid.UUID          `gorm:"column:order_id;type:uuid;not null"`
	VendorID     uuid.UUID          `gorm:"column:vendor_id;type:uuid;not null"`
	Amount       int                `gorm:"column:amount;not null"`
	PlatformFee  int                `gorm:"column:platform_fee;not null"`
	Status       enums.PayoutStatus `gorm:"column:status;not null;default:'PENDING'"`
	BlockReason  *string            `gorm:"column:block_reason"`
	TransferID   *string            `gorm:"column:transfer_id"`
	PayoutRefID  *string            `gorm:"column:payout_ref_id"`
	RetryCount   int                `gorm:"column:retry_count;not null;default:0"`
	ProcessedAt  *time.Time         `gorm:"column:processed_at"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
