package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ecosaro/marketplace-backend/pkg/types"
)

// Vendor owns a payout profile and, once provisioned, a cached settlement
// account id at the payment provider. The verification flag is flipped only
// by admin action.
type Vendor struct {
	ID                  uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessName        string               `gorm:"column:business_name;not null"`
	BusinessEmail       string               `gorm:"column:business_email;not null"`
	BusinessAddress     *types.Address       `gorm:"column:business_address;type:jsonb;serializer:json"`
	PayoutDetails       *types.PayoutDetails `gorm:"column:payout_details;type:jsonb;serializer:json"`
	IsBankVerified      bool                 `gorm:"column:is_bank_verified;not null;default:false"`
	SettlementAccountID *string              `gorm:"column:settlement_account_id"`
	CreatedAt           time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// AccountHolderOrName returns the registered account holder, falling back to
// the legal business name for linked-account registration.
func (v Vendor) AccountHolderOrName() string {
	if v.PayoutDetails != nil && v.PayoutDetails.AccountHolder != "" {
		return v.PayoutDetails.AccountHolder
	}
	return v.BusinessName
}
