package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ecosaro/marketplace-backend/pkg/enums"
	"github.com/ecosaro/marketplace-backend/pkg/types"
)

// Order is created when checkout completes and is immutable afterwards
// except for status fields. TotalAmount is the sum of item price x qty at
// creation time and is never recomputed.
type Order struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID            uuid.UUID           `gorm:"column:user_id;type:uuid;not null"`
	TotalAmount       int                 `gorm:"column:total_amount;not null"`
	Status            enums.OrderStatus   `gorm:"column:status;not null;default:'Pending'"`
	PaymentMethod     enums.PaymentMethod `gorm:"column:payment_method;not null;default:'COD'"`
	ShippingAddress   *types.Address      `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	ProviderOrderID   *string             `gorm:"column:provider_order_id"`
	ProviderPaymentID *string             `gorm:"column:provider_payment_id"`
	Items             []OrderLineItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
