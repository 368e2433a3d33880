package orders

import (
	"github.com/google/uuid"

	"github.com/ecosaro/marketplace-backend/pkg/enums"
	"github.com/ecosaro/marketplace-backend/pkg/types"
)

// CreateOrderItemInput is one requested product in an intake request.
type CreateOrderItemInput struct {
	ProductID uuid.UUID
	Qty       int
}

// CreateOrderInput captures everything the intake flow needs. Prices,
// vendor ownership, and commission splits are resolved server-side from the
// product catalog and current platform settings.
type CreateOrderInput struct {
	UserID            uuid.UUID
	PaymentMethod     enums.PaymentMethod
	ShippingAddress   types.Address
	ProviderOrderID   *string
	ProviderPaymentID *string
	Items             []CreateOrderItemInput
}
