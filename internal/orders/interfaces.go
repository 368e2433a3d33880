package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecosaro/marketplace-backend/pkg/db/models"
	"github.com/ecosaro/marketplace-backend/pkg/enums"
)

// Repository defines persistence operations for orders, line items, and the
// stock columns the intake/refund flows touch.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderLineItems(ctx context.Context, items []models.OrderLineItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindLineItemsByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.OrderLineItem, error)
	FindLineItemByTransferID(ctx context.Context, transferID string) (*models.OrderLineItem, error)
	FindPayoutCandidates(ctx context.Context, fulfilledBefore time.Time) ([]models.Order, error)
	ListUnsettledItemsByVendorBetween(ctx context.Context, vendorID uuid.UUID, from, to time.Time) ([]models.OrderLineItem, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error
	UpdateLineItemGuarded(ctx context.Context, itemID uuid.UUID, updates map[string]any) (int64, error)
	UpdateLineItemsByTransferIDGuarded(ctx context.Context, transferID string, updates map[string]any) (int64, error)
	FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	DecrementStockGuarded(ctx context.Context, productID uuid.UUID, qty int) (int64, error)
	Restock(ctx context.Context, productID uuid.UUID, qty int) error
}
