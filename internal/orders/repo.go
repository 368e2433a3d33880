package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecosaro/marketplace-backend/pkg/db/models"
	"github.com/ecosaro/marketplace-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) CreateOrderLineItems(ctx context.Context, items []models.OrderLineItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindLineItemsByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.OrderLineItem, error) {
	var items []models.OrderLineItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ListUnsettledItemsByVendorBetween returns the vendor's line items still
// owed money: not completed, not refunded, not locked by a manual override.
func (r *repository) ListUnsettledItemsByVendorBetween(ctx context.Context, vendorID uuid.UUID, from, to time.Time) ([]models.OrderLineItem, error) {
	var items []models.OrderLineItem
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Where("payout_status <> ?", enums.PayoutStatusCompleted).
		Where("refunded = ?", false).
		Where("is_locked = ?", false).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindLineItemByTransferID(ctx context.Context, transferID string) (*models.OrderLineItem, error) {
	var item models.OrderLineItem
	err := r.db.WithContext(ctx).
		Where("transfer_id = ?", transferID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindPayoutCandidates returns fulfilled orders past the return window that
// still carry at least one item the engine may settle.
func (r *repository) FindPayoutCandidates(ctx context.Context, fulfilledBefore time.Time) ([]models.Order, error) {
	statuses := enums.FulfilledOrderStatuses()
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("status IN ?", statuses).
		Where("updated_at <= ?", fulfilledBefore).
		Where(`EXISTS (
			SELECT 1 FROM order_line_items oli
			WHERE oli.order_id = orders.id
			  AND oli.payout_status <> ?
			  AND oli.refunded = ?
			  AND oli.is_locked = ?
		)`, enums.PayoutStatusCompleted, false, false).
		Order("updated_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status).Error
}

// UpdateLineItemGuarded applies updates only while the item is still open to
// the engine. The guard is the concurrency control for every COMPLETED
// transition: whoever wins the row owns the settlement.
func (r *repository) UpdateLineItemGuarded(ctx context.Context, itemID uuid.UUID, updates map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.OrderLineItem{}).
		Where("id = ? AND payout_status <> ? AND is_locked = ?", itemID, enums.PayoutStatusCompleted, false).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *repository) UpdateLineItemsByTransferIDGuarded(ctx context.Context, transferID string, updates map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.OrderLineItem{}).
		Where("transfer_id = ? AND payout_status <> ? AND is_locked = ?", transferID, enums.PayoutStatusCompleted, false).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *repository) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// DecrementStockGuarded takes stock only when enough remains; zero rows
// means insufficient stock.
func (r *repository) DecrementStockGuarded(ctx context.Context, productID uuid.UUID, qty int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	return result.RowsAffected, result.Error
}

func (r *repository) Restock(ctx context.Context, productID uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty)).Error
}
