package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ecosaro/marketplace-backend/pkg/db/models"
	"github.com/ecosaro/marketplace-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  vendor_id TEXT NOT NULL,
  name TEXT NOT NULL,
  price INTEGER NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  total_amount INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'Pending',
  payment_method TEXT NOT NULL DEFAULT 'COD',
  shipping_address TEXT,
  provider_order_id TEXT,
  provider_payment_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderLineItems := `
CREATE TABLE IF NOT EXISTS order_line_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  vendor_id TEXT NOT NULL,
  name TEXT NOT NULL,
  unit_price INTEGER NOT NULL,
  qty INTEGER NOT NULL,
  commission_amount INTEGER NOT NULL DEFAULT 0,
  net_amount INTEGER NOT NULL DEFAULT 0,
  payout_status TEXT NOT NULL DEFAULT 'PENDING',
  payout_block_reason TEXT,
  transfer_id TEXT,
  refunded INTEGER NOT NULL DEFAULT 0,
  is_locked INTEGER NOT NULL DEFAULT 0,
  payout_date DATETIME,
  payout_reference TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderLineItems).Error)
	return db
}

func seedOrderWithItem(t *testing.T, db *gorm.DB, status enums.OrderStatus, itemStatus enums.PayoutStatus, updatedAt time.Time) (*models.Order, *models.OrderLineItem) {
	t.Helper()

	order := &models.Order{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		TotalAmount:   1000,
		Status:        status,
		PaymentMethod: enums.PaymentMethodCOD,
	}
	require.NoError(t, db.Create(order).Error)
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", order.ID).
		UpdateColumn("updated_at", updatedAt).Error)

	item := &models.OrderLineItem{
		ID:               uuid.New(),
		OrderID:          order.ID,
		ProductID:        uuid.New(),
		VendorID:         uuid.New(),
		Name:             "Widget",
		UnitPrice:        500,
		Qty:              2,
		CommissionAmount: 100,
		NetAmount:        900,
		PayoutStatus:     itemStatus,
	}
	require.NoError(t, db.Create(item).Error)
	return order, item
}

func TestUpdateLineItemGuardedWinsOnce(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, item := seedOrderWithItem(t, db, enums.OrderStatusDelivered, enums.PayoutStatusPending, time.Now())

	transferID := "trf_100"
	updates := map[string]any{
		"payout_status": enums.PayoutStatusCompleted,
		"transfer_id":   transferID,
	}

	affected, err := repo.UpdateLineItemGuarded(ctx, item.ID, updates)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	// second attempt must lose: the row is COMPLETED now
	affected, err = repo.UpdateLineItemGuarded(ctx, item.ID, map[string]any{
		"payout_status": enums.PayoutStatusFailed,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)

	var got models.OrderLineItem
	require.NoError(t, db.Where("id = ?", item.ID).First(&got).Error)
	assert.Equal(t, enums.PayoutStatusCompleted, got.PayoutStatus)
	require.NotNil(t, got.TransferID)
	assert.Equal(t, transferID, *got.TransferID)
}

func TestUpdateLineItemGuardedSkipsLocked(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, item := seedOrderWithItem(t, db, enums.OrderStatusDelivered, enums.PayoutStatusPending, time.Now())
	require.NoError(t, db.Model(&models.OrderLineItem{}).Where("id = ?", item.ID).
		UpdateColumn("is_locked", true).Error)

	affected, err := repo.UpdateLineItemGuarded(ctx, item.ID, map[string]any{
		"payout_status": enums.PayoutStatusCompleted,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)
}

func TestUpdateLineItemsByTransferIDGuarded(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, item := seedOrderWithItem(t, db, enums.OrderStatusDelivered, enums.PayoutStatusPending, time.Now())
	transferID := "trf_200"
	require.NoError(t, db.Model(&models.OrderLineItem{}).Where("id = ?", item.ID).
		UpdateColumn("transfer_id", transferID).Error)

	affected, err := repo.UpdateLineItemsByTransferIDGuarded(ctx, transferID, map[string]any{
		"payout_status": enums.PayoutStatusCompleted,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	affected, err = repo.UpdateLineItemsByTransferIDGuarded(ctx, transferID, map[string]any{
		"payout_status": enums.PayoutStatusFailed,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)
}

func TestDecrementStockGuarded(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := &models.Product{
		ID:       uuid.New(),
		VendorID: uuid.New(),
		Name:     "Widget",
		Price:    500,
		Stock:    3,
	}
	require.NoError(t, db.Create(product).Error)

	affected, err := repo.DecrementStockGuarded(ctx, product.ID, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	// only 1 left, asking for 2 fails without mutating
	affected, err = repo.DecrementStockGuarded(ctx, product.ID, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)

	var got models.Product
	require.NoError(t, db.Where("id = ?", product.ID).First(&got).Error)
	assert.Equal(t, 1, got.Stock)

	require.NoError(t, repo.Restock(ctx, product.ID, 2))
	require.NoError(t, db.Where("id = ?", product.ID).First(&got).Error)
	assert.Equal(t, 3, got.Stock)
}

func TestFindPayoutCandidates(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	old := time.Now().Add(-8 * 24 * time.Hour)
	recent := time.Now().Add(-time.Hour)

	eligible, _ := seedOrderWithItem(t, db, enums.OrderStatusDelivered, enums.PayoutStatusPending, old)
	seedOrderWithItem(t, db, enums.OrderStatusDelivered, enums.PayoutStatusPending, recent) // inside window
	seedOrderWithItem(t, db, enums.OrderStatusPending, enums.PayoutStatusPending, old)      // not fulfilled
	seedOrderWithItem(t, db, enums.OrderStatusCompleted, enums.PayoutStatusCompleted, old) // fully settled

	cutoff := time.Now().Add(-7 * 24 * time.Hour)
	candidates, err := repo.FindPayoutCandidates(ctx, cutoff)
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, eligible.ID, candidates[0].ID)
	require.Len(t, candidates[0].Items, 1)
}

func TestFindPayoutCandidatesIncludesBlockedAndFailed(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	old := time.Now().Add(-8 * 24 * time.Hour)
	blocked, _ := seedOrderWithItem(t, db, enums.OrderStatusDelivered, enums.PayoutStatusBlocked, old)
	failed, _ := seedOrderWithItem(t, db, enums.OrderStatusCompleted, enums.PayoutStatusFailed, old)

	cutoff := time.Now().Add(-7 * 24 * time.Hour)
	candidates, err := repo.FindPayoutCandidates(ctx, cutoff)
	require.NoError(t, err)

	ids := map[uuid.UUID]bool{}
	for _, c := range candidates {
		ids[c.ID] = true
	}
	assert.True(t, ids[blocked.ID], "blocked items must be retried")
	assert.True(t, ids[failed.ID], "failed items must be retried")
}

func TestFindPayoutCandidatesSkipsRefundedAndLocked(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	old := time.Now().Add(-8 * 24 * time.Hour)
	_, refundedItem := seedOrderWithItem(t, db, enums.OrderStatusDelivered, enums.PayoutStatusFailed, old)
	require.NoError(t, db.Model(&models.OrderLineItem{}).Where("id = ?", refundedItem.ID).
		UpdateColumn("refunded", true).Error)

	_, lockedItem := seedOrderWithItem(t, db, enums.OrderStatusDelivered, enums.PayoutStatusPending, old)
	require.NoError(t, db.Model(&models.OrderLineItem{}).Where("id = ?", lockedItem.ID).
		UpdateColumn("is_locked", true).Error)

	cutoff := time.Now().Add(-7 * 24 * time.Hour)
	candidates, err := repo.FindPayoutCandidates(ctx, cutoff)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestListUnsettledItemsByVendorBetween(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	vendorID := uuid.New()
	assign := func(item *models.OrderLineItem) {
		require.NoError(t, db.Model(&models.OrderLineItem{}).Where("id = ?", item.ID).
			UpdateColumn("vendor_id", vendorID).Error)
	}

	_, owed := seedOrderWithItem(t, db, enums.OrderStatusDelivered, enums.PayoutStatusPending, time.Now())
	assign(owed)
	_, blocked := seedOrderWithItem(t, db, enums.OrderStatusDelivered, enums.PayoutStatusBlocked, time.Now())
	assign(blocked)

	_, paid := seedOrderWithItem(t, db, enums.OrderStatusCompleted, enums.PayoutStatusCompleted, time.Now())
	assign(paid)
	_, refunded := seedOrderWithItem(t, db, enums.OrderStatusDelivered, enums.PayoutStatusPending, time.Now())
	assign(refunded)
	require.NoError(t, db.Model(&models.OrderLineItem{}).Where("id = ?", refunded.ID).
		UpdateColumn("refunded", true).Error)
	_, locked := seedOrderWithItem(t, db, enums.OrderStatusDelivered, enums.PayoutStatusPending, time.Now())
	assign(locked)
	require.NoError(t, db.Model(&models.OrderLineItem{}).Where("id = ?", locked.ID).
		UpdateColumn("is_locked", true).Error)

	// another vendor's open item must not leak in
	seedOrderWithItem(t, db, enums.OrderStatusDelivered, enums.PayoutStatusPending, time.Now())

	from := time.Now().Add(-24 * time.Hour)
	to := time.Now().Add(24 * time.Hour)
	items, err := repo.ListUnsettledItemsByVendorBetween(ctx, vendorID, from, to)
	require.NoError(t, err)

	require.Len(t, items, 2)
	got := map[uuid.UUID]bool{}
	for _, item := range items {
		got[item.ID] = true
	}
	assert.True(t, got[owed.ID])
	assert.True(t, got[blocked.ID])

	// a range that predates every row returns nothing
	items, err = repo.ListUnsettledItemsByVendorBetween(ctx, vendorID,
		time.Now().Add(-72*time.Hour), time.Now().Add(-48*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, items)
}
