package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecosaro/marketplace-backend/pkg/db/models"
	"github.com/ecosaro/marketplace-backend/pkg/enums"
)

// Repository manages persistence for settlement ledger entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.Payout) error
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.Payout, error)
	FindByTransferID(ctx context.Context, transferID string) (*models.Payout, error)
	MarkStatusByTransferID(ctx context.Context, transferID string, status enums.PayoutStatus, processedAt *time.Time) (int64, error)
	IncrementRetryByTransferID(ctx context.Context, transferID string) error
	ListByVendorBetween(ctx context.Context, vendorID uuid.UUID, from, to time.Time) ([]models.Payout, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.Payout) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.Payout, error) {
	var entries []models.Payout
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) FindByTransferID(ctx context.Context, transferID string) (*models.Payout, error) {
	var entry models.Payout
	if err := r.db.WithContext(ctx).
		Where("transfer_id = ?", transferID).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// MarkStatusByTransferID flips a ledger entry matched by provider transfer id.
// Entries already COMPLETED are never rewritten; the returned count tells the
// caller whether the update won.
func (r *repository) MarkStatusByTransferID(ctx context.Context, transferID string, status enums.PayoutStatus, processedAt *time.Time) (int64, error) {
	updates := map[string]any{"status": status}
	if processedAt != nil {
		updates["processed_at"] = processedAt
	}
	result := r.db.WithContext(ctx).
		Model(&models.Payout{}).
		Where("transfer_id = ? AND status <> ?", transferID, enums.PayoutStatusCompleted).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *repository) IncrementRetryByTransferID(ctx context.Context, transferID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Payout{}).
		Where("transfer_id = ?", transferID).
		UpdateColumn("retry_count", gorm.Expr("retry_count + 1")).Error
}

func (r *repository) ListByVendorBetween(ctx context.Context, vendorID uuid.UUID, from, to time.Time) ([]models.Payout, error) {
	var entries []models.Payout
	if err := r.db.WithContext(ctx).
		Where("vendor_id = ? AND created_at >= ? AND created_at < ?", vendorID, from, to).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
