package refunds

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecosaro/marketplace-backend/pkg/db/models"
	"github.com/ecosaro/marketplace-backend/pkg/enums"
)

// Repository manages persistence for refund requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.RefundRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.RefundRequest, error)
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.RefundRequest, error)
	UpdateDecisionGuarded(ctx context.Context, id uuid.UUID, status enums.RefundRequestStatus, adminNotes string) (int64, error)
	SumApprovedByVendorBetween(ctx context.Context, vendorID uuid.UUID, from, to time.Time) (int, int, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a refund repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, request *models.RefundRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.RefundRequest, error) {
	var request models.RefundRequest
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.RefundRequest, error) {
	var requests []models.RefundRequest
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// UpdateDecisionGuarded records the admin decision only while the request is
// still PENDING, so two reviewers cannot both decide the same request.
func (r *repository) UpdateDecisionGuarded(ctx context.Context, id uuid.UUID, status enums.RefundRequestStatus, adminNotes string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.RefundRequest{}).
		Where("id = ? AND status = ?", id, enums.RefundRequestStatusPending).
		Updates(map[string]any{
			"status":      status,
			"admin_notes": adminNotes,
		})
	return res.RowsAffected, res.Error
}

// SumApprovedByVendorBetween returns the total amount and count of approved
// refunds for a vendor decided within [from, to).
func (r *repository) SumApprovedByVendorBetween(ctx context.Context, vendorID uuid.UUID, from, to time.Time) (int, int, error) {
	var row struct {
		Total int64
		Count int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.RefundRequest{}).
		Select("COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("vendor_id = ? AND status = ? AND updated_at >= ? AND updated_at < ?",
			vendorID, enums.RefundRequestStatusApproved, from, to).
		Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return int(row.Total), int(row.Count), nil
}
