package settings

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ecosaro/marketplace-backend/pkg/db/models"
)

// Repository manages the platform settings singleton row.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Find(ctx context.Context) (*models.PlatformSettings, error)
	Seed(ctx context.Context, settings *models.PlatformSettings) error
	UpdateCommissionRate(ctx context.Context, rate decimal.Decimal) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a settings repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Find(ctx context.Context) (*models.PlatformSettings, error) {
	var settings models.PlatformSettings
	if err := r.db.WithContext(ctx).
		Where("id = ?", models.PlatformSettingsID).
		First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

// Seed inserts the singleton defaults; concurrent seeds are harmless.
func (r *repository) Seed(ctx context.Context, settings *models.PlatformSettings) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(settings).Error
}

func (r *repository) UpdateCommissionRate(ctx context.Context, rate decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.PlatformSettings{}).
		Where("id = ?", models.PlatformSettingsID).
		Update("commission_rate", rate).Error
}
