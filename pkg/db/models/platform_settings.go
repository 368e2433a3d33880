package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCommissionRatePercent applies when no settings row exists yet.
const DefaultCommissionRatePercent = 10

// PlatformSettingsID is the fixed primary key of the singleton row.
const PlatformSettingsID int64 = 1

// PlatformSettings is a singleton row. The commission rate is read at order
// creation to freeze per-item commissions; at settlement time it is only a
// fallback for legacy items without a frozen value.
type PlatformSettings struct {
	ID                int64           `gorm:"column:id;primaryKey"`
	CommissionRate    decimal.Decimal `gorm:"column:commission_rate;type:numeric(5,2);not null"`
	LowStockThreshold int             `gorm:"column:low_stock_threshold;not null;default:5"`
	SupportEmail      string          `gorm:"column:support_email"`
	SupportPhone      string          `gorm:"column:support_phone"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// DefaultPlatformSettings returns the row seeded on first read.
func DefaultPlatformSettings() PlatformSettings {
	return PlatformSettings{
		ID:                PlatformSettingsID,
		CommissionRate:    decimal.NewFromInt(DefaultCommissionRatePercent),
		LowStockThreshold: 5,
	}
}
