package settings

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ecosaro/marketplace-backend/pkg/db"
	"github.com/ecosaro/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/ecosaro/marketplace-backend/pkg/errors"
)

// Service exposes the platform settings singleton.
type Service interface {
	Get(ctx context.Context) (*models.PlatformSettings, error)
	CommissionRate(ctx context.Context) (decimal.Decimal, error)
	UpdateCommissionRate(ctx context.Context, rate decimal.Decimal) (*models.PlatformSettings, error)
}

type service struct {
	repo Repository
}

// NewService wires a settings service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	return &service{repo: repo}, nil
}

// Get returns the settings row, seeding defaults on first read.
func (s *service) Get(ctx context.Context) (*models.PlatformSettings, error) {
	settings, err := s.repo.Find(ctx)
	if err == nil {
		return settings, nil
	}
	if !db.IsNotFound(err) {
		return nil, err
	}

	seeded := models.DefaultPlatformSettings()
	if err := s.repo.Seed(ctx, &seeded); err != nil {
		return nil, err
	}
	// re-read in case another instance seeded first
	return s.repo.Find(ctx)
}

func (s *service) CommissionRate(ctx context.Context) (decimal.Decimal, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return settings.CommissionRate, nil
}

func (s *service) UpdateCommissionRate(ctx context.Context, rate decimal.Decimal) (*models.PlatformSettings, error) {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "commission rate must be between 0 and 100")
	}
	if _, err := s.Get(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateCommissionRate(ctx, rate); err != nil {
		return nil, err
	}
	return s.repo.Find(ctx)
}
