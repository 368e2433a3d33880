package vendors

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ecosaro/marketplace-backend/pkg/db"
	"github.com/ecosaro/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/ecosaro/marketplace-backend/pkg/errors"
	"github.com/ecosaro/marketplace-backend/pkg/types"
)

// Service manages vendor payout profiles.
type Service interface {
	GetVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	UpdatePayoutProfile(ctx context.Context, id uuid.UUID, details types.PayoutDetails) (*models.Vendor, error)
	VerifyBank(ctx context.Context, id uuid.UUID, verified bool) (*models.Vendor, error)
	SaveSettlementAccountID(ctx context.Context, id uuid.UUID, accountID string) error
}

type service struct {
	repo Repository
}

// NewService wires a vendor service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vendor repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id is required")
	}
	vendor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "vendor not found")
		}
		return nil, err
	}
	return vendor, nil
}

// UpdatePayoutProfile replaces the vendor's bank details. Changing details
// always resets verification; an admin must re-verify before payouts resume.
func (s *service) UpdatePayoutProfile(ctx context.Context, id uuid.UUID, details types.PayoutDetails) (*models.Vendor, error) {
	if _, err := s.GetVendor(ctx, id); err != nil {
		return nil, err
	}

	details.AccountNumber = strings.TrimSpace(details.AccountNumber)
	details.IFSCCode = strings.ToUpper(strings.TrimSpace(details.IFSCCode))
	details.AccountHolder = strings.TrimSpace(details.AccountHolder)
	if !details.IsComplete() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account number, ifsc code, and account holder are required")
	}

	if err := s.repo.UpdatePayoutProfile(ctx, id, details, false); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) VerifyBank(ctx context.Context, id uuid.UUID, verified bool) (*models.Vendor, error) {
	vendor, err := s.GetVendor(ctx, id)
	if err != nil {
		return nil, err
	}
	if verified && (vendor.PayoutDetails == nil || !vendor.PayoutDetails.IsComplete()) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot verify a vendor without complete bank details")
	}
	if err := s.repo.SetBankVerified(ctx, id, verified); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) SaveSettlementAccountID(ctx context.Context, id uuid.UUID, accountID string) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "vendor id is required")
	}
	if strings.TrimSpace(accountID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "settlement account id is required")
	}
	return s.repo.SaveSettlementAccountID(ctx, id, accountID)
}
