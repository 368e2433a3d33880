package payouts

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ecosaro/marketplace-backend/pkg/db/models"
	"github.com/ecosaro/marketplace-backend/pkg/razorpay"
)

type accountClient interface {
	CreateLinkedAccount(ctx context.Context, params razorpay.LinkedAccountParams) (string, error)
}

type accountStore interface {
	SaveSettlementAccountID(ctx context.Context, id uuid.UUID, accountID string) error
}

// Provisioner lazily creates provider linked accounts for vendors. The id
// is cached on the vendor row so the provider is hit at most once.
type Provisioner struct {
	client accountClient
	store  accountStore
}

// NewProvisioner wires a provisioner with the provider client and the
// vendor store used to cache account ids.
func NewProvisioner(client accountClient, store accountStore) (*Provisioner, error) {
	if client == nil {
		return nil, fmt.Errorf("account client required")
	}
	if store == nil {
		return nil, fmt.Errorf("account store required")
	}
	return &Provisioner{client: client, store: store}, nil
}

// EnsureSettlementAccount returns the vendor's linked account id, creating
// and persisting one on first use.
func (p *Provisioner) EnsureSettlementAccount(ctx context.Context, vendor *models.Vendor) (string, error) {
	if vendor == nil {
		return "", fmt.Errorf("vendor required")
	}
	if vendor.SettlementAccountID != nil && *vendor.SettlementAccountID != "" {
		return *vendor.SettlementAccountID, nil
	}
	if vendor.PayoutDetails == nil {
		return "", fmt.Errorf("vendor %s has no payout details", vendor.ID)
	}

	params := razorpay.LinkedAccountParams{
		ReferenceID:     vendor.ID.String(),
		BusinessName:    vendor.BusinessName,
		Email:           vendor.BusinessEmail,
		AccountNumber:   vendor.PayoutDetails.AccountNumber,
		IFSCCode:        vendor.PayoutDetails.IFSCCode,
		BeneficiaryName: vendor.AccountHolderOrName(),
	}

	accountID, err := p.client.CreateLinkedAccount(ctx, params)
	if err != nil {
		return "", err
	}
	if err := p.store.SaveSettlementAccountID(ctx, vendor.ID, accountID); err != nil {
		return "", err
	}

	vendor.SettlementAccountID = &accountID
	return accountID, nil
}
