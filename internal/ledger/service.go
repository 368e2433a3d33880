package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ecosaro/marketplace-backend/pkg/db"
	"github.com/ecosaro/marketplace-backend/pkg/db/models"
	"github.com/ecosaro/marketplace-backend/pkg/enums"
	pkgerrors "github.com/ecosaro/marketplace-backend/pkg/errors"
)

// Service defines operations over the settlement ledger. Entries are
// append-only: the only in-place mutation is provider reconciliation,
// which flips status by transfer id.
type Service interface {
	RecordEntry(ctx context.Context, input RecordEntryInput) (*models.Payout, error)
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.Payout, error)
	FindByTransferID(ctx context.Context, transferID string) (*models.Payout, error)
	ReconcileTransfer(ctx context.Context, transferID string, status enums.PayoutStatus, processedAt *time.Time) (bool, error)
	ListByVendorBetween(ctx context.Context, vendorID uuid.UUID, from, to time.Time) ([]models.Payout, error)
}

type service struct {
	repo Repository
}

// RecordEntryInput captures the immutable data a ledger entry requires.
type RecordEntryInput struct {
	OrderID     uuid.UUID
	VendorID    uuid.UUID
	Amount      int
	PlatformFee int
	Status      enums.PayoutStatus
	BlockReason *string
	TransferID  *string
	PayoutRefID *string
	ProcessedAt *time.Time
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) RecordEntry(ctx context.Context, input RecordEntryInput) (*models.Payout, error) {
	if input.OrderID == uuid.Nil {
		return nil, fmt.Errorf("order id is required")
	}
	if input.VendorID == uuid.Nil {
		return nil, fmt.Errorf("vendor id is required")
	}
	if input.Amount < 0 {
		return nil, fmt.Errorf("amount must not be negative")
	}
	if !input.Status.IsValid() {
		return nil, fmt.Errorf("invalid payout status %q", input.Status)
	}

	entry := &models.Payout{
		OrderID:     input.OrderID,
		VendorID:    input.VendorID,
		Amount:      input.Amount,
		PlatformFee: input.PlatformFee,
		Status:      input.Status,
		BlockReason: input.BlockReason,
		TransferID:  input.TransferID,
		PayoutRefID: input.PayoutRefID,
		ProcessedAt: input.ProcessedAt,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.Payout, error) {
	if orderID == uuid.Nil {
		return nil, fmt.Errorf("order id is required")
	}
	return s.repo.ListByOrderID(ctx, orderID)
}

func (s *service) FindByTransferID(ctx context.Context, transferID string) (*models.Payout, error) {
	if transferID == "" {
		return nil, fmt.Errorf("transfer id is required")
	}
	entry, err := s.repo.FindByTransferID(ctx, transferID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "ledger entry not found")
		}
		return nil, err
	}
	return entry, nil
}

// ReconcileTransfer flips the ledger entry for a provider transfer. It
// reports false when the entry was already COMPLETED or unknown.
func (s *service) ReconcileTransfer(ctx context.Context, transferID string, status enums.PayoutStatus, processedAt *time.Time) (bool, error) {
	if transferID == "" {
		return false, fmt.Errorf("transfer id is required")
	}
	if !status.IsValid() {
		return false, fmt.Errorf("invalid payout status %q", status)
	}
	affected, err := s.repo.MarkStatusByTransferID(ctx, transferID, status, processedAt)
	if err != nil {
		return false, err
	}
	if status == enums.PayoutStatusFailed && affected > 0 {
		if err := s.repo.IncrementRetryByTransferID(ctx, transferID); err != nil {
			return true, err
		}
	}
	return affected > 0, nil
}

func (s *service) ListByVendorBetween(ctx context.Context, vendorID uuid.UUID, from, to time.Time) ([]models.Payout, error) {
	if vendorID == uuid.Nil {
		return nil, fmt.Errorf("vendor id is required")
	}
	if !to.After(from) {
		return nil, fmt.Errorf("invalid date range")
	}
	return s.repo.ListByVendorBetween(ctx, vendorID, from, to)
}
