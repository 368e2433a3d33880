package refunds

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecosaro/marketplace-backend/internal/orders"
	"github.com/ecosaro/marketplace-backend/pkg/db"
	"github.com/ecosaro/marketplace-backend/pkg/db/models"
	"github.com/ecosaro/marketplace-backend/pkg/enums"
	pkgerrors "github.com/ecosaro/marketplace-backend/pkg/errors"
)

// RefundedBlockReason is stamped on a line item whose refund was approved.
const RefundedBlockReason = "Order Item Refunded"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RequestRefundInput is a buyer-initiated refund for one item of an order.
type RequestRefundInput struct {
	OrderID   uuid.UUID
	ItemIndex int
	UserID    uuid.UUID
	Reason    string
}

// Service reviews refund requests and applies the payout consequences of an
// approval.
type Service interface {
	RequestRefund(ctx context.Context, input RequestRefundInput) (*models.RefundRequest, error)
	GetRequest(ctx context.Context, id uuid.UUID) (*models.RefundRequest, error)
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.RefundRequest, error)
	Approve(ctx context.Context, id uuid.UUID, adminNotes string) (*models.RefundRequest, error)
	Reject(ctx context.Context, id uuid.UUID, adminNotes string) (*models.RefundRequest, error)
}

type service struct {
	repo   Repository
	orders orders.Repository
	tx     txRunner
}

// NewService builds a refund service with the required dependencies.
func NewService(repo Repository, ordersRepo orders.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("refunds repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, orders: ordersRepo, tx: tx}, nil
}

// RequestRefund opens a PENDING request for the identified line item. The
// amount is frozen from the item's price at request time.
func (s *service) RequestRefund(ctx context.Context, input RequestRefundInput) (*models.RefundRequest, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund reason is required")
	}

	order, item, err := s.findItem(ctx, input.OrderID, input.ItemIndex)
	if err != nil {
		return nil, err
	}
	if order.UserID != input.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order does not belong to user")
	}
	if item.Refunded {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "item already refunded")
	}

	request := &models.RefundRequest{
		OrderID:   order.ID,
		ItemIndex: input.ItemIndex,
		UserID:    input.UserID,
		VendorID:  item.VendorID,
		Amount:    item.UnitPrice * item.Qty,
		Reason:    strings.TrimSpace(input.Reason),
		Status:    enums.RefundRequestStatusPending,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

func (s *service) GetRequest(ctx context.Context, id uuid.UUID) (*models.RefundRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "refund request not found")
		}
		return nil, err
	}
	return request, nil
}

func (s *service) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.RefundRequest, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	return s.repo.ListByOrderID(ctx, orderID)
}

// Approve grants the refund. The target item must not already be paid out;
// approval marks it refunded, closes it to automatic payout, and returns the
// quantity to stock, all in one transaction.
func (s *service) Approve(ctx context.Context, id uuid.UUID, adminNotes string) (*models.RefundRequest, error) {
	request, err := s.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Status != enums.RefundRequestStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("refund request already %s", request.Status))
	}

	_, item, err := s.findItem(ctx, request.OrderID, request.ItemIndex)
	if err != nil {
		return nil, err
	}
	if item.PayoutStatus == enums.PayoutStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "item already paid out to vendor")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ordersRepo := s.orders.WithTx(tx)

		affected, err := repo.UpdateDecisionGuarded(ctx, request.ID, enums.RefundRequestStatusApproved, adminNotes)
		if err != nil {
			return err
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "refund request already decided")
		}

		affected, err = ordersRepo.UpdateLineItemGuarded(ctx, item.ID, map[string]any{
			"refunded":            true,
			"payout_status":       enums.PayoutStatusFailed,
			"payout_block_reason": RefundedBlockReason,
		})
		if err != nil {
			return err
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "item settled while refund was under review")
		}

		return ordersRepo.Restock(ctx, item.ProductID, item.Qty)
	})
	if err != nil {
		return nil, err
	}

	return s.GetRequest(ctx, id)
}

// Reject closes the request without touching the line item.
func (s *service) Reject(ctx context.Context, id uuid.UUID, adminNotes string) (*models.RefundRequest, error) {
	request, err := s.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Status != enums.RefundRequestStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("refund request already %s", request.Status))
	}

	affected, err := s.repo.UpdateDecisionGuarded(ctx, id, enums.RefundRequestStatusRejected, adminNotes)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "refund request already decided")
	}

	return s.GetRequest(ctx, id)
}

func (s *service) findItem(ctx context.Context, orderID uuid.UUID, itemIndex int) (*models.Order, *models.OrderLineItem, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return nil, nil, err
	}
	if itemIndex < 0 || itemIndex >= len(order.Items) {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("item index %d out of range for order with %d items", itemIndex, len(order.Items)))
	}
	return order, &order.Items[itemIndex], nil
}
