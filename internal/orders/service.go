package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ecosaro/marketplace-backend/pkg/commission"
	"github.com/ecosaro/marketplace-backend/pkg/db"
	"github.com/ecosaro/marketplace-backend/pkg/db/models"
	"github.com/ecosaro/marketplace-backend/pkg/enums"
	pkgerrors "github.com/ecosaro/marketplace-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RateProvider supplies the current platform commission rate.
type RateProvider interface {
	CommissionRate(ctx context.Context) (decimal.Decimal, error)
}

// Service defines order-level operations beyond repository reads.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*models.Order, error)
}

type service struct {
	repo  Repository
	tx    txRunner
	rates RateProvider
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner, rates RateProvider) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if rates == nil {
		return nil, fmt.Errorf("rate provider required")
	}
	return &service{repo: repo, tx: tx, rates: rates}, nil
}

// Create validates the intake request, freezes the commission split per item
// from the current rate, and atomically decrements stock. Any item with
// insufficient stock aborts the whole order.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
	}
	if !input.ShippingAddress.IsComplete() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is incomplete")
	}
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item product id is required")
		}
		if item.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item qty must be positive")
		}
	}

	rate, err := s.rates.CommissionRate(ctx)
	if err != nil {
		return nil, err
	}

	var created *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order := &models.Order{
			ID:                uuid.New(),
			UserID:            input.UserID,
			Status:            enums.OrderStatusPending,
			PaymentMethod:     input.PaymentMethod,
			ShippingAddress:   &input.ShippingAddress,
			ProviderOrderID:   input.ProviderOrderID,
			ProviderPaymentID: input.ProviderPaymentID,
		}

		items := make([]models.OrderLineItem, 0, len(input.Items))
		total := 0
		for _, req := range input.Items {
			product, err := repo.FindProduct(ctx, req.ProductID)
			if err != nil {
				if db.IsNotFound(err) {
					return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, fmt.Sprintf("product %s not found", req.ProductID))
				}
				return err
			}

			affected, err := repo.DecrementStockGuarded(ctx, product.ID, req.Qty)
			if err != nil {
				return err
			}
			if affected == 0 {
				return pkgerrors.New(pkgerrors.CodeStateConflict,
					fmt.Sprintf("insufficient stock for %q", product.Name)).
					WithDetails(map[string]any{"product_id": product.ID, "requested": req.Qty})
			}

			gross := product.Price * req.Qty
			split := commission.Compute(gross, rate)
			total += gross

			items = append(items, models.OrderLineItem{
				ID:               uuid.New(),
				OrderID:          order.ID,
				ProductID:        product.ID,
				VendorID:         product.VendorID,
				Name:             product.Name,
				UnitPrice:        product.Price,
				Qty:              req.Qty,
				CommissionAmount: split.Fee,
				NetAmount:        split.NetPayable,
				PayoutStatus:     enums.PayoutStatusPending,
			})
		}

		order.TotalAmount = total
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return err
		}
		if err := repo.CreateOrderLineItems(ctx, items); err != nil {
			return err
		}
		order.Items = items
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return nil, err
	}
	return order, nil
}

// UpdateStatus moves an order through its lifecycle. Fulfillment timestamps
// feed the payout return window, so the status write refreshes updated_at.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", status))
	}
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == enums.OrderStatusCancelled && status != enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cancelled orders cannot change status")
	}
	if err := s.repo.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, orderID)
}

// ReturnWindowCutoff is the newest fulfillment time still inside the buyer
// return window.
func ReturnWindowCutoff(now time.Time, window time.Duration) time.Time {
	return now.Add(-window)
}
