package payouts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/ecosaro/marketplace-backend/internal/ledger"
	"github.com/ecosaro/marketplace-backend/internal/orders"
	"github.com/ecosaro/marketplace-backend/pkg/commission"
	"github.com/ecosaro/marketplace-backend/pkg/db"
	"github.com/ecosaro/marketplace-backend/pkg/db/models"
	"github.com/ecosaro/marketplace-backend/pkg/enums"
	pkgerrors "github.com/ecosaro/marketplace-backend/pkg/errors"
	"github.com/ecosaro/marketplace-backend/pkg/logger"
	"github.com/ecosaro/marketplace-backend/pkg/metrics"
	"github.com/ecosaro/marketplace-backend/pkg/razorpay"
)

const (
	pathSweep  = "sweep"
	pathManual = "manual"
)

type transferClient interface {
	CreateTransfer(ctx context.Context, params razorpay.TransferCreateParams) (*razorpay.Transfer, error)
}

type vendorReader interface {
	GetVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
}

type rateProvider interface {
	CommissionRate(ctx context.Context) (decimal.Decimal, error)
}

type settlementAccounts interface {
	EnsureSettlementAccount(ctx context.Context, vendor *models.Vendor) (string, error)
}

type refundReader interface {
	SumApprovedByVendorBetween(ctx context.Context, vendorID uuid.UUID, from, to time.Time) (int, int, error)
}

// Service runs the payout engine: the automatic sweep, single-order
// processing, and the manual settlement batch.
type Service interface {
	ProcessOrder(ctx context.Context, orderID uuid.UUID) (*OrderReport, error)
	Sweep(ctx context.Context) (*SweepReport, error)
	ManualSettle(ctx context.Context, input ManualSettleInput) (*ManualSettleReport, error)
	VendorSummary(ctx context.Context, vendorID uuid.UUID, from, to time.Time) (*VendorSummary, error)
}

// Deps wires the collaborators the engine needs.
type Deps struct {
	Orders    orders.Repository
	Vendors   vendorReader
	Ledger    ledger.Service
	Rates     rateProvider
	Accounts  settlementAccounts
	Transfers transferClient
	Refunds   refundReader
	Logger    *logger.Logger
	Metrics   *metrics.PayoutMetrics
	Window    time.Duration
}

type service struct {
	orders    orders.Repository
	vendors   vendorReader
	ledger    ledger.Service
	rates     rateProvider
	accounts  settlementAccounts
	transfers transferClient
	refunds   refundReader
	logg      *logger.Logger
	metrics   *metrics.PayoutMetrics
	window    time.Duration
	now       func() time.Time
}

// NewService builds the payout engine.
func NewService(deps Deps) (Service, error) {
	if deps.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if deps.Vendors == nil {
		return nil, fmt.Errorf("vendor reader required")
	}
	if deps.Ledger == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if deps.Rates == nil {
		return nil, fmt.Errorf("rate provider required")
	}
	if deps.Accounts == nil {
		return nil, fmt.Errorf("settlement accounts required")
	}
	if deps.Transfers == nil {
		return nil, fmt.Errorf("transfer client required")
	}
	if deps.Refunds == nil {
		return nil, fmt.Errorf("refund reader required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	window := deps.Window
	if window <= 0 {
		window = 7 * 24 * time.Hour
	}
	return &service{
		orders:    deps.Orders,
		vendors:   deps.Vendors,
		ledger:    deps.Ledger,
		rates:     deps.Rates,
		accounts:  deps.Accounts,
		transfers: deps.Transfers,
		refunds:   deps.Refunds,
		logg:      deps.Logger,
		metrics:   deps.Metrics,
		window:    window,
		now:       time.Now,
	}, nil
}

// ProcessOrder runs the engine over a single order. Orders still inside the
// return window (or not yet fulfilled) defer without touching any item.
func (s *service) ProcessOrder(ctx context.Context, orderID uuid.UUID) (*OrderReport, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return nil, err
	}

	ctx = s.logg.WithOrderID(ctx, orderID.String())
	report := &OrderReport{OrderID: orderID}

	if !OrderReleased(*order, s.now(), s.window) {
		report.Deferred = true
		s.logg.Info(ctx, "order held: not fulfilled or inside return window")
		return report, nil
	}

	vendorCache := map[uuid.UUID]*models.Vendor{}
	var itemErrs error
	for i := range order.Items {
		item := order.Items[i]

		vendor, ok := vendorCache[item.VendorID]
		if !ok {
			vendor, err = s.vendors.GetVendor(ctx, item.VendorID)
			if err != nil {
				itemErrs = multierr.Append(itemErrs, fmt.Errorf("item %s: %w", item.ID, err))
				report.Failed++
				continue
			}
			vendorCache[item.VendorID] = vendor
		}

		switch eval := EvaluateItem(item, vendor); eval.Decision {
		case DecisionSkip:
			report.Skipped++
		case DecisionBlocked:
			if err := s.blockItem(ctx, order, item, eval.BlockReason); err != nil {
				itemErrs = multierr.Append(itemErrs, fmt.Errorf("item %s: %w", item.ID, err))
			}
			report.Blocked++
		case DecisionEligible:
			if err := s.settleItem(ctx, order, item, vendor); err != nil {
				itemErrs = multierr.Append(itemErrs, fmt.Errorf("item %s: %w", item.ID, err))
				report.Failed++
				continue
			}
			report.Settled++
		}
	}

	return report, itemErrs
}

// blockItem marks the line item BLOCKED. The ledger and metrics only record
// transitions, so repeated sweeps over the same blocked item stay quiet.
func (s *service) blockItem(ctx context.Context, order *models.Order, item models.OrderLineItem, reason enums.PayoutBlockReason) error {
	alreadyBlocked := item.PayoutStatus == enums.PayoutStatusBlocked &&
		item.PayoutBlockReason != nil && *item.PayoutBlockReason == reason.String()
	if alreadyBlocked {
		return nil
	}

	reasonStr := reason.String()
	affected, err := s.orders.UpdateLineItemGuarded(ctx, item.ID, map[string]any{
		"payout_status":       enums.PayoutStatusBlocked,
		"payout_block_reason": reasonStr,
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return nil
	}

	s.metrics.IncBlocked(reasonStr)
	_, err = s.ledger.RecordEntry(ctx, ledger.RecordEntryInput{
		OrderID:     order.ID,
		VendorID:    item.VendorID,
		Amount:      s.netAmount(ctx, item),
		PlatformFee: s.feeAmount(ctx, item),
		Status:      enums.PayoutStatusBlocked,
		BlockReason: &reasonStr,
	})
	return err
}

// settleItem moves money first, then claims the row. Losing the claim after
// a successful transfer is logged loudly because it means a double payment
// needs manual review.
func (s *service) settleItem(ctx context.Context, order *models.Order, item models.OrderLineItem, vendor *models.Vendor) error {
	net := s.netAmount(ctx, item)
	fee := s.feeAmount(ctx, item)
	if net <= 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "nothing payable for item")
	}

	accountID, err := s.accounts.EnsureSettlementAccount(ctx, vendor)
	if err != nil {
		return err
	}

	transfer, err := s.transfers.CreateTransfer(ctx, razorpay.TransferCreateParams{
		AccountID:   accountID,
		AmountPaise: int64(net) * 100,
		Notes: map[string]string{
			"order_id":  order.ID.String(),
			"item_id":   item.ID.String(),
			"vendor_id": item.VendorID.String(),
		},
	})
	if err != nil {
		return s.failItem(ctx, order, item, net, fee, err)
	}

	paidAt := s.now()
	affected, claimErr := s.orders.UpdateLineItemGuarded(ctx, item.ID, map[string]any{
		"payout_status":       enums.PayoutStatusCompleted,
		"payout_block_reason": nil,
		"transfer_id":         transfer.ID,
		"payout_date":         paidAt,
		"is_locked":           true,
	})
	if claimErr != nil {
		return claimErr
	}
	if affected == 0 {
		s.logg.Error(ctx, "transfer created but settlement claim lost; possible double payment",
			fmt.Errorf("transfer %s item %s", transfer.ID, item.ID))
	}

	s.metrics.IncSettled(pathSweep)
	transferID := transfer.ID
	_, err = s.ledger.RecordEntry(ctx, ledger.RecordEntryInput{
		OrderID:     order.ID,
		VendorID:    item.VendorID,
		Amount:      net,
		PlatformFee: fee,
		Status:      enums.PayoutStatusCompleted,
		TransferID:  &transferID,
	})
	return err
}

func (s *service) failItem(ctx context.Context, order *models.Order, item models.OrderLineItem, net, fee int, cause error) error {
	s.logg.Error(ctx, "transfer creation failed", cause)
	if _, err := s.orders.UpdateLineItemGuarded(ctx, item.ID, map[string]any{
		"payout_status": enums.PayoutStatusFailed,
	}); err != nil {
		return multierr.Append(cause, err)
	}
	s.metrics.IncFailed(pathSweep)
	failureMsg := cause.Error()
	if _, err := s.ledger.RecordEntry(ctx, ledger.RecordEntryInput{
		OrderID:     order.ID,
		VendorID:    item.VendorID,
		Amount:      net,
		PlatformFee: fee,
		Status:      enums.PayoutStatusFailed,
		BlockReason: &failureMsg,
	}); err != nil {
		return multierr.Append(cause, err)
	}
	return cause
}

// netAmount prefers the commission split frozen at order creation and only
// computes from the live rate for legacy items without one.
func (s *service) netAmount(ctx context.Context, item models.OrderLineItem) int {
	if item.NetAmount > 0 {
		return item.NetAmount
	}
	return s.legacySplit(ctx, item).NetPayable
}

func (s *service) feeAmount(ctx context.Context, item models.OrderLineItem) int {
	if item.NetAmount > 0 {
		return item.CommissionAmount
	}
	return s.legacySplit(ctx, item).Fee
}

func (s *service) legacySplit(ctx context.Context, item models.OrderLineItem) commission.Split {
	gross := item.UnitPrice * item.Qty
	rate, err := s.rates.CommissionRate(ctx)
	if err != nil {
		s.logg.Error(ctx, "commission rate lookup failed, using default", err)
		rate = decimal.NewFromInt(models.DefaultCommissionRatePercent)
	}
	return commission.Compute(gross, rate)
}

// Sweep processes every candidate order past the return window. Failures on
// one order never stop the rest of the batch.
func (s *service) Sweep(ctx context.Context) (*SweepReport, error) {
	cutoff := s.now().Add(-s.window)
	candidates, err := s.orders.FindPayoutCandidates(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	report := &SweepReport{Orders: len(candidates)}
	var sweepErrs error
	for _, order := range candidates {
		orderReport, err := s.ProcessOrder(ctx, order.ID)
		if err != nil {
			sweepErrs = multierr.Append(sweepErrs, fmt.Errorf("order %s: %w", order.ID, err))
		}
		if orderReport == nil {
			continue
		}
		report.Reports = append(report.Reports, *orderReport)
		report.Settled += orderReport.Settled
		report.Blocked += orderReport.Blocked
		report.Failed += orderReport.Failed
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"orders":  report.Orders,
		"settled": report.Settled,
		"blocked": report.Blocked,
		"failed":  report.Failed,
	}), "payout sweep finished")
	return report, sweepErrs
}

// ManualSettle marks individual items as paid out off-platform, addressed
// by order id and item name. Each pair is processed on its own; an item that
// is already completed, refunded, or locked fails its pair without touching
// the rest of the batch. Bank profile state is irrelevant here since the
// money moved outside the provider.
func (s *service) ManualSettle(ctx context.Context, input ManualSettleInput) (*ManualSettleReport, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one order item is required")
	}
	if input.Reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "settlement reference is required")
	}

	paidAt := s.now()
	report := &ManualSettleReport{Reference: input.Reference, PaidAt: paidAt}
	var batchErrs error

	fail := func(target ManualSettleItem, reason string) {
		report.Results = append(report.Results, ManualSettleResult{
			OrderID:  target.OrderID,
			ItemName: target.ItemName,
			Reason:   reason,
		})
		report.Failed++
	}

	for _, target := range input.Items {
		order, err := s.orders.FindByID(ctx, target.OrderID)
		if err != nil {
			if db.IsNotFound(err) {
				fail(target, "order not found")
				continue
			}
			return nil, err
		}

		item, ok := findItemByName(order.Items, target.ItemName)
		if !ok {
			fail(target, "item not found on order")
			continue
		}
		if item.Refunded {
			fail(target, "item was refunded")
			continue
		}

		affected, err := s.orders.UpdateLineItemGuarded(ctx, item.ID, map[string]any{
			"payout_status":       enums.PayoutStatusCompleted,
			"payout_block_reason": nil,
			"payout_date":         paidAt,
			"payout_reference":    input.Reference,
			"is_locked":           true,
		})
		if err != nil {
			fail(target, err.Error())
			batchErrs = multierr.Append(batchErrs, fmt.Errorf("item %s: %w", item.ID, err))
			continue
		}
		if affected == 0 {
			fail(target, "item already settled or locked")
			continue
		}

		s.metrics.IncSettled(pathManual)
		reference := input.Reference
		if _, err := s.ledger.RecordEntry(ctx, ledger.RecordEntryInput{
			OrderID:     order.ID,
			VendorID:    item.VendorID,
			Amount:      s.netAmount(ctx, item),
			PlatformFee: s.feeAmount(ctx, item),
			Status:      enums.PayoutStatusCompleted,
			PayoutRefID: &reference,
			ProcessedAt: &paidAt,
		}); err != nil {
			fail(target, "settled but ledger write failed")
			batchErrs = multierr.Append(batchErrs, fmt.Errorf("item %s ledger: %w", item.ID, err))
			continue
		}

		report.Results = append(report.Results, ManualSettleResult{
			OrderID:  target.OrderID,
			ItemName: target.ItemName,
			Settled:  true,
		})
		report.Settled++
	}

	return report, batchErrs
}

func findItemByName(items []models.OrderLineItem, name string) (models.OrderLineItem, bool) {
	for i := range items {
		if items[i].Name == name {
			return items[i], true
		}
	}
	return models.OrderLineItem{}, false
}
