package payouts

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ecosaro/marketplace-backend/pkg/enums"
)

// VendorSummary aggregates the vendor's settlement ledger, approved refunds,
// and the amounts still owed on unsettled line items over [from, to),
// itemized rows included. Settled money comes from the ledger; owed money
// comes from the line items themselves since no ledger entry exists until a
// settlement attempt runs.
func (s *service) VendorSummary(ctx context.Context, vendorID uuid.UUID, from, to time.Time) (*VendorSummary, error) {
	entries, err := s.ledger.ListByVendorBetween(ctx, vendorID, from, to)
	if err != nil {
		return nil, err
	}

	summary := &VendorSummary{VendorID: vendorID, From: from, To: to, Entries: entries}
	for _, entry := range entries {
		switch entry.Status {
		case enums.PayoutStatusCompleted:
			summary.PaidAmount += entry.Amount
			summary.PaidCount++
			summary.PlatformFees += entry.PlatformFee
		case enums.PayoutStatusBlocked:
			summary.BlockedCount++
		case enums.PayoutStatusFailed:
			summary.FailedCount++
		}
	}
	summary.GrossSales = summary.PaidAmount + summary.PlatformFees

	owed, err := s.orders.ListUnsettledItemsByVendorBetween(ctx, vendorID, from, to)
	if err != nil {
		return nil, err
	}
	for _, item := range owed {
		summary.OwedAmount += s.netAmount(ctx, item)
		summary.OwedCount++
	}

	refunded, refundCount, err := s.refunds.SumApprovedByVendorBetween(ctx, vendorID, from, to)
	if err != nil {
		return nil, err
	}
	summary.RefundedAmount = refunded
	summary.RefundedCount = refundCount

	return summary, nil
}
