package payouts

import (
	"regexp"
	"time"

	"github.com/ecosaro/marketplace-backend/pkg/db/models"
	"github.com/ecosaro/marketplace-backend/pkg/enums"
)

// ifscPattern matches the RBI bank branch code format: four letters, a
// zero, then six alphanumerics.
var ifscPattern = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)

// ValidIFSC reports whether the code is a well-formed IFSC.
func ValidIFSC(code string) bool {
	return ifscPattern.MatchString(code)
}

// OrderReleased reports whether an order has cleared both release gates:
// fulfillment and the buyer return window measured from the last update.
func OrderReleased(order models.Order, now time.Time, window time.Duration) bool {
	if !order.Status.IsFulfilled() {
		return false
	}
	return !order.UpdatedAt.After(now.Add(-window))
}

// ItemDecision is the outcome of the per-item eligibility checks.
type ItemDecision int

const (
	// DecisionSkip means the item is closed to the engine and no write
	// should happen.
	DecisionSkip ItemDecision = iota
	// DecisionBlocked means the vendor profile prevents settlement.
	DecisionBlocked
	// DecisionEligible means the transfer can proceed.
	DecisionEligible
)

// ItemEvaluation carries the decision plus the block reason when blocked.
type ItemEvaluation struct {
	Decision    ItemDecision
	BlockReason enums.PayoutBlockReason
}

// EvaluateItem runs the ordered item checks. Earlier checks win: a settled
// item is never re-examined, and a missing bank profile masks an invalid
// IFSC.
func EvaluateItem(item models.OrderLineItem, vendor *models.Vendor) ItemEvaluation {
	if item.IsSettledTerminal() {
		return ItemEvaluation{Decision: DecisionSkip}
	}

	if vendor == nil || vendor.PayoutDetails == nil || !vendor.PayoutDetails.IsComplete() {
		return ItemEvaluation{Decision: DecisionBlocked, BlockReason: enums.BlockReasonBankDetailsMissing}
	}
	if !ValidIFSC(vendor.PayoutDetails.IFSCCode) {
		return ItemEvaluation{Decision: DecisionBlocked, BlockReason: enums.BlockReasonInvalidIFSCCode}
	}
	if !vendor.IsBankVerified {
		return ItemEvaluation{Decision: DecisionBlocked, BlockReason: enums.BlockReasonBankDetailsUnverified}
	}

	return ItemEvaluation{Decision: DecisionEligible}
}
