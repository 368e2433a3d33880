package payouts

import (
	"testing"
	"time"

	"github.com/ecosaro/marketplace-backend/pkg/db/models"
	"github.com/ecosaro/marketplace-backend/pkg/enums"
	"github.com/ecosaro/marketplace-backend/pkg/types"
)

func TestValidIFSC(t *testing.T) {
	valid := []string{"HDFC0001234", "SBIN0ABC123", "ICIC0000001"}
	for _, code := range valid {
		if !ValidIFSC(code) {
			t.Fatalf("expected %q to be valid", code)
		}
	}

	invalid := []string{
		"",
		"HDFC001234",   // too short
		"HDFC10001234", // fifth char must be zero
		"hdfc0001234",  // lowercase
		"HDFC0001234X", // too long
		"HD1C0001234",  // letters only in bank code
	}
	for _, code := range invalid {
		if ValidIFSC(code) {
			t.Fatalf("expected %q to be invalid", code)
		}
	}
}

func TestOrderReleased(t *testing.T) {
	now := time.Now()
	window := 7 * 24 * time.Hour

	eligible := models.Order{Status: enums.OrderStatusDelivered, UpdatedAt: now.Add(-8 * 24 * time.Hour)}
	if !OrderReleased(eligible, now, window) {
		t.Fatalf("order past the window should be released")
	}

	legacy := models.Order{Status: enums.OrderStatusCompleted, UpdatedAt: now.Add(-8 * 24 * time.Hour)}
	if !OrderReleased(legacy, now, window) {
		t.Fatalf("legacy completed status should count as fulfilled")
	}

	inside := models.Order{Status: enums.OrderStatusDelivered, UpdatedAt: now.Add(-time.Hour)}
	if OrderReleased(inside, now, window) {
		t.Fatalf("order inside the window must stay held")
	}

	unfulfilled := models.Order{Status: enums.OrderStatusShipped, UpdatedAt: now.Add(-30 * 24 * time.Hour)}
	if OrderReleased(unfulfilled, now, window) {
		t.Fatalf("shipped order must not be released regardless of age")
	}
}

func verifiedVendor() *models.Vendor {
	return &models.Vendor{
		BusinessName:   "Acme",
		IsBankVerified: true,
		PayoutDetails: &types.PayoutDetails{
			AccountNumber: "000111222333",
			IFSCCode:      "HDFC0001234",
			AccountHolder: "Acme Foods",
		},
	}
}

func TestEvaluateItemOrderedChecks(t *testing.T) {
	item := models.OrderLineItem{PayoutStatus: enums.PayoutStatusPending}

	// terminal item wins over everything
	settled := models.OrderLineItem{PayoutStatus: enums.PayoutStatusCompleted}
	if got := EvaluateItem(settled, nil); got.Decision != DecisionSkip {
		t.Fatalf("settled item should be skipped, got %v", got)
	}
	refunded := models.OrderLineItem{PayoutStatus: enums.PayoutStatusPending, Refunded: true}
	if got := EvaluateItem(refunded, verifiedVendor()); got.Decision != DecisionSkip {
		t.Fatalf("refunded item should be skipped, got %v", got)
	}
	locked := models.OrderLineItem{PayoutStatus: enums.PayoutStatusPending, IsLocked: true}
	if got := EvaluateItem(locked, verifiedVendor()); got.Decision != DecisionSkip {
		t.Fatalf("locked item should be skipped, got %v", got)
	}

	// missing profile masks the IFSC check
	if got := EvaluateItem(item, &models.Vendor{}); got.Decision != DecisionBlocked ||
		got.BlockReason != enums.BlockReasonBankDetailsMissing {
		t.Fatalf("expected BANK_DETAILS_MISSING, got %+v", got)
	}

	badIFSC := verifiedVendor()
	badIFSC.PayoutDetails.IFSCCode = "BAD"
	if got := EvaluateItem(item, badIFSC); got.Decision != DecisionBlocked ||
		got.BlockReason != enums.BlockReasonInvalidIFSCCode {
		t.Fatalf("expected INVALID_IFSC_CODE, got %+v", got)
	}

	unverified := verifiedVendor()
	unverified.IsBankVerified = false
	if got := EvaluateItem(item, unverified); got.Decision != DecisionBlocked ||
		got.BlockReason != enums.BlockReasonBankDetailsUnverified {
		t.Fatalf("expected BANK_DETAILS_UNVERIFIED, got %+v", got)
	}

	if got := EvaluateItem(item, verifiedVendor()); got.Decision != DecisionEligible {
		t.Fatalf("expected eligible, got %+v", got)
	}

	// FAILED and BLOCKED items remain workable
	failed := models.OrderLineItem{PayoutStatus: enums.PayoutStatusFailed}
	if got := EvaluateItem(failed, verifiedVendor()); got.Decision != DecisionEligible {
		t.Fatalf("failed item should be retryable, got %+v", got)
	}
}
