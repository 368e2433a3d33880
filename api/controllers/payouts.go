package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ecosaro/marketplace-backend/api/responses"
	"github.com/ecosaro/marketplace-backend/api/validators"
	"github.com/ecosaro/marketplace-backend/internal/payouts"
	pkgerrors "github.com/ecosaro/marketplace-backend/pkg/errors"
	"github.com/ecosaro/marketplace-backend/pkg/logger"
)

type markPaidItem struct {
	OrderID  uuid.UUID `json:"order_id" validate:"required"`
	ItemName string    `json:"item_name" validate:"required"`
}

type markPaidRequest struct {
	Items     []markPaidItem `json:"items" validate:"required,min=1,dive"`
	Reference string         `json:"reference" validate:"required"`
}

// SweepPayouts runs a settlement sweep on demand from the admin console.
func SweepPayouts(svc payouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payout service unavailable"))
			return
		}

		report, err := svc.Sweep(ctx)
		if err != nil {
			// partial sweeps still return their report
			if report != nil {
				logg.Error(ctx, "sweep finished with errors", err)
				responses.WriteSuccess(w, report)
				return
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// MarkPaid records a manual off-platform settlement batch.
func MarkPaid(svc payouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payout service unavailable"))
			return
		}

		var req markPaidRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := payouts.ManualSettleInput{Reference: req.Reference}
		for _, item := range req.Items {
			input.Items = append(input.Items, payouts.ManualSettleItem{
				OrderID:  item.OrderID,
				ItemName: item.ItemName,
			})
		}

		report, err := svc.ManualSettle(ctx, input)
		if err != nil {
			if report != nil {
				logg.Error(ctx, "manual settlement finished with errors", err)
				responses.WriteSuccess(w, report)
				return
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// VendorStatement serves the vendor's settlement summary for a date range.
func VendorStatement(svc payouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payout service unavailable"))
			return
		}

		vendorID, err := validators.ParseUUIDParam(r, "vendorID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		from, to, err := validators.ParseQueryDateRange(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		summary, err := svc.VendorSummary(logg.WithVendorID(ctx, vendorID.String()), vendorID, from, to)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// PayoutSummary serves the admin view of a vendor's settlement summary.
func PayoutSummary(svc payouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payout service unavailable"))
			return
		}

		raw := r.URL.Query().Get("vendor_id")
		vendorID, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "vendor_id query parameter must be a uuid"))
			return
		}
		from, to, err := validators.ParseQueryDateRange(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		summary, err := svc.VendorSummary(ctx, vendorID, from, to)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
