package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ecosaro/marketplace-backend/api/responses"
	"github.com/ecosaro/marketplace-backend/api/validators"
	"github.com/ecosaro/marketplace-backend/internal/refunds"
	pkgerrors "github.com/ecosaro/marketplace-backend/pkg/errors"
	"github.com/ecosaro/marketplace-backend/pkg/logger"
)

type requestRefundRequest struct {
	OrderID   uuid.UUID `json:"order_id" validate:"required"`
	ItemIndex int       `json:"item_index" validate:"min=0"`
	UserID    uuid.UUID `json:"user_id" validate:"required"`
	Reason    string    `json:"reason" validate:"required"`
}

type decideRefundRequest struct {
	Action     string `json:"action" validate:"required,oneof=approve reject"`
	AdminNotes string `json:"admin_notes"`
}

// RequestRefund opens a refund request for one order line item.
func RequestRefund(svc refunds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "refund service unavailable"))
			return
		}

		var req requestRefundRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		request, err := svc.RequestRefund(ctx, refunds.RequestRefundInput{
			OrderID:   req.OrderID,
			ItemIndex: req.ItemIndex,
			UserID:    req.UserID,
			Reason:    req.Reason,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, request)
	}
}

// DecideRefund applies the admin decision on a pending refund request.
func DecideRefund(svc refunds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "refund service unavailable"))
			return
		}

		refundID, err := validators.ParseUUIDParam(r, "refundID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req decideRefundRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var decided any
		switch strings.ToLower(req.Action) {
		case "approve":
			decided, err = svc.Approve(ctx, refundID, req.AdminNotes)
		case "reject":
			decided, err = svc.Reject(ctx, refundID, req.AdminNotes)
		default:
			err = pkgerrors.New(pkgerrors.CodeValidation, "action must be approve or reject")
		}
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, decided)
	}
}
