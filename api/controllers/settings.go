package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ecosaro/marketplace-backend/api/responses"
	"github.com/ecosaro/marketplace-backend/api/validators"
	"github.com/ecosaro/marketplace-backend/internal/settings"
	pkgerrors "github.com/ecosaro/marketplace-backend/pkg/errors"
	"github.com/ecosaro/marketplace-backend/pkg/logger"
)

type commissionRateRequest struct {
	RatePercent string `json:"rate_percent" validate:"required"`
}

// UpdateCommissionRate changes the platform commission for future orders.
// Splits already frozen on existing line items are unaffected.
func UpdateCommissionRate(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		var req commissionRateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rate, err := decimal.NewFromString(req.RatePercent)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "rate_percent must be a decimal number"))
			return
		}

		updated, err := svc.UpdateCommissionRate(ctx, rate)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// GetSettings returns the platform settings row.
func GetSettings(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		current, err := svc.Get(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, current)
	}
}
