package controllers

import (
	"net/http"

	"github.com/ecosaro/marketplace-backend/api/responses"
	"github.com/ecosaro/marketplace-backend/api/validators"
	"github.com/ecosaro/marketplace-backend/internal/vendors"
	pkgerrors "github.com/ecosaro/marketplace-backend/pkg/errors"
	"github.com/ecosaro/marketplace-backend/pkg/logger"
	"github.com/ecosaro/marketplace-backend/pkg/types"
)

type payoutProfileRequest struct {
	AccountNumber string `json:"account_number" validate:"required"`
	IFSCCode      string `json:"ifsc_code" validate:"required"`
	AccountHolder string `json:"account_holder" validate:"required"`
}

type verifyBankRequest struct {
	Verified *bool `json:"verified" validate:"required"`
}

// UpdatePayoutProfile lets a vendor update their bank details. Any change
// resets admin verification.
func UpdatePayoutProfile(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor service unavailable"))
			return
		}

		vendorID, err := validators.ParseUUIDParam(r, "vendorID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req payoutProfileRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		vendor, err := svc.UpdatePayoutProfile(logg.WithVendorID(ctx, vendorID.String()), vendorID, types.PayoutDetails{
			AccountNumber: req.AccountNumber,
			IFSCCode:      req.IFSCCode,
			AccountHolder: req.AccountHolder,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, vendor)
	}
}

// VerifyBank is the admin toggle that releases or re-blocks a vendor's
// automatic payouts.
func VerifyBank(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor service unavailable"))
			return
		}

		vendorID, err := validators.ParseUUIDParam(r, "vendorID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req verifyBankRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		vendor, err := svc.VerifyBank(logg.WithVendorID(ctx, vendorID.String()), vendorID, *req.Verified)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, vendor)
	}
}

// GetVendor returns one vendor profile.
func GetVendor(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor service unavailable"))
			return
		}

		vendorID, err := validators.ParseUUIDParam(r, "vendorID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		vendor, err := svc.GetVendor(ctx, vendorID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, vendor)
	}
}
