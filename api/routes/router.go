package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ecosaro/marketplace-backend/api/controllers"
	"github.com/ecosaro/marketplace-backend/api/middleware"
	"github.com/ecosaro/marketplace-backend/internal/orders"
	"github.com/ecosaro/marketplace-backend/internal/payouts"
	"github.com/ecosaro/marketplace-backend/internal/refunds"
	"github.com/ecosaro/marketplace-backend/internal/settings"
	"github.com/ecosaro/marketplace-backend/internal/vendors"
	"github.com/ecosaro/marketplace-backend/pkg/config"
	"github.com/ecosaro/marketplace-backend/pkg/db"
	"github.com/ecosaro/marketplace-backend/pkg/logger"
	"github.com/ecosaro/marketplace-backend/pkg/razorpay"
	"github.com/ecosaro/marketplace-backend/pkg/redis"
)

// Params carry everything the router wires into controllers. Admin routes
// assume an upstream gateway handles authentication.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       *db.Client
	Redis    *redis.Client
	Razorpay *razorpay.Client

	Orders   orders.Service
	Payouts  payouts.Service
	Vendors  vendors.Service
	Refunds  refunds.Service
	Settings settings.Service
	Webhooks controllers.RazorpayWebhookService
}

// NewRouter assembles the HTTP surface.
func NewRouter(p Params) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.DB, p.Redis, p.Logger))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/webhooks/razorpay", controllers.RazorpayWebhook(p.Webhooks, p.Razorpay, p.Logger))

		r.Post("/orders", controllers.CreateOrder(p.Orders, p.Logger))
		r.Get("/orders/{orderID}", controllers.GetOrder(p.Orders, p.Logger))
		r.Patch("/orders/{orderID}/status", controllers.UpdateOrderStatus(p.Orders, p.Logger))

		r.Post("/refunds", controllers.RequestRefund(p.Refunds, p.Logger))

		r.Route("/vendors/{vendorID}", func(r chi.Router) {
			r.Get("/", controllers.GetVendor(p.Vendors, p.Logger))
			r.Get("/statement", controllers.VendorStatement(p.Payouts, p.Logger))
			r.Put("/payout-profile", controllers.UpdatePayoutProfile(p.Vendors, p.Logger))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Post("/payouts/sweep", controllers.SweepPayouts(p.Payouts, p.Logger))
		r.Post("/payouts/mark-paid", controllers.MarkPaid(p.Payouts, p.Logger))
		r.Get("/payouts/summary", controllers.PayoutSummary(p.Payouts, p.Logger))
		r.Post("/vendors/{vendorID}/verify-bank", controllers.VerifyBank(p.Vendors, p.Logger))
		r.Patch("/refunds/{refundID}", controllers.DecideRefund(p.Refunds, p.Logger))
		r.Get("/settings", controllers.GetSettings(p.Settings, p.Logger))
		r.Put("/settings/commission-rate", controllers.UpdateCommissionRate(p.Settings, p.Logger))
	})

	return r
}
