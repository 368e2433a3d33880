package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/ecosaro/marketplace-backend/api/routes"
	"github.com/ecosaro/marketplace-backend/internal/ledger"
	"github.com/ecosaro/marketplace-backend/internal/orders"
	"github.com/ecosaro/marketplace-backend/internal/payouts"
	"github.com/ecosaro/marketplace-backend/internal/refunds"
	"github.com/ecosaro/marketplace-backend/internal/settings"
	"github.com/ecosaro/marketplace-backend/internal/vendors"
	rzpwebhooks "github.com/ecosaro/marketplace-backend/internal/webhooks/razorpay"
	"github.com/ecosaro/marketplace-backend/pkg/config"
	"github.com/ecosaro/marketplace-backend/pkg/db"
	"github.com/ecosaro/marketplace-backend/pkg/logger"
	"github.com/ecosaro/marketplace-backend/pkg/metrics"
	"github.com/ecosaro/marketplace-backend/pkg/migrate"
	"github.com/ecosaro/marketplace-backend/pkg/razorpay"
	"github.com/ecosaro/marketplace-backend/pkg/redis"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	razorpayClient, err := razorpay.NewClient(context.Background(), cfg.Razorpay, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap razorpay client", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	vendorsRepo := vendors.NewRepository(dbClient.DB())
	ledgerRepo := ledger.NewRepository(dbClient.DB())
	refundsRepo := refunds.NewRepository(dbClient.DB())
	settingsRepo := settings.NewRepository(dbClient.DB())

	settingsService, err := settings.NewService(settingsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}
	ordersService, err := orders.NewService(ordersRepo, dbClient, settingsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}
	vendorsService, err := vendors.NewService(vendorsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create vendors service", err)
		os.Exit(1)
	}
	ledgerService, err := ledger.NewService(ledgerRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}
	refundsService, err := refunds.NewService(refundsRepo, ordersRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create refunds service", err)
		os.Exit(1)
	}

	payoutMetrics := metrics.NewPayoutMetrics(prometheus.DefaultRegisterer)
	provisioner, err := payouts.NewProvisioner(razorpayClient, vendorsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create account provisioner", err)
		os.Exit(1)
	}
	payoutsService, err := payouts.NewService(payouts.Deps{
		Orders:    ordersRepo,
		Vendors:   vendorsService,
		Ledger:    ledgerService,
		Rates:     settingsService,
		Accounts:  provisioner,
		Transfers: razorpayClient,
		Refunds:   refundsRepo,
		Logger:    logg,
		Metrics:   payoutMetrics,
		Window:    cfg.Payouts.ReturnWindow(),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payout service", err)
		os.Exit(1)
	}

	webhookService, err := rzpwebhooks.NewService(rzpwebhooks.Deps{
		Orders:      ordersRepo,
		Ledger:      ledgerService,
		Idempotency: redisClient,
		Logger:      logg,
		Metrics:     payoutMetrics,
		EventTTL:    cfg.Payouts.WebhookEventTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:   cfg,
			Logger:   logg,
			DB:       dbClient,
			Redis:    redisClient,
			Razorpay: razorpayClient,
			Orders:   ordersService,
			Payouts:  payoutsService,
			Vendors:  vendorsService,
			Refunds:  refundsService,
			Settings: settingsService,
			Webhooks: webhookService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
