package razorpay

import (
	"context"
	"fmt"
	"time"

	"github.com/ecosaro/marketplace-backend/internal/ledger"
	"github.com/ecosaro/marketplace-backend/internal/orders"
	"github.com/ecosaro/marketplace-backend/pkg/enums"
	"github.com/ecosaro/marketplace-backend/pkg/logger"
	"github.com/ecosaro/marketplace-backend/pkg/metrics"
	"github.com/ecosaro/marketplace-backend/pkg/redis"
)

// Outcomes reported per event, mirrored into the webhook metric.
const (
	OutcomeProcessed = "processed"
	OutcomeDuplicate = "duplicate"
	OutcomeUnknown   = "unknown"
	OutcomeIgnored   = "ignored"
)

const idempotencyScope = "webhook"

// Service reconciles provider settlement events against the ledger and the
// order line items they refer to.
type Service interface {
	HandleEvent(ctx context.Context, event Event) (string, error)
}

// Deps wires the reconciler's collaborators.
type Deps struct {
	Orders      orders.Repository
	Ledger      ledger.Service
	Idempotency redis.IdempotencyStore
	Logger      *logger.Logger
	Metrics     *metrics.PayoutMetrics
	EventTTL    time.Duration
}

type service struct {
	orders      orders.Repository
	ledger      ledger.Service
	idempotency redis.IdempotencyStore
	logg        *logger.Logger
	metrics     *metrics.PayoutMetrics
	eventTTL    time.Duration
	now         func() time.Time
}

// NewService builds the webhook reconciler.
func NewService(deps Deps) (Service, error) {
	if deps.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if deps.Ledger == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if deps.Idempotency == nil {
		return nil, fmt.Errorf("idempotency store required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	ttl := deps.EventTTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &service{
		orders:      deps.Orders,
		ledger:      deps.Ledger,
		idempotency: deps.Idempotency,
		logg:        deps.Logger,
		metrics:     deps.Metrics,
		eventTTL:    ttl,
		now:         time.Now,
	}, nil
}

// HandleEvent applies one provider event. Replays and events for references
// this system never issued resolve successfully without writing anything, so
// the provider never retries them.
func (s *service) HandleEvent(ctx context.Context, event Event) (string, error) {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"event":     event.Name,
		"entity_id": event.EntityID,
	})

	if !Handled(event.Name) {
		s.logg.Info(ctx, "webhook event not handled")
		s.metrics.IncWebhook(event.Name, OutcomeIgnored)
		return OutcomeIgnored, nil
	}
	if event.EntityID == "" {
		return "", fmt.Errorf("event %s missing entity id", event.Name)
	}

	key := s.idempotency.IdempotencyKey(idempotencyScope, event.ID)
	fresh, err := s.idempotency.SetNX(ctx, key, s.now().Unix(), s.eventTTL)
	if err != nil {
		return "", fmt.Errorf("webhook replay guard: %w", err)
	}
	if !fresh {
		s.logg.Info(ctx, "webhook event replayed, skipping")
		s.metrics.IncWebhook(event.Name, OutcomeDuplicate)
		return OutcomeDuplicate, nil
	}

	outcome, err := s.reconcile(ctx, event)
	if err != nil {
		// release the guard so the provider's retry can reprocess
		if delErr := s.idempotency.Del(ctx, key); delErr != nil {
			s.logg.Error(ctx, "failed to release webhook replay guard", delErr)
		}
		return "", err
	}
	s.metrics.IncWebhook(event.Name, outcome)
	return outcome, nil
}

func (s *service) reconcile(ctx context.Context, event Event) (string, error) {
	status := enums.PayoutStatusCompleted
	updates := map[string]any{
		"payout_status":       enums.PayoutStatusCompleted,
		"payout_block_reason": nil,
		"payout_date":         s.now(),
	}
	var processedAt *time.Time
	if isFailure(event.Name) {
		status = enums.PayoutStatusFailed
		updates = map[string]any{
			"payout_status": enums.PayoutStatusFailed,
		}
		if event.FailureReason != "" {
			updates["payout_block_reason"] = event.FailureReason
		}
	} else {
		at := s.now()
		processedAt = &at
	}

	won, err := s.ledger.ReconcileTransfer(ctx, event.EntityID, status, processedAt)
	if err != nil {
		return "", fmt.Errorf("reconcile ledger: %w", err)
	}

	affected, err := s.orders.UpdateLineItemsByTransferIDGuarded(ctx, event.EntityID, updates)
	if err != nil {
		return "", fmt.Errorf("reconcile line items: %w", err)
	}

	if !won && affected == 0 {
		if _, err := s.ledger.FindByTransferID(ctx, event.EntityID); err != nil {
			s.logg.Warn(ctx, "webhook references unknown settlement, ignoring")
			return OutcomeUnknown, nil
		}
		// known reference already in the target state
		s.logg.Info(ctx, "webhook event already reconciled")
		return OutcomeProcessed, nil
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"status":         status,
		"items_affected": affected,
		"ledger_updated": won,
	}), "webhook event reconciled")
	return OutcomeProcessed, nil
}
