package metrics

import "github.com/prometheus/client_golang/prometheus"

// PayoutMetrics tracks settlement outcomes across sweep, manual and webhook paths.
type PayoutMetrics struct {
	settled  *prometheus.CounterVec
	blocked  *prometheus.CounterVec
	failed   *prometheus.CounterVec
	webhooks *prometheus.CounterVec
}

// NewPayoutMetrics registers the payout metrics on the provided registerer.
func NewPayoutMetrics(reg prometheus.Registerer) *PayoutMetrics {
	if reg == nil {
		return &PayoutMetrics{}
	}
	settled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payout_items_settled",
		Help: "Order line items marked COMPLETED.",
	}, []string{"path"})
	blocked := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payout_items_blocked",
		Help: "Order line items moved to BLOCKED, by reason.",
	}, []string{"reason"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payout_items_failed",
		Help: "Order line items moved to FAILED.",
	}, []string{"path"})
	webhooks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payout_webhook_events",
		Help: "Provider webhook events processed, by type and outcome.",
	}, []string{"event", "outcome"})
	reg.MustRegister(settled, blocked, failed, webhooks)
	return &PayoutMetrics{
		settled:  settled,
		blocked:  blocked,
		failed:   failed,
		webhooks: webhooks,
	}
}

// IncSettled records a line item settled on the given path (sweep, manual, webhook).
func (p *PayoutMetrics) IncSettled(path string) {
	if p == nil || p.settled == nil {
		return
	}
	p.settled.WithLabelValues(normalizeLabel(path)).Inc()
}

// IncBlocked records a line item blocked for the given reason.
func (p *PayoutMetrics) IncBlocked(reason string) {
	if p == nil || p.blocked == nil {
		return
	}
	p.blocked.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncFailed records a line item failed on the given path.
func (p *PayoutMetrics) IncFailed(path string) {
	if p == nil || p.failed == nil {
		return
	}
	p.failed.WithLabelValues(normalizeLabel(path)).Inc()
}

// IncWebhook records a processed webhook event with its outcome.
func (p *PayoutMetrics) IncWebhook(event, outcome string) {
	if p == nil || p.webhooks == nil {
		return
	}
	p.webhooks.WithLabelValues(normalizeLabel(event), normalizeLabel(outcome)).Inc()
}
