package controllers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	rzpwebhooks "github.com/ecosaro/marketplace-backend/internal/webhooks/razorpay"
	"github.com/ecosaro/marketplace-backend/pkg/logger"
)

type fakeWebhookService struct {
	events  []rzpwebhooks.Event
	outcome string
}

func (f *fakeWebhookService) HandleEvent(ctx context.Context, event rzpwebhooks.Event) (string, error) {
	f.events = append(f.events, event)
	return f.outcome, nil
}

type fakeSigner struct{ secret string }

func (f fakeSigner) SigningSecret() string { return f.secret }

func sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func webhookBody() []byte {
	return []byte(`{
		"event": "transfer.processed",
		"payload": {"transfer": {"entity": {"id": "trf_1", "status": "processed"}}}
	}`)
}

func TestRazorpayWebhookVerifiedAndDispatched(t *testing.T) {
	svc := &fakeWebhookService{outcome: rzpwebhooks.OutcomeProcessed}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	handler := RazorpayWebhook(svc, fakeSigner{secret: "whsec"}, logg)

	body := webhookBody()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", bytes.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", sign(body, "whsec"))
	req.Header.Set("X-Razorpay-Event-Id", "evt_1")
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.events) != 1 {
		t.Fatalf("expected one dispatched event, got %d", len(svc.events))
	}
	event := svc.events[0]
	if event.ID != "evt_1" || event.Name != rzpwebhooks.EventTransferProcessed || event.EntityID != "trf_1" {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestRazorpayWebhookRejectsBadSignature(t *testing.T) {
	svc := &fakeWebhookService{outcome: rzpwebhooks.OutcomeProcessed}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	handler := RazorpayWebhook(svc, fakeSigner{secret: "whsec"}, logg)

	body := webhookBody()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", bytes.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", sign(body, "wrong-secret"))
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(svc.events) != 0 {
		t.Fatalf("unverified event must not reach the service")
	}
}

func TestRazorpayWebhookRejectsMissingSignature(t *testing.T) {
	svc := &fakeWebhookService{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	handler := RazorpayWebhook(svc, fakeSigner{secret: "whsec"}, logg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", bytes.NewReader(webhookBody()))
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRazorpayWebhookRejectsMalformedBody(t *testing.T) {
	svc := &fakeWebhookService{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	handler := RazorpayWebhook(svc, fakeSigner{secret: "whsec"}, logg)

	body := []byte(`not json`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", bytes.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", sign(body, "whsec"))
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
