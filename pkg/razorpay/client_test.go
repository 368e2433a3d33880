package razorpay

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	rzperrors "github.com/razorpay/razorpay-go/errors"

	pkgerrors "github.com/ecosaro/marketplace-backend/pkg/errors"
	"github.com/ecosaro/marketplace-backend/pkg/logger"
)

func newTestClient(transfers, accounts resource) *Client {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return &Client{
		transfers:     transfers,
		accounts:      accounts,
		webhookSecret: "whsec",
		callTimeout:   time.Second,
		logger:        logg,
	}
}

type fakeResource struct {
	lastData map[string]interface{}
	resp     map[string]interface{}
	err      error
	delay    time.Duration
}

func (f *fakeResource) Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error) {
	f.lastData = data
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.resp, f.err
}

func TestCreateTransferSuccess(t *testing.T) {
	fake := &fakeResource{resp: map[string]interface{}{
		"id":       "trf_001",
		"status":   "processed",
		"amount":   float64(90000),
		"currency": "INR",
	}}
	client := newTestClient(fake, nil)

	transfer, err := client.CreateTransfer(context.Background(), TransferCreateParams{
		AccountID:   "acc_123",
		AmountPaise: 90000,
		Notes:       map[string]string{"order_id": "ord_1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transfer.ID != "trf_001" {
		t.Fatalf("expected transfer id trf_001, got %q", transfer.ID)
	}
	if transfer.AmountPaise != 90000 {
		t.Fatalf("expected amount 90000, got %d", transfer.AmountPaise)
	}
	if fake.lastData["account"] != "acc_123" {
		t.Fatalf("expected account in request, got %v", fake.lastData["account"])
	}
	if fake.lastData["currency"] != "INR" {
		t.Fatalf("expected INR default currency, got %v", fake.lastData["currency"])
	}
}

func TestCreateTransferValidation(t *testing.T) {
	client := newTestClient(&fakeResource{}, nil)

	_, err := client.CreateTransfer(context.Background(), TransferCreateParams{AmountPaise: 100})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = client.CreateTransfer(context.Background(), TransferCreateParams{AccountID: "acc_123"})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateTransferMapsBadRequest(t *testing.T) {
	fake := &fakeResource{err: &rzperrors.BadRequestError{Message: "invalid account"}}
	client := newTestClient(fake, nil)

	_, err := client.CreateTransfer(context.Background(), TransferCreateParams{
		AccountID:   "acc_123",
		AmountPaise: 100,
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateTransferMissingID(t *testing.T) {
	fake := &fakeResource{resp: map[string]interface{}{"status": "created"}}
	client := newTestClient(fake, nil)

	_, err := client.CreateTransfer(context.Background(), TransferCreateParams{
		AccountID:   "acc_123",
		AmountPaise: 100,
	})
	assertCode(t, err, pkgerrors.CodeDependency)
}

func TestCreateTransferTimeout(t *testing.T) {
	fake := &fakeResource{
		resp:  map[string]interface{}{"id": "trf_late"},
		delay: 100 * time.Millisecond,
	}
	client := newTestClient(fake, nil)
	client.callTimeout = 10 * time.Millisecond

	_, err := client.CreateTransfer(context.Background(), TransferCreateParams{
		AccountID:   "acc_123",
		AmountPaise: 100,
	})
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestCreateLinkedAccountSuccess(t *testing.T) {
	fake := &fakeResource{resp: map[string]interface{}{"id": "acc_new"}}
	client := newTestClient(nil, fake)

	accountID, err := client.CreateLinkedAccount(context.Background(), LinkedAccountParams{
		ReferenceID:     "vendor-1",
		BusinessName:    "Acme Foods",
		Email:           "acme@example.com",
		AccountNumber:   "000111222333",
		IFSCCode:        "HDFC0001234",
		BeneficiaryName: "Acme Foods Pvt Ltd",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if accountID != "acc_new" {
		t.Fatalf("expected acc_new, got %q", accountID)
	}

	bank, ok := fake.lastData["bank_account"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected bank_account block in request")
	}
	if bank["ifsc_code"] != "HDFC0001234" {
		t.Fatalf("expected ifsc in request, got %v", bank["ifsc_code"])
	}
}

func TestCreateLinkedAccountValidation(t *testing.T) {
	client := newTestClient(nil, &fakeResource{})

	_, err := client.CreateLinkedAccount(context.Background(), LinkedAccountParams{
		BusinessName: "Acme Foods",
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func assertCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s", want)
	}
	domainErr := pkgerrors.As(err)
	if domainErr == nil {
		t.Fatalf("expected domain error, got %v", err)
	}
	if domainErr.Code() != want {
		t.Fatalf("expected code %s, got %s", want, domainErr.Code())
	}
}
