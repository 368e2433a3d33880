package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecosaro/marketplace-backend/pkg/db/models"
	"github.com/ecosaro/marketplace-backend/pkg/enums"
)

type fakeRepository struct {
	createFn    func(ctx context.Context, entry *models.Payout) error
	markFn      func(ctx context.Context, transferID string, status enums.PayoutStatus, processedAt *time.Time) (int64, error)
	retryCalls  []string
	listVendor  []models.Payout
	listVendErr error
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, entry *models.Payout) error {
	if f.createFn != nil {
		return f.createFn(ctx, entry)
	}
	return nil
}

func (f *fakeRepository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.Payout, error) {
	return nil, nil
}

func (f *fakeRepository) FindByTransferID(ctx context.Context, transferID string) (*models.Payout, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) MarkStatusByTransferID(ctx context.Context, transferID string, status enums.PayoutStatus, processedAt *time.Time) (int64, error) {
	if f.markFn != nil {
		return f.markFn(ctx, transferID, status, processedAt)
	}
	return 0, nil
}

func (f *fakeRepository) IncrementRetryByTransferID(ctx context.Context, transferID string) error {
	f.retryCalls = append(f.retryCalls, transferID)
	return nil
}

func (f *fakeRepository) ListByVendorBetween(ctx context.Context, vendorID uuid.UUID, from, to time.Time) ([]models.Payout, error) {
	return f.listVendor, f.listVendErr
}

func TestService_RecordEntry(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	transferID := "trf_001"
	input := RecordEntryInput{
		OrderID:     uuid.New(),
		VendorID:    uuid.New(),
		Amount:      900,
		PlatformFee: 100,
		Status:      enums.PayoutStatusCompleted,
		TransferID:  &transferID,
	}

	var created *models.Payout
	repo.createFn = func(ctx context.Context, entry *models.Payout) error {
		created = entry
		return nil
	}

	got, err := svc.RecordEntry(context.Background(), input)
	if err != nil {
		t.Fatalf("RecordEntry error: %v", err)
	}
	if created == nil {
		t.Fatal("expected ledger entry to be created")
	}
	if created.OrderID != input.OrderID || created.VendorID != input.VendorID {
		t.Fatalf("unexpected ids on entry: %+v", created)
	}
	if created.Amount != 900 || created.PlatformFee != 100 {
		t.Fatalf("unexpected amounts: %+v", created)
	}
	if created.TransferID == nil || *created.TransferID != transferID {
		t.Fatalf("transfer id not preserved: %+v", created)
	}
	if got != created {
		t.Fatalf("service should return created entry")
	}
}

func TestService_RecordEntryValidation(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	tests := []struct {
		name  string
		input RecordEntryInput
	}{
		{
			name: "missing order id",
			input: RecordEntryInput{
				VendorID: uuid.New(),
				Status:   enums.PayoutStatusPending,
			},
		},
		{
			name: "missing vendor id",
			input: RecordEntryInput{
				OrderID: uuid.New(),
				Status:  enums.PayoutStatusPending,
			},
		},
		{
			name: "negative amount",
			input: RecordEntryInput{
				OrderID:  uuid.New(),
				VendorID: uuid.New(),
				Amount:   -1,
				Status:   enums.PayoutStatusPending,
			},
		},
		{
			name: "invalid status",
			input: RecordEntryInput{
				OrderID:  uuid.New(),
				VendorID: uuid.New(),
				Status:   enums.PayoutStatus("not_real"),
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.RecordEntry(context.Background(), tc.input); err == nil {
				t.Fatalf("expected validation error for %s", tc.name)
			}
		})
	}
}

func TestService_ReconcileTransfer(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	repo.markFn = func(ctx context.Context, transferID string, status enums.PayoutStatus, processedAt *time.Time) (int64, error) {
		return 1, nil
	}

	now := time.Now()
	won, err := svc.ReconcileTransfer(context.Background(), "trf_001", enums.PayoutStatusCompleted, &now)
	if err != nil {
		t.Fatalf("ReconcileTransfer error: %v", err)
	}
	if !won {
		t.Fatalf("expected reconcile to win")
	}
	if len(repo.retryCalls) != 0 {
		t.Fatalf("completed reconcile should not bump retry count")
	}
}

func TestService_ReconcileTransferFailedBumpsRetry(t *testing.T) {
	repo := &fakeRepository{}
	svc, _ := NewService(repo)

	repo.markFn = func(ctx context.Context, transferID string, status enums.PayoutStatus, processedAt *time.Time) (int64, error) {
		return 1, nil
	}

	won, err := svc.ReconcileTransfer(context.Background(), "trf_002", enums.PayoutStatusFailed, nil)
	if err != nil {
		t.Fatalf("ReconcileTransfer error: %v", err)
	}
	if !won {
		t.Fatalf("expected reconcile to win")
	}
	if len(repo.retryCalls) != 1 || repo.retryCalls[0] != "trf_002" {
		t.Fatalf("expected retry bump for trf_002, got %v", repo.retryCalls)
	}
}

func TestService_ReconcileTransferAlreadyCompleted(t *testing.T) {
	repo := &fakeRepository{}
	svc, _ := NewService(repo)

	repo.markFn = func(ctx context.Context, transferID string, status enums.PayoutStatus, processedAt *time.Time) (int64, error) {
		return 0, nil
	}

	won, err := svc.ReconcileTransfer(context.Background(), "trf_003", enums.PayoutStatusFailed, nil)
	if err != nil {
		t.Fatalf("ReconcileTransfer error: %v", err)
	}
	if won {
		t.Fatalf("expected reconcile to lose when entry already completed")
	}
	if len(repo.retryCalls) != 0 {
		t.Fatalf("lost reconcile should not bump retry count")
	}
}

func TestService_RecordEntryRepoError(t *testing.T) {
	repo := &fakeRepository{}
	svc, _ := NewService(repo)

	expectedErr := errors.New("boom")
	repo.createFn = func(ctx context.Context, entry *models.Payout) error {
		return expectedErr
	}

	if _, err := svc.RecordEntry(context.Background(), RecordEntryInput{
		OrderID:  uuid.New(),
		VendorID: uuid.New(),
		Amount:   100,
		Status:   enums.PayoutStatusPending,
	}); !errors.Is(err, expectedErr) {
		t.Fatalf("expected repo error to bubble up, got %v", err)
	}
}

func TestService_ListByVendorBetweenValidatesRange(t *testing.T) {
	repo := &fakeRepository{}
	svc, _ := NewService(repo)

	now := time.Now()
	if _, err := svc.ListByVendorBetween(context.Background(), uuid.New(), now, now); err == nil {
		t.Fatalf("expected range validation error")
	}
	if _, err := svc.ListByVendorBetween(context.Background(), uuid.Nil, now.Add(-time.Hour), now); err == nil {
		t.Fatalf("expected vendor validation error")
	}
}
