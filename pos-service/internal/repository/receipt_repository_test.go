package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Kaosethi/MerchantApp-sub000/shared/models"
	"github.com/shopspring/decimal"
)

func TestReceiptRepository_Memory(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryReceiptRepository(time.Hour)
	repo.Save(ctx, &models.ReceiptView{
		TransactionID: "tx-1",
		MerchantID:    "M-1",
		BeneficiaryID: "BEN-1",
		Amount:        decimal.RequireFromString("150"),
	})

	tests := []struct {
		name     string
		id       string
		merchant string
		wantErr  error
	}{
		{name: "owner", id: "tx-1", merchant: "M-1"},
		{name: "other merchant", id: "tx-1", merchant: "M-2", wantErr: ErrForbidden},
		{name: "unknown", id: "tx-2", merchant: "M-1", wantErr: ErrReceiptNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := repo.GetByID(ctx, tt.id, tt.merchant)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == nil && view.BeneficiaryID != "BEN-1" {
				t.Fatalf("unexpected receipt %+v", view)
			}
		})
	}
}

func TestReceiptRepository_MemoryExpiry(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryReceipts(time.Minute)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	repo := &ReceiptRepository{cache: cache}

	repo.Save(ctx, &models.ReceiptView{TransactionID: "tx-1", MerchantID: "M-1"})
	now = now.Add(2 * time.Minute)
	if _, err := repo.GetByID(ctx, "tx-1", "M-1"); !errors.Is(err, ErrReceiptNotFound) {
		t.Fatalf("expected expired receipt, got %v", err)
	}
}
