//go:build !integration

package ledger

import (
	"context"
	"sync"
	"testing"

	"hdpay/internal/adapters/outbound/persistence/shared"
	"hdpay/internal/application/dto"
	apperrors "hdpay/internal/shared_kernel/errors"
)

type fakeFulfillment struct {
	mu       sync.Mutex
	releases []dto.ReleaseItemInput
	err      *apperrors.AppError
}

func (f *fakeFulfillment) ReleaseItem(_ context.Context, input dto.ReleaseItemInput) *apperrors.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.releases = append(f.releases, input)
	return nil
}

func TestFinalizeTopUpCreditsOnce(t *testing.T) {
	db := newTestDB(t)
	repository := NewRepository(db, shared.DialectSQLite, nil)
	handler := NewBalanceEffectHandler(db, shared.DialectSQLite, &fakeFulfillment{}, nil)
	ctx := context.Background()

	input := dto.TopUpEffectInput{TransactionID: "tx_1", OwnerID: "owner-1", AmountCents: 5000}
	for i := 0; i < 2; i++ {
		if appErr := handler.FinalizeTopUp(ctx, input); appErr != nil {
			t.Fatalf("expected top-up success, got %+v", appErr)
		}
	}

	balance, appErr := repository.GetOwnerBalance(ctx, "owner-1")
	if appErr != nil || balance != 5000 {
		t.Fatalf("expected balance 5000 after replay, got %d err=%+v", balance, appErr)
	}

	var count int
	if err := db.QueryRow(`SELECT transaction_count FROM users WHERE id = 'owner-1'`).Scan(&count); err != nil || count != 1 {
		t.Fatalf("expected one counted transaction, got %d err=%v", count, err)
	}

	if appErr := handler.FinalizeTopUp(ctx, dto.TopUpEffectInput{TransactionID: "tx_2", OwnerID: "owner-1"}); appErr == nil {
		t.Fatalf("expected zero top-up to be rejected")
	}
}

func TestFinalizePurchaseReleasesThenDebits(t *testing.T) {
	db := newTestDB(t)
	repository := NewRepository(db, shared.DialectSQLite, nil)
	fulfillment := &fakeFulfillment{}
	handler := NewBalanceEffectHandler(db, shared.DialectSQLite, fulfillment, nil)
	ctx := context.Background()

	if appErr := handler.FinalizeTopUp(ctx, dto.TopUpEffectInput{TransactionID: "tx_top", OwnerID: "owner-1", AmountCents: 1500}); appErr != nil {
		t.Fatalf("expected top-up success, got %+v", appErr)
	}

	purchase := dto.PurchaseEffectInput{
		TransactionID:        "tx_buy",
		OwnerID:              "owner-1",
		Coin:                 "BTC",
		PaidFromBalanceCents: 1000,
		ItemDetails:          map[string]any{"sku": "item-7"},
	}
	for i := 0; i < 2; i++ {
		if appErr := handler.FinalizePurchase(ctx, purchase); appErr != nil {
			t.Fatalf("expected purchase success, got %+v", appErr)
		}
	}

	balance, _ := repository.GetOwnerBalance(ctx, "owner-1")
	if balance != 500 {
		t.Fatalf("expected single debit leaving 500, got %d", balance)
	}
	if len(fulfillment.releases) != 2 || fulfillment.releases[0].ItemDetails["sku"] != "item-7" {
		t.Fatalf("expected release forwarded on every attempt, got %+v", fulfillment.releases)
	}
	if fulfillment.releases[0].Coin != "BTC" {
		t.Fatalf("expected coin forwarded, got %q", fulfillment.releases[0].Coin)
	}
}

func TestFinalizePurchaseFailures(t *testing.T) {
	db := newTestDB(t)
	fulfillment := &fakeFulfillment{err: apperrors.NewUnavailable("fulfillment_unavailable", "down", nil)}
	handler := NewBalanceEffectHandler(db, shared.DialectSQLite, fulfillment, nil)
	ctx := context.Background()

	appErr := handler.FinalizePurchase(ctx, dto.PurchaseEffectInput{TransactionID: "tx_buy", OwnerID: "owner-1"})
	if appErr == nil || appErr.Code != "fulfillment_unavailable" {
		t.Fatalf("expected fulfillment error, got %+v", appErr)
	}

	var entries int
	if err := db.QueryRow(`SELECT COUNT(*) FROM balance_entries`).Scan(&entries); err != nil || entries != 0 {
		t.Fatalf("expected no balance entry after failed release, got %d err=%v", entries, err)
	}

	fulfillment.err = nil
	appErr = handler.FinalizePurchase(ctx, dto.PurchaseEffectInput{TransactionID: "tx_buy", OwnerID: "owner-1", PaidFromBalanceCents: 100})
	if appErr == nil || appErr.Code != "insufficient_balance" {
		t.Fatalf("expected insufficient_balance, got %+v", appErr)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM balance_entries`).Scan(&entries); err != nil || entries != 0 {
		t.Fatalf("expected debit claim rolled back, got %d err=%v", entries, err)
	}

	appErr = handler.FinalizePurchase(ctx, dto.PurchaseEffectInput{TransactionID: "tx_free", OwnerID: "owner-2"})
	if appErr != nil {
		t.Fatalf("expected purchase without pre-payment to succeed, got %+v", appErr)
	}
}
