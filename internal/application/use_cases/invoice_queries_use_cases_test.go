//go:build !integration

package use_cases

import (
	"context"
	"testing"
	"time"

	"hdpay/internal/application/dto"
	valueobjects "hdpay/internal/domain/value_objects"
	apperrors "hdpay/internal/shared_kernel/errors"
)

func TestGetInvoiceReturnsView(t *testing.T) {
	ledger := newFakeLedger()
	tx, pay := monitoringFixture("a", valueobjects.CoinLTC, 62812500, monitoringNow)
	pay.BlockchainTxID = "chain-a"
	checkedAt := monitoringNow.Add(time.Minute)
	pay.LastCheckedAt = &checkedAt
	ledger.put(tx, &pay)

	output, appErr := NewGetInvoiceUseCase(ledger).Execute(context.Background(), dto.GetInvoiceQuery{TransactionID: "tx_a"})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}
	if output.InvoiceID != "inv_a" || output.ExpectedAmount != "0.62812500" {
		t.Fatalf("unexpected view %+v", output)
	}
	if output.PaymentURI != "litecoin:addr-a?amount=0.62812500" {
		t.Fatalf("unexpected payment uri %s", output.PaymentURI)
	}
	if output.BlockchainTxID == nil || *output.BlockchainTxID != "chain-a" {
		t.Fatalf("expected blockchain tx id, got %v", output.BlockchainTxID)
	}
	if output.LastCheckedAt == nil || !output.LastCheckedAt.Equal(checkedAt) {
		t.Fatalf("expected last checked at, got %v", output.LastCheckedAt)
	}
}

func TestGetInvoiceNotFound(t *testing.T) {
	_, appErr := NewGetInvoiceUseCase(newFakeLedger()).Execute(context.Background(), dto.GetInvoiceQuery{TransactionID: "tx_missing"})
	if appErr == nil || appErr.Type != apperrors.TypeNotFound {
		t.Fatalf("expected not found, got %+v", appErr)
	}
}

func TestCancelInvoice(t *testing.T) {
	for _, status := range []valueobjects.PendingPaymentStatus{
		valueobjects.PendingPaymentStatusMonitoring,
		valueobjects.PendingPaymentStatusUnderpaid,
	} {
		ledger := newFakeLedger()
		tx, pay := monitoringFixture("a", valueobjects.CoinBTC, 1000, monitoringNow)
		pay.Status = status
		ledger.put(tx, &pay)

		useCase := NewCancelInvoiceUseCase(ledger, pinnedClock(monitoringNow), nil)
		output, appErr := useCase.Execute(context.Background(), dto.CancelInvoiceCommand{TransactionID: "tx_a"})
		if appErr != nil {
			t.Fatalf("%s: expected no error, got %+v", status, appErr)
		}
		if output.Status != "user_cancelled" {
			t.Fatalf("%s: expected user_cancelled, got %s", status, output.Status)
		}
		if got := ledger.transaction("tx_a").Status; got != valueobjects.TransactionStatusCancelledByUser {
			t.Fatalf("%s: expected cancelled_by_user, got %s", status, got)
		}
	}
}

func TestCancelInvoiceNotCancellable(t *testing.T) {
	ledger := newFakeLedger()
	tx, pay := monitoringFixture("a", valueobjects.CoinBTC, 1000, monitoringNow)
	pay.Status = valueobjects.PendingPaymentStatusConfirmedUnprocessed
	ledger.put(tx, &pay)

	useCase := NewCancelInvoiceUseCase(ledger, pinnedClock(monitoringNow), nil)
	_, appErr := useCase.Execute(context.Background(), dto.CancelInvoiceCommand{TransactionID: "tx_a"})
	if appErr == nil || appErr.Code != "invoice_not_cancellable" || appErr.Type != apperrors.TypeConflict {
		t.Fatalf("expected invoice_not_cancellable conflict, got %+v", appErr)
	}
	if appErr.Details["status"] != "confirmed_unprocessed" {
		t.Fatalf("expected current status in details, got %+v", appErr.Details)
	}
}
