package use_cases

import (
	"context"
	"log"
	"strings"

	"hdpay/internal/application/dto"
	portsin "hdpay/internal/application/ports/in"
	portsout "hdpay/internal/application/ports/out"
	valueobjects "hdpay/internal/domain/value_objects"
	apperrors "hdpay/internal/shared_kernel/errors"
)

type cancelInvoiceUseCase struct {
	ledger portsout.PaymentLedger
	clock  Clock
	logger *log.Logger
}

func NewCancelInvoiceUseCase(
	ledger portsout.PaymentLedger,
	clock Clock,
	logger *log.Logger,
) portsin.CancelInvoiceUseCase {
	if clock == nil {
		clock = NewSystemClock()
	}
	return &cancelInvoiceUseCase{ledger: ledger, clock: clock, logger: logger}
}

func (u *cancelInvoiceUseCase) Execute(
	ctx context.Context,
	command dto.CancelInvoiceCommand,
) (dto.CancelInvoiceOutput, *apperrors.AppError) {
	if u.ledger == nil {
		return dto.CancelInvoiceOutput{}, apperrors.NewInternal(
			"payment_ledger_missing",
			"payment ledger is required",
			nil,
		)
	}

	transactionID := strings.TrimSpace(command.TransactionID)
	if transactionID == "" {
		return dto.CancelInvoiceOutput{}, apperrors.NewValidation(
			"invalid_request",
			"transaction_id is required",
			map[string]any{"field": "transaction_id"},
		)
	}

	payment, found, appErr := u.ledger.GetPendingPaymentByTransactionID(ctx, transactionID)
	if appErr != nil {
		return dto.CancelInvoiceOutput{}, appErr
	}
	if !found {
		return dto.CancelInvoiceOutput{}, invoiceNotFound(transactionID)
	}
	if !payment.Status.Cancellable() {
		return dto.CancelInvoiceOutput{}, notCancellable(transactionID, payment.Status)
	}

	cancelled, appErr := u.ledger.CancelPendingPayment(ctx, payment.ID, u.clock.NowUTC())
	if appErr != nil {
		return dto.CancelInvoiceOutput{}, appErr
	}
	if !cancelled {
		current, found, appErr := u.ledger.GetPendingPaymentByTransactionID(ctx, transactionID)
		if appErr != nil {
			return dto.CancelInvoiceOutput{}, appErr
		}
		status := payment.Status
		if found {
			status = current.Status
		}
		return dto.CancelInvoiceOutput{}, notCancellable(transactionID, status)
	}

	if u.logger != nil {
		u.logger.Printf(
			"invoice cancelled invoice_id=%s transaction_id=%s owner_id=%s previous_status=%s",
			payment.ID,
			transactionID,
			payment.OwnerID,
			payment.Status,
		)
	}

	return dto.CancelInvoiceOutput{
		TransactionID: transactionID,
		Status:        valueobjects.PendingPaymentStatusUserCancelled.String(),
	}, nil
}

func notCancellable(transactionID string, status valueobjects.PendingPaymentStatus) *apperrors.AppError {
	return apperrors.NewConflict(
		"invoice_not_cancellable",
		"invoice can no longer be cancelled",
		map[string]any{
			"transaction_id": transactionID,
			"status":         status.String(),
		},
	)
}
