package use_cases

import (
	"context"
	"strings"

	"hdpay/internal/application/dto"
	portsin "hdpay/internal/application/ports/in"
	portsout "hdpay/internal/application/ports/out"
	apperrors "hdpay/internal/shared_kernel/errors"
)

type getInvoiceUseCase struct {
	ledger portsout.PaymentLedger
}

func NewGetInvoiceUseCase(ledger portsout.PaymentLedger) portsin.GetInvoiceUseCase {
	return &getInvoiceUseCase{ledger: ledger}
}

func (u *getInvoiceUseCase) Execute(
	ctx context.Context,
	query dto.GetInvoiceQuery,
) (dto.InvoiceOutput, *apperrors.AppError) {
	if u.ledger == nil {
		return dto.InvoiceOutput{}, apperrors.NewInternal(
			"payment_ledger_missing",
			"payment ledger is required",
			nil,
		)
	}

	transactionID := strings.TrimSpace(query.TransactionID)
	if transactionID == "" {
		return dto.InvoiceOutput{}, apperrors.NewValidation(
			"invalid_request",
			"transaction_id is required",
			map[string]any{"field": "transaction_id"},
		)
	}

	transaction, found, appErr := u.ledger.GetTransaction(ctx, transactionID)
	if appErr != nil {
		return dto.InvoiceOutput{}, appErr
	}
	if !found {
		return dto.InvoiceOutput{}, invoiceNotFound(transactionID)
	}

	payment, found, appErr := u.ledger.GetPendingPaymentByTransactionID(ctx, transactionID)
	if appErr != nil {
		return dto.InvoiceOutput{}, appErr
	}
	if !found {
		return dto.InvoiceOutput{}, invoiceNotFound(transactionID)
	}

	return toInvoiceOutput(transaction, payment), nil
}
