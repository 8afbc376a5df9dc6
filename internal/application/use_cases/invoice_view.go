package use_cases

import (
	"hdpay/internal/application/dto"
	"hdpay/internal/domain/entities"
	valueobjects "hdpay/internal/domain/value_objects"
	apperrors "hdpay/internal/shared_kernel/errors"
)

func toInvoiceOutput(transaction entities.Transaction, payment entities.PendingPayment) dto.InvoiceOutput {
	spec, _ := payment.Coin.Spec()
	expected := valueobjects.FormatMinor(payment.ExpectedAmountMinor, spec.Precision)

	output := dto.InvoiceOutput{
		TransactionID:       transaction.ID,
		InvoiceID:           payment.ID,
		OwnerID:             payment.OwnerID,
		Kind:                transaction.Kind.String(),
		Coin:                payment.Coin.String(),
		Network:             payment.Network,
		Address:             payment.Address,
		ExpectedAmountMinor: payment.ExpectedAmountMinor,
		ExpectedAmount:      expected,
		ReceivedAmountMinor: payment.ReceivedAmountMinor,
		FiatAmountDue:       transaction.FiatDue.String(),
		PrepaidFromBalance:  payment.PaidFromBalance.String(),
		PaymentURI:          spec.PaymentURI(payment.Address, expected),
		Status:              payment.Status.String(),
		TransactionStatus:   transaction.Status.String(),
		Confirmations:       payment.Confirmations,
		CreatedAt:           payment.CreatedAt,
		ExpiresAt:           payment.ExpiresAt,
	}
	if payment.BlockchainTxID != "" {
		txID := payment.BlockchainTxID
		output.BlockchainTxID = &txID
	}
	if payment.LastCheckedAt != nil {
		checkedAt := payment.LastCheckedAt.UTC()
		output.LastCheckedAt = &checkedAt
	}

	return output
}

func invoiceNotFound(transactionID string) *apperrors.AppError {
	return apperrors.NewNotFound(
		"invoice_not_found",
		"invoice not found",
		map[string]any{"transaction_id": transactionID},
	)
}
