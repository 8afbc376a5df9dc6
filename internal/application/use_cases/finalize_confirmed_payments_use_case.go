package use_cases

import (
	"context"
	"fmt"
	"log"

	"hdpay/internal/application/dto"
	portsin "hdpay/internal/application/ports/in"
	portsout "hdpay/internal/application/ports/out"
	"hdpay/internal/domain/entities"
	valueobjects "hdpay/internal/domain/value_objects"
	apperrors "hdpay/internal/shared_kernel/errors"
)

type finalizeConfirmedPaymentsUseCase struct {
	ledger  portsout.PaymentLedger
	effects portsout.FinalizationEffectHandler
	clock   Clock
	logger  *log.Logger
}

func NewFinalizeConfirmedPaymentsUseCase(
	ledger portsout.PaymentLedger,
	effects portsout.FinalizationEffectHandler,
	clock Clock,
	logger *log.Logger,
) portsin.FinalizeConfirmedPaymentsUseCase {
	if clock == nil {
		clock = NewSystemClock()
	}
	return &finalizeConfirmedPaymentsUseCase{
		ledger:  ledger,
		effects: effects,
		clock:   clock,
		logger:  logger,
	}
}

func (u *finalizeConfirmedPaymentsUseCase) Execute(
	ctx context.Context,
	command dto.FinalizeConfirmedPaymentsCommand,
) (dto.FinalizeConfirmedPaymentsOutput, *apperrors.AppError) {
	if u.ledger == nil {
		return dto.FinalizeConfirmedPaymentsOutput{}, apperrors.NewInternal(
			"payment_ledger_missing",
			"payment ledger is required",
			nil,
		)
	}
	if u.effects == nil {
		return dto.FinalizeConfirmedPaymentsOutput{}, apperrors.NewInternal(
			"finalization_effect_handler_missing",
			"finalization effect handler is required",
			nil,
		)
	}
	if command.BatchSize <= 0 {
		return dto.FinalizeConfirmedPaymentsOutput{}, apperrors.NewValidation(
			"finalize_batch_size_invalid",
			"finalize batch size must be greater than zero",
			map[string]any{"batch_size": command.BatchSize},
		)
	}

	rows, appErr := u.ledger.ListConfirmedUnprocessed(ctx, command.BatchSize)
	if appErr != nil {
		return dto.FinalizeConfirmedPaymentsOutput{}, appErr
	}

	output := dto.FinalizeConfirmedPaymentsOutput{Scanned: len(rows)}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return output, nil
		}
		if rowErr := u.finalizeOne(ctx, row, &output); rowErr != nil {
			return output, rowErr
		}
	}

	return output, nil
}

func (u *finalizeConfirmedPaymentsUseCase) finalizeOne(
	ctx context.Context,
	payment entities.PendingPayment,
	output *dto.FinalizeConfirmedPaymentsOutput,
) *apperrors.AppError {
	transaction, found, appErr := u.ledger.GetTransaction(ctx, payment.TransactionID)
	if appErr != nil {
		return appErr
	}
	if !found {
		u.logf("finalize tx_missing invoice_id=%s transaction_id=%s", payment.ID, payment.TransactionID)
		return u.moveInvoice(ctx, payment, valueobjects.PendingPaymentStatusErrorTxMissing, &output.MissingTx, &output.Skipped)
	}
	if transaction.Status == valueobjects.TransactionStatusCompleted {
		u.logf("finalize duplicate_signal invoice_id=%s transaction_id=%s", payment.ID, payment.TransactionID)
		return u.moveInvoice(
			ctx,
			payment,
			valueobjects.PendingPaymentStatusProcessedTxAlreadyComplete,
			&output.AlreadyComplete,
			&output.Skipped,
		)
	}

	var handlerErr *apperrors.AppError
	switch transaction.Kind {
	case valueobjects.TransactionKindTopUp:
		if transaction.CreditAmount <= 0 {
			u.logf("finalize data_error invoice_id=%s transaction_id=%s reason=credit_amount_missing", payment.ID, transaction.ID)
			return u.fail(ctx, payment, transaction, dto.FinalizationOutcome{
				TransactionStatus: valueobjects.TransactionStatusFailedDataError.String(),
				PaymentStatus:     valueobjects.PendingPaymentStatusErrorFinalizingData.String(),
				Note:              "Finalization aborted: top-up credit amount is missing.",
			}, &output.DataErrors, &output.Skipped)
		}
		handlerErr = u.effects.FinalizeTopUp(ctx, dto.TopUpEffectInput{
			TransactionID: transaction.ID,
			OwnerID:       transaction.OwnerID,
			AmountCents:   int64(transaction.CreditAmount),
		})
	case valueobjects.TransactionKindPurchase:
		handlerErr = u.effects.FinalizePurchase(ctx, dto.PurchaseEffectInput{
			TransactionID:        transaction.ID,
			OwnerID:              transaction.OwnerID,
			Coin:                 payment.Coin.String(),
			PaidFromBalanceCents: int64(payment.PaidFromBalance),
			ItemDetails:          transaction.ItemDetails,
		})
	default:
		u.logf("finalize unknown_type invoice_id=%s transaction_id=%s kind=%s", payment.ID, transaction.ID, transaction.Kind)
		return u.moveInvoice(ctx, payment, valueobjects.PendingPaymentStatusErrorUnknownType, &output.UnknownType, &output.Skipped)
	}

	if handlerErr != nil {
		u.logf(
			"finalize handler_failed invoice_id=%s transaction_id=%s kind=%s code=%s message=%s",
			payment.ID,
			transaction.ID,
			transaction.Kind,
			handlerErr.Code,
			handlerErr.Message,
		)
		return u.fail(ctx, payment, transaction, dto.FinalizationOutcome{
			TransactionStatus: valueobjects.TransactionStatusFailedFinalizationHandler.String(),
			PaymentStatus:     valueobjects.PendingPaymentStatusErrorFinalizing.String(),
			Note:              fmt.Sprintf("Finalization handler failed: %s.", handlerErr.Code),
		}, &output.HandlerFailed, &output.Skipped)
	}

	spec, _ := payment.Coin.Spec()
	completed, appErr := u.ledger.CompleteFinalization(ctx, dto.FinalizationOutcome{
		PaymentID:         payment.ID,
		TransactionID:     transaction.ID,
		TransactionStatus: valueobjects.TransactionStatusCompleted.String(),
		PaymentStatus:     valueobjects.PendingPaymentStatusProcessed.String(),
		Note: fmt.Sprintf(
			"Crypto payment confirmed. Coin: %s, Blockchain TXID: %s, Received: %s (%d smallest units).",
			payment.Coin,
			payment.BlockchainTxID,
			valueobjects.FormatMinor(payment.ReceivedAmountMinor, spec.Precision),
			payment.ReceivedAmountMinor,
		),
		UpdatedAt: u.clock.NowUTC(),
	})
	if appErr != nil {
		return appErr
	}
	if !completed {
		output.Skipped++
		return nil
	}

	output.Processed++
	u.logf(
		"finalize processed invoice_id=%s transaction_id=%s kind=%s owner_id=%s",
		payment.ID,
		transaction.ID,
		transaction.Kind,
		transaction.OwnerID,
	)
	return nil
}

func (u *finalizeConfirmedPaymentsUseCase) moveInvoice(
	ctx context.Context,
	payment entities.PendingPayment,
	next valueobjects.PendingPaymentStatus,
	counter *int,
	skipped *int,
) *apperrors.AppError {
	moved, appErr := u.ledger.TransitionPendingPaymentStatus(
		ctx,
		payment.ID,
		valueobjects.PendingPaymentStatusConfirmedUnprocessed,
		next,
	)
	if appErr != nil {
		return appErr
	}
	if moved {
		*counter++
	} else {
		*skipped++
	}
	return nil
}

func (u *finalizeConfirmedPaymentsUseCase) fail(
	ctx context.Context,
	payment entities.PendingPayment,
	transaction entities.Transaction,
	outcome dto.FinalizationOutcome,
	counter *int,
	skipped *int,
) *apperrors.AppError {
	outcome.PaymentID = payment.ID
	outcome.TransactionID = transaction.ID
	outcome.UpdatedAt = u.clock.NowUTC()

	failed, appErr := u.ledger.FailFinalization(ctx, outcome)
	if appErr != nil {
		return appErr
	}
	if failed {
		*counter++
	} else {
		*skipped++
	}
	return nil
}

func (u *finalizeConfirmedPaymentsUseCase) logf(format string, args ...any) {
	if u.logger == nil {
		return
	}
	u.logger.Printf(format, args...)
}
