package use_cases

import (
	"context"
	"log"
	"time"

	"hdpay/internal/application/dto"
	portsout "hdpay/internal/application/ports/out"
	"hdpay/internal/domain/entities"
	"hdpay/internal/domain/policies"
	valueobjects "hdpay/internal/domain/value_objects"
	apperrors "hdpay/internal/shared_kernel/errors"
)

// Explorers index by block time, so lookups start a little before the invoice
// was created.
const inboundLookbackSkew = 5 * time.Minute

type paymentEvaluator struct {
	ledger     portsout.PaymentLedger
	chain      portsout.BlockchainQueryGateway
	thresholds ConfirmationThresholds
	logger     *log.Logger
}

type evaluationResult struct {
	decision    policies.PaymentDecision
	applied     bool
	chainErr    *apperrors.AppError
	errorStatus valueobjects.PendingPaymentStatus
}

func (e paymentEvaluator) validate() *apperrors.AppError {
	if e.ledger == nil {
		return apperrors.NewInternal("payment_ledger_missing", "payment ledger is required", nil)
	}
	if e.chain == nil {
		return apperrors.NewInternal(
			"blockchain_query_gateway_missing",
			"blockchain query gateway is required",
			nil,
		)
	}
	return nil
}

// evaluate queries the explorer once for payment and persists whatever the
// evaluation policy decides. Explorer failures are reported in the result; only
// ledger failures come back as an error.
func (e paymentEvaluator) evaluate(
	ctx context.Context,
	payment entities.PendingPayment,
	now time.Time,
) (evaluationResult, *apperrors.AppError) {
	transfers, chainErr := e.chain.InboundTransactions(ctx, dto.InboundTransactionsQuery{
		Coin:    payment.Coin.String(),
		Address: payment.Address,
		Since:   payment.CreatedAt.Add(-inboundLookbackSkew),
	})
	if chainErr != nil {
		return e.handleChainError(ctx, payment, chainErr, now)
	}

	observed := make([]policies.ObservedTransfer, 0, len(transfers))
	for _, transfer := range transfers {
		observed = append(observed, policies.ObservedTransfer{
			TxID:          transfer.TxID,
			AmountMinor:   transfer.AmountMinor,
			Confirmations: transfer.Confirmations,
		})
	}

	decision := policies.EvaluatePayment(policies.PaymentSnapshot{
		Status:              payment.Status,
		ExpectedAmountMinor: payment.ExpectedAmountMinor,
		BlockchainTxID:      payment.BlockchainTxID,
		Confirmations:       payment.Confirmations,
	}, observed, e.thresholds.For(payment.Coin))

	result := evaluationResult{decision: decision}
	if decision.Kind == policies.DecisionUnchanged {
		return result, nil
	}

	applied, appErr := e.ledger.ApplyPaymentDecision(ctx, payment.ID, decision, now)
	if appErr != nil {
		return result, appErr
	}
	result.applied = applied

	switch {
	case !applied:
		e.logf("payment evaluation skipped invoice_id=%s reason=state_changed", payment.ID)
	case decision.Kind == policies.DecisionUnderpaid:
		e.logf(
			"payment underpaid invoice_id=%s tx_id=%s expected_minor=%d received_minor=%d",
			payment.ID,
			decision.TxID,
			payment.ExpectedAmountMinor,
			decision.ReceivedAmountMinor,
		)
	case decision.Kind == policies.DecisionBind || decision.Kind == policies.DecisionUpdateConfirmations:
		e.logf(
			"payment tracked invoice_id=%s tx_id=%s confirmations=%d required=%d status=%s",
			payment.ID,
			decision.TxID,
			decision.Confirmations,
			e.thresholds.For(payment.Coin),
			decision.NextStatus,
		)
	}

	return result, nil
}

func (e paymentEvaluator) handleChainError(
	ctx context.Context,
	payment entities.PendingPayment,
	chainErr *apperrors.AppError,
	now time.Time,
) (evaluationResult, *apperrors.AppError) {
	result := evaluationResult{chainErr: chainErr}
	if portsout.IsTransientChainQueryError(chainErr) {
		e.logf(
			"payment query transient_error invoice_id=%s coin=%s code=%s retry=next_cycle",
			payment.ID,
			payment.Coin,
			chainErr.Code,
		)
		return result, nil
	}

	status := monitoringErrorStatus(chainErr)
	e.logf(
		"payment query persistent_error invoice_id=%s coin=%s code=%s status=%s",
		payment.ID,
		payment.Coin,
		chainErr.Code,
		status,
	)
	marked, appErr := e.ledger.MarkMonitoringError(ctx, payment.ID, status, now)
	if appErr != nil {
		return result, appErr
	}
	if marked {
		result.errorStatus = status
	}
	return result, nil
}

func monitoringErrorStatus(chainErr *apperrors.AppError) valueobjects.PendingPaymentStatus {
	switch chainErr.Code {
	case portsout.ChainQueryErrorInvalidAddress:
		return valueobjects.PendingPaymentStatusErrorInvalidAddress
	case portsout.ChainQueryErrorBadResponse:
		return valueobjects.PendingPaymentStatusErrorBadResponse
	default:
		return valueobjects.PendingPaymentStatusErrorAPIGeneric
	}
}

func (e paymentEvaluator) logf(format string, args ...any) {
	if e.logger == nil {
		return
	}
	e.logger.Printf(format, args...)
}
