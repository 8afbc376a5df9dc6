package use_cases

import (
	"context"
	"log"
	"strings"

	"hdpay/internal/application/dto"
	portsin "hdpay/internal/application/ports/in"
	portsout "hdpay/internal/application/ports/out"
	"hdpay/internal/domain/policies"
	valueobjects "hdpay/internal/domain/value_objects"
	apperrors "hdpay/internal/shared_kernel/errors"
)

const (
	CheckStatusMonitoringUpdated = "monitoring_updated"
	CheckStatusErrorAPI          = "error_api"

	checkErrorAPIMessage = "could not reach the blockchain provider, try again shortly"
)

type checkInvoiceUseCase struct {
	evaluator paymentEvaluator
	clock     Clock
}

func NewCheckInvoiceUseCase(
	ledger portsout.PaymentLedger,
	chain portsout.BlockchainQueryGateway,
	thresholds ConfirmationThresholds,
	clock Clock,
	logger *log.Logger,
) portsin.CheckInvoiceUseCase {
	if clock == nil {
		clock = NewSystemClock()
	}
	return &checkInvoiceUseCase{
		evaluator: paymentEvaluator{
			ledger:     ledger,
			chain:      chain,
			thresholds: thresholds,
			logger:     logger,
		},
		clock: clock,
	}
}

func (u *checkInvoiceUseCase) Execute(
	ctx context.Context,
	command dto.CheckInvoiceCommand,
) (dto.CheckInvoiceOutput, *apperrors.AppError) {
	if appErr := u.evaluator.validate(); appErr != nil {
		return dto.CheckInvoiceOutput{}, appErr
	}

	transactionID := strings.TrimSpace(command.TransactionID)
	if transactionID == "" {
		return dto.CheckInvoiceOutput{}, apperrors.NewValidation(
			"invalid_request",
			"transaction_id is required",
			map[string]any{"field": "transaction_id"},
		)
	}
	output := dto.CheckInvoiceOutput{TransactionID: transactionID}
	ledger := u.evaluator.ledger

	payment, found, appErr := ledger.GetPendingPaymentByTransactionID(ctx, transactionID)
	if appErr != nil {
		return dto.CheckInvoiceOutput{}, appErr
	}
	if !found {
		transaction, txFound, txErr := ledger.GetTransaction(ctx, transactionID)
		if txErr != nil {
			return dto.CheckInvoiceOutput{}, txErr
		}
		if !txFound {
			return dto.CheckInvoiceOutput{}, invoiceNotFound(transactionID)
		}
		output.Status = transaction.Status.String()
		return output, nil
	}

	if payment.Status != valueobjects.PendingPaymentStatusMonitoring {
		output.Status = payment.Status.String()
		return output, nil
	}

	now := u.clock.NowUTC()
	if payment.ExpiredAt(now) {
		result, expireErr := ledger.ExpirePendingPayment(ctx, payment.ID, now)
		if expireErr != nil {
			return dto.CheckInvoiceOutput{}, expireErr
		}
		if !result.Expired {
			return u.currentStatus(ctx, output, payment.Status)
		}
		output.Status = valueobjects.PendingPaymentStatusExpired.String()
		return output, nil
	}

	result, evalErr := u.evaluator.evaluate(ctx, payment, now)
	if evalErr != nil {
		return dto.CheckInvoiceOutput{}, evalErr
	}
	if result.chainErr != nil {
		output.Status = CheckStatusErrorAPI
		output.Message = checkErrorAPIMessage
		return output, nil
	}
	if !result.applied {
		return u.currentStatus(ctx, output, payment.Status)
	}

	decision := result.decision
	switch {
	case decision.NewlyConfirmed:
		output.NewlyConfirmed = true
		output.Status = valueobjects.PendingPaymentStatusConfirmedUnprocessed.String()
	case decision.Kind == policies.DecisionUnderpaid:
		output.Status = valueobjects.PendingPaymentStatusUnderpaid.String()
	case decision.Kind == policies.DecisionBind || decision.Kind == policies.DecisionUpdateConfirmations:
		output.Status = CheckStatusMonitoringUpdated
	default:
		output.Status = valueobjects.PendingPaymentStatusMonitoring.String()
	}

	return output, nil
}

// currentStatus reports whatever a concurrent writer left behind after this
// check lost a conditional update.
func (u *checkInvoiceUseCase) currentStatus(
	ctx context.Context,
	output dto.CheckInvoiceOutput,
	fallback valueobjects.PendingPaymentStatus,
) (dto.CheckInvoiceOutput, *apperrors.AppError) {
	current, found, appErr := u.evaluator.ledger.GetPendingPaymentByTransactionID(ctx, output.TransactionID)
	if appErr != nil {
		return dto.CheckInvoiceOutput{}, appErr
	}
	output.Status = fallback.String()
	if found {
		output.Status = current.Status.String()
	}
	return output, nil
}
