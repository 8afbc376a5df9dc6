package use_cases

import (
	"context"
	"log"

	"hdpay/internal/application/dto"
	portsin "hdpay/internal/application/ports/in"
	portsout "hdpay/internal/application/ports/out"
	valueobjects "hdpay/internal/domain/value_objects"
	apperrors "hdpay/internal/shared_kernel/errors"
)

type expireStalePaymentsUseCase struct {
	ledger portsout.PaymentLedger
	clock  Clock
	logger *log.Logger
}

func NewExpireStalePaymentsUseCase(
	ledger portsout.PaymentLedger,
	clock Clock,
	logger *log.Logger,
) portsin.ExpireStalePaymentsUseCase {
	if clock == nil {
		clock = NewSystemClock()
	}
	return &expireStalePaymentsUseCase{ledger: ledger, clock: clock, logger: logger}
}

func (u *expireStalePaymentsUseCase) Execute(
	ctx context.Context,
	command dto.ExpireStalePaymentsCommand,
) (dto.ExpireStalePaymentsOutput, *apperrors.AppError) {
	if u.ledger == nil {
		return dto.ExpireStalePaymentsOutput{}, apperrors.NewInternal(
			"payment_ledger_missing",
			"payment ledger is required",
			nil,
		)
	}
	if command.BatchSize <= 0 {
		return dto.ExpireStalePaymentsOutput{}, apperrors.NewValidation(
			"expire_batch_size_invalid",
			"expire batch size must be greater than zero",
			map[string]any{"batch_size": command.BatchSize},
		)
	}

	now := command.Now.UTC()
	if command.Now.IsZero() {
		now = u.clock.NowUTC()
	}

	rows, appErr := u.ledger.ListExpiredMonitoring(ctx, now, command.BatchSize)
	if appErr != nil {
		return dto.ExpireStalePaymentsOutput{}, appErr
	}

	output := dto.ExpireStalePaymentsOutput{Scanned: len(rows)}
	for _, row := range rows {
		result, expireErr := u.ledger.ExpirePendingPayment(ctx, row.ID, now)
		if expireErr != nil {
			output.Errors++
			u.logf("payment expiry error invoice_id=%s code=%s message=%s", row.ID, expireErr.Code, expireErr.Message)
			continue
		}
		if !result.Expired {
			output.Skipped++
			continue
		}

		if result.TransactionStatus == valueobjects.TransactionStatusFailedExpiredUnconfirmed.String() {
			output.ExpiredUnconfirmed++
		} else {
			output.ExpiredNotFound++
		}
		u.logf(
			"payment expired invoice_id=%s transaction_id=%s address=%s transaction_status=%s",
			row.ID,
			row.TransactionID,
			row.Address,
			result.TransactionStatus,
		)
	}

	return output, nil
}

func (u *expireStalePaymentsUseCase) logf(format string, args ...any) {
	if u.logger == nil {
		return
	}
	u.logger.Printf(format, args...)
}
