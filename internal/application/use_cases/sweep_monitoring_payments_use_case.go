package use_cases

import (
	"context"
	"log"
	"time"

	"hdpay/internal/application/dto"
	portsin "hdpay/internal/application/ports/in"
	portsout "hdpay/internal/application/ports/out"
	"hdpay/internal/domain/policies"
	apperrors "hdpay/internal/shared_kernel/errors"
)

type sweepMonitoringPaymentsUseCase struct {
	evaluator paymentEvaluator
	clock     Clock
}

func NewSweepMonitoringPaymentsUseCase(
	ledger portsout.PaymentLedger,
	chain portsout.BlockchainQueryGateway,
	thresholds ConfirmationThresholds,
	clock Clock,
	logger *log.Logger,
) portsin.SweepMonitoringPaymentsUseCase {
	if clock == nil {
		clock = NewSystemClock()
	}
	return &sweepMonitoringPaymentsUseCase{
		evaluator: paymentEvaluator{
			ledger:     ledger,
			chain:      chain,
			thresholds: thresholds,
			logger:     logger,
		},
		clock: clock,
	}
}

func (u *sweepMonitoringPaymentsUseCase) Execute(
	ctx context.Context,
	command dto.SweepMonitoringPaymentsCommand,
) (dto.SweepMonitoringPaymentsOutput, *apperrors.AppError) {
	if appErr := u.evaluator.validate(); appErr != nil {
		return dto.SweepMonitoringPaymentsOutput{}, appErr
	}
	if command.BatchSize <= 0 {
		return dto.SweepMonitoringPaymentsOutput{}, apperrors.NewValidation(
			"sweep_batch_size_invalid",
			"sweep batch size must be greater than zero",
			map[string]any{"batch_size": command.BatchSize},
		)
	}

	startedAt := u.clock.NowUTC()
	now := startedAt
	if !command.Now.IsZero() {
		now = command.Now.UTC()
	}

	rows, appErr := u.evaluator.ledger.ListMonitoringDue(ctx, now, command.BatchSize)
	if appErr != nil {
		return dto.SweepMonitoringPaymentsOutput{}, appErr
	}

	output := dto.SweepMonitoringPaymentsOutput{}
	for i, row := range rows {
		if i > 0 && command.CallDelay > 0 {
			if err := waitDelay(ctx, command.CallDelay); err != nil {
				return output, nil
			}
		}
		output.Scanned++

		// The batch spans one call delay per row; stamp each row with the
		// time it is actually checked.
		checkedAt := now.Add(u.clock.NowUTC().Sub(startedAt))
		if row.ExpiredAt(checkedAt) {
			output.Skipped++
			u.evaluator.logf("payment sweep skipped invoice_id=%s reason=expired_during_sweep", row.ID)
			continue
		}

		result, evalErr := u.evaluator.evaluate(ctx, row, checkedAt)
		if evalErr != nil {
			return output, evalErr
		}

		switch {
		case result.chainErr != nil && result.errorStatus != "":
			output.MonitoringError++
		case result.chainErr != nil && portsout.IsTransientChainQueryError(result.chainErr):
			output.TransientErrors++
		case result.chainErr != nil, !result.applied:
			output.Skipped++
		case result.decision.Kind == policies.DecisionBind:
			output.Bound++
			if result.decision.NewlyConfirmed {
				output.Confirmed++
			}
		case result.decision.Kind == policies.DecisionUnderpaid:
			output.Underpaid++
		case result.decision.NewlyConfirmed:
			output.Confirmed++
		default:
			output.Touched++
		}
	}

	return output, nil
}

func waitDelay(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
