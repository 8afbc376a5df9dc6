package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"hdpay/internal/application/dto"
	portsin "hdpay/internal/application/ports/in"
	apperrors "hdpay/internal/shared_kernel/errors"
)

const (
	PaymentCheckWorkerName = "payment-check"
	FinalizeWorkerName     = "finalize-confirmed"
	ExpireWorkerName       = "expire-stale"
)

func PaymentCheckCycle(useCase portsin.SweepMonitoringPaymentsUseCase, batchSize int, callDelay time.Duration) Cycle {
	return func(ctx context.Context, now time.Time) (string, *apperrors.AppError) {
		output, appErr := useCase.Execute(ctx, dto.SweepMonitoringPaymentsCommand{
			Now:       now,
			BatchSize: batchSize,
			CallDelay: callDelay,
		})
		if appErr != nil {
			return "", appErr
		}
		return fmt.Sprintf(
			"scanned=%d bound=%d confirmed=%d underpaid=%d touched=%d transient_errors=%d monitoring_errors=%d skipped=%d",
			output.Scanned,
			output.Bound,
			output.Confirmed,
			output.Underpaid,
			output.Touched,
			output.TransientErrors,
			output.MonitoringError,
			output.Skipped,
		), nil
	}
}

func FinalizeCycle(useCase portsin.FinalizeConfirmedPaymentsUseCase, batchSize int) Cycle {
	return func(ctx context.Context, _ time.Time) (string, *apperrors.AppError) {
		output, appErr := useCase.Execute(ctx, dto.FinalizeConfirmedPaymentsCommand{BatchSize: batchSize})
		if appErr != nil {
			return "", appErr
		}
		return fmt.Sprintf(
			"scanned=%d processed=%d already_complete=%d handler_failed=%d data_errors=%d unknown_type=%d missing_tx=%d skipped=%d",
			output.Scanned,
			output.Processed,
			output.AlreadyComplete,
			output.HandlerFailed,
			output.DataErrors,
			output.UnknownType,
			output.MissingTx,
			output.Skipped,
		), nil
	}
}

func ExpireCycle(useCase portsin.ExpireStalePaymentsUseCase, batchSize int) Cycle {
	return func(ctx context.Context, now time.Time) (string, *apperrors.AppError) {
		output, appErr := useCase.Execute(ctx, dto.ExpireStalePaymentsCommand{
			Now:       now,
			BatchSize: batchSize,
		})
		if appErr != nil {
			return "", appErr
		}
		return fmt.Sprintf(
			"scanned=%d expired_notfound=%d expired_unconfirmed=%d skipped=%d errors=%d",
			output.Scanned,
			output.ExpiredNotFound,
			output.ExpiredUnconfirmed,
			output.Skipped,
			output.Errors,
		), nil
	}
}

// Group starts every enabled worker and waits until all of them stop.
func Group(ctx context.Context, workers []*Worker, logger *log.Logger) {
	var wg sync.WaitGroup
	for _, worker := range workers {
		if !worker.Enabled() {
			if logger != nil && worker != nil {
				logger.Printf("worker disabled name=%s", worker.Name())
			}
			continue
		}
		wg.Add(1)
		go func(w *Worker) {
			defer wg.Done()
			w.Start(ctx)
		}(worker)
	}
	wg.Wait()
}
