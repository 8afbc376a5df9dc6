package in

import (
	"context"

	"hdpay/internal/application/dto"
	apperrors "hdpay/internal/shared_kernel/errors"
)

type SweepMonitoringPaymentsUseCase interface {
	Execute(
		ctx context.Context,
		command dto.SweepMonitoringPaymentsCommand,
	) (dto.SweepMonitoringPaymentsOutput, *apperrors.AppError)
}
