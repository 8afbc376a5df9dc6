package in

import (
	"context"

	"hdpay/internal/application/dto"
	apperrors "hdpay/internal/shared_kernel/errors"
)

type ExpireStalePaymentsUseCase interface {
	Execute(
		ctx context.Context,
		command dto.ExpireStalePaymentsCommand,
	) (dto.ExpireStalePaymentsOutput, *apperrors.AppError)
}
