package in

import (
	"context"

	"hdpay/internal/application/dto"
	apperrors "hdpay/internal/shared_kernel/errors"
)

type FinalizeConfirmedPaymentsUseCase interface {
	Execute(
		ctx context.Context,
		command dto.FinalizeConfirmedPaymentsCommand,
	) (dto.FinalizeConfirmedPaymentsOutput, *apperrors.AppError)
}
