package in

import (
	"context"

	"hdpay/internal/application/dto"
	apperrors "hdpay/internal/shared_kernel/errors"
)

type CheckInvoiceUseCase interface {
	Execute(ctx context.Context, command dto.CheckInvoiceCommand) (dto.CheckInvoiceOutput, *apperrors.AppError)
}
