package in

import (
	"context"

	"hdpay/internal/application/dto"
	apperrors "hdpay/internal/shared_kernel/errors"
)

type CancelInvoiceUseCase interface {
	Execute(ctx context.Context, command dto.CancelInvoiceCommand) (dto.CancelInvoiceOutput, *apperrors.AppError)
}
