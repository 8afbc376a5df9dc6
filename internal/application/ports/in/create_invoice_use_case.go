package in

import (
	"context"

	"hdpay/internal/application/dto"
	apperrors "hdpay/internal/shared_kernel/errors"
)

type CreateInvoiceUseCase interface {
	Execute(ctx context.Context, command dto.CreateInvoiceCommand) (dto.InvoiceOutput, *apperrors.AppError)
}
