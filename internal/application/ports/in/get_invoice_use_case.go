package in

import (
	"context"

	"hdpay/internal/application/dto"
	apperrors "hdpay/internal/shared_kernel/errors"
)

type GetInvoiceUseCase interface {
	Execute(ctx context.Context, query dto.GetInvoiceQuery) (dto.InvoiceOutput, *apperrors.AppError)
}
