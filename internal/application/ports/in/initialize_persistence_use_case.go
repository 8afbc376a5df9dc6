package in

import (
	"context"

	"hdpay/internal/application/dto"
	apperrors "hdpay/internal/shared_kernel/errors"
)

// InitializePersistenceUseCase prepares the ledger schema and the per-coin
// address counters. It is safe to run on every start.
type InitializePersistenceUseCase interface {
	Execute(ctx context.Context, command dto.InitializePersistenceCommand) (dto.InitializePersistenceOutput, *apperrors.AppError)
}
