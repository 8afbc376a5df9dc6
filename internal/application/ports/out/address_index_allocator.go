package out

import (
	"context"

	valueobjects "hdpay/internal/domain/value_objects"
	apperrors "hdpay/internal/shared_kernel/errors"
)

// AddressIndexAllocator hands out derivation indexes. Concurrent callers never
// receive the same index for the same HD coin.
type AddressIndexAllocator interface {
	AllocateNextIndex(ctx context.Context, hdCoin valueobjects.HDCoin) (int64, *apperrors.AppError)
}
