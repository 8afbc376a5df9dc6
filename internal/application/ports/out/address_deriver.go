package out

import (
	valueobjects "hdpay/internal/domain/value_objects"
	apperrors "hdpay/internal/shared_kernel/errors"
)

type AddressDeriver interface {
	DeriveAddress(coin valueobjects.Coin, index int64) (string, *apperrors.AppError)
}
