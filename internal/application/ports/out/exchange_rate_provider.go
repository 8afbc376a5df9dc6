package out

import (
	"context"

	valueobjects "hdpay/internal/domain/value_objects"
	apperrors "hdpay/internal/shared_kernel/errors"

	"github.com/shopspring/decimal"
)

const (
	ExchangeRateErrorUnavailable     = "exchange_rate_unavailable"
	ExchangeRateErrorBadResponse     = "exchange_rate_bad_response"
	ExchangeRateErrorUnsupportedPair = "exchange_rate_unsupported_pair"
)

// ExchangeRateProvider returns the price of one unit of coin in fiat.
type ExchangeRateProvider interface {
	Rate(ctx context.Context, fiat string, coin valueobjects.Coin) (decimal.Decimal, *apperrors.AppError)
}
