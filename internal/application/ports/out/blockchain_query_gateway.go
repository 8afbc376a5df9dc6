package out

import (
	"context"

	"hdpay/internal/application/dto"
	apperrors "hdpay/internal/shared_kernel/errors"
)

// Error codes raised by block explorer adapters. Timeout, unavailable and
// rate limited are transient; the rest halt monitoring of the affected row.
const (
	ChainQueryErrorTimeout         = "chain_query_timeout"
	ChainQueryErrorUnavailable     = "chain_query_unavailable"
	ChainQueryErrorRateLimited     = "chain_query_rate_limited"
	ChainQueryErrorInvalidAddress  = "chain_query_invalid_address"
	ChainQueryErrorBadResponse     = "chain_query_bad_response"
	ChainQueryErrorFailed          = "chain_query_failed"
	ChainQueryErrorUnsupportedCoin = "chain_query_unsupported_coin"
)

type BlockchainQueryGateway interface {
	InboundTransactions(
		ctx context.Context,
		query dto.InboundTransactionsQuery,
	) ([]dto.InboundTransaction, *apperrors.AppError)
}

func IsTransientChainQueryError(appErr *apperrors.AppError) bool {
	if appErr == nil {
		return false
	}
	switch appErr.Code {
	case ChainQueryErrorTimeout, ChainQueryErrorUnavailable, ChainQueryErrorRateLimited:
		return true
	default:
		return false
	}
}
