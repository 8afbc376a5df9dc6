package chainquery

import (
	"context"
	"strings"

	"hdpay/internal/application/dto"
	portsout "hdpay/internal/application/ports/out"
	valueobjects "hdpay/internal/domain/value_objects"
	apperrors "hdpay/internal/shared_kernel/errors"
)

// Registry dispatches a query to the explorer client registered for its coin.
type Registry struct {
	clients map[valueobjects.Coin]portsout.BlockchainQueryGateway
}

var _ portsout.BlockchainQueryGateway = (*Registry)(nil)

func NewRegistry(clients map[valueobjects.Coin]portsout.BlockchainQueryGateway) *Registry {
	registered := make(map[valueobjects.Coin]portsout.BlockchainQueryGateway, len(clients))
	for coin, client := range clients {
		if client != nil {
			registered[coin] = client
		}
	}
	return &Registry{clients: registered}
}

func (r *Registry) InboundTransactions(
	ctx context.Context,
	query dto.InboundTransactionsQuery,
) ([]dto.InboundTransaction, *apperrors.AppError) {
	coin := valueobjects.Coin(strings.ToUpper(strings.TrimSpace(query.Coin)))
	client, ok := r.clients[coin]
	if !ok {
		return nil, apperrors.NewInternal(
			portsout.ChainQueryErrorUnsupportedCoin,
			"no explorer client is registered for coin",
			map[string]any{"coin": query.Coin},
		)
	}

	if strings.TrimSpace(query.Address) == "" {
		return nil, apperrors.NewValidation(
			portsout.ChainQueryErrorInvalidAddress,
			"address is required",
			map[string]any{"coin": query.Coin},
		)
	}

	return client.InboundTransactions(ctx, query)
}
