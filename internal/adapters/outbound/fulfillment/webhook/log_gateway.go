package webhook

import (
	"context"
	"log"

	"hdpay/internal/application/dto"
	portsout "hdpay/internal/application/ports/out"
	apperrors "hdpay/internal/shared_kernel/errors"
)

// LogGateway stands in for the fulfillment service when no webhook URL is
// configured. It only records the release.
type LogGateway struct {
	logger *log.Logger
}

var _ portsout.InventoryFulfillmentGateway = (*LogGateway)(nil)

func NewLogGateway(logger *log.Logger) *LogGateway {
	return &LogGateway{logger: logger}
}

func (g *LogGateway) ReleaseItem(_ context.Context, input dto.ReleaseItemInput) *apperrors.AppError {
	if g.logger != nil {
		g.logger.Printf(
			"item release recorded transaction_id=%s owner_id=%s coin=%s item=%v delivery=log_only",
			input.TransactionID,
			input.OwnerID,
			input.Coin,
			input.ItemDetails,
		)
	}
	return nil
}
