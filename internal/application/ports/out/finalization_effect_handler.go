package out

import (
	"context"

	"hdpay/internal/application/dto"
	apperrors "hdpay/internal/shared_kernel/errors"
)

// FinalizationEffectHandler applies the business consequence of a settled
// payment. The finalizer calls it at most once per transaction.
type FinalizationEffectHandler interface {
	FinalizeTopUp(ctx context.Context, input dto.TopUpEffectInput) *apperrors.AppError
	FinalizePurchase(ctx context.Context, input dto.PurchaseEffectInput) *apperrors.AppError
}

// InventoryFulfillmentGateway releases a purchased item to its owner.
type InventoryFulfillmentGateway interface {
	ReleaseItem(ctx context.Context, input dto.ReleaseItemInput) *apperrors.AppError
}
