package out

import (
	"context"

	apperrors "hdpay/internal/shared_kernel/errors"
)

// ReadinessChecker reports whether a backing dependency answers right now.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) *apperrors.AppError
}
