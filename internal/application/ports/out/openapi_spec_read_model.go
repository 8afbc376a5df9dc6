package out

import (
	"context"

	apperrors "hdpay/internal/shared_kernel/errors"
)

// OpenAPISpecReadModel returns the contract document and its content type.
// A document on disk wins over the copy compiled into the binary.
type OpenAPISpecReadModel interface {
	Read(ctx context.Context) (content []byte, contentType string, appErr *apperrors.AppError)
}
