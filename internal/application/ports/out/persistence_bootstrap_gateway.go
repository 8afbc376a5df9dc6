package out

import (
	"context"

	valueobjects "hdpay/internal/domain/value_objects"
	apperrors "hdpay/internal/shared_kernel/errors"
)

// PersistenceBootstrapGateway owns schema migration for the configured
// dialect. Seeding inserts a zero counter per HD coin and leaves existing
// counters untouched.
type PersistenceBootstrapGateway interface {
	ReadinessChecker
	RunMigrations(ctx context.Context) *apperrors.AppError
	SeedAddressIndexCounters(ctx context.Context, hdCoins []valueobjects.HDCoin) *apperrors.AppError
}
