package ledger

import (
	"context"
	"database/sql"
	"log"
	"time"

	"hdpay/internal/adapters/outbound/persistence/shared"
	portsout "hdpay/internal/application/ports/out"
	valueobjects "hdpay/internal/domain/value_objects"
	apperrors "hdpay/internal/shared_kernel/errors"
)

// AddressIndexAllocator hands out derivation indexes from hd_address_indices.
// Each allocation is a single UPSERT, so the row lock serializes callers.
type AddressIndexAllocator struct {
	store
	now func() time.Time
}

var _ portsout.AddressIndexAllocator = (*AddressIndexAllocator)(nil)

func NewAddressIndexAllocator(db *sql.DB, dialect shared.Dialect, logger *log.Logger) *AddressIndexAllocator {
	return &AddressIndexAllocator{
		store: store{db: db, dialect: dialect, logger: logger},
		now:   time.Now,
	}
}

func (a *AddressIndexAllocator) AllocateNextIndex(
	ctx context.Context,
	hdCoin valueobjects.HDCoin,
) (int64, *apperrors.AppError) {
	const query = `
INSERT INTO hd_address_indices (coin_symbol, last_used_index, updated_at)
VALUES (?, 0, ?)
ON CONFLICT (coin_symbol) DO UPDATE
SET last_used_index = hd_address_indices.last_used_index + 1, updated_at = excluded.updated_at
RETURNING last_used_index`

	var index int64
	if err := a.queryRow(ctx, a.db, query, hdCoin.String(), a.now().UTC()).Scan(&index); err != nil {
		a.logf("address index allocation failed hd_coin=%s error=%v", hdCoin, err)
		return 0, apperrors.NewInternal(
			"address_index_allocation_failed",
			"failed to allocate address index",
			map[string]any{"hd_coin": hdCoin.String()},
		)
	}

	a.logf("address index allocated hd_coin=%s index=%d", hdCoin, index)
	return index, nil
}

// SeedCounters makes sure every HD coin has a counter row at the -1 floor.
// Existing counters are left untouched.
func (a *AddressIndexAllocator) SeedCounters(ctx context.Context, hdCoins []valueobjects.HDCoin) *apperrors.AppError {
	const query = `
INSERT INTO hd_address_indices (coin_symbol, last_used_index, updated_at)
VALUES (?, -1, ?)
ON CONFLICT (coin_symbol) DO NOTHING`

	for _, hdCoin := range hdCoins {
		if _, err := a.exec(ctx, a.db, query, hdCoin.String(), a.now().UTC()); err != nil {
			return apperrors.NewInternal(
				"address_index_seed_failed",
				"failed to seed address index counter",
				map[string]any{"hd_coin": hdCoin.String(), "error": err.Error()},
			)
		}
	}
	return nil
}
