package ledger

import (
	"context"
	"database/sql"
	"log"
	"time"

	"hdpay/internal/adapters/outbound/persistence/shared"
	"hdpay/internal/application/dto"
	portsout "hdpay/internal/application/ports/out"
	apperrors "hdpay/internal/shared_kernel/errors"
)

const (
	balanceEntryTopUpCredit   = "top_up_credit"
	balanceEntryPurchaseDebit = "purchase_debit"
)

// BalanceEffectHandler applies finalization effects to user balances. Every
// effect first claims a balance_entries row keyed by (transaction_id, kind), so
// replaying a transaction never moves a balance twice.
type BalanceEffectHandler struct {
	store
	fulfillment portsout.InventoryFulfillmentGateway
	now         func() time.Time
}

var _ portsout.FinalizationEffectHandler = (*BalanceEffectHandler)(nil)

func NewBalanceEffectHandler(
	db *sql.DB,
	dialect shared.Dialect,
	fulfillment portsout.InventoryFulfillmentGateway,
	logger *log.Logger,
) *BalanceEffectHandler {
	return &BalanceEffectHandler{
		store:       store{db: db, dialect: dialect, logger: logger},
		fulfillment: fulfillment,
		now:         time.Now,
	}
}

func (h *BalanceEffectHandler) FinalizeTopUp(ctx context.Context, input dto.TopUpEffectInput) *apperrors.AppError {
	if input.AmountCents <= 0 {
		return apperrors.NewValidation(
			"top_up_amount_invalid",
			"top-up amount must be greater than zero",
			map[string]any{"transaction_id": input.TransactionID},
		)
	}

	now := h.now().UTC()
	return h.inTx(ctx, "finalize_top_up", func(tx *sql.Tx) *apperrors.AppError {
		claimed, appErr := h.claimEntry(ctx, tx, input.TransactionID, input.OwnerID, balanceEntryTopUpCredit, input.AmountCents, now)
		if appErr != nil || !claimed {
			return appErr
		}

		const credit = `
INSERT INTO users (id, balance_cents, transaction_count, created_at, updated_at)
VALUES (?, ?, 1, ?, ?)
ON CONFLICT (id) DO UPDATE
SET balance_cents = users.balance_cents + excluded.balance_cents,
    transaction_count = users.transaction_count + 1,
    updated_at = excluded.updated_at`

		if _, err := h.exec(ctx, tx, credit, input.OwnerID, input.AmountCents, now, now); err != nil {
			return writeFailed("finalize_top_up", err)
		}

		h.logf("balance credited transaction_id=%s owner_id=%s amount_cents=%d", input.TransactionID, input.OwnerID, input.AmountCents)
		return nil
	})
}

// FinalizePurchase releases the item first and only then debits the pre-paid
// part of the price. The fulfillment call is keyed by transaction id, so a
// retry after a crash does not release twice.
func (h *BalanceEffectHandler) FinalizePurchase(ctx context.Context, input dto.PurchaseEffectInput) *apperrors.AppError {
	if h.fulfillment == nil {
		return apperrors.NewInternal(
			"fulfillment_gateway_missing",
			"inventory fulfillment gateway is not configured",
			nil,
		)
	}
	if input.PaidFromBalanceCents < 0 {
		return apperrors.NewValidation(
			"prepaid_amount_invalid",
			"pre-paid amount must not be negative",
			map[string]any{"transaction_id": input.TransactionID},
		)
	}

	if appErr := h.fulfillment.ReleaseItem(ctx, dto.ReleaseItemInput{
		TransactionID: input.TransactionID,
		OwnerID:       input.OwnerID,
		Coin:          input.Coin,
		ItemDetails:   input.ItemDetails,
	}); appErr != nil {
		h.logf("item release failed transaction_id=%s code=%s", input.TransactionID, appErr.Code)
		return appErr
	}

	now := h.now().UTC()
	return h.inTx(ctx, "finalize_purchase", func(tx *sql.Tx) *apperrors.AppError {
		claimed, appErr := h.claimEntry(ctx, tx, input.TransactionID, input.OwnerID, balanceEntryPurchaseDebit, -input.PaidFromBalanceCents, now)
		if appErr != nil || !claimed {
			return appErr
		}

		if input.PaidFromBalanceCents == 0 {
			const count = `
INSERT INTO users (id, balance_cents, transaction_count, created_at, updated_at)
VALUES (?, 0, 1, ?, ?)
ON CONFLICT (id) DO UPDATE
SET transaction_count = users.transaction_count + 1, updated_at = excluded.updated_at`

			if _, err := h.exec(ctx, tx, count, input.OwnerID, now, now); err != nil {
				return writeFailed("finalize_purchase", err)
			}
			return nil
		}

		const debit = `
UPDATE users
SET balance_cents = balance_cents - ?, transaction_count = transaction_count + 1, updated_at = ?
WHERE id = ? AND balance_cents >= ?`

		affected, err := h.exec(ctx, tx, debit, input.PaidFromBalanceCents, now, input.OwnerID, input.PaidFromBalanceCents)
		if err != nil {
			return writeFailed("finalize_purchase", err)
		}
		if affected == 0 {
			return apperrors.NewConflict(
				"insufficient_balance",
				"owner balance no longer covers the pre-paid amount",
				map[string]any{"transaction_id": input.TransactionID, "owner_id": input.OwnerID},
			)
		}

		h.logf("balance debited transaction_id=%s owner_id=%s amount_cents=%d", input.TransactionID, input.OwnerID, input.PaidFromBalanceCents)
		return nil
	})
}

// claimEntry records the balance movement and reports false when the same
// effect was already applied for the transaction.
func (h *BalanceEffectHandler) claimEntry(
	ctx context.Context,
	tx *sql.Tx,
	transactionID string,
	ownerID string,
	kind string,
	amountCents int64,
	now time.Time,
) (bool, *apperrors.AppError) {
	const query = `
INSERT INTO balance_entries (transaction_id, owner_id, kind, amount_cents, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (transaction_id, kind) DO NOTHING`

	affected, err := h.exec(ctx, tx, query, transactionID, ownerID, kind, amountCents, now)
	if err != nil {
		return false, writeFailed("claim_balance_entry", err)
	}
	if affected == 0 {
		h.logf("balance effect already applied transaction_id=%s kind=%s", transactionID, kind)
		return false, nil
	}
	return true, nil
}
