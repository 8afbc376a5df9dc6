package entities

import (
	"time"

	valueobjects "hdpay/internal/domain/value_objects"
	apperrors "hdpay/internal/shared_kernel/errors"
)

// PendingPayment is one funding attempt for a Transaction. ExpectedAmountMinor
// is fixed at creation and BlockchainTxID never changes once set.
type PendingPayment struct {
	ID                  string
	TransactionID       string
	OwnerID             string
	Address             string
	Coin                valueobjects.Coin
	Network             string
	DerivationIndex     int64
	ExpectedAmountMinor int64
	ReceivedAmountMinor int64
	BlockchainTxID      string
	Status              valueobjects.PendingPaymentStatus
	Confirmations       int
	PaidFromBalance     valueobjects.FiatCents
	CreatedAt           time.Time
	LastCheckedAt       *time.Time
	ExpiresAt           time.Time
}

type NewPendingPaymentInput struct {
	ID                  string
	TransactionID       string
	OwnerID             string
	Address             string
	Coin                valueobjects.Coin
	DerivationIndex     int64
	ExpectedAmountMinor int64
	PaidFromBalance     valueobjects.FiatCents
	CreatedAt           time.Time
	ExpiresAt           time.Time
}

func NewMonitoringPendingPayment(input NewPendingPaymentInput) (PendingPayment, *apperrors.AppError) {
	if input.ID == "" || input.TransactionID == "" {
		return PendingPayment{}, apperrors.NewInternal(
			"pending_payment_id_missing",
			"pending payment and transaction ids are required",
			nil,
		)
	}
	if input.Address == "" {
		return PendingPayment{}, apperrors.NewInternal(
			"pending_payment_address_missing",
			"pending payment address is required",
			map[string]any{"transaction_id": input.TransactionID},
		)
	}
	spec, ok := input.Coin.Spec()
	if !ok {
		return PendingPayment{}, apperrors.NewValidation(
			"unsupported_coin",
			"coin is not supported",
			map[string]any{"coin": input.Coin.String()},
		)
	}
	if input.ExpectedAmountMinor <= 0 {
		return PendingPayment{}, apperrors.NewInternal(
			"expected_amount_invalid",
			"expected amount must be greater than zero",
			map[string]any{"expected_amount_minor": input.ExpectedAmountMinor},
		)
	}
	if input.DerivationIndex < 0 {
		return PendingPayment{}, apperrors.NewInternal(
			"derivation_index_invalid",
			"derivation index must be non-negative",
			map[string]any{"derivation_index": input.DerivationIndex},
		)
	}
	if !input.ExpiresAt.After(input.CreatedAt) {
		return PendingPayment{}, apperrors.NewInternal(
			"payment_window_invalid",
			"expires_at must be greater than created_at",
			nil,
		)
	}

	return PendingPayment{
		ID:                  input.ID,
		TransactionID:       input.TransactionID,
		OwnerID:             input.OwnerID,
		Address:             input.Address,
		Coin:                input.Coin,
		Network:             spec.Network,
		DerivationIndex:     input.DerivationIndex,
		ExpectedAmountMinor: input.ExpectedAmountMinor,
		Status:              valueobjects.PendingPaymentStatusMonitoring,
		PaidFromBalance:     input.PaidFromBalance,
		CreatedAt:           input.CreatedAt.UTC(),
		ExpiresAt:           input.ExpiresAt.UTC(),
	}, nil
}

func (p PendingPayment) Bound() bool {
	return p.BlockchainTxID != ""
}

// ExpiredAt reports whether the payment window has closed at now.
func (p PendingPayment) ExpiredAt(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}
