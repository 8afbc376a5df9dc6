package entities

import (
	"strings"
	"time"

	valueobjects "hdpay/internal/domain/value_objects"
	apperrors "hdpay/internal/shared_kernel/errors"
)

// Transaction is one business intent: a balance top-up or an item purchase.
type Transaction struct {
	ID                string
	OwnerID           string
	Kind              valueobjects.TransactionKind
	Coin              valueobjects.Coin
	Status            valueobjects.TransactionStatus
	FiatDue           valueobjects.FiatCents
	CreditAmount      valueobjects.FiatCents
	CryptoAmountMinor int64
	ItemDetails       map[string]any
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type NewTransactionInput struct {
	ID           string
	OwnerID      string
	Kind         valueobjects.TransactionKind
	Coin         valueobjects.Coin
	FiatDue      valueobjects.FiatCents
	CreditAmount valueobjects.FiatCents
	ItemDetails  map[string]any
	Notes        string
	CreatedAt    time.Time
}

func NewPendingTransaction(input NewTransactionInput) (Transaction, *apperrors.AppError) {
	if input.ID == "" {
		return Transaction{}, apperrors.NewInternal(
			"transaction_id_missing",
			"transaction id is required",
			nil,
		)
	}
	if strings.TrimSpace(input.OwnerID) == "" {
		return Transaction{}, apperrors.NewValidation(
			"invalid_request",
			"owner_id is required",
			map[string]any{"field": "owner_id"},
		)
	}
	if input.FiatDue <= 0 {
		return Transaction{}, apperrors.NewValidation(
			"invalid_request",
			"amount due must be greater than zero",
			map[string]any{"field": "fiat_amount"},
		)
	}

	createdAt := input.CreatedAt.UTC()
	return Transaction{
		ID:           input.ID,
		OwnerID:      strings.TrimSpace(input.OwnerID),
		Kind:         input.Kind,
		Coin:         input.Coin,
		Status:       valueobjects.TransactionStatusPendingAddressGeneration,
		FiatDue:      input.FiatDue,
		CreditAmount: input.CreditAmount,
		ItemDetails:  cloneDetails(input.ItemDetails),
		Notes:        input.Notes,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}, nil
}

// AppendNote joins a new audit note onto existing notes.
func AppendNote(existing string, note string) string {
	existing = strings.TrimSpace(existing)
	note = strings.TrimSpace(note)
	switch {
	case existing == "":
		return note
	case note == "":
		return existing
	default:
		return existing + " | " + note
	}
}

func cloneDetails(details map[string]any) map[string]any {
	if len(details) == 0 {
		return map[string]any{}
	}

	copyMap := make(map[string]any, len(details))
	for key, value := range details {
		copyMap[key] = value
	}

	return copyMap
}
