package dto

import (
	"time"

	"hdpay/internal/domain/entities"
)

// OpenInvoiceInput moves a transaction to awaiting_payment and stores its
// monitoring invoice in one unit of work.
type OpenInvoiceInput struct {
	TransactionID     string
	CryptoAmountMinor int64
	Payment           entities.PendingPayment
	UpdatedAt         time.Time
}

type FinalizationOutcome struct {
	PaymentID         string
	TransactionID     string
	TransactionStatus string
	PaymentStatus     string
	Note              string
	UpdatedAt         time.Time
}

type TopUpEffectInput struct {
	TransactionID string
	OwnerID       string
	AmountCents   int64
}

type PurchaseEffectInput struct {
	TransactionID        string
	OwnerID              string
	Coin                 string
	PaidFromBalanceCents int64
	ItemDetails          map[string]any
}

type ReleaseItemInput struct {
	TransactionID string
	OwnerID       string
	Coin          string
	ItemDetails   map[string]any
}
