package dto

import "time"

type CreateInvoiceCommand struct {
	OwnerID            string         `json:"owner_id"`
	Kind               string         `json:"kind"`
	Coin               string         `json:"coin"`
	FiatAmount         string         `json:"fiat_amount"`
	PrepaidFromBalance string         `json:"prepaid_from_balance,omitempty"`
	Item               map[string]any `json:"item,omitempty"`
}

type GetInvoiceQuery struct {
	TransactionID string
}

type CheckInvoiceCommand struct {
	TransactionID string
}

type CancelInvoiceCommand struct {
	TransactionID string
}

type InvoiceOutput struct {
	TransactionID       string     `json:"transaction_id"`
	InvoiceID           string     `json:"invoice_id"`
	OwnerID             string     `json:"owner_id"`
	Kind                string     `json:"kind"`
	Coin                string     `json:"coin"`
	Network             string     `json:"network"`
	Address             string     `json:"address"`
	ExpectedAmountMinor int64      `json:"expected_amount_minor"`
	ExpectedAmount      string     `json:"expected_amount"`
	ReceivedAmountMinor int64      `json:"received_amount_minor"`
	FiatAmountDue       string     `json:"fiat_amount_due"`
	PrepaidFromBalance  string     `json:"prepaid_from_balance"`
	Rate                string     `json:"rate,omitempty"`
	PaymentURI          string     `json:"payment_uri"`
	Status              string     `json:"status"`
	TransactionStatus   string     `json:"transaction_status"`
	BlockchainTxID      *string    `json:"blockchain_tx_id,omitempty"`
	Confirmations       int        `json:"confirmations"`
	CreatedAt           time.Time  `json:"created_at"`
	ExpiresAt           time.Time  `json:"expires_at"`
	LastCheckedAt       *time.Time `json:"last_checked_at,omitempty"`
}

type CheckInvoiceOutput struct {
	TransactionID  string `json:"transaction_id"`
	NewlyConfirmed bool   `json:"newly_confirmed"`
	Status         string `json:"status"`
	Message        string `json:"message,omitempty"`
}

type CancelInvoiceOutput struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}
