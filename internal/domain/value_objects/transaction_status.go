package valueobjects

import apperrors "hdpay/internal/shared_kernel/errors"

type TransactionStatus string

const (
	TransactionStatusPendingAddressGeneration    TransactionStatus = "pending_address_generation"
	TransactionStatusAwaitingPayment             TransactionStatus = "awaiting_payment"
	TransactionStatusCompleted                   TransactionStatus = "completed"
	TransactionStatusFailedExpiredNotFound       TransactionStatus = "failed_expired_notfound"
	TransactionStatusFailedExpiredUnconfirmed    TransactionStatus = "failed_expired_unconfirmed"
	TransactionStatusCancelledByUser             TransactionStatus = "cancelled_by_user"
	TransactionStatusFailedFinalizationHandler   TransactionStatus = "failed_finalization_handler"
	TransactionStatusFailedDataError             TransactionStatus = "failed_data_error"
	TransactionStatusErrorAddressGeneration      TransactionStatus = "error_address_generation"
	TransactionStatusErrorExchangeRate           TransactionStatus = "error_exchange_rate"
	TransactionStatusErrorCreatingPendingPayment TransactionStatus = "error_creating_pending_payment"
)

func (s TransactionStatus) String() string {
	return string(s)
}

type TransactionKind string

const (
	TransactionKindTopUp    TransactionKind = "top_up"
	TransactionKindPurchase TransactionKind = "purchase"
)

func ParseTransactionKind(raw string) (TransactionKind, *apperrors.AppError) {
	switch TransactionKind(raw) {
	case TransactionKindTopUp:
		return TransactionKindTopUp, nil
	case TransactionKindPurchase:
		return TransactionKindPurchase, nil
	default:
		return "", apperrors.NewValidation(
			"invalid_request",
			"kind must be top_up or purchase",
			map[string]any{"field": "kind", "kind": raw},
		)
	}
}

func (k TransactionKind) String() string {
	return string(k)
}
