package valueobjects

import apperrors "hdpay/internal/shared_kernel/errors"

type PendingPaymentStatus string

const (
	PendingPaymentStatusMonitoring                 PendingPaymentStatus = "monitoring"
	PendingPaymentStatusConfirmedUnprocessed       PendingPaymentStatus = "confirmed_unprocessed"
	PendingPaymentStatusProcessed                  PendingPaymentStatus = "processed"
	PendingPaymentStatusProcessedTxAlreadyComplete PendingPaymentStatus = "processed_tx_already_complete"
	PendingPaymentStatusExpired                    PendingPaymentStatus = "expired"
	PendingPaymentStatusUserCancelled              PendingPaymentStatus = "user_cancelled"
	PendingPaymentStatusUnderpaid                  PendingPaymentStatus = "underpaid"

	PendingPaymentStatusErrorInvalidAddress PendingPaymentStatus = "error_monitoring_invalid_address"
	PendingPaymentStatusErrorBadResponse    PendingPaymentStatus = "error_monitoring_bad_response"
	PendingPaymentStatusErrorAPIGeneric     PendingPaymentStatus = "error_monitoring_api_generic"
	PendingPaymentStatusErrorFinalizing     PendingPaymentStatus = "error_finalizing"
	PendingPaymentStatusErrorFinalizingData PendingPaymentStatus = "error_finalizing_data"
	PendingPaymentStatusErrorTxMissing      PendingPaymentStatus = "error_processing_tx_missing"
	PendingPaymentStatusErrorUnknownType    PendingPaymentStatus = "error_unknown_type"
)

var knownPendingPaymentStatuses = map[PendingPaymentStatus]struct{}{
	PendingPaymentStatusMonitoring:                 {},
	PendingPaymentStatusConfirmedUnprocessed:       {},
	PendingPaymentStatusProcessed:                  {},
	PendingPaymentStatusProcessedTxAlreadyComplete: {},
	PendingPaymentStatusExpired:                    {},
	PendingPaymentStatusUserCancelled:              {},
	PendingPaymentStatusUnderpaid:                  {},
	PendingPaymentStatusErrorInvalidAddress:        {},
	PendingPaymentStatusErrorBadResponse:           {},
	PendingPaymentStatusErrorAPIGeneric:            {},
	PendingPaymentStatusErrorFinalizing:            {},
	PendingPaymentStatusErrorFinalizingData:        {},
	PendingPaymentStatusErrorTxMissing:             {},
	PendingPaymentStatusErrorUnknownType:           {},
}

func ParsePendingPaymentStatus(raw string) (PendingPaymentStatus, *apperrors.AppError) {
	status := PendingPaymentStatus(raw)
	if _, ok := knownPendingPaymentStatuses[status]; !ok {
		return "", apperrors.NewInternal(
			"pending_payment_status_invalid",
			"pending payment status is invalid",
			map[string]any{"status": raw},
		)
	}
	return status, nil
}

// Cancellable reports whether a user may still withdraw the invoice.
func (s PendingPaymentStatus) Cancellable() bool {
	return s == PendingPaymentStatusMonitoring || s == PendingPaymentStatusUnderpaid
}

// Active reports whether automated workers still act on the invoice.
func (s PendingPaymentStatus) Active() bool {
	return s == PendingPaymentStatusMonitoring || s == PendingPaymentStatusConfirmedUnprocessed
}

func (s PendingPaymentStatus) String() string {
	return string(s)
}
