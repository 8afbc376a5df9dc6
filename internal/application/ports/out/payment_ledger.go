package out

import (
	"context"
	"time"

	"hdpay/internal/application/dto"
	"hdpay/internal/domain/entities"
	"hdpay/internal/domain/policies"
	valueobjects "hdpay/internal/domain/value_objects"
	apperrors "hdpay/internal/shared_kernel/errors"
)

// PaymentLedger is the system of record for transactions and invoices. Every
// status change is conditional on the current status; a false result means the
// row had already moved on and nothing was written.
type PaymentLedger interface {
	CreateTransaction(ctx context.Context, transaction entities.Transaction) *apperrors.AppError
	OpenInvoice(ctx context.Context, input dto.OpenInvoiceInput) *apperrors.AppError
	SetTransactionStatus(
		ctx context.Context,
		transactionID string,
		status valueobjects.TransactionStatus,
		note string,
		updatedAt time.Time,
	) *apperrors.AppError

	GetTransaction(ctx context.Context, transactionID string) (entities.Transaction, bool, *apperrors.AppError)
	GetPendingPaymentByTransactionID(
		ctx context.Context,
		transactionID string,
	) (entities.PendingPayment, bool, *apperrors.AppError)
	GetOwnerBalance(ctx context.Context, ownerID string) (valueobjects.FiatCents, *apperrors.AppError)

	ListMonitoringDue(ctx context.Context, now time.Time, limit int) ([]entities.PendingPayment, *apperrors.AppError)
	ListExpiredMonitoring(ctx context.Context, now time.Time, limit int) ([]entities.PendingPayment, *apperrors.AppError)
	ListConfirmedUnprocessed(ctx context.Context, limit int) ([]entities.PendingPayment, *apperrors.AppError)

	ApplyPaymentDecision(
		ctx context.Context,
		paymentID string,
		decision policies.PaymentDecision,
		checkedAt time.Time,
	) (bool, *apperrors.AppError)
	MarkMonitoringError(
		ctx context.Context,
		paymentID string,
		status valueobjects.PendingPaymentStatus,
		checkedAt time.Time,
	) (bool, *apperrors.AppError)
	ExpirePendingPayment(ctx context.Context, paymentID string, now time.Time) (dto.ExpireResult, *apperrors.AppError)
	CancelPendingPayment(ctx context.Context, paymentID string, now time.Time) (bool, *apperrors.AppError)

	TransitionPendingPaymentStatus(
		ctx context.Context,
		paymentID string,
		from valueobjects.PendingPaymentStatus,
		to valueobjects.PendingPaymentStatus,
	) (bool, *apperrors.AppError)
	CompleteFinalization(ctx context.Context, input dto.FinalizationOutcome) (bool, *apperrors.AppError)
	FailFinalization(ctx context.Context, input dto.FinalizationOutcome) (bool, *apperrors.AppError)
}
