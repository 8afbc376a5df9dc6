package ledger

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"hdpay/internal/application/dto"
	"hdpay/internal/domain/entities"
	"hdpay/internal/domain/policies"
	valueobjects "hdpay/internal/domain/value_objects"
	apperrors "hdpay/internal/shared_kernel/errors"
)

const (
	statusMonitoring           = string(valueobjects.PendingPaymentStatusMonitoring)
	statusConfirmedUnprocessed = string(valueobjects.PendingPaymentStatusConfirmedUnprocessed)
)

func (r *Repository) ListMonitoringDue(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]entities.PendingPayment, *apperrors.AppError) {
	const query = `SELECT` + pendingPaymentColumns + `
FROM pending_payments
WHERE status = ? AND expires_at > ?
ORDER BY last_checked_at ASC NULLS FIRST, created_at ASC, id ASC
LIMIT ?`

	return r.listPendingPayments(ctx, "list_monitoring_due", query, statusMonitoring, now.UTC(), limit)
}

func (r *Repository) ListExpiredMonitoring(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]entities.PendingPayment, *apperrors.AppError) {
	const query = `SELECT` + pendingPaymentColumns + `
FROM pending_payments
WHERE status = ? AND expires_at <= ?
ORDER BY expires_at ASC, id ASC
LIMIT ?`

	return r.listPendingPayments(ctx, "list_expired_monitoring", query, statusMonitoring, now.UTC(), limit)
}

func (r *Repository) ListConfirmedUnprocessed(
	ctx context.Context,
	limit int,
) ([]entities.PendingPayment, *apperrors.AppError) {
	const query = `SELECT` + pendingPaymentColumns + `
FROM pending_payments
WHERE status = ?
ORDER BY created_at ASC, id ASC
LIMIT ?`

	return r.listPendingPayments(ctx, "list_confirmed_unprocessed", query, statusConfirmedUnprocessed, limit)
}

func (r *Repository) listPendingPayments(
	ctx context.Context,
	operation string,
	query string,
	args ...any,
) ([]entities.PendingPayment, *apperrors.AppError) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, queryFailed(operation, err)
	}
	defer rows.Close()

	items := make([]entities.PendingPayment, 0)
	for rows.Next() {
		payment, err := scanPendingPayment(rows)
		if err != nil {
			return nil, queryFailed(operation, err)
		}
		items = append(items, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, queryFailed(operation, err)
	}
	return items, nil
}

func (r *Repository) ApplyPaymentDecision(
	ctx context.Context,
	paymentID string,
	decision policies.PaymentDecision,
	checkedAt time.Time,
) (bool, *apperrors.AppError) {
	var (
		query string
		args  []any
	)

	switch decision.Kind {
	case policies.DecisionTouch:
		query = `
UPDATE pending_payments
SET last_checked_at = ?
WHERE id = ? AND status = ?`
		args = []any{checkedAt.UTC(), paymentID, statusMonitoring}
	case policies.DecisionBind, policies.DecisionUnderpaid:
		query = `
UPDATE pending_payments
SET blockchain_tx_id = ?, received_amount_minor = ?, confirmations = ?, status = ?, last_checked_at = ?
WHERE id = ? AND status = ? AND blockchain_tx_id IS NULL AND expires_at > ?`
		args = []any{
			decision.TxID,
			decision.ReceivedAmountMinor,
			decision.Confirmations,
			decision.NextStatus.String(),
			checkedAt.UTC(),
			paymentID,
			statusMonitoring,
			checkedAt.UTC(),
		}
	case policies.DecisionUpdateConfirmations:
		query = `
UPDATE pending_payments
SET confirmations = ?, status = ?, last_checked_at = ?
WHERE id = ? AND status = ? AND blockchain_tx_id = ? AND confirmations <= ?`
		args = []any{
			decision.Confirmations,
			decision.NextStatus.String(),
			checkedAt.UTC(),
			paymentID,
			statusMonitoring,
			decision.TxID,
			decision.Confirmations,
		}
	default:
		return false, nil
	}

	affected, err := r.exec(ctx, r.db, query, args...)
	if err != nil {
		return false, writeFailed("apply_payment_decision", err)
	}
	if affected == 0 {
		r.logf("ledger decision skipped payment_id=%s decision=%s reason=row_moved", paymentID, decision.Kind)
	}
	return affected > 0, nil
}

func (r *Repository) MarkMonitoringError(
	ctx context.Context,
	paymentID string,
	status valueobjects.PendingPaymentStatus,
	checkedAt time.Time,
) (bool, *apperrors.AppError) {
	const query = `
UPDATE pending_payments
SET status = ?, last_checked_at = ?
WHERE id = ? AND status = ?`

	affected, err := r.exec(ctx, r.db, query, status.String(), checkedAt.UTC(), paymentID, statusMonitoring)
	if err != nil {
		return false, writeFailed("mark_monitoring_error", err)
	}
	return affected > 0, nil
}

func (r *Repository) ExpirePendingPayment(
	ctx context.Context,
	paymentID string,
	now time.Time,
) (dto.ExpireResult, *apperrors.AppError) {
	result := dto.ExpireResult{}
	appErr := r.inTx(ctx, "expire_pending_payment", func(tx *sql.Tx) *apperrors.AppError {
		const expirePayment = `
UPDATE pending_payments
SET status = ?
WHERE id = ? AND status = ? AND expires_at <= ?
RETURNING transaction_id, blockchain_tx_id`

		var (
			transactionID  string
			blockchainTxID sql.NullString
		)
		err := r.queryRow(
			ctx,
			tx,
			expirePayment,
			valueobjects.PendingPaymentStatusExpired.String(),
			paymentID,
			statusMonitoring,
			now.UTC(),
		).Scan(&transactionID, &blockchainTxID)
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return writeFailed("expire_pending_payment", err)
		}

		status := valueobjects.TransactionStatusFailedExpiredNotFound
		note := "Invoice expired with no payment detected."
		if blockchainTxID.Valid && blockchainTxID.String != "" {
			status = valueobjects.TransactionStatusFailedExpiredUnconfirmed
			note = "Invoice expired before payment " + blockchainTxID.String + " was confirmed."
		}

		if appErr := r.moveTransaction(ctx, tx, transactionID, status, note, now); appErr != nil {
			return appErr
		}

		result = dto.ExpireResult{Expired: true, TransactionStatus: status.String()}
		return nil
	})
	if appErr != nil {
		return dto.ExpireResult{}, appErr
	}
	return result, nil
}

func (r *Repository) CancelPendingPayment(
	ctx context.Context,
	paymentID string,
	now time.Time,
) (bool, *apperrors.AppError) {
	cancelled := false
	appErr := r.inTx(ctx, "cancel_pending_payment", func(tx *sql.Tx) *apperrors.AppError {
		const cancelPayment = `
UPDATE pending_payments
SET status = ?
WHERE id = ? AND status IN (?, ?)
RETURNING transaction_id`

		var transactionID string
		err := r.queryRow(
			ctx,
			tx,
			cancelPayment,
			valueobjects.PendingPaymentStatusUserCancelled.String(),
			paymentID,
			statusMonitoring,
			valueobjects.PendingPaymentStatusUnderpaid.String(),
		).Scan(&transactionID)
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return writeFailed("cancel_pending_payment", err)
		}

		if appErr := r.moveTransaction(
			ctx,
			tx,
			transactionID,
			valueobjects.TransactionStatusCancelledByUser,
			"Invoice cancelled by user.",
			now,
		); appErr != nil {
			return appErr
		}
		cancelled = true
		return nil
	})
	if appErr != nil {
		return false, appErr
	}
	return cancelled, nil
}

func (r *Repository) TransitionPendingPaymentStatus(
	ctx context.Context,
	paymentID string,
	from valueobjects.PendingPaymentStatus,
	to valueobjects.PendingPaymentStatus,
) (bool, *apperrors.AppError) {
	affected, err := r.exec(
		ctx,
		r.db,
		`UPDATE pending_payments SET status = ? WHERE id = ? AND status = ?`,
		to.String(),
		paymentID,
		from.String(),
	)
	if err != nil {
		return false, writeFailed("transition_pending_payment", err)
	}
	return affected > 0, nil
}

func (r *Repository) CompleteFinalization(ctx context.Context, input dto.FinalizationOutcome) (bool, *apperrors.AppError) {
	return r.finalize(ctx, "complete_finalization", input)
}

func (r *Repository) FailFinalization(ctx context.Context, input dto.FinalizationOutcome) (bool, *apperrors.AppError) {
	return r.finalize(ctx, "fail_finalization", input)
}

// finalize moves a confirmed_unprocessed invoice and its transaction to their
// outcome statuses together.
func (r *Repository) finalize(ctx context.Context, operation string, input dto.FinalizationOutcome) (bool, *apperrors.AppError) {
	moved := false
	appErr := r.inTx(ctx, operation, func(tx *sql.Tx) *apperrors.AppError {
		affected, err := r.exec(
			ctx,
			tx,
			`UPDATE pending_payments SET status = ? WHERE id = ? AND status = ?`,
			input.PaymentStatus,
			input.PaymentID,
			statusConfirmedUnprocessed,
		)
		if err != nil {
			return writeFailed(operation, err)
		}
		if affected == 0 {
			return nil
		}

		if appErr := r.moveTransaction(
			ctx,
			tx,
			input.TransactionID,
			valueobjects.TransactionStatus(input.TransactionStatus),
			input.Note,
			input.UpdatedAt,
		); appErr != nil {
			return appErr
		}
		moved = true
		return nil
	})
	if appErr != nil {
		return false, appErr
	}
	return moved, nil
}

func (r *Repository) moveTransaction(
	ctx context.Context,
	tx *sql.Tx,
	transactionID string,
	status valueobjects.TransactionStatus,
	note string,
	updatedAt time.Time,
) *apperrors.AppError {
	query := `
UPDATE transactions
SET status = ?, notes = ` + appendNoteSQL + `, updated_at = ?
WHERE id = ?`

	args := append([]any{status.String()}, noteArgs(note)...)
	args = append(args, updatedAt.UTC(), transactionID)

	if _, err := r.exec(ctx, tx, query, args...); err != nil {
		return writeFailed("move_transaction", err)
	}
	return nil
}
