package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"log"
	"strings"
	"time"

	"hdpay/internal/adapters/outbound/persistence/shared"
	"hdpay/internal/application/dto"
	portsout "hdpay/internal/application/ports/out"
	"hdpay/internal/domain/entities"
	valueobjects "hdpay/internal/domain/value_objects"
	apperrors "hdpay/internal/shared_kernel/errors"
)

// Repository is the SQL payment ledger. Every status change is a conditional
// UPDATE so the sweep, the on-demand check and cancel can interleave safely.
type Repository struct {
	store
}

var _ portsout.PaymentLedger = (*Repository)(nil)

func NewRepository(db *sql.DB, dialect shared.Dialect, logger *log.Logger) *Repository {
	return &Repository{store: store{db: db, dialect: dialect, logger: logger}}
}

const pendingPaymentColumns = `
  id,
  transaction_id,
  owner_id,
  address,
  coin,
  network,
  derivation_index,
  expected_amount_minor,
  received_amount_minor,
  blockchain_tx_id,
  status,
  confirmations,
  paid_from_balance_cents,
  created_at,
  last_checked_at,
  expires_at`

const transactionColumns = `
  id,
  owner_id,
  kind,
  coin,
  status,
  fiat_due_cents,
  credit_amount_cents,
  crypto_amount_minor,
  item_details,
  notes,
  created_at,
  updated_at`

func (r *Repository) CreateTransaction(ctx context.Context, transaction entities.Transaction) *apperrors.AppError {
	itemDetails, appErr := encodeItemDetails(transaction.ItemDetails)
	if appErr != nil {
		return appErr
	}

	const query = `
INSERT INTO transactions (` + transactionColumns + `
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.exec(
		ctx,
		r.db,
		query,
		transaction.ID,
		transaction.OwnerID,
		transaction.Kind.String(),
		transaction.Coin.String(),
		transaction.Status.String(),
		int64(transaction.FiatDue),
		int64(transaction.CreditAmount),
		transaction.CryptoAmountMinor,
		itemDetails,
		transaction.Notes,
		transaction.CreatedAt.UTC(),
		transaction.UpdatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflict(
				"transaction_conflict",
				"transaction already exists",
				map[string]any{"transaction_id": transaction.ID},
			)
		}
		return writeFailed("create_transaction", err)
	}
	return nil
}

func (r *Repository) OpenInvoice(ctx context.Context, input dto.OpenInvoiceInput) *apperrors.AppError {
	payment := input.Payment
	return r.inTx(ctx, "open_invoice", func(tx *sql.Tx) *apperrors.AppError {
		const insertPayment = `
INSERT INTO pending_payments (` + pendingPaymentColumns + `
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, ?, ?, ?, NULL, ?)`

		_, err := r.exec(
			ctx,
			tx,
			insertPayment,
			payment.ID,
			payment.TransactionID,
			payment.OwnerID,
			payment.Address,
			payment.Coin.String(),
			payment.Network,
			payment.DerivationIndex,
			payment.ExpectedAmountMinor,
			payment.ReceivedAmountMinor,
			payment.Status.String(),
			payment.Confirmations,
			int64(payment.PaidFromBalance),
			payment.CreatedAt.UTC(),
			payment.ExpiresAt.UTC(),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.NewConflict(
					"invoice_conflict",
					"an invoice already exists for this transaction or address",
					map[string]any{"transaction_id": payment.TransactionID},
				)
			}
			return writeFailed("open_invoice", err)
		}

		const updateTransaction = `
UPDATE transactions
SET status = ?, crypto_amount_minor = ?, updated_at = ?
WHERE id = ? AND status = ?`

		affected, err := r.exec(
			ctx,
			tx,
			updateTransaction,
			valueobjects.TransactionStatusAwaitingPayment.String(),
			input.CryptoAmountMinor,
			input.UpdatedAt.UTC(),
			input.TransactionID,
			valueobjects.TransactionStatusPendingAddressGeneration.String(),
		)
		if err != nil {
			return writeFailed("open_invoice", err)
		}
		if affected == 0 {
			return apperrors.NewConflict(
				"transaction_not_pending",
				"transaction is not waiting for an invoice",
				map[string]any{"transaction_id": input.TransactionID},
			)
		}
		return nil
	})
}

func (r *Repository) SetTransactionStatus(
	ctx context.Context,
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

	affected, err := r.exec(ctx, r.db, query, args...)
	if err != nil {
		return writeFailed("set_transaction_status", err)
	}
	if affected == 0 {
		return apperrors.NewNotFound(
			"transaction_not_found",
			"transaction not found",
			map[string]any{"transaction_id": transactionID},
		)
	}
	return nil
}

func (r *Repository) GetTransaction(
	ctx context.Context,
	transactionID string,
) (entities.Transaction, bool, *apperrors.AppError) {
	const query = `SELECT` + transactionColumns + `
FROM transactions
WHERE id = ?`

	transaction, err := scanTransaction(r.queryRow(ctx, r.db, query, transactionID))
	if stderrors.Is(err, sql.ErrNoRows) {
		return entities.Transaction{}, false, nil
	}
	if err != nil {
		return entities.Transaction{}, false, queryFailed("get_transaction", err)
	}
	return transaction, true, nil
}

func (r *Repository) GetPendingPaymentByTransactionID(
	ctx context.Context,
	transactionID string,
) (entities.PendingPayment, bool, *apperrors.AppError) {
	const query = `SELECT` + pendingPaymentColumns + `
FROM pending_payments
WHERE transaction_id = ?`

	payment, err := scanPendingPayment(r.queryRow(ctx, r.db, query, transactionID))
	if stderrors.Is(err, sql.ErrNoRows) {
		return entities.PendingPayment{}, false, nil
	}
	if err != nil {
		return entities.PendingPayment{}, false, queryFailed("get_pending_payment", err)
	}
	return payment, true, nil
}

func (r *Repository) GetOwnerBalance(ctx context.Context, ownerID string) (valueobjects.FiatCents, *apperrors.AppError) {
	var balance int64
	err := r.queryRow(ctx, r.db, `SELECT balance_cents FROM users WHERE id = ?`, strings.TrimSpace(ownerID)).Scan(&balance)
	if stderrors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, queryFailed("get_owner_balance", err)
	}
	return valueobjects.FiatCents(balance), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (entities.Transaction, error) {
	var (
		transaction entities.Transaction
		kind        string
		coin        string
		status      string
		fiatDue     int64
		credit      int64
		itemDetails []byte
	)

	if err := row.Scan(
		&transaction.ID,
		&transaction.OwnerID,
		&kind,
		&coin,
		&status,
		&fiatDue,
		&credit,
		&transaction.CryptoAmountMinor,
		&itemDetails,
		&transaction.Notes,
		&transaction.CreatedAt,
		&transaction.UpdatedAt,
	); err != nil {
		return entities.Transaction{}, err
	}

	transaction.Kind = valueobjects.TransactionKind(kind)
	transaction.Coin = valueobjects.Coin(coin)
	transaction.Status = valueobjects.TransactionStatus(status)
	transaction.FiatDue = valueobjects.FiatCents(fiatDue)
	transaction.CreditAmount = valueobjects.FiatCents(credit)
	transaction.CreatedAt = transaction.CreatedAt.UTC()
	transaction.UpdatedAt = transaction.UpdatedAt.UTC()
	transaction.ItemDetails = map[string]any{}
	if len(itemDetails) > 0 {
		if err := json.Unmarshal(itemDetails, &transaction.ItemDetails); err != nil {
			return entities.Transaction{}, err
		}
	}
	return transaction, nil
}

func scanPendingPayment(row rowScanner) (entities.PendingPayment, error) {
	var (
		payment        entities.PendingPayment
		coin           string
		status         string
		blockchainTxID sql.NullString
		paidFromBal    int64
		lastCheckedAt  sql.NullTime
	)

	if err := row.Scan(
		&payment.ID,
		&payment.TransactionID,
		&payment.OwnerID,
		&payment.Address,
		&coin,
		&payment.Network,
		&payment.DerivationIndex,
		&payment.ExpectedAmountMinor,
		&payment.ReceivedAmountMinor,
		&blockchainTxID,
		&status,
		&payment.Confirmations,
		&paidFromBal,
		&payment.CreatedAt,
		&lastCheckedAt,
		&payment.ExpiresAt,
	); err != nil {
		return entities.PendingPayment{}, err
	}

	parsedStatus, appErr := valueobjects.ParsePendingPaymentStatus(status)
	if appErr != nil {
		return entities.PendingPayment{}, appErr
	}

	payment.Coin = valueobjects.Coin(coin)
	payment.Status = parsedStatus
	payment.PaidFromBalance = valueobjects.FiatCents(paidFromBal)
	payment.CreatedAt = payment.CreatedAt.UTC()
	payment.ExpiresAt = payment.ExpiresAt.UTC()
	if blockchainTxID.Valid {
		payment.BlockchainTxID = blockchainTxID.String
	}
	if lastCheckedAt.Valid {
		checkedAt := lastCheckedAt.Time.UTC()
		payment.LastCheckedAt = &checkedAt
	}
	return payment, nil
}

func encodeItemDetails(details map[string]any) (string, *apperrors.AppError) {
	if len(details) == 0 {
		return "{}", nil
	}
	encoded, err := json.Marshal(details)
	if err != nil {
		return "", apperrors.NewValidation(
			"item_details_invalid",
			"item details must be JSON encodable",
			map[string]any{"error": err.Error()},
		)
	}
	return string(encoded), nil
}
