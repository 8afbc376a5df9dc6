package ledger

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log"
	"strings"

	"hdpay/internal/adapters/outbound/persistence/shared"
	apperrors "hdpay/internal/shared_kernel/errors"

	"github.com/jackc/pgx/v5/pgconn"
	sqlite3 "github.com/mattn/go-sqlite3"
)

const pgUniqueViolation = "23505"

// store carries the connection and dialect shared by every ledger adapter.
type store struct {
	db      *sql.DB
	dialect shared.Dialect
	logger  *log.Logger
}

func (s store) exec(ctx context.Context, runner sqlRunner, query string, args ...any) (int64, error) {
	result, err := runner.ExecContext(ctx, shared.Rebind(s.dialect, query), args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (s store) queryRow(ctx context.Context, runner sqlRunner, query string, args ...any) *sql.Row {
	return runner.QueryRowContext(ctx, shared.Rebind(s.dialect, query), args...)
}

func (s store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, shared.Rebind(s.dialect, query), args...)
}

// inTx runs fn inside a read-committed transaction and commits when fn
// returns no error.
func (s store) inTx(ctx context.Context, operation string, fn func(tx *sql.Tx) *apperrors.AppError) *apperrors.AppError {
	var options *sql.TxOptions
	if s.dialect == shared.DialectPostgres {
		options = &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	}

	tx, err := s.db.BeginTx(ctx, options)
	if err != nil {
		return apperrors.NewInternal(
			"ledger_tx_begin_failed",
			"failed to start ledger transaction",
			map[string]any{"operation": operation, "error": err.Error()},
		)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if appErr := fn(tx); appErr != nil {
		return appErr
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternal(
			"ledger_tx_commit_failed",
			"failed to commit ledger transaction",
			map[string]any{"operation": operation, "error": err.Error()},
		)
	}
	committed = true
	return nil
}

func (s store) logf(format string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Printf(format, args...)
}

type sqlRunner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryFailed(operation string, err error) *apperrors.AppError {
	return apperrors.NewInternal(
		"ledger_query_failed",
		"failed to read from the payment ledger",
		map[string]any{"operation": operation, "error": err.Error()},
	)
}

func writeFailed(operation string, err error) *apperrors.AppError {
	return apperrors.NewInternal(
		"ledger_write_failed",
		"failed to write to the payment ledger",
		map[string]any{"operation": operation, "error": err.Error()},
	)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var sqliteErr sqlite3.Error
	if stderrors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// appendNoteSQL appends a note to the notes column with " | " as separator.
// It takes the note three times; see noteArgs.
const appendNoteSQL = `CASE WHEN ? = '' THEN notes WHEN notes = '' THEN ? ELSE notes || ' | ' || ? END`

func noteArgs(note string) []any {
	note = strings.TrimSpace(note)
	return []any{note, note, note}
}
