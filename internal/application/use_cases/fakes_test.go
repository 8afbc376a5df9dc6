//go:build !integration

package use_cases

import (
	"context"
	"sync"
	"time"

	"hdpay/internal/application/dto"
	portsout "hdpay/internal/application/ports/out"
	"hdpay/internal/domain/entities"
	"hdpay/internal/domain/policies"
	valueobjects "hdpay/internal/domain/value_objects"
	apperrors "hdpay/internal/shared_kernel/errors"

	"github.com/shopspring/decimal"
)

func pinnedClock(now time.Time) Clock {
	return ClockFunc(func() time.Time { return now })
}

// fakeLedger keeps the same conditional-update rules as the SQL ledger.
type fakeLedger struct {
	mu           sync.Mutex
	transactions map[string]entities.Transaction
	payments     map[string]entities.PendingPayment
	balances     map[string]valueobjects.FiatCents

	createErr    *apperrors.AppError
	openErr      *apperrors.AppError
	applyCalls   int
	markedErrors []valueobjects.PendingPaymentStatus
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		transactions: map[string]entities.Transaction{},
		payments:     map[string]entities.PendingPayment{},
		balances:     map[string]valueobjects.FiatCents{},
	}
}

func (f *fakeLedger) put(transaction entities.Transaction, payment *entities.PendingPayment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transactions[transaction.ID] = transaction
	if payment != nil {
		f.payments[payment.ID] = *payment
	}
}

func (f *fakeLedger) payment(id string) entities.PendingPayment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.payments[id]
}

func (f *fakeLedger) transaction(id string) entities.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transactions[id]
}

func (f *fakeLedger) CreateTransaction(_ context.Context, transaction entities.Transaction) *apperrors.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.transactions[transaction.ID] = transaction
	return nil
}

func (f *fakeLedger) OpenInvoice(_ context.Context, input dto.OpenInvoiceInput) *apperrors.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return f.openErr
	}
	transaction := f.transactions[input.TransactionID]
	transaction.Status = valueobjects.TransactionStatusAwaitingPayment
	transaction.CryptoAmountMinor = input.CryptoAmountMinor
	f.transactions[input.TransactionID] = transaction
	f.payments[input.Payment.ID] = input.Payment
	return nil
}

func (f *fakeLedger) SetTransactionStatus(
	_ context.Context,
	transactionID string,
	status valueobjects.TransactionStatus,
	note string,
	updatedAt time.Time,
) *apperrors.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()
	transaction := f.transactions[transactionID]
	transaction.Status = status
	transaction.Notes = entities.AppendNote(transaction.Notes, note)
	transaction.UpdatedAt = updatedAt
	f.transactions[transactionID] = transaction
	return nil
}

func (f *fakeLedger) GetTransaction(
	_ context.Context,
	transactionID string,
) (entities.Transaction, bool, *apperrors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	transaction, ok := f.transactions[transactionID]
	return transaction, ok, nil
}

func (f *fakeLedger) GetPendingPaymentByTransactionID(
	_ context.Context,
	transactionID string,
) (entities.PendingPayment, bool, *apperrors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, payment := range f.payments {
		if payment.TransactionID == transactionID {
			return payment, true, nil
		}
	}
	return entities.PendingPayment{}, false, nil
}

func (f *fakeLedger) GetOwnerBalance(_ context.Context, ownerID string) (valueobjects.FiatCents, *apperrors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[ownerID], nil
}

func (f *fakeLedger) listWhere(limit int, match func(entities.PendingPayment) bool) []entities.PendingPayment {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := make([]entities.PendingPayment, 0)
	for _, payment := range f.payments {
		if match(payment) {
			rows = append(rows, payment)
		}
	}
	// Stable order keeps the tests deterministic.
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && rows[j].ID < rows[j-1].ID; j-- {
			rows[j], rows[j-1] = rows[j-1], rows[j]
		}
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

func (f *fakeLedger) ListMonitoringDue(
	_ context.Context,
	now time.Time,
	limit int,
) ([]entities.PendingPayment, *apperrors.AppError) {
	return f.listWhere(limit, func(p entities.PendingPayment) bool {
		return p.Status == valueobjects.PendingPaymentStatusMonitoring && now.Before(p.ExpiresAt)
	}), nil
}

func (f *fakeLedger) ListExpiredMonitoring(
	_ context.Context,
	now time.Time,
	limit int,
) ([]entities.PendingPayment, *apperrors.AppError) {
	return f.listWhere(limit, func(p entities.PendingPayment) bool {
		return p.Status == valueobjects.PendingPaymentStatusMonitoring && !now.Before(p.ExpiresAt)
	}), nil
}

func (f *fakeLedger) ListConfirmedUnprocessed(
	_ context.Context,
	limit int,
) ([]entities.PendingPayment, *apperrors.AppError) {
	return f.listWhere(limit, func(p entities.PendingPayment) bool {
		return p.Status == valueobjects.PendingPaymentStatusConfirmedUnprocessed
	}), nil
}

func (f *fakeLedger) ApplyPaymentDecision(
	_ context.Context,
	paymentID string,
	decision policies.PaymentDecision,
	checkedAt time.Time,
) (bool, *apperrors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applyCalls++

	payment, ok := f.payments[paymentID]
	if !ok || payment.Status != valueobjects.PendingPaymentStatusMonitoring {
		return false, nil
	}

	switch decision.Kind {
	case policies.DecisionTouch:
	case policies.DecisionBind, policies.DecisionUnderpaid:
		if payment.BlockchainTxID != "" || payment.ExpiredAt(checkedAt) {
			return false, nil
		}
		payment.BlockchainTxID = decision.TxID
		payment.ReceivedAmountMinor = decision.ReceivedAmountMinor
		payment.Confirmations = decision.Confirmations
		payment.Status = decision.NextStatus
	case policies.DecisionUpdateConfirmations:
		if payment.BlockchainTxID != decision.TxID || payment.Confirmations > decision.Confirmations {
			return false, nil
		}
		payment.Confirmations = decision.Confirmations
		payment.Status = decision.NextStatus
	default:
		return false, nil
	}

	at := checkedAt
	payment.LastCheckedAt = &at
	f.payments[paymentID] = payment
	return true, nil
}

func (f *fakeLedger) MarkMonitoringError(
	_ context.Context,
	paymentID string,
	status valueobjects.PendingPaymentStatus,
	checkedAt time.Time,
) (bool, *apperrors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[paymentID]
	if !ok || payment.Status != valueobjects.PendingPaymentStatusMonitoring {
		return false, nil
	}
	payment.Status = status
	at := checkedAt
	payment.LastCheckedAt = &at
	f.payments[paymentID] = payment
	f.markedErrors = append(f.markedErrors, status)
	return true, nil
}

func (f *fakeLedger) ExpirePendingPayment(
	_ context.Context,
	paymentID string,
	now time.Time,
) (dto.ExpireResult, *apperrors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[paymentID]
	if !ok || payment.Status != valueobjects.PendingPaymentStatusMonitoring {
		return dto.ExpireResult{}, nil
	}
	payment.Status = valueobjects.PendingPaymentStatusExpired
	f.payments[paymentID] = payment

	status := valueobjects.TransactionStatusFailedExpiredNotFound
	if payment.BlockchainTxID != "" {
		status = valueobjects.TransactionStatusFailedExpiredUnconfirmed
	}
	transaction := f.transactions[payment.TransactionID]
	transaction.Status = status
	transaction.UpdatedAt = now
	f.transactions[payment.TransactionID] = transaction

	return dto.ExpireResult{Expired: true, TransactionStatus: status.String()}, nil
}

func (f *fakeLedger) CancelPendingPayment(
	_ context.Context,
	paymentID string,
	now time.Time,
) (bool, *apperrors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[paymentID]
	if !ok || !payment.Status.Cancellable() {
		return false, nil
	}
	payment.Status = valueobjects.PendingPaymentStatusUserCancelled
	f.payments[paymentID] = payment

	transaction := f.transactions[payment.TransactionID]
	transaction.Status = valueobjects.TransactionStatusCancelledByUser
	transaction.UpdatedAt = now
	f.transactions[payment.TransactionID] = transaction
	return true, nil
}

func (f *fakeLedger) TransitionPendingPaymentStatus(
	_ context.Context,
	paymentID string,
	from valueobjects.PendingPaymentStatus,
	to valueobjects.PendingPaymentStatus,
) (bool, *apperrors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[paymentID]
	if !ok || payment.Status != from {
		return false, nil
	}
	payment.Status = to
	f.payments[paymentID] = payment
	return true, nil
}

func (f *fakeLedger) finalize(input dto.FinalizationOutcome) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[input.PaymentID]
	if !ok || payment.Status != valueobjects.PendingPaymentStatusConfirmedUnprocessed {
		return false
	}
	payment.Status = valueobjects.PendingPaymentStatus(input.PaymentStatus)
	f.payments[input.PaymentID] = payment

	transaction := f.transactions[input.TransactionID]
	transaction.Status = valueobjects.TransactionStatus(input.TransactionStatus)
	transaction.Notes = entities.AppendNote(transaction.Notes, input.Note)
	transaction.UpdatedAt = input.UpdatedAt
	f.transactions[input.TransactionID] = transaction
	return true
}

func (f *fakeLedger) CompleteFinalization(_ context.Context, input dto.FinalizationOutcome) (bool, *apperrors.AppError) {
	return f.finalize(input), nil
}

func (f *fakeLedger) FailFinalization(_ context.Context, input dto.FinalizationOutcome) (bool, *apperrors.AppError) {
	return f.finalize(input), nil
}

type fakeChain struct {
	mu        sync.Mutex
	transfers map[string][]dto.InboundTransaction
	err       *apperrors.AppError
	queries   []dto.InboundTransactionsQuery
}

func (f *fakeChain) InboundTransactions(
	_ context.Context,
	query dto.InboundTransactionsQuery,
) ([]dto.InboundTransaction, *apperrors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.transfers[query.Address], nil
}

type fakeAllocator struct {
	mu   sync.Mutex
	next map[valueobjects.HDCoin]int64
	err  *apperrors.AppError
}

func (f *fakeAllocator) AllocateNextIndex(_ context.Context, hdCoin valueobjects.HDCoin) (int64, *apperrors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	if f.next == nil {
		f.next = map[valueobjects.HDCoin]int64{}
	}
	index := f.next[hdCoin]
	f.next[hdCoin] = index + 1
	return index, nil
}

type fakeDeriver struct {
	err *apperrors.AppError
}

func (f fakeDeriver) DeriveAddress(coin valueobjects.Coin, index int64) (string, *apperrors.AppError) {
	if f.err != nil {
		return "", f.err
	}
	return "addr-" + coin.String() + "-" + decimal.NewFromInt(index).String(), nil
}

type fakeRates struct {
	rates map[valueobjects.Coin]decimal.Decimal
	err   *apperrors.AppError
}

func (f fakeRates) Rate(_ context.Context, _ string, coin valueobjects.Coin) (decimal.Decimal, *apperrors.AppError) {
	if f.err != nil {
		return decimal.Zero, f.err
	}
	rate, ok := f.rates[coin]
	if !ok {
		return decimal.Zero, apperrors.NewUnavailable(portsout.ExchangeRateErrorUnsupportedPair, "no rate", nil)
	}
	return rate, nil
}

type fakeEffects struct {
	mu          sync.Mutex
	topUps      []dto.TopUpEffectInput
	purchases   []dto.PurchaseEffectInput
	topUpErr    *apperrors.AppError
	purchaseErr *apperrors.AppError
}

func (f *fakeEffects) FinalizeTopUp(_ context.Context, input dto.TopUpEffectInput) *apperrors.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.topUpErr != nil {
		return f.topUpErr
	}
	f.topUps = append(f.topUps, input)
	return nil
}

func (f *fakeEffects) FinalizePurchase(_ context.Context, input dto.PurchaseEffectInput) *apperrors.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.purchaseErr != nil {
		return f.purchaseErr
	}
	f.purchases = append(f.purchases, input)
	return nil
}

func monitoringFixture(id string, coin valueobjects.Coin, expected int64, createdAt time.Time) (entities.Transaction, entities.PendingPayment) {
	spec, _ := coin.Spec()
	transaction := entities.Transaction{
		ID:           "tx_" + id,
		OwnerID:      "owner-1",
		Kind:         valueobjects.TransactionKindTopUp,
		Coin:         coin,
		Status:       valueobjects.TransactionStatusAwaitingPayment,
		FiatDue:      5025,
		CreditAmount: 5000,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	payment := entities.PendingPayment{
		ID:                  "inv_" + id,
		TransactionID:       transaction.ID,
		OwnerID:             transaction.OwnerID,
		Address:             "addr-" + id,
		Coin:                coin,
		Network:             spec.Network,
		ExpectedAmountMinor: expected,
		Status:              valueobjects.PendingPaymentStatusMonitoring,
		CreatedAt:           createdAt,
		ExpiresAt:           createdAt.Add(time.Hour),
	}
	return transaction, payment
}
