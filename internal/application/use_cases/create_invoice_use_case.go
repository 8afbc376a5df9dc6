package use_cases

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"hdpay/internal/application/dto"
	portsin "hdpay/internal/application/ports/in"
	portsout "hdpay/internal/application/ports/out"
	"hdpay/internal/domain/entities"
	"hdpay/internal/domain/policies"
	valueobjects "hdpay/internal/domain/value_objects"
	apperrors "hdpay/internal/shared_kernel/errors"
)

const (
	DefaultPaymentWindow = 60 * time.Minute
	DefaultFiatCurrency  = "EUR"
)

type CreateInvoiceConfig struct {
	PaymentWindow time.Duration
	FiatCurrency  string
	Pricing       policies.PricingRules
}

type createInvoiceUseCase struct {
	ledger    portsout.PaymentLedger
	allocator portsout.AddressIndexAllocator
	deriver   portsout.AddressDeriver
	rates     portsout.ExchangeRateProvider
	config    CreateInvoiceConfig
	clock     Clock
	logger    *log.Logger
}

func NewCreateInvoiceUseCase(
	ledger portsout.PaymentLedger,
	allocator portsout.AddressIndexAllocator,
	deriver portsout.AddressDeriver,
	rates portsout.ExchangeRateProvider,
	config CreateInvoiceConfig,
	clock Clock,
	logger *log.Logger,
) portsin.CreateInvoiceUseCase {
	if clock == nil {
		clock = NewSystemClock()
	}
	if config.PaymentWindow <= 0 {
		config.PaymentWindow = DefaultPaymentWindow
	}
	if strings.TrimSpace(config.FiatCurrency) == "" {
		config.FiatCurrency = DefaultFiatCurrency
	}
	config.FiatCurrency = strings.ToUpper(strings.TrimSpace(config.FiatCurrency))

	return &createInvoiceUseCase{
		ledger:    ledger,
		allocator: allocator,
		deriver:   deriver,
		rates:     rates,
		config:    config,
		clock:     clock,
		logger:    logger,
	}
}

func (u *createInvoiceUseCase) Execute(
	ctx context.Context,
	command dto.CreateInvoiceCommand,
) (dto.InvoiceOutput, *apperrors.AppError) {
	if appErr := u.validateDependencies(); appErr != nil {
		return dto.InvoiceOutput{}, appErr
	}

	request, appErr := u.parseCommand(command)
	if appErr != nil {
		return dto.InvoiceOutput{}, appErr
	}

	price, appErr := policies.PriceInvoice(request.kind, request.amount, request.prepaid, u.config.Pricing)
	if appErr != nil {
		return dto.InvoiceOutput{}, appErr
	}

	if request.prepaid > 0 {
		balance, balanceErr := u.ledger.GetOwnerBalance(ctx, request.ownerID)
		if balanceErr != nil {
			return dto.InvoiceOutput{}, balanceErr
		}
		if request.prepaid > balance {
			return dto.InvoiceOutput{}, apperrors.NewValidation(
				"insufficient_balance",
				"prepaid_from_balance exceeds the available balance",
				map[string]any{
					"field":     "prepaid_from_balance",
					"available": balance.String(),
				},
			)
		}
	}

	transactionID, appErr := generateID("tx_")
	if appErr != nil {
		return dto.InvoiceOutput{}, appErr
	}
	createdAt := u.clock.NowUTC()

	transaction, appErr := entities.NewPendingTransaction(entities.NewTransactionInput{
		ID:           transactionID,
		OwnerID:      request.ownerID,
		Kind:         request.kind,
		Coin:         request.coin,
		FiatDue:      price.AmountDue,
		CreditAmount: price.CreditAmount,
		ItemDetails:  command.Item,
		Notes:        u.openingNote(request, price),
		CreatedAt:    createdAt,
	})
	if appErr != nil {
		return dto.InvoiceOutput{}, appErr
	}
	if appErr := u.ledger.CreateTransaction(ctx, transaction); appErr != nil {
		return dto.InvoiceOutput{}, appErr
	}

	index, appErr := u.allocator.AllocateNextIndex(ctx, request.spec.HDCoin)
	if appErr != nil {
		return dto.InvoiceOutput{}, u.failTransaction(ctx, transaction, valueobjects.TransactionStatusErrorAddressGeneration, appErr)
	}

	address, appErr := u.deriver.DeriveAddress(request.coin, index)
	if appErr != nil {
		return dto.InvoiceOutput{}, u.failTransaction(ctx, transaction, valueobjects.TransactionStatusErrorAddressGeneration, appErr)
	}

	rate, appErr := u.rates.Rate(ctx, u.config.FiatCurrency, request.coin)
	if appErr != nil {
		return dto.InvoiceOutput{}, u.failTransaction(ctx, transaction, valueobjects.TransactionStatusErrorExchangeRate, appErr)
	}

	expectedMinor, appErr := valueobjects.ToSmallestUnitCeil(price.AmountDue, rate, request.spec.Precision)
	if appErr != nil {
		return dto.InvoiceOutput{}, u.failTransaction(ctx, transaction, valueobjects.TransactionStatusErrorExchangeRate, appErr)
	}

	invoiceID, appErr := generateID("pp_")
	if appErr != nil {
		return dto.InvoiceOutput{}, u.failTransaction(ctx, transaction, valueobjects.TransactionStatusErrorCreatingPendingPayment, appErr)
	}

	payment, appErr := entities.NewMonitoringPendingPayment(entities.NewPendingPaymentInput{
		ID:                  invoiceID,
		TransactionID:       transaction.ID,
		OwnerID:             transaction.OwnerID,
		Address:             address,
		Coin:                request.coin,
		DerivationIndex:     index,
		ExpectedAmountMinor: expectedMinor,
		PaidFromBalance:     request.prepaid,
		CreatedAt:           createdAt,
		ExpiresAt:           createdAt.Add(u.config.PaymentWindow),
	})
	if appErr != nil {
		return dto.InvoiceOutput{}, u.failTransaction(ctx, transaction, valueobjects.TransactionStatusErrorCreatingPendingPayment, appErr)
	}

	if appErr := u.ledger.OpenInvoice(ctx, dto.OpenInvoiceInput{
		TransactionID:     transaction.ID,
		CryptoAmountMinor: expectedMinor,
		Payment:           payment,
		UpdatedAt:         createdAt,
	}); appErr != nil {
		return dto.InvoiceOutput{}, u.failTransaction(ctx, transaction, valueobjects.TransactionStatusErrorCreatingPendingPayment, appErr)
	}

	transaction.Status = valueobjects.TransactionStatusAwaitingPayment
	transaction.CryptoAmountMinor = expectedMinor

	u.logf(
		"invoice created invoice_id=%s transaction_id=%s owner_id=%s kind=%s coin=%s index=%d address=%s expected_minor=%d fiat_due=%s",
		payment.ID,
		transaction.ID,
		transaction.OwnerID,
		transaction.Kind,
		payment.Coin,
		index,
		address,
		expectedMinor,
		price.AmountDue,
	)

	output := toInvoiceOutput(transaction, payment)
	output.Rate = rate.String()
	return output, nil
}

type invoiceRequest struct {
	ownerID string
	kind    valueobjects.TransactionKind
	coin    valueobjects.Coin
	spec    valueobjects.CoinSpec
	amount  valueobjects.FiatCents
	prepaid valueobjects.FiatCents
}

func (u *createInvoiceUseCase) parseCommand(command dto.CreateInvoiceCommand) (invoiceRequest, *apperrors.AppError) {
	ownerID := strings.TrimSpace(command.OwnerID)
	if ownerID == "" {
		return invoiceRequest{}, apperrors.NewValidation(
			"invalid_request",
			"owner_id is required",
			map[string]any{"field": "owner_id"},
		)
	}

	rawKind := strings.TrimSpace(command.Kind)
	if rawKind == "" {
		rawKind = valueobjects.TransactionKindTopUp.String()
	}
	kind, appErr := valueobjects.ParseTransactionKind(rawKind)
	if appErr != nil {
		return invoiceRequest{}, appErr
	}

	coin, appErr := valueobjects.ParseCoin(command.Coin)
	if appErr != nil {
		return invoiceRequest{}, appErr
	}
	spec, _ := coin.Spec()

	amount, appErr := valueobjects.ParseFiatAmount("fiat_amount", command.FiatAmount)
	if appErr != nil {
		return invoiceRequest{}, appErr
	}

	var prepaid valueobjects.FiatCents
	if strings.TrimSpace(command.PrepaidFromBalance) != "" {
		prepaid, appErr = valueobjects.ParseFiatAmount("prepaid_from_balance", command.PrepaidFromBalance)
		if appErr != nil {
			return invoiceRequest{}, appErr
		}
	}

	return invoiceRequest{
		ownerID: ownerID,
		kind:    kind,
		coin:    coin,
		spec:    spec,
		amount:  amount,
		prepaid: prepaid,
	}, nil
}

func (u *createInvoiceUseCase) openingNote(request invoiceRequest, price policies.InvoicePrice) string {
	if request.kind == valueobjects.TransactionKindTopUp {
		return fmt.Sprintf(
			"Top-up of %s %s. Service fee %s %s. Total due %s %s via %s.",
			price.CreditAmount,
			u.config.FiatCurrency,
			price.ServiceFee,
			u.config.FiatCurrency,
			price.AmountDue,
			u.config.FiatCurrency,
			request.coin,
		)
	}
	return fmt.Sprintf(
		"Purchase of %s %s. Service fee %s %s. Paid from balance %s %s. Total due %s %s via %s.",
		request.amount,
		u.config.FiatCurrency,
		price.ServiceFee,
		u.config.FiatCurrency,
		request.prepaid,
		u.config.FiatCurrency,
		price.AmountDue,
		u.config.FiatCurrency,
		request.coin,
	)
}

// failTransaction records the failed step on the transaction and returns the
// original error. A ledger failure here is logged, not returned.
func (u *createInvoiceUseCase) failTransaction(
	ctx context.Context,
	transaction entities.Transaction,
	status valueobjects.TransactionStatus,
	cause *apperrors.AppError,
) *apperrors.AppError {
	note := fmt.Sprintf("Invoice creation failed: %s.", cause.Code)
	if appErr := u.ledger.SetTransactionStatus(ctx, transaction.ID, status, note, u.clock.NowUTC()); appErr != nil {
		u.logf(
			"invoice create status_update_failed transaction_id=%s status=%s code=%s",
			transaction.ID,
			status,
			appErr.Code,
		)
	}
	u.logf(
		"invoice create failed transaction_id=%s owner_id=%s coin=%s status=%s code=%s message=%s",
		transaction.ID,
		transaction.OwnerID,
		transaction.Coin,
		status,
		cause.Code,
		cause.Message,
	)
	return cause
}

func (u *createInvoiceUseCase) validateDependencies() *apperrors.AppError {
	switch {
	case u.ledger == nil:
		return apperrors.NewInternal("payment_ledger_missing", "payment ledger is required", nil)
	case u.allocator == nil:
		return apperrors.NewInternal("address_index_allocator_missing", "address index allocator is required", nil)
	case u.deriver == nil:
		return apperrors.NewInternal("address_deriver_missing", "address deriver is required", nil)
	case u.rates == nil:
		return apperrors.NewInternal("exchange_rate_provider_missing", "exchange rate provider is required", nil)
	}
	return nil
}

func (u *createInvoiceUseCase) logf(format string, args ...any) {
	if u.logger == nil {
		return
	}
	u.logger.Printf(format, args...)
}
