package policies

import (
	valueobjects "hdpay/internal/domain/value_objects"
	apperrors "hdpay/internal/shared_kernel/errors"
)

type PricingRules struct {
	TopUpServiceFee    valueobjects.FiatCents
	PurchaseServiceFee valueobjects.FiatCents
	MaxTopUp           valueobjects.FiatCents
}

type InvoicePrice struct {
	// AmountDue is what the payer must send in crypto.
	AmountDue valueobjects.FiatCents
	// CreditAmount is added to the owner's balance once a top-up settles.
	CreditAmount valueobjects.FiatCents
	ServiceFee   valueobjects.FiatCents
}

// PriceInvoice applies service fees and the balance pre-payment. For a top-up
// the requested amount is credited and the fee is paid on top. For a purchase
// the fee is added to the item price and any balance pre-payment is deducted.
func PriceInvoice(
	kind valueobjects.TransactionKind,
	amount valueobjects.FiatCents,
	prepaid valueobjects.FiatCents,
	rules PricingRules,
) (InvoicePrice, *apperrors.AppError) {
	if amount <= 0 {
		return InvoicePrice{}, apperrors.NewValidation(
			"invalid_request",
			"fiat_amount must be greater than zero",
			map[string]any{"field": "fiat_amount"},
		)
	}
	if prepaid < 0 {
		return InvoicePrice{}, apperrors.NewValidation(
			"invalid_request",
			"prepaid_from_balance must not be negative",
			map[string]any{"field": "prepaid_from_balance"},
		)
	}

	switch kind {
	case valueobjects.TransactionKindTopUp:
		if prepaid > 0 {
			return InvoicePrice{}, apperrors.NewValidation(
				"invalid_request",
				"prepaid_from_balance is only allowed for purchases",
				map[string]any{"field": "prepaid_from_balance"},
			)
		}
		if rules.MaxTopUp > 0 && amount > rules.MaxTopUp {
			return InvoicePrice{}, apperrors.NewValidation(
				"top_up_limit_exceeded",
				"fiat_amount exceeds the maximum top-up",
				map[string]any{"field": "fiat_amount", "max": rules.MaxTopUp.String()},
			)
		}
		return InvoicePrice{
			AmountDue:    amount + rules.TopUpServiceFee,
			CreditAmount: amount,
			ServiceFee:   rules.TopUpServiceFee,
		}, nil
	case valueobjects.TransactionKindPurchase:
		total := amount + rules.PurchaseServiceFee
		if prepaid >= total {
			return InvoicePrice{}, apperrors.NewValidation(
				"invalid_request",
				"prepaid_from_balance covers the whole price, no crypto invoice is needed",
				map[string]any{"field": "prepaid_from_balance"},
			)
		}
		return InvoicePrice{
			AmountDue:  total - prepaid,
			ServiceFee: rules.PurchaseServiceFee,
		}, nil
	default:
		return InvoicePrice{}, apperrors.NewValidation(
			"invalid_request",
			"kind must be top_up or purchase",
			map[string]any{"field": "kind"},
		)
	}
}
