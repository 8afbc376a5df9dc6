package valueobjects

import (
	"strings"

	apperrors "hdpay/internal/shared_kernel/errors"

	"github.com/shopspring/decimal"
)

const fiatScale int32 = 2

// FiatCents is a euro amount in cents. Ledger columns store fiat values this way
// so that balance arithmetic stays in integers.
type FiatCents int64

var centsPerUnit = decimal.New(1, fiatScale)

// ParseFiatAmount accepts a non-negative decimal string with at most two
// fractional digits.
func ParseFiatAmount(field string, raw string) (FiatCents, *apperrors.AppError) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, apperrors.NewValidation(
			"invalid_request",
			field+" is required",
			map[string]any{"field": field},
		)
	}

	amount, err := decimal.NewFromString(value)
	if err != nil {
		return 0, apperrors.NewValidation(
			"invalid_request",
			field+" must be a decimal number",
			map[string]any{"field": field},
		)
	}
	if amount.IsNegative() {
		return 0, apperrors.NewValidation(
			"invalid_request",
			field+" must not be negative",
			map[string]any{"field": field},
		)
	}
	if !amount.Equal(amount.Truncate(fiatScale)) {
		return 0, apperrors.NewValidation(
			"invalid_request",
			field+" must have at most two decimal places",
			map[string]any{"field": field},
		)
	}

	return FiatCentsFromDecimal(amount), nil
}

func FiatCentsFromDecimal(amount decimal.Decimal) FiatCents {
	return FiatCents(amount.Mul(centsPerUnit).Round(0).IntPart())
}

func (c FiatCents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -fiatScale)
}

func (c FiatCents) String() string {
	return c.Decimal().StringFixed(fiatScale)
}

// ToSmallestUnitCeil converts a fiat amount into the coin's smallest unit at the
// given price, rounding any remainder up to the next whole unit.
func ToSmallestUnitCeil(fiat FiatCents, rate decimal.Decimal, precision int32) (int64, *apperrors.AppError) {
	if !rate.IsPositive() {
		return 0, apperrors.NewInternal(
			"exchange_rate_invalid",
			"exchange rate must be positive",
			map[string]any{"rate": rate.String()},
		)
	}

	scaled := fiat.Decimal().Shift(precision)
	quotient, remainder := scaled.QuoRem(rate, 0)
	if remainder.Sign() > 0 {
		quotient = quotient.Add(decimal.NewFromInt(1))
	}
	if !quotient.IsInteger() || quotient.GreaterThan(decimal.NewFromInt(maxInt64)) {
		return 0, apperrors.NewInternal(
			"crypto_amount_out_of_range",
			"converted crypto amount is out of range",
			map[string]any{"fiat": fiat.String(), "rate": rate.String()},
		)
	}

	return quotient.IntPart(), nil
}

const maxInt64 = int64(^uint64(0) >> 1)

// FormatMinor renders a smallest-unit amount as a decimal coin amount.
func FormatMinor(minor int64, precision int32) string {
	return decimal.New(minor, -precision).StringFixed(precision)
}
