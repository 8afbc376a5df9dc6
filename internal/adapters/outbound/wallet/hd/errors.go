package hd

import (
	"fmt"

	apperrors "hdpay/internal/shared_kernel/errors"
)

type ErrorCode string

const (
	CodeInvalidMnemonic   ErrorCode = "invalid_mnemonic"
	CodeUnsupportedCoin   ErrorCode = "unsupported_coin"
	CodeIndexOutOfRange   ErrorCode = "derivation_index_out_of_range"
	CodeDerivationFailed  ErrorCode = "address_derivation_failed"
	CodeKeyMaterialBroken ErrorCode = "invalid_key_material"
)

type KeyError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *KeyError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *KeyError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func wrapKeyError(code ErrorCode, message string, cause error) *KeyError {
	return &KeyError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func toAppError(keyErr *KeyError, details map[string]any) *apperrors.AppError {
	if keyErr == nil {
		return nil
	}
	if details == nil {
		details = map[string]any{}
	}
	if keyErr.Cause != nil {
		details["cause"] = keyErr.Cause.Error()
	}

	switch keyErr.Code {
	case CodeUnsupportedCoin, CodeIndexOutOfRange:
		return apperrors.NewValidation(string(keyErr.Code), keyErr.Message, details)
	case CodeInvalidMnemonic, CodeKeyMaterialBroken, CodeDerivationFailed:
		return apperrors.NewInternal(string(keyErr.Code), keyErr.Message, details)
	default:
		return apperrors.NewInternal(string(CodeDerivationFailed), keyErr.Message, details)
	}
}
