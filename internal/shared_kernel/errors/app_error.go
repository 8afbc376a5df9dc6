package apperrors

type Type string

const (
	TypeValidation  Type = "validation"
	TypeNotFound    Type = "not_found"
	TypeConflict    Type = "conflict"
	TypeUnavailable Type = "unavailable"
	TypeInternal    Type = "internal"
)

type AppError struct {
	Type    Type           `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

// HasCode reports whether e carries the given code. A nil error carries none.
func (e *AppError) HasCode(code string) bool {
	return e != nil && e.Code == code
}

func NewInternal(code, message string, details map[string]any) *AppError {
	return newAppError(TypeInternal, code, message, details)
}

func NewValidation(code, message string, details map[string]any) *AppError {
	return newAppError(TypeValidation, code, message, details)
}

func NewNotFound(code, message string, details map[string]any) *AppError {
	return newAppError(TypeNotFound, code, message, details)
}

func NewConflict(code, message string, details map[string]any) *AppError {
	return newAppError(TypeConflict, code, message, details)
}

// NewUnavailable marks a failure of an upstream dependency that is expected to
// clear on its own, such as a price feed or block explorer outage.
func NewUnavailable(code, message string, details map[string]any) *AppError {
	return newAppError(TypeUnavailable, code, message, details)
}

func newAppError(errType Type, code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:    errType,
		Code:    code,
		Message: message,
		Details: details,
	}
}
