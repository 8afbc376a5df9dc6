package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	apperrors "hdpay/internal/shared_kernel/errors"
)

const (
	ExitSuccess      = 0
	ExitFailure      = 1
	ExitCommandError = 2
	ExitMismatch     = 3
)

type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns ExitFailure for errors that carry no explicit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

type field struct {
	key   string
	value any
}

type outputFormatter struct {
	format string
	writer io.Writer
}

type cliResponse struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *cliError `json:"error,omitempty"`
}

type cliError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// success writes data as JSON, or the fields as key=value lines in text mode.
func (f outputFormatter) success(data any, fields []field) error {
	if f.format == "json" {
		return json.NewEncoder(f.writer).Encode(cliResponse{Status: "ok", Data: data})
	}
	for _, entry := range fields {
		if _, err := fmt.Fprintf(f.writer, "%s=%v\n", entry.key, entry.value); err != nil {
			return err
		}
	}
	return nil
}

// appError reports a use case failure and returns an exit error for it.
func (f outputFormatter) appError(appErr *apperrors.AppError) error {
	if f.format == "json" {
		_ = json.NewEncoder(f.writer).Encode(cliResponse{
			Status: "error",
			Error: &cliError{
				Code:    appErr.Code,
				Message: appErr.Message,
				Details: appErr.Details,
			},
		})
	} else {
		fmt.Fprintf(f.writer, "error [%s]: %s\n", appErr.Code, appErr.Message)
	}

	code := ExitFailure
	if appErr.Type == apperrors.TypeValidation {
		code = ExitCommandError
	}
	return &ExitError{Code: code, Message: appErr.Code}
}
