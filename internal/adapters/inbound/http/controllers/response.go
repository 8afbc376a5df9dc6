package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	apperrors "hdpay/internal/shared_kernel/errors"
)

const unavailableMessage = "service temporarily unavailable, try again shortly"

type errorResponse struct {
	Error errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// writeJSON marks every API response as uncacheable; invoice state moves
// with each confirmation.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func statusForAppError(appErr *apperrors.AppError) int {
	switch appErr.Type {
	case apperrors.TypeValidation:
		return http.StatusBadRequest
	case apperrors.TypeNotFound:
		return http.StatusNotFound
	case apperrors.TypeConflict:
		return http.StatusConflict
	case apperrors.TypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeAppError(w http.ResponseWriter, appErr *apperrors.AppError) {
	status := statusForAppError(appErr)

	message := appErr.Message
	details := appErr.Details
	// Internal and upstream failures may carry driver or transport text.
	switch appErr.Type {
	case apperrors.TypeInternal, "":
		message = "internal error"
		details = nil
	case apperrors.TypeUnavailable:
		message = unavailableMessage
		details = nil
	}

	writeJSON(w, status, errorResponse{
		Error: errorEnvelope{
			Code:    appErr.Code,
			Message: message,
			Details: details,
		},
	})
}

func logRequestError(logger *log.Logger, r *http.Request, path string, appErr *apperrors.AppError) {
	if logger == nil {
		return
	}
	logger.Printf(
		"request error path=%s method=%s status=%d code=%s message=%s",
		path,
		r.Method,
		statusForAppError(appErr),
		appErr.Code,
		appErr.Message,
	)
}
