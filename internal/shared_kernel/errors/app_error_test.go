//go:build !integration

package apperrors

import "testing"

func TestAppErrorHasCode(t *testing.T) {
	var nilErr *AppError
	if nilErr.HasCode("anything") {
		t.Fatalf("expected nil error to carry no code")
	}
	if nilErr.Error() != "" {
		t.Fatalf("expected empty message for nil error")
	}

	appErr := NewUnavailable("exchange_rate_unavailable", "price feed down", nil)
	if !appErr.HasCode("exchange_rate_unavailable") {
		t.Fatalf("expected code match")
	}
	if appErr.Type != TypeUnavailable {
		t.Fatalf("expected unavailable type, got %s", appErr.Type)
	}
}
