//go:build !integration

package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"hdpay/internal/application/use_cases"
	apperrors "hdpay/internal/shared_kernel/errors"
)

type fakeReadiness struct {
	err *apperrors.AppError
}

func (f fakeReadiness) CheckReadiness(context.Context) *apperrors.AppError {
	return f.err
}

func TestHealthControllerGetHealth(t *testing.T) {
	controller := NewHealthController(use_cases.NewGetHealthUseCase(fakeReadiness{}), log.New(io.Discard, "", 0))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	controller.GetHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("expected valid JSON body, got error: %v", err)
	}

	status, ok := payload["status"].(string)
	if !ok || status != "ok" {
		t.Fatalf("expected JSON field status=ok, got %v", payload["status"])
	}
}

func TestHealthControllerDegradedReturns503(t *testing.T) {
	readiness := fakeReadiness{err: apperrors.NewUnavailable("db_connect_failed", "database is not reachable", nil)}
	controller := NewHealthController(use_cases.NewGetHealthUseCase(readiness), log.New(io.Discard, "", 0))

	rec := httptest.NewRecorder()
	controller.GetHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
	if cacheControl := rec.Header().Get("Cache-Control"); cacheControl != "no-store" {
		t.Fatalf("expected no-store cache control, got %q", cacheControl)
	}

	var payload struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("expected valid JSON body, got error: %v", err)
	}
	if payload.Status != "degraded" || payload.Checks["database"] != "db_connect_failed" {
		t.Fatalf("expected degraded database check, got %+v", payload)
	}
}
