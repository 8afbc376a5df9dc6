//go:build !integration

package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hdpay/internal/application/dto"
)

func TestReleaseItemSignsRequest(t *testing.T) {
	const secret = "fulfillment-secret"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Idempotency-Key"); got != "tx_1" {
			t.Errorf("expected idempotency key tx_1, got %s", got)
		}
		if got := r.Header.Get("X-Hdpay-Event-Type"); got != EventTypeRelease {
			t.Errorf("expected event type header, got %s", got)
		}
		timestamp := r.Header.Get("X-Hdpay-Timestamp")
		nonce := r.Header.Get("X-Hdpay-Nonce")
		if timestamp != "1772366400" || len(nonce) != 2*nonceByteLength {
			t.Errorf("unexpected timestamp/nonce %s/%s", timestamp, nonce)
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("failed to read body: %v", err)
		}
		expected := BuildExpectedSignatureV1Header(secret, timestamp, nonce, "tx_1", EventTypeRelease, body)
		if got := r.Header.Get("X-Hdpay-Signature-V1"); got != expected {
			t.Errorf("expected signature %s, got %s", expected, got)
		}

		payload := map[string]any{}
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("expected json body, got %v", err)
		}
		if payload["owner_id"] != "owner-1" || payload["coin"] != "LTC" {
			t.Errorf("unexpected payload %+v", payload)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	gateway := NewGateway(Config{URL: server.URL, HMACSecret: secret}, nil, nil)
	gateway.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	appErr := gateway.ReleaseItem(context.Background(), dto.ReleaseItemInput{
		TransactionID: "tx_1",
		OwnerID:       "owner-1",
		Coin:          "LTC",
		ItemDetails:   map[string]any{"sku": "item-7"},
	})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}
}

func TestReleaseItemStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		code   string
	}{
		{status: http.StatusConflict, code: ""},
		{status: http.StatusBadGateway, code: "fulfillment_unavailable"},
		{status: http.StatusTooManyRequests, code: "fulfillment_unavailable"},
		{status: http.StatusUnprocessableEntity, code: "fulfillment_rejected"},
	}

	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte("nope"))
		}))

		gateway := NewGateway(Config{URL: server.URL, HMACSecret: "secret"}, nil, nil)
		appErr := gateway.ReleaseItem(context.Background(), dto.ReleaseItemInput{TransactionID: "tx_1"})
		server.Close()

		if tc.code == "" {
			if appErr != nil {
				t.Fatalf("expected status %d to count as released, got %+v", tc.status, appErr)
			}
			continue
		}
		if appErr == nil || appErr.Code != tc.code {
			t.Fatalf("expected %s for status %d, got %+v", tc.code, tc.status, appErr)
		}
	}
}

func TestReleaseItemRequiresConfiguration(t *testing.T) {
	gateway := NewGateway(Config{URL: "http://127.0.0.1:1"}, nil, nil)
	appErr := gateway.ReleaseItem(context.Background(), dto.ReleaseItemInput{TransactionID: "tx_1"})
	if appErr == nil || appErr.Code != "fulfillment_gateway_not_configured" {
		t.Fatalf("expected fulfillment_gateway_not_configured, got %+v", appErr)
	}

	gateway = NewGateway(Config{URL: "http://127.0.0.1:1", HMACSecret: "s"}, nil, nil)
	appErr = gateway.ReleaseItem(context.Background(), dto.ReleaseItemInput{TransactionID: " "})
	if appErr == nil || appErr.Code != "fulfillment_transaction_missing" {
		t.Fatalf("expected fulfillment_transaction_missing, got %+v", appErr)
	}
}

func TestLogGatewayRecordsRelease(t *testing.T) {
	var buffer bytes.Buffer
	gateway := NewLogGateway(log.New(&buffer, "", 0))

	if appErr := gateway.ReleaseItem(context.Background(), dto.ReleaseItemInput{TransactionID: "tx_9", OwnerID: "owner-1"}); appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}
	if !strings.Contains(buffer.String(), "transaction_id=tx_9") {
		t.Fatalf("expected release to be logged, got %q", buffer.String())
	}
}
