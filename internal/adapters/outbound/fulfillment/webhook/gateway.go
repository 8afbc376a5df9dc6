package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	cryptorand "crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hdpay/internal/application/dto"
	portsout "hdpay/internal/application/ports/out"
	apperrors "hdpay/internal/shared_kernel/errors"
)

const (
	DefaultTimeout     = 5 * time.Second
	EventTypeRelease   = "purchase.release_item"
	maxErrorBodyBytes  = 1024
	signatureVersionV1 = "v1"
	nonceByteLength    = 16
)

type Config struct {
	URL        string
	HMACSecret string
	Timeout    time.Duration
}

// Gateway releases purchased items by POSTing a signed event to the
// fulfillment service. The transaction id is sent as Idempotency-Key.
type Gateway struct {
	url        string
	hmacSecret string
	client     *http.Client
	now        func() time.Time
	logger     *log.Logger
}

var _ portsout.InventoryFulfillmentGateway = (*Gateway)(nil)

type releasePayload struct {
	EventType     string         `json:"event_type"`
	TransactionID string         `json:"transaction_id"`
	OwnerID       string         `json:"owner_id"`
	Coin          string         `json:"coin,omitempty"`
	Item          map[string]any `json:"item"`
	OccurredAt    time.Time      `json:"occurred_at"`
}

func NewGateway(cfg Config, client *http.Client, logger *log.Logger) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	return &Gateway{
		url:        strings.TrimSpace(cfg.URL),
		hmacSecret: strings.TrimSpace(cfg.HMACSecret),
		client:     client,
		now:        time.Now,
		logger:     logger,
	}
}

func (g *Gateway) ReleaseItem(ctx context.Context, input dto.ReleaseItemInput) *apperrors.AppError {
	if g.url == "" || g.hmacSecret == "" {
		return apperrors.NewInternal(
			"fulfillment_gateway_not_configured",
			"fulfillment webhook url and secret are required",
			nil,
		)
	}
	transactionID := strings.TrimSpace(input.TransactionID)
	if transactionID == "" {
		return apperrors.NewValidation(
			"fulfillment_transaction_missing",
			"transaction id is required to release an item",
			nil,
		)
	}

	item := input.ItemDetails
	if item == nil {
		item = map[string]any{}
	}
	now := g.now().UTC()
	body, err := json.Marshal(releasePayload{
		EventType:     EventTypeRelease,
		TransactionID: transactionID,
		OwnerID:       input.OwnerID,
		Coin:          input.Coin,
		Item:          item,
		OccurredAt:    now,
	})
	if err != nil {
		return apperrors.NewInternal(
			"fulfillment_payload_encode_failed",
			"failed to encode fulfillment payload",
			map[string]any{"error": err.Error()},
		)
	}

	timestamp := strconv.FormatInt(now.Unix(), 10)
	nonce, err := webhookNonce()
	if err != nil {
		return apperrors.NewInternal(
			"fulfillment_nonce_generation_failed",
			"failed to generate webhook nonce",
			map[string]any{"error": err.Error()},
		)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return apperrors.NewInternal(
			"fulfillment_request_build_failed",
			"failed to build fulfillment request",
			map[string]any{"error": err.Error()},
		)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Idempotency-Key", transactionID)
	request.Header.Set("X-Hdpay-Event-Type", EventTypeRelease)
	request.Header.Set("X-Hdpay-Timestamp", timestamp)
	request.Header.Set("X-Hdpay-Nonce", nonce)
	request.Header.Set("X-Hdpay-Signature-Version", signatureVersionV1)
	request.Header.Set("X-Hdpay-Signature-V1", "sha256="+webhookV1Signature(g.hmacSecret, timestamp, nonce, transactionID, EventTypeRelease, body))

	response, err := g.client.Do(request)
	if err != nil {
		g.logf("fulfillment delivery failed transaction_id=%s error=%v", transactionID, err)
		return apperrors.NewUnavailable(
			"fulfillment_unavailable",
			"fulfillment service could not be reached",
			map[string]any{"transaction_id": transactionID},
		)
	}
	defer response.Body.Close()

	// 409 means the receiver already processed this idempotency key.
	if (response.StatusCode >= 200 && response.StatusCode <= 299) || response.StatusCode == http.StatusConflict {
		g.logf("item released transaction_id=%s status_code=%d", transactionID, response.StatusCode)
		return nil
	}

	bodyPreview := ""
	raw, readErr := io.ReadAll(io.LimitReader(response.Body, maxErrorBodyBytes))
	if readErr == nil {
		bodyPreview = strings.TrimSpace(string(raw))
	}
	g.logf("fulfillment rejected transaction_id=%s status_code=%d body=%q", transactionID, response.StatusCode, bodyPreview)

	details := map[string]any{"transaction_id": transactionID, "status_code": response.StatusCode}
	if response.StatusCode >= 500 || response.StatusCode == http.StatusTooManyRequests {
		return apperrors.NewUnavailable("fulfillment_unavailable", "fulfillment service is unavailable", details)
	}
	return apperrors.NewInternal("fulfillment_rejected", "fulfillment service rejected the release", details)
}

func (g *Gateway) logf(format string, args ...any) {
	if g.logger == nil {
		return
	}
	g.logger.Printf(format, args...)
}

func webhookNonce() (string, error) {
	raw := make([]byte, nonceByteLength)
	if _, err := cryptorand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

func webhookV1Signature(
	secret string,
	timestamp string,
	nonce string,
	idempotencyKey string,
	eventType string,
	body []byte,
) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(timestamp))
	_, _ = mac.Write([]byte("."))
	_, _ = mac.Write([]byte(nonce))
	_, _ = mac.Write([]byte("."))
	_, _ = mac.Write([]byte(idempotencyKey))
	_, _ = mac.Write([]byte("."))
	_, _ = mac.Write([]byte(eventType))
	_, _ = mac.Write([]byte("."))
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// BuildExpectedSignatureV1Header lets receivers and tests recompute the
// signature header for a delivered body.
func BuildExpectedSignatureV1Header(
	secret string,
	timestamp string,
	nonce string,
	idempotencyKey string,
	eventType string,
	body []byte,
) string {
	return fmt.Sprintf("sha256=%s", webhookV1Signature(secret, timestamp, nonce, idempotencyKey, eventType, body))
}
