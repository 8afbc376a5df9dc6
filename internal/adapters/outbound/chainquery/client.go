package chainquery

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	portsout "hdpay/internal/application/ports/out"
	apperrors "hdpay/internal/shared_kernel/errors"
)

const (
	DefaultHTTPTimeout = 15 * time.Second
	userAgent          = "hdpay/1.0"
	maxResponseBytes   = 4 << 20
)

type explorerClient struct {
	provider    string
	httpClient  *http.Client
	httpTimeout time.Duration
}

func newExplorerClient(provider string, httpClient *http.Client, httpTimeout time.Duration) explorerClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpTimeout <= 0 {
		httpTimeout = DefaultHTTPTimeout
	}
	return explorerClient{
		provider:    provider,
		httpClient:  httpClient,
		httpTimeout: httpTimeout,
	}
}

func (c explorerClient) getJSON(
	ctx context.Context,
	endpoint string,
	headers map[string]string,
	target any,
) *apperrors.AppError {
	body, appErr := c.get(ctx, endpoint, headers)
	if appErr != nil {
		return appErr
	}
	if err := json.Unmarshal(body, target); err != nil {
		return c.newError(portsout.ChainQueryErrorBadResponse, "explorer returned undecodable json", map[string]any{
			"error": err.Error(),
		})
	}
	return nil
}

func (c explorerClient) getText(ctx context.Context, endpoint string) (string, *apperrors.AppError) {
	body, appErr := c.get(ctx, endpoint, nil)
	if appErr != nil {
		return "", appErr
	}
	return strings.TrimSpace(string(body)), nil
}

func (c explorerClient) get(ctx context.Context, endpoint string, headers map[string]string) ([]byte, *apperrors.AppError) {
	requestCtx, cancel := context.WithTimeout(ctx, c.httpTimeout)
	defer cancel()

	request, err := http.NewRequestWithContext(requestCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, c.newError(portsout.ChainQueryErrorFailed, "failed to build explorer request", map[string]any{
			"error": err.Error(),
		})
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", userAgent)
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, c.transportError(err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return nil, c.transportError(err)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, c.newError(statusErrorCode(response.StatusCode), "explorer returned non-2xx status", map[string]any{
			"status_code": response.StatusCode,
		})
	}

	return body, nil
}

func (c explorerClient) transportError(err error) *apperrors.AppError {
	details := map[string]any{"error": err.Error()}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return c.newError(portsout.ChainQueryErrorTimeout, "explorer request timed out", details)
	}
	return c.newError(portsout.ChainQueryErrorUnavailable, "explorer could not be reached", details)
}

func (c explorerClient) newError(code string, message string, details map[string]any) *apperrors.AppError {
	if details == nil {
		details = map[string]any{}
	}
	details["provider"] = c.provider

	switch code {
	case portsout.ChainQueryErrorTimeout, portsout.ChainQueryErrorUnavailable, portsout.ChainQueryErrorRateLimited:
		return apperrors.NewUnavailable(code, message, details)
	case portsout.ChainQueryErrorInvalidAddress:
		return apperrors.NewValidation(code, message, details)
	default:
		return apperrors.NewInternal(code, message, details)
	}
}

// statusErrorCode maps an explorer HTTP status to the chain query error code.
func statusErrorCode(status int) string {
	switch {
	case status == http.StatusTooManyRequests:
		return portsout.ChainQueryErrorRateLimited
	case status == http.StatusBadRequest || status == http.StatusNotFound:
		return portsout.ChainQueryErrorInvalidAddress
	case status >= 500:
		return portsout.ChainQueryErrorUnavailable
	default:
		return portsout.ChainQueryErrorFailed
	}
}
