//go:build !integration

package coingecko

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"testing"

	portsout "hdpay/internal/application/ports/out"
	valueobjects "hdpay/internal/domain/value_objects"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const priceURL = "https://gecko.test/api/v3/simple/price"

func mockedClient(t *testing.T) *http.Client {
	t.Helper()
	client := &http.Client{}
	httpmock.ActivateNonDefault(client)
	t.Cleanup(httpmock.DeactivateAndReset)
	return client
}

func TestRateFetchesAndCaches(t *testing.T) {
	client := mockedClient(t)
	httpmock.RegisterResponder(http.MethodGet, priceURL,
		func(request *http.Request) (*http.Response, error) {
			query := request.URL.Query()
			if query.Get("ids") != "bitcoin" || query.Get("vs_currencies") != "eur" {
				return httpmock.NewStringResponse(http.StatusBadRequest, `{}`), nil
			}
			return httpmock.NewStringResponse(http.StatusOK, `{"bitcoin":{"eur":20000.55}}`), nil
		})

	provider := NewProvider(Config{BaseURL: "https://gecko.test/api/v3/"}, client, nil)

	rate, appErr := provider.Rate(context.Background(), "eur", valueobjects.CoinBTC)
	require.Nil(t, appErr)
	assert.Equal(t, "20000.55", rate.String())

	again, appErr := provider.Rate(context.Background(), "EUR", valueobjects.CoinBTC)
	require.Nil(t, appErr)
	assert.True(t, rate.Equal(again))
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestRateRejectsUnsupportedPair(t *testing.T) {
	provider := NewProvider(Config{}, &http.Client{}, nil)

	_, appErr := provider.Rate(context.Background(), "USD", valueobjects.CoinBTC)
	require.NotNil(t, appErr)
	assert.Equal(t, portsout.ExchangeRateErrorUnsupportedPair, appErr.Code)

	_, appErr = provider.Rate(context.Background(), "EUR", valueobjects.Coin("DOGE"))
	require.NotNil(t, appErr)
	assert.Equal(t, portsout.ExchangeRateErrorUnsupportedPair, appErr.Code)
}

func TestRateMapsProviderFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		code   string
	}{
		{name: "server error", status: http.StatusBadGateway, body: `oops`, code: portsout.ExchangeRateErrorUnavailable},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{}`, code: portsout.ExchangeRateErrorUnavailable},
		{name: "malformed json", status: http.StatusOK, body: `{"tether":`, code: portsout.ExchangeRateErrorBadResponse},
		{name: "missing pair", status: http.StatusOK, body: `{"bitcoin":{"eur":1}}`, code: portsout.ExchangeRateErrorBadResponse},
		{name: "zero price", status: http.StatusOK, body: `{"tether":{"eur":0}}`, code: portsout.ExchangeRateErrorBadResponse},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := mockedClient(t)
			httpmock.RegisterResponder(http.MethodGet, priceURL, httpmock.NewStringResponder(tc.status, tc.body))

			provider := NewProvider(Config{BaseURL: "https://gecko.test/api/v3"}, client, nil)
			_, appErr := provider.Rate(context.Background(), "EUR", valueobjects.CoinUSDTTRX)
			require.NotNil(t, appErr)
			assert.Equal(t, tc.code, appErr.Code)
		})
	}
}

func TestRateFailureIsNotCached(t *testing.T) {
	client := mockedClient(t)
	httpmock.RegisterResponder(http.MethodGet, priceURL, httpmock.NewStringResponder(http.StatusServiceUnavailable, ``))

	provider := NewProvider(Config{BaseURL: "https://gecko.test/api/v3"}, client, nil)
	_, appErr := provider.Rate(context.Background(), "EUR", valueobjects.CoinLTC)
	require.NotNil(t, appErr)

	httpmock.RegisterResponder(http.MethodGet, priceURL, httpmock.NewStringResponder(http.StatusOK, `{"litecoin":{"eur":71.2}}`))
	rate, appErr := provider.Rate(context.Background(), "EUR", valueobjects.CoinLTC)
	require.Nil(t, appErr)
	assert.Equal(t, "71.2", rate.String())
}

func TestRateTransportErrorStaysInLogs(t *testing.T) {
	client := mockedClient(t)
	httpmock.RegisterResponder(http.MethodGet, priceURL,
		httpmock.NewErrorResponder(errors.New("dial tcp 10.0.0.7:443: connect: connection refused")))

	var logs bytes.Buffer
	provider := NewProvider(Config{BaseURL: "https://gecko.test/api/v3"}, client, log.New(&logs, "", 0))
	_, appErr := provider.Rate(context.Background(), "EUR", valueobjects.CoinBTC)
	require.NotNil(t, appErr)

	assert.Equal(t, portsout.ExchangeRateErrorUnavailable, appErr.Code)
	assert.NotContains(t, appErr.Details, "error")
	assert.NotContains(t, appErr.Message, "10.0.0.7")
	assert.Contains(t, logs.String(), "connection refused")
}
