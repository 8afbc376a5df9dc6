package chainquery

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hdpay/internal/application/dto"
	portsout "hdpay/internal/application/ports/out"
	apperrors "hdpay/internal/shared_kernel/errors"
)

const (
	DefaultTronGridBaseURL      = "https://api.trongrid.io"
	DefaultUSDTTRC20Contract    = "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"
	tronGridAPIKeyHeader        = "TRON-PRO-API-KEY"
	defaultTronConfirmedSetting = 10
)

type TronGridConfig struct {
	BaseURL         string
	APIKey          string
	ContractAddress string
	// ConfirmedConfirmations is reported for transfers TronGrid flags as
	// confirmed; unconfirmed transfers report zero.
	ConfirmedConfirmations int
	HTTPTimeout            time.Duration
}

// TronGridClient reads inbound USDT TRC20 transfers for a tron address.
type TronGridClient struct {
	baseURL                string
	apiKey                 string
	contractAddress        string
	confirmedConfirmations int
	client                 explorerClient
}

type tronGridTransfers struct {
	Success *bool `json:"success"`
	Data    []struct {
		TransactionID  string `json:"transaction_id"`
		To             string `json:"to"`
		Value          string `json:"value"`
		Confirmed      bool   `json:"confirmed"`
		BlockTimestamp int64  `json:"block_timestamp"`
		TokenInfo      struct {
			Address string `json:"address"`
			Symbol  string `json:"symbol"`
		} `json:"token_info"`
	} `json:"data"`
}

func NewTronGridClient(cfg TronGridConfig, httpClient *http.Client) *TronGridClient {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultTronGridBaseURL
	}
	contract := strings.TrimSpace(cfg.ContractAddress)
	if contract == "" {
		contract = DefaultUSDTTRC20Contract
	}
	confirmed := cfg.ConfirmedConfirmations
	if confirmed <= 0 {
		confirmed = defaultTronConfirmedSetting
	}
	return &TronGridClient{
		baseURL:                baseURL,
		apiKey:                 strings.TrimSpace(cfg.APIKey),
		contractAddress:        contract,
		confirmedConfirmations: confirmed,
		client:                 newExplorerClient("trongrid", httpClient, cfg.HTTPTimeout),
	}
}

func (c *TronGridClient) InboundTransactions(
	ctx context.Context,
	query dto.InboundTransactionsQuery,
) ([]dto.InboundTransaction, *apperrors.AppError) {
	address := strings.TrimSpace(query.Address)

	params := url.Values{}
	params.Set("limit", "50")
	params.Set("contract_address", c.contractAddress)
	params.Set("only_to", "true")
	if !query.Since.IsZero() {
		params.Set("min_block_timestamp", strconv.FormatInt(query.Since.UnixMilli(), 10))
	}
	endpoint := c.baseURL + "/v1/accounts/" + url.PathEscape(address) + "/transactions/trc20?" + params.Encode()

	headers := map[string]string{}
	if c.apiKey != "" {
		headers[tronGridAPIKeyHeader] = c.apiKey
	}

	payload := tronGridTransfers{}
	if appErr := c.client.getJSON(ctx, endpoint, headers, &payload); appErr != nil {
		return nil, appErr
	}
	if payload.Success != nil && !*payload.Success {
		return nil, c.client.newError(portsout.ChainQueryErrorBadResponse, "trongrid reported an unsuccessful query", nil)
	}

	inbound := make([]dto.InboundTransaction, 0, len(payload.Data))
	for _, transfer := range payload.Data {
		if transfer.TransactionID == "" || transfer.To != address {
			continue
		}
		if transfer.TokenInfo.Address != c.contractAddress {
			continue
		}

		amount, err := strconv.ParseInt(strings.TrimSpace(transfer.Value), 10, 64)
		if err != nil || amount < 0 {
			return nil, c.client.newError(portsout.ChainQueryErrorBadResponse, "trongrid returned a malformed transfer value", map[string]any{
				"txid":  transfer.TransactionID,
				"value": transfer.Value,
			})
		}
		if amount == 0 {
			continue
		}

		confirmations := 0
		if transfer.Confirmed {
			confirmations = c.confirmedConfirmations
		}
		inbound = append(inbound, dto.InboundTransaction{
			TxID:          transfer.TransactionID,
			AmountMinor:   amount,
			Confirmations: confirmations,
		})
	}

	return inbound, nil
}
