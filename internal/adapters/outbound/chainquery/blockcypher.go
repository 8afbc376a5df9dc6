package chainquery

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hdpay/internal/application/dto"
	portsout "hdpay/internal/application/ports/out"
	apperrors "hdpay/internal/shared_kernel/errors"
)

const DefaultBlockCypherBaseURL = "https://api.blockcypher.com/v1/ltc/main"

type BlockCypherConfig struct {
	BaseURL     string
	Token       string
	HTTPTimeout time.Duration
}

// BlockCypherClient reads litecoin transactions; confirmations are reported
// by the provider directly.
type BlockCypherClient struct {
	baseURL string
	token   string
	client  explorerClient
}

type blockCypherAddress struct {
	Txs []struct {
		Hash          string `json:"hash"`
		Confirmations int    `json:"confirmations"`
		Outputs       []struct {
			Value     int64    `json:"value"`
			Addresses []string `json:"addresses"`
		} `json:"outputs"`
	} `json:"txs"`
}

func NewBlockCypherClient(cfg BlockCypherConfig, httpClient *http.Client) *BlockCypherClient {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBlockCypherBaseURL
	}
	return &BlockCypherClient{
		baseURL: baseURL,
		token:   strings.TrimSpace(cfg.Token),
		client:  newExplorerClient("blockcypher", httpClient, cfg.HTTPTimeout),
	}
}

func (c *BlockCypherClient) InboundTransactions(
	ctx context.Context,
	query dto.InboundTransactionsQuery,
) ([]dto.InboundTransaction, *apperrors.AppError) {
	address := strings.TrimSpace(query.Address)

	params := url.Values{}
	params.Set("limit", "50")
	if c.token != "" {
		params.Set("token", c.token)
	}
	endpoint := c.baseURL + "/addrs/" + url.PathEscape(address) + "/full?" + params.Encode()

	payload := blockCypherAddress{}
	if appErr := c.client.getJSON(ctx, endpoint, nil, &payload); appErr != nil {
		return nil, appErr
	}

	inbound := make([]dto.InboundTransaction, 0, len(payload.Txs))
	for _, tx := range payload.Txs {
		var received int64
		for _, out := range tx.Outputs {
			if !containsAddress(out.Addresses, address) {
				continue
			}
			if out.Value < 0 {
				return nil, c.client.newError(portsout.ChainQueryErrorBadResponse, "explorer returned a negative output value", map[string]any{
					"txid": tx.Hash,
				})
			}
			received += out.Value
		}
		if received <= 0 || tx.Hash == "" {
			continue
		}

		confirmations := tx.Confirmations
		if confirmations < 0 {
			confirmations = 0
		}
		inbound = append(inbound, dto.InboundTransaction{
			TxID:          tx.Hash,
			AmountMinor:   received,
			Confirmations: confirmations,
		})
	}

	return inbound, nil
}

func containsAddress(addresses []string, address string) bool {
	for _, candidate := range addresses {
		if candidate == address {
			return true
		}
	}
	return false
}
