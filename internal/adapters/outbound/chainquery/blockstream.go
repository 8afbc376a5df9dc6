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

const DefaultBlockstreamBaseURL = "https://blockstream.info/api"

type BlockstreamConfig struct {
	BaseURL string
	// ConfirmedFallback is reported for a confirmed tx when the chain tip
	// cannot be read.
	ConfirmedFallback int
	HTTPTimeout       time.Duration
}

// BlockstreamClient reads bitcoin transactions from an Esplora API.
type BlockstreamClient struct {
	baseURL           string
	confirmedFallback int
	client            explorerClient
}

type esploraTx struct {
	TxID   string `json:"txid"`
	Status struct {
		Confirmed   bool   `json:"confirmed"`
		BlockHeight *int64 `json:"block_height"`
	} `json:"status"`
	Vout []struct {
		ScriptPubKeyAddress string `json:"scriptpubkey_address"`
		Value               int64  `json:"value"`
	} `json:"vout"`
}

func NewBlockstreamClient(cfg BlockstreamConfig, httpClient *http.Client) *BlockstreamClient {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBlockstreamBaseURL
	}
	fallback := cfg.ConfirmedFallback
	if fallback <= 0 {
		fallback = 1
	}
	return &BlockstreamClient{
		baseURL:           baseURL,
		confirmedFallback: fallback,
		client:            newExplorerClient("blockstream", httpClient, cfg.HTTPTimeout),
	}
}

func (c *BlockstreamClient) InboundTransactions(
	ctx context.Context,
	query dto.InboundTransactionsQuery,
) ([]dto.InboundTransaction, *apperrors.AppError) {
	address := strings.TrimSpace(query.Address)

	txs := []esploraTx{}
	if appErr := c.client.getJSON(ctx, c.baseURL+"/address/"+url.PathEscape(address)+"/txs", nil, &txs); appErr != nil {
		return nil, appErr
	}

	tipHeight, tipKnown := c.tipHeight(ctx)

	inbound := make([]dto.InboundTransaction, 0, len(txs))
	for _, tx := range txs {
		var received int64
		for _, out := range tx.Vout {
			if out.ScriptPubKeyAddress != address {
				continue
			}
			if out.Value < 0 {
				return nil, c.client.newError(portsout.ChainQueryErrorBadResponse, "explorer returned a negative output value", map[string]any{
					"txid": tx.TxID,
				})
			}
			received += out.Value
		}
		if received <= 0 || tx.TxID == "" {
			continue
		}

		confirmations := 0
		if tx.Status.Confirmed {
			confirmations = c.confirmedFallback
			if tipKnown && tx.Status.BlockHeight != nil && tipHeight >= *tx.Status.BlockHeight {
				confirmations = int(tipHeight-*tx.Status.BlockHeight) + 1
			}
		}

		inbound = append(inbound, dto.InboundTransaction{
			TxID:          tx.TxID,
			AmountMinor:   received,
			Confirmations: confirmations,
		})
	}

	return inbound, nil
}

// tipHeight is best effort; a failure only degrades confirmation accuracy.
func (c *BlockstreamClient) tipHeight(ctx context.Context) (int64, bool) {
	raw, appErr := c.client.getText(ctx, c.baseURL+"/blocks/tip/height")
	if appErr != nil {
		return 0, false
	}
	height, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || height < 0 {
		return 0, false
	}
	return height, true
}
