package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	portsout "hdpay/internal/application/ports/out"
	valueobjects "hdpay/internal/domain/value_objects"
	"hdpay/internal/infrastructure/ttlcache"
	apperrors "hdpay/internal/shared_kernel/errors"

	"github.com/shopspring/decimal"
)

const (
	DefaultBaseURL  = "https://api.coingecko.com/api/v3"
	DefaultTimeout  = 10 * time.Second
	DefaultCacheTTL = 5 * time.Minute
)

var coinIDs = map[valueobjects.Coin]string{
	valueobjects.CoinBTC:     "bitcoin",
	valueobjects.CoinLTC:     "litecoin",
	valueobjects.CoinUSDTTRX: "tether",
}

var supportedFiat = map[string]struct{}{"EUR": {}}

type Config struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Provider prices coins through the CoinGecko simple price endpoint and
// memoizes each (fiat, coin) pair for the cache TTL.
type Provider struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	cache      *ttlcache.Cache[string, decimal.Decimal]
	logger     *log.Logger
}

var _ portsout.ExchangeRateProvider = (*Provider)(nil)

func NewProvider(cfg Config, httpClient *http.Client, logger *log.Logger) *Provider {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Provider{
		baseURL:    baseURL,
		timeout:    timeout,
		httpClient: httpClient,
		cache:      ttlcache.New[string, decimal.Decimal](ttl),
		logger:     logger,
	}
}

func (p *Provider) Rate(ctx context.Context, fiat string, coin valueobjects.Coin) (decimal.Decimal, *apperrors.AppError) {
	fiat = strings.ToUpper(strings.TrimSpace(fiat))
	coinID, ok := coinIDs[coin]
	if _, fiatOK := supportedFiat[fiat]; !ok || !fiatOK {
		return decimal.Zero, apperrors.NewValidation(
			portsout.ExchangeRateErrorUnsupportedPair,
			"exchange rate pair is not supported",
			map[string]any{"fiat": fiat, "coin": coin.String()},
		)
	}

	cacheKey := fiat + "/" + coin.String()
	if rate, hit := p.cache.Get(cacheKey); hit {
		return rate, nil
	}

	rate, appErr := p.fetch(ctx, coinID, strings.ToLower(fiat))
	if appErr != nil {
		p.logf("exchange rate fetch failed fiat=%s coin=%s code=%s", fiat, coin, appErr.Code)
		return decimal.Zero, appErr
	}

	p.cache.Set(cacheKey, rate)
	p.logf("exchange rate refreshed fiat=%s coin=%s rate=%s", fiat, coin, rate)
	return rate, nil
}

func (p *Provider) fetch(ctx context.Context, coinID string, vsCurrency string) (decimal.Decimal, *apperrors.AppError) {
	requestCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("ids", coinID)
	params.Set("vs_currencies", vsCurrency)

	request, err := http.NewRequestWithContext(requestCtx, http.MethodGet, p.baseURL+"/simple/price?"+params.Encode(), nil)
	if err != nil {
		return decimal.Zero, p.unavailable("failed to build exchange rate request", err)
	}
	request.Header.Set("Accept", "application/json")

	response, err := p.httpClient.Do(request)
	if err != nil {
		return decimal.Zero, p.unavailable("exchange rate provider could not be reached", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return decimal.Zero, apperrors.NewUnavailable(
			portsout.ExchangeRateErrorUnavailable,
			"exchange rate provider returned non-200 status",
			map[string]any{"status_code": response.StatusCode},
		)
	}

	prices := map[string]map[string]decimal.Decimal{}
	if err := json.NewDecoder(response.Body).Decode(&prices); err != nil {
		return decimal.Zero, badResponse("exchange rate payload is not valid json", err)
	}

	rate, ok := prices[coinID][vsCurrency]
	if !ok {
		return decimal.Zero, badResponse("exchange rate payload has no price for pair", nil)
	}
	if !rate.IsPositive() {
		return decimal.Zero, badResponse("exchange rate must be positive", nil)
	}

	return rate, nil
}

// unavailable logs the transport error and leaves it out of the AppError;
// it names upstream hosts and addresses.
func (p *Provider) unavailable(message string, err error) *apperrors.AppError {
	p.logf("exchange rate transport error error=%v", err)
	details := map[string]any{"timeout": errors.Is(err, context.DeadlineExceeded)}
	return apperrors.NewUnavailable(portsout.ExchangeRateErrorUnavailable, message, details)
}

func badResponse(message string, err error) *apperrors.AppError {
	details := map[string]any{}
	if err != nil {
		details["error"] = err.Error()
	}
	return apperrors.NewInternal(portsout.ExchangeRateErrorBadResponse, message, details)
}

func (p *Provider) logf(format string, args ...any) {
	if p.logger == nil {
		return
	}
	p.logger.Printf(format, args...)
}
