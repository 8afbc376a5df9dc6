package valueobjects

import (
	"strings"

	apperrors "hdpay/internal/shared_kernel/errors"
)

type Coin string

const (
	CoinBTC     Coin = "BTC"
	CoinLTC     Coin = "LTC"
	CoinUSDTTRX Coin = "USDT_TRX"
)

// HDCoin names the derivation tree an address is drawn from. Several payment
// coins may share one tree, so allocation counters are keyed by HDCoin.
type HDCoin string

const (
	HDCoinBTC HDCoin = "BTC"
	HDCoinLTC HDCoin = "LTC"
	HDCoinTRX HDCoin = "TRX"
)

type CoinSpec struct {
	Coin                    Coin
	HDCoin                  HDCoin
	BIP44CoinType           uint32
	Network                 string
	PriceSymbol             string
	Precision               int32
	URIPrefix               string
	DefaultMinConfirmations int
}

var coinCatalog = map[Coin]CoinSpec{
	CoinBTC: {
		Coin:                    CoinBTC,
		HDCoin:                  HDCoinBTC,
		BIP44CoinType:           0,
		Network:                 "BTC",
		PriceSymbol:             "BTC",
		Precision:               8,
		URIPrefix:               "bitcoin",
		DefaultMinConfirmations: 1,
	},
	CoinLTC: {
		Coin:                    CoinLTC,
		HDCoin:                  HDCoinLTC,
		BIP44CoinType:           2,
		Network:                 "LTC",
		PriceSymbol:             "LTC",
		Precision:               8,
		URIPrefix:               "litecoin",
		DefaultMinConfirmations: 3,
	},
	CoinUSDTTRX: {
		Coin:                    CoinUSDTTRX,
		HDCoin:                  HDCoinTRX,
		BIP44CoinType:           195,
		Network:                 "TRC20 (Tron)",
		PriceSymbol:             "USDT",
		Precision:               6,
		URIPrefix:               "tron",
		DefaultMinConfirmations: 10,
	},
}

var hdCoinTypes = map[HDCoin]uint32{
	HDCoinBTC: 0,
	HDCoinLTC: 2,
	HDCoinTRX: 195,
}

func ParseCoin(raw string) (Coin, *apperrors.AppError) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	if normalized == "USDT" || normalized == "USDT_TRC20" {
		normalized = string(CoinUSDTTRX)
	}

	coin := Coin(normalized)
	if _, ok := coinCatalog[coin]; !ok {
		return "", apperrors.NewValidation(
			"unsupported_coin",
			"coin is not supported",
			map[string]any{"field": "coin", "coin": raw},
		)
	}

	return coin, nil
}

func (c Coin) Spec() (CoinSpec, bool) {
	spec, ok := coinCatalog[c]
	return spec, ok
}

func (c Coin) String() string {
	return string(c)
}

func SupportedCoins() []Coin {
	return []Coin{CoinBTC, CoinLTC, CoinUSDTTRX}
}

func SupportedHDCoins() []HDCoin {
	return []HDCoin{HDCoinBTC, HDCoinLTC, HDCoinTRX}
}

func (h HDCoin) BIP44CoinType() (uint32, bool) {
	coinType, ok := hdCoinTypes[h]
	return coinType, ok
}

func ParseHDCoin(raw string) (HDCoin, *apperrors.AppError) {
	hdCoin := HDCoin(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := hdCoinTypes[hdCoin]; !ok {
		return "", apperrors.NewValidation(
			"unsupported_coin",
			"hd coin is not supported",
			map[string]any{"field": "coin", "coin": raw},
		)
	}
	return hdCoin, nil
}

func (h HDCoin) String() string {
	return string(h)
}

// PaymentURI renders a wallet payment link such as bitcoin:addr?amount=0.0025.
func (s CoinSpec) PaymentURI(address string, amount string) string {
	if amount == "" {
		return s.URIPrefix + ":" + address
	}
	return s.URIPrefix + ":" + address + "?amount=" + amount
}
