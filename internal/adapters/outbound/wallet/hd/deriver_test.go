//go:build !integration

package hd

import (
	"strings"
	"testing"

	valueobjects "hdpay/internal/domain/value_objects"
	apperrors "hdpay/internal/shared_kernel/errors"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func newTestDeriver(t *testing.T) *Deriver {
	t.Helper()
	deriver, keyErr := NewDeriver(testMnemonic, nil)
	if keyErr != nil {
		t.Fatalf("expected deriver, got %v", keyErr)
	}
	return deriver
}

func TestDeriverKnownVectors(t *testing.T) {
	deriver := newTestDeriver(t)

	cases := []struct {
		coin valueobjects.Coin
		want string
	}{
		{coin: valueobjects.CoinBTC, want: "1LqBGSKuX5yYUonjxT5qGfpUsXKYYWeabA"},
		{coin: valueobjects.CoinLTC, want: "LUWPbpM43E2p7ZSh8cyTBEkvpHmr3cB8Ez"},
		{coin: valueobjects.CoinUSDTTRX, want: "TUEZSdKsoDHQMeZwihtdoBiN46zxhGWYdH"},
	}

	for _, tc := range cases {
		t.Run(tc.coin.String(), func(t *testing.T) {
			address, appErr := deriver.DeriveAddress(tc.coin, 0)
			if appErr != nil {
				t.Fatalf("expected no error, got %+v", appErr)
			}
			if address != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, address)
			}
		})
	}
}

func TestDeriverPrefixesPerCoin(t *testing.T) {
	deriver := newTestDeriver(t)

	cases := map[valueobjects.Coin]string{
		valueobjects.CoinBTC:     "1",
		valueobjects.CoinLTC:     "L",
		valueobjects.CoinUSDTTRX: "T",
	}
	for coin, prefix := range cases {
		address, appErr := deriver.DeriveAddress(coin, 7)
		if appErr != nil {
			t.Fatalf("%s: expected no error, got %+v", coin, appErr)
		}
		if !strings.HasPrefix(address, prefix) {
			t.Fatalf("%s: expected prefix %s, got %s", coin, prefix, address)
		}
		if coin == valueobjects.CoinUSDTTRX && len(address) != 34 {
			t.Fatalf("expected 34 character tron address, got %s", address)
		}
	}
}

func TestDeriverIsDeterministicAndIndexSensitive(t *testing.T) {
	first := newTestDeriver(t)
	second := newTestDeriver(t)

	seen := map[string]int64{}
	for index := int64(0); index < 5; index++ {
		a, _ := first.DeriveAddress(valueobjects.CoinLTC, index)
		b, _ := second.DeriveAddress(valueobjects.CoinLTC, index)
		if a != b {
			t.Fatalf("index %d: expected identical addresses, got %s and %s", index, a, b)
		}
		if previous, dup := seen[a]; dup {
			t.Fatalf("index %d repeats address of index %d", index, previous)
		}
		seen[a] = index
	}
}

func TestDeriverRejectsOutOfRangeIndex(t *testing.T) {
	deriver := newTestDeriver(t)

	for _, index := range []int64{-1, 1 << 31} {
		_, appErr := deriver.DeriveAddress(valueobjects.CoinBTC, index)
		if appErr == nil || appErr.Code != string(CodeIndexOutOfRange) {
			t.Fatalf("index %d: expected %s, got %+v", index, CodeIndexOutOfRange, appErr)
		}
		if appErr.Type != apperrors.TypeValidation {
			t.Fatalf("expected validation type, got %s", appErr.Type)
		}
	}
}

func TestDeriverRejectsUnknownCoin(t *testing.T) {
	deriver := newTestDeriver(t)

	_, appErr := deriver.DeriveAddress(valueobjects.Coin("DOGE"), 0)
	if appErr == nil || appErr.Code != string(CodeUnsupportedCoin) {
		t.Fatalf("expected unsupported coin, got %+v", appErr)
	}
}

func TestNewDeriverRejectsBadMnemonic(t *testing.T) {
	_, keyErr := NewDeriver("abandon abandon abandon", nil)
	if keyErr == nil || keyErr.Code != CodeInvalidMnemonic {
		t.Fatalf("expected invalid mnemonic, got %v", keyErr)
	}
}
