package use_cases

import valueobjects "hdpay/internal/domain/value_objects"

// ConfirmationThresholds holds the minimum confirmation count per coin. Coins
// missing from the map fall back to the coin catalog default.
type ConfirmationThresholds map[valueobjects.Coin]int

func (t ConfirmationThresholds) For(coin valueobjects.Coin) int {
	if value, ok := t[coin]; ok {
		return value
	}
	spec, ok := coin.Spec()
	if !ok {
		return 1
	}
	return spec.DefaultMinConfirmations
}
