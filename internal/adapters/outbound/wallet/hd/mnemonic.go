package hd

import (
	"strings"

	"github.com/tyler-smith/go-bip39"
)

var allowedWordCounts = map[int]struct{}{12: {}, 15: {}, 18: {}, 21: {}, 24: {}}

// NormalizeMnemonic collapses whitespace and lowercases the phrase.
func NormalizeMnemonic(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(raw), " "))
}

// ValidateMnemonic checks word count, wordlist membership and checksum.
func ValidateMnemonic(raw string) *KeyError {
	mnemonic := NormalizeMnemonic(raw)
	if mnemonic == "" {
		return wrapKeyError(CodeInvalidMnemonic, "mnemonic is empty", nil)
	}
	if _, ok := allowedWordCounts[len(strings.Fields(mnemonic))]; !ok {
		return wrapKeyError(CodeInvalidMnemonic, "mnemonic must have 12, 15, 18, 21 or 24 words", nil)
	}
	if _, err := bip39.EntropyFromMnemonic(mnemonic); err != nil {
		return wrapKeyError(CodeInvalidMnemonic, "mnemonic failed wordlist or checksum validation", err)
	}
	return nil
}

// SeedFromMnemonic validates the phrase and stretches it into a BIP39 seed
// with an empty passphrase.
func SeedFromMnemonic(raw string) ([]byte, *KeyError) {
	if keyErr := ValidateMnemonic(raw); keyErr != nil {
		return nil, keyErr
	}
	seed, err := bip39.NewSeedWithErrorChecking(NormalizeMnemonic(raw), "")
	if err != nil {
		return nil, wrapKeyError(CodeInvalidMnemonic, "mnemonic could not be converted to a seed", err)
	}
	return seed, nil
}
