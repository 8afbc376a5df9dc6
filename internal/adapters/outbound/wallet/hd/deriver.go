package hd

import (
	"log"

	portsout "hdpay/internal/application/ports/out"
	valueobjects "hdpay/internal/domain/value_objects"
	apperrors "hdpay/internal/shared_kernel/errors"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcutil/hdkeychain"
)

const (
	purposeBIP44  = 44
	accountIndex  = 0
	chainExternal = 0
)

// Deriver turns (coin, index) into a receiving address on m/44'/coin'/0'/0/index.
// Only the neutered external chain key of each HD coin is kept after
// construction.
type Deriver struct {
	chainKeys map[valueobjects.HDCoin]*hdkeychain.ExtendedKey
	logger    *log.Logger
}

var _ portsout.AddressDeriver = (*Deriver)(nil)

func NewDeriver(mnemonic string, logger *log.Logger) (*Deriver, *KeyError) {
	seed, keyErr := SeedFromMnemonic(mnemonic)
	if keyErr != nil {
		return nil, keyErr
	}

	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, wrapKeyError(CodeKeyMaterialBroken, "failed to build master key", err)
	}

	chainKeys := make(map[valueobjects.HDCoin]*hdkeychain.ExtendedKey)
	for _, hdCoin := range valueobjects.SupportedHDCoins() {
		coinType, _ := hdCoin.BIP44CoinType()
		chainKey, keyErr := externalChainKey(master, coinType)
		if keyErr != nil {
			return nil, keyErr
		}
		chainKeys[hdCoin] = chainKey
	}

	if logger != nil {
		logger.Printf("hd deriver ready coins=%d", len(chainKeys))
	}
	return &Deriver{chainKeys: chainKeys, logger: logger}, nil
}

func externalChainKey(master *hdkeychain.ExtendedKey, coinType uint32) (*hdkeychain.ExtendedKey, *KeyError) {
	path := []uint32{
		hdkeychain.HardenedKeyStart + purposeBIP44,
		hdkeychain.HardenedKeyStart + coinType,
		hdkeychain.HardenedKeyStart + accountIndex,
		chainExternal,
	}

	key := master
	for _, step := range path {
		child, err := key.Child(step)
		if err != nil {
			return nil, wrapKeyError(CodeKeyMaterialBroken, "failed to derive account chain", err)
		}
		key = child
	}

	neutered, err := key.Neuter()
	if err != nil {
		return nil, wrapKeyError(CodeKeyMaterialBroken, "failed to neuter account chain", err)
	}
	return neutered, nil
}

func (d *Deriver) DeriveAddress(coin valueobjects.Coin, index int64) (string, *apperrors.AppError) {
	details := map[string]any{"coin": coin.String(), "index": index}

	address, keyErr := d.derive(coin, index)
	if keyErr != nil {
		if d.logger != nil {
			d.logger.Printf("address derivation failed coin=%s index=%d code=%s", coin, index, keyErr.Code)
		}
		return "", toAppError(keyErr, details)
	}
	return address, nil
}

func (d *Deriver) derive(coin valueobjects.Coin, index int64) (string, *KeyError) {
	spec, ok := coin.Spec()
	if !ok {
		return "", wrapKeyError(CodeUnsupportedCoin, "coin is not supported", nil)
	}
	if index < 0 || index >= int64(hdkeychain.HardenedKeyStart) {
		return "", wrapKeyError(CodeIndexOutOfRange, "derivation index must be in [0, 2^31)", nil)
	}

	chainKey, ok := d.chainKeys[spec.HDCoin]
	encode, hasEncoder := addressEncoders[spec.HDCoin]
	if !ok || !hasEncoder {
		return "", wrapKeyError(CodeUnsupportedCoin, "coin has no derivation chain", nil)
	}

	child, err := chainKey.Child(uint32(index))
	if err != nil {
		return "", wrapKeyError(CodeDerivationFailed, "failed to derive child key", err)
	}
	pub, err := child.ECPubKey()
	if err != nil {
		return "", wrapKeyError(CodeDerivationFailed, "failed to read child public key", err)
	}

	return encode(pub), nil
}
