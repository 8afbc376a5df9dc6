package hd

import (
	valueobjects "hdpay/internal/domain/value_objects"

	"github.com/btcsuite/btcd/btcec"
	"github.com/btcsuite/btcutil"
	"github.com/btcsuite/btcutil/base58"
	"golang.org/x/crypto/sha3"
)

const (
	bitcoinP2PKHVersion  byte = 0x00
	litecoinP2PKHVersion byte = 0x30
	tronAddressVersion   byte = 0x41
)

type addressEncoder func(pub *btcec.PublicKey) string

var addressEncoders = map[valueobjects.HDCoin]addressEncoder{
	valueobjects.HDCoinBTC: p2pkhEncoder(bitcoinP2PKHVersion),
	valueobjects.HDCoinLTC: p2pkhEncoder(litecoinP2PKHVersion),
	valueobjects.HDCoinTRX: tronAddress,
}

func p2pkhEncoder(version byte) addressEncoder {
	return func(pub *btcec.PublicKey) string {
		return base58.CheckEncode(btcutil.Hash160(pub.SerializeCompressed()), version)
	}
}

// tronAddress hashes the uncompressed key without its 0x04 prefix and keeps
// the last 20 bytes, the same account id an Ethereum address would use.
func tronAddress(pub *btcec.PublicKey) string {
	uncompressed := pub.SerializeUncompressed()
	hash := sha3.NewLegacyKeccak256()
	_, _ = hash.Write(uncompressed[1:])
	digest := hash.Sum(nil)
	return base58.CheckEncode(digest[len(digest)-20:], tronAddressVersion)
}
