package whale

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"

	"virtuoso-gem-finder/internal/domain"
)

// wallet returns a deterministic on-curve address.
func wallet(i int) string {
	seed := make([]byte, ed25519.SeedSize)
	seed[0] = byte(i)
	seed[1] = byte(i >> 8)
	pub := ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey)
	return base58.Encode(pub)
}

// programAccount returns an address that is not on the ed25519 curve.
func programAccount() string {
	return base58.Encode(bytes.Repeat([]byte{0x02}, 32))
}

// trader builds a record with the given buy share of volume.
func trader(i int, volume float64, trades int, buyShare float64) domain.TraderRecord {
	return domain.TraderRecord{
		Address:    wallet(i),
		Volume:     volume,
		TradeCount: trades,
		BuyVolume:  volume * buyShare,
		SellVolume: volume * (1 - buyShare),
	}
}
