package mnemonic

import (
	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

func signDigest(priv *btcec.PrivateKey, digest [32]byte) []byte {
	return btcecdsa.Sign(priv, digest[:]).Serialize()
}
