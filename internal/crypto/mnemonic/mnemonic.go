// Package mnemonic derives the wallet seed and spending key from a BIP-39
// recovery phrase. Derivation is deterministic: the same phrase always
// yields the identical 64-byte seed, which is the sole root of spending-key
// derivation.
package mnemonic

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"

	"github.com/joxgallardo/sparkchat-sub001/internal/core/domain"
)

// SeedSize is the byte length of a derived seed.
const SeedSize = 64

// DeriveSeed converts a recovery phrase into its 64-byte binary seed.
// The phrase must pass BIP-39 wordlist and checksum validation. A string
// with no whitespace cannot be a phrase at all and fails fast with its own
// diagnostic rather than being hashed into a garbage seed.
func DeriveSeed(phrase string) ([]byte, error) {
	trimmed := strings.TrimSpace(phrase)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty phrase", domain.ErrInvalidMnemonic)
	}
	if !strings.ContainsAny(trimmed, " \t\n") {
		return nil, fmt.Errorf("%w: single token, not a word sequence", domain.ErrInvalidMnemonic)
	}
	seed, err := bip39.NewSeedWithErrorChecking(trimmed, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidMnemonic, err)
	}
	return seed, nil
}

// SpendKey is the secp256k1 spending key derived from a seed. The private
// half stays inside the credential layer; only the compressed public key is
// meant to cross the boundary.
type SpendKey struct {
	master *bip32.Key
	priv   *btcec.PrivateKey
}

// DeriveSpendKey derives the wallet spending key from a seed (BIP-32 master
// key, secp256k1). The seed must be exactly SeedSize bytes.
func DeriveSpendKey(seed []byte) (*SpendKey, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("%w: seed is %d bytes, want %d", domain.ErrKeyMaterial, len(seed), SeedSize)
	}
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKeyMaterial, err)
	}
	priv, _ := btcec.PrivKeyFromBytes(master.Key)
	return &SpendKey{master: master, priv: priv}, nil
}

// PublicKeyHex returns the compressed secp256k1 public key as hex.
func (k *SpendKey) PublicKeyHex() string {
	return hex.EncodeToString(k.priv.PubKey().SerializeCompressed())
}

// Sign produces a deterministic ECDSA signature over a 32-byte digest,
// DER-encoded. Used when the network expects spend-key-signed requests
// instead of issued tokens.
func (k *SpendKey) Sign(digest [32]byte) []byte {
	return signDigest(k.priv, digest)
}

// SeedPreview returns a truncated hex prefix of a seed, safe for
// diagnostics. Never log the full seed.
func SeedPreview(seed []byte) string {
	const previewBytes = 4
	if len(seed) < previewBytes {
		return hex.EncodeToString(seed)
	}
	return hex.EncodeToString(seed[:previewBytes]) + "…"
}
