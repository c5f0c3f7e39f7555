// Package keys owns the process signing key pair. Private material never
// leaves this boundary except through the signer interfaces that consume it.
package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/joxgallardo/sparkchat-sub001/internal/core/domain"
)

// KeyPair holds a loaded P-256 key pair. Immutable for process lifetime:
// there is no rotation path here.
type KeyPair struct {
	private *ecdsa.PrivateKey
}

// Generate produces a fresh P-256 key pair suitable for ES256 signing.
func Generate() (*KeyPair, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key pair: %w", err)
	}
	return &KeyPair{private: priv}, nil
}

// Load reconstructs a key pair from PEM-encoded EC private key material.
// Malformed encodings and non-P-256 curves fail with domain.ErrKeyMaterial.
func Load(pemBytes []byte) (*KeyPair, error) {
	if len(pemBytes) == 0 {
		return nil, fmt.Errorf("%w: empty key material", domain.ErrKeyMaterial)
	}
	priv, err := jwt.ParseECPrivateKeyFromPEM(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKeyMaterial, err)
	}
	if priv.Curve != elliptic.P256() {
		return nil, fmt.Errorf("%w: curve %s, want P-256", domain.ErrKeyMaterial, priv.Curve.Params().Name)
	}
	return &KeyPair{private: priv}, nil
}

// Private returns the signing key for use by the token issuer. Callers must
// not serialise it into logs or responses.
func (k *KeyPair) Private() *ecdsa.PrivateKey {
	return k.private
}

// Public returns the verification half of the pair.
func (k *KeyPair) Public() *ecdsa.PublicKey {
	return &k.private.PublicKey
}

// EncodePEM serialises the private key for persistence. The caller is
// responsible for writing it somewhere excluded from version control.
func (k *KeyPair) EncodePEM() ([]byte, error) {
	der, err := x509.MarshalECPrivateKey(k.private)
	if err != nil {
		return nil, fmt.Errorf("encode key pair: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}), nil
}
