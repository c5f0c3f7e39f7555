// Package token issues the short-lived ES256 credentials presented to the
// payment network's authentication boundary. Tokens live for minutes and
// are never persisted; verification belongs to the network, not this core.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/joxgallardo/sparkchat-sub001/internal/core/domain"
	"github.com/joxgallardo/sparkchat-sub001/internal/crypto/keys"
)

// Issuer signs claim sets with the process key pair. The zero issuer (nil
// key pair) is valid to construct — every Issue call then fails with
// domain.ErrSigning, so a missing signing key blocks credentialed calls
// without crashing unrelated subsystems.
type Issuer struct {
	keyPair *keys.KeyPair
	issuer  string
	now     func() time.Time
}

// New returns an Issuer. keyPair may be nil when no key material was
// configured.
func New(keyPair *keys.KeyPair, issuerName string) *Issuer {
	return &Issuer{keyPair: keyPair, issuer: issuerName, now: time.Now}
}

// Loaded reports whether signing key material is available.
func (i *Issuer) Loaded() bool {
	return i.keyPair != nil
}

// Issue builds registered claims (iat = now, exp = now + ttl) and signs
// their canonical encoding with ES256. The jti nonce guarantees two tokens
// for the same subject never share a signature, even within one second.
func (i *Issuer) Issue(subject, audience string, ttl time.Duration) (string, error) {
	if i.keyPair == nil {
		return "", domain.ErrSigning
	}
	now := i.now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    i.issuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(i.keyPair.Private())
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
