package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/joxgallardo/sparkchat-sub001/internal/core/domain"
	"github.com/joxgallardo/sparkchat-sub001/internal/crypto/keys"
)

func newTestIssuer(t *testing.T) *Issuer {
	t.Helper()
	kp, err := keys.Generate()
	if err != nil {
		t.Fatalf("generate key pair: %v", err)
	}
	return New(kp, "sparkchat-test")
}

func TestIssue_ClaimsAndSignature(t *testing.T) {
	iss := newTestIssuer(t)
	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	iss.now = func() time.Time { return fixed }

	signed, err := iss.Issue("wallet-123", "https://api.example.com", 5*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(signed, &claims, func(tok *jwt.Token) (interface{}, error) {
		if tok.Method.Alg() != jwt.SigningMethodES256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return iss.keyPair.Public(), nil
	}, jwt.WithTimeFunc(func() time.Time { return fixed }))
	if err != nil || !parsed.Valid {
		t.Fatalf("token must verify with the public half: %v", err)
	}

	if claims.Issuer != "sparkchat-test" {
		t.Errorf("issuer = %q", claims.Issuer)
	}
	if claims.Subject != "wallet-123" {
		t.Errorf("subject = %q", claims.Subject)
	}
	if len(claims.Audience) != 1 || claims.Audience[0] != "https://api.example.com" {
		t.Errorf("audience = %v", claims.Audience)
	}
	if !claims.IssuedAt.Time.Equal(fixed) {
		t.Errorf("iat = %v, want %v", claims.IssuedAt.Time, fixed)
	}
	if !claims.ExpiresAt.Time.Equal(fixed.Add(5 * time.Minute)) {
		t.Errorf("exp = %v, want iat+ttl", claims.ExpiresAt.Time)
	}
	if claims.ID == "" {
		t.Error("jti nonce must be set")
	}
}

func TestIssue_SameSecondTokensDiffer(t *testing.T) {
	iss := newTestIssuer(t)
	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	iss.now = func() time.Time { return fixed }

	first, err := iss.Issue("wallet-123", "aud", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := iss.Issue("wallet-123", "aud", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first == second {
		t.Error("two tokens for the same subject in the same second must not share a signature")
	}
}

func TestIssue_NoKeyLoaded(t *testing.T) {
	iss := New(nil, "sparkchat-test")
	if iss.Loaded() {
		t.Error("issuer without key material must report unloaded")
	}

	_, err := iss.Issue("wallet-123", "aud", time.Minute)
	if !errors.Is(err, domain.ErrSigning) {
		t.Errorf("expected ErrSigning, got %v", err)
	}
}
