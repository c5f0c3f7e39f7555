package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"testing"

	"github.com/joxgallardo/sparkchat-sub001/internal/core/domain"
)

func TestGenerate(t *testing.T) {
	kp, err := Generate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kp.Private().Curve != elliptic.P256() {
		t.Errorf("expected P-256, got %s", kp.Private().Curve.Params().Name)
	}
	if kp.Public() == nil {
		t.Fatal("public half must be available")
	}
}

func TestEncodeLoad_RoundTrip(t *testing.T) {
	kp, err := Generate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pemBytes, err := kp.EncodePEM()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	loaded, err := Load(pemBytes)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !loaded.Private().Equal(kp.Private()) {
		t.Error("round-tripped key differs from original")
	}
}

func TestLoad_MalformedMaterial(t *testing.T) {
	cases := []struct {
		name string
		pem  []byte
	}{
		{"empty", nil},
		{"garbage", []byte("definitely not pem")},
		{"wrong block type", pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte{0x01}})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(tc.pem)
			if !errors.Is(err, domain.ErrKeyMaterial) {
				t.Errorf("expected ErrKeyMaterial, got %v", err)
			}
		})
	}
}

func TestLoad_WrongCurve(t *testing.T) {
	p384, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	if err != nil {
		t.Fatalf("generate p384: %v", err)
	}
	der, err := x509.MarshalECPrivateKey(p384)
	if err != nil {
		t.Fatalf("marshal p384: %v", err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})

	_, err = Load(pemBytes)
	if !errors.Is(err, domain.ErrKeyMaterial) {
		t.Errorf("expected ErrKeyMaterial for non-P-256 key, got %v", err)
	}
}
