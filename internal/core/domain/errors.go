package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMnemonic means the recovery phrase failed wordlist or
	// checksum validation. Fatal to the operation, not to the process.
	ErrInvalidMnemonic = errors.New("invalid mnemonic phrase")
	// ErrKeyMaterial means signing key material is missing or malformed.
	ErrKeyMaterial = errors.New("invalid key material")
	// ErrSigning means a token was requested with no key pair loaded.
	ErrSigning = errors.New("no signing key loaded")
	// ErrUnboundAccount means a wallet config was requested before the
	// account's wallet was provisioned.
	ErrUnboundAccount = errors.New("account has no provisioned wallet")
	// ErrBindingNotFound means no platform identity binding exists.
	ErrBindingNotFound = errors.New("binding not found")
	// ErrSessionNotFound means no session record exists for the identity.
	ErrSessionNotFound = errors.New("session not found")
)

// GatewayPath identifies which client variant performed a gateway call.
type GatewayPath string

const (
	PathSDK  GatewayPath = "SDK"
	PathREST GatewayPath = "REST"
)

// GatewayError is a typed failure from the external payment network. It
// always carries the failed path's identity and the upstream status so the
// caller can decide retryability; this core never retries on its own.
type GatewayError struct {
	Path           GatewayPath
	UpstreamStatus int
	Message        string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s call failed (status %d): %s", e.Path, e.UpstreamStatus, e.Message)
}

// Retryable reports whether the upstream failure looks transient. A status
// of 0 means the request never completed (timeout, connection reset) and the
// external side effect must be assumed possible.
func (e *GatewayError) Retryable() bool {
	return e.UpstreamStatus == 0 || e.UpstreamStatus >= 500
}
