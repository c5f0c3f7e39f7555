// Package gateway implements the payment-network clients. Two variants sit
// behind ports.GatewayClient — a direct signed-REST client and a client
// speaking the network SDK's GraphQL wire protocol — and both normalise
// their responses into the same domain shapes. The variants have different
// credential and idempotency semantics, so nothing here falls back from one
// path to the other on its own; see Fallback for the explicit opt-in.
package gateway

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	decodepay "github.com/nbd-wtf/ln-decodepay"
	"github.com/rs/zerolog"

	"github.com/joxgallardo/sparkchat-sub001/internal/core/domain"
	"github.com/joxgallardo/sparkchat-sub001/internal/core/ports"
	"github.com/joxgallardo/sparkchat-sub001/internal/pkg/config"
)

// New selects the configured client variant.
func New(cfg *config.GatewayConfig, issuer ports.TokenIssuer, tokenAudience string, tokenTTL time.Duration, logger zerolog.Logger) (ports.GatewayClient, error) {
	httpClient := &http.Client{Timeout: time.Duration(cfg.TimeoutSecs) * time.Second}
	creds := &credentials{issuer: issuer, audience: tokenAudience, ttl: tokenTTL}

	switch strings.ToLower(cfg.Mode) {
	case "rest":
		return NewRESTClient(cfg.BaseURL, httpClient, creds, logger), nil
	case "sdk":
		return NewSDKClient(cfg.BaseURL, httpClient, creds, logger), nil
	default:
		return nil, fmt.Errorf("unknown gateway mode %q (want rest or sdk)", cfg.Mode)
	}
}

// credentials mints a fresh short-lived bearer token per call, scoped to
// the wallet being operated on.
type credentials struct {
	issuer   ports.TokenIssuer
	audience string
	ttl      time.Duration
}

func (c *credentials) bearer(subject string) (string, error) {
	tok, err := c.issuer.Issue(subject, c.audience, c.ttl)
	if err != nil {
		return "", fmt.Errorf("issue gateway credential: %w", err)
	}
	return tok, nil
}

// upstreamError builds the typed error for a non-2xx response. The body is
// truncated: upstream messages are diagnostics, not payloads.
func upstreamError(path domain.GatewayPath, status int, body []byte) *domain.GatewayError {
	const maxMsg = 512
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxMsg {
		msg = msg[:maxMsg]
	}
	return &domain.GatewayError{Path: path, UpstreamStatus: status, Message: msg}
}

// transportError wraps a request that never completed (timeout, connection
// reset). UpstreamStatus 0 tells the caller the side effect may still have
// happened.
func transportError(path domain.GatewayPath, err error) *domain.GatewayError {
	return &domain.GatewayError{Path: path, UpstreamStatus: 0, Message: err.Error()}
}

func readBody(resp *http.Response) []byte {
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	return body
}

// annotateFromBolt11 decodes the returned payment request and fills in the
// payment hash. Decode failures are non-fatal: the invoice is already
// created upstream, annotation is best-effort.
func annotateFromBolt11(inv *domain.Invoice, logger zerolog.Logger) {
	if inv.EncodedPaymentRequest == "" {
		return
	}
	bolt11, err := decodepay.Decodepay(inv.EncodedPaymentRequest)
	if err != nil {
		logger.Debug().Err(err).Str("invoice_id", inv.ID).Msg("payment request not decodable")
		return
	}
	inv.PaymentHash = bolt11.PaymentHash
	if bolt11.MSatoshi != 0 && inv.AmountMsats != 0 && bolt11.MSatoshi != inv.AmountMsats {
		logger.Warn().
			Str("invoice_id", inv.ID).
			Int64("requested_msats", inv.AmountMsats).
			Int64("encoded_msats", bolt11.MSatoshi).
			Msg("payment request amount differs from requested amount")
	}
}

// normalizeStatus maps upstream invoice status strings onto the local enum.
func normalizeStatus(s string) domain.InvoiceStatus {
	switch strings.ToUpper(s) {
	case "CREATED", "SUCCESS", "OPEN":
		return domain.InvoiceCreated
	case "FAILED", "CANCELLED", "ERROR":
		return domain.InvoiceFailed
	default:
		return domain.InvoicePending
	}
}

func parseCreatedAt(raw string) time.Time {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return time.Now().UTC()
}
