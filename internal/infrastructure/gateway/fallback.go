package gateway

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/joxgallardo/sparkchat-sub001/internal/core/domain"
	"github.com/joxgallardo/sparkchat-sub001/internal/core/ports"
)

// Fallback wraps a primary client with a secondary used for idempotent
// reads only. Invoice creation never falls back: the two paths have
// different idempotency semantics and an uncontrolled retry on the other
// path could double-create an invoice. Enabling this wrapper is the
// caller's explicit opt-in (GATEWAY_READ_FALLBACK).
type Fallback struct {
	primary   ports.GatewayClient
	secondary ports.GatewayClient
	logger    zerolog.Logger
}

func NewFallback(primary, secondary ports.GatewayClient, logger zerolog.Logger) *Fallback {
	return &Fallback{primary: primary, secondary: secondary, logger: logger}
}

func (f *Fallback) Path() domain.GatewayPath {
	return f.primary.Path()
}

// CreateInvoice always uses the primary path.
func (f *Fallback) CreateInvoice(ctx context.Context, in ports.CreateInvoiceInput) (*domain.Invoice, error) {
	return f.primary.CreateInvoice(ctx, in)
}

// GetNodeStatus tries the primary path and falls back to the secondary on
// failure. Safe because the query has no side effects.
func (f *Fallback) GetNodeStatus(ctx context.Context) ([]domain.NodeStatus, error) {
	nodes, err := f.primary.GetNodeStatus(ctx)
	if err == nil {
		return nodes, nil
	}
	f.logger.Warn().Err(err).
		Str("primary", string(f.primary.Path())).
		Str("secondary", string(f.secondary.Path())).
		Msg("node status falling back to secondary path")
	return f.secondary.GetNodeStatus(ctx)
}
