package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/joxgallardo/sparkchat-sub001/internal/api/metrics"
	"github.com/joxgallardo/sparkchat-sub001/internal/core/domain"
	"github.com/joxgallardo/sparkchat-sub001/internal/core/ports"
)

// WalletService performs wallet operations against the payment network on
// behalf of a platform identity: resolve the binding, look up the wallet
// handle, let the gateway client present credentials and make the call.
// Gateway failures pass through unmodified so callers can judge
// retryability from the typed error.
type WalletService struct {
	identity ports.IdentityService
	gateway  ports.GatewayClient
	logger   zerolog.Logger
}

func NewWalletService(identity ports.IdentityService, gateway ports.GatewayClient, logger zerolog.Logger) *WalletService {
	return &WalletService{identity: identity, gateway: gateway, logger: logger}
}

// CreateInvoice creates an invoice on the external network for the wallet
// bound to platformID.
func (s *WalletService) CreateInvoice(ctx context.Context, platformID int64, amountMsats int64, memo string, expirySecs int64, idempotencyKey string) (*domain.Invoice, error) {
	if amountMsats <= 0 {
		return nil, fmt.Errorf("amount_msats must be positive, got %d", amountMsats)
	}
	if expirySecs <= 0 {
		return nil, fmt.Errorf("expiry_secs must be positive, got %d", expirySecs)
	}

	accountID, err := s.identity.ResolveAccount(ctx, platformID, "")
	if err != nil {
		return nil, err
	}
	cfg, err := s.identity.GetWalletConfig(ctx, accountID)
	if err != nil {
		return nil, err
	}

	invoice, err := s.gateway.CreateInvoice(ctx, ports.CreateInvoiceInput{
		WalletID:       cfg.WalletID,
		AmountMsats:    amountMsats,
		Memo:           memo,
		ExpirySecs:     expirySecs,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		metrics.GatewayErrorsTotal.WithLabelValues(string(s.gateway.Path())).Inc()
		return nil, err
	}

	metrics.InvoicesCreatedTotal.WithLabelValues(string(s.gateway.Path())).Inc()
	s.logger.Info().
		Str("account_id", accountID).
		Str("invoice_id", invoice.ID).
		Int64("amount_msats", amountMsats).
		Str("path", string(s.gateway.Path())).
		Msg("invoice created")
	return invoice, nil
}

// GetNodeStatus queries the network's node listing.
func (s *WalletService) GetNodeStatus(ctx context.Context) ([]domain.NodeStatus, error) {
	nodes, err := s.gateway.GetNodeStatus(ctx)
	if err != nil {
		metrics.GatewayErrorsTotal.WithLabelValues(string(s.gateway.Path())).Inc()
		return nil, err
	}
	return nodes, nil
}
