package ports

import (
	"context"
	"time"

	"github.com/joxgallardo/sparkchat-sub001/internal/core/domain"
)

// CreateInvoiceInput carries everything a gateway client needs for one
// invoice-creation call.
type CreateInvoiceInput struct {
	WalletID    string
	AmountMsats int64
	Memo        string
	ExpirySecs  int64
	// IdempotencyKey is forwarded to the network when supplied; the network
	// is the authority on replay semantics, this core never retries.
	IdempotencyKey string
}

// GatewayClient is the single capability both gateway variants implement.
// Callers are path-agnostic; failures are always *domain.GatewayError.
type GatewayClient interface {
	Path() domain.GatewayPath
	CreateInvoice(ctx context.Context, in CreateInvoiceInput) (*domain.Invoice, error)
	GetNodeStatus(ctx context.Context) ([]domain.NodeStatus, error)
}

// TokenIssuer mints the short-lived signed credentials presented to the
// payment network. Verification is the network's responsibility.
type TokenIssuer interface {
	Issue(subject, audience string, ttl time.Duration) (string, error)
}

// WalletService is the caller-facing wallet operation surface.
type WalletService interface {
	CreateInvoice(ctx context.Context, platformID int64, amountMsats int64, memo string, expirySecs int64, idempotencyKey string) (*domain.Invoice, error)
	GetNodeStatus(ctx context.Context) ([]domain.NodeStatus, error)
}
