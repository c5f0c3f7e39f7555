package ports

import (
	"context"
	"time"

	"github.com/joxgallardo/sparkchat-sub001/internal/core/domain"
)

// IdentityService binds platform identities to internal accounts.
type IdentityService interface {
	// ResolveAccount returns the account bound to the platform ID, creating
	// the binding on first contact. Race-free: concurrent first messages
	// from the same identity all observe the same account.
	ResolveAccount(ctx context.Context, platformID int64, displayName string) (string, error)
	// RegisterAccount explicitly sets or overwrites a binding and
	// invalidates any cached wallet config of the prior binding.
	RegisterAccount(ctx context.Context, platformID int64, accountID string) error
	// GetWalletConfig returns domain.ErrUnboundAccount when the account has
	// no provisioned wallet. It never mutates binding or session state.
	GetWalletConfig(ctx context.Context, accountID string) (*domain.WalletConfig, error)
	// ProvisionWallet stores the wallet handle for an account. Provisioning
	// decisions belong to an external collaborator; this core only keeps
	// the mapping.
	ProvisionWallet(ctx context.Context, accountID, walletID string) error
}

// SessionService tracks conversational session state per platform identity.
type SessionService interface {
	Touch(ctx context.Context, platformID int64) (*domain.Session, error)
	// Authenticate marks the session authenticated. It requires a prior
	// successful account resolution for the identity.
	Authenticate(ctx context.Context, platformID int64) error
	IsExpired(ctx context.Context, platformID int64, window time.Duration) (bool, error)
	SetPreference(ctx context.Context, platformID int64, key, value string) error
	Get(ctx context.Context, platformID int64) (*domain.Session, error)
}

// InboundMessage is the DTO handed from the transport layer to the message
// dispatcher. MessageID is the platform's own identifier, used for dedup.
type InboundMessage struct {
	PlatformID  int64
	MessageID   string
	DisplayName string
	Text        string
	ReceivedAt  time.Time
}

// MessageProcessor consumes inbound chat messages: resolve the identity
// binding, then touch the session, in that order.
type MessageProcessor interface {
	Process(ctx context.Context, msg InboundMessage) error
}
