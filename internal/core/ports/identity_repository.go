package ports

import (
	"context"
	"time"

	"github.com/joxgallardo/sparkchat-sub001/internal/core/domain"
)

// BindingRepository persists the platform-identity → account bindings.
// Implementations must make CreateIfAbsent atomic: under concurrent first
// contact for the same platform ID, at most one binding is created and all
// callers observe the winner.
type BindingRepository interface {
	Find(ctx context.Context, platformID int64) (*domain.PlatformUser, error)
	// CreateIfAbsent inserts the binding unless one already exists for the
	// platform ID, in which case the existing binding is returned with
	// created=false.
	CreateIfAbsent(ctx context.Context, user *domain.PlatformUser) (*domain.PlatformUser, bool, error)
	// Overwrite replaces the binding unconditionally (administrative re-link).
	Overwrite(ctx context.Context, user *domain.PlatformUser) error
	// TouchLastSeen advances last_seen; no-op if the binding is missing.
	TouchLastSeen(ctx context.Context, platformID int64, at time.Time) error
	Deactivate(ctx context.Context, platformID int64) error
}

// WalletConfigRepository stores the external wallet handle per account.
type WalletConfigRepository interface {
	// Find returns domain.ErrUnboundAccount when no wallet is provisioned.
	Find(ctx context.Context, accountID string) (*domain.WalletConfig, error)
	Put(ctx context.Context, cfg *domain.WalletConfig) error
}

// SessionRepository persists per-identity session records. Updates are
// atomic per platform ID: no reader may observe a half-updated record.
type SessionRepository interface {
	Find(ctx context.Context, platformID int64) (*domain.Session, error)
	// Touch advances last_activity, creating an unauthenticated session
	// if none exists, and returns the resulting record.
	Touch(ctx context.Context, platformID int64, accountID string, at time.Time) (*domain.Session, error)
	SetAuthenticated(ctx context.Context, platformID int64, authenticated bool) error
	SetPreference(ctx context.Context, platformID int64, key, value string) error
}
