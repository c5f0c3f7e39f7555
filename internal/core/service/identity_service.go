package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/joxgallardo/sparkchat-sub001/internal/core/domain"
	"github.com/joxgallardo/sparkchat-sub001/internal/core/ports"
)

// IdentityService maps platform identities to internal accounts and serves
// their wallet configuration. Binding creation is delegated to the store's
// insert-if-absent so concurrent first messages from a new identity can
// never create two accounts.
type IdentityService struct {
	bindings ports.BindingRepository
	wallets  ports.WalletConfigRepository
	logger   zerolog.Logger

	mu          sync.RWMutex
	walletCache map[string]*domain.WalletConfig
}

func NewIdentityService(bindings ports.BindingRepository, wallets ports.WalletConfigRepository, logger zerolog.Logger) *IdentityService {
	return &IdentityService{
		bindings:    bindings,
		wallets:     wallets,
		logger:      logger,
		walletCache: make(map[string]*domain.WalletConfig),
	}
}

// ResolveAccount returns the account bound to platformID, creating the
// binding on first contact. Losers of a first-contact race observe the
// winner's account.
func (s *IdentityService) ResolveAccount(ctx context.Context, platformID int64, displayName string) (string, error) {
	now := time.Now().UTC()

	existing, err := s.bindings.Find(ctx, platformID)
	if err == nil {
		if touchErr := s.bindings.TouchLastSeen(ctx, platformID, now); touchErr != nil {
			s.logger.Warn().Err(touchErr).Int64("platform_id", platformID).Msg("failed to update last_seen")
		}
		return existing.AccountID, nil
	}

	candidate := &domain.PlatformUser{
		PlatformID:  platformID,
		AccountID:   newAccountID(),
		DisplayName: displayName,
		IsActive:    true,
		CreatedAt:   now,
		LastSeen:    now,
	}
	bound, created, err := s.bindings.CreateIfAbsent(ctx, candidate)
	if err != nil {
		return "", err
	}
	if created {
		s.logger.Info().
			Int64("platform_id", platformID).
			Str("account_id", bound.AccountID).
			Msg("binding created on first contact")
	}
	return bound.AccountID, nil
}

// RegisterAccount explicitly sets or overwrites a binding (migration or
// administrative re-link) and drops the cached wallet config of the prior
// binding so stale handles can never be served.
func (s *IdentityService) RegisterAccount(ctx context.Context, platformID int64, accountID string) error {
	now := time.Now().UTC()

	prior, err := s.bindings.Find(ctx, platformID)
	user := &domain.PlatformUser{
		PlatformID: platformID,
		AccountID:  accountID,
		IsActive:   true,
		CreatedAt:  now,
		LastSeen:   now,
	}
	if err == nil {
		user.DisplayName = prior.DisplayName
		user.CreatedAt = prior.CreatedAt
	}

	if err := s.bindings.Overwrite(ctx, user); err != nil {
		return err
	}

	if prior != nil && prior.AccountID != accountID {
		s.mu.Lock()
		delete(s.walletCache, prior.AccountID)
		s.mu.Unlock()
	}

	s.logger.Info().
		Int64("platform_id", platformID).
		Str("account_id", accountID).
		Msg("binding registered")
	return nil
}

// GetWalletConfig serves the wallet handle for an account. Fails with
// domain.ErrUnboundAccount until provisioning happens; never mutates
// binding or session state.
func (s *IdentityService) GetWalletConfig(ctx context.Context, accountID string) (*domain.WalletConfig, error) {
	s.mu.RLock()
	cached, ok := s.walletCache[accountID]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	cfg, err := s.wallets.Find(ctx, accountID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.walletCache[accountID] = cfg
	s.mu.Unlock()
	return cfg, nil
}

// ProvisionWallet stores the wallet handle for an account and refreshes the
// cache.
func (s *IdentityService) ProvisionWallet(ctx context.Context, accountID, walletID string) error {
	cfg := &domain.WalletConfig{AccountID: accountID, WalletID: walletID}
	if err := s.wallets.Put(ctx, cfg); err != nil {
		return err
	}
	s.mu.Lock()
	s.walletCache[accountID] = cfg
	s.mu.Unlock()

	s.logger.Info().Str("account_id", accountID).Str("wallet_id", walletID).Msg("wallet provisioned")
	return nil
}

// newAccountID mints a fresh internal account identifier.
func newAccountID() string {
	return "acct-" + uuid.NewString()
}
