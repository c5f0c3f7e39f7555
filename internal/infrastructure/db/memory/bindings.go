// Package memory provides in-memory implementations of the persistence
// ports, used by tests and single-instance development deployments. They
// honour the same atomicity contracts as the durable implementations.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/joxgallardo/sparkchat-sub001/internal/core/domain"
)

// BindingRepository is a mutex-guarded binding table. CreateIfAbsent is the
// compare-and-set that makes concurrent first contact race-free.
type BindingRepository struct {
	mu    sync.Mutex
	users map[int64]*domain.PlatformUser
}

func NewBindingRepository() *BindingRepository {
	return &BindingRepository{users: make(map[int64]*domain.PlatformUser)}
}

func (r *BindingRepository) Find(_ context.Context, platformID int64) (*domain.PlatformUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[platformID]
	if !ok {
		return nil, domain.ErrBindingNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *BindingRepository) CreateIfAbsent(_ context.Context, user *domain.PlatformUser) (*domain.PlatformUser, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.users[user.PlatformID]; ok {
		clone := *existing
		return &clone, false, nil
	}
	clone := *user
	r.users[user.PlatformID] = &clone
	out := clone
	return &out, true, nil
}

func (r *BindingRepository) Overwrite(_ context.Context, user *domain.PlatformUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *user
	r.users[user.PlatformID] = &clone
	return nil
}

func (r *BindingRepository) TouchLastSeen(_ context.Context, platformID int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[platformID]; ok && at.After(u.LastSeen) {
		u.LastSeen = at
	}
	return nil
}

func (r *BindingRepository) Deactivate(_ context.Context, platformID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[platformID]
	if !ok {
		return domain.ErrBindingNotFound
	}
	u.IsActive = false
	return nil
}

// WalletConfigRepository is a mutex-guarded account → wallet handle table.
type WalletConfigRepository struct {
	mu      sync.RWMutex
	configs map[string]*domain.WalletConfig
}

func NewWalletConfigRepository() *WalletConfigRepository {
	return &WalletConfigRepository{configs: make(map[string]*domain.WalletConfig)}
}

func (r *WalletConfigRepository) Find(_ context.Context, accountID string) (*domain.WalletConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[accountID]
	if !ok {
		return nil, domain.ErrUnboundAccount
	}
	clone := *cfg
	return &clone, nil
}

func (r *WalletConfigRepository) Put(_ context.Context, cfg *domain.WalletConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *cfg
	r.configs[cfg.AccountID] = &clone
	return nil
}
