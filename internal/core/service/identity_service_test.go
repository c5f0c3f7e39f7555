package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/joxgallardo/sparkchat-sub001/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubBindingRepo struct {
	mu      sync.Mutex
	users   map[int64]*domain.PlatformUser
	creates int // number of CreateIfAbsent calls that actually inserted
}

func newStubBindingRepo() *stubBindingRepo {
	return &stubBindingRepo{users: make(map[int64]*domain.PlatformUser)}
}

func (r *stubBindingRepo) Find(_ context.Context, platformID int64) (*domain.PlatformUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[platformID]
	if !ok {
		return nil, domain.ErrBindingNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubBindingRepo) CreateIfAbsent(_ context.Context, user *domain.PlatformUser) (*domain.PlatformUser, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.users[user.PlatformID]; ok {
		clone := *existing
		return &clone, false, nil
	}
	clone := *user
	r.users[user.PlatformID] = &clone
	r.creates++
	out := clone
	return &out, true, nil
}

func (r *stubBindingRepo) Overwrite(_ context.Context, user *domain.PlatformUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *user
	r.users[user.PlatformID] = &clone
	return nil
}

func (r *stubBindingRepo) TouchLastSeen(_ context.Context, platformID int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[platformID]; ok && at.After(u.LastSeen) {
		u.LastSeen = at
	}
	return nil
}

func (r *stubBindingRepo) Deactivate(_ context.Context, platformID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[platformID]
	if !ok {
		return domain.ErrBindingNotFound
	}
	u.IsActive = false
	return nil
}

type stubWalletRepo struct {
	mu      sync.Mutex
	configs map[string]*domain.WalletConfig
	finds   int
}

func newStubWalletRepo() *stubWalletRepo {
	return &stubWalletRepo{configs: make(map[string]*domain.WalletConfig)}
}

func (r *stubWalletRepo) Find(_ context.Context, accountID string) (*domain.WalletConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	cfg, ok := r.configs[accountID]
	if !ok {
		return nil, domain.ErrUnboundAccount
	}
	clone := *cfg
	return &clone, nil
}

func (r *stubWalletRepo) Put(_ context.Context, cfg *domain.WalletConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *cfg
	r.configs[cfg.AccountID] = &clone
	return nil
}

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// ResolveAccount tests
// ---------------------------------------------------------------------------

func TestIdentityService_ResolveAccount_FirstContactCreatesBinding(t *testing.T) {
	bindings := newStubBindingRepo()
	svc := NewIdentityService(bindings, newStubWalletRepo(), discardLogger)

	const platformID = int64(950870644)

	first, err := svc.ResolveAccount(context.Background(), platformID, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == "" {
		t.Fatal("first contact must create an account")
	}

	second, err := svc.ResolveAccount(context.Background(), platformID, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second != first {
		t.Errorf("second message must resolve to the same account: got %q, want %q", second, first)
	}
	if bindings.creates != 1 {
		t.Errorf("exactly one binding must be created, got %d", bindings.creates)
	}
}

func TestIdentityService_ResolveAccount_ConcurrentFirstContact(t *testing.T) {
	bindings := newStubBindingRepo()
	svc := NewIdentityService(bindings, newStubWalletRepo(), discardLogger)

	const (
		platformID = int64(42)
		callers    = 32
	)

	results := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			accountID, err := svc.ResolveAccount(context.Background(), platformID, "")
			if err != nil {
				t.Errorf("caller %d: %v", idx, err)
				return
			}
			results[idx] = accountID
		}(i)
	}
	wg.Wait()

	if bindings.creates != 1 {
		t.Fatalf("concurrent first contact must create exactly one binding, got %d", bindings.creates)
	}
	for i, accountID := range results {
		if accountID != results[0] {
			t.Errorf("caller %d observed %q, caller 0 observed %q", i, accountID, results[0])
		}
	}
}

func TestIdentityService_ResolveAccount_DistinctIdentitiesDistinctAccounts(t *testing.T) {
	svc := NewIdentityService(newStubBindingRepo(), newStubWalletRepo(), discardLogger)

	a, _ := svc.ResolveAccount(context.Background(), 1, "")
	b, _ := svc.ResolveAccount(context.Background(), 2, "")
	if a == b {
		t.Error("distinct platform identities must map to distinct accounts")
	}
}

// ---------------------------------------------------------------------------
// RegisterAccount / GetWalletConfig tests
// ---------------------------------------------------------------------------

func TestIdentityService_RegisterAccount_InvalidatesPriorWalletCache(t *testing.T) {
	bindings := newStubBindingRepo()
	wallets := newStubWalletRepo()
	svc := NewIdentityService(bindings, wallets, discardLogger)

	const platformID = int64(7)
	oldAccount, err := svc.ResolveAccount(context.Background(), platformID, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.ProvisionWallet(context.Background(), oldAccount, "wallet-old"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Warm the cache.
	cfg, err := svc.GetWalletConfig(context.Background(), oldAccount)
	if err != nil || cfg.WalletID != "wallet-old" {
		t.Fatalf("warm-up lookup failed: cfg=%v err=%v", cfg, err)
	}

	if err := svc.RegisterAccount(context.Background(), platformID, "acct-new"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resolved, _ := svc.ResolveAccount(context.Background(), platformID, "")
	if resolved != "acct-new" {
		t.Errorf("binding must point at the new account, got %q", resolved)
	}

	// The prior account's cache entry is dropped: the next lookup goes to
	// the repository again.
	findsBefore := wallets.finds
	if _, err := svc.GetWalletConfig(context.Background(), oldAccount); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wallets.finds != findsBefore+1 {
		t.Error("register must invalidate the prior binding's cached wallet config")
	}
}

func TestIdentityService_RegisterAccount_NeverServesPriorWalletConfig(t *testing.T) {
	bindings := newStubBindingRepo()
	wallets := newStubWalletRepo()
	svc := NewIdentityService(bindings, wallets, discardLogger)

	const platformID = int64(8)
	oldAccount, _ := svc.ResolveAccount(context.Background(), platformID, "")
	_ = svc.ProvisionWallet(context.Background(), oldAccount, "wallet-old")
	_, _ = svc.GetWalletConfig(context.Background(), oldAccount)

	_ = svc.RegisterAccount(context.Background(), platformID, "acct-new")
	_ = svc.ProvisionWallet(context.Background(), "acct-new", "wallet-new")

	accountID, _ := svc.ResolveAccount(context.Background(), platformID, "")
	cfg, err := svc.GetWalletConfig(context.Background(), accountID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WalletID != "wallet-new" {
		t.Errorf("got %q, the prior binding's wallet must never be served", cfg.WalletID)
	}
}

func TestIdentityService_GetWalletConfig_Unbound(t *testing.T) {
	bindings := newStubBindingRepo()
	svc := NewIdentityService(bindings, newStubWalletRepo(), discardLogger)

	accountID, _ := svc.ResolveAccount(context.Background(), 9, "")

	_, err := svc.GetWalletConfig(context.Background(), accountID)
	if err != domain.ErrUnboundAccount {
		t.Fatalf("expected ErrUnboundAccount, got %v", err)
	}

	// The failure must not mutate binding state.
	binding, findErr := bindings.Find(context.Background(), 9)
	if findErr != nil {
		t.Fatalf("binding must survive the failed lookup: %v", findErr)
	}
	if binding.AccountID != accountID {
		t.Error("binding must be unchanged after a failed wallet lookup")
	}
}
