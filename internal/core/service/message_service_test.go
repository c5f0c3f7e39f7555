package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/joxgallardo/sparkchat-sub001/internal/core/domain"
	"github.com/joxgallardo/sparkchat-sub001/internal/core/ports"
)

type stubDedup struct {
	mu     sync.Mutex
	seen   map[string]bool
	checks int
	failOn error
}

func newStubDedup() *stubDedup {
	return &stubDedup{seen: make(map[string]bool)}
}

func (d *stubDedup) IsDuplicate(_ context.Context, platformID int64, messageID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.checks++
	if d.failOn != nil {
		return false, d.failOn
	}
	return d.seen[fmt.Sprintf("%d:%s", platformID, messageID)], nil
}

func (d *stubDedup) Mark(_ context.Context, platformID int64, messageID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen[fmt.Sprintf("%d:%s", platformID, messageID)] = true
	return nil
}

func newMessageFixture() (ports.MessageProcessor, *stubBindingRepo, *stubSessionRepo, *stubDedup) {
	bindings := newStubBindingRepo()
	sessions := newStubSessionRepo()
	dedup := newStubDedup()
	identity := NewIdentityService(bindings, newStubWalletRepo(), discardLogger)
	sessionSvc := NewSessionService(sessions, bindings, discardLogger)
	return NewMessageService(identity, sessionSvc, dedup, discardLogger), bindings, sessions, dedup
}

func TestMessageService_Process_FirstMessage(t *testing.T) {
	proc, bindings, sessions, _ := newMessageFixture()

	msg := ports.InboundMessage{
		PlatformID:  950870644,
		MessageID:   "m-1",
		DisplayName: "alice",
		Text:        "/start",
		ReceivedAt:  time.Now(),
	}
	if err := proc.Process(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	binding, err := bindings.Find(context.Background(), msg.PlatformID)
	if err != nil {
		t.Fatalf("binding must exist after the first message: %v", err)
	}
	if binding.AccountID == "" {
		t.Error("binding must carry an account")
	}

	session, err := sessions.Find(context.Background(), msg.PlatformID)
	if err != nil {
		t.Fatalf("session must exist after the first message: %v", err)
	}
	if session.AccountID != binding.AccountID {
		t.Errorf("session account %q differs from binding account %q", session.AccountID, binding.AccountID)
	}
}

func TestMessageService_Process_DuplicateSkipped(t *testing.T) {
	proc, bindings, _, _ := newMessageFixture()

	msg := ports.InboundMessage{PlatformID: 1, MessageID: "m-1"}
	if err := proc.Process(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	createsAfterFirst := bindings.creates

	if err := proc.Process(context.Background(), msg); err != nil {
		t.Fatalf("redelivery must not error: %v", err)
	}
	if bindings.creates != createsAfterFirst {
		t.Error("redelivered message must not touch identity state again")
	}
}

func TestMessageService_Process_DedupFailureDoesNotBlock(t *testing.T) {
	proc, bindings, _, dedup := newMessageFixture()
	dedup.failOn = errors.New("redis unavailable")

	msg := ports.InboundMessage{PlatformID: 2, MessageID: "m-9"}
	if err := proc.Process(context.Background(), msg); err != nil {
		t.Fatalf("a dedup store outage must not block processing: %v", err)
	}
	if _, err := bindings.Find(context.Background(), 2); err != nil {
		t.Errorf("message must still be processed: %v", err)
	}
}

func TestMessageService_Process_ResolveFailurePropagates(t *testing.T) {
	bindings := newStubBindingRepo()
	sessions := newStubSessionRepo()
	identity := &failingIdentity{err: errors.New("store down")}
	sessionSvc := NewSessionService(sessions, bindings, discardLogger)
	proc := NewMessageService(identity, sessionSvc, newStubDedup(), discardLogger)

	err := proc.Process(context.Background(), ports.InboundMessage{PlatformID: 3, MessageID: "m-1"})
	if err == nil {
		t.Fatal("resolution failure must surface so the platform redelivers")
	}
}

type failingIdentity struct {
	err error
}

func (f *failingIdentity) ResolveAccount(context.Context, int64, string) (string, error) {
	return "", f.err
}

func (f *failingIdentity) RegisterAccount(context.Context, int64, string) error { return f.err }

func (f *failingIdentity) GetWalletConfig(context.Context, string) (*domain.WalletConfig, error) {
	return nil, f.err
}

func (f *failingIdentity) ProvisionWallet(context.Context, string, string) error { return f.err }
