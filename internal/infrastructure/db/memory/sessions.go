package memory

import (
	"context"
	"sync"
	"time"

	"github.com/joxgallardo/sparkchat-sub001/internal/core/domain"
)

// SessionRepository is a mutex-guarded session table. Every operation holds
// the lock for its full duration, so no caller observes a half-updated
// record.
type SessionRepository struct {
	mu       sync.Mutex
	sessions map[int64]*domain.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[int64]*domain.Session)}
}

func (r *SessionRepository) Find(_ context.Context, platformID int64) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[platformID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return cloneSession(s), nil
}

func (r *SessionRepository) Touch(_ context.Context, platformID int64, accountID string, at time.Time) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[platformID]
	if !ok {
		s = &domain.Session{
			PlatformID:  platformID,
			Preferences: domain.Preferences{},
		}
		r.sessions[platformID] = s
	}
	if accountID != "" {
		s.AccountID = accountID
	}
	// last_activity only ever advances
	if at.After(s.LastActivity) {
		s.LastActivity = at
	}
	return cloneSession(s), nil
}

func (r *SessionRepository) SetAuthenticated(_ context.Context, platformID int64, authenticated bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[platformID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.IsAuthenticated = authenticated
	return nil
}

func (r *SessionRepository) SetPreference(_ context.Context, platformID int64, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[platformID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if s.Preferences == nil {
		s.Preferences = domain.Preferences{}
	}
	s.Preferences[key] = value
	return nil
}

func cloneSession(s *domain.Session) *domain.Session {
	clone := *s
	clone.Preferences = make(domain.Preferences, len(s.Preferences))
	for k, v := range s.Preferences {
		clone.Preferences[k] = v
	}
	return &clone
}
