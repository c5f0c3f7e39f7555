package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/joxgallardo/sparkchat-sub001/internal/core/domain"
	"github.com/joxgallardo/sparkchat-sub001/internal/core/ports"
)

// SessionService tracks per-identity conversational state. All mutation
// goes through the repository, which guarantees per-platform-ID atomicity;
// expiry is a pure computation over last_activity, never enforced by
// mutation.
type SessionService struct {
	sessions ports.SessionRepository
	bindings ports.BindingRepository
	logger   zerolog.Logger
	now      func() time.Time
}

func NewSessionService(sessions ports.SessionRepository, bindings ports.BindingRepository, logger zerolog.Logger) *SessionService {
	return &SessionService{sessions: sessions, bindings: bindings, logger: logger, now: time.Now}
}

// Touch advances last_activity, creating an unauthenticated session when
// none exists yet. The account ID is attached when a binding is already
// known, so a session created before first resolution self-heals on the
// next touch.
func (s *SessionService) Touch(ctx context.Context, platformID int64) (*domain.Session, error) {
	accountID := ""
	if user, err := s.bindings.Find(ctx, platformID); err == nil {
		accountID = user.AccountID
	}
	return s.sessions.Touch(ctx, platformID, accountID, s.now().UTC())
}

// Authenticate marks the session authenticated. A prior successful account
// resolution is required: an identity with no binding cannot authenticate.
func (s *SessionService) Authenticate(ctx context.Context, platformID int64) error {
	if _, err := s.bindings.Find(ctx, platformID); err != nil {
		return err
	}
	if err := s.sessions.SetAuthenticated(ctx, platformID, true); err != nil {
		return err
	}
	s.logger.Info().Int64("platform_id", platformID).Msg("session authenticated")
	return nil
}

// IsExpired reports whether the session is stale for the given inactivity
// window.
func (s *SessionService) IsExpired(ctx context.Context, platformID int64, window time.Duration) (bool, error) {
	session, err := s.sessions.Find(ctx, platformID)
	if err != nil {
		return false, err
	}
	return session.ExpiredAt(s.now().UTC(), window), nil
}

// SetPreference mutates a single preferences entry, leaving every other
// session field untouched.
func (s *SessionService) SetPreference(ctx context.Context, platformID int64, key, value string) error {
	return s.sessions.SetPreference(ctx, platformID, key, value)
}

// Get returns the current session record.
func (s *SessionService) Get(ctx context.Context, platformID int64) (*domain.Session, error) {
	return s.sessions.Find(ctx, platformID)
}
