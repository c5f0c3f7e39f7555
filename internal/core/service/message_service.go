package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/joxgallardo/sparkchat-sub001/internal/api/metrics"
	"github.com/joxgallardo/sparkchat-sub001/internal/core/ports"
)

// DedupChecker abstracts the webhook replay store (Redis). Chat platforms
// redeliver updates, so each (platform_id, message_id) pair is processed at
// most once.
type DedupChecker interface {
	IsDuplicate(ctx context.Context, platformID int64, messageID string) (bool, error)
	Mark(ctx context.Context, platformID int64, messageID string) error
}

type messageService struct {
	identity ports.IdentityService
	sessions ports.SessionService
	dedup    DedupChecker
	log      zerolog.Logger
}

// NewMessageService returns the MessageProcessor run by dispatcher workers.
func NewMessageService(identity ports.IdentityService, sessions ports.SessionService, dedup DedupChecker, log zerolog.Logger) ports.MessageProcessor {
	return &messageService{identity: identity, sessions: sessions, dedup: dedup, log: log}
}

// Process handles one inbound chat message: dedup, resolve the account
// binding, then touch the session. The dispatcher serialises messages per
// platform ID, so these transitions are observed in message order.
func (s *messageService) Process(ctx context.Context, msg ports.InboundMessage) error {
	start := time.Now()

	isDup, err := s.dedup.IsDuplicate(ctx, msg.PlatformID, msg.MessageID)
	if err != nil {
		s.log.Warn().Err(err).Int64("platform_id", msg.PlatformID).Msg("dedup check failed, processing anyway")
	} else if isDup {
		metrics.MessagesDedupTotal.WithLabelValues("hit").Inc()
		s.log.Debug().Int64("platform_id", msg.PlatformID).Str("message_id", msg.MessageID).Msg("duplicate message skipped")
		return nil
	}
	metrics.MessagesDedupTotal.WithLabelValues("miss").Inc()

	accountID, err := s.identity.ResolveAccount(ctx, msg.PlatformID, msg.DisplayName)
	if err != nil {
		metrics.MessagesErrorsTotal.WithLabelValues("resolve_failed").Inc()
		return fmt.Errorf("process message: resolve account: %w", err)
	}

	if _, err := s.sessions.Touch(ctx, msg.PlatformID); err != nil {
		metrics.MessagesErrorsTotal.WithLabelValues("session_touch_failed").Inc()
		return fmt.Errorf("process message: touch session: %w", err)
	}

	// Mark only after the state transitions landed, so a crashed worker
	// lets the platform's redelivery complete the work.
	if markErr := s.dedup.Mark(ctx, msg.PlatformID, msg.MessageID); markErr != nil {
		s.log.Warn().Err(markErr).Int64("platform_id", msg.PlatformID).Msg("failed to set dedup key")
	}

	metrics.MessagesProcessedTotal.Inc()
	metrics.MessageProcessingDuration.Observe(time.Since(start).Seconds())
	s.log.Debug().
		Int64("platform_id", msg.PlatformID).
		Str("account_id", accountID).
		Msg("message processed")
	return nil
}
