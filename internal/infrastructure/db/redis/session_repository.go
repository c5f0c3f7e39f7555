package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joxgallardo/sparkchat-sub001/internal/core/domain"
)

// SessionRepository persists session records as one Redis hash per platform
// identity. Every mutation is a single server-side command (or script), so
// no reader observes a half-updated record.
//
// Key format: session:<platform_id>
// Fields: account_id, authenticated, last_activity (unix nanos), pref:<key>
type SessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client}
}

// touchScript creates the hash when absent and advances last_activity
// monotonically; an out-of-order touch never moves the clock backwards.
var touchScript = redis.NewScript(`
local key = KEYS[1]
local at = tonumber(ARGV[1])
local account = ARGV[2]
local last = tonumber(redis.call('HGET', key, 'last_activity'))
if (not last) or (at > last) then
  redis.call('HSET', key, 'last_activity', at)
end
if account ~= '' then
  redis.call('HSET', key, 'account_id', account)
end
redis.call('HSETNX', key, 'authenticated', '0')
return redis.call('HGETALL', key)
`)

func (r *SessionRepository) Find(ctx context.Context, platformID int64) (*domain.Session, error) {
	fields, err := r.client.HGetAll(ctx, r.key(platformID)).Result()
	if err != nil {
		return nil, fmt.Errorf("session find: %w", err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrSessionNotFound
	}
	return r.toDomain(platformID, fields), nil
}

func (r *SessionRepository) Touch(ctx context.Context, platformID int64, accountID string, at time.Time) (*domain.Session, error) {
	res, err := touchScript.Run(ctx, r.client,
		[]string{r.key(platformID)},
		at.UnixNano(), accountID,
	).Result()
	if err != nil {
		return nil, fmt.Errorf("session touch: %w", err)
	}

	// HGETALL from a script returns a flat [field, value, ...] slice.
	flat, ok := res.([]interface{})
	if !ok {
		return nil, fmt.Errorf("session touch: unexpected reply %T", res)
	}
	fields := make(map[string]string, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		fields[fmt.Sprint(flat[i])] = fmt.Sprint(flat[i+1])
	}
	return r.toDomain(platformID, fields), nil
}

func (r *SessionRepository) SetAuthenticated(ctx context.Context, platformID int64, authenticated bool) error {
	exists, err := r.client.Exists(ctx, r.key(platformID)).Result()
	if err != nil {
		return fmt.Errorf("session authenticate: %w", err)
	}
	if exists == 0 {
		return domain.ErrSessionNotFound
	}
	val := "0"
	if authenticated {
		val = "1"
	}
	return r.client.HSet(ctx, r.key(platformID), "authenticated", val).Err()
}

func (r *SessionRepository) SetPreference(ctx context.Context, platformID int64, key, value string) error {
	exists, err := r.client.Exists(ctx, r.key(platformID)).Result()
	if err != nil {
		return fmt.Errorf("session preference: %w", err)
	}
	if exists == 0 {
		return domain.ErrSessionNotFound
	}
	return r.client.HSet(ctx, r.key(platformID), "pref:"+key, value).Err()
}

func (r *SessionRepository) key(platformID int64) string {
	return fmt.Sprintf("session:%d", platformID)
}

func (r *SessionRepository) toDomain(platformID int64, fields map[string]string) *domain.Session {
	s := &domain.Session{
		PlatformID:      platformID,
		AccountID:       fields["account_id"],
		IsAuthenticated: fields["authenticated"] == "1",
		Preferences:     domain.Preferences{},
	}
	if nanos, err := strconv.ParseInt(fields["last_activity"], 10, 64); err == nil {
		s.LastActivity = time.Unix(0, nanos).UTC()
	}
	for k, v := range fields {
		if name, ok := strings.CutPrefix(k, "pref:"); ok {
			s.Preferences[name] = v
		}
	}
	return s
}
