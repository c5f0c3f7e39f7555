package domain

import "time"

// PlatformUser is the durable binding between a chat-platform identity and
// an internal account. It is created on the first observed message from a
// platform ID and never hard-deleted, only deactivated.
type PlatformUser struct {
	PlatformID  int64     `json:"platform_id"`
	AccountID   string    `json:"account_id"`
	DisplayName string    `json:"display_name,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	LastSeen    time.Time `json:"last_seen"`
}

// Preferences holds the mutable per-session user settings.
type Preferences map[string]string

// Session tracks per-identity conversational state. One session per
// platform ID; LastActivity only ever advances.
type Session struct {
	PlatformID      int64       `json:"platform_id"`
	AccountID       string      `json:"account_id"`
	IsAuthenticated bool        `json:"is_authenticated"`
	LastActivity    time.Time   `json:"last_activity"`
	Preferences     Preferences `json:"preferences,omitempty"`
}

// ExpiredAt reports whether the session is stale at the given instant for
// the given inactivity window. Pure; expiry is policy, nothing mutates the
// record because of it.
func (s *Session) ExpiredAt(now time.Time, window time.Duration) bool {
	return now.Sub(s.LastActivity) > window
}

// WalletConfig is the external network's wallet handle bound to an internal
// account. Exactly one per account ID.
type WalletConfig struct {
	AccountID string `json:"account_id"`
	WalletID  string `json:"wallet_id"`
}
