package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = 24 * time.Hour

// DedupChecker provides webhook replay protection backed by Redis. Chat
// platforms redeliver updates; each (platform_id, message_id) pair is
// processed at most once within the TTL.
// Key format: dedup:<platform_id>:<message_id>
type DedupChecker struct {
	client *redis.Client
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client *redis.Client) *DedupChecker {
	return &DedupChecker{client: client}
}

// IsDuplicate reports whether this exact message has already been processed.
func (d *DedupChecker) IsDuplicate(ctx context.Context, platformID int64, messageID string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(platformID, messageID)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this message has been processed (expires after dedupTTL).
func (d *DedupChecker) Mark(ctx context.Context, platformID int64, messageID string) error {
	return d.client.Set(ctx, d.key(platformID, messageID), "1", dedupTTL).Err()
}

func (d *DedupChecker) key(platformID int64, messageID string) string {
	return fmt.Sprintf("dedup:%d:%s", platformID, messageID)
}
