package memory

import (
	"context"
	"fmt"
	"sync"
)

// DedupChecker is the in-memory replay store used when Redis is not
// configured. Entries are never evicted; fine for development, not for a
// long-running production process.
type DedupChecker struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewDedupChecker() *DedupChecker {
	return &DedupChecker{seen: make(map[string]struct{})}
}

func (d *DedupChecker) IsDuplicate(_ context.Context, platformID int64, messageID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.seen[dedupKey(platformID, messageID)]
	return ok, nil
}

func (d *DedupChecker) Mark(_ context.Context, platformID int64, messageID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen[dedupKey(platformID, messageID)] = struct{}{}
	return nil
}

func dedupKey(platformID int64, messageID string) string {
	return fmt.Sprintf("%d:%s", platformID, messageID)
}
