package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = 24 * time.Hour

// DedupChecker makes mail delivery idempotent across broker redeliveries.
// Key format: dedup:mail:<message_id>
type DedupChecker struct {
	client redis.Cmdable
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client redis.Cmdable) *DedupChecker {
	return &DedupChecker{client: client}
}

// Claim atomically marks messageID as being delivered. It reports false when
// another delivery already claimed it.
func (d *DedupChecker) Claim(ctx context.Context, messageID string) (bool, error) {
	ok, err := d.client.SetNX(ctx, dedupKey(messageID), "1", dedupTTL).Result()
	if err != nil {
		return false, fmt.Errorf("dedup claim: %w", err)
	}
	return ok, nil
}

// Release drops a claim after a failed delivery so a redelivery can retry.
func (d *DedupChecker) Release(ctx context.Context, messageID string) error {
	return d.client.Del(ctx, dedupKey(messageID)).Err()
}

func dedupKey(messageID string) string {
	return fmt.Sprintf("dedup:mail:%s", messageID)
}
