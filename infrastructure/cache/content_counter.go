package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"content-platform/domain/repository"

	"github.com/redis/go-redis/v9"
)

const counterTTL = 24 * time.Hour

// ContentCounter caches teams.content_count in Redis. The database stays the
// source of truth; a nil client turns every call into a miss.
type ContentCounter struct {
	client *redis.Client
}

func NewContentCounter(client *redis.Client) repository.IContentCounterCache {
	return &ContentCounter{client: client}
}

func counterKey(teamID string) string {
	return fmt.Sprintf("team:%s:content_count", teamID)
}

func (c *ContentCounter) Set(ctx context.Context, teamID string, count int64) error {
	if c.client == nil {
		return nil
	}
	return c.client.Set(ctx, counterKey(teamID), count, counterTTL).Err()
}

func (c *ContentCounter) Get(ctx context.Context, teamID string) (int64, bool, error) {
	if c.client == nil {
		return 0, false, nil
	}
	n, err := c.client.Get(ctx, counterKey(teamID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}
