// internal/store/statuscache.go
package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"consultation-workers/internal/common/logger"
)

const statusKeyPrefix = "consultation:status:"

// StatusCache keeps consultation statuses in Redis so the poller's
// repeated status queries stay off Postgres. The TTL is short relative to
// the poll interval: a stale answer costs one extra tick, never a wrong
// navigation.
type StatusCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewStatusCache(client *redis.Client, ttl time.Duration, log logger.Logger) *StatusCache {
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	return &StatusCache{
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "status-cache"}),
	}
}

// Get returns the cached status, or ("", false) on miss. Cache errors are
// reported as misses; the caller falls through to the database.
func (c *StatusCache) Get(ctx context.Context, consultationID string) (string, bool) {
	status, err := c.client.Get(ctx, statusKeyPrefix+consultationID).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		c.logger.Debug("status cache read failed", map[string]interface{}{
			"consultationId": consultationID,
			"error":          err.Error(),
		})
		return "", false
	}
	return status, true
}

// Set stores the status with the cache TTL.
func (c *StatusCache) Set(ctx context.Context, consultationID, status string) {
	if err := c.client.Set(ctx, statusKeyPrefix+consultationID, status, c.ttl).Err(); err != nil {
		c.logger.Debug("status cache write failed", map[string]interface{}{
			"consultationId": consultationID,
			"error":          err.Error(),
		})
	}
}

// Invalidate drops the cached status after a transition so the next poll
// observes the new state without waiting out the TTL.
func (c *StatusCache) Invalidate(ctx context.Context, consultationID string) {
	if err := c.client.Del(ctx, statusKeyPrefix+consultationID).Err(); err != nil {
		c.logger.Debug("status cache invalidation failed", map[string]interface{}{
			"consultationId": consultationID,
			"error":          err.Error(),
		})
	}
}
