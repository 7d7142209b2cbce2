package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultConsumedKeyPrefix = "accounts:consumed-token"

// ConsumedTokenCache implements port.ConsumedTokenCache on Redis. It lets the
// service answer duplicate submissions of an already-consumed token without a
// primary-store round trip. Entries expire on their own; the guarded consume
// in PostgreSQL stays authoritative.
type ConsumedTokenCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewConsumedTokenCache constructs a cache with the provided key prefix.
func NewConsumedTokenCache(client *redis.Client, keyPrefix string) *ConsumedTokenCache {
	if keyPrefix == "" {
		keyPrefix = defaultConsumedKeyPrefix
	}
	return &ConsumedTokenCache{client: client, keyPrefix: keyPrefix}
}

func (c *ConsumedTokenCache) key(hash string) string {
	return fmt.Sprintf("%s:%s", c.keyPrefix, hash)
}

// MarkConsumed remembers the token hash for ttl.
func (c *ConsumedTokenCache) MarkConsumed(ctx context.Context, hash string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if err := c.client.Set(ctx, c.key(hash), 1, ttl).Err(); err != nil {
		return fmt.Errorf("mark token consumed: %w", err)
	}
	return nil
}

// WasConsumed reports whether the token hash was recently consumed.
func (c *ConsumedTokenCache) WasConsumed(ctx context.Context, hash string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(hash)).Result()
	if err != nil {
		return false, fmt.Errorf("check token consumed: %w", err)
	}
	return n > 0, nil
}
