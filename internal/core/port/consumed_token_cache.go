package port

import (
	"context"
	"time"
)

// ConsumedTokenCache remembers recently consumed token hashes so a duplicate
// submission can be rejected without a primary-store round trip. It is a
// best-effort cache: the guarded consume in the primary store remains the
// authority, and cache errors are ignored by callers.
type ConsumedTokenCache interface {
	MarkConsumed(ctx context.Context, hash string, ttl time.Duration) error
	WasConsumed(ctx context.Context, hash string) (bool, error)
}
