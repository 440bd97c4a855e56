package ports

import (
	"context"
	"time"
)

// CacheRepository : Redis-backed session revocation and fixed-window counters
type CacheRepository interface {
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
	// IncrementWindow bumps the fixed-window counter for key and returns the
	// new count; the key expires when the window ends.
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}
