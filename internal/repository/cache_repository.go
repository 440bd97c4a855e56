package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"file-manager-server/config"
	"file-manager-server/internal/util"
)

// CacheRepository : Redis-backed session revocation list and the fixed-window
// counters behind the auth/upload rate limits.
type CacheRepository struct {
	client *config.RedisClient
}

func NewCacheRepository(rdb *config.RedisClient) *CacheRepository {
	return &CacheRepository{client: rdb}
}

// RevokeToken : blocks a session token id until its natural expiry
func (r *CacheRepository) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // token already expired, nothing to block
	}
	if err := r.client.Client.Set(ctx, revokedKey(tokenID), "1", ttl).Err(); err != nil {
		return util.LogError("[CacheRepo] revoking token failed", err)
	}
	return nil
}

func (r *CacheRepository) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, err := r.client.Client.Get(ctx, revokedKey(tokenID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, util.LogError("[CacheRepo] checking token revocation failed", err)
	}
	return true, nil
}

// IncrementWindow : INCR plus first-hit EXPIRE gives a fixed window counter;
// the count resets when the key expires.
func (r *CacheRepository) IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := r.client.Client.Incr(ctx, "ratelimit:"+key).Result()
	if err != nil {
		return 0, util.LogError("[CacheRepo] incrementing rate window failed", err)
	}
	if count == 1 {
		if err := r.client.Client.Expire(ctx, "ratelimit:"+key, window).Err(); err != nil {
			return count, util.LogError("[CacheRepo] setting rate window expiry failed", err)
		}
	}
	return count, nil
}

func revokedKey(tokenID string) string {
	return "revoked:" + tokenID
}
