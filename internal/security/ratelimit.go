package security

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"file-manager-server/internal/ports"
	"file-manager-server/internal/util"
)

// KeyFunc : derives the rate-limit bucket key from the request
type KeyFunc func(r *http.Request) string

// KeyByClientIP : buckets by the caller's address, for unauthenticated routes
func KeyByClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// KeyByIdentity : buckets by the authenticated user, falls back to the
// caller's address when the identity is missing
func KeyByIdentity(r *http.Request) string {
	claims, err := IdentityFromContext(r.Context())
	if err != nil {
		return KeyByClientIP(r)
	}
	return claims.UserID
}

// RateLimiter : fixed-window counter backed by Redis. The window starts with
// the first request and every hit inside it increments the same counter.
type RateLimiter struct {
	cache   ports.CacheRepository
	name    string
	limit   int64
	window  time.Duration
	message string
	keyFn   KeyFunc
}

func NewRateLimiter(cache ports.CacheRepository, name string, limit int64, window time.Duration, message string, keyFn KeyFunc) *RateLimiter {
	return &RateLimiter{
		cache:   cache,
		name:    name,
		limit:   limit,
		window:  window,
		message: message,
		keyFn:   keyFn,
	}
}

func (limiter *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := fmt.Sprintf("%s:%s", limiter.name, limiter.keyFn(r))

		count, err := limiter.cache.IncrementWindow(r.Context(), key, limiter.window)
		if err != nil {
			// limiter outage must not take the API down with it
			log.Printf("rate limiter unavailable, letting request through: %v", err)
			next.ServeHTTP(w, r)
			return
		}

		if count > limiter.limit {
			util.WriteError(w, limiter.message, http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
