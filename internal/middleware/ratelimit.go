package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

func denyJSON(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":` + strconv.Quote(msg) + `}`))
}

// RateLimiter is a redis-backed fixed-window limiter keyed by client IP.
// It guards the HTTP edge; the per-sender friend-request throttle lives in
// the friend service where it shares the creation transaction.
type RateLimiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
	prefix string
}

func NewRateLimiter(redisClient *redis.Client, limit int, window time.Duration, prefix string) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		limit:  limit,
		window: window,
		prefix: prefix,
	}
}

// Stricter limiter for login/register, which attract brute force.
func NewAuthRateLimiter(redisClient *redis.Client) *RateLimiter {
	return NewRateLimiter(redisClient, 5, time.Minute, "ratelimit:auth")
}

func NewAPIRateLimiter(redisClient *redis.Client) *RateLimiter {
	return NewRateLimiter(redisClient, 100, time.Minute, "ratelimit:api")
}

func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.redis == nil {
			next.ServeHTTP(w, r)
			return
		}

		key := rl.prefix + ":" + clientIP(r)
		count, resetAt, err := rl.take(r.Context(), key)
		if err != nil {
			// Redis being down must not take the API with it.
			next.ServeHTTP(w, r)
			return
		}

		remaining := rl.limit - count
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if count > rl.limit {
			w.Header().Set("Retry-After", strconv.FormatInt(int64(time.Until(resetAt).Seconds()), 10))
			denyJSON(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// take increments the window counter and returns the count together with
// the window's end.
func (rl *RateLimiter) take(ctx context.Context, key string) (int, time.Time, error) {
	resetAt := time.Now().Truncate(rl.window).Add(rl.window)

	pipe := rl.redis.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, resetAt, err
	}

	return int(incr.Val()), resetAt, nil
}

func clientIP(r *http.Request) string {
	// First hop in X-Forwarded-For when behind a proxy.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
