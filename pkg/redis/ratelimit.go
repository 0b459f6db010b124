package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is a sliding-window limiter shared by every process using the same Redis
// ⭐ SSOT: 프로세스 간 레이트 리밋은 여기서만
type RateLimiter struct {
	client *Client
	prefix string
}

// RateLimitConfig defines rate limit parameters
type RateLimitConfig struct {
	Key    string        // upstream name, e.g. "yahoo"
	Limit  int           // requests allowed per window
	Window time.Duration // sliding window length
}

// YahooRateLimit Yahoo Finance chart API: 초당 2회 (보수적, 비공식 API)
var YahooRateLimit = RateLimitConfig{
	Key:    "yahoo",
	Limit:  2,
	Window: time.Second,
}

// slidingWindow trims entries older than the window, then admits the
// request if fewer than limit remain. Returns {allowed, remaining}.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])
	local member = ARGV[5]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
	local count = redis.call('ZCARD', key)
	if count < limit then
		redis.call('ZADD', key, now, member)
		redis.call('PEXPIRE', key, window_ms)
		return {1, limit - count - 1}
	end
	return {0, 0}
`)

// NewRateLimiter creates a limiter whose keys live under prefix
func NewRateLimiter(client *Client, prefix string) *RateLimiter {
	return &RateLimiter{
		client: client,
		prefix: prefix,
	}
}

func (r *RateLimiter) key(cfg RateLimitConfig) string {
	return namespaced(r.prefix, "ratelimit", cfg.Key)
}

// Allow records one request if the window has room.
// Returns (allowed, remaining, error); a disabled client allows everything.
func (r *RateLimiter) Allow(ctx context.Context, cfg RateLimitConfig) (bool, int, error) {
	if !r.client.Enabled() {
		return true, cfg.Limit, nil
	}
	if cfg.Limit <= 0 || cfg.Window <= 0 {
		return false, 0, fmt.Errorf("rate limit %s: limit and window must be positive", cfg.Key)
	}

	now := time.Now().UnixMilli()
	result, err := slidingWindow.Run(ctx, r.client.Redis(), []string{r.key(cfg)},
		now,
		now-cfg.Window.Milliseconds(),
		cfg.Limit,
		cfg.Window.Milliseconds(),
		uuid.NewString(), // 같은 ms 요청도 각각 집계
	).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit script failed: %w", err)
	}

	return result[0] == 1, int(result[1]), nil
}

// Wait blocks until a request is allowed or ctx is done.
// Retries are spaced one slot (window / limit) apart.
func (r *RateLimiter) Wait(ctx context.Context, cfg RateLimitConfig) error {
	backoff := 100 * time.Millisecond
	if cfg.Limit > 0 && cfg.Window > 0 {
		backoff = cfg.Window / time.Duration(cfg.Limit)
	}

	for {
		allowed, _, err := r.Allow(ctx, cfg)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// Reset clears the window, e.g. after a long upstream outage
func (r *RateLimiter) Reset(ctx context.Context, cfg RateLimitConfig) error {
	if !r.client.Enabled() {
		return nil
	}
	return r.client.Redis().Del(ctx, r.key(cfg)).Err()
}
