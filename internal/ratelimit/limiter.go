// Package ratelimit provides Redis-backed per-client request limiting.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Limiter enforces a fixed-window requests-per-minute cap per client key
// (normally the caller's IP). Windows live in Redis so the cap holds across
// service replicas.
type Limiter struct {
	redis *redis.Client
	rpm   int
}

// NewLimiter connects to Redis and returns a limiter allowing rpm requests
// per minute per client.
func NewLimiter(redisURL string, rpm int) (*Limiter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Limiter{redis: client, rpm: rpm}, nil
}

// NewLimiterWithClient wraps an existing client, sharing its connection pool.
func NewLimiterWithClient(client *redis.Client, rpm int) *Limiter {
	return &Limiter{redis: client, rpm: rpm}
}

func (l *Limiter) Close() error { return l.redis.Close() }

// Allow reports whether the client may proceed, and when the current window
// resets if not. Redis errors fail open: an unreachable limiter should not
// take the API down with it.
func (l *Limiter) Allow(ctx context.Context, clientKey string) (allowed bool, resetSec int, err error) {
	now := time.Now().UTC()
	window := now.Unix() / 60
	rk := fmt.Sprintf("rl:%s:%d", clientKey, window)

	pipe := l.redis.TxPipeline()
	incr := pipe.Incr(ctx, rk)
	pipe.Expire(ctx, rk, time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, 0, err
	}

	if int(incr.Val()) > l.rpm {
		secPassed := int(now.Unix() % 60)
		return false, 60 - secPassed, nil
	}
	return true, 0, nil
}
