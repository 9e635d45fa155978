// Package limiter throttles repeated credential failures with Redis counters.
package limiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dtroode/authkeeper/internal/logger"
	"github.com/dtroode/authkeeper/internal/model"
)

type Config struct {
	MaxAttempts int
	Cooldown    time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts: 10,
		Cooldown:    15 * time.Minute,
	}
}

// Limiter counts failed sign-in attempts per email and per client IP in
// fixed windows. A Redis outage never blocks sign-in: every Redis error
// degrades to "not limited".
type Limiter struct {
	redis  redis.UniversalClient
	config Config
	logger *logger.Logger
}

func New(redisClient redis.UniversalClient, cfg Config, l *logger.Logger) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
		logger: l,
	}
}

// CheckSignIn reports model.ErrRateLimited when the email or IP counter
// has exceeded the attempt budget for the current window.
func (l *Limiter) CheckSignIn(ctx context.Context, email, ip string) error {
	if err := l.checkCounter(ctx, emailKey(email)); err != nil {
		return err
	}
	if ip != "" {
		if err := l.checkCounter(ctx, ipKey(ip)); err != nil {
			return err
		}
	}
	return nil
}

// RecordFailure increments the counters after a rejected credential.
func (l *Limiter) RecordFailure(ctx context.Context, email, ip string) {
	l.incrementWithTTL(ctx, emailKey(email))
	if ip != "" {
		l.incrementWithTTL(ctx, ipKey(ip))
	}
}

// ResetSignIn clears the counters after a successful sign-in.
func (l *Limiter) ResetSignIn(ctx context.Context, email, ip string) {
	keys := []string{emailKey(email)}
	if ip != "" {
		keys = append(keys, ipKey(ip))
	}
	if err := l.redis.Del(ctx, keys...).Err(); err != nil {
		l.logger.Warn("failed to reset sign-in counters", "error", err)
	}
}

func (l *Limiter) checkCounter(ctx context.Context, key string) error {
	count, err := l.redis.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		l.logger.Warn("rate limiter unavailable, allowing request", "error", err)
		return nil
	}

	if count >= int64(l.config.MaxAttempts) {
		return model.ErrRateLimited
	}

	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warn("failed to record sign-in failure", "error", err)
		return
	}

	// Fixed window: the TTL is set by the first failure only.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Cooldown).Err(); err != nil {
			l.logger.Warn("failed to set sign-in counter ttl", "error", err)
		}
	}
}

func emailKey(email string) string {
	return fmt.Sprintf("signin:email:%s", email)
}

func ipKey(ip string) string {
	return fmt.Sprintf("signin:ip:%s", ip)
}
