package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds rate limiter tuning parameters. Zero max values disable the
// corresponding check.
type Config struct {
	MaxLoginAttempts int
	LoginCooldown    time.Duration
	MaxCodeAttempts  int
	CodeCooldown     time.Duration
}

// Limiter enforces fixed-window attempt budgets for password logins and
// verification-code checks using Redis counters. Counters key on the email
// under attack, not the caller, so distributed guessing against one account
// is still bounded.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{redis: redisClient, config: cfg}
}

func loginKey(email string) string {
	return "arl:login:" + email
}

func codeKey(email string) string {
	return "arl:code:" + email
}

// CheckLogin reports whether the email is within its failed-login budget.
func (l *Limiter) CheckLogin(ctx context.Context, email string) error {
	return l.check(ctx, loginKey(email), l.config.MaxLoginAttempts)
}

// RecordLoginFailure counts a failed login attempt for the email.
func (l *Limiter) RecordLoginFailure(ctx context.Context, email string) error {
	return l.increment(ctx, loginKey(email), l.config.MaxLoginAttempts, l.config.LoginCooldown)
}

// ResetLogin clears the failed-login counter after a successful login.
func (l *Limiter) ResetLogin(ctx context.Context, email string) error {
	if l.config.MaxLoginAttempts <= 0 {
		return nil
	}
	if err := l.redis.Del(ctx, loginKey(email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// CheckCode reports whether the email is within its code-guess budget.
func (l *Limiter) CheckCode(ctx context.Context, email string) error {
	return l.check(ctx, codeKey(email), l.config.MaxCodeAttempts)
}

// RecordCodeFailure counts a wrong verification-code submission.
func (l *Limiter) RecordCodeFailure(ctx context.Context, email string) error {
	return l.increment(ctx, codeKey(email), l.config.MaxCodeAttempts, l.config.CodeCooldown)
}

func (l *Limiter) check(ctx context.Context, key string, max int) error {
	if max <= 0 {
		return nil
	}
	count, err := l.redis.Get(ctx, key).Int64()
	if err != nil {
		if err == redis.Nil {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count >= int64(max) {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) increment(ctx context.Context, key string, max int, cooldown time.Duration) error {
	if max <= 0 {
		return nil
	}
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, key, cooldown).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}
	if count > int64(max) {
		return ErrRateLimited
	}
	return nil
}
