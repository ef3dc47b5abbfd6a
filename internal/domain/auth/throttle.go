package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultMaxLoginAttempts   = 5
	DefaultLoginAttemptWindow = 15 * time.Minute
)

// LoginThrottle counts failed logins per email
type LoginThrottle interface {
	Allowed(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// RedisLoginThrottle keeps a failure counter under login_attempts:<email> that expires after window
type RedisLoginThrottle struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
}

// NewRedisLoginThrottle returns nil when client is nil so the service runs unthrottled
func NewRedisLoginThrottle(client *redis.Client, maxAttempts int, window time.Duration) LoginThrottle {
	if client == nil {
		return nil
	}
	return &RedisLoginThrottle{client: client, maxAttempts: maxAttempts, window: window}
}

func loginAttemptsKey(email string) string {
	return "login_attempts:" + email
}

func (t *RedisLoginThrottle) Allowed(ctx context.Context, email string) (bool, error) {
	n, err := t.client.Get(ctx, loginAttemptsKey(email)).Int()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return true, fmt.Errorf("read login attempts: %w", err)
	}
	return n < t.maxAttempts, nil
}

func (t *RedisLoginThrottle) RecordFailure(ctx context.Context, email string) error {
	key := loginAttemptsKey(email)
	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, t.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record login failure: %w", err)
	}
	return nil
}

func (t *RedisLoginThrottle) Reset(ctx context.Context, email string) error {
	return t.client.Del(ctx, loginAttemptsKey(email)).Err()
}
