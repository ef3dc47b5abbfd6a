package auth

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func TestNewRedisLoginThrottleNilClient(t *testing.T) {
	if th := NewRedisLoginThrottle(nil, DefaultMaxLoginAttempts, DefaultLoginAttemptWindow); th != nil {
		t.Fatalf("expected nil throttle without redis, got %#v", th)
	}
}

func TestRedisLoginThrottle(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}

	th := NewRedisLoginThrottle(client, 2, time.Minute)
	email := "throttle_" + uuid.NewString()[:8] + "@test.com"
	defer client.Del(ctx, loginAttemptsKey(email))

	for i := 0; i < 2; i++ {
		allowed, err := th.Allowed(ctx, email)
		if err != nil || !allowed {
			t.Fatalf("attempt %d should be allowed: %v", i, err)
		}
		if err := th.RecordFailure(ctx, email); err != nil {
			t.Fatalf("record failure: %v", err)
		}
	}

	allowed, err := th.Allowed(ctx, email)
	if err != nil {
		t.Fatalf("allowed: %v", err)
	}
	if allowed {
		t.Fatal("expected throttle after max failures")
	}

	ttl, err := client.TTL(ctx, loginAttemptsKey(email)).Result()
	if err != nil || ttl <= 0 || ttl > time.Minute {
		t.Fatalf("expected counter to expire within window, got %s (%v)", ttl, err)
	}

	if err := th.Reset(ctx, email); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if allowed, _ := th.Allowed(ctx, email); !allowed {
		t.Fatal("expected reset to clear failures")
	}
}
