package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return New(rdb, cfg), mr
}

func TestLoginBudgetBlocksAfterMaxFailures(t *testing.T) {
	l, _ := newTestLimiter(t, Config{MaxLoginAttempts: 3, LoginCooldownDuration: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := l.CheckLogin(ctx, "a@x.com", ""); err != nil {
			t.Fatalf("attempt %d unexpectedly limited: %v", i, err)
		}
		_ = l.IncrementLogin(ctx, "a@x.com", "")
	}
	if err := l.CheckLogin(ctx, "A@x.com ", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	n, err := l.Attempts(ctx, "a@x.com")
	if err != nil || n != 3 {
		t.Fatalf("expected 3 attempts, got %d err=%v", n, err)
	}
}

func TestLoginWindowExpires(t *testing.T) {
	l, mr := newTestLimiter(t, Config{MaxLoginAttempts: 1, LoginCooldownDuration: time.Minute})
	ctx := context.Background()

	_ = l.IncrementLogin(ctx, "a@x.com", "")
	if ttl := mr.TTL("al:a@x.com"); ttl != time.Minute {
		t.Fatalf("expected window ttl, got %v", ttl)
	}
	mr.FastForward(time.Minute)
	if err := l.CheckLogin(ctx, "a@x.com", ""); err != nil {
		t.Fatalf("expected window reset, got %v", err)
	}
}

func TestResetLoginClearsAccountCounterOnly(t *testing.T) {
	l, mr := newTestLimiter(t, Config{EnableIPThrottle: true, MaxLoginAttempts: 5, LoginCooldownDuration: time.Minute})
	ctx := context.Background()

	_ = l.IncrementLogin(ctx, "a@x.com", "10.0.0.1")
	if err := l.ResetLogin(ctx, "a@x.com"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if mr.Exists("al:a@x.com") {
		t.Fatal("expected account counter removed")
	}
	if !mr.Exists("ali:10.0.0.1") {
		t.Fatal("expected ip counter kept")
	}
}

func TestIPThrottleSharedAcrossAccounts(t *testing.T) {
	l, _ := newTestLimiter(t, Config{EnableIPThrottle: true, MaxLoginAttempts: 2, LoginCooldownDuration: time.Minute})
	ctx := context.Background()

	_ = l.IncrementLogin(ctx, "a@x.com", "10.0.0.1")
	_ = l.IncrementLogin(ctx, "b@x.com", "10.0.0.1")
	if err := l.CheckLogin(ctx, "c@x.com", "10.0.0.1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ip limit, got %v", err)
	}
	if err := l.CheckLogin(ctx, "c@x.com", "10.0.0.2"); err != nil {
		t.Fatalf("other ip should pass: %v", err)
	}
}

func TestLimiterReportsRedisFailure(t *testing.T) {
	l, mr := newTestLimiter(t, Config{MaxLoginAttempts: 2, LoginCooldownDuration: time.Minute})
	mr.SetError("ERR forced failure")

	if err := l.CheckLogin(context.Background(), "a@x.com", ""); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}
