package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newSessionStoreTest(t *testing.T) (*Store, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewStore(rdb, Config{Prefix: "rt"})
	return store, mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	store, mr, done := newSessionStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Put(ctx, "r1", "a@x.com", 7*24*time.Hour); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := store.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "a@x.com" {
		t.Fatalf("expected a@x.com, got %q", got)
	}
	if ttl := mr.TTL("rt:r1"); ttl != 7*24*time.Hour {
		t.Fatalf("unexpected ttl: %v", ttl)
	}
}

func TestPutOverwritesValueAndTTL(t *testing.T) {
	store, mr, done := newSessionStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Put(ctx, "r1", "a@x.com", time.Hour); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(ctx, "r1", "b@x.com", time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, _ := store.Get(ctx, "r1")
	if got != "b@x.com" {
		t.Fatalf("expected overwrite, got %q", got)
	}
	if ttl := mr.TTL("rt:r1"); ttl != time.Minute {
		t.Fatalf("expected ttl reset to 1m, got %v", ttl)
	}
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	store, _, done := newSessionStoreTest(t)
	defer done()

	for _, key := range []string{"unknown", ""} {
		if _, err := store.Get(context.Background(), key); !errors.Is(err, ErrSessionNotFound) {
			t.Fatalf("key %q: expected ErrSessionNotFound, got %v", key, err)
		}
	}
}

func TestInvalidateLeavesShortLivedTombstone(t *testing.T) {
	store, mr, done := newSessionStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Put(ctx, "r1", "a@x.com", time.Hour); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Invalidate(ctx, "r1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	got, err := store.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("tombstone must still be readable: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty tombstone, got %q", got)
	}
	if ttl := mr.TTL("rt:r1"); ttl != DefaultTombstoneTTL {
		t.Fatalf("expected tombstone ttl %v, got %v", DefaultTombstoneTTL, ttl)
	}

	mr.FastForward(DefaultTombstoneTTL)
	if _, err := store.Get(ctx, "r1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected tombstone to expire, got %v", err)
	}
}

func TestRotateWritesNewEntryAndTombstone(t *testing.T) {
	store, mr, done := newSessionStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Put(ctx, "r1", "a@x.com", time.Hour); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Rotate(ctx, "r1", "r2", "a@x.com", 7*24*time.Hour); err != nil {
		t.Fatalf("rotate: %v", err)
	}

	if got, _ := store.Get(ctx, "r2"); got != "a@x.com" {
		t.Fatalf("expected new entry, got %q", got)
	}
	if ttl := mr.TTL("rt:r2"); ttl != 7*24*time.Hour {
		t.Fatalf("unexpected new entry ttl: %v", ttl)
	}
	if got, err := store.Get(ctx, "r1"); err != nil || got != "" {
		t.Fatalf("expected old entry tombstoned, got %q err=%v", got, err)
	}
	if ttl := mr.TTL("rt:r1"); ttl != DefaultTombstoneTTL {
		t.Fatalf("unexpected tombstone ttl: %v", ttl)
	}
}

func TestRotateRejectsSameKey(t *testing.T) {
	store, _, done := newSessionStoreTest(t)
	defer done()

	if err := store.Rotate(context.Background(), "r1", "r1", "a@x.com", time.Hour); err == nil {
		t.Fatal("expected error when rotating onto the same key")
	}
}

func TestRedisFailureIsNotReportedAsMissing(t *testing.T) {
	store, mr, done := newSessionStoreTest(t)
	defer done()
	ctx := context.Background()

	mr.SetError("ERR forced failure")

	if _, err := store.Get(ctx, "r1"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable from get, got %v", err)
	}
	if err := store.Put(ctx, "r1", "a@x.com", time.Hour); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable from put, got %v", err)
	}
	if err := store.Rotate(ctx, "r1", "r2", "a@x.com", time.Hour); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable from rotate, got %v", err)
	}
	if _, err := store.Ping(ctx); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable from ping, got %v", err)
	}
}
