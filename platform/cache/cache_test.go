package cache

import (
	"context"
	"testing"
	"time"

	"conciergerie_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
)

type redisConfig struct {
	url string
}

func (c redisConfig) GetRedisURL() string { return c.url }
func (c redisConfig) IsRedisEnabled() bool { return c.url != "" }

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	store, err := New(redisConfig{url: "redis://" + srv.Addr()}, logger.Discard())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, srv
}

func TestStoreGetSetInvalidate(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, ok := store.Get(ctx, "requests:list"); ok {
		t.Fatal("expected miss on empty cache")
	}

	store.Set(ctx, "requests:list", []byte(`[{"id":1}]`), time.Minute)
	payload, ok := store.Get(ctx, "requests:list")
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if string(payload) != `[{"id":1}]` {
		t.Fatalf("unexpected payload: %s", payload)
	}

	store.Invalidate(ctx, "requests:list")
	if _, ok := store.Get(ctx, "requests:list"); ok {
		t.Fatal("expected miss after Invalidate")
	}
}

func TestStoreAcquireIsExclusive(t *testing.T) {
	store, srv := newTestStore(t)
	ctx := context.Background()

	if !store.Acquire(ctx, "chat:hash:abc", time.Minute) {
		t.Fatal("first Acquire should win")
	}
	if store.Acquire(ctx, "chat:hash:abc", time.Minute) {
		t.Fatal("second Acquire should lose while key is held")
	}

	srv.FastForward(2 * time.Minute)

	if !store.Acquire(ctx, "chat:hash:abc", time.Minute) {
		t.Fatal("Acquire should win again after TTL expiry")
	}
}

func TestStoreReleaseFreesKey(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if !store.Acquire(ctx, "chat:hash:def", time.Minute) {
		t.Fatal("first Acquire should win")
	}
	store.Release(ctx, "chat:hash:def")
	if !store.Acquire(ctx, "chat:hash:def", time.Minute) {
		t.Fatal("Acquire should win after Release")
	}
}

func TestStoreWithoutRedisFallsBackToLocalMemory(t *testing.T) {
	store, err := New(redisConfig{}, logger.Discard())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := context.Background()

	if _, ok := store.Get(ctx, "requests:list"); ok {
		t.Fatal("view cache should always miss without Redis")
	}

	if !store.Acquire(ctx, "chat:hash:ghi", 10*time.Millisecond) {
		t.Fatal("first Acquire should win")
	}
	if store.Acquire(ctx, "chat:hash:ghi", 10*time.Millisecond) {
		t.Fatal("second Acquire should lose while key is held")
	}

	time.Sleep(20 * time.Millisecond)

	if !store.Acquire(ctx, "chat:hash:ghi", 10*time.Millisecond) {
		t.Fatal("Acquire should win after local expiry")
	}
}

func TestNilStoreIsInert(t *testing.T) {
	var store *Store
	ctx := context.Background()

	if _, ok := store.Get(ctx, "requests:list"); ok {
		t.Fatal("nil store should always miss")
	}
	store.Set(ctx, "requests:list", []byte("{}"), time.Minute)
	store.Invalidate(ctx, "requests:list")

	if !store.Acquire(ctx, "chat:hash:abc", time.Minute) {
		t.Fatal("nil store should let every claim through")
	}
	if !store.Acquire(ctx, "chat:hash:abc", time.Minute) {
		t.Fatal("nil store cannot hold keys between claims")
	}
	store.Release(ctx, "chat:hash:abc")

	if err := store.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}
