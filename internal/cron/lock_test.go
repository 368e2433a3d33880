package cron

import (
	"context"
	"testing"
	"time"

	"github.com/ecosaro/marketplace-backend/pkg/redis"
)

type fakeLockStore struct {
	values map[string]string
}

func newFakeLockStore() *fakeLockStore {
	return &fakeLockStore{values: map[string]string{}}
}

func (f *fakeLockStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = value.(string)
	return true, nil
}

func (f *fakeLockStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := f.values[key]
	if !ok {
		return "", redis.ErrNil
	}
	return value, nil
}

func (f *fakeLockStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeLockStore) LockKey(name string) string {
	return "ecosaro:lock:" + name
}

func TestRedisLockAcquireRelease(t *testing.T) {
	store := newFakeLockStore()
	lock, err := NewRedisLock(store, "payout-sweep", time.Minute)
	if err != nil {
		t.Fatalf("NewRedisLock: %v", err)
	}
	ctx := context.Background()

	ok, err := lock.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("expected acquire to succeed, got %v %v", ok, err)
	}

	second, err := NewRedisLock(store, "payout-sweep", time.Minute)
	if err != nil {
		t.Fatalf("NewRedisLock: %v", err)
	}
	ok, err = second.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if ok {
		t.Fatalf("second instance must not acquire a held lock")
	}

	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	ok, err = second.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("expected acquire after release, got %v %v", ok, err)
	}
}

func TestRedisLockReleaseOnlyOwn(t *testing.T) {
	store := newFakeLockStore()
	ctx := context.Background()

	first, _ := NewRedisLock(store, "payout-sweep", time.Minute)
	if ok, _ := first.Acquire(ctx); !ok {
		t.Fatalf("expected acquire to succeed")
	}

	// simulate expiry and takeover by another instance
	key := store.LockKey("payout-sweep")
	store.values[key] = "someone-else"

	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if store.values[key] != "someone-else" {
		t.Fatalf("release must not delete a lock owned by another instance")
	}
}

func TestRedisLockReleaseWithoutAcquire(t *testing.T) {
	lock, _ := NewRedisLock(newFakeLockStore(), "payout-sweep", time.Minute)
	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("release without acquire must be a no-op, got %v", err)
	}
}
