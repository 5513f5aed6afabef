package cron

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hostelhub/hostelhub-backend/pkg/instance"
)

type memLockStore struct {
	values  map[string]string
	expires []time.Duration
}

func (m *memLockStore) ExpireIfValue(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	if m.values[key] != value {
		return false, nil
	}
	m.expires = append(m.expires, ttl)
	return true, nil
}

func (m *memLockStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	return true, nil
}

func (m *memLockStore) DelIfValue(_ context.Context, key, value string) (bool, error) {
	if m.values[key] != value {
		return false, nil
	}
	delete(m.values, key)
	return true, nil
}

func TestRedisLockIsExclusive(t *testing.T) {
	store := &memLockStore{values: map[string]string{}}
	ctx := context.Background()

	first, err := NewRedisLock(store, "hh:lock:cron", time.Minute)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	second, _ := NewRedisLock(store, "hh:lock:cron", time.Minute)

	ok, err := first.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("expected first acquire to succeed, ok=%v err=%v", ok, err)
	}
	ok, err = second.Acquire(ctx)
	if err != nil || ok {
		t.Fatalf("expected second acquire to fail, ok=%v err=%v", ok, err)
	}

	if err := second.Release(ctx); err != nil {
		t.Fatalf("release by non-owner: %v", err)
	}
	if _, held := store.values["hh:lock:cron"]; !held {
		t.Fatal("non-owner release must not drop the lock")
	}

	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	ok, _ = second.Acquire(ctx)
	if !ok {
		t.Fatal("expected lock to be free after owner release")
	}
}

func TestRedisLockOwnerCarriesInstanceID(t *testing.T) {
	store := &memLockStore{values: map[string]string{}}
	lock, _ := NewRedisLock(store, "hh:lock:cron", time.Minute)

	if ok, err := lock.Acquire(context.Background()); err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}
	if !strings.HasPrefix(store.values["hh:lock:cron"], instance.GetID()+":") {
		t.Fatalf("owner %q missing instance prefix", store.values["hh:lock:cron"])
	}
}

func TestRedisLockExtend(t *testing.T) {
	store := &memLockStore{values: map[string]string{}}
	ctx := context.Background()
	lock, _ := NewRedisLock(store, "hh:lock:cron", 2*time.Minute)

	if err := lock.Extend(ctx); !errors.Is(err, ErrLockLost) {
		t.Fatalf("extend before acquire: got %v", err)
	}
	if ok, _ := lock.Acquire(ctx); !ok {
		t.Fatal("expected acquire to succeed")
	}
	if err := lock.Extend(ctx); err != nil {
		t.Fatalf("extend: %v", err)
	}
	if len(store.expires) != 1 || store.expires[0] != 2*time.Minute {
		t.Fatalf("unexpected expires %v", store.expires)
	}

	// another worker took the key after expiry
	store.values["hh:lock:cron"] = "other:owner"
	if err := lock.Extend(ctx); !errors.Is(err, ErrLockLost) {
		t.Fatalf("expected ErrLockLost, got %v", err)
	}
	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release after loss: %v", err)
	}
	if store.values["hh:lock:cron"] != "other:owner" {
		t.Fatal("release after loss must not touch the new owner's key")
	}
}

func TestNewRedisLockValidates(t *testing.T) {
	if _, err := NewRedisLock(nil, "k", time.Minute); err == nil {
		t.Fatal("expected error for nil client")
	}
	if _, err := NewRedisLock(&memLockStore{}, "", time.Minute); err == nil {
		t.Fatal("expected error for empty key")
	}
	lock, err := NewRedisLock(&memLockStore{}, "k", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lock.ttl != defaultLockTTL {
		t.Fatalf("expected default ttl, got %s", lock.ttl)
	}
}
