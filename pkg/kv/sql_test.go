package kv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/farmfresh-backend/pkg/db/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newSQLStore(t *testing.T) *SQL {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := conn.AutoMigrate(&models.KVEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewSQL(conn, nil)
}

func mustSet(t *testing.T, store Store, key, value string, ttl time.Duration) {
	t.Helper()
	if err := store.Set(context.Background(), key, []byte(value), ttl); err != nil {
		t.Fatalf("set %s: %v", key, err)
	}
}

func TestSQLStoreUpsert(t *testing.T) {
	ctx := context.Background()
	store := newSQLStore(t)
	key := CartKey(GuestProfile("browser-1"))

	if _, err := store.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	mustSet(t, store, key, `[]`, 0)
	mustSet(t, store, key, `[{"quantity":2}]`, 0)

	got, err := store.Get(ctx, key)
	if err != nil || string(got) != `[{"quantity":2}]` {
		t.Fatalf("expected overwritten value, got %q %v", got, err)
	}

	var count int64
	if err := store.conn.Model(&models.KVEntry{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one row, got %d", count)
	}
}

func TestSQLStoreExpiryAndPurge(t *testing.T) {
	ctx := context.Background()
	store := newSQLStore(t)
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	mustSet(t, store, "a", "1", time.Minute)
	mustSet(t, store, "b", "2", time.Hour)
	mustSet(t, store, "c", "3", 0)

	now = now.Add(2 * time.Minute)
	if _, err := store.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired entry to read as missing, got %v", err)
	}

	now = now.Add(2 * time.Hour)
	purged, err := store.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 purged row, got %d", purged)
	}

	if got, err := store.Get(ctx, "c"); err != nil || string(got) != "3" {
		t.Fatalf("expected persistent entry, got %q %v", got, err)
	}
}

func TestSQLStoreDeleteAndIncr(t *testing.T) {
	ctx := context.Background()
	store := newSQLStore(t)

	mustSet(t, store, "x", "1", 0)
	mustSet(t, store, "y", "1", 0)
	if err := store.Delete(ctx, "x", "y"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx); err != nil {
		t.Fatalf("empty delete: %v", err)
	}

	for want := int64(1); want <= 3; want++ {
		got, err := store.IncrWithTTL(ctx, RateLimitKey("login"), time.Minute)
		if err != nil {
			t.Fatalf("incr: %v", err)
		}
		if got != want {
			t.Fatalf("expected %d got %d", want, got)
		}
	}
	if err := store.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestSQLStoreIncrKeepsWindowThenRestarts(t *testing.T) {
	ctx := context.Background()
	store := newSQLStore(t)
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	now := start
	store.now = func() time.Time { return now }
	key := RateLimitKey("login")

	expiry := func() time.Time {
		t.Helper()
		var entry models.KVEntry
		if err := store.conn.Where("key = ?", key).Take(&entry).Error; err != nil {
			t.Fatalf("load counter: %v", err)
		}
		if entry.ExpiresAt == nil {
			t.Fatal("expected counter to carry an expiry")
		}
		return entry.ExpiresAt.UTC()
	}

	if got, err := store.IncrWithTTL(ctx, key, time.Minute); err != nil || got != 1 {
		t.Fatalf("first hit: %d %v", got, err)
	}
	now = start.Add(40 * time.Second)
	if got, err := store.IncrWithTTL(ctx, key, time.Minute); err != nil || got != 2 {
		t.Fatalf("second hit: %d %v", got, err)
	}
	if exp := expiry(); !exp.Equal(start.Add(time.Minute)) {
		t.Fatalf("later hits must keep the first expiry, got %s", exp)
	}

	now = start.Add(90 * time.Second)
	if got, err := store.IncrWithTTL(ctx, key, time.Minute); err != nil || got != 1 {
		t.Fatalf("hit after window: %d %v", got, err)
	}
	if exp := expiry(); !exp.Equal(now.Add(time.Minute)) {
		t.Fatalf("expired counter must start a fresh window, got %s", exp)
	}
}

func TestSQLStoreIncrRejectsNonNumericValue(t *testing.T) {
	store := newSQLStore(t)
	mustSet(t, store, "counter", "abc", 0)

	if _, err := store.IncrWithTTL(context.Background(), "counter", time.Minute); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}
