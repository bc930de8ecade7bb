package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/farmfresh-backend/pkg/kv"
)

const defaultLockTTL = 10 * time.Minute

// Lock coordinates exclusive runs across API instances sharing one store.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type lockStore interface {
	kv.Counter
	Delete(ctx context.Context, keys ...string) error
}

// KVLock takes the lock when its counter increment is the first inside the TTL.
// A crashed holder's lock lapses with the TTL.
type KVLock struct {
	store lockStore
	key   string
	ttl   time.Duration
	held  bool
}

// NewKVLock builds a lock on the shared key-value store.
func NewKVLock(store lockStore, name string, ttl time.Duration) (*KVLock, error) {
	if store == nil {
		return nil, errors.New("store required for lock")
	}
	if name == "" {
		return nil, errors.New("lock name is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &KVLock{store: store, key: kv.LockKey(name), ttl: ttl}, nil
}

func (l *KVLock) Acquire(ctx context.Context) (bool, error) {
	n, err := l.store.IncrWithTTL(ctx, l.key, l.ttl)
	if err != nil {
		return false, fmt.Errorf("incr lock: %w", err)
	}
	l.held = n == 1
	return l.held, nil
}

// Release frees the lock only when this instance holds it.
func (l *KVLock) Release(ctx context.Context) error {
	if !l.held {
		return nil
	}
	if err := l.store.Delete(ctx, l.key); err != nil {
		return fmt.Errorf("delete lock: %w", err)
	}
	l.held = false
	return nil
}
