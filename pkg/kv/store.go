// Package kv is the storefront's durable key-value storage. Carts, users, orders,
// wishlists and sessions are stored as JSON documents under namespaced keys.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is missing or expired.
var ErrNotFound = errors.New("kv: key not found")

// Store is the minimal surface every backend implements.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set writes value; ttl <= 0 keeps the key until deleted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Counter is implemented by backends that can drive fixed-window rate limits.
type Counter interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Pinger is implemented by backends with a remote dependency worth health-checking.
type Pinger interface {
	Ping(ctx context.Context) error
}
