// Package store defines the key-value state capability shared by the
// token blacklist, the lockout counters and the password reset tokens.
// The store is optional: callers receive a nil StateStore when no
// backend is configured and must branch on presence explicitly.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by Get when the key does not exist or has
// expired. Callers cannot distinguish the two cases.
var ErrKeyNotFound = errors.New("state store: key not found")

// StateStore is a TTL-capable key-value store. All operations must be
// atomic on the backend for concurrent service instances to coexist.
type StateStore interface {
	Get(ctx context.Context, key string) (string, error)
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
