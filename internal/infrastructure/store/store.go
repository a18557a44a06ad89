package store

import (
	"context"
	"errors"
	"time"
)

// ErrWrongType reports that a key exists but holds a different shape than
// the one asked for. The codec treats this as "absent" and moves on to the
// next candidate shape; it is never surfaced to business logic.
var ErrWrongType = errors.New("store: key holds a different shape")

// ErrUnavailable marks I/O failures against the backing store.
var ErrUnavailable = errors.New("store: unavailable")

// KV is the narrow surface the engine needs from the backing key-value
// store. Each call is an independent, individually atomic operation; there
// are no multi-key transactions, and two writers to the same key race
// last-write-wins.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	SetMembers(ctx context.Context, key string) ([]string, bool, error)
	AddToSet(ctx context.Context, key string, members ...string) error
	RemoveFromSet(ctx context.Context, key string, members ...string) error
	// ReplaceSet deletes the key and re-adds members. The two steps are not
	// atomic; a concurrent reader may briefly observe an empty set.
	ReplaceSet(ctx context.Context, key string, members []string) error

	HashGetAll(ctx context.Context, key string) (map[string]string, bool, error)
	HashSetAll(ctx context.Context, key string, fields map[string]string) error

	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// ScanKeys returns every key matching a glob-style pattern.
	ScanKeys(ctx context.Context, pattern string) ([]string, error)
}
