package port

import (
	"context"
	"time"
)

// Store is the shared ephemeral key-value contract used for presence and rate limiting.
// Every method is a single round trip and atomic on the backend, so callers never
// read-then-write across two calls. Implementations must be concurrency-safe.
type Store interface {
	// Incr atomically increments key and sets its TTL in the same round trip.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// HSet writes fields into the hash at key and refreshes its TTL.
	HSet(ctx context.Context, key string, ttl time.Duration, fields map[string]string) error

	// HDel removes fields from the hash at key and returns how many existed.
	HDel(ctx context.Context, key string, fields ...string) (int64, error)

	// HGetAll returns every field of the hash at key. A missing key yields an empty map.
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// Expire sets the TTL of key. It reports false when the key does not exist.
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Eval runs a server-side script atomically.
	Eval(ctx context.Context, script *Script, keys []string, args ...any) (any, error)

	// ScanKeys lists keys matching a glob pattern without blocking the backend.
	ScanKeys(ctx context.Context, pattern string) ([]string, error)

	// Ping verifies connectivity with the backend.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

// Script is a server-side script identified by its source.
type Script struct {
	Source string
}

// NewScript wraps script source for use with Store.Eval.
func NewScript(src string) *Script {
	return &Script{Source: src}
}
