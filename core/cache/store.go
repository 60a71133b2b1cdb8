package cache

import (
	"context"
	"fmt"
	"time"
)

// Store is a key-value cache with per-key expiry. The ingestion monitor
// keeps its change-detection snapshot here; tests substitute the in-memory
// implementation instead of depending on process-wide state.
type Store interface {
	// Get returns the value for key, and whether the key exists and is unexpired.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key. A zero TTL means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// New creates a Store for the configured backend.
func New(cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		return NewRedisStore(cfg), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Backend)
	}
}
