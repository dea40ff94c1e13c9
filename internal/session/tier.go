package session

import (
	"context"
	"time"

	"finclient/internal/cache"
)

// Tier is a key/value place a token can be kept in. Get reports ok=false for
// an absent key; only storage failures are errors.
type Tier interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// MemoryTier is the ephemeral tier: tokens live in process memory and vanish
// with it.
type MemoryTier struct {
	entries *cache.LRUCache[string]
}

// NewMemoryTier holds up to size tokens, each for at most ttl (zero means
// until deleted).
func NewMemoryTier(size int, ttl time.Duration) *MemoryTier {
	return &MemoryTier{entries: cache.NewLRUCache[string](size, ttl)}
}

func (t *MemoryTier) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := t.entries.Get(key)
	return v, ok, nil
}

func (t *MemoryTier) Set(_ context.Context, key, value string) error {
	t.entries.Set(key, value)
	return nil
}

func (t *MemoryTier) Delete(_ context.Context, key string) error {
	t.entries.Delete(key)
	return nil
}

// CleanExpired lets a cache.Janitor sweep the tier.
func (t *MemoryTier) CleanExpired() int {
	return t.entries.CleanExpired()
}
