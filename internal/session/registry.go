package session

import (
	"context"
	"log/slog"
	"time"

	"finclient/internal/cache"
)

// DefaultRestoreTimeout bounds the tier lookups of a restore.
const DefaultRestoreTimeout = 5 * time.Second

// Registry hands out one Store per profile id. Stores are created and
// restored on first use; the least recently used ones are dropped once the
// registry is full and rebuilt from the tiers when they come back.
type Registry struct {
	auth      Authenticator
	ephemeral Tier
	durable   Tier
	logger    *slog.Logger
	stores    *cache.LRUCache[*Store]

	// RestoreTimeout bounds each restore. Zero means DefaultRestoreTimeout.
	RestoreTimeout time.Duration
}

func NewRegistry(auth Authenticator, ephemeral, durable Tier, size int, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		auth:      auth,
		ephemeral: ephemeral,
		durable:   durable,
		logger:    logger,
		stores:    cache.NewLRUCache[*Store](size, 0),
	}
}

// Get returns the store of profile, restoring it from the tiers if it is not
// loaded yet. The restore runs outside the registry lock and does not follow
// the cancellation of ctx. A store whose restore failed is returned but not
// kept, so the next Get tries the tiers again.
func (r *Registry) Get(ctx context.Context, profile string) *Store {
	if s, ok := r.stores.Get(profile); ok {
		return s
	}

	s := New(Config{
		Profile:   profile,
		Auth:      r.auth,
		Ephemeral: r.ephemeral,
		Durable:   r.durable,
		Logger:    r.logger,
	})

	timeout := r.RestoreTimeout
	if timeout <= 0 {
		timeout = DefaultRestoreTimeout
	}
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := s.Restore(rctx); err != nil {
		return s
	}

	// A concurrent Get may have stored its own copy first; keep that one.
	return r.stores.GetOrCreate(profile, func() *Store { return s })
}

// Forget drops the loaded store of profile without touching the tiers.
func (r *Registry) Forget(profile string) {
	r.stores.Delete(profile)
}

// Len returns the number of loaded stores.
func (r *Registry) Len() int {
	return r.stores.Size()
}
