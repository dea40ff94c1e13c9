// Package cache provides the in-process expiring stores backing the
// ephemeral session tier and the per-profile session registry.
package cache

import (
	"context"
	"log/slog"
	"time"
)

// Cache is a keyed store whose entries may expire.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Cleaner is implemented by caches that can drop their expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Janitor periodically sweeps the registered caches until its context ends.
type Janitor struct {
	caches []Cleaner
	logger *slog.Logger
	done   chan struct{}
}

func NewJanitor(logger *slog.Logger, caches ...Cleaner) *Janitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Janitor{caches: caches, logger: logger, done: make(chan struct{})}
}

// Start sweeps every interval in a background goroutine. Cancel ctx and call
// Wait to stop it.
func (j *Janitor) Start(ctx context.Context, interval time.Duration) {
	go j.run(ctx, interval)
}

// Sweep runs one cleanup pass and returns the number of dropped entries.
func (j *Janitor) Sweep() int {
	total := 0
	for _, c := range j.caches {
		total += c.CleanExpired()
	}
	return total
}

func (j *Janitor) run(ctx context.Context, interval time.Duration) {
	defer close(j.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := j.Sweep(); n > 0 {
				j.logger.Debug("Expired session entries dropped", "count", n)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Wait blocks until the sweeping goroutine has returned.
func (j *Janitor) Wait() {
	<-j.done
}
