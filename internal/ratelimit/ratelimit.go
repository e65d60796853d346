// Package ratelimit provides a token-bucket rate limiter keyed by an
// arbitrary string, typically a client IP. Idle keys are evicted in the
// background so the map does not grow without bound.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	evictAfter    = 10 * time.Minute
	evictInterval = time.Minute
)

// entry pairs a limiter with its last use for eviction.
type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter hands out an independent token bucket per key.
type KeyedRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	limit   rate.Limit
	burst   int

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a keyed rate limiter allowing rps requests per second per
// key with the given burst.
func New(rps float64, burst int) *KeyedRateLimiter {
	k := &KeyedRateLimiter{
		entries: make(map[string]*entry),
		limit:   rate.Limit(rps),
		burst:   burst,
		done:    make(chan struct{}),
	}

	go k.evictLoop()

	return k
}

// Allow reports whether a request for key may proceed right now.
func (k *KeyedRateLimiter) Allow(key string) bool {
	return k.limiterFor(key).Allow()
}

// Wait blocks until a request for key is allowed or ctx is canceled.
func (k *KeyedRateLimiter) Wait(ctx context.Context, key string) error {
	return k.limiterFor(key).Wait(ctx)
}

// Stop shuts down the eviction goroutine.
func (k *KeyedRateLimiter) Stop() {
	k.stopOnce.Do(func() {
		close(k.done)
	})
}

func (k *KeyedRateLimiter) limiterFor(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.entries[key] = e
	}
	e.lastSeen = time.Now()
	return e.limiter
}

// evictLoop drops keys that have been idle long enough to have a full
// bucket again, so forgetting them loses no state.
func (k *KeyedRateLimiter) evictLoop() {
	ticker := time.NewTicker(evictInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-evictAfter)
			k.mu.Lock()
			for key, e := range k.entries {
				if e.lastSeen.Before(cutoff) {
					delete(k.entries, key)
				}
			}
			k.mu.Unlock()
		case <-k.done:
			return
		}
	}
}
