// Package ratelimit provides a keyed rate limiter built on token buckets.
// The auth endpoints use it with the client IP as the key, so the key space
// is unbounded and idle keys are evicted in the background.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	cleanupInterval = 10 * time.Minute
	idleAfter       = 30 * time.Minute
)

// entry pairs a limiter with its last use so idle keys can be evicted.
type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter manages one token bucket per key. Each key gets an
// independent limiter created on first use.
type KeyedLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	limit   rate.Limit
	burst   int

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a keyed limiter allowing rps requests per second with the
// given burst per key, and starts the background eviction loop.
func New(rps float64, burst int) *KeyedLimiter {
	kl := &KeyedLimiter{
		entries: make(map[string]*entry),
		limit:   rate.Limit(rps),
		burst:   burst,
		done:    make(chan struct{}),
	}

	go kl.cleanupLoop()

	return kl
}

// Allow reports whether a request for key may proceed, consuming one token
// if so. It never blocks; callers turn a false into a 429.
func (kl *KeyedLimiter) Allow(key string) bool {
	now := time.Now()

	kl.mu.Lock()
	defer kl.mu.Unlock()

	e, ok := kl.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(kl.limit, kl.burst)}
		kl.entries[key] = e
	}
	e.lastSeen = now

	return e.limiter.Allow()
}

// Len reports the number of tracked keys.
func (kl *KeyedLimiter) Len() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	return len(kl.entries)
}

// Stop terminates the eviction loop. Safe to call multiple times.
func (kl *KeyedLimiter) Stop() {
	kl.stopOnce.Do(func() {
		close(kl.done)
	})
}

func (kl *KeyedLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-kl.done:
			return
		case <-ticker.C:
			kl.evictIdle(time.Now().Add(-idleAfter))
		}
	}
}

// evictIdle drops every key last seen before cutoff. A returning key simply
// gets a fresh bucket, which errs on the permissive side.
func (kl *KeyedLimiter) evictIdle(cutoff time.Time) {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	for key, e := range kl.entries {
		if e.lastSeen.Before(cutoff) {
			delete(kl.entries, key)
		}
	}
}
