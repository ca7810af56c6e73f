package ratelimit

import (
	"sync"
	"time"
)

// Decision is the outcome of one Consume call. RetryAfter is non-zero only
// when Allowed is false.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Pool is a named collection of token buckets sharing one rate/burst
// configuration, keyed by caller identity. Buckets are created lazily on
// first use and evicted by Sweep after an idle window, so the map stays
// bounded by the active key set.
//
// Consume on different keys never blocks: the pool mutex is held only for
// the map lookup, and each bucket carries its own mutex for the
// read-modify-write on its counters.
type Pool struct {
	name          string
	ratePerSecond float64
	burst         float64
	idleWindow    time.Duration

	mu      sync.Mutex
	buckets map[string]*tokenBucket

	// now is swappable for tests.
	now func() time.Time
}

// NewPool creates a pool. name labels the pool in metrics and denial codes.
func NewPool(name string, ratePerSecond, burst float64, idleWindow time.Duration) *Pool {
	return &Pool{
		name:          name,
		ratePerSecond: ratePerSecond,
		burst:         burst,
		idleWindow:    idleWindow,
		buckets:       make(map[string]*tokenBucket),
		now:           time.Now,
	}
}

// Name returns the pool's metric label.
func (p *Pool) Name() string { return p.name }

// Consume takes cost tokens from key's bucket, creating the bucket at full
// burst on first use.
func (p *Pool) Consume(key string, cost float64) Decision {
	now := p.now()

	p.mu.Lock()
	bucket, ok := p.buckets[key]
	if !ok {
		bucket = newTokenBucket(p.burst, now)
		p.buckets[key] = bucket
	}
	p.mu.Unlock()

	allowed, retryAfter := bucket.consume(cost, p.ratePerSecond, p.burst, now)
	if !allowed {
		metricRateLimitDeniedTotal.WithLabelValues(p.name).Inc()
		return Decision{Allowed: false, RetryAfter: retryAfter}
	}
	return Decision{Allowed: true}
}

// Sweep evicts buckets with no activity inside the idle window and returns
// how many were removed.
func (p *Pool) Sweep() int {
	cutoff := p.now().Add(-p.idleWindow)

	p.mu.Lock()
	defer p.mu.Unlock()

	evicted := 0
	for key, bucket := range p.buckets {
		if bucket.idleSince(cutoff) {
			delete(p.buckets, key)
			evicted++
		}
	}
	metricRateLimitKeys.WithLabelValues(p.name).Set(float64(len(p.buckets)))
	return evicted
}

// KeyCount returns the number of live buckets.
func (p *Pool) KeyCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buckets)
}
