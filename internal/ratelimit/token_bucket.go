package ratelimit

import (
	"math"
	"sync"
	"time"
)

// tokenBucket is one key's refillable budget. Refill is lazy: tokens are
// credited on each access from the elapsed time since lastRefill, so no
// background work runs per key.
type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
	lastAccess time.Time
}

func newTokenBucket(burst float64, now time.Time) *tokenBucket {
	return &tokenBucket{
		tokens:     burst,
		lastRefill: now,
		lastAccess: now,
	}
}

// consume refills the bucket up to burst, then tries to take cost tokens.
// On denial it returns how long the caller must wait for the deficit to
// refill at ratePerSecond.
func (b *tokenBucket) consume(cost, ratePerSecond, burst float64, now time.Time) (bool, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed > 0 {
		b.tokens = math.Min(burst, b.tokens+elapsed*ratePerSecond)
	}
	b.lastRefill = now
	b.lastAccess = now

	if b.tokens >= cost {
		b.tokens -= cost
		return true, 0
	}

	deficit := cost - b.tokens
	retryAfterMs := math.Ceil(deficit / ratePerSecond * 1000)
	return false, time.Duration(retryAfterMs) * time.Millisecond
}

func (b *tokenBucket) idleSince(cutoff time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastAccess.Before(cutoff)
}
