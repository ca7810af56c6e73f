package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestConsume_BurstThenDeny(t *testing.T) {
	t.Parallel()

	pool := NewPool("per_ip", 1, 2, time.Minute)
	pool.now = fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	assert.True(t, pool.Consume("10.0.0.1", 1).Allowed)
	assert.True(t, pool.Consume("10.0.0.1", 1).Allowed)

	decision := pool.Consume("10.0.0.1", 1)
	assert.False(t, decision.Allowed)
	assert.Equal(t, time.Second, decision.RetryAfter)

	// A different key has its own bucket and is unaffected.
	assert.True(t, pool.Consume("10.0.0.2", 1).Allowed)
}

func TestConsume_LazyRefill(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pool := NewPool("per_ip", 2, 2, time.Minute)
	pool.now = fixedClock(at)

	assert.True(t, pool.Consume("k", 2).Allowed)
	assert.False(t, pool.Consume("k", 1).Allowed)

	// One second later two tokens have refilled (rate 2/s, capped at burst 2).
	pool.now = fixedClock(at.Add(time.Second))
	assert.True(t, pool.Consume("k", 2).Allowed)
}

func TestConsume_RefillCappedAtBurst(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pool := NewPool("per_ip", 10, 3, time.Minute)
	pool.now = fixedClock(at)

	require.True(t, pool.Consume("k", 3).Allowed)

	// An hour idle refills to burst, not rate*3600.
	pool.now = fixedClock(at.Add(time.Hour))
	assert.True(t, pool.Consume("k", 3).Allowed)
	assert.False(t, pool.Consume("k", 1).Allowed)
}

func TestConsume_WeightedCost(t *testing.T) {
	t.Parallel()

	pool := NewPool("per_credential", 1, 100, time.Minute)
	pool.now = fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	// One oversized batch consumes proportionally more budget.
	assert.True(t, pool.Consume("ak_x", 80).Allowed)
	assert.True(t, pool.Consume("ak_x", 20).Allowed)

	decision := pool.Consume("ak_x", 50)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 50*time.Second, decision.RetryAfter)
}

func TestConsume_ConcurrentDistinctKeys(t *testing.T) {
	t.Parallel()

	pool := NewPool("per_ip", 1, 1, time.Minute)

	const keys = 50
	var wg sync.WaitGroup
	results := make([]bool, keys)
	for i := 0; i < keys; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = pool.Consume(fmt.Sprintf("key-%d", i), 1).Allowed
		}(i)
	}
	wg.Wait()

	for i, allowed := range results {
		assert.True(t, allowed, "key %d should have a full bucket", i)
	}
}

func TestConsume_ConcurrentSameKey_NoOverspend(t *testing.T) {
	t.Parallel()

	const burst = 100
	pool := NewPool("per_ip", 0.001, burst, time.Minute)

	const calls = 300
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if pool.Consume("shared", 1).Allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, burst, allowedCount, "exactly burst tokens may be spent")
}

func TestSweep_EvictsIdleKeys(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pool := NewPool("per_ip", 1, 2, time.Minute)
	pool.now = fixedClock(at)

	pool.Consume("idle", 1)
	pool.now = fixedClock(at.Add(30 * time.Second))
	pool.Consume("active", 1)
	require.Equal(t, 2, pool.KeyCount())

	// 70s after "idle" was touched, only it is past the 60s window.
	pool.now = fixedClock(at.Add(70 * time.Second))
	evicted := pool.Sweep()

	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, pool.KeyCount())
}
