package ratelimit

import (
	"context"
	"sync"
	"time"

	"telemetry-ingest/internal/shared/loggers"
)

// Sweeper periodically evicts idle buckets from a set of pools to bound
// memory. One sweeper serves all pools.
type Sweeper struct {
	pools    []*Pool
	interval time.Duration

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopCh   chan struct{}

	logger loggers.Logger
}

func NewSweeper(interval time.Duration, logger loggers.Logger, pools ...*Pool) *Sweeper {
	return &Sweeper{
		pools:    pools,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

// Start spawns the sweep loop.
func (s *Sweeper) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop terminates the sweep loop and waits for it to exit.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

func (s *Sweeper) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			for _, pool := range s.pools {
				evicted := pool.Sweep()
				if evicted > 0 {
					s.logger.Debug().
						Int("evicted", evicted).
						Msgf("swept idle rate-limit keys from pool %s", pool.Name())
				}
			}
		}
	}
}
