package sweeper

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-balance/internal/adapter"
	"github.com/feral-file/ff-balance/internal/cache"
	"github.com/feral-file/ff-balance/internal/logger"
)

const DEFAULT_CACHE_SWEEP_INTERVAL = time.Minute

// cacheSweeper implements the Sweeper interface for purging expired cache entries
type cacheSweeper struct {
	cache     cache.Cache
	interval  time.Duration
	clock     adapter.Clock
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewCacheSweeper creates a sweeper that purges expired entries of c every interval
func NewCacheSweeper(c cache.Cache, interval time.Duration, clock adapter.Clock) Sweeper {
	if interval <= 0 {
		interval = DEFAULT_CACHE_SWEEP_INTERVAL
	}
	return &cacheSweeper{
		cache:     c,
		interval:  interval,
		clock:     clock,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *cacheSweeper) Name() string {
	return "cache-sweeper"
}

// Start runs the sweep loop until the context is canceled or Stop is called
func (s *cacheSweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh) // Signal that we've stopped
	}()

	logger.InfoCtx(ctx, "Starting cache sweeper", zap.Duration("interval", s.interval))

	for {
		if !s.sleep(ctx, s.interval) {
			logger.InfoCtx(ctx, "Cache sweeper stopping")
			return nil
		}

		removed := s.cache.DeleteExpired()
		if removed > 0 {
			logger.DebugCtx(ctx, "Purged expired cache entries",
				zap.Int("removed", removed),
				zap.Int("remaining", s.cache.ItemCount()),
			)
		}
	}
}

// Stop signals the loop to exit and waits for it, respecting ctx
func (s *cacheSweeper) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil // Already stopped
	}

	close(s.stopChan)

	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Cache sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Cache sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

// sleep waits for duration; false means the loop should exit
func (s *cacheSweeper) sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-s.clock.After(duration):
		return true
	case <-ctx.Done():
		return false
	case <-s.stopChan:
		return false
	}
}
