package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"civiceye/internal/complaint/models"
	"civiceye/pkg/platform/circuit"
)

// defaultProbeInterval is how often an open circuit lets a call through to
// test whether Redis has recovered.
const defaultProbeInterval = 5 * time.Second

// BreakerTrackerCache wraps a TrackerCache with a circuit breaker. The tracker
// endpoint survives a Redis outage by degrading to store reads, but without a
// breaker every request would still pay the connection timeout. While the
// circuit is open reads and writes short-circuit to a miss, except for a
// periodic probe that lets the circuit close again once Redis recovers.
// Invalidation is never skipped: a surviving entry must not outlive the
// transition that made it stale.
type BreakerTrackerCache struct {
	inner   TrackerCache
	breaker *circuit.Breaker
	logger  *slog.Logger

	mu        sync.Mutex
	probeEach time.Duration
	lastProbe time.Time
	now       func() time.Time
}

func NewBreakerTrackerCache(inner TrackerCache, breaker *circuit.Breaker, logger *slog.Logger) *BreakerTrackerCache {
	return &BreakerTrackerCache{
		inner:     inner,
		breaker:   breaker,
		logger:    logger,
		probeEach: defaultProbeInterval,
		now:       time.Now,
	}
}

// allow reports whether the call should reach Redis: always when the circuit
// is closed, once per probe interval when it is open.
func (c *BreakerTrackerCache) allow() bool {
	if !c.breaker.IsOpen() {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if now := c.now(); now.Sub(c.lastProbe) >= c.probeEach {
		c.lastProbe = now
		return true
	}
	return false
}

func (c *BreakerTrackerCache) Get(ctx context.Context, ticketID string) (models.TrackerView, bool, error) {
	if !c.allow() {
		return models.TrackerView{}, false, nil
	}
	view, hit, err := c.inner.Get(ctx, ticketID)
	c.record(ctx, err)
	if err != nil {
		return models.TrackerView{}, false, err
	}
	return view, hit, nil
}

func (c *BreakerTrackerCache) Set(ctx context.Context, view models.TrackerView, ttl time.Duration) error {
	if !c.allow() {
		return nil
	}
	err := c.inner.Set(ctx, view, ttl)
	c.record(ctx, err)
	return err
}

// Invalidate always attempts the delete, even while the circuit is open.
// Skipping it after a status transition would let a cached tracker view keep
// serving the old status until its TTL runs out. The outcome still feeds the
// breaker, so a successful delete doubles as a recovery probe.
func (c *BreakerTrackerCache) Invalidate(ctx context.Context, ticketID string) error {
	err := c.inner.Invalidate(ctx, ticketID)
	c.record(ctx, err)
	return err
}

func (c *BreakerTrackerCache) record(ctx context.Context, err error) {
	if err == nil {
		if _, change := c.breaker.RecordSuccess(); change.Closed {
			c.logger.InfoContext(ctx, "tracker cache circuit closed", "circuit", c.breaker.Name())
		}
		return
	}
	c.mu.Lock()
	c.lastProbe = c.now()
	c.mu.Unlock()
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "tracker cache circuit opened",
			"circuit", c.breaker.Name(),
			"error", err,
		)
	}
}
