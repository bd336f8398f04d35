package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/moteur/internal/logger"
	"github.com/MrSnakeDoc/moteur/internal/session"
)

const (
	// DefaultSessionTTL is the idle duration after which a session is evicted
	DefaultSessionTTL = 24 * time.Hour
)

// SessionCollector evicts sessions that have been idle for too long
type SessionCollector struct {
	registry *session.Registry
	logger   logger.Logger
	interval time.Duration
	ttl      time.Duration
	now      func() time.Time
	stopCh   chan struct{}
}

// NewSessionCollector creates a new session collector
func NewSessionCollector(
	registry *session.Registry,
	log logger.Logger,
	interval time.Duration,
	ttl time.Duration,
) *SessionCollector {
	if ttl == 0 {
		ttl = DefaultSessionTTL
	}

	return &SessionCollector{
		registry: registry,
		logger:   log,
		interval: interval,
		ttl:      ttl,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic collection
func (sc *SessionCollector) Start(ctx context.Context) error {
	ticker := time.NewTicker(sc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sc.Collect()
			case <-sc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the collector
func (sc *SessionCollector) Stop() {
	close(sc.stopCh)
}

// Collect evicts every session idle for longer than the ttl and returns how
// many were removed. Evicted sessions have their fetch in flight cancelled.
func (sc *SessionCollector) Collect() int {
	now := sc.now()
	idle := sc.registry.IdleSince(now.Add(-sc.ttl))

	for _, id := range idle {
		sc.registry.Delete(id)
	}
	sc.registry.MarkCollected(now)

	if len(idle) > 0 {
		sc.logger.Info("session garbage collection completed",
			logger.Int("evicted", len(idle)),
			logger.Int("remaining", sc.registry.Count()))
	} else {
		sc.logger.Debug("no idle sessions to collect")
	}

	return len(idle)
}
