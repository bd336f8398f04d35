package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/moteur/internal/catalog"
	"github.com/MrSnakeDoc/moteur/internal/logger"
)

// CatalogReloader handles periodic reloading of the listing catalog
type CatalogReloader struct {
	loader        *catalog.Loader
	holder        *catalog.Holder
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewCatalogReloader creates a new catalog reloader
func NewCatalogReloader(
	loader *catalog.Loader,
	holder *catalog.Holder,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *CatalogReloader {
	return &CatalogReloader{
		loader:        loader,
		holder:        holder,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the catalog once, then reloads it on every tick or manual
// trigger. A zero interval disables the ticker.
func (cr *CatalogReloader) Start(ctx context.Context) error {
	if err := cr.Reload(); err != nil {
		return fmt.Errorf("initial reload failed: %w", err)
	}

	go func() {
		var tick <-chan time.Time
		if cr.interval > 0 {
			ticker := time.NewTicker(cr.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-tick:
				if err := cr.Reload(); err != nil {
					cr.logger.Error("failed to reload catalog", logger.Error(err))
				}
			case <-cr.manualTrigger:
				cr.logger.Info("manual reload triggered")
				if err := cr.Reload(); err != nil {
					cr.logger.Error("failed to reload catalog", logger.Error(err))
				}
			case <-cr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (cr *CatalogReloader) Stop() {
	close(cr.stopCh)
}

// Reload reads the catalog and swaps it in. On failure the previous catalog
// stays active.
func (cr *CatalogReloader) Reload() error {
	c, err := cr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load catalog from %s: %w", cr.loader.Source(), err)
	}

	cr.holder.Store(c)
	cr.logger.Info("catalog loaded",
		logger.String("source", cr.loader.Source()),
		logger.Int("sources", len(c.Sources)),
		logger.Int("cities", len(c.Cities)))
	return nil
}
