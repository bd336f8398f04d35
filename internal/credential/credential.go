// Package credential keeps the single API credential used to call the
// generation service: a persistent Store and the in-process Holder that
// loads it once and persists every edit.
package credential

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/MrSnakeDoc/moteur/internal/logger"
)

// Store persists one credential string. Load returns "" when nothing is
// stored. Saving "" clears the stored value.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, value string) error
}

// Holder is the process-wide credential value with an explicit lifecycle:
// Load at startup, Get anywhere, Set on every user edit.
type Holder struct {
	store  Store
	seed   string
	logger logger.Logger

	mu    sync.RWMutex
	value string
}

// NewHolder wraps store. seed is used when the store is empty at Load time.
func NewHolder(store Store, seed string, log logger.Logger) *Holder {
	return &Holder{
		store:  store,
		seed:   strings.TrimSpace(seed),
		logger: log,
	}
}

// Load reads the stored credential, falling back to the seed.
func (h *Holder) Load(ctx context.Context) error {
	v, err := h.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load credential: %w", err)
	}

	from := "store"
	if v == "" && h.seed != "" {
		v = h.seed
		from = "seed"
	}

	h.mu.Lock()
	h.value = v
	h.mu.Unlock()

	h.logger.Info("credential loaded",
		logger.Bool("present", v != ""),
		logger.String("from", from))
	return nil
}

// Get returns the current credential, possibly "".
func (h *Holder) Get() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.value
}

// Present reports whether a non-blank credential is set.
func (h *Holder) Present() bool {
	return strings.TrimSpace(h.Get()) != ""
}

// Set replaces the credential and persists it immediately. The in-memory
// value is updated even if persisting fails.
func (h *Holder) Set(ctx context.Context, value string) error {
	h.mu.Lock()
	h.value = value
	h.mu.Unlock()

	if err := h.store.Save(ctx, value); err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	h.logger.Debug("credential saved", logger.Bool("present", strings.TrimSpace(value) != ""))
	return nil
}
