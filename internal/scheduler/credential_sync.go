package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/moteur/internal/credential"
	"github.com/MrSnakeDoc/moteur/internal/logger"
)

// CredentialSyncer loads the persisted credential into memory on startup
type CredentialSyncer struct {
	holder  *credential.Holder
	logger  logger.Logger
	timeout time.Duration
}

// NewCredentialSyncer creates a new credential syncer
func NewCredentialSyncer(
	holder *credential.Holder,
	log logger.Logger,
	timeout time.Duration,
) *CredentialSyncer {
	return &CredentialSyncer{
		holder:  holder,
		logger:  log,
		timeout: timeout,
	}
}

// Sync reads the credential store once. A failure leaves the holder empty so
// the app still starts and the user is asked for the key.
func (cs *CredentialSyncer) Sync(ctx context.Context) error {
	cs.logger.Info("syncing credential from store")

	if cs.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cs.timeout)
		defer cancel()
	}

	if err := cs.holder.Load(ctx); err != nil {
		return err
	}

	if !cs.holder.Present() {
		cs.logger.Info("no credential found, waiting for user input")
	}
	return nil
}
