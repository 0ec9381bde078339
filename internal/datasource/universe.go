package datasource

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/cb-sentinel/internal/models"
)

// UniverseStore keeps the last known instrument registry
type UniverseStore interface {
	UniverseSource
	UpsertBatch(ctx context.Context, instruments []models.CBInstrument) error
}

// StoredUniverse refreshes a store from the upstream registry on every
// successful fetch and serves the stored copy when the upstream fails.
type StoredUniverse struct {
	upstream UniverseSource
	store    UniverseStore
	logger   *logrus.Entry
}

// NewStoredUniverse wraps upstream with store
func NewStoredUniverse(upstream UniverseSource, store UniverseStore, logger *logrus.Logger) *StoredUniverse {
	if logger == nil {
		logger = logrus.New()
	}
	return &StoredUniverse{
		upstream: upstream,
		store:    store,
		logger:   logger.WithField("component", "universe"),
	}
}

// FetchUniverse returns the upstream registry, or the stored one when the
// upstream fetch fails and the store is not empty
func (u *StoredUniverse) FetchUniverse(ctx context.Context) ([]models.CBInstrument, error) {
	instruments, err := u.upstream.FetchUniverse(ctx)
	if err == nil {
		if storeErr := u.store.UpsertBatch(ctx, instruments); storeErr != nil {
			u.logger.WithError(storeErr).Warn("Failed to store CB universe")
		}
		return instruments, nil
	}

	stored, storeErr := u.store.FetchUniverse(ctx)
	if storeErr != nil || len(stored) == 0 {
		return nil, err
	}
	u.logger.WithError(err).WithField("instruments", len(stored)).Warn("Upstream universe unavailable, using stored copy")
	return stored, nil
}
