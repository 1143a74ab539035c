package main

import (
	"log/slog"

	"github.com/sigobj/beaconfence/pkg/fence"
	"github.com/sigobj/beaconfence/pkg/persistence"
)

// resolveIdentity picks the identity to monitor and persists it.
// A stored identity wins when preferStored is set; otherwise the configured
// one replaces whatever the store held.
func resolveIdentity(store *persistence.FenceStore, configured fence.Identity, preferStored, lenient bool, logger *slog.Logger) (fence.Identity, error) {
	if store == nil {
		return configured, nil
	}

	stored, err := store.Load(persistence.LoadOptions{Lenient: lenient})
	if err != nil {
		return fence.Identity{}, err
	}

	if preferStored && len(stored) > 0 {
		logger.Info("restored fence", "path", store.Path(), "region", stored[0].Key(), "name", stored[0].Name())
		return stored[0], nil
	}

	if err := store.Save([]fence.Identity{configured}); err != nil {
		return fence.Identity{}, err
	}
	logger.Debug("saved fence", "path", store.Path(), "region", configured.Key())
	return configured, nil
}
