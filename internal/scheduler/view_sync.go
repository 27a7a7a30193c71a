package scheduler

import (
	"context"

	"github.com/MrSnakeDoc/quill/internal/index"
	"github.com/MrSnakeDoc/quill/internal/logger"
)

// ViewSyncer restores view counters and retired posts from Redis on startup
type ViewSyncer struct {
	store  ViewStore
	index  *index.MemoryIndex
	logger logger.Logger
}

// NewViewSyncer creates a new view syncer
func NewViewSyncer(store ViewStore, idx *index.MemoryIndex, log logger.Logger) *ViewSyncer {
	return &ViewSyncer{
		store:  store,
		index:  idx,
		logger: log,
	}
}

// Sync copies persisted state into the memory index
func (vs *ViewSyncer) Sync(ctx context.Context) error {
	vs.logger.Info("syncing view counters from redis to memory")

	views, err := vs.store.AllViews(ctx)
	if err != nil {
		return err
	}
	for id, n := range views {
		vs.index.SetViews(id, n)
	}

	retired, err := vs.store.Retired(ctx)
	if err != nil {
		return err
	}
	for id, at := range retired {
		vs.index.Retire(id, at)
	}

	vs.logger.Info("synced view counters from redis",
		logger.Int("counters", len(views)),
		logger.Int("retired", len(retired)))

	return nil
}
