package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/quill/internal/content"
	"github.com/MrSnakeDoc/quill/internal/index"
	"github.com/MrSnakeDoc/quill/internal/logger"
)

// ContentReloader keeps the index in sync with the content directory
type ContentReloader struct {
	loader        *content.Loader
	store         ViewStore
	index         *index.MemoryIndex
	logger        logger.Logger
	interval      time.Duration
	strict        bool
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}
	mu            sync.Mutex // one reload at a time
}

// NewContentReloader creates a new content reloader. In strict mode a load
// with any invalid file leaves the current snapshot in place.
func NewContentReloader(
	loader *content.Loader,
	store ViewStore,
	idx *index.MemoryIndex,
	log logger.Logger,
	interval time.Duration,
	strict bool,
	manualTrigger chan struct{},
) *ContentReloader {
	return &ContentReloader{
		loader:        loader,
		store:         store,
		index:         idx,
		logger:        log,
		interval:      interval,
		strict:        strict,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the collection once, then reloads on every tick and trigger.
// A zero interval disables periodic reloads.
func (cr *ContentReloader) Start(ctx context.Context) error {
	// Load immediately on start
	if err := cr.Reload(ctx); err != nil {
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
				cr.reloadAndLog(ctx)
			case <-cr.manualTrigger:
				cr.logger.Info("manual reload triggered")
				cr.reloadAndLog(ctx)
			case <-cr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

func (cr *ContentReloader) reloadAndLog(ctx context.Context) {
	if err := cr.Reload(ctx); err != nil {
		cr.logger.Error("failed to reload content", logger.Error(err))
	}
}

// Stop stops the reloader
func (cr *ContentReloader) Stop() {
	cr.stopOnce.Do(func() { close(cr.stopCh) })
}

// Reload loads the collection and swaps the index snapshot.
func (cr *ContentReloader) Reload(ctx context.Context) error {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	cr.logger.Debug("reloading content", logger.String("dir", cr.loader.Root()))

	coll, err := cr.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load content: %w", err)
	}

	cr.logProblems(coll)

	if cr.strict {
		if err := coll.Err(); err != nil {
			cr.index.SetReport(coll)
			return fmt.Errorf("strict mode: %d invalid files, keeping previous snapshot: %w",
				len(coll.Failures)+len(coll.Broken), err)
		}
	}

	added, removed := cr.index.Replace(coll)

	cr.logger.Info("content reloaded",
		logger.Int("posts", len(coll.Entries)),
		logger.Int("invalid", len(coll.Failures)+len(coll.Broken)),
		logger.Int("added", len(added)),
		logger.Int("removed", len(removed)))

	if len(removed) > 0 {
		cr.logger.Info("marking removed posts as retired",
			logger.Strings("ids", removed))
	}

	// Persist retirements (best effort)
	if cr.store != nil && (len(removed) > 0 || len(added) > 0) {
		retired := cr.index.Retired()
		newlyRetired := make(map[string]time.Time, len(removed))
		for _, id := range removed {
			newlyRetired[id] = retired[id]
		}
		if err := cr.store.SyncRetired(ctx, newlyRetired, added); err != nil {
			cr.logger.Warn("failed to save retired posts to redis",
				logger.Error(err))
			// Don't fail - memory index is the primary source
		}
	}

	return nil
}

func (cr *ContentReloader) logProblems(coll *content.Collection) {
	for _, f := range coll.Broken {
		cr.logger.Warn("unreadable content file",
			logger.String("path", f.Path),
			logger.Error(f.Err))
	}
	for _, f := range coll.Failures {
		cr.logger.Warn("invalid frontmatter",
			logger.String("content_id", f.ContentID),
			logger.Strings("fields", f.Fields()),
			logger.Error(f))
	}
	for _, e := range coll.Entries {
		if len(e.UnknownKeys) > 0 {
			cr.logger.Debug("ignored frontmatter keys",
				logger.String("content_id", e.ID),
				logger.Strings("keys", e.UnknownKeys))
		}
	}
}
