package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/quill/internal/index"
	"github.com/MrSnakeDoc/quill/internal/logger"
)

const (
	// DefaultGCThreshold is how long a removed post keeps its view counter
	DefaultGCThreshold = 30 * 24 * time.Hour // 30 days
)

// GarbageCollector drops the view counters of posts removed long ago, so a
// post restored within the threshold keeps its history.
type GarbageCollector struct {
	store     ViewStore
	index     *index.MemoryIndex
	logger    logger.Logger
	interval  time.Duration
	threshold time.Duration
	now       func() time.Time
	stopCh    chan struct{}
	stopOnce  sync.Once
}

// NewGarbageCollector creates a new garbage collector
func NewGarbageCollector(
	store ViewStore,
	idx *index.MemoryIndex,
	log logger.Logger,
	interval time.Duration,
	threshold time.Duration,
) *GarbageCollector {
	if threshold == 0 {
		threshold = DefaultGCThreshold
	}

	return &GarbageCollector{
		store:     store,
		index:     idx,
		logger:    log,
		interval:  interval,
		threshold: threshold,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic garbage collection process
func (gc *GarbageCollector) Start(ctx context.Context) error {
	// Run immediately on start
	gc.Collect(ctx)

	if gc.interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(gc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				gc.Collect(ctx)
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the garbage collector
func (gc *GarbageCollector) Stop() {
	gc.stopOnce.Do(func() { close(gc.stopCh) })
}

// Collect forgets posts retired for longer than the threshold and returns
// how many were dropped. Redis deletions are best effort.
func (gc *GarbageCollector) Collect(ctx context.Context) int {
	now := gc.now()
	deleted := 0

	for id, retiredAt := range gc.index.Retired() {
		retiredFor := now.Sub(retiredAt)
		if retiredFor < gc.threshold {
			continue
		}

		// Delete from memory index
		if !gc.index.Forget(id) {
			continue
		}

		// Delete from Redis store (best effort)
		if gc.store != nil {
			if err := gc.store.DeleteViews(ctx, id); err != nil {
				gc.logger.Warn("failed to delete view counter from redis",
					logger.String("post_id", id),
					logger.Error(err))
			}
		}

		gc.logger.Info("garbage collected retired post",
			logger.String("post_id", id),
			logger.Duration("retired_for", retiredFor))

		deleted++
	}

	if deleted > 0 {
		gc.logger.Info("garbage collection completed",
			logger.Int("posts_deleted", deleted))
	} else {
		gc.logger.Debug("no retired posts to garbage collect")
	}

	return deleted
}
