package scheduler

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/quill/internal/content"
	"github.com/MrSnakeDoc/quill/internal/logger"
	"github.com/MrSnakeDoc/quill/internal/utils"
)

// Watcher requests a reload when files change under the content directory.
// Bursts of events (editor saves, git checkouts) are coalesced into one
// request per debounce window.
type Watcher struct {
	root     string
	debounce time.Duration
	trigger  chan<- struct{}
	logger   logger.Logger
	fsw      *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewWatcher creates a watcher for root sending on trigger.
func NewWatcher(root string, debounce time.Duration, trigger chan<- struct{}, log logger.Logger) *Watcher {
	return &Watcher{
		root:     root,
		debounce: debounce,
		trigger:  trigger,
		logger:   log,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start watches root and every non-hidden subdirectory.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	w.fsw = fsw

	if err := w.addTree(w.root); err != nil {
		_ = fsw.Close()
		return err
	}

	go w.loop(ctx)
	return nil
}

// Stop stops watching and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		if w.fsw != nil {
			<-w.done
			utils.CloseLogged(w.fsw, "fsnotify watcher", w.logger)
		}
	})
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

// follow watches a newly created directory tree. Files are ignored.
func (w *Watcher) follow(path string) {
	if err := w.addTree(path); err != nil {
		w.logger.Warn("failed to watch new content directory",
			logger.String("path", path), logger.Error(err))
	}
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !relevant(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				w.follow(ev.Name)
			}
			w.logger.Debug("content change detected",
				logger.String("path", ev.Name),
				logger.String("op", ev.Op.String()))
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("content watcher error", logger.Error(err))

		case <-timer.C:
			if Trigger(w.trigger) {
				w.logger.Info("content changed, reload requested")
			}

		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// relevant filters out attribute changes and editor scratch files.
func relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".tmp") {
		return false
	}
	ext := filepath.Ext(base)
	// Directories and extension-less names are kept, removals of a whole
	// folder show up that way.
	return ext == "" || content.IsContentFile(base) || content.IsAssetPath(base)
}
